package risk

import (
	"testing"

	"github.com/oncorad/oncoguard/internal/model"
)

func psa(v float64) *float64 { return &v }

func prostateCase(tnm string, psaVal float64, gleason, primary int, cores float64) model.ClinicalCase {
	return model.ClinicalCase{
		Histology:      "adenocarcinoma de próstata",
		TumorType:      "prostata",
		TNM:            tnm,
		PSA:            psa(psaVal),
		Gleason:        gleason,
		GleasonPrimary: primary,
		PositiveCores:  cores,
	}
}

func TestParseTNM(t *testing.T) {
	cases := []struct {
		in      string
		t, n, m string
	}{
		{"T2bN0M0", "2b", "0", "0"},
		{"t3a n1 m0", "3a", "1", "0"},
		{"T1cN0M0", "1c", "0", "0"},
		{"TxNxMx", "x", "x", "x"},
		{"sin estadio", "", "", ""},
	}

	for _, tc := range cases {
		got := ParseTNM(tc.in)
		if got.T != tc.t || got.N != tc.n || got.M != tc.m {
			t.Errorf("ParseTNM(%q) = %+v, want T=%s N=%s M=%s", tc.in, got, tc.t, tc.n, tc.m)
		}
	}
}

func TestClassify_ProstateRiskGroups(t *testing.T) {
	cases := []struct {
		name string
		c    model.ClinicalCase
		want model.RiskLevel
	}{
		{"metastatic", prostateCase("T2aN0M1", 8, 6, 3, 50), model.RiskMetastatic},
		{"very high T3b", prostateCase("T3bN0M0", 8, 7, 4, 50), model.RiskVeryHigh},
		{"very high T4", prostateCase("T4N0M0", 8, 7, 4, 50), model.RiskVeryHigh},
		{"very high primary pattern 5", prostateCase("T2aN0M0", 8, 9, 5, 50), model.RiskVeryHigh},
		{"high T3a", prostateCase("T3aN0M0", 8, 7, 3, 50), model.RiskHigh},
		{"high gleason 8", prostateCase("T2aN0M0", 8, 8, 4, 50), model.RiskHigh},
		{"high PSA over 20", prostateCase("T1cN0M0", 25, 6, 3, 50), model.RiskHigh},
		{"unfavorable two factors", prostateCase("T2bN0M0", 8, 7, 3, 50), model.RiskIntermediateUnfavorable},
		{"unfavorable gleason 4+3", prostateCase("T1cN0M0", 8, 7, 4, 50), model.RiskIntermediateUnfavorable},
		{"favorable one factor", prostateCase("T1cN0M0", 8, 7, 3, 50), model.RiskIntermediateFavorable},
		{"favorable PSA 10-20", prostateCase("T1cN0M0", 12, 6, 3, 50), model.RiskIntermediateFavorable},
		{"low", prostateCase("T2aN0M0", 8, 6, 3, 50), model.RiskLow},
		{"very low T1c few cores", prostateCase("T1cN0M0", 8, 6, 3, 20), model.RiskVeryLow},
		{"low T1c many cores", prostateCase("T1cN0M0", 8, 6, 3, 60), model.RiskLow},
	}

	for _, tc := range cases {
		if got := Classify(tc.c); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassify_ProstateDetectedFromHistology(t *testing.T) {
	c := model.ClinicalCase{
		Histology: "Adenocarcinoma de próstata Gleason 9",
		TNM:       "T2aN0M0",
		Gleason:   9,
	}
	if got := Classify(c); got != model.RiskHigh {
		t.Errorf("Expected prostate rules applied from histology, got %s", got)
	}
}

func TestClassify_GenericTumors(t *testing.T) {
	cases := []struct {
		name string
		c    model.ClinicalCase
		want model.RiskLevel
	}{
		{"metastatic lung", model.ClinicalCase{Histology: "carcinoma de pulmón", TNM: "T2N0M1"}, model.RiskMetastatic},
		{"locally advanced", model.ClinicalCase{Histology: "carcinoma de pulmón", TNM: "T4N0M0"}, model.RiskHigh},
		{"node positive N2", model.ClinicalCase{Histology: "carcinoma de recto", TNM: "T2N2M0"}, model.RiskHigh},
		{"node positive N1", model.ClinicalCase{Histology: "carcinoma de recto", TNM: "T2N1M0"}, model.RiskIntermediateUnfavorable},
		{"T2b no nodes", model.ClinicalCase{Histology: "carcinoma de cuello uterino", TNM: "T2bN0M0"}, model.RiskIntermediateFavorable},
		{"early stage", model.ClinicalCase{Histology: "carcinoma de laringe", TNM: "T1N0M0"}, model.RiskLow},
		{"unstageable", model.ClinicalCase{Histology: "carcinoma de laringe"}, model.RiskLow},
	}

	for _, tc := range cases {
		if got := Classify(tc.c); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassify_NoPSA(t *testing.T) {
	c := model.ClinicalCase{
		Histology: "adenocarcinoma de próstata",
		TNM:       "T1cN0M0",
		Gleason:   6,
	}
	// Missing PSA classifies conservatively but must not panic.
	got := Classify(c)
	if got == "" {
		t.Error("Expected a risk level for a case without PSA")
	}
}
