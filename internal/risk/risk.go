// Package risk implements deterministic NCCN-style risk
// stratification. These are plain rule lookups over staging data; the
// result feeds the retrieval queries and the generation prompt, never
// the validation core.
package risk

import (
	"regexp"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

var tnmPattern = regexp.MustCompile(`(?i)T([0-4][abc]?|is|x)\s*N([0-3][abc]?|x)\s*M([01][abc]?|x)`)

// Staging is a parsed TNM classification
type Staging struct {
	T string
	N string
	M string
}

// ParseTNM parses a TNM string like "T2bN0M0". Unparseable input
// yields empty components, which classify conservatively.
func ParseTNM(tnm string) Staging {
	m := tnmPattern.FindStringSubmatch(tnm)
	if m == nil {
		return Staging{}
	}
	return Staging{
		T: strings.ToLower(m[1]),
		N: strings.ToLower(m[2]),
		M: strings.ToLower(m[3]),
	}
}

// Classify stratifies a clinical case. Prostate cases use the NCCN
// prostate criteria; everything else falls back to a generic
// TNM-driven classification.
func Classify(c model.ClinicalCase) model.RiskLevel {
	if isProstate(c) {
		return classifyProstate(c)
	}
	return classifyGeneric(c)
}

func isProstate(c model.ClinicalCase) bool {
	if strings.EqualFold(c.TumorType, "prostata") {
		return true
	}
	return strings.Contains(strings.ToLower(c.Histology), "próstata") ||
		strings.Contains(strings.ToLower(c.Histology), "prostata")
}

// classifyProstate applies the NCCN prostate risk rules over PSA,
// Gleason, and T/M stage.
func classifyProstate(c model.ClinicalCase) model.RiskLevel {
	staging := ParseTNM(c.TNM)
	psa := 0.0
	if c.PSA != nil {
		psa = *c.PSA
	}

	if strings.HasPrefix(staging.M, "1") {
		return model.RiskMetastatic
	}

	// Very high risk
	if staging.T == "3b" || strings.HasPrefix(staging.T, "4") {
		return model.RiskVeryHigh
	}
	if c.GleasonPrimary == 5 {
		return model.RiskVeryHigh
	}

	// High risk
	if staging.T == "3" || staging.T == "3a" {
		return model.RiskHigh
	}
	if c.Gleason >= 8 {
		return model.RiskHigh
	}
	if psa > 20 {
		return model.RiskHigh
	}

	// Intermediate risk factor count
	irFactors := 0
	if staging.T == "2b" || staging.T == "2c" {
		irFactors++
	}
	if c.Gleason == 7 {
		irFactors++
	}
	if psa >= 10 && psa <= 20 {
		irFactors++
	}

	if irFactors >= 2 || (c.Gleason == 7 && c.GleasonPrimary == 4) {
		return model.RiskIntermediateUnfavorable
	}
	if irFactors == 1 {
		return model.RiskIntermediateFavorable
	}

	// Low risk
	lowT := strings.HasPrefix(staging.T, "1") || staging.T == "2" || staging.T == "2a"
	if lowT && c.Gleason <= 6 && psa < 10 {
		if staging.T == "1c" && c.PositiveCores > 0 && c.PositiveCores < 34 {
			return model.RiskVeryLow
		}
		return model.RiskLow
	}

	return model.RiskIntermediateUnfavorable
}

// classifyGeneric covers non-prostate tumors with TNM rules only
func classifyGeneric(c model.ClinicalCase) model.RiskLevel {
	staging := ParseTNM(c.TNM)

	if strings.HasPrefix(staging.M, "1") {
		return model.RiskMetastatic
	}
	if strings.HasPrefix(staging.T, "3") || strings.HasPrefix(staging.T, "4") {
		return model.RiskHigh
	}
	if strings.HasPrefix(staging.N, "2") || strings.HasPrefix(staging.N, "3") {
		return model.RiskHigh
	}
	if strings.HasPrefix(staging.N, "1") {
		return model.RiskIntermediateUnfavorable
	}
	if staging.T == "2b" || staging.T == "2c" {
		return model.RiskIntermediateFavorable
	}
	return model.RiskLow
}
