package audit

import (
	"strings"
	"testing"

	"github.com/oncorad/oncoguard/internal/model"
)

func TestParseVerdict_WellFormedReply(t *testing.T) {
	reply := `Aquí está mi análisis:
{
    "status": "partially_valid",
    "confidence_score": 0.7,
    "grounded_claims": ["la dosis es 78 Gy"],
    "ungrounded_claims": ["la supervivencia fue del 99%"],
    "reasoning": "Una afirmación no aparece en las fuentes",
    "corrected_response": "Respuesta corregida."
}
Espero que sea útil.`

	verdict := parseVerdict(reply)

	if verdict.Status != model.StatusPartiallyValid {
		t.Errorf("Expected partially_valid, got %s", verdict.Status)
	}
	if verdict.ConfidenceScore != 0.7 {
		t.Errorf("Expected confidence 0.7, got %f", verdict.ConfidenceScore)
	}
	if len(verdict.GroundedClaims) != 1 || len(verdict.UngroundedClaims) != 1 {
		t.Errorf("Unexpected claim lists: %v / %v", verdict.GroundedClaims, verdict.UngroundedClaims)
	}
	if verdict.CorrectedResponse != "Respuesta corregida." {
		t.Errorf("Unexpected corrected response: %q", verdict.CorrectedResponse)
	}
}

func TestParseVerdict_BracesInsideStrings(t *testing.T) {
	reply := `{"status": "valid", "confidence_score": 0.9, "reasoning": "el formato {X} no afecta} el análisis"}`

	verdict := parseVerdict(reply)
	if verdict.Status != model.StatusValid {
		t.Errorf("Expected valid, got %s", verdict.Status)
	}
	if !strings.Contains(verdict.Reasoning, "{X}") {
		t.Errorf("Expected reasoning preserved, got %q", verdict.Reasoning)
	}
}

func TestParseVerdict_TruncatedReplyDistrusted(t *testing.T) {
	verdict := parseVerdict(`{"status": "valid", "confidence_score": 0.9, "reasoning": "truncado`)

	if verdict.Status != model.StatusInvalid {
		t.Errorf("Expected fallback to invalid, got %s", verdict.Status)
	}
	if verdict.ConfidenceScore != 0.0 {
		t.Errorf("Expected confidence 0.0, got %f", verdict.ConfidenceScore)
	}
	if len(verdict.UngroundedClaims) != 1 || !strings.Contains(verdict.UngroundedClaims[0], "Error al parsear") {
		t.Errorf("Expected parse-error marker, got %v", verdict.UngroundedClaims)
	}
}

func TestParseVerdict_NoJSONAtAll(t *testing.T) {
	verdict := parseVerdict("Lo siento, no puedo validar esta respuesta.")

	if verdict.Status != model.StatusInvalid {
		t.Errorf("Expected fallback to invalid, got %s", verdict.Status)
	}
	if verdict.Reasoning != "No se pudo parsear la respuesta del validador" {
		t.Errorf("Unexpected reasoning: %q", verdict.Reasoning)
	}
}

func TestParseVerdict_UnknownStatusDistrusted(t *testing.T) {
	verdict := parseVerdict(`{"status": "mostly_fine", "confidence_score": 0.95}`)

	if verdict.Status != model.StatusInvalid {
		t.Errorf("Expected unknown status mapped to invalid, got %s", verdict.Status)
	}
}

func TestExtractJSONObject_NestedObjects(t *testing.T) {
	raw, ok := extractJSONObject(`prefijo {"a": {"b": 1}, "c": "x"} sufijo`)
	if !ok {
		t.Fatal("Expected extraction to succeed")
	}
	if raw != `{"a": {"b": 1}, "c": "x"}` {
		t.Errorf("Unexpected extraction: %q", raw)
	}
}
