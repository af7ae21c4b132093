package validate

import (
	"strings"
	"testing"

	"github.com/oncorad/oncoguard/internal/model"
)

// problemAnswer has one unsupportable claim followed by one supported
// claim; supportingPassages back only the second.
const problemAnswer = "El estudio FAKE-9999 demostró beneficios importantes. " +
	"La radioterapia es un tratamiento establecido y seguro."

func supportingPassages() []model.SourcePassage {
	return passagesWithText("radioterapia tratamiento establecido seguro para muchos pacientes")
}

func newSanitizer() *ResponseSanitizer {
	return NewResponseSanitizer(NewResponseValidator(model.DefaultValidationPolicy()))
}

func TestResponseSanitizer_ValidAnswerPassesThrough(t *testing.T) {
	sanitizer := newSanitizer()

	answer := "La radioterapia es un tratamiento establecido y seguro para estos pacientes."
	passages := passagesWithText("radioterapia tratamiento establecido seguro para muchos pacientes")

	sanitized, result := sanitizer.Sanitize(answer, passages, model.ModeFlag)
	if sanitized != answer {
		t.Errorf("Expected passthrough, got %q", sanitized)
	}
	if !result.IsValid {
		t.Errorf("Expected valid result, warnings: %v", result.Warnings)
	}
}

func TestResponseSanitizer_FlagPrependsBanner(t *testing.T) {
	sanitizer := newSanitizer()

	sanitized, result := sanitizer.Sanitize(problemAnswer, supportingPassages(), model.ModeFlag)

	if len(result.Hallucinations) != 1 {
		t.Fatalf("Expected 1 hallucination, got %d", len(result.Hallucinations))
	}
	if !strings.Contains(sanitized, "⚠️ ADVERTENCIA:") {
		t.Error("Expected warning banner")
	}
	if !strings.Contains(sanitized, "contiene 1 afirmaciones") {
		t.Errorf("Expected hallucination count in banner, got %q", sanitized)
	}
	if !strings.HasSuffix(sanitized, problemAnswer) {
		t.Error("Expected original answer preserved after the banner")
	}
}

func TestResponseSanitizer_FlagIdempotent(t *testing.T) {
	sanitizer := newSanitizer()

	once, _ := sanitizer.Sanitize(problemAnswer, supportingPassages(), model.ModeFlag)
	twice, _ := sanitizer.Sanitize(once, supportingPassages(), model.ModeFlag)

	if once != twice {
		t.Error("Expected flag mode to be idempotent on already-bannered text")
	}
	if strings.Count(twice, "⚠️ ADVERTENCIA:") != 1 {
		t.Errorf("Expected exactly one banner, got %d", strings.Count(twice, "⚠️ ADVERTENCIA:"))
	}
}

func TestResponseSanitizer_AnnotateMarksClaimInline(t *testing.T) {
	sanitizer := newSanitizer()

	sanitized, _ := sanitizer.Sanitize(problemAnswer, supportingPassages(), model.ModeAnnotate)

	if !strings.Contains(sanitized, "importantes [⚠️ NO VERIFICADO].") {
		t.Errorf("Expected marker appended at claim end, got %q", sanitized)
	}
	if !strings.Contains(sanitized, "La radioterapia es un tratamiento establecido y seguro.") {
		t.Errorf("Expected supported claim untouched, got %q", sanitized)
	}
}

func TestResponseSanitizer_RemoveRedactsClaim(t *testing.T) {
	sanitizer := newSanitizer()

	sanitized, _ := sanitizer.Sanitize(problemAnswer, supportingPassages(), model.ModeRemove)

	if strings.Contains(sanitized, "FAKE-9999") {
		t.Errorf("Expected flagged claim removed, got %q", sanitized)
	}
	if !strings.Contains(sanitized, "[Contenido eliminado por falta de verificación].") {
		t.Errorf("Expected redaction placeholder, got %q", sanitized)
	}
	if !strings.Contains(sanitized, "La radioterapia es un tratamiento establecido y seguro.") {
		t.Errorf("Expected supported claim preserved, got %q", sanitized)
	}
}

func TestResponseSanitizer_MultipleClaimsEditedRightToLeft(t *testing.T) {
	sanitizer := newSanitizer()

	answer := "El estudio FAKE-1111 demostró resultados notables. " +
		"La radioterapia es un tratamiento establecido y seguro. " +
		"El estudio FAKE-2222 confirmó hallazgos similares."

	sanitized, result := sanitizer.Sanitize(answer, supportingPassages(), model.ModeAnnotate)

	if len(result.Hallucinations) != 2 {
		t.Fatalf("Expected 2 hallucinations, got %d", len(result.Hallucinations))
	}
	if strings.Count(sanitized, "[⚠️ NO VERIFICADO]") != 2 {
		t.Errorf("Expected 2 inline markers, got %q", sanitized)
	}
	if !strings.Contains(sanitized, "notables [⚠️ NO VERIFICADO].") {
		t.Errorf("Expected first claim annotated in place, got %q", sanitized)
	}
}

func TestResponseSanitizer_UnlocatableClaimReported(t *testing.T) {
	sanitizer := newSanitizer()

	validation := model.ValidationResult{
		Hallucinations: []model.Hallucination{{
			Claim: "Afirmación que no existe en el texto final.",
			Start: -1,
			End:   -1,
		}},
	}
	text := sanitizer.editClaims("Texto completamente distinto sin la afirmación señalada presente.", &validation, false)

	if strings.Contains(text, "[⚠️ NO VERIFICADO]") {
		t.Errorf("Expected no edit for unlocatable claim, got %q", text)
	}
	found := false
	for _, w := range validation.Warnings {
		if strings.Contains(w, "No se pudo localizar la afirmación") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected locate-failure warning, got %v", validation.Warnings)
	}
}
