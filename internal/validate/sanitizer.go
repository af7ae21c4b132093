package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

const (
	// bannerMarker identifies an already-flagged answer; Sanitize in
	// flag mode never prepends a second banner.
	bannerMarker = "⚠️ ADVERTENCIA:"

	annotationMarker = " [⚠️ NO VERIFICADO]"

	redactionText = "[Contenido eliminado por falta de verificación]."
)

// ResponseSanitizer rewrites an answer according to its validation
// outcome and the configured sanitization mode.
type ResponseSanitizer struct {
	validator *ResponseValidator
}

// NewResponseSanitizer creates a sanitizer sharing the given validator
func NewResponseSanitizer(validator *ResponseValidator) *ResponseSanitizer {
	return &ResponseSanitizer{validator: validator}
}

// Sanitize validates the answer and applies the correction policy.
// Valid answers with no flagged claims pass through unchanged.
func (s *ResponseSanitizer) Sanitize(answer string, passages []model.SourcePassage, mode model.SanitizeMode) (string, model.ValidationResult) {
	validation := s.validator.Validate(answer, passages)

	if validation.IsValid && len(validation.Hallucinations) == 0 {
		return answer, validation
	}

	sanitized := answer
	switch mode {
	case model.ModeFlag:
		sanitized = s.flag(answer, &validation)
	case model.ModeAnnotate:
		sanitized = s.editClaims(answer, &validation, false)
	case model.ModeRemove:
		sanitized = s.editClaims(answer, &validation, true)
	}

	return sanitized, validation
}

// flag prepends a warning banner naming the count of unverifiable
// claims. Already-bannered text is left alone.
func (s *ResponseSanitizer) flag(answer string, validation *model.ValidationResult) string {
	if len(validation.Hallucinations) == 0 {
		return answer
	}
	if strings.Contains(answer, bannerMarker) {
		return answer
	}
	banner := fmt.Sprintf(
		"\n%s Esta respuesta contiene %d afirmaciones que no pudieron ser completamente verificadas contra las fuentes.\n\n",
		bannerMarker, len(validation.Hallucinations))
	return banner + answer
}

// editClaims applies annotate or remove edits at each flagged claim.
// Edits go by character span, right to left so earlier spans stay
// valid; entries without a usable span fall back to searching for the
// claim excerpt. A claim that can be located neither way is reported
// in the validation warnings rather than silently skipped.
func (s *ResponseSanitizer) editClaims(answer string, validation *model.ValidationResult, remove bool) string {
	entries := make([]model.Hallucination, len(validation.Hallucinations))
	copy(entries, validation.Hallucinations)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Start > entries[j].Start })

	text := answer
	for _, h := range entries {
		start, end := h.Start, h.End
		if !spanMatches(text, h) {
			// Span unusable (entry may have crossed a serialization
			// boundary); best-effort excerpt search.
			excerpt := excerptPrefix(h.Claim)
			idx := strings.Index(text, excerpt)
			if excerpt == "" || idx < 0 {
				validation.Warnings = append(validation.Warnings,
					fmt.Sprintf("No se pudo localizar la afirmación señalada en el texto: %q", excerptPrefix(h.Claim)))
				continue
			}
			start, end = idx, idx+len(excerpt)
		}

		if remove {
			// Take the trailing sentence terminator with the claim.
			if end < len(text) && text[end] == '.' {
				end++
			}
			text = text[:start] + redactionText + text[end:]
		} else {
			text = text[:end] + annotationMarker + text[end:]
		}
	}

	return text
}

// spanMatches reports whether the entry's recorded span still points
// at the flagged claim in the given text.
func spanMatches(text string, h model.Hallucination) bool {
	if h.Start < 0 || h.End <= h.Start || h.End > len(text) {
		return false
	}
	return strings.HasPrefix(text[h.Start:h.End], h.Claim)
}

// excerptPrefix returns the claim text up to the truncation marker,
// mirroring the formatted "<excerpt>... - Problemas:" entries.
func excerptPrefix(claim string) string {
	if i := strings.Index(claim, "..."); i >= 0 {
		return claim[:i]
	}
	return claim
}
