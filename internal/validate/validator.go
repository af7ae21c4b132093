package validate

import (
	"fmt"
	"strings"

	"github.com/oncorad/oncoguard/internal/extract"
	"github.com/oncorad/oncoguard/internal/model"
)

// claimDisplayLen bounds claim text carried in verified/unverified lists
const claimDisplayLen = 100

// ResponseValidator runs the full lexical validation over an answer:
// claim extraction, citation verification, factual-support scoring,
// and hallucination detection, aggregated into one confidence score.
//
// All methods are pure over their inputs; a single validator may be
// shared by concurrent callers.
type ResponseValidator struct {
	policy    model.ValidationPolicy
	extractor *extract.ClaimExtractor
	citations *CitationMatcher
	support   *FactualSupportScorer
	detector  *HallucinationDetector
}

// NewResponseValidator creates a validator with the given policy
func NewResponseValidator(policy model.ValidationPolicy) *ResponseValidator {
	return &ResponseValidator{
		policy:    policy,
		extractor: extract.NewClaimExtractor(),
		citations: NewCitationMatcher(),
		support:   NewFactualSupportScorer(),
		detector:  NewHallucinationDetector(policy.StrictMode),
	}
}

// Validate performs comprehensive validation of an answer against the
// retrieved passages.
func (v *ResponseValidator) Validate(answer string, passages []model.SourcePassage) model.ValidationResult {
	result := model.ValidationResult{
		IsValid:                 true,
		Status:                  model.StatusValid,
		ConfidenceScore:         1.0,
		VerifiedClaims:          []string{},
		UnverifiedClaims:        []string{},
		PotentialHallucinations: []string{},
		CitationErrors:          []string{},
		Warnings:                []string{},
	}

	claims := v.extractor.Extract(answer)
	if len(claims) == 0 {
		// Degraded but not failed: nothing checkable in the answer.
		result.Status = model.StatusInsufficientEvidence
		result.ConfidenceScore = 0.5
		result.Warnings = append(result.Warnings, "No se pudieron extraer afirmaciones de la respuesta")
		return result
	}

	_, invalidCitations := v.citations.Verify(claims, passages)
	result.CitationErrors = invalidCitations

	for _, claim := range claims {
		supported, _, _ := v.support.Check(claim.Text, passages, v.policy.SupportThreshold)
		// An inline citation alone verifies a claim: cited material may
		// be worded differently than the claim that cites it.
		if supported || claim.HasCitation() {
			result.VerifiedClaims = append(result.VerifiedClaims, claim.Excerpt(claimDisplayLen))
		} else {
			result.UnverifiedClaims = append(result.UnverifiedClaims, claim.Excerpt(claimDisplayLen))
		}
	}

	result.Hallucinations = v.detector.Detect(claims, passages)
	for _, h := range result.Hallucinations {
		excerpt := h.Claim
		if len(excerpt) > claimDisplayLen {
			excerpt = excerpt[:claimDisplayLen]
		}
		result.PotentialHallucinations = append(result.PotentialHallucinations,
			fmt.Sprintf("%s... - Problemas: %s", excerpt, strings.Join(h.Issues, ", ")))
	}

	totalClaims := len(claims)
	verifiedCount := len(result.VerifiedClaims)
	hallucinationCount := len(result.PotentialHallucinations)
	citationErrorCount := len(result.CitationErrors)

	base := float64(verifiedCount) / float64(totalClaims)
	penalty := float64(hallucinationCount)*0.15 + float64(citationErrorCount)*0.10
	result.ConfidenceScore = clamp01(base - penalty)

	result.IsValid = result.ConfidenceScore >= v.policy.MinConfidence &&
		hallucinationCount <= v.policy.MaxHallucinations &&
		citationErrorCount <= v.policy.MaxCitationErrors

	if hallucinationCount > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Se detectaron %d posibles alucinaciones", hallucinationCount))
	}
	if citationErrorCount > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Se encontraron %d errores de cita", citationErrorCount))
	}
	if float64(len(result.UnverifiedClaims)) > float64(totalClaims)*0.3 {
		result.Warnings = append(result.Warnings,
			"Más del 30% de las afirmaciones no tienen soporte verificable")
	}

	result.Status = normalizeStatus(result, verifiedCount)
	return result
}

// Verdict condenses a ValidationResult into the strategy-independent form
func (v *ResponseValidator) Verdict(result model.ValidationResult) model.Verdict {
	return model.Verdict{
		Status:     result.Status,
		Confidence: result.ConfidenceScore,
		Notes:      strings.Join(result.Warnings, "; "),
	}
}

// normalizeStatus maps the boolean-plus-counts outcome onto the shared
// four-way status used by both validation strategies.
func normalizeStatus(r model.ValidationResult, verifiedCount int) model.Status {
	switch {
	case r.IsValid:
		return model.StatusValid
	case verifiedCount > 0 && r.ConfidenceScore >= 0.3:
		return model.StatusPartiallyValid
	default:
		return model.StatusInvalid
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
