package engine

import (
	"context"

	"github.com/oncorad/oncoguard/internal/audit"
	"github.com/oncorad/oncoguard/internal/model"
	"github.com/oncorad/oncoguard/internal/validate"
)

// Outcome is what a validation strategy produces for one answer
type Outcome struct {
	// Answer is the final answer text (sanitized or corrected)
	Answer string `json:"answer"`

	// Verdict is the normalized strategy-independent summary
	Verdict model.Verdict `json:"verdict"`

	// Lexical carries the detailed lexical result, when that path ran
	Lexical *model.ValidationResult `json:"lexical,omitempty"`

	// Audit carries the auditor verdict, when that path ran
	Audit *model.AuditVerdict `json:"audit,omitempty"`
}

// Strategy is the shared capability both validation paths implement:
// answer plus passages in, verdict plus possibly-rewritten answer out.
// Callers pick one per deployment.
type Strategy interface {
	Name() string
	Validate(ctx context.Context, answer string, passages []model.SourcePassage) (Outcome, error)
}

// LexicalStrategy runs the regex/word-overlap path with sanitization
type LexicalStrategy struct {
	validator *validate.ResponseValidator
	sanitizer *validate.ResponseSanitizer
	mode      model.SanitizeMode
}

// NewLexicalStrategy creates the lexical validation strategy
func NewLexicalStrategy(policy model.ValidationPolicy, mode model.SanitizeMode) *LexicalStrategy {
	validator := validate.NewResponseValidator(policy)
	return &LexicalStrategy{
		validator: validator,
		sanitizer: validate.NewResponseSanitizer(validator),
		mode:      mode,
	}
}

// Name returns the strategy name
func (s *LexicalStrategy) Name() string { return "lexical" }

// Validate sanitizes the answer per the configured mode. The lexical
// path has no external calls and never fails.
func (s *LexicalStrategy) Validate(_ context.Context, answer string, passages []model.SourcePassage) (Outcome, error) {
	sanitized, result := s.sanitizer.Sanitize(answer, passages, s.mode)
	return Outcome{
		Answer:  sanitized,
		Verdict: s.validator.Verdict(result),
		Lexical: &result,
	}, nil
}

// AuditStrategy runs the LLM-audit path with the correction loop
type AuditStrategy struct {
	auditor *audit.Auditor
}

// NewAuditStrategy creates the audit validation strategy
func NewAuditStrategy(auditor *audit.Auditor) *AuditStrategy {
	return &AuditStrategy{auditor: auditor}
}

// Name returns the strategy name
func (s *AuditStrategy) Name() string { return "audit" }

// Validate obtains an audit verdict and applies the correction
// policy. A hard failure of the text-generation service propagates;
// the caller decides fallback (e.g., rerun with the lexical path).
func (s *AuditStrategy) Validate(ctx context.Context, answer string, passages []model.SourcePassage) (Outcome, error) {
	final, notes, verdict, err := s.auditor.ValidateAndCorrect(ctx, answer, passages)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Answer: final,
		Verdict: model.Verdict{
			Status:     verdict.Status,
			Confidence: verdict.ConfidenceScore,
			Notes:      notes,
		},
		Audit: verdict,
	}, nil
}
