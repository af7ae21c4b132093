package model

import "fmt"

// Status is the shared four-way validation outcome used by both the
// lexical path and the LLM-audit path.
type Status string

const (
	StatusValid                Status = "valid"
	StatusPartiallyValid       Status = "partially_valid"
	StatusInvalid              Status = "invalid"
	StatusInsufficientEvidence Status = "insufficient_evidence"
)

// ParseStatus maps a raw status string to a Status. Unknown or empty
// values fall back to invalid; an unrecognized auditor reply must
// never be treated as a pass.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusValid, StatusPartiallyValid, StatusInvalid, StatusInsufficientEvidence:
		return Status(s)
	default:
		return StatusInvalid
	}
}

// Verdict is the strategy-independent summary both validation paths
// normalize into: the lexical path derives it from its boolean-plus-
// counts result, the audit path from the parsed auditor reply.
type Verdict struct {
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`
}

// Hallucination describes one claim flagged as potentially fabricated
type Hallucination struct {
	Claim       string   `json:"claim"`           // First 200 bytes of the claim text
	Issues      []string `json:"issues"`          // Human-readable issue descriptions
	HasCitation bool     `json:"has_citation"`    // Whether the claim carried an inline citation
	Start       int      `json:"start,omitempty"` // Claim span in the original answer, -1 when unknown
	End         int      `json:"end,omitempty"`
}

// ValidationResult is the aggregate outcome of one lexical validation run
type ValidationResult struct {
	IsValid                 bool            `json:"is_valid"`
	Status                  Status          `json:"status"`
	ConfidenceScore         float64         `json:"confidence_score"`
	VerifiedClaims          []string        `json:"verified_claims"`
	UnverifiedClaims        []string        `json:"unverified_claims"`
	PotentialHallucinations []string        `json:"potential_hallucinations"`
	Hallucinations          []Hallucination `json:"hallucination_details,omitempty"`
	CitationErrors          []string        `json:"citation_errors"`
	Warnings                []string        `json:"warnings"`
}

// AuditVerdict is the structured outcome of the LLM-audit path
type AuditVerdict struct {
	Status            Status   `json:"status"`
	ConfidenceScore   float64  `json:"confidence_score"`
	GroundedClaims    []string `json:"grounded_claims"`
	UngroundedClaims  []string `json:"ungrounded_claims"`
	CorrectedResponse string   `json:"corrected_response,omitempty"`
	Reasoning         string   `json:"reasoning,omitempty"`
}

// SanitizeMode selects how flagged content is handled
type SanitizeMode string

const (
	ModeFlag     SanitizeMode = "flag"     // Prepend a warning banner
	ModeAnnotate SanitizeMode = "annotate" // Mark problem claims inline
	ModeRemove   SanitizeMode = "remove"   // Redact problem claims
)

// ParseSanitizeMode validates a mode string
func ParseSanitizeMode(s string) (SanitizeMode, error) {
	switch SanitizeMode(s) {
	case ModeFlag, ModeAnnotate, ModeRemove:
		return SanitizeMode(s), nil
	default:
		return "", fmt.Errorf("unknown sanitize mode: %q (supported: flag, annotate, remove)", s)
	}
}
