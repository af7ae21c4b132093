package audit

import (
	"encoding/json"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

// auditReply mirrors the JSON object the audit prompt demands
type auditReply struct {
	Status            string   `json:"status"`
	ConfidenceScore   float64  `json:"confidence_score"`
	GroundedClaims    []string `json:"grounded_claims"`
	UngroundedClaims  []string `json:"ungrounded_claims"`
	Reasoning         string   `json:"reasoning"`
	CorrectedResponse string   `json:"corrected_response"`
}

// parseVerdict extracts the JSON object from an auditor reply. Any
// parse failure yields the maximally-distrustful default: the system
// must never treat an unparsable audit reply as an implicit pass.
func parseVerdict(reply string) model.AuditVerdict {
	raw, ok := extractJSONObject(reply)
	if ok {
		var parsed auditReply
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			return model.AuditVerdict{
				Status:            model.ParseStatus(parsed.Status),
				ConfidenceScore:   parsed.ConfidenceScore,
				GroundedClaims:    orEmpty(parsed.GroundedClaims),
				UngroundedClaims:  orEmpty(parsed.UngroundedClaims),
				CorrectedResponse: parsed.CorrectedResponse,
				Reasoning:         parsed.Reasoning,
			}
		}
	}

	return model.AuditVerdict{
		Status:           model.StatusInvalid,
		ConfidenceScore:  0.0,
		GroundedClaims:   []string{},
		UngroundedClaims: []string{"Error al parsear la validación"},
		Reasoning:        "No se pudo parsear la respuesta del validador",
	}
}

// extractJSONObject returns the span from the first '{' to its
// matching '}', tracking string literals so braces inside reasoning
// text do not end the object early.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
