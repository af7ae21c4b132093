package model

// Citation represents one inline citation marker found in a claim,
// written as [Fuente: Documento, Pág. N]
type Citation struct {
	Document string `json:"document"`       // Document reference as written in the answer
	Page     string `json:"page,omitempty"` // Page as written; empty when the marker carries no page
}

// PageOrUnknown returns the cited page, or "?" when the marker had none
func (c Citation) PageOrUnknown() string {
	if c.Page == "" {
		return "?"
	}
	return c.Page
}

// Claim represents one atomic factual assertion extracted from a generated answer
type Claim struct {
	Text       string     `json:"text"`                 // The claim text itself (trimmed sentence)
	Start      int        `json:"start"`                // Byte offset of the claim in the original answer
	End        int        `json:"end"`                  // Byte offset one past the claim
	Citations  []Citation `json:"citations,omitempty"`  // Inline citation markers, in order of appearance
	Studies    []string   `json:"studies,omitempty"`    // Study/trial names mentioned (deduplicated)
	Authors    []string   `json:"authors,omitempty"`    // Author references mentioned (deduplicated)
	Statistics []string   `json:"statistics,omitempty"` // Numeric assertions: percentages, HRs, durations, p-values
}

// HasCitation reports whether the claim carries at least one inline citation
func (c Claim) HasCitation() bool {
	return len(c.Citations) > 0
}

// Excerpt returns up to the first n bytes of the claim text
func (c Claim) Excerpt(n int) string {
	if len(c.Text) <= n {
		return c.Text
	}
	return c.Text[:n]
}
