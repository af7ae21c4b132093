package validate

import (
	"fmt"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

// CitationMatcher checks citation markers against the set of retrieved
// source documents.
type CitationMatcher struct{}

// NewCitationMatcher creates a new citation matcher
func NewCitationMatcher() *CitationMatcher {
	return &CitationMatcher{}
}

// Verify checks every citation occurrence across all claims (not
// deduplicated) against the available documents. A citation is valid
// when its document reference and some available document name match
// as substrings in either direction, case-insensitively. Matching
// both ways tolerates truncated or partial filenames. Pages are
// recorded in the formatted output but never required to match here.
func (m *CitationMatcher) Verify(claims []model.Claim, passages []model.SourcePassage) (valid, invalid []string) {
	available := make(map[string]bool)
	for _, p := range passages {
		if p.DocumentName != "" {
			available[strings.ToLower(p.DocumentName)] = true
		}
	}

	for _, claim := range claims {
		for _, cit := range claim.Citations {
			cited := strings.ToLower(strings.TrimSpace(cit.Document))

			found := false
			if cited != "" {
				for doc := range available {
					if strings.Contains(doc, cited) || strings.Contains(cited, doc) {
						found = true
						break
					}
				}
			}

			if found {
				valid = append(valid, fmt.Sprintf("%s, Pág. %s", cit.Document, cit.PageOrUnknown()))
			} else {
				invalid = append(invalid, fmt.Sprintf("%s, Pág. %s (documento no encontrado)", cit.Document, cit.PageOrUnknown()))
			}
		}
	}

	return valid, invalid
}
