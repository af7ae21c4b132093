package audit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

// citationRefPatterns cover the citation shapes answers use besides
// the canonical bracketed form: "(documento, página X)",
// "[documento, p. X]", "Fuente: documento, página X".
var citationRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(([^,]+),\s*(?:página|page|p\.?)\s*(\d+)\)`),
	regexp.MustCompile(`(?i)\[([^\]]+?),\s*(?:página|page|p\.?)\s*(\d+)\]`),
	regexp.MustCompile(`(?i)Fuente:\s*([^,]+),\s*(?:página|page|p\.?)\s*(\d+)`),
}

// CitationRef is one (document, page) reference found in an answer
type CitationRef struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
}

// VerificationReport summarizes strict citation verification
type VerificationReport struct {
	Verified         []CitationRef `json:"verified"`
	Unverified       []CitationRef `json:"unverified"`
	VerificationRate float64       `json:"verification_rate"`
}

// ExtractCitations finds citation references in answer text
func ExtractCitations(answer string) []CitationRef {
	var refs []CitationRef
	for _, pattern := range citationRefPatterns {
		for _, m := range pattern.FindAllStringSubmatch(answer, -1) {
			page, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			refs = append(refs, CitationRef{
				Document: strings.TrimSpace(m[1]),
				Page:     page,
			})
		}
	}
	return refs
}

// VerifyCitations checks references against the passage lookup table.
// Unlike the lexical matcher, this path is strict: the document name
// must substring-match AND the page must match exactly.
func VerifyCitations(refs []CitationRef, passages []model.SourcePassage) VerificationReport {
	report := VerificationReport{
		Verified:   []CitationRef{},
		Unverified: []CitationRef{},
	}
	if len(refs) == 0 {
		return report
	}

	type docPage struct {
		doc  string
		page int
	}
	var lookup []docPage
	for _, p := range passages {
		lookup = append(lookup, docPage{doc: strings.ToLower(p.DocumentName), page: p.PageNumber})
	}

	for _, ref := range refs {
		doc := strings.ToLower(ref.Document)

		found := false
		for _, entry := range lookup {
			if strings.Contains(entry.doc, doc) || strings.Contains(doc, entry.doc) {
				if ref.Page == entry.page {
					found = true
					break
				}
			}
		}

		if found {
			report.Verified = append(report.Verified, ref)
		} else {
			report.Unverified = append(report.Unverified, ref)
		}
	}

	report.VerificationRate = float64(len(report.Verified)) / float64(len(refs))
	return report
}
