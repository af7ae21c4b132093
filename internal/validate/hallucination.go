package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

// HallucinationDetector flags claims whose named studies, authors, or
// statistics cannot be found anywhere in the retrieved corpus.
type HallucinationDetector struct {
	// StrictMode enables statistic verification; named studies and
	// authors are always checked.
	StrictMode bool
}

// NewHallucinationDetector creates a detector
func NewHallucinationDetector(strictMode bool) *HallucinationDetector {
	return &HallucinationDetector{StrictMode: strictMode}
}

// Detect returns one entry per claim with at least one issue. Claims
// with no issues are omitted.
func (d *HallucinationDetector) Detect(claims []model.Claim, passages []model.SourcePassage) []model.Hallucination {
	var texts []string
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	corpus := strings.ToLower(strings.Join(texts, " "))

	var flagged []model.Hallucination
	for _, claim := range claims {
		var issues []string

		for _, study := range claim.Studies {
			if !strings.Contains(corpus, strings.ToLower(study)) {
				issues = append(issues, fmt.Sprintf("Estudio '%s' no encontrado en fuentes", study))
			}
		}

		for _, author := range claim.Authors {
			// Only the first token (treated as surname) is checked;
			// short tokens cause too many incidental matches to flag.
			surname := strings.ToLower(author)
			if fields := strings.Fields(surname); len(fields) > 0 {
				surname = fields[0]
			}
			if len(surname) > 3 && !strings.Contains(corpus, surname) {
				issues = append(issues, fmt.Sprintf("Autor '%s' no encontrado en fuentes", author))
			}
		}

		if d.StrictMode {
			for _, stat := range claim.Statistics {
				if statSupported(stat, corpus) {
					continue
				}
				issues = append(issues, fmt.Sprintf("Estadística '%s' no verificada en fuentes", stat))
			}
		}

		if len(issues) > 0 {
			flagged = append(flagged, model.Hallucination{
				Claim:       claim.Excerpt(excerptLen),
				Issues:      issues,
				HasCitation: claim.HasCitation(),
				Start:       claim.Start,
				End:         claim.End,
			})
		}
	}

	return flagged
}

// statSupported reports whether a statistic appears in the corpus,
// either literally (with or without a percent sign) or within ±1 whole
// unit to absorb rounding. Non-numeric statistic strings are treated
// as supported: they cannot be checked, and an uncheckable value must
// not abort validation.
func statSupported(stat, corpus string) bool {
	if strings.Contains(corpus, stat) || strings.Contains(corpus, stat+"%") {
		return true
	}

	val, err := strconv.ParseFloat(stat, 64)
	if err != nil {
		return true
	}
	for delta := -1; delta <= 1; delta++ {
		if strings.Contains(corpus, strconv.Itoa(int(val)+delta)) {
			return true
		}
	}
	return false
}
