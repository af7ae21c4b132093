package extract

import "regexp"

// Feature names one kind of checkable content inside a claim
type Feature string

const (
	FeatureStudy     Feature = "study"
	FeatureAuthor    Feature = "author"
	FeatureStatistic Feature = "statistic"
)

// FeaturePattern pairs a compiled pattern with the claim feature it
// detects. The first capture group is the extracted value.
type FeaturePattern struct {
	Feature Feature
	Pattern *regexp.Regexp
}

// citationPattern matches the inline citation convention the whole
// system depends on: [Fuente: Documento, Pág. N] with the page part
// optional and the label matched case-insensitively.
var citationPattern = regexp.MustCompile(`(?i)\[fuente:\s*([^,\]]+)(?:,\s*pág\.?\s*(\d+))?\]`)

// featurePatterns is the fixed extraction table. New patterns are
// added here, not in control flow.
var featurePatterns = []FeaturePattern{
	// Named studies/trials: "estudio RTOG-9408", "trial PROTECT", "ensayo CHHiP"
	{FeatureStudy, regexp.MustCompile(`estudio\s+([A-Z][A-Za-z0-9\-]+)`)},
	{FeatureStudy, regexp.MustCompile(`trial\s+([A-Z][A-Za-z0-9\-]+)`)},
	{FeatureStudy, regexp.MustCompile(`ensayo\s+([A-Z][A-Za-z0-9\-]+)`)},
	// Bare acronym-plus-number identifiers: RTOG-9408, EORTC 22863
	{FeatureStudy, regexp.MustCompile(`([A-Z]{2,}[\-\s]?\d{2,})`)},

	// Author references: "según Bolla", "por D'Amico", "Zelefsky et al."
	{FeatureAuthor, regexp.MustCompile(`(?:según|por|de)\s+([A-Z][a-z]+(?:\s+et\s+al\.?)?)`)},
	{FeatureAuthor, regexp.MustCompile(`([A-Z][a-z]+)\s+(?:y\s+col\.|et\s+al\.)`)},

	// Numeric assertions: percentages, hazard ratios, durations, p-values
	{FeatureStatistic, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)},
	{FeatureStatistic, regexp.MustCompile(`HR\s*[=:]\s*(\d+(?:\.\d+)?)`)},
	{FeatureStatistic, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:años|months|years)`)},
	{FeatureStatistic, regexp.MustCompile(`p\s*[=<>]\s*(\d+(?:\.\d+)?)`)},
}

// matchFeature collects first-group matches of every pattern for the
// given feature, deduplicated in order of first appearance.
func matchFeature(f Feature, text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, fp := range featurePatterns {
		if fp.Feature != f {
			continue
		}
		for _, m := range fp.Pattern.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if !seen[m[1]] {
				seen[m[1]] = true
				out = append(out, m[1])
			}
		}
	}
	return out
}
