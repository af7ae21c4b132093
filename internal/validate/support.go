package validate

import (
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

// excerptLen bounds the supporting/flagged text excerpts carried in results
const excerptLen = 200

// FactualSupportScorer estimates whether a claim is textually grounded
// in the retrieved passages via word overlap. This is a lexical
// heuristic, not semantic similarity; paraphrased evidence scores low.
type FactualSupportScorer struct{}

// NewFactualSupportScorer creates a new support scorer
func NewFactualSupportScorer() *FactualSupportScorer {
	return &FactualSupportScorer{}
}

// Check computes, for each passage, the fraction of the claim's
// significant words (lowercased, longer than 3 bytes) that appear in
// the passage, and returns whether the best score reaches threshold,
// the best score, and an excerpt of the best-scoring passage.
func (s *FactualSupportScorer) Check(claimText string, passages []model.SourcePassage, threshold float64) (supported bool, score float64, bestExcerpt string) {
	claimWords := significantWords(claimText)

	best := 0.0
	excerpt := ""

	for _, p := range passages {
		passageWords := significantWords(p.Text)
		if len(claimWords) == 0 || len(passageWords) == 0 {
			continue
		}

		overlap := 0
		for w := range claimWords {
			if passageWords[w] {
				overlap++
			}
		}

		sc := float64(overlap) / float64(len(claimWords))
		if sc > best {
			best = sc
			if len(p.Text) > excerptLen {
				excerpt = p.Text[:excerptLen]
			} else {
				excerpt = p.Text
			}
		}
	}

	return best >= threshold, best, excerpt
}

// significantWords tokenizes by whitespace, lowercases, and keeps
// words longer than 3 bytes.
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 3 {
			words[w] = true
		}
	}
	return words
}
