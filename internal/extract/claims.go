package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/oncorad/oncoguard/internal/model"
)

// minClaimLength is the minimum segment length (in bytes) for a
// sentence to count as a checkable claim. Shorter fragments are
// headings, list bullets, or connective tissue.
const minClaimLength = 10

// ClaimExtractor splits a generated answer into atomic factual claims
// and tags each with citations, studies, authors, and statistics.
type ClaimExtractor struct{}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{}
}

// Extract extracts claims from answer text, in document order. Claim
// spans index into the text exactly as given, so callers that need to
// edit the answer later (sanitization) must pass the same text they
// will edit. Empty or whitespace-only input yields no claims; that is
// a valid state, not an error.
func (e *ClaimExtractor) Extract(text string) []model.Claim {
	var claims []model.Claim

	for _, seg := range splitSentences(text) {
		citations := findCitations(seg.text)

		claims = append(claims, model.Claim{
			Text:       seg.text,
			Start:      seg.start,
			End:        seg.end,
			Citations:  citations,
			Studies:    matchFeature(FeatureStudy, seg.text),
			Authors:    matchFeature(FeatureAuthor, seg.text),
			Statistics: matchFeature(FeatureStatistic, seg.text),
		})
	}

	return claims
}

// findCitations extracts inline citation markers in order of appearance
func findCitations(text string) []model.Citation {
	var citations []model.Citation
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		citations = append(citations, model.Citation{
			Document: strings.TrimSpace(m[1]),
			Page:     m[2],
		})
	}
	return citations
}

// segment is one sentence-like span of the answer text
type segment struct {
	text  string
	start int // byte offset of text[0] in the original answer
	end   int // byte offset one past the last byte of text
}

// splitSentences splits text on sentence terminators (., !, ?)
// followed by whitespace, keeping byte spans into the original text.
// Segments shorter than minClaimLength are discarded.
func splitSentences(text string) []segment {
	var segments []segment
	start := 0

	flush := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if len(trimmed) >= minClaimLength {
			lead := strings.Index(raw, trimmed)
			segments = append(segments, segment{
				text:  trimmed,
				start: start + lead,
				end:   start + lead + len(trimmed),
			})
		}
	}

	depth := 0 // bracket depth; citation markers like [Fuente: X, Pág. 4] must not be split
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.', '!', '?':
			if depth == 0 && i+1 < len(text) && isSpace(text[i+1]) {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(text))

	return segments
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Normalize strips HTML/XML markup from an answer, returning plain
// text. Some generation services wrap output in markup; claim spans
// must be computed on the stripped text, so callers normalize once
// before extraction and keep editing the normalized text. Text with
// no tags passes through unchanged.
func Normalize(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}
