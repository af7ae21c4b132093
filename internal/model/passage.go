package model

// SourcePassage represents one retrieved unit of evidence from the
// guideline index. Passages originate from a less-trusted upstream
// retrieval call, so optional fields may be absent; the validation
// core treats missing values as empty rather than failing.
type SourcePassage struct {
	Text             string  `json:"text"`                        // Passage text content
	DocumentName     string  `json:"document_name"`               // Source document (e.g., NCCN_Prostate_2024.pdf)
	PageNumber       int     `json:"page_number,omitempty"`       // 1-based page, 0 when unknown
	Section          string  `json:"section,omitempty"`           // Section heading within the document
	GuidelineVersion string  `json:"guideline_version,omitempty"` // Guideline edition (e.g., "v2.2024")
	RelevanceScore   float64 `json:"relevance_score"`             // Retrieval similarity in [0,1]
}

// HasPage reports whether the passage carries a usable page number
func (p SourcePassage) HasPage() bool {
	return p.PageNumber > 0
}
