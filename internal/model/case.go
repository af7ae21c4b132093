package model

import (
	"fmt"
	"strings"
)

// RiskLevel represents NCCN-style risk stratification
type RiskLevel string

const (
	RiskVeryLow                 RiskLevel = "muy_bajo"
	RiskLow                     RiskLevel = "bajo"
	RiskIntermediateFavorable   RiskLevel = "intermedio_favorable"
	RiskIntermediateUnfavorable RiskLevel = "intermedio_desfavorable"
	RiskHigh                    RiskLevel = "alto"
	RiskVeryHigh                RiskLevel = "muy_alto"
	RiskMetastatic              RiskLevel = "metastasico"
)

// ClinicalCase represents one patient case submitted for consultation
type ClinicalCase struct {
	Histology      string   `json:"histologia"`                 // Histological tumor type (e.g., "adenocarcinoma de próstata")
	TumorType      string   `json:"tumor_type,omitempty"`       // Primary site (e.g., "prostata")
	TNM            string   `json:"tnm,omitempty"`              // TNM classification (e.g., "T2bN0M0")
	PSA            *float64 `json:"psa,omitempty"`              // PSA in ng/mL, prostate only
	Gleason        int      `json:"gleason,omitempty"`          // Gleason score sum, prostate only
	GleasonPrimary int      `json:"gleason_primary,omitempty"`  // Gleason primary pattern, prostate only
	PositiveCores  float64  `json:"positive_cores,omitempty"`   // Percent of positive biopsy cores, prostate only
	Age            int      `json:"age,omitempty"`              // Patient age in years
	Comorbidities  []string `json:"comorbidities,omitempty"`    // Relevant comorbidities
	AdditionalInfo string   `json:"additional_info,omitempty"`  // Free-text context
}

// ToQuery converts the case into a structured Spanish retrieval query
func (c ClinicalCase) ToQuery() string {
	parts := []string{fmt.Sprintf("Histología: %s", c.Histology)}

	if c.TNM != "" {
		parts = append(parts, fmt.Sprintf("Estadio TNM: %s", c.TNM))
	}
	if c.PSA != nil {
		parts = append(parts, fmt.Sprintf("PSA: %g ng/mL", *c.PSA))
	}
	if c.Gleason > 0 {
		parts = append(parts, fmt.Sprintf("Gleason: %d", c.Gleason))
	}
	if c.Age > 0 {
		parts = append(parts, fmt.Sprintf("Edad: %d años", c.Age))
	}
	if len(c.Comorbidities) > 0 {
		parts = append(parts, fmt.Sprintf("Comorbilidades: %s", strings.Join(c.Comorbidities, ", ")))
	}
	if c.AdditionalInfo != "" {
		parts = append(parts, fmt.Sprintf("Información adicional: %s", c.AdditionalInfo))
	}

	var b strings.Builder
	b.WriteString("Caso clínico para evaluación oncológica radioterápica:\n")
	for _, p := range parts {
		b.WriteString("- ")
		b.WriteString(p)
		b.WriteString("\n")
	}
	b.WriteString("\n¿Cuál es la recomendación de tratamiento radioterápico según las guías de práctica clínica?")
	return b.String()
}

// ConsultationResult is the final outcome returned to the caller of
// the consultation pipeline
type ConsultationResult struct {
	Answer          string          `json:"answer"`                     // Final (possibly corrected/sanitized) answer
	OriginalAnswer  string          `json:"original_answer,omitempty"`  // Generated answer before validation, when rewritten
	Status          Status          `json:"status"`                     // Normalized validation status
	ValidationNotes string          `json:"validation_notes,omitempty"` // Human-readable validation outcome
	RiskLevel       RiskLevel       `json:"risk_level,omitempty"`       // Deterministic risk classification, when applicable
	Passages        []SourcePassage `json:"passages"`                   // Evidence the answer was validated against
	Lexical         *ValidationResult `json:"lexical,omitempty"`        // Lexical-path verdict, when that strategy ran
	Audit           *AuditVerdict     `json:"audit,omitempty"`          // Audit-path verdict, when that strategy ran
}
