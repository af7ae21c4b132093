// Package prompt builds the Spanish clinical prompts: retrieval
// queries for a case and the generation prompt that instructs the
// model to answer only from evidence and to cite in the exact
// [Fuente: Documento, Pág. N] form the validation core matches on.
package prompt

import (
	"fmt"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

// GenerationSystem is the system instruction for answer generation
const GenerationSystem = "Eres un oncólogo radioterapeuta experto. Respondes únicamente con información respaldada por la evidencia proporcionada."

var riskDescriptions = map[model.RiskLevel]string{
	model.RiskVeryLow:                 "muy bajo",
	model.RiskLow:                     "bajo",
	model.RiskIntermediateFavorable:   "intermedio favorable",
	model.RiskIntermediateUnfavorable: "intermedio desfavorable",
	model.RiskHigh:                    "alto",
	model.RiskVeryHigh:                "muy alto",
	model.RiskMetastatic:              "metastásico",
}

// SearchQueries generates the retrieval queries for a case: the main
// case query plus risk- and treatment-angle variants for broader
// recall.
func SearchQueries(c model.ClinicalCase, level model.RiskLevel) []string {
	tumor := c.TumorType
	if tumor == "" {
		tumor = c.Histology
	}

	queries := []string{
		c.ToQuery(),
		fmt.Sprintf("%s %s tratamiento radioterapia recomendación", tumor, c.TNM),
		fmt.Sprintf("%s riesgo %s protocolo tratamiento", tumor, level),
		fmt.Sprintf("%s fraccionamiento dosis esquema radioterapia", tumor),
	}

	if c.PSA != nil && c.Gleason > 0 {
		queries = append(queries, fmt.Sprintf("próstata PSA %g Gleason %d radioterapia", *c.PSA, c.Gleason))
	}

	return queries
}

// Generation builds the RAG prompt for a case together with the
// retrieved evidence. The citation-format instruction is load-bearing:
// downstream citation matching silently degrades to zero matches when
// answers cite in any other form.
func Generation(c model.ClinicalCase, level model.RiskLevel, passages []model.SourcePassage) string {
	riskDesc, ok := riskDescriptions[level]
	if !ok {
		riskDesc = string(level)
	}

	return fmt.Sprintf(`Eres un oncólogo radioterapeuta experto. Analiza el siguiente caso clínico y proporciona una recomendación terapéutica basada ÚNICAMENTE en la evidencia proporcionada.

## CASO CLÍNICO
%s

## CLASIFICACIÓN DE RIESGO
Riesgo calculado: %s

## EVIDENCIA DISPONIBLE (Documentos recuperados)
%s

## INSTRUCCIONES
Basándote EXCLUSIVAMENTE en los fragmentos de evidencia proporcionados arriba:

1. **Confirma o ajusta** la clasificación de riesgo del paciente
2. **Recomienda** el esquema de tratamiento más apropiado, incluyendo técnica de radioterapia, dosis total y fraccionamiento, y terapia sistémica si corresponde
3. **Extrae** los datos de sobrevida y control local de la evidencia
4. **Cita** obligatoriamente cada afirmación con el formato: [Fuente: Nombre_Archivo, Pág. X]

IMPORTANTE: Si la información solicitada NO está disponible en los fragmentos proporcionados, indica explícitamente "No disponible en la evidencia consultada" en lugar de inventar datos.`,
		c.ToQuery(), riskDesc, FormatEvidence(passages))
}

// FormatEvidence renders passages as numbered evidence fragments with
// their document and page metadata.
func FormatEvidence(passages []model.SourcePassage) string {
	if len(passages) == 0 {
		return "(Sin evidencia recuperada)"
	}

	var blocks []string
	for i, p := range passages {
		header := fmt.Sprintf("[Fragmento %d] %s, Pág. %d", i+1, p.DocumentName, p.PageNumber)
		if p.Section != "" {
			header += fmt.Sprintf(" (%s)", p.Section)
		}
		blocks = append(blocks, header+"\n"+p.Text)
	}
	return strings.Join(blocks, "\n\n")
}
