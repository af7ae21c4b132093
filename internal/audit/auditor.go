// Package audit implements the LLM-based validation path: the answer
// and its source passages are sent back to a text-generation service
// with a strict audit instruction, and the structured verdict drives
// an accept/replace decision. It is the stricter alternative to the
// lexical path in internal/validate; callers choose one per deployment.
package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/oncorad/oncoguard/internal/llm"
	"github.com/oncorad/oncoguard/internal/model"
)

// auditSystem is the system instruction for audit calls
const auditSystem = "Eres un auditor de información médica. Verificas respuestas contra textos fuente y respondes únicamente con JSON válido."

// auditPromptTemplate demands a strict JSON verdict. Sources and the
// answer are interpolated via formatSourceTexts / buildPrompt.
const auditPromptTemplate = `Eres un auditor de información médica. Tu tarea es verificar si una respuesta está COMPLETAMENTE respaldada por los textos fuente proporcionados.

TEXTOS FUENTE (estos son los únicos datos válidos):
%s

RESPUESTA A VERIFICAR:
%s

INSTRUCCIONES DE VERIFICACIÓN:
1. Identifica CADA afirmación factual en la respuesta.
2. Para cada afirmación, busca evidencia EXACTA en los textos fuente.
3. Marca como "RESPALDADA" solo si hay coincidencia textual clara.
4. Marca como "NO RESPALDADA" si la información no aparece en las fuentes.

RESPONDE EN EL SIGUIENTE FORMATO JSON:
{
    "status": "valid" | "partially_valid" | "invalid" | "insufficient_evidence",
    "confidence_score": 0.0-1.0,
    "grounded_claims": ["afirmación 1", "afirmación 2"],
    "ungrounded_claims": ["afirmación no respaldada 1"],
    "reasoning": "Explicación del análisis",
    "corrected_response": "Solo si status != valid, proporciona una versión corregida que SOLO incluya información de las fuentes"
}

IMPORTANTE:
- Si encuentras información en la respuesta que NO está en las fuentes, el status NO puede ser "valid".
- Las citas de página DEBEN coincidir con los metadatos de las fuentes.
- Sé estricto: es mejor decir "información insuficiente" que validar información dudosa.`

// refusalPrefix replaces an invalid answer when the auditor supplies
// no correction; the auditor's reasoning is appended.
const refusalPrefix = "No se puede proporcionar una respuesta confiable. " +
	"La información disponible en las guías clínicas es insuficiente " +
	"para responder esta consulta con precisión. Razón: "

// Auditor runs strict LLM-driven fact checks of answers against
// source passages.
type Auditor struct {
	provider llm.Provider
	model    string
}

// NewAuditor creates an auditor on top of a text-generation provider
func NewAuditor(provider llm.Provider, model string) *Auditor {
	return &Auditor{provider: provider, model: model}
}

// Validate obtains an audit verdict for the answer. With zero
// passages it short-circuits to insufficient_evidence without calling
// the external service. An unparsable reply is recovered into a
// maximally-distrustful verdict; a hard provider failure propagates
// to the caller, who decides fallback policy.
func (a *Auditor) Validate(ctx context.Context, answer string, passages []model.SourcePassage) (*model.AuditVerdict, error) {
	if len(passages) == 0 {
		return &model.AuditVerdict{
			Status:           model.StatusInsufficientEvidence,
			ConfidenceScore:  0.0,
			GroundedClaims:   []string{},
			UngroundedClaims: []string{},
			Reasoning:        "No hay fuentes disponibles para validar la respuesta.",
		}, nil
	}

	prompt := buildPrompt(answer, passages)

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		System:      auditSystem,
		Prompt:      prompt,
		Model:       a.model,
		Temperature: 0, // Deterministic verdicts
	})
	if err != nil {
		return nil, fmt.Errorf("audit call: %w", err)
	}

	verdict := parseVerdict(resp.Text)
	applyCitationCheck(&verdict, answer, passages)
	return &verdict, nil
}

// applyCitationCheck runs the strict page-exact citation verification
// over the answer and folds failures into the verdict. The auditor
// model is told to check page numbers but cannot be trusted to; a
// verdict never stays fully valid while the answer cites pages that do
// not exist in the sources.
func applyCitationCheck(verdict *model.AuditVerdict, answer string, passages []model.SourcePassage) {
	refs := ExtractCitations(answer)
	if len(refs) == 0 {
		return
	}

	report := VerifyCitations(refs, passages)
	if len(report.Unverified) == 0 {
		return
	}

	if verdict.Status == model.StatusValid {
		verdict.Status = model.StatusPartiallyValid
	}
	for _, ref := range report.Unverified {
		verdict.UngroundedClaims = append(verdict.UngroundedClaims,
			fmt.Sprintf("Cita no verificada: %s, página %d", ref.Document, ref.Page))
	}
}

// ValidateAndCorrect validates the answer and applies the correction
// policy, returning the final answer text, a human-readable note, and
// the verdict it was based on.
func (a *Auditor) ValidateAndCorrect(ctx context.Context, answer string, passages []model.SourcePassage) (string, string, *model.AuditVerdict, error) {
	verdict, err := a.Validate(ctx, answer, passages)
	if err != nil {
		return answer, "", nil, err
	}

	final := answer
	var notes string

	switch verdict.Status {
	case model.StatusValid:
		notes = fmt.Sprintf("✓ Respuesta validada con %.0f%% de confianza. %d afirmaciones respaldadas.",
			verdict.ConfidenceScore*100, len(verdict.GroundedClaims))

	case model.StatusPartiallyValid:
		if verdict.CorrectedResponse != "" {
			final = verdict.CorrectedResponse
			notes = fmt.Sprintf("⚠ Respuesta parcialmente válida. Corregida automáticamente. Afirmaciones no respaldadas eliminadas: %s",
				strings.Join(verdict.UngroundedClaims, "; "))
		} else {
			notes = fmt.Sprintf("⚠ Respuesta parcialmente válida (%.0f%%). Afirmaciones no respaldadas: %s",
				verdict.ConfidenceScore*100, strings.Join(verdict.UngroundedClaims, "; "))
		}

	case model.StatusInvalid:
		if verdict.CorrectedResponse != "" {
			final = verdict.CorrectedResponse
			notes = "✗ Respuesta original inválida. Se generó versión corregida basada exclusivamente en las fuentes disponibles."
		} else {
			final = refusalPrefix + verdict.Reasoning
			notes = "✗ Respuesta inválida - No fue posible generar una respuesta confiable"
		}

	case model.StatusInsufficientEvidence:
		notes = "⚠ Evidencia insuficiente en las fuentes disponibles."
	}

	return final, notes, verdict, nil
}

// buildPrompt interpolates sources and answer into the audit template
func buildPrompt(answer string, passages []model.SourcePassage) string {
	return fmt.Sprintf(auditPromptTemplate, formatSourceTexts(passages), answer)
}

// formatSourceTexts renders passages with their document, page, and
// version metadata so the auditor can check citations exactly.
func formatSourceTexts(passages []model.SourcePassage) string {
	var blocks []string
	for i, p := range passages {
		blocks = append(blocks, fmt.Sprintf(
			"[FUENTE %d]\nArchivo: %s\nPágina: %d\nVersión: %s\nTexto:\n%s\n%s",
			i+1, p.DocumentName, p.PageNumber, p.GuidelineVersion, p.Text,
			strings.Repeat("─", 40)))
	}
	return strings.Join(blocks, "\n\n")
}
