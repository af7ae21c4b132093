package audit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oncorad/oncoguard/internal/llm"
	"github.com/oncorad/oncoguard/internal/model"
)

// fakeProvider returns a canned reply and records the requests it saw
type fakeProvider struct {
	reply    string
	err      error
	requests []llm.CompletionRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Text: f.reply, Model: "fake"}, nil
}

func (f *fakeProvider) IsAvailable(_ context.Context) bool { return true }

func somePassages() []model.SourcePassage {
	return []model.SourcePassage{{
		Text:             "La dosis recomendada es 78 Gy en 39 fracciones.",
		DocumentName:     "NCCN_Prostate_2024.pdf",
		PageNumber:       45,
		GuidelineVersion: "v2.2024",
	}}
}

func TestAuditor_NoPassagesShortCircuits(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "valid"}`}
	auditor := NewAuditor(provider, "gpt-4o-mini")

	verdict, err := auditor.Validate(context.Background(), "Una respuesta cualquiera.", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if verdict.Status != model.StatusInsufficientEvidence {
		t.Errorf("Expected insufficient_evidence, got %s", verdict.Status)
	}
	if len(provider.requests) != 0 {
		t.Errorf("Expected no provider calls with zero passages, got %d", len(provider.requests))
	}
	if !strings.Contains(verdict.Reasoning, "No hay fuentes disponibles") {
		t.Errorf("Unexpected reasoning: %q", verdict.Reasoning)
	}
}

func TestAuditor_PromptCarriesSourcesAndAnswer(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "valid", "confidence_score": 0.95}`}
	auditor := NewAuditor(provider, "gpt-4o-mini")

	answer := "La dosis recomendada es 78 Gy [Fuente: NCCN_Prostate_2024.pdf, Pág. 45]."
	verdict, err := auditor.Validate(context.Background(), answer, somePassages())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if verdict.Status != model.StatusValid {
		t.Errorf("Expected valid, got %s", verdict.Status)
	}

	if len(provider.requests) != 1 {
		t.Fatalf("Expected 1 provider call, got %d", len(provider.requests))
	}
	req := provider.requests[0]
	if req.Temperature != 0 {
		t.Errorf("Expected temperature 0 for audit calls, got %f", req.Temperature)
	}
	if !strings.Contains(req.Prompt, "NCCN_Prostate_2024.pdf") {
		t.Error("Expected source metadata in the audit prompt")
	}
	if !strings.Contains(req.Prompt, "Página: 45") {
		t.Error("Expected page metadata in the audit prompt")
	}
	if !strings.Contains(req.Prompt, answer) {
		t.Error("Expected the answer under verification in the prompt")
	}
}

func TestAuditor_BadPageCitationDemotesValidVerdict(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "valid", "confidence_score": 0.9}`}
	auditor := NewAuditor(provider, "")

	answer := "La dosis es 78 Gy (NCCN_Prostate_2024.pdf, página 99)."
	verdict, err := auditor.Validate(context.Background(), answer, somePassages())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if verdict.Status != model.StatusPartiallyValid {
		t.Errorf("Expected demotion to partially_valid, got %s", verdict.Status)
	}
	found := false
	for _, c := range verdict.UngroundedClaims {
		if strings.Contains(c, "página 99") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected unverified citation listed, got %v", verdict.UngroundedClaims)
	}
}

func TestAuditor_ProviderFailurePropagates(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	auditor := NewAuditor(provider, "gpt-4o-mini")

	_, err := auditor.Validate(context.Background(), "Respuesta.", somePassages())
	if err == nil {
		t.Fatal("Expected error to propagate")
	}
	if !strings.Contains(err.Error(), "audit call") {
		t.Errorf("Expected wrapped audit error, got %v", err)
	}
}

func TestValidateAndCorrect_ValidKeepsAnswer(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "valid", "confidence_score": 0.9, "grounded_claims": ["a", "b"]}`}
	auditor := NewAuditor(provider, "")

	answer := "Respuesta original validada."
	final, notes, verdict, err := auditor.ValidateAndCorrect(context.Background(), answer, somePassages())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if final != answer {
		t.Errorf("Expected answer unchanged, got %q", final)
	}
	if !strings.HasPrefix(notes, "✓") {
		t.Errorf("Expected success note, got %q", notes)
	}
	if verdict.Status != model.StatusValid {
		t.Errorf("Expected valid verdict, got %s", verdict.Status)
	}
}

func TestValidateAndCorrect_PartialUsesCorrection(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "partially_valid", "confidence_score": 0.6,
		"ungrounded_claims": ["dato inventado"], "corrected_response": "Versión corregida."}`}
	auditor := NewAuditor(provider, "")

	final, notes, _, err := auditor.ValidateAndCorrect(context.Background(), "Respuesta original.", somePassages())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if final != "Versión corregida." {
		t.Errorf("Expected corrected response, got %q", final)
	}
	if !strings.Contains(notes, "dato inventado") {
		t.Errorf("Expected ungrounded claims listed, got %q", notes)
	}
}

func TestValidateAndCorrect_PartialWithoutCorrectionKeepsAnswer(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "partially_valid", "confidence_score": 0.5,
		"ungrounded_claims": ["dato inventado"]}`}
	auditor := NewAuditor(provider, "")

	answer := "Respuesta original parcial."
	final, notes, _, err := auditor.ValidateAndCorrect(context.Background(), answer, somePassages())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if final != answer {
		t.Errorf("Expected answer kept without correction, got %q", final)
	}
	if !strings.HasPrefix(notes, "⚠") {
		t.Errorf("Expected warning note, got %q", notes)
	}
}

func TestValidateAndCorrect_InvalidUsesCorrection(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "invalid", "confidence_score": 0.1,
		"corrected_response": "Solo lo respaldado por las fuentes."}`}
	auditor := NewAuditor(provider, "")

	final, notes, _, err := auditor.ValidateAndCorrect(context.Background(), "Respuesta inventada.", somePassages())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if final != "Solo lo respaldado por las fuentes." {
		t.Errorf("Expected corrected response, got %q", final)
	}
	if !strings.HasPrefix(notes, "✗") {
		t.Errorf("Expected invalid note, got %q", notes)
	}
}

func TestValidateAndCorrect_InvalidWithoutCorrectionRefuses(t *testing.T) {
	provider := &fakeProvider{reply: `{"status": "invalid", "confidence_score": 0.0,
		"reasoning": "Nada coincide con las fuentes."}`}
	auditor := NewAuditor(provider, "")

	final, _, _, err := auditor.ValidateAndCorrect(context.Background(), "Respuesta inventada.", somePassages())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(final, "No se puede proporcionar una respuesta confiable.") {
		t.Errorf("Expected refusal text, got %q", final)
	}
	if !strings.Contains(final, "Nada coincide con las fuentes.") {
		t.Errorf("Expected auditor reasoning appended, got %q", final)
	}
}
