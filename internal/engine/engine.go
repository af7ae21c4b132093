// Package engine wires retrieval, generation, and validation into the
// consultation pipeline. It is the only package that knows about all
// the moving parts; the CLI talks to it and nothing below it.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oncorad/oncoguard/internal/audit"
	"github.com/oncorad/oncoguard/internal/cache"
	"github.com/oncorad/oncoguard/internal/extract"
	"github.com/oncorad/oncoguard/internal/llm"
	"github.com/oncorad/oncoguard/internal/model"
	"github.com/oncorad/oncoguard/internal/prompt"
	"github.com/oncorad/oncoguard/internal/retrieve"
	"github.com/oncorad/oncoguard/internal/risk"
	"github.com/oncorad/oncoguard/internal/worker"
)

const (
	memoryCacheTTL = 30 * time.Minute
	diskCacheTTL   = 6 * time.Hour
)

// Engine runs clinical consultations end to end: risk classification,
// guideline retrieval, answer generation, and validation.
type Engine struct {
	cfg       *model.Config
	retriever retrieve.Retriever
	provider  llm.Provider
	strategy  Strategy
}

// NewEngine builds an engine from configuration. The LLM provider is
// optional for the lexical strategy; the audit strategy requires one.
func NewEngine(cfg *model.Config) (*Engine, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	strategy, err := buildStrategy(cfg, provider)
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
	retriever := buildRetriever(cfg, limiter)

	return &Engine{
		cfg:       cfg,
		retriever: retriever,
		provider:  provider,
		strategy:  strategy,
	}, nil
}

func buildStrategy(cfg *model.Config, provider llm.Provider) (Strategy, error) {
	switch cfg.Strategy {
	case "", "lexical":
		mode, err := model.ParseSanitizeMode(cfg.Mode)
		if err != nil {
			return nil, err
		}
		return NewLexicalStrategy(cfg.Policy, mode), nil
	case "audit":
		if provider == nil {
			return nil, fmt.Errorf("audit strategy requires an LLM provider, none configured")
		}
		return NewAuditStrategy(audit.NewAuditor(provider, cfg.LLM.Model)), nil
	default:
		return nil, fmt.Errorf("unknown validation strategy: %s", cfg.Strategy)
	}
}

func buildRetriever(cfg *model.Config, limiter *worker.Limiter) retrieve.Retriever {
	timeout := time.Duration(cfg.Retrieval.Timeout) * time.Second
	inner := retrieve.NewHTTPRetriever(cfg.Retrieval.BaseURL, timeout, limiter)
	if cfg.Retrieval.NoCache {
		return inner
	}
	dir := cfg.Retrieval.CacheDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return retrieve.NewCachedRetriever(inner, cache.NewMemoryCache(memoryCacheTTL, memoryCacheTTL), diskCacheTTL)
		}
		dir = filepath.Join(home, ".oncoguard", "cache")
	}
	layered := cache.NewLayeredCache(memoryCacheTTL, dir, diskCacheTTL)
	return retrieve.NewCachedRetriever(inner, layered, diskCacheTTL)
}

// Strategy reports the active validation strategy name
func (e *Engine) StrategyName() string { return e.strategy.Name() }

// Check validates an already-generated answer against its passages.
// It satisfies worker.Checker so batch jobs can run through the pool.
func (e *Engine) Check(ctx context.Context, answer string, passages []model.SourcePassage) (string, model.Verdict, error) {
	outcome, err := e.strategy.Validate(ctx, extract.Normalize(answer), passages)
	if err != nil {
		return "", model.Verdict{}, err
	}
	return outcome.Answer, outcome.Verdict, nil
}

// CheckDetailed is Check with the full strategy outcome, for callers
// that render per-claim detail.
func (e *Engine) CheckDetailed(ctx context.Context, answer string, passages []model.SourcePassage) (Outcome, error) {
	return e.strategy.Validate(ctx, extract.Normalize(answer), passages)
}

// Consult runs the full pipeline for a clinical case: classify risk,
// retrieve guideline passages, generate an answer, validate it.
func (e *Engine) Consult(ctx context.Context, clinicalCase model.ClinicalCase) (*model.ConsultationResult, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("consultation requires an LLM provider, none configured")
	}

	level := risk.Classify(clinicalCase)

	passages, err := e.retrieveForCase(ctx, clinicalCase, level)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:    prompt.GenerationSystem,
		Prompt:    prompt.Generation(clinicalCase, level, passages),
		Model:     e.cfg.LLM.Model,
		MaxTokens: e.cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	answer := extract.Normalize(resp.Text)

	outcome, err := e.strategy.Validate(ctx, answer, passages)
	if err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}

	return &model.ConsultationResult{
		Answer:          outcome.Answer,
		OriginalAnswer:  answer,
		Status:          outcome.Verdict.Status,
		ValidationNotes: outcome.Verdict.Notes,
		RiskLevel:       level,
		Passages:        passages,
		Lexical:         outcome.Lexical,
		Audit:           outcome.Audit,
	}, nil
}

// retrieveForCase issues the risk-specific search queries and merges
// results, deduplicating by document and page and keeping the best
// relevance score first.
func (e *Engine) retrieveForCase(ctx context.Context, clinicalCase model.ClinicalCase, level model.RiskLevel) ([]model.SourcePassage, error) {
	queries := prompt.SearchQueries(clinicalCase, level)

	var merged []model.SourcePassage
	seen := make(map[string]bool)
	var lastErr error
	got := false

	for _, query := range queries {
		passages, err := e.retriever.Retrieve(ctx, query, e.cfg.Retrieval.TopK)
		if err != nil {
			lastErr = err
			continue
		}
		got = true
		for _, p := range passages {
			key := passageKey(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, p)
		}
	}

	// One failed query is tolerable, all of them failing is not
	if !got && lastErr != nil {
		return nil, lastErr
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})
	if limit := e.cfg.Retrieval.TopK * 2; limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func passageKey(p model.SourcePassage) string {
	if p.DocumentName != "" {
		return fmt.Sprintf("%s|%d", strings.ToLower(p.DocumentName), p.PageNumber)
	}
	text := p.Text
	if len(text) > 80 {
		text = text[:80]
	}
	return "text|" + text
}
