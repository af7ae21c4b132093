package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/oncorad/oncoguard/internal/engine"
	"github.com/oncorad/oncoguard/internal/model"
	"github.com/oncorad/oncoguard/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency   int
	batchOut      string
	batchTimeout  time.Duration
	batchStrategy string
	batchMode     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <records-file>",
	Short: "Validate many answers from a JSONL file in parallel",
	Long: `Batch validates multiple answer/passages records concurrently:
- Read records from a JSONL file (one JSON object per line)
- Validate records in parallel with a configurable worker count
- Write one result per record with the verdict and sanitized answer

Each input line holds {"id": ..., "answer": ..., "passages": [...]}.
Blank lines and lines starting with # are skipped.

Example:
  oncoguard batch records.jsonl
  oncoguard batch records.jsonl --concurrency 8 --output results.json
  oncoguard batch records.jsonl --strategy audit --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOut, "output", "oncoguard-results.json", "output JSON path")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchStrategy, "strategy", "", "validation strategy (lexical, audit)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "sanitization mode for the lexical path (flag, annotate, remove)")

	// LLM flags, used by the audit strategy
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// batchOutcome is the per-record shape written to the output file
type batchOutcome struct {
	ID      string        `json:"id"`
	Status  model.Status  `json:"status,omitempty"`
	Verdict model.Verdict `json:"verdict"`
	Answer  string        `json:"answer,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyLLMFlags(cfg)
	if batchStrategy != "" {
		cfg.Strategy = batchStrategy
	}
	if batchMode != "" {
		cfg.Mode = batchMode
	}
	if cfg.Strategy == "audit" {
		if err := resolveAPIKey(cfg); err != nil {
			return err
		}
	}
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  OncoGuard Batch Validation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Strategy:     %s\n", eng.StrategyName())
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", batchOut)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(eng, cfg.Concurrency.BatchWorkers)

	fmt.Fprintf(os.Stderr, "⚙️  Reading records from file...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	outcomes := make([]batchOutcome, 0, len(results))
	successCount := 0
	failureCount := 0
	invalidCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ID, result.Error)
			outcomes = append(outcomes, batchOutcome{ID: result.ID, Error: result.Error.Error()})
			continue
		}

		successCount++
		if result.Verdict.Status == model.StatusInvalid {
			invalidCount++
		}

		outcomes = append(outcomes, batchOutcome{
			ID:      result.ID,
			Status:  result.Verdict.Status,
			Verdict: result.Verdict,
			Answer:  result.Answer,
		})
		fmt.Fprintf(os.Stderr, "✓ %s (%s, confidence %.2f)\n", result.ID, result.Verdict.Status, result.Verdict.Confidence)
	}

	if err := writeJSON(batchOut, outcomes); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d records\n", len(results))
	fmt.Fprintf(os.Stderr, "  Validated: %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Invalid:   %d\n", invalidCount)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", batchOut)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
