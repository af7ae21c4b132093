package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oncorad/oncoguard/internal/engine"
	"github.com/oncorad/oncoguard/internal/model"
	"github.com/spf13/cobra"
)

var (
	askStrategy  string
	askMode      string
	askJSON      string
	askTimeout   time.Duration
	retrievalURL string
	topK         int
	noCache      bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <case-file>",
	Short: "Run a full clinical consultation for a case",
	Long: `Ask runs the complete consultation pipeline for one clinical case:
- Classify the case into an NCCN-style risk group
- Retrieve guideline passages for the risk-specific queries
- Generate an answer grounded on the retrieved evidence
- Validate the answer and sanitize or correct what fails

The case file holds a JSON object describing the patient case
(histology, TNM, PSA, Gleason, age, comorbidities).

Example:
  oncoguard ask case.json --llm-provider openai
  oncoguard ask case.json --llm-provider ollama --llm-model llama3.1
  oncoguard ask case.json --llm-provider openai --strategy audit --json result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askStrategy, "strategy", "", "validation strategy (lexical, audit)")
	askCmd.Flags().StringVar(&askMode, "mode", "", "sanitization mode for the lexical path (flag, annotate, remove)")
	askCmd.Flags().StringVar(&askJSON, "json", "", "output JSON path (optional)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 3*time.Minute, "overall consultation timeout")

	// Retrieval flags
	askCmd.Flags().StringVar(&retrievalURL, "retrieval-url", "", "retrieval service base URL")
	askCmd.Flags().IntVar(&topK, "top-k", 0, "passages to retrieve per query")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the retrieval cache")

	// LLM flags
	askCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	askCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runAsk(cmd *cobra.Command, args []string) error {
	casePath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	cfg := loadConfig()
	applyLLMFlags(cfg)
	if askStrategy != "" {
		cfg.Strategy = askStrategy
	}
	if askMode != "" {
		cfg.Mode = askMode
	}
	if retrievalURL != "" {
		cfg.Retrieval.BaseURL = retrievalURL
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}
	if noCache {
		cfg.Retrieval.NoCache = true
	}

	if cfg.LLM.Provider == "" {
		return fmt.Errorf("consultation requires an LLM provider: set --llm-provider or llm.provider in the config")
	}
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	clinicalCase, err := loadCase(casePath)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Case:      %s\n", clinicalCase.Histology)
		fmt.Fprintf(os.Stderr, "Strategy:  %s\n", eng.StrategyName())
		fmt.Fprintf(os.Stderr, "Retrieval: %s\n", cfg.Retrieval.BaseURL)
		fmt.Fprintln(os.Stderr)
	}

	result, err := eng.Consult(ctx, clinicalCase)
	if err != nil {
		return fmt.Errorf("consultation failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Risk group: %s\n", result.RiskLevel)
		fmt.Fprintf(os.Stderr, "✓ Retrieved %d passages\n", len(result.Passages))
		fmt.Fprintf(os.Stderr, "✓ Validation status: %s\n", result.Status)
		fmt.Fprintln(os.Stderr)
	}

	fmt.Println(result.Answer)
	if result.ValidationNotes != "" {
		fmt.Println()
		fmt.Println(result.ValidationNotes)
	}

	if askJSON != "" {
		if err := writeJSON(askJSON, result); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", askJSON)
		}
	}

	return nil
}

func loadCase(path string) (model.ClinicalCase, error) {
	var clinicalCase model.ClinicalCase
	data, err := os.ReadFile(path)
	if err != nil {
		return clinicalCase, fmt.Errorf("read case file: %w", err)
	}
	if err := json.Unmarshal(data, &clinicalCase); err != nil {
		return clinicalCase, fmt.Errorf("parse case file: %w", err)
	}
	if clinicalCase.Histology == "" {
		return clinicalCase, fmt.Errorf("case file missing required field: histologia")
	}
	return clinicalCase, nil
}
