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
	checkStrategy string
	checkMode     string
	checkJSON     string
	checkTimeout  time.Duration
	llmProvider   string
	llmModel      string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <answer-file> <passages-file>",
	Short: "Validate a generated answer against its source passages",
	Long: `Check validates one generated answer against the passages it was
produced from:
- Extract factual claims and their citations
- Verify each citation against the retrieved documents
- Score textual support for every claim
- Detect unsupported studies, authors, and statistics
- Sanitize the answer per the selected mode (flag, annotate, remove)

The answer file holds the plain answer text. The passages file holds a
JSON array of retrieved passages.

Example:
  oncoguard check answer.txt passages.json
  oncoguard check answer.txt passages.json --mode annotate --json result.json
  oncoguard check answer.txt passages.json --strategy audit --llm-provider openai`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkStrategy, "strategy", "", "validation strategy (lexical, audit)")
	checkCmd.Flags().StringVar(&checkMode, "mode", "", "sanitization mode for the lexical path (flag, annotate, remove)")
	checkCmd.Flags().StringVar(&checkJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")

	// LLM flags, used by the audit strategy
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runCheck(cmd *cobra.Command, args []string) error {
	answerPath, passagesPath := args[0], args[1]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	cfg := loadConfig()
	applyLLMFlags(cfg)
	if checkStrategy != "" {
		cfg.Strategy = checkStrategy
	}
	if checkMode != "" {
		cfg.Mode = checkMode
	}
	if cfg.Strategy == "audit" {
		if err := resolveAPIKey(cfg); err != nil {
			return err
		}
	}

	answerBytes, err := os.ReadFile(answerPath)
	if err != nil {
		return fmt.Errorf("read answer file: %w", err)
	}
	passages, err := loadPassages(passagesPath)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Strategy: %s\n", eng.StrategyName())
		fmt.Fprintf(os.Stderr, "Passages: %d\n", len(passages))
		fmt.Fprintln(os.Stderr)
	}

	outcome, err := eng.CheckDetailed(ctx, string(answerBytes), passages)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	printOutcome(outcome)

	if checkJSON != "" {
		if err := writeJSON(checkJSON, outcome); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", checkJSON)
		}
	}

	if outcome.Verdict.Status == model.StatusInvalid {
		return fmt.Errorf("answer failed validation")
	}
	return nil
}

func printOutcome(outcome engine.Outcome) {
	fmt.Printf("Status:     %s\n", outcome.Verdict.Status)
	fmt.Printf("Confidence: %.2f\n", outcome.Verdict.Confidence)
	if outcome.Verdict.Notes != "" {
		fmt.Printf("Notes:      %s\n", outcome.Verdict.Notes)
	}

	if lex := outcome.Lexical; lex != nil {
		fmt.Printf("Verified:   %d claims\n", len(lex.VerifiedClaims))
		fmt.Printf("Unverified: %d claims\n", len(lex.UnverifiedClaims))
		for _, h := range lex.PotentialHallucinations {
			fmt.Printf("  ✗ %s\n", h)
		}
		for _, w := range lex.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	}
	if aud := outcome.Audit; aud != nil {
		fmt.Printf("Grounded:   %d claims\n", len(aud.GroundedClaims))
		for _, c := range aud.UngroundedClaims {
			fmt.Printf("  ✗ %s\n", c)
		}
		if aud.Reasoning != "" {
			fmt.Printf("Reasoning:  %s\n", aud.Reasoning)
		}
	}

	fmt.Println()
	fmt.Println(outcome.Answer)
}

// applyLLMFlags writes the shared LLM flags into cfg when set
func applyLLMFlags(cfg *model.Config) {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

func loadPassages(path string) ([]model.SourcePassage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read passages file: %w", err)
	}
	var passages []model.SourcePassage
	if err := json.Unmarshal(data, &passages); err != nil {
		return nil, fmt.Errorf("parse passages file: %w", err)
	}
	return passages, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
