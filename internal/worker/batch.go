package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oncorad/oncoguard/internal/model"
)

// Record is one batch item: a generated answer plus the passages it
// must be validated against.
type Record struct {
	ID       string                `json:"id,omitempty"`
	Answer   string                `json:"answer"`
	Passages []model.SourcePassage `json:"passages"`
}

// Checker validates one answer against its passages and returns the
// possibly-rewritten text with the normalized verdict.
type Checker interface {
	Check(ctx context.Context, answer string, passages []model.SourcePassage) (string, model.Verdict, error)
}

// CheckJob represents one record validation job
type CheckJob struct {
	Record  Record
	Checker Checker
}

// Execute runs the validation for this record
func (j *CheckJob) Execute(ctx context.Context) Result {
	answer, verdict, err := j.Checker.Check(ctx, j.Record.Answer, j.Record.Passages)
	return &CheckResult{
		ID:      j.Record.ID,
		Answer:  answer,
		Verdict: verdict,
		Error:   err,
	}
}

// CheckResult represents the result of one record validation
type CheckResult struct {
	ID      string        `json:"id,omitempty"`
	Answer  string        `json:"answer"`
	Verdict model.Verdict `json:"verdict"`
	Error   error         `json:"-"`
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor validates multiple records concurrently. Each
// validation call is independent, so records simply fan out over the
// pool.
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessRecords validates records concurrently
func (b *BatchProcessor) ProcessRecords(ctx context.Context, records []Record) []*CheckResult {
	if len(records) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, rec := range records {
		pool.Submit(&CheckJob{
			Record:  rec,
			Checker: b.checker,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(results))
	for i, result := range results {
		checkResults[i] = result.(*CheckResult)
	}

	return checkResults
}

// ProcessFile reads records from a JSONL file and validates them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	records, err := ReadRecordsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	return b.ProcessRecords(ctx, records), nil
}

// ReadRecordsFromFile reads one JSON record per line, skipping blank
// lines and # comments.
func ReadRecordsFromFile(filePath string) ([]Record, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("record-%d", lineNo)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return records, nil
}
