// Package retrieve is the client for the external retrieval service
// (vector index over ingested guideline documents). The service is a
// black box: given a query it returns ranked source passages.
// Ingestion, chunking, and embedding live on the service side.
package retrieve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oncorad/oncoguard/internal/model"
	"github.com/oncorad/oncoguard/internal/worker"
)

// Retriever returns ranked evidence passages for a query
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]model.SourcePassage, error)
}

// ServiceError marks a retrieval-service failure so callers can
// distinguish it from validation outcomes and apply fallback policy.
type ServiceError struct {
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retrieval service error (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("retrieval service error: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceError reports whether err originated in the retrieval service
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// HTTPRetriever talks to the retrieval service over HTTP JSON
type HTTPRetriever struct {
	baseURL    string
	httpClient *http.Client
	limiter    *worker.Limiter
}

// NewHTTPRetriever creates a retriever for the given endpoint. The
// limiter is optional; when set, requests wait for per-host clearance.
func NewHTTPRetriever(baseURL string, timeout time.Duration, limiter *worker.Limiter) *HTTPRetriever {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPRetriever{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Retrieval service wire structures
type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResult struct {
	Text             string  `json:"text"`
	DocumentName     string  `json:"document_name"`
	PageNumber       int     `json:"page_number"`
	Section          string  `json:"section"`
	GuidelineVersion string  `json:"guideline_version"`
	RelevanceScore   float64 `json:"relevance_score"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Retrieve queries the service and maps results onto source passages.
// Records with missing optional fields are kept as-is (empty text,
// zero page): the upstream index is less trusted than the core, and a
// malformed record must never abort validation of the rest.
func (r *HTTPRetriever) Retrieve(ctx context.Context, query string, topK int) ([]model.SourcePassage, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, r.baseURL); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/search", r.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &ServiceError{
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(respBody))),
		}
	}

	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	passages := make([]model.SourcePassage, 0, len(resp.Results))
	for _, res := range resp.Results {
		passages = append(passages, model.SourcePassage{
			Text:             res.Text,
			DocumentName:     res.DocumentName,
			PageNumber:       res.PageNumber,
			Section:          res.Section,
			GuidelineVersion: res.GuidelineVersion,
			RelevanceScore:   res.RelevanceScore,
		})
	}

	return passages, nil
}
