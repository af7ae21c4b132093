package retrieve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPRetriever_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("Expected path /search, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Query != "radioterapia prostata" {
			t.Errorf("Unexpected query: %q", req.Query)
		}
		if req.TopK != 5 {
			t.Errorf("Expected top_k 5, got %d", req.TopK)
		}

		_, _ = w.Write([]byte(`{
			"results": [
				{
					"text": "La dosis recomendada es 78 Gy.",
					"document_name": "NCCN_Prostate_2024.pdf",
					"page_number": 45,
					"section": "Radioterapia externa",
					"guideline_version": "v2.2024",
					"relevance_score": 0.91
				},
				{
					"text": "Fragmento con metadatos incompletos."
				}
			]
		}`))
	}))
	defer server.Close()

	retriever := NewHTTPRetriever(server.URL, 5*time.Second, nil)

	passages, err := retriever.Retrieve(context.Background(), "radioterapia prostata", 5)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("Expected 2 passages, got %d", len(passages))
	}

	first := passages[0]
	if first.DocumentName != "NCCN_Prostate_2024.pdf" || first.PageNumber != 45 {
		t.Errorf("Unexpected first passage: %+v", first)
	}
	if first.RelevanceScore != 0.91 {
		t.Errorf("Expected relevance 0.91, got %f", first.RelevanceScore)
	}

	// Records with missing fields are kept, not dropped.
	second := passages[1]
	if second.Text != "Fragmento con metadatos incompletos." {
		t.Errorf("Unexpected second passage text: %q", second.Text)
	}
	if second.DocumentName != "" || second.PageNumber != 0 {
		t.Errorf("Expected empty metadata, got %+v", second)
	}
}

func TestHTTPRetriever_ServiceErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	retriever := NewHTTPRetriever(server.URL, 5*time.Second, nil)

	_, err := retriever.Retrieve(context.Background(), "consulta", 3)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !IsServiceError(err) {
		t.Errorf("Expected ServiceError, got %T: %v", err, err)
	}

	var se *ServiceError
	if errors.As(err, &se) && se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", se.StatusCode)
	}
}

func TestHTTPRetriever_ServiceErrorOnConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	retriever := NewHTTPRetriever(server.URL, time.Second, nil)

	_, err := retriever.Retrieve(context.Background(), "consulta", 3)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !IsServiceError(err) {
		t.Errorf("Expected ServiceError, got %T: %v", err, err)
	}
}

func TestHTTPRetriever_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	retriever := NewHTTPRetriever(server.URL, 5*time.Second, nil)

	_, err := retriever.Retrieve(context.Background(), "consulta", 3)
	if err == nil {
		t.Fatal("Expected error for malformed response")
	}
	if !IsServiceError(err) {
		t.Errorf("Expected ServiceError, got %T: %v", err, err)
	}
}
