// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
)

// Document is one indexed chunk of a knowledge-base file.
type Document struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResult pairs a chunk with its cosine similarity to the query.
type SearchResult struct {
	Document   Document `json:"document"`
	Similarity float64  `json:"similarity"`
}

// SearchResponse is the body of POST /api/search. Message explains an empty
// result (e.g. nothing indexed yet); Error carries a backend-side failure.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ProcessResult is the body of POST /api/documents/process.
type ProcessResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrProcessingFailed is returned when the backend reports status "error" for a rebuild.
var ErrProcessingFailed = errors.New("document processing failed")

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Search posts {"query", "top_k"}; topK defaults to 5.
func (h *HTTP) Search(ctx context.Context, query string, topK int) (*SearchResponse, error) {
	if topK <= 0 {
		topK = 5
	}
	var out SearchResponse
	if err := h.doJSON(ctx, "search", http.MethodPost, h.endpoints.Search, searchRequest{Query: query, TopK: topK}, &out, true); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return &out, errors.New("search: " + out.Error)
	}
	return &out, nil
}

// ProcessDocuments triggers re-indexing. The backend answers 200 with
// status "error" when it found nothing to index; that is returned as ErrProcessingFailed.
func (h *HTTP) ProcessDocuments(ctx context.Context) (*ProcessResult, error) {
	var out ProcessResult
	if err := h.doJSON(ctx, "process-documents", http.MethodPost, h.endpoints.ProcessDocuments, nil, &out, true); err != nil {
		return nil, err
	}
	if out.Status == "error" {
		return &out, errors.Join(ErrProcessingFailed, errors.New(out.Message))
	}
	return &out, nil
}

// DocumentCount calls GET /api/documents/count.
func (h *HTTP) DocumentCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := h.doJSON(ctx, "document-count", http.MethodGet, h.endpoints.DocumentCount, nil, &out, true); err != nil {
		return 0, err
	}
	return out.Count, nil
}
