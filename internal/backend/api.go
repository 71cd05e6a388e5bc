// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
)

// Health calls GET /api/health.
func (h *HTTP) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := h.doJSON(ctx, "health", http.MethodGet, h.endpoints.Health, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

type chatRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat calls POST /api/chat and returns the first choice's content.
func (h *HTTP) Chat(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	var out chatResponse
	if err := h.doJSON(ctx, "chat", http.MethodPost, h.endpoints.Chat, chatRequest{Prompt: prompt, MaxTokens: maxTokens}, &out, true); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat: empty response")
	}
	return out.Choices[0].Message.Content, nil
}
