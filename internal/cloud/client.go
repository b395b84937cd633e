// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the HTTP client for the remote chat completions
// API. The provider exposes an OpenAI-compatible endpoint: requests POST a
// model id and a message list, responses carry the assistant reply under
// choices[0].message.content.
package cloud

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
)

// Configuration constants for the completions API.
const (
	// DefaultBaseURL is the default chat completions endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps the response body read to guard against a
	// misbehaving endpoint streaming unbounded data.
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Error variables for common client failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrAuthFailed indicates the endpoint rejected the API key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates the provider rejected the request for volume.
	ErrRateLimited = errors.New("rate limited")
)

// APIError represents a non-2xx response from the completions endpoint.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d)", e.Status)
}

// IsCancelled reports whether err resulted from the request context being
// cancelled, which the caller treats as a user-initiated stop rather than
// a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// ChatMessage is a single message on the wire. Only the role and content
// travel to the provider; local metadata such as timestamps stays home.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for the completions endpoint.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the response body from the completions endpoint.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Content returns the trimmed content of the first choice, or the empty
// string when the provider returned no choices. An empty reply is not an
// error at this layer; the caller substitutes its own placeholder.
func (r *ChatResponse) Content() string {
	if len(r.Choices) > 0 {
		return strings.TrimSpace(r.Choices[0].Message.Content)
	}
	return ""
}

// apiErrorResponse is the provider's error envelope.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with the given API key. An empty key is
// allowed; Complete then fails with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithBaseURL points the client at a different completions endpoint.
func (c *Client) WithBaseURL(url string) *Client {
	if u := strings.TrimSpace(url); u != "" {
		c.baseURL = u
	}
	return c
}

// WithTimeout overrides the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient.Timeout = d
	}
	return c
}

// IsConfigured reports whether an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Complete sends the message list to the given model and returns the
// parsed response. The context cancels the request; use IsCancelled to
// distinguish a stop from a real failure.
func (c *Client) Complete(ctx context.Context, model string, messages []ChatMessage) (*ChatResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(ChatRequest{Model: model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp.StatusCode, raw)
	}

	var parsed ChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &parsed, nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", maxResponseSize)
	}
	return body, nil
}

// statusError maps a non-2xx status to a typed error, folding in the
// provider's error message when the envelope parses.
func (c *Client) statusError(status int, raw []byte) error {
	var envelope apiErrorResponse
	msg := ""
	if json.Unmarshal(raw, &envelope) == nil {
		msg = envelope.Error.Message
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
		}
		return ErrAuthFailed
	case http.StatusTooManyRequests:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrRateLimited, msg)
		}
		return ErrRateLimited
	}
	return &APIError{Status: status, Message: msg}
}
