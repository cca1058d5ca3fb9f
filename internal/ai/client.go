// Package ai provides chat-completion backends that return JSON-formatted
// text, plus tolerant parsing of whatever the model actually sends back.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/config"
)

var (
	// ErrUpstream marks network failures, non-2xx responses, and malformed
	// response envelopes from a model backend. Callers must treat it as
	// recoverable: skip the AI stage, never fail the overall request.
	ErrUpstream = errors.New("ai: upstream failure")

	// ErrNotIntegrated marks providers that are configured but not wired up.
	ErrNotIntegrated = errors.New("ai: provider not integrated")
)

// Client sends a (system, user) prompt pair to a chat-completion backend and
// returns the raw text content. All network and model variability stays
// behind this interface.
type Client interface {
	ChatJSON(ctx context.Context, system, user string) (string, error)
	Name() string
}

// NewClient builds the backend selected by AI_PROVIDER.
// Supported providers: "mock", "ollama", "gemini".
func NewClient(cfg config.Config, log *zap.Logger) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if provider == "" {
		provider = "mock"
	}

	switch provider {
	case "mock":
		return NewMockClient(), nil
	case "ollama":
		return NewOllamaClient(cfg, log), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("ai: AI_PROVIDER=gemini requires GEMINI_API_KEY")
		}
		return NewGeminiClient(cfg, log), nil
	case "openai", "deepseek":
		return nil, fmt.Errorf("%w: %q (set AI_PROVIDER=mock or ollama)", ErrNotIntegrated, provider)
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", provider)
	}
}

// postJSON sends one JSON payload and returns the response body. Network
// errors, 429, and 5xx are retried with exponential backoff; other non-2xx
// statuses fail immediately. Every failure wraps ErrUpstream.
func postJSON(ctx context.Context, hc *http.Client, url string, payload any, maxAttempts int) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrUpstream, err)
	}

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: build request: %v", ErrUpstream, err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, bodySnippet(data))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, bodySnippet(data)))
		}

		body = data
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxAttempts-1)), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return body, nil
}

// bodySnippet keeps error messages readable when a backend returns a page of
// HTML or a huge error object.
func bodySnippet(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
