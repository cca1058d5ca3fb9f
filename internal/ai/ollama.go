package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/config"
	"github.com/otabekmirzaev/intern-scout/internal/logger"
)

// OllamaClient talks to a local Ollama server through its chat API.
type OllamaClient struct {
	baseURL     string
	model       string
	maxAttempts int
	httpClient  *http.Client
	log         *zap.Logger
}

func NewOllamaClient(cfg config.Config, log *zap.Logger) *OllamaClient {
	return &OllamaClient{
		baseURL:     strings.TrimRight(cfg.OllamaBaseURL, "/"),
		model:       cfg.OllamaModel,
		maxAttempts: cfg.AIMaxAttempts,
		httpClient: &http.Client{
			Timeout: cfg.AIRequestTimeout,
		},
		log: log,
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format"`
	Messages []ollamaMessage `json:"messages"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

func (c *OllamaClient) Name() string { return "ollama" }

// ChatJSON sends the prompt pair with format=json at low temperature and
// returns the raw message content. An empty content string is a valid
// response; downstream parsing decides what to do with it.
func (c *OllamaClient) ChatJSON(ctx context.Context, system, user string) (string, error) {
	payload := ollamaChatRequest{
		Model:  c.model,
		Stream: false,
		Format: "json",
		Messages: []ollamaMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Options: ollamaOptions{Temperature: 0.2},
	}

	body, err := postJSON(ctx, c.httpClient, c.baseURL+"/api/chat", payload, c.maxAttempts)
	if err != nil {
		return "", err
	}

	var resp ollamaChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrUpstream, err)
	}

	c.log.Debug("ollama chat completed",
		zap.String("model", c.model),
		zap.String("content_preview", logger.TruncateForLog(resp.Message.Content, 200)),
	)
	return resp.Message.Content, nil
}
