package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/config"
	"github.com/otabekmirzaev/intern-scout/internal/logger"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient implements Client against Google's Gemini REST API.
// Get an API key at: https://aistudio.google.com/apikey
type GeminiClient struct {
	apiKey      string
	model       string
	maxAttempts int
	httpClient  *http.Client
	log         *zap.Logger
}

func NewGeminiClient(cfg config.Config, log *zap.Logger) *GeminiClient {
	return &GeminiClient{
		apiKey:      cfg.GeminiAPIKey,
		model:       cfg.GeminiModel,
		maxAttempts: cfg.AIMaxAttempts,
		httpClient: &http.Client{
			Timeout: cfg.AIRequestTimeout,
		},
		log: log,
	}
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (g *GeminiClient) Name() string { return "gemini" }

func (g *GeminiClient) ChatJSON(ctx context.Context, system, user string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiBaseURL, g.model, g.apiKey)

	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: system}},
		},
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: user}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0.2,
			ResponseMIMEType: "application/json",
		},
	}

	body, err := postJSON(ctx, g.httpClient, url, payload, g.maxAttempts)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrUpstream, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: gemini error: %s (code %d)", ErrUpstream, resp.Error.Message, resp.Error.Code)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty gemini response", ErrUpstream)
	}

	content := resp.Candidates[0].Content.Parts[0].Text
	g.log.Debug("gemini chat completed",
		zap.String("model", g.model),
		zap.String("content_preview", logger.TruncateForLog(content, 200)),
	)
	return content, nil
}
