package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/otabekmirzaev/intern-scout/internal/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		wantErr  bool
	}{
		{
			name:     "empty provider defaults to mock",
			cfg:      config.Config{},
			wantName: "mock",
		},
		{
			name:     "mock",
			cfg:      config.Config{AIProvider: "mock"},
			wantName: "mock",
		},
		{
			name:     "ollama case insensitive",
			cfg:      config.Config{AIProvider: " OLLAMA ", OllamaBaseURL: "http://127.0.0.1:11434", OllamaModel: "llama3:8b"},
			wantName: "ollama",
		},
		{
			name:     "gemini with key",
			cfg:      config.Config{AIProvider: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-2.0-flash"},
			wantName: "gemini",
		},
		{
			name:    "gemini without key",
			cfg:     config.Config{AIProvider: "gemini"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{AIProvider: "claude"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.cfg, zap.NewNop())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, client.Name())
		})
	}
}

func TestNewClientNotIntegratedProviders(t *testing.T) {
	for _, provider := range []string{"openai", "deepseek"} {
		t.Run(provider, func(t *testing.T) {
			_, err := NewClient(config.Config{AIProvider: provider}, zap.NewNop())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotIntegrated)
		})
	}
}
