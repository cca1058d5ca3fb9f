package observability

import (
	"context"
	"errors"
	"strings"

	"github.com/otabekmirzaev/intern-scout/internal/ai"
)

const (
	ErrorNetwork = "network"
	ErrorParsing = "parsing"
	ErrorAI      = "ai"
	ErrorTimeout = "timeout"
	ErrorStore   = "store"
	ErrorUnknown = "unknown"
)

// ClassifyAIError buckets a gateway failure for the stats endpoint.
func ClassifyAIError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorTimeout
	}
	if errors.Is(err, ai.ErrUpstream) {
		return ErrorAI
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unmarshal") || strings.Contains(msg, "invalid character") {
		return ErrorParsing
	}
	return ErrorUnknown
}
