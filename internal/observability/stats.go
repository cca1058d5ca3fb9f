package observability

import (
	"sync"
	"sync/atomic"
)

type StatsSnapshot struct {
	FeedRefreshes         uint64            `json:"feed_refreshes"`
	AICalls               uint64            `json:"ai_calls"`
	AIFailures            uint64            `json:"ai_failures"`
	RecommendationsServed uint64            `json:"recommendations_served"`
	HeuristicFallbacks    uint64            `json:"heuristic_fallbacks"`
	ResumesUploaded       uint64            `json:"resumes_uploaded"`
	FeedbackGenerated     uint64            `json:"feedback_generated"`
	ErrorsTotal           uint64            `json:"errors_total"`
	AICallsByProvider     map[string]uint64 `json:"ai_calls_by_provider,omitempty"`
	ErrorsByType          map[string]uint64 `json:"errors_by_type,omitempty"`
	ErrorsByComponent     map[string]uint64 `json:"errors_by_component,omitempty"`
}

var (
	feedRefreshes         uint64
	aiCalls               uint64
	aiFailures            uint64
	recommendationsServed uint64
	heuristicFallbacks    uint64
	resumesUploaded       uint64
	feedbackGenerated     uint64
	errorsTotal           uint64

	statsMu           sync.Mutex
	aiCallsByProvider = map[string]uint64{}
	errorsByType      = map[string]uint64{}
	errorsByComponent = map[string]uint64{}
)

func IncFeedRefresh() {
	atomic.AddUint64(&feedRefreshes, 1)
}

func IncAICall(provider string) {
	if provider == "" {
		provider = "unknown"
	}
	atomic.AddUint64(&aiCalls, 1)
	statsMu.Lock()
	aiCallsByProvider[provider]++
	statsMu.Unlock()
}

func IncAIFailure() {
	atomic.AddUint64(&aiFailures, 1)
}

func IncRecommendationServed() {
	atomic.AddUint64(&recommendationsServed, 1)
}

func IncHeuristicFallback() {
	atomic.AddUint64(&heuristicFallbacks, 1)
}

func IncResumeUploaded() {
	atomic.AddUint64(&resumesUploaded, 1)
}

func IncFeedbackGenerated() {
	atomic.AddUint64(&feedbackGenerated, 1)
}

func IncError(errType, component string) {
	if errType == "" {
		errType = "unknown"
	}
	if component == "" {
		component = "unknown"
	}
	atomic.AddUint64(&errorsTotal, 1)
	statsMu.Lock()
	errorsByType[errType]++
	errorsByComponent[component]++
	statsMu.Unlock()
}

func Snapshot() StatsSnapshot {
	statsMu.Lock()
	providerCopy := copyMap(aiCallsByProvider)
	errorsTypeCopy := copyMap(errorsByType)
	errorsComponentCopy := copyMap(errorsByComponent)
	statsMu.Unlock()

	return StatsSnapshot{
		FeedRefreshes:         atomic.LoadUint64(&feedRefreshes),
		AICalls:               atomic.LoadUint64(&aiCalls),
		AIFailures:            atomic.LoadUint64(&aiFailures),
		RecommendationsServed: atomic.LoadUint64(&recommendationsServed),
		HeuristicFallbacks:    atomic.LoadUint64(&heuristicFallbacks),
		ResumesUploaded:       atomic.LoadUint64(&resumesUploaded),
		FeedbackGenerated:     atomic.LoadUint64(&feedbackGenerated),
		ErrorsTotal:           atomic.LoadUint64(&errorsTotal),
		AICallsByProvider:     providerCopy,
		ErrorsByType:          errorsTypeCopy,
		ErrorsByComponent:     errorsComponentCopy,
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return map[string]uint64{}
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
