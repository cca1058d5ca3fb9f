package ai

import "context"

// MockClient answers every prompt with an empty JSON object. Downstream
// defaulting then produces deterministic heuristic-ordered results, which
// makes it useful for local development without a model server.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) ChatJSON(ctx context.Context, system, user string) (string, error) {
	return "{}", nil
}
