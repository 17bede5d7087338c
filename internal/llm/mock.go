package llm

import "context"

// MockProvider returns scripted responses in order, then repeats the last
// one. Used by tests and by local development without an API key.
type MockProvider struct {
	Responses []string
	Err       error
	calls     int
	// Requests records every request for assertions.
	Requests []CompletionRequest
}

var _ Provider = (*MockProvider)(nil)

// Complete implements Provider.
func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	idx := m.calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls++
	return m.Responses[idx], nil
}
