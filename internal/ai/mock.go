package ai

import (
	"context"
	"sync"

	"github.com/openai/openai-go/v3"
)

// MockCompleter is a scripted in-memory Completer for testing. Responses
// are consumed in order; when the script runs out the last entry repeats.
type MockCompleter struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     [][]openai.ChatCompletionMessageParamUnion
}

// MockResponse is one scripted reply.
type MockResponse struct {
	Content string
	Err     error
}

// NewMockCompleter creates a mock with the given script.
func NewMockCompleter(responses ...MockResponse) *MockCompleter {
	return &MockCompleter{responses: responses}
}

var _ Completer = (*MockCompleter)(nil)

// Complete returns the next scripted response and records the request.
func (m *MockCompleter) Complete(_ context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, messages)

	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	if idx < 0 {
		return "", nil
	}

	r := m.responses[idx]
	return r.Content, r.Err
}

// CallCount returns how many times Complete was invoked.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastMessages returns the messages from the most recent call, or nil.
func (m *MockCompleter) LastMessages() []openai.ChatCompletionMessageParamUnion {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
