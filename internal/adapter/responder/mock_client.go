package responder

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockClient is a responder for tests and local development. It echoes a
// deterministic summary of the prompt it was given. Safe for concurrent
// use; multi-capability execution calls it from several goroutines.
type MockClient struct {
	mu sync.Mutex

	// Fail forces every call to return a typed error.
	Fail bool
	// FixedResponse, when set, is returned verbatim.
	FixedResponse string

	// Calls records the prompts received, in order.
	Calls [][]Message
}

// NewMockClient creates a mock responder.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Complete returns a deterministic mock completion.
func (m *MockClient) Complete(ctx context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, messages)
	fail, fixed := m.Fail, m.FixedResponse
	m.mu.Unlock()

	if fail {
		return "", &Error{Code: "mock_failure", Message: "mock responder configured to fail"}
	}
	if fixed != "" {
		return fixed, nil
	}

	var lastUser string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			lastUser = messages[i].Content
			break
		}
	}
	if lastUser == "" {
		return "[MOCK] This is a mock responder completion.", nil
	}
	return fmt.Sprintf("[MOCK] %s", truncate(strings.TrimSpace(lastUser), 200)), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
