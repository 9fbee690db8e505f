package knowledge

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pitwall/paddock/internal/domain"
)

// MockProvider serves canned facts for tests and local development.
type MockProvider struct {
	mu sync.Mutex

	// Missing lists entity ids that return no data.
	Missing []string
	// FailFor lists entity ids whose lookup returns an error.
	FailFor []string

	// Fetches records lookups as "kind:id:season", in order.
	Fetches []string
}

// NewMockProvider creates a mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Fetch returns deterministic canned stats.
func (m *MockProvider) Fetch(ctx context.Context, kind domain.EntityKind, entityID string, season int) (*Facts, error) {
	m.mu.Lock()
	m.Fetches = append(m.Fetches, fmt.Sprintf("%s:%s:%d", kind, entityID, season))
	m.mu.Unlock()

	for _, id := range m.FailFor {
		if id == entityID {
			return nil, fmt.Errorf("mock knowledge failure for %s", entityID)
		}
	}
	for _, id := range m.Missing {
		if id == entityID {
			return nil, nil
		}
	}

	return &Facts{
		Kind:     kind,
		EntityID: entityID,
		Season:   season,
		Name:     titleCase(strings.ReplaceAll(entityID, "_", " ")),
		Stats: map[string]interface{}{
			"wins":    5,
			"podiums": 12,
			"points":  198.5,
		},
	}, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NewProvider creates a provider based on the PADDOCK_MODE environment
// variable, mirroring the responder factory.
func NewProvider(baseURL string, cacheTTL time.Duration) Provider {
	if os.Getenv("PADDOCK_MODE") == "MOCK" {
		return NewMockProvider()
	}
	return NewHTTPProvider(baseURL, cacheTTL)
}
