// Package knowledge provides the knowledge provider client: a read-only
// lookup of domain facts for an entity and season. Absence of data is a
// valid result, never an error.
package knowledge

import (
	"context"

	"github.com/pitwall/paddock/internal/domain"
)

// Facts is the structured fact bundle for one entity, optionally scoped to
// a season (0 means career/all-time).
type Facts struct {
	Kind     domain.EntityKind      `json:"kind"`
	EntityID string                 `json:"entity_id"`
	Season   int                    `json:"season,omitempty"`
	Name     string                 `json:"name"`
	Stats    map[string]interface{} `json:"stats"`
}

// Provider defines the knowledge lookup. A (nil, nil) return means no data
// exists for this entity/season.
type Provider interface {
	Fetch(ctx context.Context, kind domain.EntityKind, entityID string, season int) (*Facts, error)
}

var (
	_ Provider = (*HTTPProvider)(nil)
	_ Provider = (*MockProvider)(nil)
)
