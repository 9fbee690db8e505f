package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pitwall/paddock/internal/domain"
)

// HTTPProvider fetches facts from a read-only stats REST API and caches
// results in-process. Lookups for the same entity/season within the TTL
// are served from cache.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewHTTPProvider creates a provider against baseURL with the given
// cache TTL.
func NewHTTPProvider(baseURL string, cacheTTL time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type factsPayload struct {
	Name  string                 `json:"name"`
	Stats map[string]interface{} `json:"stats"`
}

// Fetch looks up facts for one entity. A 404 from the API is "no data",
// returned as (nil, nil).
func (p *HTTPProvider) Fetch(ctx context.Context, kind domain.EntityKind, entityID string, season int) (*Facts, error) {
	key := fmt.Sprintf("%s:%s:%d", kind, entityID, season)
	if cached, ok := p.cache.Get(key); ok {
		if facts, ok := cached.(*Facts); ok {
			return facts, nil
		}
	}

	url := fmt.Sprintf("%s/api/%ss/%s.json", p.baseURL, kind, entityID)
	if season > 0 {
		url = fmt.Sprintf("%s?season=%d", url, season)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("knowledge api error [%d]: %s", resp.StatusCode, string(body))
	}

	var payload factsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode facts: %w", err)
	}

	facts := &Facts{
		Kind:     kind,
		EntityID: entityID,
		Season:   season,
		Name:     payload.Name,
		Stats:    payload.Stats,
	}
	p.cache.SetDefault(key, facts)
	return facts, nil
}
