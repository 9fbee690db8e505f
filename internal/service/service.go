// Package service implements the query orchestration engine: the pipeline
// that validates a query, routes it, executes one or more capabilities,
// synthesizes multi-capability output, and decides between finalizing,
// requesting human confirmation, or returning an error response.
package service

import (
	"context"
	"log"
	"time"

	"github.com/pitwall/paddock/internal/adapter/knowledge"
	"github.com/pitwall/paddock/internal/adapter/responder"
	"github.com/pitwall/paddock/internal/capability"
	"github.com/pitwall/paddock/internal/config"
	"github.com/pitwall/paddock/internal/confirm"
	"github.com/pitwall/paddock/internal/features"
	"github.com/pitwall/paddock/internal/memory"
	store "github.com/pitwall/paddock/internal/repository"
	"github.com/pitwall/paddock/internal/router"
)

// Engine wires the pipeline components. All dependencies are injected;
// the engine holds no hidden global state.
type Engine struct {
	extractor     *features.Extractor
	registry      *capability.Registry
	router        *router.Router
	memory        *memory.Store
	confirmations *confirm.Manager
	responder     responder.Client
	knowledge     knowledge.Provider
	audit         store.Store
	config        *config.Config
}

// New creates the engine. audit may be nil to disable the audit trail.
func New(
	extractor *features.Extractor,
	registry *capability.Registry,
	rt *router.Router,
	mem *memory.Store,
	confirmations *confirm.Manager,
	resp responder.Client,
	kn knowledge.Provider,
	audit store.Store,
	cfg *config.Config,
) *Engine {
	return &Engine{
		extractor:     extractor,
		registry:      registry,
		router:        rt,
		memory:        mem,
		confirmations: confirmations,
		responder:     resp,
		knowledge:     kn,
		audit:         audit,
		config:        cfg,
	}
}

// RunRetentionSweeper evicts idle sessions until ctx is cancelled.
func (e *Engine) RunRetentionSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := e.memory.CleanupExpired(e.config.SessionMaxAge); n > 0 {
				log.Printf("INFO: retention sweep evicted %d idle sessions", n)
			}
		}
	}
}
