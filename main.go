package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
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
	"github.com/pitwall/paddock/internal/service"
	transport "github.com/pitwall/paddock/internal/transport/http"
	"github.com/pitwall/paddock/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting query engine...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Audit Database: %s", cfg.DatabaseURL)
	log.Printf("Knowledge API: %s", cfg.KnowledgeAPIURL)
	log.Printf("Responder: %s", cfg.ResponderURL)

	// Initialize audit store
	audit, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize audit store: %v", err)
	}
	defer audit.Close()

	// Initialize extractor, capability registry, and router
	extractor := features.New()
	registry := capability.NewRegistry()
	rt := router.New(registry, router.DefaultWeights(), cfg.ConfidenceGapThreshold)

	// Initialize conversation memory
	mem := memory.NewStore(extractor, memory.Caps{
		MaxMessages:      cfg.MaxSessionMessages,
		MaxActiveTopics:  cfg.MaxActiveTopics,
		MaxRecentQueries: cfg.MaxRecentQueries,
	})

	// Initialize confirmation policy engine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	confirmations := confirm.NewManager(policyEngine, registry, confirm.Thresholds{
		AutoAccept:   cfg.AutoAcceptThreshold,
		ComplexQuery: cfg.ComplexQueryThreshold,
	}, cfg.ConfirmationTTL, cfg.ConfirmationGrace)

	// Initialize external collaborators
	resp := responder.NewClient(cfg.ResponderURL, cfg.ResponderAPIKey, cfg.ResponderModel, cfg.ResponderTimeout)
	kn := knowledge.NewProvider(cfg.KnowledgeAPIURL, cfg.KnowledgeCacheTTL)

	// Initialize engine
	engine := service.New(extractor, registry, rt, mem, confirmations, resp, kn, audit, cfg)

	// Background sweeps
	go engine.RunRetentionSweeper(ctx, time.Minute)
	go engine.RunConfirmationSweeper(ctx, 10*time.Second)

	// Create HTTP server
	server := transport.NewServer(engine)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Query API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down query engine...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Query engine stopped")
}
