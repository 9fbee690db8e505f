package service

import (
	"context"
	"log"
	"time"

	"github.com/pitwall/paddock/internal/domain"
	store "github.com/pitwall/paddock/internal/repository"
)

// ProcessConfirmation applies a human decision to a pending confirmation.
// Failures (unknown, expired, already processed) come back as explicit
// failure results with a reason code.
func (e *Engine) ProcessConfirmation(ctx context.Context, confirmationID string, req domain.ConfirmationDecisionRequest) domain.ResolveResult {
	// Snapshot before resolving; the request may be gone afterwards.
	pending := e.confirmations.Get(confirmationID)

	result := e.confirmations.Resolve(confirmationID, req.Action, req.Extra)

	if e.audit != nil && pending != nil {
		rec := &store.DecisionRecord{
			ConfirmationID: confirmationID,
			SessionID:      pending.SessionID,
			Action:         string(req.Action),
			OK:             result.OK,
			Reason:         result.Reason,
			DecidedAt:      time.Now(),
		}
		if err := e.audit.RecordDecision(ctx, rec); err != nil {
			log.Printf("WARN: failed to record confirmation decision audit: %v", err)
		}
	}
	return result
}

// GetPendingConfirmations lists the pending confirmation requests for a
// session.
func (e *Engine) GetPendingConfirmations(sessionID string) []domain.ConfirmationRequest {
	return e.confirmations.GetPending(sessionID)
}

// RunConfirmationSweeper garbage-collects terminal confirmation requests
// until ctx is cancelled.
func (e *Engine) RunConfirmationSweeper(ctx context.Context, interval time.Duration) {
	e.confirmations.RunExpirySweeper(ctx, interval)
}
