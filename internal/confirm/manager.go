// Package confirm tracks human-confirmation requests over tentative
// results: the acceptance policy deciding when a result needs review, the
// pending-request table, and the resolve/expire lifecycle.
package confirm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pitwall/paddock/internal/capability"
	"github.com/pitwall/paddock/internal/domain"
	"github.com/pitwall/paddock/policy"
)

// Resolve failure reason codes.
const (
	FailureNotFound         = "not_found"
	FailureExpired          = "expired"
	FailureAlreadyProcessed = "already_processed"
)

// Seasons further apart than this trip the season-gap trigger.
const maxSeasonGap = 10

// Queries matching these terms are treated as sensitive and gated more
// aggressively.
var sensitiveVocab = []string{
	"bet", "betting", "wager", "odds", "gamble", "gambling", "stake",
	"payout", "bookmaker", "parlay",
}

// Phrases by which a user explicitly asks for a verified answer.
var verificationPhrases = []string{
	"are you sure", "verify", "double check", "double-check", "confirm that",
	"is that accurate", "is that correct", "fact check",
}

// Thresholds configure the acceptance policy.
type Thresholds struct {
	AutoAccept   float64
	ComplexQuery float64
}

// Manager owns all confirmation requests, referencing (not owning) session
// ids. Requests expire lazily on every access and via a background sweep,
// so correctness does not depend on a timer firing exactly on schedule.
type Manager struct {
	mu         sync.Mutex
	requests   map[string]*domain.ConfirmationRequest
	policy     *policy.Engine
	registry   *capability.Registry
	thresholds Thresholds
	ttl        time.Duration
	grace      time.Duration
}

// NewManager creates a confirmation manager. engine may be nil, in which
// case the built-in Go evaluation is used for every decision.
func NewManager(engine *policy.Engine, registry *capability.Registry, thresholds Thresholds, ttl, grace time.Duration) *Manager {
	return &Manager{
		requests:   make(map[string]*domain.ConfirmationRequest),
		policy:     engine,
		registry:   registry,
		thresholds: thresholds,
		ttl:        ttl,
		grace:      grace,
	}
}

// ShouldConfirm decides whether a tentative result needs human review and
// returns the triggering reasons. A confidence at or above the auto-accept
// threshold is never gated, regardless of other triggers.
func (m *Manager) ShouldConfirm(ctx context.Context, query string, features domain.Features, confidence float64, multiCapability bool) (bool, []domain.ConfirmationReason) {
	input := map[string]interface{}{
		"confidence":              confidence,
		"complexity":              string(features.Complexity),
		"multi_capability":        multiCapability,
		"sensitive":               matchesWord(query, sensitiveVocab),
		"verification_requested":  matchesAny(query, verificationPhrases),
		"season_gap":              features.SeasonGap(),
		"max_season_gap":          maxSeasonGap,
		"auto_accept_threshold":   m.thresholds.AutoAccept,
		"complex_query_threshold": m.thresholds.ComplexQuery,
	}

	if m.policy != nil {
		decision, reasonCodes, err := m.policy.Evaluate(ctx, input)
		if err == nil {
			return decision == policy.DecisionConfirm, toReasons(reasonCodes)
		}
		log.Printf("WARN: confirmation policy evaluation failed, using built-in rules: %v", err)
	}
	return m.evaluateBuiltin(input)
}

// evaluateBuiltin mirrors the rego policy rules in Go.
func (m *Manager) evaluateBuiltin(input map[string]interface{}) (bool, []domain.ConfirmationReason) {
	confidence := input["confidence"].(float64)

	var reasons []domain.ConfirmationReason
	if confidence < m.thresholds.ComplexQuery {
		reasons = append(reasons, domain.ReasonLowConfidence)
	}
	if input["complexity"] == string(domain.ComplexityComplex) {
		reasons = append(reasons, domain.ReasonComplexQuery)
	}
	if input["multi_capability"] == true {
		reasons = append(reasons, domain.ReasonMultiCapability)
	}
	if input["sensitive"] == true {
		reasons = append(reasons, domain.ReasonSensitiveContent)
	}
	if input["verification_requested"] == true {
		reasons = append(reasons, domain.ReasonVerificationRequested)
	}
	if input["season_gap"].(int) > maxSeasonGap {
		reasons = append(reasons, domain.ReasonSeasonGap)
	}

	if len(reasons) == 0 || confidence >= m.thresholds.AutoAccept {
		return false, reasons
	}
	return true, reasons
}

// CreateRequest registers a pending confirmation over a tentative result.
func (m *Manager) CreateRequest(sessionID, userID, query, tentativeText string, confidence float64, features domain.Features, decision domain.RoutingDecision, reasons []domain.ConfirmationReason) *domain.ConfirmationRequest {
	now := time.Now()
	req := &domain.ConfirmationRequest{
		ConfirmationID: "conf_" + uuid.New().String()[:8],
		SessionID:      sessionID,
		UserID:         userID,
		Query:          query,
		TentativeText:  tentativeText,
		Confidence:     confidence,
		Reasons:        reasons,
		Features:       features,
		Alternatives:   decision.Alternatives,
		Capability:     decision.Capability,
		Status:         domain.ConfirmationStatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
	}

	m.mu.Lock()
	m.requests[req.ConfirmationID] = req
	m.mu.Unlock()
	return req
}

// Resolve applies a human decision. Unknown, expired, or already-resolved
// requests yield an explicit failure result with a reason code, never a
// second success.
func (m *Manager) Resolve(confirmationID string, action domain.ResolveAction, extra map[string]string) domain.ResolveResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[confirmationID]
	if !ok {
		return domain.ResolveResult{OK: false, Reason: FailureNotFound}
	}

	m.expireLocked(req, time.Now())
	switch req.Status {
	case domain.ConfirmationStatusExpired:
		return domain.ResolveResult{OK: false, Reason: FailureExpired}
	case domain.ConfirmationStatusResolved:
		return domain.ResolveResult{OK: false, Reason: FailureAlreadyProcessed}
	}

	now := time.Now()
	req.Status = domain.ConfirmationStatusResolved
	req.ResolvedAt = &now
	req.Action = action

	result := domain.ResolveResult{OK: true, Action: action, OriginalQuery: req.Query}
	switch action {
	case domain.ResolveActionConfirm:
		result.FinalText = req.TentativeText
		result.Confidence = req.Confidence

	case domain.ResolveActionRefine:
		result.RefinementPrompt = fmt.Sprintf(
			"Could you refine your question? The original was: %q", req.Query)
		result.Suggestions = refinementSuggestions(req.Features)

	case domain.ResolveActionAlternative:
		result.RetryCapability = m.alternativeFor(req)

	case domain.ResolveActionCancel:
		result.Reason = "cancelled"

	default:
		// Unknown actions roll the transition back rather than consuming
		// the request.
		req.Status = domain.ConfirmationStatusPending
		req.ResolvedAt = nil
		req.Action = ""
		return domain.ResolveResult{OK: false, Reason: "unknown_action"}
	}
	return result
}

// GetPending returns the pending requests for a session, expiring stale
// entries first.
func (m *Manager) GetPending(sessionID string) []domain.ConfirmationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var pending []domain.ConfirmationRequest
	for _, req := range m.requests {
		m.expireLocked(req, now)
		if req.SessionID == sessionID && req.Status == domain.ConfirmationStatusPending {
			pending = append(pending, *req)
		}
	}
	return pending
}

// Get returns a copy of a request, applying lazy expiry. nil if unknown.
func (m *Manager) Get(confirmationID string) *domain.ConfirmationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[confirmationID]
	if !ok {
		return nil
	}
	m.expireLocked(req, time.Now())
	out := *req
	return &out
}

// SweepExpired transitions overdue pending requests to expired and removes
// terminal requests past their grace period. Returns how many were removed.
func (m *Manager) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, req := range m.requests {
		m.expireLocked(req, now)
		if req.Status == domain.ConfirmationStatusPending {
			continue
		}
		terminalAt := req.ExpiresAt
		if req.ResolvedAt != nil {
			terminalAt = *req.ResolvedAt
		}
		if now.Sub(terminalAt) > m.grace {
			delete(m.requests, id)
			removed++
		}
	}
	return removed
}

// RunExpirySweeper runs the background sweep until ctx is cancelled.
func (m *Manager) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.SweepExpired(); n > 0 {
				log.Printf("INFO: confirmation sweep removed %d terminal requests", n)
			}
		}
	}
}

func (m *Manager) expireLocked(req *domain.ConfirmationRequest, now time.Time) {
	if req.Status == domain.ConfirmationStatusPending && now.After(req.ExpiresAt) {
		req.Status = domain.ConfirmationStatusExpired
	}
}

func (m *Manager) alternativeFor(req *domain.ConfirmationRequest) string {
	if len(req.Alternatives) > 0 {
		return req.Alternatives[0].Capability
	}
	if desc := m.registry.Fallback(req.Capability); desc != nil {
		return desc.ID
	}
	return capability.DefaultID
}

// refinementSuggestions derives concrete rewording hints from the query's
// feature bundle.
func refinementSuggestions(features domain.Features) []string {
	var suggestions []string
	if features.EntityCount > 2 {
		suggestions = append(suggestions, "Narrow the question to one or two drivers or teams.")
	}
	if len(features.Temporal.Seasons) > 1 {
		suggestions = append(suggestions, "Focus on a single season instead of several.")
	}
	if features.Complexity == domain.ComplexityComplex {
		suggestions = append(suggestions, "Split the question into smaller, more specific parts.")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Add a specific driver, team, or season to the question.")
	}
	return suggestions
}

func toReasons(codes []string) []domain.ConfirmationReason {
	var reasons []domain.ConfirmationReason
	for _, c := range codes {
		reasons = append(reasons, domain.ConfirmationReason(c))
	}
	return reasons
}

func matchesAny(query string, vocab []string) bool {
	lower := strings.ToLower(query)
	for _, term := range vocab {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// matchesWord compares whole tokens so short terms like "bet" do not fire
// inside words like "better".
func matchesWord(query string, vocab []string) bool {
	for _, field := range strings.Fields(strings.ToLower(query)) {
		token := strings.Trim(field, ".,?!\"'")
		for _, term := range vocab {
			if token == term {
				return true
			}
		}
	}
	return false
}
