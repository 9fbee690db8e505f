package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pitwall/paddock/internal/domain"
	store "github.com/pitwall/paddock/internal/repository"
)

// User-facing failure text. Always an apology plus an invitation to
// rephrase, never an internal error string.
const (
	apologyText = "I'm sorry, I wasn't able to answer that. Could you rephrase your question?"

	// Confidence pinned on the all-capabilities-failed error path.
	errorConfidence = 0.1
)

// ProcessQuery runs one query through the full pipeline. It never returns
// an error: every failure mode degrades to an error-shaped response, and
// the turn is appended to conversation memory regardless of which terminal
// state was reached.
func (e *Engine) ProcessQuery(ctx context.Context, req domain.QueryRequest) *domain.QueryResponse {
	start := time.Now()
	turnID := "turn_" + uuid.New().String()[:8]

	resp := &domain.QueryResponse{
		SessionID:    req.SessionID,
		WorkflowPath: []domain.WorkflowState{domain.StateValidate},
		Metadata:     domain.QueryResponseMetadata{TurnID: turnID},
	}
	if resp.SessionID == "" {
		resp.SessionID = "sess_" + uuid.New().String()[:8]
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		resp.Response = apologyText
		resp.Confidence = 0
		resp.Error = true
		resp.WorkflowPath = append(resp.WorkflowPath, domain.StateHandleError)
		e.finishTurn(ctx, resp, req.Query, start)
		return resp
	}

	e.memory.SetUserID(resp.SessionID, req.UserID)

	// The router consults session memory: tracked entities, topic
	// continuity, and any pending clarification from the previous turn.
	relevant := e.memory.GetRelevantContext(resp.SessionID, query)
	effectiveQuery := query
	if pc := relevant.PendingClarification; pc != nil && pc.OriginalQuery != "" {
		// This turn answers a clarifying question: interpret it against
		// the query that prompted the question.
		effectiveQuery = pc.OriginalQuery + " " + query
	}
	// Caller-supplied context hints join the text considered for
	// extraction and routing. Keys are sorted so routing stays
	// deterministic for a fixed request.
	if len(req.Context) > 0 {
		keys := make([]string, 0, len(req.Context))
		for k := range req.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			effectiveQuery += " " + req.Context[k]
		}
	}

	feats := e.extractor.Extract(effectiveQuery)
	resp.Metadata.Features = feats

	resp.WorkflowPath = append(resp.WorkflowPath, domain.StateRoute)
	decision := e.router.Route(effectiveQuery, feats, relevant.Context)
	resp.Metadata.Routing = decision
	resp.MultiCapability = decision.MultiCapability

	resp.WorkflowPath = append(resp.WorkflowPath, domain.StateCheckMultiAgent)

	var results []domain.CapabilityResult
	if decision.MultiCapability {
		resp.WorkflowPath = append(resp.WorkflowPath, domain.StateExecuteMulti)
		results = e.executeMulti(ctx, effectiveQuery, feats, decision)
	} else {
		resp.WorkflowPath = append(resp.WorkflowPath, domain.StateExecuteSingle)
		results = []domain.CapabilityResult{e.executeSingle(ctx, effectiveQuery, feats, decision)}
	}

	successes := succeeded(results)
	resp.CapabilityResultCount = len(successes)

	if len(successes) == 0 {
		for _, r := range results {
			log.Printf("ERROR: capability %s failed: %v", r.Capability, r.Err)
		}
		resp.Response = apologyText
		resp.Confidence = errorConfidence
		resp.Error = true
		resp.Capability = decision.Capability
		resp.WorkflowPath = append(resp.WorkflowPath, domain.StateHandleError)
		e.finishTurn(ctx, resp, query, start)
		return resp
	}

	tentative := successes[0]
	if decision.MultiCapability {
		resp.WorkflowPath = append(resp.WorkflowPath, domain.StateSynthesize)
		tentative = e.synthesize(ctx, effectiveQuery, successes)
	}

	resp.WorkflowPath = append(resp.WorkflowPath, domain.StateGenerateResponse)
	resp.Response = tentative.Text
	resp.Capability = tentative.Capability
	resp.Confidence = clamp01(tentative.Confidence)

	needsConfirm, reasons := e.confirmations.ShouldConfirm(
		ctx, effectiveQuery, feats, resp.Confidence, decision.MultiCapability)
	if needsConfirm {
		confReq := e.confirmations.CreateRequest(
			resp.SessionID, req.UserID, query, tentative.Text, resp.Confidence,
			feats, decision, reasons)
		resp.ConfirmationID = confReq.ConfirmationID
		resp.ConfirmationRequired = true
		resp.WorkflowPath = append(resp.WorkflowPath, domain.StateRequestHumanInput)
	} else {
		resp.WorkflowPath = append(resp.WorkflowPath, domain.StateFinalize)
	}

	e.finishTurn(ctx, resp, query, start)
	return resp
}

// finishTurn appends the turn to conversation memory and the audit trail.
// It runs for every terminal state. Neither write may fail the turn: the
// user-visible result already exists.
func (e *Engine) finishTurn(ctx context.Context, resp *domain.QueryResponse, query string, start time.Time) {
	resp.Metadata.DurationMs = time.Since(start).Milliseconds()

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("ERROR: memory append failed (swallowed): %v", rec)
			}
		}()
		e.memory.AppendMessage(resp.SessionID, domain.RoleUser, query, domain.MessageMetadata{})
		e.memory.AppendMessage(resp.SessionID, domain.RoleAssistant, resp.Response, domain.MessageMetadata{
			Capability: resp.Capability,
			Confidence: resp.Confidence,
			DurationMs: resp.Metadata.DurationMs,
		})
	}()

	if e.audit == nil {
		return
	}
	rec := &store.TurnRecord{
		TurnID:          resp.Metadata.TurnID,
		SessionID:       resp.SessionID,
		Query:           query,
		Response:        resp.Response,
		Capability:      resp.Capability,
		Confidence:      resp.Confidence,
		MultiCapability: resp.MultiCapability,
		ResultCount:     resp.CapabilityResultCount,
		WorkflowPath:    joinPath(resp.WorkflowPath),
		IsError:         resp.Error,
		DurationMs:      resp.Metadata.DurationMs,
		CreatedAt:       time.Now(),
	}
	if err := e.audit.RecordTurn(ctx, rec); err != nil {
		log.Printf("WARN: failed to record turn audit: %v", err)
	}
}

func succeeded(results []domain.CapabilityResult) []domain.CapabilityResult {
	var ok []domain.CapabilityResult
	for _, r := range results {
		if r.Err == nil {
			ok = append(ok, r)
		}
	}
	return ok
}

func joinPath(path []domain.WorkflowState) string {
	parts := make([]string, len(path))
	for i, s := range path {
		parts[i] = string(s)
	}
	return strings.Join(parts, ">")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
