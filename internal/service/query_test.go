package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pitwall/paddock/internal/adapter/knowledge"
	"github.com/pitwall/paddock/internal/adapter/responder"
	"github.com/pitwall/paddock/internal/capability"
	"github.com/pitwall/paddock/internal/config"
	"github.com/pitwall/paddock/internal/confirm"
	"github.com/pitwall/paddock/internal/domain"
	"github.com/pitwall/paddock/internal/features"
	"github.com/pitwall/paddock/internal/memory"
	"github.com/pitwall/paddock/internal/router"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(t *testing.T, client responder.Client) (*Engine, *knowledge.MockProvider) {
	t.Helper()
	return newTestEngineWithConfig(t, client, config.Load())
}

func newTestEngineWithConfig(t *testing.T, client responder.Client, cfg *config.Config) (*Engine, *knowledge.MockProvider) {
	t.Helper()

	extractor := features.New()
	registry := capability.NewRegistry()
	rt := router.New(registry, router.DefaultWeights(), cfg.ConfidenceGapThreshold)
	mem := memory.NewStore(extractor, memory.DefaultCaps())
	confirmations := confirm.NewManager(nil, registry,
		confirm.Thresholds{AutoAccept: cfg.AutoAcceptThreshold, ComplexQuery: cfg.ComplexQueryThreshold},
		cfg.ConfirmationTTL, cfg.ConfirmationGrace)
	kn := knowledge.NewMockProvider()

	return New(extractor, registry, rt, mem, confirmations, client, kn, nil, cfg), kn
}

func hasState(path []domain.WorkflowState, state domain.WorkflowState) bool {
	for _, s := range path {
		if s == state {
			return true
		}
	}
	return false
}

func TestProcessQueryEmpty(t *testing.T) {
	eng, _ := newTestEngine(t, responder.NewMockClient())

	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{Query: "   "})
	assert.True(t, resp.Error)
	assert.Equal(t, apologyText, resp.Response)
	assert.Zero(t, resp.Confidence)
	assert.Contains(t, resp.SessionID, "sess_")
	assert.True(t, hasState(resp.WorkflowPath, domain.StateHandleError))
	assert.False(t, hasState(resp.WorkflowPath, domain.StateRoute))
}

func TestProcessQuerySingleCapabilityFinalized(t *testing.T) {
	eng, _ := newTestEngine(t, responder.NewMockClient())

	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query: "driver performance: how is Hamilton's qualifying form and race pace?",
	})
	assert.False(t, resp.Error)
	assert.False(t, resp.MultiCapability)
	assert.False(t, resp.ConfirmationRequired)
	assert.Equal(t, "driver_performance", resp.Capability)
	assert.Equal(t, 1, resp.CapabilityResultCount)
	assert.Contains(t, resp.Response, "[MOCK]")
	assert.True(t, hasState(resp.WorkflowPath, domain.StateExecuteSingle))
	assert.True(t, hasState(resp.WorkflowPath, domain.StateFinalize))
	assert.False(t, hasState(resp.WorkflowPath, domain.StateSynthesize))

	// Both sides of the turn land in conversation memory.
	sess := eng.GetHistory(resp.SessionID, 0)
	assert.Len(t, sess.Messages, 2)
	assert.Equal(t, domain.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, resp.Capability, sess.Messages[1].Metadata.Capability)
}

func TestProcessQueryComparisonRunsMulti(t *testing.T) {
	mock := responder.NewMockClient()
	eng, _ := newTestEngine(t, mock)

	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query: "Compare Hamilton and Verstappen career wins",
	})
	assert.False(t, resp.Error)
	assert.True(t, resp.MultiCapability)
	assert.Equal(t, 3, resp.CapabilityResultCount)
	assert.True(t, hasState(resp.WorkflowPath, domain.StateExecuteMulti))
	assert.True(t, hasState(resp.WorkflowPath, domain.StateSynthesize))

	// Three specialist calls plus one synthesis call.
	assert.Len(t, mock.Calls, 4)

	// Low confidence plus multi-capability execution gates the result.
	assert.True(t, resp.ConfirmationRequired)
	assert.NotEmpty(t, resp.ConfirmationID)
	assert.True(t, hasState(resp.WorkflowPath, domain.StateRequestHumanInput))

	result := eng.ProcessConfirmation(context.Background(), resp.ConfirmationID,
		domain.ConfirmationDecisionRequest{Action: domain.ResolveActionConfirm})
	assert.True(t, result.OK)
	assert.Equal(t, resp.Response, result.FinalText)
}

func TestProcessQueryAllCapabilitiesFail(t *testing.T) {
	mock := responder.NewMockClient()
	mock.Fail = true
	eng, _ := newTestEngine(t, mock)

	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query: "Compare Hamilton and Verstappen career wins",
	})
	assert.True(t, resp.Error)
	assert.Equal(t, apologyText, resp.Response)
	assert.Equal(t, errorConfidence, resp.Confidence)
	assert.Zero(t, resp.CapabilityResultCount)
	assert.True(t, hasState(resp.WorkflowPath, domain.StateHandleError))
	assert.False(t, resp.ConfirmationRequired)

	// The failed turn is still remembered.
	sess := eng.GetHistory(resp.SessionID, 0)
	assert.Len(t, sess.Messages, 2)
}

// selectiveResponder fails only for the named specialist, so partial
// multi-capability failure can be exercised.
type selectiveResponder struct {
	mu       sync.Mutex
	failName string
	inner    *responder.MockClient
}

func (s *selectiveResponder) Complete(ctx context.Context, messages []responder.Message) (string, error) {
	s.mu.Lock()
	fail := len(messages) > 0 && strings.Contains(messages[0].Content, s.failName)
	s.mu.Unlock()
	if fail {
		return "", &responder.Error{Code: "down", Message: "specialist unavailable"}
	}
	return s.inner.Complete(ctx, messages)
}

func TestProcessQueryPartialFailureDegrades(t *testing.T) {
	client := &selectiveResponder{
		failName: "Historical Comparison Specialist",
		inner:    responder.NewMockClient(),
	}
	eng, _ := newTestEngine(t, client)

	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query: "Compare Hamilton and Verstappen career wins",
	})
	assert.False(t, resp.Error)
	assert.True(t, resp.MultiCapability)
	assert.Equal(t, 2, resp.CapabilityResultCount)
	assert.NotEmpty(t, resp.Response)
}

// slowResponder never answers before its delay elapses.
type slowResponder struct {
	delay time.Duration
}

func (s *slowResponder) Complete(ctx context.Context, messages []responder.Message) (string, error) {
	select {
	case <-time.After(s.delay):
		return "late answer", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestProcessQueryAggregateTimeout(t *testing.T) {
	cfg := config.Load()
	cfg.AggregateTimeout = 50 * time.Millisecond
	eng, _ := newTestEngineWithConfig(t, &slowResponder{delay: 5 * time.Second}, cfg)

	start := time.Now()
	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query: "Compare Hamilton and Verstappen career wins",
	})
	elapsed := time.Since(start)

	// The fan-in returns at the aggregate bound; slow specialists count
	// as failed for this turn.
	assert.Less(t, elapsed, 2*time.Second)
	assert.True(t, resp.Error)
	assert.Equal(t, errorConfidence, resp.Confidence)
	assert.Zero(t, resp.CapabilityResultCount)
	assert.True(t, hasState(resp.WorkflowPath, domain.StateHandleError))
}

func TestProcessQueryClarificationFollowUp(t *testing.T) {
	mock := responder.NewMockClient()
	mock.FixedResponse = "Which season are you referring to?"
	eng, _ := newTestEngine(t, mock)

	first := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query: "How many wins does Hamilton have?",
	})
	assert.NotEmpty(t, first.SessionID)

	mock.FixedResponse = "Hamilton won 8 races in 2021."
	second := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		SessionID: first.SessionID,
		Query:     "in 2021",
	})

	// The follow-up is interpreted against the query that prompted the
	// clarifying question.
	assert.Contains(t, second.Metadata.Features.Entities[domain.EntityKindDriver], "hamilton")
	assert.Contains(t, second.Metadata.Features.Temporal.Seasons, 2021)
}

func TestProcessQueryExtraContext(t *testing.T) {
	eng, _ := newTestEngine(t, responder.NewMockClient())

	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query:   "how many wins that season?",
		Context: map[string]string{"driver": "Hamilton", "season": "2021"},
	})

	// Context hints participate in extraction and routing.
	assert.Contains(t, resp.Metadata.Features.Entities[domain.EntityKindDriver], "hamilton")
	assert.Contains(t, resp.Metadata.Features.Temporal.Seasons, 2021)

	// Hints alone never rescue an empty query.
	empty := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Context: map[string]string{"driver": "Hamilton"},
	})
	assert.True(t, empty.Error)
}

func TestProcessQuerySessionContinuity(t *testing.T) {
	eng, _ := newTestEngine(t, responder.NewMockClient())

	first := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query:  "how is Verstappen's qualifying form",
		UserID: "u1",
	})
	second := eng.ProcessQuery(context.Background(), domain.QueryRequest{
		SessionID: first.SessionID,
		Query:     "and his race pace?",
	})
	assert.Equal(t, first.SessionID, second.SessionID)

	sess := eng.GetHistory(first.SessionID, 0)
	assert.Equal(t, "u1", sess.UserID)
	assert.Len(t, sess.Messages, 4)
	assert.Contains(t, sess.Context.Entities[domain.EntityKindDriver], "verstappen")
}

func TestDeleteSessionPassThrough(t *testing.T) {
	eng, _ := newTestEngine(t, responder.NewMockClient())

	resp := eng.ProcessQuery(context.Background(), domain.QueryRequest{Query: "tell me about Monza"})
	assert.True(t, eng.DeleteSession(resp.SessionID))
	assert.False(t, eng.DeleteSession(resp.SessionID))
	assert.Nil(t, eng.GetHistory(resp.SessionID, 0))
}

func TestProcessQueryFetchesKnowledge(t *testing.T) {
	eng, kn := newTestEngine(t, responder.NewMockClient())

	eng.ProcessQuery(context.Background(), domain.QueryRequest{
		Query: "driver performance: how is Hamilton's qualifying form and race pace?",
	})
	assert.Contains(t, kn.Fetches, "driver:hamilton:0")
}
