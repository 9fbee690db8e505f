package store

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestRecordAndListTurns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	first := &TurnRecord{
		TurnID:       "turn_1",
		SessionID:    "s1",
		Query:        "how many wins does Hamilton have",
		Response:     "Hamilton has 105 wins.",
		Capability:   "driver_performance",
		Confidence:   0.82,
		ResultCount:  1,
		WorkflowPath: "validate>route>check_multi_agent>execute_single>generate_response>finalize",
		DurationMs:   120,
		CreatedAt:    base,
	}
	if err := s.RecordTurn(ctx, first); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}

	second := &TurnRecord{
		TurnID:          "turn_2",
		SessionID:       "s1",
		Query:           "compare Hamilton and Verstappen",
		Response:        "Both are great.",
		Capability:      "historical_comparison",
		Confidence:      0.69,
		MultiCapability: true,
		ResultCount:     3,
		CreatedAt:       base.Add(time.Second),
	}
	if err := s.RecordTurn(ctx, second); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}

	turns, err := s.ListTurns(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].TurnID != "turn_2" {
		t.Fatalf("expected newest first, got %s", turns[0].TurnID)
	}
	if !turns[0].MultiCapability || turns[0].ResultCount != 3 {
		t.Fatalf("unexpected turn: %+v", turns[0])
	}
	if turns[1].WorkflowPath != first.WorkflowPath {
		t.Fatalf("workflow path mismatch: %q", turns[1].WorkflowPath)
	}
}

func TestListTurnsScopedToSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, session := range []string{"s1", "s2", "s1"} {
		rec := &TurnRecord{
			TurnID:    "turn_" + string(rune('a'+i)),
			SessionID: session,
			Query:     "q",
			Response:  "r",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := s.RecordTurn(ctx, rec); err != nil {
			t.Fatalf("RecordTurn failed: %v", err)
		}
	}

	turns, err := s.ListTurns(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns for s1, got %d", len(turns))
	}

	limited, err := s.ListTurns(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 turn with limit, got %d", len(limited))
	}
}

func TestRecordDecision(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := &DecisionRecord{
		ConfirmationID: "conf_1",
		SessionID:      "s1",
		Action:         "confirm",
		OK:             true,
		DecidedAt:      time.Now(),
	}
	if err := s.RecordDecision(ctx, rec); err != nil {
		t.Fatalf("RecordDecision failed: %v", err)
	}

	failed := &DecisionRecord{
		ConfirmationID: "conf_1",
		SessionID:      "s1",
		Action:         "confirm",
		OK:             false,
		Reason:         "already_processed",
		DecidedAt:      time.Now(),
	}
	if err := s.RecordDecision(ctx, failed); err != nil {
		t.Fatalf("RecordDecision failed: %v", err)
	}
}

func TestDuplicateTurnIDRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := &TurnRecord{TurnID: "turn_1", SessionID: "s1", Query: "q", Response: "r", CreatedAt: time.Now()}
	if err := s.RecordTurn(ctx, rec); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}
	if err := s.RecordTurn(ctx, rec); err == nil {
		t.Fatal("expected duplicate turn_id to be rejected")
	}
}
