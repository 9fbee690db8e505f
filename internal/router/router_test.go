package router

import (
	"testing"

	"github.com/pitwall/paddock/internal/capability"
	"github.com/pitwall/paddock/internal/domain"
	"github.com/pitwall/paddock/internal/features"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() (*Router, *features.Extractor) {
	return New(capability.NewRegistry(), DefaultWeights(), 0.2), features.New()
}

func route(r *Router, e *features.Extractor, query string) domain.RoutingDecision {
	return r.Route(query, e.Extract(query), nil)
}

func TestRouteDeterministic(t *testing.T) {
	r, e := newTestRouter()
	query := "Compare Hamilton and Verstappen career wins"

	first := route(r, e, query)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, route(r, e, query))
	}
}

func TestRouteConfidenceBounds(t *testing.T) {
	r, e := newTestRouter()

	queries := []string{
		"",
		"driver performance qualifying race pace form driver performance",
		"Compare Hamilton Verstappen Leclerc Ferrari Mercedes at Monza across eras",
		"what are the technical regulations on power unit penalties",
	}
	for _, q := range queries {
		d := route(r, e, q)
		assert.GreaterOrEqual(t, d.Confidence, 0.0, "query %q", q)
		assert.LessOrEqual(t, d.Confidence, 1.0, "query %q", q)
		for _, alt := range d.Alternatives {
			assert.GreaterOrEqual(t, alt.Confidence, 0.0)
			assert.LessOrEqual(t, alt.Confidence, 1.0)
		}
	}
}

func TestRoutePredictionQuery(t *testing.T) {
	r, e := newTestRouter()

	d := route(r, e, "Who will win the next race at Monza?")
	assert.Equal(t, "race_prediction", d.Capability)
	assert.False(t, d.MultiCapability)
}

func TestRouteComparisonTriggersMulti(t *testing.T) {
	r, e := newTestRouter()

	d := route(r, e, "Compare Hamilton and Verstappen career wins")
	assert.True(t, d.MultiCapability)
	assert.Equal(t, "historical_comparison", d.Capability)
}

func TestRouteComplexTriggersMulti(t *testing.T) {
	r, e := newTestRouter()

	query := "analyze the correlation and trend breakdown across seasons for Hamilton"
	feats := e.Extract(query)
	assert.Equal(t, domain.ComplexityComplex, feats.Complexity)
	assert.True(t, r.Route(query, feats, nil).MultiCapability)
}

func TestRouteNarrowGapTriggersMulti(t *testing.T) {
	r, e := newTestRouter()

	// Nothing matches any capability, so the top-two gap is zero.
	d := route(r, e, "hello there")
	assert.True(t, d.MultiCapability)
}

func TestRouteManyEntitiesTriggersMulti(t *testing.T) {
	r, e := newTestRouter()

	d := route(r, e, "Hamilton, Verstappen and Leclerc points this season")
	assert.True(t, d.MultiCapability)
}

func TestRouteAlternativesCapped(t *testing.T) {
	r, e := newTestRouter()

	d := route(r, e, "Compare everything about every driver and team and strategy")
	assert.LessOrEqual(t, len(d.Alternatives), maxAlternatives)
	assert.NotEmpty(t, d.Alternatives)
}

func TestRouteContinuityBoost(t *testing.T) {
	r, e := newTestRouter()
	query := "tell me more about the strategy"

	without := route(r, e, query)
	with := r.Route(query, e.Extract(query), &domain.Context{LastCapability: "team_strategy"})

	assert.Equal(t, "team_strategy", with.Capability)
	assert.Greater(t, with.Confidence, without.Confidence)
}

func TestRouteContinuityIgnoredWithEntities(t *testing.T) {
	r, e := newTestRouter()
	query := "how is Hamilton's qualifying form"

	without := route(r, e, query)
	with := r.Route(query, e.Extract(query), &domain.Context{LastCapability: "driver_performance"})

	// The boost only applies to entity-free follow-ups.
	assert.Equal(t, without.Confidence, with.Confidence)
}

func TestRouteRecoversFromScoringPanic(t *testing.T) {
	// An empty registry makes candidate selection panic; routing must
	// degrade to the fallback decision instead of aborting.
	r := New(new(capability.Registry), DefaultWeights(), 0.2)
	e := features.New()

	d := r.Route("compare Hamilton and Verstappen", e.Extract("compare Hamilton and Verstappen"), nil)
	assert.Equal(t, r.FallbackDecision(), d)
}

func TestFallbackDecision(t *testing.T) {
	r, _ := newTestRouter()

	d := r.FallbackDecision()
	assert.Equal(t, capability.DefaultID, d.Capability)
	assert.Equal(t, FallbackConfidence, d.Confidence)
	assert.True(t, d.Fallback)
	assert.False(t, d.MultiCapability)
	assert.Empty(t, d.Alternatives)
}
