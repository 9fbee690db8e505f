// Package router scores capabilities against an extracted feature bundle
// and decides single- versus multi-capability execution.
package router

import (
	"log"
	"sort"
	"strings"

	"github.com/pitwall/paddock/internal/capability"
	"github.com/pitwall/paddock/internal/domain"
)

// Weights are the scoring constants. Empirically tuned policy, exposed as
// configuration rather than hard-coded invariants.
type Weights struct {
	Keyword         float64 // per primary keyword substring match
	SpecWord        float64 // per specialization word (>= 4 chars) found
	IDMention       float64 // query names the capability id
	NameMention     float64 // query names the display name
	Divisor         float64 // confidence normalization divisor
	TagBoost        float64 // query-type tag boost increment
	ComplexityBoost float64 // complex-query boost for synthesis capabilities
	ContinuityBoost float64 // session stayed on the same capability
}

// DefaultWeights returns the reference scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Keyword:         1.0,
		SpecWord:        0.5,
		IDMention:       3.0,
		NameMention:     2.0,
		Divisor:         5.0,
		TagBoost:        0.25,
		ComplexityBoost: 0.15,
		ContinuityBoost: 0.1,
	}
}

// FallbackConfidence is the confidence assigned to the deterministic
// fallback decision when scoring internals fail.
const FallbackConfidence = 0.3

const maxAlternatives = 3

// Router produces routing decisions. Stateless per query; safe for
// concurrent use.
type Router struct {
	registry     *capability.Registry
	weights      Weights
	gapThreshold float64
}

// New creates a router over the capability registry. gapThreshold is the
// top-two confidence gap below which multi-capability execution triggers.
func New(registry *capability.Registry, weights Weights, gapThreshold float64) *Router {
	return &Router{registry: registry, weights: weights, gapThreshold: gapThreshold}
}

// Route ranks candidate capabilities for a query. Scoring failures are
// absorbed into a deterministic fallback decision; routing never aborts
// the pipeline.
func (r *Router) Route(query string, features domain.Features, sessionCtx *domain.Context) (decision domain.RoutingDecision) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("ERROR: routing degraded to fallback: %v", rec)
			decision = r.FallbackDecision()
		}
	}()

	lower := strings.ToLower(query)
	candidates := make([]domain.Candidate, 0, len(r.registry.All()))

	for _, desc := range r.registry.All() {
		conf := r.score(lower, &desc, features, sessionCtx)
		candidates = append(candidates, domain.Candidate{Capability: desc.ID, Confidence: conf})
	}

	// Descending by confidence; ties keep declaration order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	primary := candidates[0]
	alternatives := candidates[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	return domain.RoutingDecision{
		Capability:      primary.Capability,
		Confidence:      primary.Confidence,
		Alternatives:    alternatives,
		MultiCapability: r.decideMulti(features, candidates),
	}
}

// FallbackDecision is the deterministic decision returned when scoring fails.
func (r *Router) FallbackDecision() domain.RoutingDecision {
	return domain.RoutingDecision{
		Capability: capability.DefaultID,
		Confidence: FallbackConfidence,
		Fallback:   true,
	}
}

func (r *Router) score(lower string, desc *capability.Descriptor, features domain.Features, sessionCtx *domain.Context) float64 {
	score := 0.0

	for _, kw := range desc.Keywords {
		if strings.Contains(lower, kw) {
			score += r.weights.Keyword
		}
	}

	for _, word := range strings.Fields(strings.ToLower(desc.Specialization)) {
		word = strings.Trim(word, ".,")
		if len(word) >= 4 && strings.Contains(lower, word) {
			score += r.weights.SpecWord
		}
	}

	if strings.Contains(lower, strings.ReplaceAll(desc.ID, "_", " ")) || strings.Contains(lower, desc.ID) {
		score += r.weights.IDMention
	}
	if strings.Contains(lower, strings.ToLower(desc.DisplayName)) {
		score += r.weights.NameMention
	}

	conf := score / r.weights.Divisor
	if conf > 1.0 {
		conf = 1.0
	}

	// Entity boost applies only when extraction (not just raw text) found
	// entities of the capability's kinds.
	for _, kind := range desc.EntityKinds {
		if len(features.Entities[kind]) > 0 {
			conf *= desc.EntityBoost
			break
		}
	}

	if features.Complexity == domain.ComplexityComplex && desc.ID == "historical_comparison" {
		conf += r.weights.ComplexityBoost
	}
	if features.HasTag(domain.QueryTagComparison) && desc.ID == "historical_comparison" {
		conf += r.weights.TagBoost
	}
	if features.HasTag(domain.QueryTagPrediction) && desc.ID == "race_prediction" {
		conf += r.weights.TagBoost
	}
	if features.HasTag(domain.QueryTagStatistical) && desc.ID == "driver_performance" {
		conf += r.weights.TagBoost * 0.6
	}

	// Topic continuity: a follow-up with no entities of its own leans
	// toward the capability that answered the previous turn.
	if sessionCtx != nil && sessionCtx.LastCapability == desc.ID && features.EntityCount == 0 {
		conf += r.weights.ContinuityBoost
	}

	if conf > 1.0 {
		conf = 1.0
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

func (r *Router) decideMulti(features domain.Features, ranked []domain.Candidate) bool {
	if features.Complexity == domain.ComplexityComplex {
		return true
	}
	if len(ranked) >= 2 && ranked[0].Confidence-ranked[1].Confidence < r.gapThreshold {
		return true
	}
	if features.HasTag(domain.QueryTagComparison) {
		return true
	}
	return features.EntityCount >= 3
}
