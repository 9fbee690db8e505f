// Package capability declares the domain-specialist capabilities the engine
// can route to. Each specialist is pure static data (a Descriptor); one
// generic execution function in the service layer is parameterized by it.
package capability

import (
	"time"

	"github.com/pitwall/paddock/internal/domain"
)

// Descriptor describes one specialist capability.
type Descriptor struct {
	ID          string
	DisplayName string
	// Primary keywords matched against raw query text (1 point each).
	Keywords []string
	// Specialization phrases; words of length >= 4 found in the query add
	// half a point each.
	Specialization string
	// Entity kinds this capability is strongest on. When the feature
	// extractor finds entities of these kinds, confidence is multiplied
	// by EntityBoost.
	EntityKinds []domain.EntityKind
	EntityBoost float64
	// Per-capability execution timeout.
	Timeout time.Duration
}

// DefaultID is the designated fallback capability used when routing
// degrades. Scoring failures never abort the pipeline.
const DefaultID = "driver_performance"

// Registry holds the capability table in declaration order. Read-only after
// startup; safe to share across goroutines without locking.
type Registry struct {
	descriptors []Descriptor
	byID        map[string]*Descriptor
}

// NewRegistry creates the built-in capability registry.
func NewRegistry() *Registry {
	return newRegistry(builtins)
}

func newRegistry(descs []Descriptor) *Registry {
	r := &Registry{descriptors: descs, byID: make(map[string]*Descriptor, len(descs))}
	for i := range r.descriptors {
		r.byID[r.descriptors[i].ID] = &r.descriptors[i]
	}
	return r
}

// All returns descriptors in declaration order.
func (r *Registry) All() []Descriptor {
	return r.descriptors
}

// Get returns the descriptor for id, or nil if unknown.
func (r *Registry) Get(id string) *Descriptor {
	return r.byID[id]
}

// Default returns the fallback capability descriptor.
func (r *Registry) Default() *Descriptor {
	return r.byID[DefaultID]
}

// Fallback returns the static alternative for a capability, used when a
// human asks for a different specialist and no ranked alternative exists.
func (r *Registry) Fallback(id string) *Descriptor {
	alt, ok := fallbacks[id]
	if !ok {
		return r.Default()
	}
	return r.byID[alt]
}

var builtins = []Descriptor{
	{
		ID:          "driver_performance",
		DisplayName: "Driver Performance Analyst",
		Keywords:    []string{"driver", "qualifying", "race pace", "points", "wins", "podium", "form", "overtake"},
		Specialization: "Analyzes individual driver results, qualifying pace, race craft, " +
			"championship points progression and season form.",
		EntityKinds: []domain.EntityKind{domain.EntityKindDriver},
		EntityBoost: 1.2,
		Timeout:     15 * time.Second,
	},
	{
		ID:          "team_strategy",
		DisplayName: "Team Strategy Analyst",
		Keywords:    []string{"team", "constructor", "strategy", "pit stop", "undercut", "upgrade", "development"},
		Specialization: "Covers constructor standings, pit stop strategy, car development " +
			"trajectories and team operations over a season.",
		EntityKinds: []domain.EntityKind{domain.EntityKindTeam},
		EntityBoost: 1.2,
		Timeout:     15 * time.Second,
	},
	{
		ID:          "historical_comparison",
		DisplayName: "Historical Comparison Specialist",
		Keywords:    []string{"compare", "versus", "era", "all-time", "career", "legacy", "history", "record"},
		Specialization: "Compares drivers, teams and seasons across eras, normalizing " +
			"statistics between regulation periods and championship formats.",
		EntityKinds: []domain.EntityKind{domain.EntityKindDriver, domain.EntityKindTeam},
		EntityBoost: 1.1,
		Timeout:     20 * time.Second,
	},
	{
		ID:          "race_prediction",
		DisplayName: "Race Prediction Specialist",
		Keywords:    []string{"predict", "forecast", "who will win", "next race", "chances", "likely"},
		Specialization: "Projects likely race outcomes from recent form, circuit " +
			"characteristics and qualifying performance.",
		EntityKinds: []domain.EntityKind{domain.EntityKindDriver, domain.EntityKindCircuit},
		EntityBoost: 1.15,
		Timeout:     20 * time.Second,
	},
	{
		ID:          "technical_regulations",
		DisplayName: "Technical Regulations Expert",
		Keywords:    []string{"regulation", "rule", "penalty", "drs", "power unit", "tyre", "parc ferme", "stewards"},
		Specialization: "Explains sporting and technical regulations, penalty decisions " +
			"and how rule changes shape competitive order.",
		EntityKinds: nil,
		EntityBoost: 1.0,
		Timeout:     15 * time.Second,
	},
}

// fallbacks maps a capability to the specialist tried when a human requests
// an alternative and the router produced no ranked candidates.
var fallbacks = map[string]string{
	"driver_performance":    "historical_comparison",
	"team_strategy":         "driver_performance",
	"historical_comparison": "driver_performance",
	"race_prediction":       "driver_performance",
	"technical_regulations": "team_strategy",
}
