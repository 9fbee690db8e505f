// Package policy evaluates the confirmation acceptance policy with OPA.
// The rego module decides whether a tentative result is accepted as final
// or gated behind human confirmation, and names the triggering reasons.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision values produced by the policy.
const (
	DecisionAccept  = "accept"
	DecisionConfirm = "confirm"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine from the given rego module content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.confirmation_policy"),
		rego.Module("confirmation_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate runs the confirmation policy. Input keys: confidence, complexity,
// multi_capability, sensitive, verification_requested, season_gap, plus the
// threshold values. Returns the decision and the triggered reason codes.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, []string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The module defines a default decision; no result means the
		// module is malformed.
		return "", nil, fmt.Errorf("policy returned no result")
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return "", nil, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}

	decision, _ := obj["decision"].(string)
	if decision == "" {
		decision = DecisionAccept
	}

	var reasons []string
	if raw, ok := obj["reasons"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				reasons = append(reasons, s)
			}
		}
	}

	return decision, reasons, nil
}

// DefaultPolicy is the built-in confirmation policy. A result at or above
// the auto-accept threshold is never gated, regardless of other triggers.
const DefaultPolicy = `
package confirmation_policy

import rego.v1

default decision := "accept"

decision := "confirm" if {
	count(reasons) > 0
	input.confidence < input.auto_accept_threshold
}

reasons contains "low_confidence" if {
	input.confidence < input.complex_query_threshold
}

reasons contains "complex_query" if {
	input.complexity == "complex"
}

reasons contains "multi_capability" if {
	input.multi_capability == true
}

reasons contains "sensitive_content" if {
	input.sensitive == true
}

reasons contains "verification_requested" if {
	input.verification_requested == true
}

reasons contains "season_gap" if {
	input.season_gap > input.max_season_gap
}
`
