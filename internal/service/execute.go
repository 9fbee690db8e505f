package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pitwall/paddock/internal/adapter/knowledge"
	"github.com/pitwall/paddock/internal/adapter/responder"
	"github.com/pitwall/paddock/internal/capability"
	"github.com/pitwall/paddock/internal/domain"
)

// At most this many entities are looked up per capability execution.
const maxFactLookups = 3

// Facts missing for every requested entity shave confidence by this factor.
const missingFactsPenalty = 0.85

// executeSingle runs the primary capability only.
func (e *Engine) executeSingle(ctx context.Context, query string, feats domain.Features, decision domain.RoutingDecision) domain.CapabilityResult {
	desc := e.registry.Get(decision.Capability)
	if desc == nil {
		desc = e.registry.Default()
	}
	return e.executeCapability(ctx, desc, query, feats, decision.Confidence)
}

// executeMulti fans out the primary capability plus its ranked alternatives
// concurrently and waits for all to settle, bounded by the aggregate
// timeout. Capabilities that have not completed by then are treated as
// failed for this turn; a slow specialist never blocks the others.
func (e *Engine) executeMulti(ctx context.Context, query string, feats domain.Features, decision domain.RoutingDecision) []domain.CapabilityResult {
	selected := []domain.Candidate{{Capability: decision.Capability, Confidence: decision.Confidence}}
	for _, alt := range decision.Alternatives {
		if len(selected) == 3 {
			break
		}
		selected = append(selected, alt)
	}

	resultCh := make(chan domain.CapabilityResult, len(selected))
	for _, cand := range selected {
		go func(cand domain.Candidate) {
			desc := e.registry.Get(cand.Capability)
			if desc == nil {
				resultCh <- domain.CapabilityResult{
					Capability: cand.Capability,
					Err:        fmt.Errorf("unknown capability %q", cand.Capability),
				}
				return
			}
			resultCh <- e.executeCapability(ctx, desc, query, feats, cand.Confidence)
		}(cand)
	}

	timer := time.NewTimer(e.config.AggregateTimeout)
	defer timer.Stop()

	results := make([]domain.CapabilityResult, 0, len(selected))
	settled := make(map[string]bool, len(selected))
	for range selected {
		select {
		case r := <-resultCh:
			results = append(results, r)
			settled[r.Capability] = true
		case <-timer.C:
			log.Printf("WARN: aggregate timeout after %d of %d capability results", len(results), len(selected))
			for _, cand := range selected {
				if !settled[cand.Capability] {
					results = append(results, domain.CapabilityResult{
						Capability: cand.Capability,
						Err:        context.DeadlineExceeded,
					})
				}
			}
			return results
		}
	}
	return results
}

// executeCapability is the one generic execution function, parameterized by
// the capability descriptor: fetch facts for the extracted entities, build
// the specialist prompt, call the responder.
func (e *Engine) executeCapability(parent context.Context, desc *capability.Descriptor, query string, feats domain.Features, confidence float64) domain.CapabilityResult {
	ctx, cancel := context.WithTimeout(parent, desc.Timeout)
	defer cancel()

	facts := e.fetchFacts(ctx, desc, feats)

	text, err := e.responder.Complete(ctx, buildPrompt(desc, query, facts))
	if err != nil {
		return domain.CapabilityResult{Capability: desc.ID, Err: err}
	}

	if len(facts) == 0 && feats.EntityCount > 0 {
		confidence *= missingFactsPenalty
	}
	return domain.CapabilityResult{
		Capability: desc.ID,
		Text:       text,
		Confidence: clamp01(confidence),
	}
}

// fetchFacts looks up facts for the capability's entity kinds. Lookup
// failures and absent data degrade the prompt, not the turn.
func (e *Engine) fetchFacts(ctx context.Context, desc *capability.Descriptor, feats domain.Features) []*knowledge.Facts {
	kinds := desc.EntityKinds
	if len(kinds) == 0 {
		kinds = domain.EntityKinds
	}

	season := 0
	if len(feats.Temporal.Seasons) > 0 {
		season = feats.Temporal.Seasons[0]
	}

	var facts []*knowledge.Facts
	for _, kind := range kinds {
		for _, id := range feats.Entities[kind] {
			if len(facts) == maxFactLookups {
				return facts
			}
			f, err := e.knowledge.Fetch(ctx, kind, id, season)
			if err != nil {
				log.Printf("WARN: knowledge fetch failed for %s/%s: %v", kind, id, err)
				continue
			}
			if f != nil {
				facts = append(facts, f)
			}
		}
	}
	return facts
}

func buildPrompt(desc *capability.Descriptor, query string, facts []*knowledge.Facts) []responder.Message {
	var sb strings.Builder
	sb.WriteString(query)
	if len(facts) > 0 {
		sb.WriteString("\n\nRelevant facts:\n")
		for _, f := range facts {
			encoded, err := json.Marshal(f)
			if err != nil {
				continue
			}
			sb.WriteString(string(encoded))
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("\n\nNo stored facts are available; answer from general knowledge and say so.")
	}

	return []responder.Message{
		{Role: "system", Content: fmt.Sprintf("You are the %s. %s", desc.DisplayName, desc.Specialization)},
		{Role: "user", Content: sb.String()},
	}
}

// synthesize combines multiple capability outputs into one result via the
// responder. A synthesis failure downgrades to the highest-confidence raw
// result rather than aborting the turn.
func (e *Engine) synthesize(ctx context.Context, query string, results []domain.CapabilityResult) domain.CapabilityResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	if len(results) == 1 {
		return best
	}

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nSpecialist answers:\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "[%s] %s\n", r.Capability, r.Text)
	}

	text, err := e.responder.Complete(ctx, []responder.Message{
		{Role: "system", Content: "Combine the specialist answers below into one coherent, non-repetitive response to the question."},
		{Role: "user", Content: sb.String()},
	})
	if err != nil {
		log.Printf("WARN: synthesis failed, using best single result: %v", err)
		return best
	}

	return domain.CapabilityResult{
		Capability: best.Capability,
		Text:       text,
		Confidence: best.Confidence,
	}
}
