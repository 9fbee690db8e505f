// Package features turns raw query text into a structured feature bundle:
// mentioned entities, query-type tags, a complexity estimate, and temporal
// markers. Extraction is pure keyword matching against static vocabularies
// and is shared by the router and the conversation memory store so the two
// never disagree about what a query mentions.
package features

import (
	"regexp"
	"strings"

	"github.com/pitwall/paddock/internal/domain"
)

// Complexity scoring weights and bucket thresholds. Tuning policy, not
// correctness invariants: a query scoring at most simpleMax is simple,
// at most moderateMax is moderate, anything above is complex.
const (
	wordCountWeight   = 0.1
	indicatorWeight   = 1.0
	entityCountWeight = 0.5
	simpleMax         = 1.5
	moderateMax       = 3.0
)

var seasonPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Extractor extracts features from query text. Stateless and safe for
// concurrent use.
type Extractor struct{}

// New creates a feature extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract builds the feature bundle for a query. It never fails on
// well-formed string input; empty queries are rejected upstream.
func (e *Extractor) Extract(query string) domain.Features {
	lower := strings.ToLower(query)

	f := domain.Features{
		Entities:  e.ExtractEntities(query),
		Tags:      extractTags(lower),
		Temporal:  extractTemporal(lower),
		WordCount: len(strings.Fields(query)),
	}
	for _, ids := range f.Entities {
		f.EntityCount += len(ids)
	}
	f.Complexity = bucketComplexity(lower, f.WordCount, f.EntityCount)
	return f
}

// ExtractEntities returns the canonical ids of all vocabulary entities whose
// aliases occur in the text, keyed by kind. Ids are deduplicated and listed
// in vocabulary declaration order.
func (e *Extractor) ExtractEntities(text string) map[domain.EntityKind][]string {
	lower := strings.ToLower(text)
	out := make(map[domain.EntityKind][]string)
	for _, kind := range domain.EntityKinds {
		for _, entry := range entityVocab[kind] {
			for _, alias := range entry.Aliases {
				if strings.Contains(lower, alias) {
					out[kind] = append(out[kind], entry.ID)
					break
				}
			}
		}
	}
	return out
}

// ExtractSeasons returns explicit 4-digit seasons found in the text.
func (e *Extractor) ExtractSeasons(text string) []int {
	return extractSeasons(text)
}

// IsRelativeTimeReference reports whether the text contains a relative
// time phrase (used to detect clarification answers like "this year").
func (e *Extractor) IsRelativeTimeReference(text string) bool {
	lower := strings.ToLower(text)
	for _, phrases := range [][]string{currentSeasonPhrases, historicalPhrases, futurePhrases} {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
	}
	return false
}

func extractTags(lower string) []domain.QueryTag {
	var tags []domain.QueryTag
	for _, entry := range tagVocab {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, entry.Tag)
				break
			}
		}
	}
	return tags
}

func extractSeasons(text string) []int {
	var seasons []int
	seen := make(map[int]bool)
	for _, m := range seasonPattern.FindAllString(text, -1) {
		y := 0
		for _, c := range m {
			y = y*10 + int(c-'0')
		}
		if !seen[y] {
			seen[y] = true
			seasons = append(seasons, y)
		}
	}
	return seasons
}

func extractTemporal(lower string) domain.Temporal {
	t := domain.Temporal{Seasons: extractSeasons(lower)}
	for _, p := range currentSeasonPhrases {
		if strings.Contains(lower, p) {
			t.IsCurrentSeason = true
			break
		}
	}
	for _, p := range historicalPhrases {
		if strings.Contains(lower, p) {
			t.IsHistorical = true
			break
		}
	}
	for _, p := range futurePhrases {
		if strings.Contains(lower, p) {
			t.IsFuture = true
			break
		}
	}
	// Explicit past seasons imply a historical query even without phrasing.
	if len(t.Seasons) > 0 && !t.IsCurrentSeason && !t.IsFuture {
		t.IsHistorical = true
	}
	return t
}

func bucketComplexity(lower string, wordCount, entityCount int) domain.Complexity {
	indicators := 0
	for _, kw := range complexityIndicators {
		if strings.Contains(lower, kw) {
			indicators++
		}
	}

	score := float64(wordCount)*wordCountWeight +
		float64(indicators)*indicatorWeight +
		float64(entityCount)*entityCountWeight

	switch {
	case score <= simpleMax:
		return domain.ComplexitySimple
	case score <= moderateMax:
		return domain.ComplexityModerate
	default:
		return domain.ComplexityComplex
	}
}
