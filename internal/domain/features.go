package domain

// Features is the structured bundle extracted from raw query text.
type Features struct {
	Entities    map[EntityKind][]string `json:"entities"`
	Tags        []QueryTag              `json:"tags"`
	Complexity  Complexity              `json:"complexity"`
	Temporal    Temporal                `json:"temporal"`
	WordCount   int                     `json:"word_count"`
	EntityCount int                     `json:"entity_count"`
}

// Temporal captures the time references found in a query.
type Temporal struct {
	IsCurrentSeason bool  `json:"is_current_season"`
	IsHistorical    bool  `json:"is_historical"`
	IsFuture        bool  `json:"is_future"`
	Seasons         []int `json:"seasons,omitempty"`
}

// HasTag reports whether the feature bundle carries the given tag.
func (f Features) HasTag(tag QueryTag) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SeasonGap returns the distance between the earliest and latest explicit
// seasons, or 0 when fewer than two seasons are referenced.
func (f Features) SeasonGap() int {
	if len(f.Temporal.Seasons) < 2 {
		return 0
	}
	min, max := f.Temporal.Seasons[0], f.Temporal.Seasons[0]
	for _, y := range f.Temporal.Seasons[1:] {
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	return max - min
}
