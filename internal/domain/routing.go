package domain

// RoutingDecision is the router's output for one query. Created fresh per
// query; carried in message metadata for audit but never persisted as state.
type RoutingDecision struct {
	Capability      string      `json:"capability"`
	Confidence      float64     `json:"confidence"`
	Alternatives    []Candidate `json:"alternatives,omitempty"`
	MultiCapability bool        `json:"multi_capability"`
	Fallback        bool        `json:"fallback,omitempty"`
}

// Candidate is one ranked routing alternative.
type Candidate struct {
	Capability string  `json:"capability"`
	Confidence float64 `json:"confidence"`
}

// CapabilityResult is the output of one capability execution.
type CapabilityResult struct {
	Capability string  `json:"capability"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Err        error   `json:"-"`
}
