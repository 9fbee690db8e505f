package domain

import "time"

// ConfirmationRequest represents a pending human decision over a tentative
// result. At most one terminal transition: pending -> resolved or
// pending -> expired.
type ConfirmationRequest struct {
	ConfirmationID string               `json:"confirmation_id"`
	SessionID      string               `json:"session_id"`
	UserID         string               `json:"user_id,omitempty"`
	Query          string               `json:"query"`
	TentativeText  string               `json:"tentative_text"`
	Confidence     float64              `json:"confidence"`
	Reasons        []ConfirmationReason `json:"reasons"`
	Features       Features             `json:"features"`
	Alternatives   []Candidate          `json:"alternatives,omitempty"`
	Capability     string               `json:"capability"`
	Status         ConfirmationStatus   `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	ExpiresAt      time.Time            `json:"expires_at"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	Action         ResolveAction        `json:"action,omitempty"`
}

// ResolveResult is the outcome of resolving a confirmation request.
type ResolveResult struct {
	OK               bool          `json:"ok"`
	Action           ResolveAction `json:"action,omitempty"`
	FinalText        string        `json:"final_text,omitempty"`
	Confidence       float64       `json:"confidence,omitempty"`
	RefinementPrompt string        `json:"refinement_prompt,omitempty"`
	Suggestions      []string      `json:"suggestions,omitempty"`
	RetryCapability  string        `json:"retry_capability,omitempty"`
	OriginalQuery    string        `json:"original_query,omitempty"`
	Reason           string        `json:"reason,omitempty"`
}
