package domain

// QueryRequest is a single natural-language query entering the engine.
type QueryRequest struct {
	SessionID string            `json:"session_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Query     string            `json:"query"`
	Context   map[string]string `json:"context,omitempty"`
}

// QueryResponse is the engine's answer to one query.
type QueryResponse struct {
	Response              string                `json:"response"`
	Capability            string                `json:"capability"`
	Confidence            float64               `json:"confidence"`
	MultiCapability       bool                  `json:"multi_capability"`
	CapabilityResultCount int                   `json:"capability_result_count"`
	SessionID             string                `json:"session_id"`
	ConfirmationID        string                `json:"confirmation_id,omitempty"`
	ConfirmationRequired  bool                  `json:"confirmation_required,omitempty"`
	Error                 bool                  `json:"error,omitempty"`
	WorkflowPath          []WorkflowState       `json:"workflow_path"`
	Metadata              QueryResponseMetadata `json:"metadata"`
}

// QueryResponseMetadata carries audit details for one processed turn.
type QueryResponseMetadata struct {
	TurnID     string          `json:"turn_id"`
	DurationMs int64           `json:"duration_ms"`
	Routing    RoutingDecision `json:"routing"`
	Features   Features        `json:"features"`
}

// ConfirmationDecisionRequest is a human decision submitted for a
// pending confirmation.
type ConfirmationDecisionRequest struct {
	Action    ResolveAction     `json:"action"`
	DecidedBy string            `json:"decided_by,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}
