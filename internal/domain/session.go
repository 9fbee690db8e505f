package domain

import "time"

// Session identifies one continuous conversation. It owns its messages
// and derived context; nothing is shared across sessions.
type Session struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Messages     []Message `json:"messages"`
	Context      *Context  `json:"context"`
}

// Message is one conversation turn. Immutable once appended.
type Message struct {
	MessageID string          `json:"message_id"`
	SessionID string          `json:"session_id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Metadata  MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata records how an assistant turn was produced.
type MessageMetadata struct {
	Capability string  `json:"capability,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	DurationMs int64   `json:"duration_ms,omitempty"`
}

// Context is the derived, mutable aggregate tracked per session.
// Entity and season sets are deduplicated; bounded lists evict
// oldest-first once at capacity.
type Context struct {
	Entities             map[EntityKind][]string `json:"entities"`
	Seasons              []int                   `json:"seasons"`
	ActiveTopics         []string                `json:"active_topics"`
	RecentQueries        []string                `json:"recent_queries"`
	LastCapability       string                  `json:"last_capability,omitempty"`
	PendingClarification *PendingClarification   `json:"pending_clarification,omitempty"`
}

// PendingClarification records that the previous assistant turn asked the
// user to disambiguate something, together with the query that prompted it.
type PendingClarification struct {
	OriginalQuery string    `json:"original_query"`
	Question      string    `json:"question"`
	AskedAt       time.Time `json:"asked_at"`
}

// RelevantContext is the memory store's view prepared for routing a new query.
type RelevantContext struct {
	RecentMessages       []Message             `json:"recent_messages"`
	RelevantMessages     []Message             `json:"relevant_messages"`
	Context              *Context              `json:"context"`
	PendingClarification *PendingClarification `json:"pending_clarification,omitempty"`
}
