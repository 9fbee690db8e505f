package service

import "github.com/pitwall/paddock/internal/domain"

// GetHistory returns the session record limited to the most recent
// `limit` messages, or nil if the session is unknown.
func (e *Engine) GetHistory(sessionID string, limit int) *domain.Session {
	return e.memory.GetHistory(sessionID, limit)
}

// DeleteSession removes a session and reports whether it existed.
func (e *Engine) DeleteSession(sessionID string) bool {
	return e.memory.DeleteSession(sessionID)
}
