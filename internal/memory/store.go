// Package memory implements the per-session conversation store: message
// history, derived context, and pending-clarification tracking. All state
// is in-process; a durable store can be layered behind the same interface.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pitwall/paddock/internal/domain"
	"github.com/pitwall/paddock/internal/features"
)

// Caps bound the per-session retention lists.
type Caps struct {
	MaxMessages      int
	MaxActiveTopics  int
	MaxRecentQueries int
}

// DefaultCaps returns the reference retention caps.
func DefaultCaps() Caps {
	return Caps{MaxMessages: 50, MaxActiveTopics: 10, MaxRecentQueries: 10}
}

// Store is the process-wide session table. The table itself is guarded by
// one mutex; each session carries its own lock so appends within a session
// serialize while distinct sessions proceed in parallel.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	extractor *features.Extractor
	caps      Caps
}

type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// NewStore creates an empty store.
func NewStore(extractor *features.Extractor, caps Caps) *Store {
	if caps.MaxMessages <= 0 {
		caps = DefaultCaps()
	}
	return &Store{
		sessions:  make(map[string]*sessionEntry),
		extractor: extractor,
		caps:      caps,
	}
}

func (s *Store) entry(sessionID string, create bool) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok && create {
		e = &sessionEntry{session: &domain.Session{
			SessionID: sessionID,
			CreatedAt: time.Now(),
			Context: &domain.Context{
				Entities: make(map[domain.EntityKind][]string),
			},
		}}
		s.sessions[sessionID] = e
	}
	return e
}

// AppendMessage appends one turn, initializing the session on first use.
// Context is updated from the message content; the message list is
// truncated oldest-first once past the retention cap. Never fails for a
// well-formed session id.
func (s *Store) AppendMessage(sessionID string, role domain.Role, content string, metadata domain.MessageMetadata) *domain.Message {
	e := s.entry(sessionID, true)
	e.mu.Lock()
	defer e.mu.Unlock()

	msg := domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}
	sess := e.session
	sess.Messages = append(sess.Messages, msg)
	sess.LastActivity = msg.CreatedAt

	s.updateContext(sess, &msg)

	if len(sess.Messages) > s.caps.MaxMessages {
		over := len(sess.Messages) - s.caps.MaxMessages
		sess.Messages = append([]domain.Message(nil), sess.Messages[over:]...)
	}
	return &msg
}

// SetUserID records the user owning the session, if known.
func (s *Store) SetUserID(sessionID, userID string) {
	if userID == "" {
		return
	}
	e := s.entry(sessionID, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.UserID = userID
}

// GetHistory returns a copy of the session limited to the most recent
// `limit` messages (all of them when limit <= 0), or nil if unknown.
func (s *Store) GetHistory(sessionID string, limit int) *domain.Session {
	e := s.entry(sessionID, false)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session
	msgs := sess.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := *sess
	out.Messages = append([]domain.Message(nil), msgs...)
	out.Context = copyContext(sess.Context)
	return &out
}

// DeleteSession removes a session. Returns false when unknown.
func (s *Store) DeleteSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// CleanupExpired evicts sessions idle longer than maxAge and returns how
// many were removed.
func (s *Store) CleanupExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.session.LastActivity.Before(cutoff) && !e.session.LastActivity.IsZero()
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// SessionCount reports how many sessions are live.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func copyContext(ctx *domain.Context) *domain.Context {
	if ctx == nil {
		return nil
	}
	out := *ctx
	out.Entities = make(map[domain.EntityKind][]string, len(ctx.Entities))
	for k, v := range ctx.Entities {
		out.Entities[k] = append([]string(nil), v...)
	}
	out.Seasons = append([]int(nil), ctx.Seasons...)
	out.ActiveTopics = append([]string(nil), ctx.ActiveTopics...)
	out.RecentQueries = append([]string(nil), ctx.RecentQueries...)
	if ctx.PendingClarification != nil {
		pc := *ctx.PendingClarification
		out.PendingClarification = &pc
	}
	return &out
}

// lastUserQuery returns the content of the most recent user message, or "".
func lastUserQuery(sess *domain.Session) string {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == domain.RoleUser {
			return sess.Messages[i].Content
		}
	}
	return ""
}

// tokenize lowercases and splits content into significant tokens.
func tokenize(s string) []string {
	var tokens []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,?!\"'")
		if len(w) >= 4 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}
