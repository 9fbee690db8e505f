package memory

import (
	"strings"
	"time"

	"github.com/pitwall/paddock/internal/domain"
)

// Fixed phrase patterns marking an assistant turn as a clarifying question.
var clarifyingPhrases = []string{
	"which year",
	"which season",
	"what year",
	"what season",
	"are you referring to",
	"could you clarify",
	"can you specify",
	"which driver do you mean",
	"which team do you mean",
}

const recentMessageWindow = 5

// updateContext derives context from one appended message. Entity and
// season sets only grow (dedup on insert); bounded lists keep the most
// recent entries first. Recomputing over the same message list yields the
// same sets, so derivation stays idempotent.
func (s *Store) updateContext(sess *domain.Session, msg *domain.Message) {
	ctx := sess.Context

	for kind, ids := range s.extractor.ExtractEntities(msg.Content) {
		for _, id := range ids {
			ctx.Entities[kind] = appendUnique(ctx.Entities[kind], id)
			ctx.ActiveTopics = pushFront(ctx.ActiveTopics, id, s.caps.MaxActiveTopics)
		}
	}
	for _, season := range s.extractor.ExtractSeasons(msg.Content) {
		ctx.Seasons = appendUniqueInt(ctx.Seasons, season)
	}

	switch msg.Role {
	case domain.RoleUser:
		ctx.RecentQueries = pushFront(ctx.RecentQueries, msg.Content, s.caps.MaxRecentQueries)
		if ctx.PendingClarification != nil && s.resolvesClarification(msg.Content) {
			ctx.PendingClarification = nil
		}
	case domain.RoleAssistant:
		if msg.Metadata.Capability != "" {
			ctx.LastCapability = msg.Metadata.Capability
		}
		if isClarifyingQuestion(msg.Content) {
			ctx.PendingClarification = &domain.PendingClarification{
				OriginalQuery: lastUserQuery(sess),
				Question:      msg.Content,
				AskedAt:       time.Now(),
			}
		}
	}
}

// GetRelevantContext prepares the memory view for routing a new query:
// the recent message window, messages overlapping the session's tracked
// entities/topics or the query's own tokens, the externalized context, and
// the pending clarification if the current query resolves it.
func (s *Store) GetRelevantContext(sessionID, query string) *domain.RelevantContext {
	e := s.entry(sessionID, false)
	if e == nil {
		return &domain.RelevantContext{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session
	out := &domain.RelevantContext{Context: copyContext(sess.Context)}

	msgs := sess.Messages
	start := len(msgs) - recentMessageWindow
	if start < 0 {
		start = 0
	}
	out.RecentMessages = append([]domain.Message(nil), msgs[start:]...)
	out.RelevantMessages = s.filterRelevant(sess, query)

	// A clarification is surfaced only when the previous assistant turn
	// asked one and this query supplies a recognizable answer.
	if pc := sess.Context.PendingClarification; pc != nil {
		if lastAssistantAskedClarification(sess) && s.resolvesClarification(query) {
			resolved := *pc
			out.PendingClarification = &resolved
		}
	}
	return out
}

func (s *Store) filterRelevant(sess *domain.Session, query string) []domain.Message {
	queryTokens := tokenize(query)

	tracked := make(map[string]bool)
	for _, ids := range sess.Context.Entities {
		for _, id := range ids {
			tracked[id] = true
		}
	}
	for _, topic := range sess.Context.ActiveTopics {
		tracked[strings.ToLower(topic)] = true
	}

	var relevant []domain.Message
	for _, msg := range sess.Messages {
		lower := strings.ToLower(msg.Content)
		matched := false
		for t := range tracked {
			if strings.Contains(lower, strings.ReplaceAll(t, "_", " ")) || strings.Contains(lower, t) {
				matched = true
				break
			}
		}
		if !matched {
			for _, tok := range queryTokens {
				if strings.Contains(lower, tok) {
					matched = true
					break
				}
			}
		}
		if matched {
			relevant = append(relevant, msg)
		}
	}
	return relevant
}

// resolvesClarification reports whether text supplies a disambiguation
// answer: an explicit season or a relative-time phrase.
func (s *Store) resolvesClarification(text string) bool {
	if len(s.extractor.ExtractSeasons(text)) > 0 {
		return true
	}
	return s.extractor.IsRelativeTimeReference(text)
}

func isClarifyingQuestion(content string) bool {
	lower := strings.ToLower(content)
	for _, p := range clarifyingPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func lastAssistantAskedClarification(sess *domain.Session) bool {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Role == domain.RoleAssistant {
			return isClarifyingQuestion(sess.Messages[i].Content)
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func appendUniqueInt(list []int, v int) []int {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// pushFront moves v to the head of the list, evicting the oldest entry
// once the cap is exceeded.
func pushFront(list []string, v string, cap int) []string {
	out := []string{v}
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	if cap > 0 && len(out) > cap {
		out = out[:cap]
	}
	return out
}
