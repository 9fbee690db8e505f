// Package responder provides the generative responder client: a black-box
// text-completion capability consumed by the query engine.
package responder

import (
	"context"
	"fmt"
)

// Message is one prompt message sent to the responder.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the responder operations. Complete must be idempotent-safe
// to retry: the engine may call it twice in one turn (primary answer, then
// synthesis across capability outputs).
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Error is a typed responder failure the engine can catch and degrade on.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("responder error [%s]: %s", e.Code, e.Message)
}

// Ensure implementations satisfy the interface.
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
