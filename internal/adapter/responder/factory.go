package responder

import (
	"log"
	"os"
	"time"
)

const (
	// EnvPaddockMode is the environment variable name for mode selection.
	EnvPaddockMode = "PADDOCK_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewClient creates a responder client based on the PADDOCK_MODE environment
// variable. If PADDOCK_MODE=MOCK, returns a MockClient; otherwise returns a
// real HTTP client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) Client {
	if os.Getenv(EnvPaddockMode) == ModeMock {
		log.Println("PADDOCK_MODE=MOCK detected, using mock responder client")
		return NewMockClient()
	}
	return NewHTTPClient(baseURL, apiKey, model, timeout)
}
