package llm

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// EnvParleyMode is the environment variable name for mode selection.
	EnvParleyMode = "PARLEY_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewClient creates a generation client based on the PARLEY_MODE environment
// variable. If PARLEY_MODE=MOCK, returns a MockClient; otherwise returns an
// HTTP client against an OpenAI-compatible endpoint.
func NewClient(baseURL, apiKey string, timeout, tokenDelay time.Duration) Client {
	if os.Getenv(EnvParleyMode) == ModeMock {
		log.Info().Msg("PARLEY_MODE=MOCK detected, using mock generation client")
		return NewMockClient(tokenDelay)
	}
	return NewHTTPClient(baseURL, apiKey, timeout)
}
