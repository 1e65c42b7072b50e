package game

import (
	"fmt"

	"github.com/robalobadob/wordle/apps/go-engine/internal/words"
)

// MaxAttempts bounds the attempts a client may request.
const MaxAttempts = 12

// Setup describes a game requested by a client (HTTP, MCP, terminal).
type Setup struct {
	Answer   string `json:"answer,omitempty"`   // fixed solution, mostly for testing
	Attempts int    `json:"attempts,omitempty"` // 0 means the factory default
	Daily    bool   `json:"daily,omitempty"`    // use the word of the day
}

// Factory creates games for clients.
type Factory func(Setup) (*Game, error)

// FactoryConfig holds the capabilities shared by every game a Factory creates.
type FactoryConfig struct {
	Attempts int
	Lookup   words.Lookup
	Random   words.Supplier
	Daily    words.Supplier
	Feedback FeedbackRule
}

// NewFactory returns a Factory bound to fc.
func NewFactory(fc FactoryConfig) Factory {
	return func(s Setup) (*Game, error) {
		attempts := fc.Attempts
		if attempts == 0 {
			attempts = DefaultAttempts
		}
		if s.Attempts != 0 {
			attempts = s.Attempts
		}
		if attempts > MaxAttempts {
			return nil, fmt.Errorf("%w: at most %d, got %d", ErrInvalidAttempts, MaxAttempts, attempts)
		}

		opts := []GridOption{
			WithAttempts(attempts),
			WithDictionary(fc.Lookup),
			WithFeedback(fc.Feedback),
		}
		switch {
		case s.Answer != "":
			opts = append(opts, WithSolution(s.Answer))
		case s.Daily && fc.Daily != nil:
			opts = append(opts, WithSupplier(fc.Daily))
		default:
			opts = append(opts, WithSupplier(fc.Random))
		}
		return NewDefault(opts...)
	}
}
