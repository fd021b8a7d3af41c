package translate

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 2 * time.Second
)

// ErrBudgetExhausted wraps the last failure after the retry budget is spent
type ErrBudgetExhausted struct {
	Attempts int
	Last     error
}

func (e *ErrBudgetExhausted) Error() string {
	return fmt.Sprintf("retry budget exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ErrBudgetExhausted) Unwrap() error { return e.Last }

// Client wraps an Engine with a bounded exponential-backoff retry policy.
// Exhausting the budget surfaces a typed failure; the client never
// substitutes source text for a failed translation.
type Client struct {
	engine    Engine
	attempts  int
	baseDelay time.Duration
}

func NewClient(engine Engine, attempts int) *Client {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &Client{
		engine:    engine,
		attempts:  attempts,
		baseDelay: defaultBaseDelay,
	}
}

func (c *Client) Name() string { return c.engine.Name() }

// Complete calls the engine, retrying transient failures with exponential
// backoff plus jitter until the attempt budget runs out.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.attempts; attempt++ {
		out, err := c.engine.Complete(ctx, system, user)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return "", err
		}
		if attempt == c.attempts {
			break
		}

		jittered := delay + time.Duration(rand.Int63n(int64(delay/2)+1))
		log.Printf("[translate] %s attempt %d/%d failed (%v), retrying in %s",
			c.engine.Name(), attempt, c.attempts, err, jittered)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(jittered):
		}
		delay *= 2
	}

	return "", &ErrBudgetExhausted{Attempts: c.attempts, Last: lastErr}
}
