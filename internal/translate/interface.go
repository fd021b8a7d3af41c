package translate

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Engine is a chat-completion capability used for translation and
// correction. Implementations wrap one vendor API; output is raw model
// text and is never guaranteed well formed.
type Engine interface {
	// Complete sends one system + user turn and returns the model's text
	Complete(ctx context.Context, system, user string) (string, error)
	// Name returns the engine name
	Name() string
}

// APIError is a non-2xx response from a vendor API
type APIError struct {
	Engine string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Engine, e.Status, e.Body)
}

// IsTransient reports whether an error is worth retrying: rate limits,
// server-side failures and network errors. Context cancellation and
// client-side errors are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == 429 || apiErr.Status >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
