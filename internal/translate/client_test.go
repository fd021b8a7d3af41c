package translate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// stubEngine returns queued outcomes in order, then repeats the last one.
type stubEngine struct {
	outputs []string
	errs    []error
	calls   int
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Complete(ctx context.Context, system, user string) (string, error) {
	i := s.calls
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	s.calls++
	return s.outputs[i], s.errs[i]
}

func newTestClient(e Engine, attempts int) *Client {
	c := NewClient(e, attempts)
	c.baseDelay = time.Millisecond
	return c
}

func TestClient_SuccessFirstTry(t *testing.T) {
	stub := &stubEngine{outputs: []string{"bonjour"}, errs: []error{nil}}
	c := newTestClient(stub, 3)

	out, err := c.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "bonjour" {
		t.Errorf("output = %q", out)
	}
	if stub.calls != 1 {
		t.Errorf("engine called %d times, want 1", stub.calls)
	}
}

func TestClient_RetriesTransientThenSucceeds(t *testing.T) {
	transient := &APIError{Engine: "stub", Status: 429, Body: "rate limited"}
	stub := &stubEngine{
		outputs: []string{"", "", "ok"},
		errs:    []error{transient, transient, nil},
	}
	c := newTestClient(stub, 3)

	out, err := c.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != "ok" {
		t.Errorf("output = %q", out)
	}
	if stub.calls != 3 {
		t.Errorf("engine called %d times, want 3", stub.calls)
	}
}

func TestClient_BudgetExhausted(t *testing.T) {
	transient := &APIError{Engine: "stub", Status: 503, Body: "unavailable"}
	stub := &stubEngine{outputs: []string{""}, errs: []error{transient}}
	c := newTestClient(stub, 3)

	_, err := c.Complete(context.Background(), "sys", "user")
	var exhausted *ErrBudgetExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ErrBudgetExhausted, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, transient) {
		t.Errorf("Unwrap = %v, want last API error", exhausted.Unwrap())
	}
	if stub.calls != 3 {
		t.Errorf("engine called %d times, want 3", stub.calls)
	}
}

func TestClient_NonTransientFailsFast(t *testing.T) {
	bad := &APIError{Engine: "stub", Status: 401, Body: "unauthorized"}
	stub := &stubEngine{outputs: []string{""}, errs: []error{bad}}
	c := newTestClient(stub, 3)

	_, err := c.Complete(context.Background(), "sys", "user")
	if !errors.Is(err, bad) {
		t.Fatalf("expected the API error verbatim, got %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("engine called %d times, want 1 (no retries on 4xx)", stub.calls)
	}
}

func TestClient_CancelDuringBackoff(t *testing.T) {
	transient := &APIError{Engine: "stub", Status: 500, Body: "boom"}
	stub := &stubEngine{outputs: []string{""}, errs: []error{transient}}
	c := NewClient(stub, 3)
	c.baseDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Complete(ctx, "sys", "user")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &APIError{Status: 429}, true},
		{"server error", &APIError{Status: 502}, true},
		{"unauthorized", &APIError{Status: 401}, false},
		{"bad request", &APIError{Status: 400}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"plain error", fmt.Errorf("parse failure"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
