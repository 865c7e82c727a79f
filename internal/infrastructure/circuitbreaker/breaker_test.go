package circuitbreaker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func failingCall(ctx context.Context) (interface{}, error) {
	return nil, errors.New("boom")
}

func okCall(ctx context.Context) (interface{}, error) {
	return "ok", nil
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 2}, zap.NewNop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cb.ExecuteCtx(ctx, failingCall); err == nil {
			t.Fatal("expected call error")
		}
	}

	if got := cb.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}
	if _, err := cb.ExecuteCtx(ctx, okCall); !IsCircuitOpen(err) {
		t.Fatalf("err = %v, want circuit open", err)
	}
}

func TestBreakerClosesAfterHalfOpenSuccesses(t *testing.T) {
	cb := New(Settings{
		Name:             "test",
		FailureThreshold: 1,
		SuccessThreshold: 1,
		MaxRequests:      1,
		Timeout:          5 * time.Millisecond,
	}, zap.NewNop())

	ctx := context.Background()
	if _, err := cb.ExecuteCtx(ctx, failingCall); err == nil {
		t.Fatal("expected call error")
	}
	if got := cb.State(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := cb.ExecuteCtx(ctx, okCall); err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	if got := cb.State(); got != StateClosed {
		t.Fatalf("state = %v, want closed after probe success", got)
	}
}

func TestBreakerStatusSnapshot(t *testing.T) {
	cb := New(Settings{Name: "datasets", FailureThreshold: 3}, zap.NewNop())

	if _, err := cb.ExecuteCtx(context.Background(), failingCall); err == nil {
		t.Fatal("expected call error")
	}

	status := cb.Status()
	if status.Name != "datasets" {
		t.Fatalf("name = %q", status.Name)
	}
	if status.State != "closed" {
		t.Fatalf("state = %q, want closed below threshold", status.State)
	}
	if status.Counts.TotalFailures != 1 {
		t.Fatalf("failures = %d, want 1", status.Counts.TotalFailures)
	}
}

func TestHTTPClientCountsServerErrorsAsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	settings := DefaultHTTPClientSettings("test")
	settings.FailureThreshold = 1
	client := NewHTTPClientWithSettings(settings, zap.NewNop())

	ctx := context.Background()
	if _, err := client.Get(ctx, server.URL); err == nil {
		t.Fatal("expected 5xx to surface as error")
	}
	if _, err := client.Get(ctx, server.URL); !IsCircuitOpen(err) {
		t.Fatalf("err = %v, want circuit open after threshold", err)
	}

	status := client.BreakerStatus()
	if status.State != "open" {
		t.Fatalf("state = %q, want open", status.State)
	}
}
