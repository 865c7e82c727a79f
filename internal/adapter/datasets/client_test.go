package datasets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/pkg/config"
)

func TestRawGithubURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"https://github.com/org/repo/blob/main/data/orders.csv",
			"https://raw.githubusercontent.com/org/repo/main/data/orders.csv",
		},
		{"https://example.com/data.csv", "https://example.com/data.csv"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := rawGithubURL(tc.in); got != tc.want {
			t.Errorf("rawGithubURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseActiveUsers(t *testing.T) {
	csv := `month,active_subscribers,active_onetime,active_total,is_future_vs_today
2024-10-01 00:00:00,3,1,4,0
2024-11-01,5,2,6,0
bad,1,1,2,0
2024-12-01,0,0,0,0
`
	rows, err := ParseActiveUsers([]byte(csv))
	if err != nil {
		t.Fatalf("ParseActiveUsers: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (short month and zero total skipped)", len(rows))
	}
	if rows[0].Month != "2024-10-01" {
		t.Fatalf("month = %q, want time part stripped", rows[0].Month)
	}
	if rows[1].ActiveTotal != 6 || rows[1].ActiveSubscribers != 5 {
		t.Fatalf("row = %+v", rows[1])
	}
}

func TestFetchActiveUsersRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("month,active_subscribers,active_onetime,active_total\n2025-01-01,7,3,10\n"))
	}))
	defer srv.Close()

	client := NewClient(config.DatasetsConfig{
		ActiveUsersURL: srv.URL,
		FetchTimeout:   time.Second,
	}, config.CircuitBreakerConfig{}, zap.NewNop())

	rows, err := client.FetchActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("FetchActiveUsers: %v", err)
	}
	if len(rows) != 1 || rows[0].ActiveTotal != 10 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestFetchActiveUsersFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(config.DatasetsConfig{
		ActiveUsersURL: srv.URL,
		FetchTimeout:   time.Second,
	}, config.CircuitBreakerConfig{}, zap.NewNop())

	rows, err := client.FetchActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("FetchActiveUsers: %v", err)
	}
	if len(rows) != len(FallbackActiveUsers()) {
		t.Fatalf("rows = %d, want fallback sample", len(rows))
	}
}

func TestFetchOrdersUnconfigured(t *testing.T) {
	client := NewClient(config.DatasetsConfig{}, config.CircuitBreakerConfig{}, zap.NewNop())
	if _, err := client.FetchOrdersCSV(context.Background()); err == nil {
		t.Fatal("expected error for unconfigured url")
	}
}
