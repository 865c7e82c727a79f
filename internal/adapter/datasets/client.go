// Package datasets fetches the externally published CSV datasets (orders,
// monthly active users) over HTTP. Fetches go through a circuit breaker, and
// callers fall back to the bundled samples when the remote path fails.
package datasets

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/infrastructure/circuitbreaker"
	"github.com/dtc-labs/orderlens/internal/observability/telemetry"
	"github.com/dtc-labs/orderlens/pkg/config"
)

const maxBodyBytes = 32 << 20

type Client struct {
	http *circuitbreaker.HTTPClient
	cfg  config.DatasetsConfig
	log  *zap.Logger
}

func NewClient(cfg config.DatasetsConfig, cb config.CircuitBreakerConfig, log *zap.Logger) *Client {
	settings := circuitbreaker.DefaultHTTPClientSettings("datasets")
	if cfg.FetchTimeout > 0 {
		settings.Timeout = cfg.FetchTimeout
	}
	if cb.MaxRequests > 0 {
		settings.MaxRequests = cb.MaxRequests
	}
	if cb.Interval > 0 {
		settings.Interval = cb.Interval
	}
	if cb.Timeout > 0 {
		settings.BreakerTimeout = cb.Timeout
	}
	if cb.FailureThreshold > 0 {
		settings.FailureThreshold = cb.FailureThreshold
	}
	if cb.SuccessThreshold > 0 {
		settings.SuccessThreshold = cb.SuccessThreshold
	}
	return &Client{
		http: circuitbreaker.NewHTTPClientWithSettings(settings, log),
		cfg:  cfg,
		log:  log,
	}
}

// BreakerStatus reports the shared fetch breaker, surfaced through the
// readiness endpoint.
func (c *Client) BreakerStatus() circuitbreaker.BreakerStatus {
	return c.http.BreakerStatus()
}

// rawGithubURL rewrites a github.com blob link to its raw content form so
// operators can paste the browser URL into configuration.
func rawGithubURL(url string) string {
	if strings.Contains(url, "github.com/") && strings.Contains(url, "/blob/") {
		url = strings.Replace(url, "https://github.com/", "https://raw.githubusercontent.com/", 1)
		url = strings.Replace(url, "/blob/", "/", 1)
	}
	return url
}

func (c *Client) fetch(ctx context.Context, dataset, url string) ([]byte, error) {
	if url == "" {
		telemetry.DatasetFetches.WithLabelValues(dataset, "unconfigured").Inc()
		return nil, fmt.Errorf("no url configured for %s dataset", dataset)
	}

	resp, err := c.http.Get(ctx, rawGithubURL(url))
	if err != nil {
		telemetry.DatasetFetches.WithLabelValues(dataset, "error").Inc()
		return nil, fmt.Errorf("fetch %s dataset: %w", dataset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		telemetry.DatasetFetches.WithLabelValues(dataset, "error").Inc()
		return nil, fmt.Errorf("fetch %s dataset: HTTP %d", dataset, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		telemetry.DatasetFetches.WithLabelValues(dataset, "error").Inc()
		return nil, fmt.Errorf("read %s dataset: %w", dataset, err)
	}
	telemetry.DatasetFetches.WithLabelValues(dataset, "ok").Inc()
	return body, nil
}

// FetchOrdersCSV returns the raw configured orders dataset.
func (c *Client) FetchOrdersCSV(ctx context.Context) ([]byte, error) {
	return c.fetch(ctx, "orders", c.cfg.OrdersURL)
}

// FetchActiveUsers returns the parsed monthly active-users dataset, or the
// bundled sample rows when the remote path yields nothing usable.
func (c *Client) FetchActiveUsers(ctx context.Context) ([]domain.ActiveUsersRow, error) {
	body, err := c.fetch(ctx, "active_users", c.cfg.ActiveUsersURL)
	if err != nil {
		c.log.Warn("active users fetch failed, serving fallback", zap.Error(err))
		return FallbackActiveUsers(), nil
	}
	rows, err := ParseActiveUsers(body)
	if err != nil || len(rows) == 0 {
		c.log.Warn("active users parse failed, serving fallback", zap.Error(err))
		return FallbackActiveUsers(), nil
	}
	return rows, nil
}

// ParseActiveUsers reads the active-users CSV: rows need a month of at least
// YYYY-MM precision and a positive total to count.
func ParseActiveUsers(data []byte) ([]domain.ActiveUsersRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read active users csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	monthIdx, ok := col["month"]
	if !ok {
		return nil, fmt.Errorf("active users csv: missing month column")
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]domain.ActiveUsersRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if monthIdx >= len(record) {
			continue
		}
		month := strings.TrimSpace(record[monthIdx])
		if i := strings.IndexByte(month, ' '); i > 0 {
			month = month[:i]
		}
		if len(month) < 7 {
			continue
		}
		row := domain.ActiveUsersRow{
			Month:             month,
			ActiveSubscribers: atoi(field(record, "active_subscribers")),
			ActiveOnetime:     atoi(field(record, "active_onetime")),
			ActiveTotal:       atoi(field(record, "active_total")),
			IsFutureVsToday:   atoi(field(record, "is_future_vs_today")),
		}
		if row.ActiveTotal <= 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func atoi(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}
