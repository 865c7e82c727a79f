// Package analytics orchestrates the full order-to-cohort pipeline: CSV
// normalization, coverage simulation, cohort retention/LTV and the
// churn/survival/waterfall tables, all recomputed from the complete order
// history on every call.
package analytics

import (
	"time"

	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/observability/telemetry"
	"github.com/dtc-labs/orderlens/internal/period"
	"github.com/dtc-labs/orderlens/internal/service/catalogue"
	"github.com/dtc-labs/orderlens/internal/service/churn"
	"github.com/dtc-labs/orderlens/internal/service/cohort"
	"github.com/dtc-labs/orderlens/internal/service/coverage"
	"github.com/dtc-labs/orderlens/internal/service/ingest"
	"github.com/dtc-labs/orderlens/internal/service/orders"
	"github.com/dtc-labs/orderlens/pkg/config"
)

// EmptyAsOfMonth is the sentinel as-of value for an empty order history.
const EmptyAsOfMonth = "—"

type Service struct {
	cfg        *config.Config
	normalizer *ingest.Normalizer
	simulator  *coverage.Simulator
	engine     *churn.Engine
	cohorts    *cohort.Aggregator
	orders     *orders.Service
	catalogue  *catalogue.Summarizer
	now        func() time.Time
	log        *zap.Logger
}

// NewService wires the pipeline stages. The clock is injected so snapshots
// and tests are deterministic.
func NewService(cfg *config.Config, log *zap.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		cfg:        cfg,
		normalizer: ingest.NewNormalizer(cfg.Catalog, log),
		simulator:  coverage.NewSimulator(cfg.Catalog, cfg.Analytics.OnetimeWindowDays),
		engine:     churn.NewEngine(cfg.Catalog, cfg.Analytics.MaxOffsetMonths),
		cohorts:    cohort.NewAggregator(cfg.Catalog, cfg.Analytics.MaxOffsetMonths),
		orders:     orders.NewService(cfg.Catalog, log),
		catalogue:  catalogue.NewSummarizer(cfg.Catalog, cfg.Costs),
		now:        now,
		log:        log,
	}
}

// ParseOrders normalizes a raw CSV byte buffer into canonical orders.
func (s *Service) ParseOrders(data []byte) ([]domain.Order, error) {
	return s.normalizer.ParseCSV(data)
}

// AsOfMonth is the snapshot month for a set of orders: the latest month in
// the data, clamped to the last full calendar month. A configured override
// wins, and an empty history yields the sentinel.
func (s *Service) AsOfMonth(orderList []domain.Order) string {
	if override := s.cfg.Analytics.AsOfMonth; override != "" {
		return override
	}
	if len(orderList) == 0 {
		return EmptyAsOfMonth
	}
	maxMonth := orderList[0].MonthKey
	for _, order := range orderList {
		if order.MonthKey > maxMonth {
			maxMonth = order.MonthKey
		}
	}
	lastFull := period.MonthKey(s.now().AddDate(0, -1, 0))
	if maxMonth < lastFull {
		return maxMonth
	}
	return lastFull
}

// ComputeResult runs the full pipeline: coverage simulation, churn tables,
// cohort retention/LTV, survival and waterfall.
func (s *Service) ComputeResult(orderList []domain.Order) domain.Result {
	start := time.Now()
	defer func() {
		telemetry.ComputeDuration.WithLabelValues("result").Observe(time.Since(start).Seconds())
	}()

	if len(orderList) == 0 {
		return domain.Result{
			AsOfMonth: EmptyAsOfMonth,
			Churn:     s.engine.Summary(&coverage.Sets{Months: []string{}}),
			Retention: []domain.RetentionRow{},
			Ltv:       []domain.LtvRow{},
			Survival:  []domain.SurvivalRow{},
			Waterfall: []domain.WaterfallRow{},
		}
	}

	asOf := s.AsOfMonth(orderList)
	sets := s.simulator.Expand(orderList, asOf)

	result := domain.Result{
		AsOfMonth: asOf,
		Churn:     s.engine.Summary(sets),
		Retention: s.cohorts.Retention(orderList, asOf),
		Ltv:       s.cohorts.Ltv(orderList, asOf),
		Survival:  s.engine.Survival(sets),
		Waterfall: s.engine.Waterfall(sets),
	}

	if s.log != nil {
		s.log.Info("analytics computed",
			zap.String("as_of_month", asOf),
			zap.Int("orders", len(orderList)),
			zap.Int("months", len(result.Churn.Months)),
			zap.Duration("took", time.Since(start)),
		)
	}
	return result
}

// ComputeOrders runs the MoM-focused pipeline consumed by the orders
// dashboard and the spreadsheet export.
func (s *Service) ComputeOrders(orderList []domain.Order) domain.OrdersResult {
	start := time.Now()
	defer func() {
		telemetry.ComputeDuration.WithLabelValues("orders").Observe(time.Since(start).Seconds())
	}()

	mom, byVertical, qa := s.orders.Mom(orderList)
	out := domain.OrdersResult{
		MomOrders:           mom,
		MomOrdersByVertical: byVertical,
		QA:                  qa,
	}
	if len(orderList) == 0 {
		out.Churn = s.engine.Summary(&coverage.Sets{Months: []string{}})
		return out
	}
	asOf := s.AsOfMonth(orderList)
	out.Churn = s.engine.Summary(s.simulator.Expand(orderList, asOf))
	return out
}

// Catalogue builds the per-SKU economics table.
func (s *Service) Catalogue(orderList []domain.Order) domain.CatalogueSummary {
	return s.catalogue.Summarize(orderList)
}
