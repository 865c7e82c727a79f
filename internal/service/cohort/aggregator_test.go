package cohort

import (
	"math"
	"testing"
	"time"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/pkg/config"
)

func order(key, uid, day, vertical string, price float64) domain.Order {
	ts, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		panic(err)
	}
	o := domain.Order{
		Key:        key,
		Timestamp:  ts,
		MonthKey:   ts.Format("2006-01"),
		Price:      price,
		CustomerID: uid,
	}
	if vertical != "" {
		o.Verticals = []string{vertical}
	}
	return o
}

func TestRetentionOverallRightCensored(t *testing.T) {
	agg := NewAggregator(config.Default().Catalog, 12)
	orders := []domain.Order{
		order("o1", "a", "2024-01-05", "pom hl", 50),
		order("o2", "b", "2024-01-20", "pom hl", 50),
		order("o3", "a", "2024-02-10", "pom hl", 50),
	}
	rows := agg.Retention(orders, "2024-03")

	var overall []domain.RetentionRow
	for _, row := range rows {
		if row.Dimension == domain.DimensionOverall {
			overall = append(overall, row)
		}
	}
	// 2024-01 cohort is observable at m=0,1,2 only.
	if len(overall) != 3 {
		t.Fatalf("overall rows = %d, want 3", len(overall))
	}
	if overall[0].M != 0 || overall[0].Retention != 1 {
		t.Fatalf("m=0 row = %+v, want full retention", overall[0])
	}
	if overall[1].M != 1 || math.Abs(overall[1].Retention-0.5) > 1e-9 {
		t.Fatalf("m=1 retention = %v, want 0.5", overall[1].Retention)
	}
	if overall[2].M != 2 || overall[2].Retention != 0 {
		t.Fatalf("m=2 retention = %v, want 0", overall[2].Retention)
	}
	if overall[0].CohortSize != 2 || overall[0].FirstValue != "ALL" {
		t.Fatalf("cohort row = %+v", overall[0])
	}
}

func TestRetentionSameCategoryStricterThanAny(t *testing.T) {
	agg := NewAggregator(config.Default().Catalog, 12)
	// a comes back in February but in a different category.
	orders := []domain.Order{
		order("o1", "a", "2024-01-05", "pom hl", 50),
		order("o2", "a", "2024-02-10", "pom bg", 50),
	}
	rows := agg.Retention(orders, "2024-02")

	got := map[domain.Metric]float64{}
	for _, row := range rows {
		if row.Dimension == domain.DimensionCategory && row.FirstValue == "pom hl" && row.M == 1 {
			got[row.Metric] = row.Retention
		}
	}
	if got[domain.MetricAny] != 1 {
		t.Fatalf("any retention = %v, want 1", got[domain.MetricAny])
	}
	if got[domain.MetricSame] != 0 {
		t.Fatalf("same retention = %v, want 0", got[domain.MetricSame])
	}
}

func TestCohortCategoryUsesPriorityOrder(t *testing.T) {
	catalog := config.Default().Catalog
	agg := NewAggregator(catalog, 12)
	priority := catalog.VerticalPriority
	if len(priority) < 2 {
		t.Skip("needs at least two prioritized verticals")
	}
	// First-month orders span two verticals; the higher-priority one wins
	// regardless of order timestamps.
	orders := []domain.Order{
		order("o1", "a", "2024-01-05", priority[1], 40),
		order("o2", "a", "2024-01-20", priority[0], 60),
	}
	rows := agg.Retention(orders, "2024-01")
	for _, row := range rows {
		if row.Dimension == domain.DimensionCategory && row.FirstValue != priority[0] {
			t.Fatalf("cohort category = %q, want %q", row.FirstValue, priority[0])
		}
	}
}

func TestLtvCumulativeAndRounded(t *testing.T) {
	agg := NewAggregator(config.Default().Catalog, 12)
	orders := []domain.Order{
		order("o1", "a", "2024-01-05", "pom hl", 100),
		order("o2", "b", "2024-01-20", "pom hl", 50),
		order("o3", "a", "2024-02-10", "pom hl", 25),
	}
	rows := agg.Ltv(orders, "2024-02")

	byOffset := map[int]float64{}
	for _, row := range rows {
		if row.Dimension == domain.DimensionOverall {
			byOffset[row.M] = row.LtvPerUser
			if row.CohortType != "purchase" || row.Measure != "revenue" {
				t.Fatalf("row labels = %+v", row)
			}
		}
	}
	if byOffset[0] != 75 {
		t.Fatalf("m=0 ltv = %v, want 75", byOffset[0])
	}
	// (100+50+25)/2 = 87.5, cumulative through m=1.
	if byOffset[1] != 87.5 {
		t.Fatalf("m=1 ltv = %v, want 87.5", byOffset[1])
	}
}

func TestLtvSameMetricSplitsMultiCategoryRevenue(t *testing.T) {
	agg := NewAggregator(config.Default().Catalog, 12)
	multi := domain.Order{
		Key:        "o1",
		Timestamp:  time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		MonthKey:   "2024-01",
		Price:      90,
		Verticals:  []string{"pom bg", "pom hl"},
		CustomerID: "a",
	}
	rows := agg.Ltv([]domain.Order{multi}, "2024-01")

	for _, row := range rows {
		if row.Dimension != domain.DimensionCategory || row.M != 0 {
			continue
		}
		switch row.Metric {
		case domain.MetricAny:
			if row.LtvPerUser != 90 {
				t.Errorf("any ltv = %v, want 90", row.LtvPerUser)
			}
		case domain.MetricSame:
			if row.LtvPerUser != 45 {
				t.Errorf("same ltv = %v, want 45 (even split)", row.LtvPerUser)
			}
		}
	}
}
