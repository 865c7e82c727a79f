package orders

import (
	"math"
	"testing"
	"time"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/pkg/config"
)

func testOrder(key, uid, day string, verticals ...string) domain.Order {
	ts, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		panic(err)
	}
	return domain.Order{
		Key:        key,
		Timestamp:  ts,
		MonthKey:   ts.Format("2006-01"),
		CustomerID: uid,
		Verticals:  verticals,
	}
}

func TestMomHeadlineDiffAndPct(t *testing.T) {
	svc := NewService(config.Default().Catalog, nil)
	orders := []domain.Order{
		testOrder("o1", "a", "2024-01-05", "pom hl"),
		testOrder("o2", "b", "2024-01-20", "pom hl"),
		testOrder("o3", "c", "2024-02-10", "pom hl"),
		testOrder("o4", "d", "2024-02-11", "pom hl"),
		testOrder("o5", "e", "2024-02-12", "pom hl"),
	}
	mom, _, _ := svc.Mom(orders)
	if len(mom) != 2 {
		t.Fatalf("rows = %d, want 2", len(mom))
	}

	jan := mom[0]
	if jan.MomAbs != nil || jan.MomPct != nil {
		t.Fatalf("first month must have nil MoM fields, got %+v", jan)
	}
	if math.Abs(jan.Ado-2.0/31) > 1e-9 {
		t.Fatalf("jan ado = %v", jan.Ado)
	}

	feb := mom[1]
	if feb.MomAbs == nil || *feb.MomAbs != 1 {
		t.Fatalf("feb MomAbs = %v, want 1", feb.MomAbs)
	}
	if feb.MomPct == nil || math.Abs(*feb.MomPct-0.5) > 1e-9 {
		t.Fatalf("feb MomPct = %v, want 0.5", feb.MomPct)
	}
}

func TestMomPartialMonthPacing(t *testing.T) {
	svc := NewService(config.Default().Catalog, nil)
	orders := []domain.Order{
		testOrder("o1", "a", "2024-01-05", "pom hl"),
		testOrder("o2", "b", "2024-02-03", "pom hl"),
		testOrder("o3", "c", "2024-02-10", "pom hl"),
	}
	mom, _, _ := svc.Mom(orders)

	jan := mom[0]
	if jan.IsPartial != 0 || jan.AdoPacing != nil {
		t.Fatalf("jan = %+v, want complete month without pacing", jan)
	}

	// February is the snapshot month: pacing denominator is the largest
	// day-of-month observed (10), not the month length.
	feb := mom[1]
	if feb.IsPartial != 1 {
		t.Fatalf("feb IsPartial = %d, want 1", feb.IsPartial)
	}
	if feb.AdoPacing == nil || math.Abs(*feb.AdoPacing-0.2) > 1e-9 {
		t.Fatalf("feb AdoPacing = %v, want 0.2", feb.AdoPacing)
	}
}

func TestMomByVerticalZeroFilled(t *testing.T) {
	catalog := config.Default().Catalog
	svc := NewService(catalog, nil)
	orders := []domain.Order{
		testOrder("o1", "a", "2024-01-05", "pom hl"),
	}
	_, byVertical, _ := svc.Mom(orders)

	if len(byVertical) != len(catalog.Verticals) {
		t.Fatalf("rows = %d, want one per configured vertical", len(byVertical))
	}
	found := map[string]int{}
	for _, row := range byVertical {
		found[row.Vertical] = row.Orders
	}
	if found["pom hl"] != 1 {
		t.Fatalf("pom hl orders = %d, want 1", found["pom hl"])
	}
	if found["otc sk"] != 0 {
		t.Fatalf("otc sk orders = %d, want zero-filled 0", found["otc sk"])
	}
}

func TestQaCountsAndHeadlineReconciliation(t *testing.T) {
	svc := NewService(config.Default().Catalog, nil)
	orders := []domain.Order{
		testOrder("o1", "a", "2024-01-05", "pom hl", "pom bg"), // multi
		testOrder("o2", "b", "2024-01-06"),                     // unmapped
		testOrder("o3", "c", "2024-01-07", "pom hl"),
	}
	_, _, qa := svc.Mom(orders)

	if math.Abs(qa.NoVerticalPct-100.0/3) > 1e-9 {
		t.Fatalf("NoVerticalPct = %v", qa.NoVerticalPct)
	}
	if math.Abs(qa.MultiVerticalPct-100.0/3) > 1e-9 {
		t.Fatalf("MultiVerticalPct = %v", qa.MultiVerticalPct)
	}
	if qa.UnknownCount != 1 {
		t.Fatalf("UnknownCount = %d, want 1", qa.UnknownCount)
	}

	if len(qa.HeadlineVsVerticals) != 1 {
		t.Fatalf("reconciliation rows = %d, want 1", len(qa.HeadlineVsVerticals))
	}
	row := qa.HeadlineVsVerticals[0]
	// Headline counts 3 orders; the vertical explosion yields 3 rows too
	// (2 from the multi-vertical order, 1 mapped single, 0 from the
	// unmapped order), so delta is 0 here.
	if row.Headline != 3 || row.VerticalSum != 3 || row.Delta != 0 {
		t.Fatalf("reconciliation = %+v", row)
	}
}

func TestMomEmptyInput(t *testing.T) {
	svc := NewService(config.Default().Catalog, nil)
	mom, byVertical, qa := svc.Mom(nil)
	if len(mom) != 0 || len(byVertical) != 0 {
		t.Fatalf("expected empty tables")
	}
	if mom == nil || byVertical == nil || qa.HeadlineVsVerticals == nil {
		t.Fatal("empty tables must marshal as [] not null")
	}
}
