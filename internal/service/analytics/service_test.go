package analytics

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/pkg/config"
)

const sampleCSV = `Order_id,Order Date,Status Order,Price,Customer,Category,SKUs,Notes
1001,05/01/2024,Delivered,450,cust-a,POM HL,Ultimate Revival,Subscribe 2 months
1002,20/01/2024,Delivered,120,cust-b,OTC SK,Serum,
1003,10/02/2024,Delivered,450,cust-a,POM HL,Ultimate Revival,Subscribe 2 months
1004,11/02/2024,Cancelled,450,cust-c,POM HL,Ultimate Revival,
`

func fixedClock(day string) func() time.Time {
	t, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newTestService(t *testing.T, day string) *Service {
	t.Helper()
	cfg := config.Default()
	return NewService(cfg, zap.NewNop(), fixedClock(day))
}

func TestComputeResultEndToEnd(t *testing.T) {
	svc := newTestService(t, "2024-06-15")
	orders, err := svc.ParseOrders([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("ParseOrders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("orders = %d, want 3 (cancelled row dropped)", len(orders))
	}

	result := svc.ComputeResult(orders)
	if result.AsOfMonth != "2024-02" {
		t.Fatalf("asOfMonth = %q, want max data month 2024-02", result.AsOfMonth)
	}
	if len(result.Churn.Months) == 0 || result.Churn.Months[0] != "2024-01" {
		t.Fatalf("months = %v", result.Churn.Months)
	}
	if len(result.Retention) == 0 || len(result.Ltv) == 0 {
		t.Fatal("expected retention and ltv rows")
	}
	for _, row := range result.Waterfall {
		if row.EndActive != row.StartActive+row.NewActive+row.Reactivated-row.Churned {
			t.Fatalf("waterfall identity violated: %+v", row)
		}
	}
}

func TestAsOfClampedToLastFullMonth(t *testing.T) {
	// Data reaches February 2024 but "today" is 2024-02-15, so the last full
	// month is January and the snapshot clamps back.
	svc := newTestService(t, "2024-02-15")
	orders, err := svc.ParseOrders([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("ParseOrders: %v", err)
	}
	if got := svc.AsOfMonth(orders); got != "2024-01" {
		t.Fatalf("asOfMonth = %q, want 2024-01", got)
	}
}

func TestAsOfOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Analytics.AsOfMonth = "2024-01"
	svc := NewService(cfg, zap.NewNop(), fixedClock("2024-06-15"))
	orders, err := svc.ParseOrders([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("ParseOrders: %v", err)
	}
	if got := svc.AsOfMonth(orders); got != "2024-01" {
		t.Fatalf("asOfMonth = %q, want override 2024-01", got)
	}
}

func TestComputeResultEmptyInput(t *testing.T) {
	svc := newTestService(t, "2024-06-15")
	result := svc.ComputeResult(nil)
	if result.AsOfMonth != EmptyAsOfMonth {
		t.Fatalf("asOfMonth = %q, want sentinel", result.AsOfMonth)
	}
	if result.Retention == nil || result.Ltv == nil || result.Survival == nil || result.Waterfall == nil {
		t.Fatal("empty result tables must marshal as [] not null")
	}
}

func TestComputeOrdersIncludesChurn(t *testing.T) {
	svc := newTestService(t, "2024-06-15")
	orders, err := svc.ParseOrders([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("ParseOrders: %v", err)
	}
	out := svc.ComputeOrders(orders)
	if len(out.MomOrders) != 2 {
		t.Fatalf("mom rows = %d, want 2", len(out.MomOrders))
	}
	if len(out.Churn.MonthlyActive) == 0 {
		t.Fatal("expected monthly active rows")
	}
	if len(out.QA.HeadlineVsVerticals) != 2 {
		t.Fatalf("qa reconciliation rows = %d, want 2", len(out.QA.HeadlineVsVerticals))
	}
}
