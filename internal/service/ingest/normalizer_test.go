package ingest

import (
	"testing"
	"time"

	"github.com/dtc-labs/orderlens/pkg/config"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(config.Default().Catalog, nil)
}

func TestParseCSVFuzzyHeadersAndStatusFilter(t *testing.T) {
	csv := `ORDER-ID,order  date,STATUS ORDER,price,Customer,category,skus
100,05/01/2024,Delivered,450.50,cust-a,POM HL,Ultimate Revival
101,06/01/2024,Refunded,450.50,cust-b,POM HL,Ultimate Revival
102,07/01/2024,delivered,120,cust-c,OTC SK,Serum
`
	orders, err := newTestNormalizer().ParseCSV([]byte(csv))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2 (refunded row dropped)", len(orders))
	}
	first := orders[0]
	if first.Key != "id|100" {
		t.Fatalf("key = %q, want id|100", first.Key)
	}
	if first.Price != 450.50 {
		t.Fatalf("price = %v", first.Price)
	}
	if len(first.Verticals) != 1 || first.Verticals[0] != "pom hl" {
		t.Fatalf("verticals = %v", first.Verticals)
	}
}

func TestFuzzyFallbackScansHeadersInColumnOrder(t *testing.T) {
	// Neither header matches a customer candidate exactly, so resolution
	// goes through the substring fallback; the earlier column must win on
	// every row and every run.
	csv := `Order_id,Order Date,Status Order,Price,Customer Phone,Customer Email
500,05/01/2024,Delivered,90,555-0100,alice@example.com
501,06/01/2024,Delivered,90,555-0100,alice@example.com
`
	n := newTestNormalizer()
	for i := 0; i < 50; i++ {
		orders, err := n.ParseCSV([]byte(csv))
		if err != nil {
			t.Fatalf("ParseCSV: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("orders = %d, want 2", len(orders))
		}
		for _, order := range orders {
			if order.CustomerID != "555-0100" {
				t.Fatalf("run %d: customer = %q, want the first matching column", i, order.CustomerID)
			}
		}
	}
}

func TestNormalizeDedupUnionsVerticals(t *testing.T) {
	rows := []map[string]string{
		{"Order_id": "200", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "450", "Customer": "cust-a", "Category": "POM HL"},
		{"Order_id": "200", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "450", "Customer": "cust-a", "SKUs": "Beard Growth Serum"},
	}
	orders := newTestNormalizer().NormalizeRows(rows)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1 after dedup", len(orders))
	}
	got := orders[0].Verticals
	if len(got) != 2 || got[0] != "pom bg" || got[1] != "pom hl" {
		t.Fatalf("verticals = %v, want union [pom bg pom hl]", got)
	}
}

func TestPlaceholderOrderIDSynthesizesKey(t *testing.T) {
	rows := []map[string]string{
		{"Order_id": "Stripe", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "90", "Customer": "cust-a", "Type": "OTC"},
		{"Order_id": "Stripe", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "90", "Customer": "cust-a", "Type": "OTC"},
		{"Order_id": "Stripe", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "120", "Customer": "cust-a", "Type": "OTC"},
	}
	orders := newTestNormalizer().NormalizeRows(rows)
	// Identical synthesized keys merge; the different price stays separate.
	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(orders))
	}
	if orders[0].Key == orders[1].Key {
		t.Fatalf("keys must differ, both %q", orders[0].Key)
	}
	for _, order := range orders {
		if order.Key[:4] != "syn|" {
			t.Fatalf("key = %q, want synthesized", order.Key)
		}
	}
}

func TestSynthesizedKeyFoldsCustomerCase(t *testing.T) {
	rows := []map[string]string{
		{"Order_id": "Stripe", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "90", "Customer": "Jane Roe", "Type": "OTC"},
		{"Order_id": "Stripe", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "90", "Customer": "jane roe", "Type": "OTC"},
	}
	orders := newTestNormalizer().NormalizeRows(rows)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want casing variants to share one key", len(orders))
	}
}

func TestCustomerFallsBackToLabel(t *testing.T) {
	rows := []map[string]string{
		{"Order_id": "300", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "90", "Name": "Jane Roe"},
		{"Order_id": "301", "Order Date": "05/01/2024", "Status Order": "Delivered", "Price": "90"},
	}
	orders := newTestNormalizer().NormalizeRows(rows)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1 (identity-less row dropped)", len(orders))
	}
	if orders[0].CustomerID != "jane roe" {
		t.Fatalf("customer = %q", orders[0].CustomerID)
	}
}

func TestParseFlexibleDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"05/01/2024", "2024-01-05", true},       // day-first
		{"31/12/2024", "2024-12-31", true},       // day-first only reading
		{"04/25/2024", "2024-04-25", true},       // impossible day-first, swapped
		{"2024-03-09", "2024-03-09", true},       // ISO
		{"17/02/2024 13:45", "2024-02-17", true}, // time portion ignored
		{"not a date", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseFlexibleDate(tc.in)
		if ok != tc.ok {
			t.Errorf("%q: ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tc.want {
			t.Errorf("%q = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"450.50", 450.50},
		{"1,234.56", 1234.56},
		{"USD 99", 99},
		{"-5", 0},
		{"free", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parsePrice(tc.in); got != tc.want {
			t.Errorf("parsePrice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSkuSubstringMatchPrefersLongestPattern(t *testing.T) {
	n := newTestNormalizer()
	got := n.verticalsFromSKUs([]string{"regrowth hair pack x2"})
	if _, ok := got["otc hl"]; !ok || len(got) != 1 {
		t.Fatalf("verticals = %v, want otc hl via padded substring", got)
	}
}

func TestVerticalsFromCompactCategory(t *testing.T) {
	n := newTestNormalizer()
	got := n.verticalsFromCategories([]string{"pomhl"})
	if _, ok := got["pom hl"]; !ok {
		t.Fatalf("verticals = %v, want compact form to resolve", got)
	}
}

func TestMonthKeyAndTimestamp(t *testing.T) {
	rows := []map[string]string{
		{"Order_id": "400", "Order Date": "17/02/2024", "Status Order": "Delivered", "Price": "90", "Customer": "cust-a"},
	}
	orders := newTestNormalizer().NormalizeRows(rows)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	want := time.Date(2024, 2, 17, 0, 0, 0, 0, time.UTC)
	if !orders[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v", orders[0].Timestamp)
	}
	if orders[0].MonthKey != "2024-02" {
		t.Fatalf("month = %q", orders[0].MonthKey)
	}
}
