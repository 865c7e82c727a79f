package ingest

import (
	"sort"
	"strings"
)

// Column candidates for the loosely-typed exports we receive. Matching is
// fuzzy: header names are compacted to lower-case alphanumerics before
// comparison, so "Order_id", "order id" and "OrderID" all resolve.
var (
	statusColumns   = []string{"Status Order", "Order Status", "Status"}
	dateColumns     = []string{"Order Date", "Created At", "Date"}
	orderIDColumns  = []string{"Order_id", "orderid", "id"}
	priceColumns    = []string{"Price", "Total", "Order Total", "Amount"}
	typeColumns     = []string{"Type"}
	customerColumns = []string{"name_uid", "final_id", "customer_id", "source_user_id", "user_id", "Customer"}
	labelColumns    = []string{"Customer", "Customer Name", "Name"}
	categoryColumns = []string{"Category", "Categories"}
	skuColumns      = []string{"SKUs", "SKU", "Products", "Items"}
	notesColumns    = []string{"Notes", "Note", "Subscription Notes", "Cadence"}
)

func compactKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// row wraps one raw CSV record with a compact-key index for fuzzy lookups.
// The substring fallback scans headers in a fixed order, so identical input
// always resolves to the same column.
type row struct {
	values  map[string]string
	compact map[string]string // compact header -> original header
	order   []string          // compact headers in scan order
}

// newRow indexes one record. header carries the CSV column order; when nil
// (callers supplying bare maps) the scan order is the sorted header set.
func newRow(values map[string]string, header []string) row {
	if header == nil {
		header = make([]string, 0, len(values))
		for key := range values {
			header = append(header, key)
		}
		sort.Strings(header)
	}

	compact := make(map[string]string, len(values))
	order := make([]string, 0, len(header))
	for _, key := range header {
		ck := compactKey(key)
		if _, ok := compact[ck]; ok {
			continue
		}
		compact[ck] = key
		order = append(order, ck)
	}
	return row{values: values, compact: compact, order: order}
}

// get returns the first matching column value: exact compact match over the
// candidates first, then a compact substring scan in header order.
func (r row) get(candidates []string) string {
	for _, candidate := range candidates {
		if key, ok := r.compact[compactKey(candidate)]; ok {
			return r.values[key]
		}
	}
	for _, compact := range r.order {
		for _, candidate := range candidates {
			if strings.Contains(compact, compactKey(candidate)) {
				return r.values[r.compact[compact]]
			}
		}
	}
	return ""
}
