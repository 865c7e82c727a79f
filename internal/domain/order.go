package domain

import (
	"sort"
	"time"
)

// Order is a normalized delivered order. Rows that fail status or date
// validation never become Orders.
type Order struct {
	Key           string    `json:"order_key"`
	Timestamp     time.Time `json:"order_ts"`
	MonthKey      string    `json:"order_month"` // YYYY-MM
	Price         float64   `json:"price"`
	Verticals     []string  `json:"verticals"` // sorted, unique, lower-case
	SKUNames      []string  `json:"sku_names"`
	CustomerID    string    `json:"customer_id"`
	CustomerLabel string    `json:"customer_label"`
	Notes         string    `json:"notes"`
}

// HasVertical reports whether the order carries the given vertical.
func (o Order) HasVertical(vertical string) bool {
	for _, v := range o.Verticals {
		if v == vertical {
			return true
		}
	}
	return false
}

// ActiveSet maps a canonical period key (YYYY-MM or YYYY-MM-DD) to the set
// of customer ids active in that period. Values are sets, never multisets.
type ActiveSet map[string]map[string]struct{}

// Add records a customer as active in the given period.
func (s ActiveSet) Add(period, customerID string) {
	set, ok := s[period]
	if !ok {
		set = make(map[string]struct{})
		s[period] = set
	}
	set[customerID] = struct{}{}
}

// Get returns the customer set for a period, which may be nil.
func (s ActiveSet) Get(period string) map[string]struct{} {
	return s[period]
}

// Size returns the number of distinct customers active in the period.
func (s ActiveSet) Size(period string) int {
	return len(s[period])
}

// Periods returns the sorted period keys present in the set.
func (s ActiveSet) Periods() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
