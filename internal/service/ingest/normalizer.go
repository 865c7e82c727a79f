package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/observability/telemetry"
	"github.com/dtc-labs/orderlens/internal/period"
	"github.com/dtc-labs/orderlens/pkg/config"
)

var numberPattern = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// Day-first is the documented order for ambiguous d/m/y text; the swapped
// interpretation and ISO are fallbacks, in that order.
var dayFirstLayouts = []string{
	"02/01/2006", "2/1/2006",
	"02-01-2006", "2-1-2006",
	"02.01.2006", "2.1.2006",
}

var isoLayouts = []string{"2006-01-02", "2006-1-2", "2006/1/2"}

// Normalizer turns raw tabular rows into canonical delivered orders.
// The catalog lookup tables are injected so tests can run against
// alternate catalogs.
type Normalizer struct {
	catalog     config.CatalogConfig
	skuPatterns []string // SKU labels sorted longest-first for substring matching
	log         *zap.Logger
}

func NewNormalizer(catalog config.CatalogConfig, log *zap.Logger) *Normalizer {
	patterns := make([]string, 0, len(catalog.SKUVerticals))
	for sku := range catalog.SKUVerticals {
		patterns = append(patterns, sku)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})
	return &Normalizer{catalog: catalog, skuPatterns: patterns, log: log}
}

// ParseCSV reads a delimited byte buffer and returns normalized, deduplicated
// orders. Rows with a non-delivered status or an unparsable date are dropped
// silently; the drop counts surface only through metrics and the QA summary.
func (n *Normalizer) ParseCSV(data []byte) ([]domain.Order, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := make([]string, 0, len(records[0]))
	for _, name := range records[0] {
		header = append(header, strings.TrimSpace(name))
	}
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				values[name] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, values)
	}

	return n.normalizeRows(header, rows), nil
}

// NormalizeRows applies the delivered/date filters, derives verticals and
// identities, and deduplicates by order key. Vertical sets are unioned across
// duplicate raw rows before dedup, so a later duplicate can contribute a
// vertical the first row did not.
func (n *Normalizer) NormalizeRows(raws []map[string]string) []domain.Order {
	return n.normalizeRows(nil, raws)
}

// normalizeRows carries the CSV header so fuzzy column fallbacks scan in
// column order; map-only callers get a sorted scan instead.
func (n *Normalizer) normalizeRows(header []string, raws []map[string]string) []domain.Order {
	ordered := make([]string, 0, len(raws))
	byKey := make(map[string]*domain.Order, len(raws))
	var droppedStatus, droppedDate, droppedCustomer int

	for _, values := range raws {
		r := newRow(values, header)

		status := normalizeText(r.get(statusColumns))
		if status != "delivered" {
			droppedStatus++
			continue
		}

		ts, ok := parseFlexibleDate(r.get(dateColumns))
		if !ok {
			droppedDate++
			continue
		}

		label := normalizeText(r.get(labelColumns))
		customerID := strings.TrimSpace(r.get(customerColumns))
		if customerID == "" {
			customerID = label
		}
		if customerID == "" {
			droppedCustomer++
			continue
		}

		price := parsePrice(r.get(priceColumns))
		skus := splitValues(r.get(skuColumns))
		verticals := n.verticalsFromSKUs(skus)
		for v := range n.verticalsFromCategories(splitValues(r.get(categoryColumns))) {
			verticals[v] = struct{}{}
		}

		key := n.orderKey(r, ts, customerID)

		if existing, ok := byKey[key]; ok {
			// Headline dedup keeps the first row, but verticals and SKUs
			// accumulate across all rows sharing the key.
			existing.Verticals = unionSorted(existing.Verticals, verticals)
			existing.SKUNames = unionStrings(existing.SKUNames, skus)
			continue
		}

		order := &domain.Order{
			Key:           key,
			Timestamp:     ts,
			MonthKey:      period.MonthKey(ts),
			Price:         price,
			Verticals:     unionSorted(nil, verticals),
			SKUNames:      unionStrings(nil, skus),
			CustomerID:    customerID,
			CustomerLabel: label,
			Notes:         r.get(notesColumns),
		}
		byKey[key] = order
		ordered = append(ordered, key)
	}

	orders := make([]domain.Order, 0, len(ordered))
	for _, key := range ordered {
		orders = append(orders, *byKey[key])
	}

	telemetry.RowsDropped.WithLabelValues("status").Add(float64(droppedStatus))
	telemetry.RowsDropped.WithLabelValues("date").Add(float64(droppedDate))
	telemetry.RowsDropped.WithLabelValues("customer").Add(float64(droppedCustomer))
	telemetry.OrdersNormalized.Add(float64(len(orders)))

	if n.log != nil {
		n.log.Debug("normalized orders",
			zap.Int("rows", len(raws)),
			zap.Int("orders", len(orders)),
			zap.Int("dropped_status", droppedStatus),
			zap.Int("dropped_date", droppedDate),
			zap.Int("dropped_customer", droppedCustomer),
		)
	}
	return orders
}

func (n *Normalizer) orderKey(r row, ts time.Time, customerID string) string {
	id := normalizeText(r.get(orderIDColumns))
	if id != "" && !n.catalog.IsPlaceholderOrderID(id) {
		return "id|" + id
	}
	// Synthesized key merges likely-duplicate rows imported without a
	// trustworthy id. The customer component is case-folded so casing
	// variants of the same name still collapse.
	return fmt.Sprintf("syn|%s|%s|%s|%s",
		normalizeText(customerID),
		period.DayKey(ts),
		strings.TrimSpace(r.get(priceColumns)),
		normalizeText(r.get(typeColumns)),
	)
}

func (n *Normalizer) verticalsFromSKUs(skus []string) map[string]struct{} {
	result := make(map[string]struct{})
	for _, item := range skus {
		if vertical, ok := n.catalog.SKUVerticals[item]; ok {
			result[vertical] = struct{}{}
			continue
		}
		padded := " " + item + " "
		for _, pattern := range n.skuPatterns {
			if strings.Contains(padded, " "+pattern+" ") {
				result[n.catalog.SKUVerticals[pattern]] = struct{}{}
				break
			}
		}
	}
	return result
}

func (n *Normalizer) verticalsFromCategories(parts []string) map[string]struct{} {
	result := make(map[string]struct{})
	for _, part := range parts {
		matched := false
		for _, vertical := range n.catalog.Verticals {
			if part == vertical {
				result[vertical] = struct{}{}
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		compact := strings.ReplaceAll(part, " ", "")
		if vertical, ok := n.catalog.CompactVerticals[compact]; ok {
			result[vertical] = struct{}{}
		}
	}
	return result
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func splitValues(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if cleaned := normalizeText(part); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// parsePrice extracts the first numeric token, ignoring thousands separators.
// Unparsable or negative values coerce to 0.
func parsePrice(value string) float64 {
	cleaned := strings.ReplaceAll(value, ",", "")
	match := numberPattern.FindString(cleaned)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// parseFlexibleDate accepts day-first d/m/y text, the swapped month-first
// reading when the day-first one is impossible, and ISO dates. The time
// portion of datetime strings is ignored.
func parseFlexibleDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(value, ' '); i > 0 {
		value = value[:i]
	}

	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	// Swapped fallback: "04/25/2024" only reads as month-first.
	for _, layout := range []string{"01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006"} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func unionSorted(existing []string, add map[string]struct{}) []string {
	set := make(map[string]struct{}, len(existing)+len(add))
	for _, v := range existing {
		set[v] = struct{}{}
	}
	for v := range add {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func unionStrings(existing, add []string) []string {
	set := make(map[string]struct{}, len(existing)+len(add))
	out := make([]string, 0, len(existing)+len(add))
	for _, v := range existing {
		if _, ok := set[v]; !ok {
			set[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range add {
		if _, ok := set[v]; !ok {
			set[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
