// Package catalogue aggregates per-SKU unit economics from normalized orders.
// Cost of goods follows a two-regime table: orders in or after the configured
// cutover month price at the current table, earlier orders at the legacy one.
package catalogue

import (
	"sort"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/pkg/config"
)

type Summarizer struct {
	catalog config.CatalogConfig
	costs   config.CostsConfig
}

func NewSummarizer(catalog config.CatalogConfig, costs config.CostsConfig) *Summarizer {
	return &Summarizer{catalog: catalog, costs: costs}
}

func (s *Summarizer) repriced(month string) bool {
	return month >= s.costs.CutoverMonth
}

// Summarize builds the per-SKU economics table. An order's full price is
// attributed to each of its SKUs, so multi-SKU orders inflate per-SKU revenue
// relative to the headline; the table is for relative margin comparison, not
// revenue reconciliation.
func (s *Summarizer) Summarize(orders []domain.Order) domain.CatalogueSummary {
	type stats struct {
		units       int
		revenue     float64
		cogs        float64
		category    string
		marginLabel string
	}
	bySku := make(map[string]*stats)

	for _, order := range orders {
		for _, sku := range order.SKUNames {
			st, ok := bySku[sku]
			if !ok {
				category := s.catalog.SKUVerticals[sku]
				if category == "" {
					category = "Unknown"
				}
				st = &stats{category: category}
				bySku[sku] = st
			}
			st.units++
			st.revenue += order.Price

			table := s.costs.Legacy
			if s.repriced(order.MonthKey) {
				table = s.costs.Current
			}
			st.cogs += table[sku]
			if st.marginLabel == "" && s.repriced(order.MonthKey) && s.costs.Current[sku] != s.costs.Legacy[sku] {
				st.marginLabel = s.costs.RepricedLabel
			}
		}
	}

	rows := make([]domain.CatalogueRow, 0, len(bySku))
	for sku, st := range bySku {
		row := domain.CatalogueRow{
			Category:    st.category,
			SKU:         sku,
			Units:       st.units,
			Revenue:     st.revenue,
			CogsTotal:   st.cogs,
			MarginLabel: st.marginLabel,
		}
		if st.units > 0 {
			row.AvgPrice = st.revenue / float64(st.units)
			row.CogsPerUnit = st.cogs / float64(st.units)
		}
		if st.revenue != 0 {
			row.TakeRate = (st.revenue - st.cogs) / st.revenue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].SKU < rows[j].SKU
	})

	var totals domain.CatalogueTotals
	for _, row := range rows {
		totals.Units += row.Units
		totals.Revenue += row.Revenue
		totals.Cogs += row.CogsTotal
	}
	if totals.Revenue != 0 {
		totals.TakeRate = (totals.Revenue - totals.Cogs) / totals.Revenue
	}

	return domain.CatalogueSummary{Rows: rows, Totals: totals}
}
