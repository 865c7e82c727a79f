package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dtc-labs/orderlens/internal/domain"
)

// Table is a stringified rendering of one output table, ready for CSV.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// WriteCSV streams a table through an encoding/csv writer.
func WriteCSV(w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Tables flattens a full analytics result plus the orders tables into named
// CSV tables, one per output file.
func Tables(res domain.Result, ord domain.OrdersResult, cat domain.CatalogueSummary) []Table {
	return []Table{
		momTable(ord.MomOrders),
		momByVerticalTable(ord.MomOrdersByVertical),
		retentionTable(res.Retention),
		ltvTable(res.Ltv),
		survivalTable(res.Survival),
		waterfallTable(res.Waterfall),
		catalogueTable(cat),
	}
}

func momTable(rows []domain.MomOrdersRow) Table {
	t := Table{
		Name:    "mom_orders",
		Headers: []string{"month", "orders", "orders_mom_abs", "orders_mom_pct", "ado", "ado_pacing", "is_partial"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Month, itoa(r.Orders), optIntStr(r.MomAbs), optFloatStr(r.MomPct), ftoa(r.Ado), optFloatStr(r.AdoPacing), itoa(r.IsPartial),
		})
	}
	return t
}

func momByVerticalTable(rows []domain.MomOrdersByVerticalRow) Table {
	t := Table{
		Name:    "mom_orders_by_vertical",
		Headers: []string{"month", "vertical", "orders", "orders_mom_abs", "orders_mom_pct", "ado_vertical", "ado_vertical_pacing", "is_partial"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Month, r.Vertical, itoa(r.Orders), optIntStr(r.MomAbs), optFloatStr(r.MomPct), ftoa(r.Ado), optFloatStr(r.AdoPacing), itoa(r.IsPartial),
		})
	}
	return t
}

func retentionTable(rows []domain.RetentionRow) Table {
	t := Table{
		Name:    "retention",
		Headers: []string{"cohort_month", "dimension", "first_value", "m", "metric", "cohort_size", "retention"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.CohortMonth, string(r.Dimension), r.FirstValue, itoa(r.M), string(r.Metric), itoa(r.CohortSize),
			// CSV consumers expect the percent rendering.
			fmt.Sprintf("%.2f%%", r.Retention*100),
		})
	}
	return t
}

func ltvTable(rows []domain.LtvRow) Table {
	t := Table{
		Name:    "ltv",
		Headers: []string{"cohort_type", "cohort_month", "dimension", "first_value", "m", "metric", "measure", "cohort_size", "ltv_per_user"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.CohortType, r.CohortMonth, string(r.Dimension), r.FirstValue, itoa(r.M), string(r.Metric), r.Measure, itoa(r.CohortSize), ftoa(r.LtvPerUser),
		})
	}
	return t
}

func survivalTable(rows []domain.SurvivalRow) Table {
	t := Table{
		Name:    "survival",
		Headers: []string{"cohort_month", "category", "m", "cohort_size", "survival_rate"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.CohortMonth, r.Category, itoa(r.M), itoa(r.CohortSize), ftoa(r.SurvivalRate)})
	}
	return t
}

func waterfallTable(rows []domain.WaterfallRow) Table {
	t := Table{
		Name:    "waterfall",
		Headers: []string{"month", "category", "start_active", "new_active", "reactivated", "churned", "end_active"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Month, r.Category, itoa(r.StartActive), itoa(r.NewActive), itoa(r.Reactivated), itoa(r.Churned), itoa(r.EndActive),
		})
	}
	return t
}

func catalogueTable(cat domain.CatalogueSummary) Table {
	t := Table{
		Name:    "catalogue",
		Headers: []string{"category", "sku", "units", "avg_price", "revenue", "cogs_per_unit", "cogs_total", "take_rate", "notes"},
	}
	for _, r := range cat.Rows {
		t.Rows = append(t.Rows, []string{
			r.Category, r.SKU, itoa(r.Units), ftoa(r.AvgPrice), ftoa(r.Revenue), ftoa(r.CogsPerUnit), ftoa(r.CogsTotal), ftoa(r.TakeRate), r.MarginLabel,
		})
	}
	t.Rows = append(t.Rows, []string{
		"Totals", "", itoa(cat.Totals.Units), "", ftoa(cat.Totals.Revenue), "", ftoa(cat.Totals.Cogs), ftoa(cat.Totals.TakeRate), "",
	})
	return t
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func optIntStr(v *int) string {
	if v == nil {
		return ""
	}
	return itoa(*v)
}

func optFloatStr(v *float64) string {
	if v == nil {
		return ""
	}
	return ftoa(*v)
}
