// Package export renders computed analytics tables into spreadsheet and CSV
// form. It is purely presentational: no computation happens here.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/observability/telemetry"
)

const (
	sheetMom       = "MoM Orders (Delivered)"
	sheetVerticals = "MoM by Vertical (Delivered)"
	sheetCatalogue = "Catalogue Summary"

	fmtPercent  = "0.00%"
	fmtRate     = "0.000"
	fmtCurrency = `"Dh" #,##0.00`
)

type Builder struct {
	log *zap.Logger
}

func NewBuilder(log *zap.Logger) *Builder {
	return &Builder{log: log}
}

// OrdersWorkbook renders the MoM tables (and optionally the catalogue
// summary) into an xlsx workbook: one table per sheet, frozen header row,
// auto-filter, percent and currency number formats.
func (b *Builder) OrdersWorkbook(mom []domain.MomOrdersRow, byVertical []domain.MomOrdersByVerticalRow, cat *domain.CatalogueSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetMom); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := b.writeMomSheet(f, mom); err != nil {
		return nil, err
	}
	if err := b.writeVerticalSheet(f, byVertical); err != nil {
		return nil, err
	}
	if cat != nil {
		if err := b.writeCatalogueSheet(f, cat); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	telemetry.WorkbookBuilds.Inc()
	if b.log != nil {
		b.log.Debug("workbook built",
			zap.Int("mom_rows", len(mom)),
			zap.Int("vertical_rows", len(byVertical)),
			zap.Bool("catalogue", cat != nil),
		)
	}
	return buf.Bytes(), nil
}

func (b *Builder) writeMomSheet(f *excelize.File, rows []domain.MomOrdersRow) error {
	headers := []string{"month", "orders", "orders_mom_abs", "orders_mom_pct", "ado", "ado_pacing", "is_partial"}
	if err := writeHeader(f, sheetMom, headers); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []interface{}{row.Month, row.Orders, optInt(row.MomAbs), optFloat(row.MomPct), row.Ado, optFloat(row.AdoPacing), row.IsPartial}
		if err := writeRow(f, sheetMom, i+2, cells); err != nil {
			return err
		}
	}
	if err := styleColumns(f, sheetMom, map[string]string{"D": fmtPercent, "E": fmtRate, "F": fmtRate}); err != nil {
		return err
	}
	return finishSheet(f, sheetMom, "A1:G1", len(rows))
}

func (b *Builder) writeVerticalSheet(f *excelize.File, rows []domain.MomOrdersByVerticalRow) error {
	if _, err := f.NewSheet(sheetVerticals); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	headers := []string{"month", "vertical", "orders", "orders_mom_abs", "orders_mom_pct", "ado_vertical", "ado_vertical_pacing", "is_partial"}
	if err := writeHeader(f, sheetVerticals, headers); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []interface{}{row.Month, row.Vertical, row.Orders, optInt(row.MomAbs), optFloat(row.MomPct), row.Ado, optFloat(row.AdoPacing), row.IsPartial}
		if err := writeRow(f, sheetVerticals, i+2, cells); err != nil {
			return err
		}
	}
	if err := styleColumns(f, sheetVerticals, map[string]string{"E": fmtPercent, "F": fmtRate, "G": fmtRate}); err != nil {
		return err
	}
	return finishSheet(f, sheetVerticals, "A1:H1", len(rows))
}

func (b *Builder) writeCatalogueSheet(f *excelize.File, cat *domain.CatalogueSummary) error {
	if _, err := f.NewSheet(sheetCatalogue); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	headers := []string{"Category", "SKU", "Units", "Avg price", "Revenue", "CoGS / unit", "CoGS total", "Take rate", "Notes"}
	if err := writeHeader(f, sheetCatalogue, headers); err != nil {
		return err
	}
	rowIdx := 2
	for _, row := range cat.Rows {
		cells := []interface{}{row.Category, row.SKU, row.Units, row.AvgPrice, row.Revenue, row.CogsPerUnit, row.CogsTotal, row.TakeRate, row.MarginLabel}
		if err := writeRow(f, sheetCatalogue, rowIdx, cells); err != nil {
			return err
		}
		rowIdx++
	}
	// blank spacer, then the totals line
	rowIdx++
	totals := []interface{}{"Totals", nil, cat.Totals.Units, nil, cat.Totals.Revenue, nil, cat.Totals.Cogs, cat.Totals.TakeRate, nil}
	if err := writeRow(f, sheetCatalogue, rowIdx, totals); err != nil {
		return err
	}
	formats := map[string]string{"D": fmtCurrency, "E": fmtCurrency, "F": fmtCurrency, "G": fmtCurrency, "H": fmtPercent}
	if err := styleColumns(f, sheetCatalogue, formats); err != nil {
		return err
	}
	return finishSheet(f, sheetCatalogue, "A1:I1", len(cat.Rows))
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	return f.SetColWidth(sheet, "A", columnName(len(headers)), 16)
}

func writeRow(f *excelize.File, sheet string, rowIdx int, cells []interface{}) error {
	for i, value := range cells {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}
	return nil
}

func styleColumns(f *excelize.File, sheet string, formats map[string]string) error {
	for col, numFmt := range formats {
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return fmt.Errorf("build style: %w", err)
		}
		if err := f.SetColStyle(sheet, col, style); err != nil {
			return fmt.Errorf("style column %s: %w", col, err)
		}
	}
	return nil
}

func finishSheet(f *excelize.File, sheet, filterRange string, dataRows int) error {
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if dataRows == 0 {
		return nil
	}
	if err := f.AutoFilter(sheet, filterRange, nil); err != nil {
		return fmt.Errorf("auto filter: %w", err)
	}
	return nil
}

func columnName(n int) string {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return "A"
	}
	return name
}

func optInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
