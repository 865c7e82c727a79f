// Command exporter runs the full analytics pipeline over an orders CSV and
// writes the xlsx workbook plus one CSV per output table.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/adapter/export"
	"github.com/dtc-labs/orderlens/internal/service/analytics"
	"github.com/dtc-labs/orderlens/pkg/config"
)

func main() {
	input := flag.String("input", "", "path to the orders CSV (required)")
	outDir := flag.String("out", "out", "output directory")
	asOf := flag.String("as-of", "", "pin the as-of month (YYYY-MM) for reproducible runs")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg := config.Default()
	if *asOf != "" {
		cfg.Analytics.AsOfMonth = *asOf
	}

	if err := run(cfg, logger, *input, *outDir); err != nil {
		logger.Fatal("export failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, input, outDir string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	service := analytics.NewService(cfg, logger, time.Now)

	// parse, compute, catalogue, workbook, then one step per CSV table
	bar := progressbar.Default(4 + 7)

	orders, err := service.ParseOrders(data)
	if err != nil {
		return fmt.Errorf("parse orders: %w", err)
	}
	_ = bar.Add(1)

	result := service.ComputeResult(orders)
	_ = bar.Add(1)

	ordersResult := service.ComputeOrders(orders)
	catalogue := service.Catalogue(orders)
	_ = bar.Add(1)

	builder := export.NewBuilder(logger)
	workbook, err := builder.OrdersWorkbook(ordersResult.MomOrders, ordersResult.MomOrdersByVertical, &catalogue)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	workbookPath := filepath.Join(outDir, "orders.xlsx")
	if err := os.WriteFile(workbookPath, workbook, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	_ = bar.Add(1)

	for _, table := range export.Tables(result, ordersResult, catalogue) {
		if err := writeTable(outDir, table); err != nil {
			return err
		}
		_ = bar.Add(1)
	}

	logger.Info("export complete",
		zap.String("as_of_month", result.AsOfMonth),
		zap.Int("orders", len(orders)),
		zap.String("out_dir", outDir),
	)
	return nil
}

func writeTable(outDir string, table export.Table) error {
	f, err := os.Create(filepath.Join(outDir, table.Name+".csv"))
	if err != nil {
		return fmt.Errorf("create %s.csv: %w", table.Name, err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, table); err != nil {
		return fmt.Errorf("write %s.csv: %w", table.Name, err)
	}
	return nil
}
