package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/marketdata"
	"equity-strategy-lab/internal/marketsim"
	"equity-strategy-lab/internal/observability"
	"equity-strategy-lab/internal/records"
	"equity-strategy-lab/internal/reporting"
	"equity-strategy-lab/internal/storage"
	chstore "equity-strategy-lab/internal/storage/clickhouse"
	"equity-strategy-lab/internal/storage/memory"
	pgstore "equity-strategy-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	cash := flag.Float64("cash", 1000000, "Starting cash")
	ordersPath := flag.String("orders", "", "Orders CSV file: year,month,day,symbol,side,quantity (required)")
	outPath := flag.String("out", "", "Fund values CSV output file (required)")
	dataDir := flag.String("data-dir", "", "Directory of per-symbol price CSV files")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for bar storage")
	priceField := flag.String("price-field", "close", "Fill/valuation price series: close or adj_close")
	strict := flag.Bool("strict", false, "Abort on the first malformed order record")
	runID := flag.String("run-id", "", "Persist the equity curve under this run ID")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for run persistence")
	report := flag.Bool("report", false, "Print a markdown run report to stdout")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[marketsim] ", log.LstdFlags)

	if *ordersPath == "" {
		logger.Fatal("--orders is required")
	}
	if *outPath == "" {
		logger.Fatal("--out is required")
	}
	if *dataDir == "" && *clickhouseDSN == "" {
		logger.Fatal("one of --data-dir or --clickhouse-dsn is required")
	}

	field := domain.Field(*priceField)
	if field != domain.FieldClose && field != domain.FieldAdjClose {
		logger.Fatalf("Invalid price field: %s. Must be close or adj_close", *priceField)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Read orders
	ordersFile, err := os.Open(*ordersPath)
	if err != nil {
		logger.Fatalf("open orders file: %v", err)
	}
	orders, lineErrs, err := records.ReadOrders(ordersFile, *strict)
	ordersFile.Close()
	if err != nil {
		logger.Fatalf("read orders: %v", err)
	}
	for _, e := range lineErrs {
		logger.Printf("skipping order record: %v", e)
	}
	if len(orders) == 0 {
		logger.Fatal("no valid orders to simulate")
	}

	// Build market data provider
	var provider marketdata.Provider
	if *dataDir != "" {
		provider = marketdata.NewCSVSource(*dataDir)
	} else {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		provider = marketdata.NewStoreProvider(chstore.NewBarStore(conn))
	}

	// Load history over the order date range
	start, end, err := marketsim.OrderDateRange(orders)
	if err != nil {
		logger.Fatalf("order date range: %v", err)
	}
	symbols := marketsim.OrderSymbols(orders)
	history, err := provider.History(ctx, symbols, start, end)
	if err != nil {
		logger.Fatalf("load history: %v", err)
	}

	// Run simulation
	sim, err := marketsim.New(history, marketsim.Config{StartingCash: *cash, PriceField: field})
	if err != nil {
		logger.Fatalf("create simulator: %v", err)
	}

	started := time.Now()
	result, err := sim.Run(orders)
	if err != nil {
		observability.RecordSimulationRun("error", 0, 0, time.Since(started).Seconds())
		logger.Fatalf("simulation failed: %v", err)
	}
	executed := len(orders) - len(result.Skipped)
	observability.RecordSimulationRun("ok", executed, len(result.Skipped), time.Since(started).Seconds())

	for _, o := range result.Skipped {
		logger.Printf("skipped order outside calendar: %s %s %s %d",
			o.Date.Format("2006-01-02"), o.Symbol, o.Side, o.Quantity)
	}

	// Write the equity curve
	outFile, err := os.Create(*outPath)
	if err != nil {
		logger.Fatalf("create output file: %v", err)
	}
	if err := records.WriteFundValues(outFile, result.EquityCurve); err != nil {
		outFile.Close()
		logger.Fatalf("write fund values: %v", err)
	}
	outFile.Close()

	// Persist the run if requested
	if *runID != "" {
		var fundStore storage.FundValueStore = memory.NewFundValueStore()
		if *postgresDSN != "" {
			pool, err := pgstore.NewPool(ctx, *postgresDSN)
			if err != nil {
				logger.Fatalf("connect to postgres: %v", err)
			}
			defer pool.Close()
			fundStore = pgstore.NewFundValueStore(pool)
		} else {
			logger.Printf("no --postgres-dsn; run %s persists to memory only", *runID)
		}
		if err := fundStore.InsertRun(ctx, *runID, result.EquityCurve); err != nil {
			logger.Fatalf("persist run %s: %v", *runID, err)
		}
		logger.Printf("persisted run %s (%d records)", *runID, len(result.EquityCurve))
	}

	// Output
	if *report {
		lineErrStrings := make([]string, len(lineErrs))
		for i, e := range lineErrs {
			lineErrStrings[i] = e.Error()
		}
		run := reporting.NewGenerator().FromSimulation(*runID, field, result)
		run.DataQuality.LineErrors = lineErrStrings
		fmt.Print(reporting.RenderMarkdown(run))
	} else {
		printSummary(result)
	}
}

// printSummary outputs a human-readable run summary.
func printSummary(r *marketsim.Result) {
	last := r.EquityCurve[len(r.EquityCurve)-1]
	fmt.Println()
	fmt.Println("=== Simulation Result ===")
	fmt.Printf("Trading Days:       %d\n", len(r.EquityCurve))
	fmt.Printf("Final Value:        %.2f (%s)\n", last.Value, last.Date.Format("2006-01-02"))
	fmt.Printf("Final Cash:         %.2f\n", r.Final.Cash)
	for _, s := range r.Final.Symbols() {
		fmt.Printf("  %-16s  %d shares\n", s, r.Final.Holding(s))
	}
	fmt.Println()
	fmt.Printf("Avg Daily Return:   %.6f\n", r.Summary.AvgDailyReturn)
	fmt.Printf("Std Dev:            %.6f\n", r.Summary.StdDev)
	if r.Summary.Sharpe != nil {
		fmt.Printf("Sharpe Ratio:       %.6f\n", *r.Summary.Sharpe)
	} else {
		fmt.Println("Sharpe Ratio:       undefined (zero volatility)")
	}
	fmt.Printf("Cumulative Return:  %.6f\n", r.Summary.CumulativeReturn)
	if len(r.Skipped) > 0 {
		fmt.Printf("Skipped Orders:     %d\n", len(r.Skipped))
	}
}
