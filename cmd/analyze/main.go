package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/marketdata"
	"equity-strategy-lab/internal/records"
	"equity-strategy-lab/internal/reporting"
	"equity-strategy-lab/internal/stats"
	chstore "equity-strategy-lab/internal/storage/clickhouse"
	pgstore "equity-strategy-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	valuesPath := flag.String("values", "", "Fund values CSV file: year,month,day,value")
	runID := flag.String("run-id", "", "Load the equity curve from a persisted run instead of a file")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (with --run-id)")
	benchmark := flag.String("benchmark", "$SPX", "Benchmark symbol to compare against")
	dataDir := flag.String("data-dir", "", "Directory of per-symbol price CSV files")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for bar storage")
	priceField := flag.String("price-field", "close", "Benchmark price series: close or adj_close")
	strict := flag.Bool("strict", false, "Abort on the first malformed value record")
	asCSV := flag.Bool("csv", false, "Output the performance table as CSV")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags)

	if *valuesPath == "" && *runID == "" {
		logger.Fatal("one of --values or --run-id is required")
	}

	field := domain.Field(*priceField)
	if field != domain.FieldClose && field != domain.FieldAdjClose {
		logger.Fatalf("Invalid price field: %s. Must be close or adj_close", *priceField)
	}

	ctx := context.Background()
	generator := reporting.NewGenerator()

	// Load the equity curve
	var curve []domain.FundValueRecord
	switch {
	case *valuesPath != "":
		f, err := os.Open(*valuesPath)
		if err != nil {
			logger.Fatalf("open values file: %v", err)
		}
		var lineErrs []error
		curve, lineErrs, err = records.ReadFundValues(f, *strict)
		f.Close()
		if err != nil {
			logger.Fatalf("read fund values: %v", err)
		}
		for _, e := range lineErrs {
			logger.Printf("skipping value record: %v", e)
		}
	default:
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required with --run-id")
		}
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		curve, err = pgstore.NewFundValueStore(pool).GetByRun(ctx, *runID)
		if err != nil {
			logger.Fatalf("load run %s: %v", *runID, err)
		}
	}
	if len(curve) < 2 {
		logger.Fatalf("need at least 2 fund values, got %d", len(curve))
	}

	// Load and summarize the benchmark over the curve's date range
	var benchmarks []reporting.Benchmark
	if *benchmark != "" {
		if *dataDir == "" && *clickhouseDSN == "" {
			logger.Fatal("one of --data-dir or --clickhouse-dsn is required for the benchmark")
		}
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

		start, end := curve[0].Date, curve[len(curve)-1].Date
		history, err := provider.History(ctx, []string{*benchmark}, start, end)
		if err != nil {
			logger.Fatalf("load benchmark history: %v", err)
		}
		frame, err := history.Frame(field)
		if err != nil {
			logger.Fatalf("benchmark frame: %v", err)
		}
		column, err := frame.Column(domain.NormalizeSymbol(*benchmark))
		if err != nil {
			logger.Fatalf("benchmark column: %v", err)
		}
		summary, err := stats.Summarize(column)
		if err != nil {
			logger.Fatalf("summarize benchmark: %v", err)
		}
		benchmarks = append(benchmarks, reporting.Benchmark{
			Label:   domain.NormalizeSymbol(*benchmark),
			Summary: summary,
		})
	}

	report, err := generator.FromCurve(*runID, curve, benchmarks...)
	if err != nil {
		logger.Fatalf("build report: %v", err)
	}

	if *asCSV {
		fmt.Print(reporting.RenderCSV(report.Performance))
	} else {
		fmt.Print(reporting.RenderMarkdown(report))
	}
}
