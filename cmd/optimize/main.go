package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/marketdata"
	"equity-strategy-lab/internal/observability"
	"equity-strategy-lab/internal/optimize"
	chstore "equity-strategy-lab/internal/storage/clickhouse"
)

func main() {
	// Parse flags
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols to allocate across (required)")
	startFlag := flag.String("start", "", "Start date YYYY-MM-DD (required)")
	endFlag := flag.String("end", "", "End date YYYY-MM-DD (required)")
	dataDir := flag.String("data-dir", "", "Directory of per-symbol price CSV files")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for bar storage")
	priceField := flag.String("price-field", "adj_close", "Price series: close or adj_close")
	granularity := flag.Float64("granularity", optimize.DefaultGranularity, "Allocation grid step")
	workers := flag.Int("workers", 0, "Parallel evaluation workers (0 = GOMAXPROCS)")
	topN := flag.Int("top", 5, "How many best allocations to print")
	timeout := flag.Duration("timeout", 0, "Search timeout (0 = none)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[optimize] ", log.LstdFlags)

	if *symbolsFlag == "" {
		logger.Fatal("--symbols is required")
	}
	if *startFlag == "" || *endFlag == "" {
		logger.Fatal("--start and --end are required")
	}
	if *dataDir == "" && *clickhouseDSN == "" {
		logger.Fatal("one of --data-dir or --clickhouse-dsn is required")
	}
	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		logger.Fatalf("parse --start: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		logger.Fatalf("parse --end: %v", err)
	}
	field := domain.Field(*priceField)
	if field != domain.FieldClose && field != domain.FieldAdjClose {
		logger.Fatalf("Invalid price field: %s. Must be close or adj_close", *priceField)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

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

	symbols := splitSymbols(*symbolsFlag)
	history, err := provider.History(ctx, symbols, start, end)
	if err != nil {
		logger.Fatalf("load history: %v", err)
	}
	frame, err := history.Frame(field)
	if err != nil {
		logger.Fatalf("price frame: %v", err)
	}

	// Run the search
	searcher := &optimize.GridSearcher{
		Granularity: *granularity,
		Workers:     *workers,
		TopN:        *topN,
	}

	logger.Printf("searching %d symbols at granularity %g", len(symbols), *granularity)
	started := time.Now()
	result, err := searcher.Search(ctx, frame.Matrix())
	elapsed := time.Since(started)
	if err != nil {
		logger.Fatalf("search failed: %v", err)
	}
	observability.RecordSearch(result.Evaluated, *workers, elapsed.Seconds())
	logger.Printf("evaluated %d candidates in %v", result.Evaluated, elapsed)

	printResult(frame.Symbols(), result)
}

// printResult outputs the best allocations.
func printResult(symbols []string, r *optimize.Result) {
	fmt.Println()
	fmt.Println("=== Optimization Result ===")
	fmt.Printf("Candidates Evaluated: %d\n", r.Evaluated)
	fmt.Println()

	fmt.Println("Best Allocation:")
	for i, s := range symbols {
		fmt.Printf("  %-16s  %.2f\n", s, r.Best.Allocation[i])
	}
	fmt.Println()
	fmt.Printf("Sharpe Ratio:       %.6f\n", *r.Best.Summary.Sharpe)
	fmt.Printf("Avg Daily Return:   %.6f\n", r.Best.Summary.AvgDailyReturn)
	fmt.Printf("Std Dev:            %.6f\n", r.Best.Summary.StdDev)
	fmt.Printf("Cumulative Return:  %.6f\n", r.Best.Summary.CumulativeReturn)

	if len(r.Top) > 1 {
		fmt.Println()
		fmt.Println("Top Allocations:")
		for _, c := range r.Top {
			fmt.Printf("  %v  sharpe=%.6f\n", c.Allocation, *c.Summary.Sharpe)
		}
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		symbol := domain.NormalizeSymbol(part)
		if symbol != "" {
			out = append(out, symbol)
		}
	}
	return out
}
