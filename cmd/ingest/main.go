package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/marketdata"
	"equity-strategy-lab/internal/observability"
	"equity-strategy-lab/internal/storage"
	chstore "equity-strategy-lab/internal/storage/clickhouse"
	"equity-strategy-lab/internal/storage/memory"
)

func main() {
	// Parse flags
	dataDir := flag.String("data-dir", "", "Directory of per-symbol price CSV files (required)")
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols to ingest (required)")
	startFlag := flag.String("start", "1970-01-01", "Start date YYYY-MM-DD")
	endFlag := flag.String("end", "2100-01-01", "End date YYYY-MM-DD")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of ClickHouse")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	if *dataDir == "" {
		logger.Fatal("--data-dir is required")
	}
	if *symbolsFlag == "" {
		logger.Fatal("--symbols is required")
	}
	if !*useMemory && *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required when not using --use-memory")
	}
	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		logger.Fatalf("parse --start: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endFlag)
	if err != nil {
		logger.Fatalf("parse --end: %v", err)
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("metrics server: %v", err)
			}
		}()
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

	// Create the bar store
	var barStore storage.BarStore = memory.NewBarStore()
	if !*useMemory {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		barStore = chstore.NewBarStore(conn)
	}

	// Ingest symbol by symbol so one bad file does not poison the rest
	source := marketdata.NewCSVSource(*dataDir)
	total := 0
	failed := 0
	for _, raw := range strings.Split(*symbolsFlag, ",") {
		symbol := domain.NormalizeSymbol(raw)
		if symbol == "" {
			continue
		}
		if ctx.Err() != nil {
			logger.Fatalf("ingestion interrupted: %v", ctx.Err())
		}

		bars, err := source.ReadSymbol(symbol, start, end)
		if err != nil {
			observability.RecordLoadError("read")
			logger.Printf("read %s: %v", symbol, err)
			failed++
			continue
		}
		if err := barStore.InsertBulk(ctx, bars); err != nil {
			observability.RecordLoadError("insert")
			logger.Printf("insert %s: %v", symbol, err)
			failed++
			continue
		}
		observability.RecordBarsIngested(len(bars))
		logger.Printf("ingested %s: %d bars", symbol, len(bars))
		total += len(bars)
	}

	logger.Printf("done: %d bars ingested, %d symbols failed", total, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
