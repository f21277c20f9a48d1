package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"equity-strategy-lab/internal/domain"
	"equity-strategy-lab/internal/marketdata"
	"equity-strategy-lab/internal/observability"
	"equity-strategy-lab/internal/records"
	"equity-strategy-lab/internal/signal"
	"equity-strategy-lab/internal/stats"
	chstore "equity-strategy-lab/internal/storage/clickhouse"
)

func main() {
	// Parse flags
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols to scan (required)")
	reference := flag.String("reference", "$SPX", "Market reference symbol for band mode")
	startFlag := flag.String("start", "", "Start date YYYY-MM-DD (required)")
	endFlag := flag.String("end", "", "End date YYYY-MM-DD (required)")
	dataDir := flag.String("data-dir", "", "Directory of per-symbol price CSV files")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for bar storage")
	mode := flag.String("mode", "events", "Detection mode: events, trades, or threshold")
	window := flag.Int("window", stats.DefaultWindow, "Rolling window in trading days")
	upper := flag.Float64("upper", signal.DefaultUpperThreshold, "Reference band threshold for band modes")
	lower := flag.Float64("lower", signal.DefaultLowerThreshold, "Oversold band threshold for band modes")
	threshold := flag.Float64("threshold", signal.DefaultPriceThreshold, "Price threshold for threshold mode")
	holdDays := flag.Int("hold-days", signal.DefaultHoldingDays, "Holding period for trades mode")
	quantity := flag.Int("quantity", signal.DefaultTradeQuantity, "Shares per trade for trades mode")
	indicatorsOut := flag.String("indicators-out", "", "Write the full indicator stream CSV to this file")
	ordersOut := flag.String("orders-out", "", "Write paired orders CSV to this file (trades mode)")

	flag.Parse()

	// Trades mode defaults to the stricter regime threshold unless --upper
	// was given explicitly
	if *mode == "trades" {
		upperSet := false
		flag.Visit(func(f *flag.Flag) {
			if f.Name == "upper" {
				upperSet = true
			}
		})
		if !upperSet {
			*upper = signal.DefaultTradeUpperThreshold
		}
	}

	// Setup logger
	logger := log.New(os.Stderr, "[bollinger] ", log.LstdFlags)

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

	ctx := context.Background()

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

	// The reference series rides along for band detection
	symbols := splitSymbols(*symbolsFlag)
	if *mode != "threshold" && !contains(symbols, domain.NormalizeSymbol(*reference)) {
		symbols = append(symbols, domain.NormalizeSymbol(*reference))
	}

	history, err := provider.History(ctx, symbols, start, end)
	if err != nil {
		logger.Fatalf("load history: %v", err)
	}
	prices, err := history.Frame(domain.FieldAdjClose)
	if err != nil {
		logger.Fatalf("price frame: %v", err)
	}

	switch *mode {
	case "threshold":
		events, err := signal.ThresholdCrossings(prices, *threshold)
		if err != nil {
			logger.Fatalf("threshold detection: %v", err)
		}
		observability.RecordEventsDetected("threshold", len(events))
		logger.Printf("detected %d threshold crossings", len(events))
		if err := records.WriteEvents(os.Stdout, events); err != nil {
			logger.Fatalf("write events: %v", err)
		}

	case "events", "trades":
		detector, err := signal.NewBandDetector(prices, signal.BandConfig{
			ReferenceSymbol: domain.NormalizeSymbol(*reference),
			Upper:           *upper,
			Lower:           *lower,
			Window:          *window,
		})
		if err != nil {
			logger.Fatalf("create detector: %v", err)
		}

		events := detector.Events()
		observability.RecordEventsDetected("band", len(events))
		logger.Printf("detected %d band events", len(events))

		if *indicatorsOut != "" {
			f, err := os.Create(*indicatorsOut)
			if err != nil {
				logger.Fatalf("create indicators file: %v", err)
			}
			if err := records.WriteIndicators(f, detector.Records()); err != nil {
				f.Close()
				logger.Fatalf("write indicators: %v", err)
			}
			f.Close()
		}

		if *mode == "events" {
			if err := records.WriteEvents(os.Stdout, events); err != nil {
				logger.Fatalf("write events: %v", err)
			}
			return
		}

		orders, err := signal.EventTrades(prices.Calendar(), events, signal.TradeConfig{
			Quantity:    *quantity,
			HoldingDays: *holdDays,
		})
		if err != nil {
			logger.Fatalf("emit trades: %v", err)
		}
		out := os.Stdout
		if *ordersOut != "" {
			out, err = os.Create(*ordersOut)
			if err != nil {
				logger.Fatalf("create orders file: %v", err)
			}
			defer out.Close()
		}
		if err := records.WriteOrders(out, orders); err != nil {
			logger.Fatalf("write orders: %v", err)
		}

	default:
		logger.Fatalf("Invalid mode: %s. Must be events, trades, or threshold", *mode)
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

func contains(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
