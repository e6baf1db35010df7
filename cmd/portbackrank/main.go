package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PortBackRank/PortBackRank/internal/config"
	"github.com/PortBackRank/PortBackRank/internal/engine"
	"github.com/PortBackRank/PortBackRank/internal/marketdata"
	"github.com/PortBackRank/PortBackRank/internal/repository"
	"github.com/PortBackRank/PortBackRank/strategies/macross"
	"github.com/PortBackRank/PortBackRank/strategies/randomrank"
	"github.com/PortBackRank/PortBackRank/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the run configuration file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		log = log.Level(level)
	}

	start, end, err := cfg.Dates()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid date range")
	}

	ctx := context.Background()

	db, err := repository.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	history, info, err := db.LoadMarketData(ctx, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("load market data")
	}
	data := marketdata.NewProvider(history, info)
	log.Info().
		Int("loaded", len(history)).
		Int("simulatable", len(data.Symbols())).
		Str("start", cfg.StartDate).
		Str("end", cfg.EndDate).
		Msg("market data loaded")

	var factory engine.RankerFactory
	switch cfg.Ranker {
	case config.RankerRandom:
		factory = func() engine.Ranker { return randomrank.New() }
	case config.RankerMACross:
		factory = func() engine.Ranker { return macross.New() }
	}

	orch := engine.NewOrchestrator(data, factory, decimal.NewFromFloat(cfg.InitialCash), log)
	orch.EnableProgress()
	if cfg.TimelineDir != "" {
		orch.SetResultSink(timelineSink(cfg.TimelineDir, start, end, log))
	}

	rows, err := orch.Run(ctx, start, end, cfg.RiskGrid, cfg.StrategyGrid, cfg.Workers)
	if err != nil {
		log.Fatal().Err(err).Msg("backtest batch aborted")
	}
	engine.SortResults(rows)

	if cfg.OutputCSV != "" {
		if err := engine.WriteResultsCSVFile(cfg.OutputCSV, rows); err != nil {
			log.Fatal().Err(err).Msg("write results")
		}
		log.Info().Str("path", cfg.OutputCSV).Int("rows", len(rows)).Msg("results written")
	} else {
		if err := engine.WriteResultsCSV(os.Stdout, rows); err != nil {
			log.Fatal().Err(err).Msg("write results")
		}
	}
}

// timelineSink persists each run's timeline and trade logs as one JSON file
// named after the parameter combination. Runs report concurrently, so
// writes are serialized.
func timelineSink(dir string, start, end time.Time, log zerolog.Logger) func(*types.SimulationResult) {
	var mu sync.Mutex
	return func(result *types.SimulationResult) {
		mu.Lock()
		defer mu.Unlock()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error().Err(err).Msg("create timeline dir")
			return
		}
		name := runFilename(result, start, end)
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("encode run result")
			return
		}
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0o644); err != nil {
			log.Error().Err(err).Str("file", name).Msg("write run result")
		}
	}
}

func runFilename(result *types.SimulationResult, start, end time.Time) string {
	var parts []string
	for _, params := range []types.Params{result.RiskParams, result.StrategyParams} {
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			parts = append(parts, name+strconv.FormatFloat(params[name], 'g', -1, 64))
		}
	}
	parts = append(parts, start.Format(time.DateOnly)+"_to_"+end.Format(time.DateOnly))
	return fmt.Sprintf("run_%s.json", strings.Join(parts, "_"))
}
