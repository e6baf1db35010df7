package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/PortBackRank/PortBackRank/types"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

// Orchestrator expands a risk-parameter grid against a strategy-parameter
// grid and runs one independent simulation per combination. Runs share
// nothing but the read-only market data snapshot, so no locking happens
// during the parallel phase.
type Orchestrator struct {
	data        MarketData
	newRanker   RankerFactory
	initialCash decimal.Decimal
	log         zerolog.Logger

	progress bool
	sink     func(*types.SimulationResult)
}

func NewOrchestrator(data MarketData, factory RankerFactory, initialCash decimal.Decimal, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		data:        data,
		newRanker:   factory,
		initialCash: initialCash,
		log:         log,
	}
}

// EnableProgress renders a progress bar across the batch.
func (o *Orchestrator) EnableProgress() {
	o.progress = true
}

// SetResultSink registers a callback invoked with every successful run's
// full SimulationResult, e.g. to persist timelines. The callback is called
// from worker goroutines and must be safe for concurrent use.
func (o *Orchestrator) SetResultSink(sink func(*types.SimulationResult)) {
	o.sink = sink
}

// Run executes the Cartesian product of both grids on a fixed-size worker
// pool and returns one row per non-failed combination. A failed run is
// logged with its parameter combination and omitted; it never aborts the
// batch. Row order is not submission order; each row is internally
// consistent. workers <= 0 means one worker per CPU.
func (o *Orchestrator) Run(ctx context.Context, start, end time.Time, riskGrid, strategyGrid types.Grid, workers int) ([]types.ResultRow, error) {
	riskCombos := ExpandGrid(riskGrid)
	strategyCombos := ExpandGrid(strategyGrid)
	total := len(riskCombos) * len(strategyCombos)
	if total == 0 {
		return nil, nil
	}

	type job struct {
		risk     types.Params
		strategy types.Params
	}
	jobs := make(chan job, total)
	for _, risk := range riskCombos {
		for _, strategy := range strategyCombos {
			jobs <- job{risk: risk, strategy: strategy}
		}
	}
	close(jobs)

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}

	var bar *progressbar.ProgressBar
	if o.progress {
		bar = initProgressBar(total)
	}

	rows := make(chan types.ResultRow, total)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobs {
				if ctx.Err() != nil {
					continue
				}
				row, err := o.runOne(start, end, jb.risk, jb.strategy)
				if err != nil {
					o.log.Error().
						Err(err).
						Interface("risk", jb.risk).
						Interface("strategy", jb.strategy).
						Msg("simulation failed")
				} else {
					rows <- row
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	close(rows)

	out := make([]types.ResultRow, 0, total)
	for row := range rows {
		out = append(out, row)
	}
	return out, ctx.Err()
}

// runOne executes a single combination with panic isolation: an unexpected
// panic inside one run is converted to an error so sibling runs continue.
func (o *Orchestrator) runOne(start, end time.Time, risk, strategy types.Params) (row types.ResultRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simulation panicked: %v", r)
		}
	}()

	cfg, err := RiskConfigFromParams(risk)
	if err != nil {
		return types.ResultRow{}, err
	}

	sim := NewSimulator(cfg, o.newRanker(), o.data)
	result, err := sim.Run(start, end, strategy, o.initialCash)
	if err != nil {
		return types.ResultRow{}, err
	}
	if o.sink != nil {
		o.sink(result)
	}

	value := decimal.Zero
	for _, lot := range result.Portfolio {
		value = value.Add(lot.Cost())
	}
	totalReturn := result.FinalCash.Add(value).Div(o.initialCash).Sub(decimal.NewFromInt(1))

	return types.ResultRow{
		RiskParams:     risk.Clone(),
		StrategyParams: strategy.Clone(),
		FinalCash:      result.FinalCash,
		PortfolioValue: value,
		TotalReturn:    totalReturn,
	}, nil
}

func initProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Running simulations..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
