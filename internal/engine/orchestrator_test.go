package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/PortBackRank/PortBackRank/types"
	"github.com/rs/zerolog"
)

// flakyRanker fails or panics for designated seeds so orchestrator
// isolation can be observed.
type flakyRanker struct {
	order     []string
	errSeed   float64
	panicSeed float64
}

func (r flakyRanker) Rank(_ time.Time, params types.Params, _ MarketData) ([]string, error) {
	switch params["seed"] {
	case r.errSeed:
		return nil, errors.New("ranker rejected parameters")
	case r.panicSeed:
		panic("ranker blew up")
	}
	return r.order, nil
}

func orchestratorFixture(factory RankerFactory) *Orchestrator {
	data := newFakeData(
		map[string][]types.Bar{
			"AAA": {bar(1, 10, 1000), bar(2, 12, 1000), bar(3, 9, 1000)},
			"BBB": {bar(1, 20, 1000), bar(2, 20, 1000), bar(3, 20, 1000)},
		},
		map[string]types.AssetInfo{
			"AAA": {Ticker: "AAA", Sector: "Tech"},
			"BBB": {Ticker: "BBB", Sector: "Energy"},
		},
	)
	return NewOrchestrator(data, factory, dec(1000), zerolog.Nop())
}

func testGrids() (types.Grid, types.Grid) {
	risk := types.Grid{
		"profit":          {0.1, 0.2},
		"loss":            {0.05},
		"diversification": {0.5},
	}
	strategy := types.Grid{"seed": {0, 1, 2}}
	return risk, strategy
}

func TestOrchestratorRun_OneRowPerCombination(t *testing.T) {
	orch := orchestratorFixture(func() Ranker {
		return listRanker{order: []string{"AAA", "BBB"}}
	})
	risk, strategy := testGrids()

	rows, err := orch.Run(context.Background(), day(1), day(3), risk, strategy, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("row count = %d, want 2 risk x 3 strategy = 6", len(rows))
	}

	for _, row := range rows {
		want := row.FinalCash.Add(row.PortfolioValue).Div(dec(1000)).Sub(dec(1))
		if !row.TotalReturn.Equal(want) {
			t.Errorf("row %v: total return %s, want %s", row.RiskParams, row.TotalReturn, want)
		}
	}
}

func TestOrchestratorRun_FailedRunsAreOmitted(t *testing.T) {
	orch := orchestratorFixture(func() Ranker {
		return flakyRanker{order: []string{"AAA"}, errSeed: 1, panicSeed: 2}
	})
	risk, strategy := testGrids()

	rows, err := orch.Run(context.Background(), day(1), day(3), risk, strategy, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Seeds 1 and 2 fail under both risk combinations: 6 - 4 = 2 rows.
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.StrategyParams["seed"] != 0 {
			t.Errorf("surviving row has seed %v, want 0", row.StrategyParams["seed"])
		}
	}
}

func TestOrchestratorRun_MissingRiskParamFailsRun(t *testing.T) {
	orch := orchestratorFixture(func() Ranker {
		return listRanker{order: []string{"AAA"}}
	})
	risk := types.Grid{"profit": {0.1}} // no loss, no diversification
	strategy := types.Grid{"seed": {0}}

	rows, err := orch.Run(context.Background(), day(1), day(3), risk, strategy, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("row count = %d, want 0", len(rows))
	}
}

func TestOrchestratorRun_ParallelismDoesNotChangeResults(t *testing.T) {
	factory := func() Ranker { return listRanker{order: []string{"AAA", "BBB"}} }
	risk, strategy := testGrids()

	serial, err := orchestratorFixture(factory).Run(context.Background(), day(1), day(3), risk, strategy, 1)
	if err != nil {
		t.Fatalf("serial run: %v", err)
	}
	parallel, err := orchestratorFixture(factory).Run(context.Background(), day(1), day(3), risk, strategy, 8)
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}

	SortResults(serial)
	SortResults(parallel)
	if len(serial) != len(parallel) {
		t.Fatalf("row counts differ: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if !serial[i].TotalReturn.Equal(parallel[i].TotalReturn) ||
			!serial[i].FinalCash.Equal(parallel[i].FinalCash) {
			t.Errorf("row %d differs between serial and parallel runs:\n%+v\n%+v", i, serial[i], parallel[i])
		}
	}
}

func TestOrchestratorRun_ResultSinkSeesEveryRun(t *testing.T) {
	orch := orchestratorFixture(func() Ranker {
		return listRanker{order: []string{"AAA"}}
	})
	risk, strategy := testGrids()

	var seeds []float64
	var mu sync.Mutex
	orch.SetResultSink(func(result *types.SimulationResult) {
		mu.Lock()
		defer mu.Unlock()
		seeds = append(seeds, result.StrategyParams["seed"])
	})

	if _, err := orch.Run(context.Background(), day(1), day(3), risk, strategy, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seeds) != 6 {
		t.Fatalf("sink invocations = %d, want 6", len(seeds))
	}
	sort.Float64s(seeds)
	want := []float64{0, 0, 1, 1, 2, 2}
	for i := range want {
		if seeds[i] != want[i] {
			t.Fatalf("sink seeds = %v, want %v", seeds, want)
		}
	}
}
