// Package sim sweeps an arbitrage strategy over a grid of trade sizes:
// buy the token on the active pool, sell it into the stale pool, net out
// gas and slippage, rank by profit.
package sim

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/amm"
	"github.com/rs/zerolog"
)

// Engine evaluates sweeps. It owns all Result construction; the math it
// leans on lives in package amm and is stateless.
type Engine struct {
	log zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// Simulate evaluates every grid point and returns results ranked by
// descending NetPnl, ties broken by larger Size. Grid points are
// independent, so they run on a bounded worker pool; the merge is a
// stable sort so evaluation order never shows in the output. Degraded
// points (per-point math failures) are logged, kept after the ranked
// entries, and never abort the sweep.
func (e *Engine) Simulate(active, stale Pool, taxes TaxProfile, gasBase, slipBps float64, grid []float64) ([]Result, error) {
	if err := checkGrid(grid); err != nil {
		return nil, err
	}
	if err := validateParams(active, stale, taxes, gasBase, slipBps); err != nil {
		return nil, err
	}

	results := make([]Result, len(grid))
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for i, size := range grid {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, size float64) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = evalPoint(active, stale, taxes, gasBase, slipBps, size)
		}(i, size)
	}
	wg.Wait()

	ranked := make([]Result, 0, len(results))
	degraded := make([]Result, 0)
	for _, r := range results {
		if r.Err != "" {
			e.log.Warn().Float64("size", r.Size).Str("err", r.Err).Msg("degraded grid point")
			degraded = append(degraded, r)
			continue
		}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].NetPnl != ranked[j].NetPnl {
			return ranked[i].NetPnl > ranked[j].NetPnl
		}
		return ranked[i].Size > ranked[j].Size
	})
	return append(ranked, degraded...), nil
}

// evalPoint prices a single trade size. Pure: same inputs, same Result.
func evalPoint(active, stale Pool, taxes TaxProfile, gasBase, slipBps, size float64) Result {
	r := Result{
		Size:         size,
		CostOnActive: size,
		GasCost:      gasBase,
		SlippageCost: size * slipBps / 1e4,
	}

	tokens, err := amm.AmountOutWithTax(active.RIn, active.ROut, active.Fee, size, taxes.BuyTax)
	if err != nil {
		r.Err = err.Error()
		return r
	}
	r.TokensBought = tokens

	// a near-total buy tax leaves nothing to sell; the loss is the full
	// cost side, not an error
	if tokens > 0 {
		proceeds, err := amm.ProceedsWithTax(stale.RIn, stale.ROut, stale.Fee, tokens, taxes.SellTax)
		if err != nil {
			r.Err = err.Error()
			return r
		}
		r.ProceedsOnStale = proceeds
	}

	r.NetPnl = r.ProceedsOnStale - r.CostOnActive - r.GasCost - r.SlippageCost
	// grid positivity guarantees a non-zero denominator
	r.EdgeBps = r.NetPnl / r.CostOnActive * 1e4
	return r
}

func validateParams(active, stale Pool, taxes TaxProfile, gasBase, slipBps float64) error {
	for _, p := range []Pool{active, stale} {
		if p.RIn <= 0 || p.ROut <= 0 {
			return fmt.Errorf("%w: pool reserves must be positive", amm.ErrInvalidInput)
		}
		if p.Fee < 0 || p.Fee >= 1 {
			return fmt.Errorf("%w: pool fee %g outside [0,1)", amm.ErrInvalidInput, p.Fee)
		}
	}
	for _, t := range []float64{taxes.BuyTax, taxes.SellTax} {
		if t < 0 || t >= 1 {
			return fmt.Errorf("%w: tax %g outside [0,1)", amm.ErrInvalidInput, t)
		}
	}
	if gasBase < 0 || slipBps < 0 {
		return fmt.Errorf("%w: gasBase and slipBps must be non-negative", amm.ErrInvalidInput)
	}
	return nil
}

// Best returns the top-ranked non-degraded entry. It is returned even
// when every point lost money; acting on it is the planner's call.
func Best(results []Result) (Result, bool) {
	for _, r := range results {
		if r.Err == "" {
			return r, true
		}
	}
	return Result{}, false
}
