// Package discover screens tokens for mispriced stale pools without
// spending funds: read reserves, compare mid prices, sweep a small
// no-tax grid, keep what clears the edge and gas hurdles.
package discover

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/eth"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/sim"
)

// Narrow collaborators so the screen runs against literal fixtures in
// tests and live chain/subgraph sources in the CLI.
type (
	// ReserveSource resolves the pair for tokenIn→tokenOut and returns
	// oriented reserves.
	ReserveSource func(ctx context.Context, tokenIn, tokenOut common.Address) (eth.PairReserves, error)

	// ActivePoolSource returns the deepest pool address trading
	// token/base, or the zero address when none is known.
	ActivePoolSource func(ctx context.Context, token, base common.Address) (common.Address, error)

	// ReservesAt reads oriented reserves from a known pair address.
	ReservesAt func(ctx context.Context, pair, tokenIn common.Address) (eth.PairReserves, error)
)

// Row is one surviving candidate, with everything rank needs downstream.
type Row struct {
	Token         string  `json:"token"`
	Base          string  `json:"base"`
	StalePair     string  `json:"stale_pair"`
	ActivePair    string  `json:"active_pair"`
	StaleRIn      float64 `json:"stale_rin"`
	StaleROut     float64 `json:"stale_rout"`
	ActiveRIn     float64 `json:"active_rin"`
	ActiveROut    float64 `json:"active_rout"`
	PStale        float64 `json:"p_stale"`
	PActive       float64 `json:"p_active"`
	EdgeBps       float64 `json:"edge_bps"`
	GasBaseEst    float64 `json:"gas_base_est"`
	BestNoTax     float64 `json:"best_no_tax"`
	BestSizeNoTax float64 `json:"best_size_no_tax"`
}

// Params bound one discover run. Grid sizes are base-asset amounts.
type Params struct {
	MinEdgeBps float64
	Fee        float64
	Grid       []float64
	GasBase    float64
	Top        int
}

// Screener wires the collaborators to the sweep engine.
type Screener struct {
	staleSource  ReserveSource
	activeLookup ActivePoolSource
	reservesAt   ReservesAt
	engine       *sim.Engine
	log          zerolog.Logger
}

func NewScreener(stale ReserveSource, active ActivePoolSource, reservesAt ReservesAt, engine *sim.Engine, log zerolog.Logger) *Screener {
	return &Screener{
		staleSource:  stale,
		activeLookup: active,
		reservesAt:   reservesAt,
		engine:       engine,
		log:          log,
	}
}

// Discover screens each token and returns the survivors ranked by edge.
// Per-token failures are logged and skipped; one bad token never kills
// the batch.
func (s *Screener) Discover(ctx context.Context, tokens []common.Address, base common.Address, p Params) []Row {
	rows := make([]Row, 0, len(tokens))
	for _, token := range tokens {
		row, ok := s.screenToken(ctx, token, base, p)
		if ok {
			rows = append(rows, row)
		}
	}
	sortRowsByEdge(rows)
	if p.Top > 0 && len(rows) > p.Top {
		rows = rows[:p.Top]
	}
	return rows
}

func (s *Screener) screenToken(ctx context.Context, token, base common.Address, p Params) (Row, bool) {
	// stale side: sell token→base
	stale, err := s.staleSource(ctx, token, base)
	if err != nil {
		s.log.Warn().Str("token", token.Hex()).Err(err).Msg("discover skip: stale pair")
		return Row{}, false
	}

	// active side: buy base→token on the deepest pool, falling back to
	// the stale pair itself
	activeAddr, err := s.activeLookup(ctx, token, base)
	if err != nil || activeAddr == (common.Address{}) {
		activeAddr = stale.Address
	}
	active, err := s.reservesAt(ctx, activeAddr, base)
	if err != nil {
		s.log.Warn().Str("token", token.Hex()).Err(err).Msg("discover skip: active reserves")
		return Row{}, false
	}

	if stale.RIn <= 0 || stale.ROut <= 0 || active.RIn <= 0 || active.ROut <= 0 {
		return Row{}, false
	}

	// mid prices of the token in base terms
	pStale := stale.ROut / stale.RIn
	pActive := active.RIn / active.ROut
	if pStale <= 0 || pActive <= 0 {
		return Row{}, false
	}
	edgeBps := 1e4 * (pStale/pActive - 1.0)
	if edgeBps < p.MinEdgeBps {
		return Row{}, false
	}

	// no-tax sweep to see whether the edge survives pool depth and gas
	results, err := s.engine.Simulate(
		sim.Pool{RIn: active.RIn, ROut: active.ROut, Fee: p.Fee},
		sim.Pool{RIn: stale.RIn, ROut: stale.ROut, Fee: p.Fee},
		sim.TaxProfile{}, p.GasBase, 0, p.Grid,
	)
	if err != nil {
		s.log.Warn().Str("token", token.Hex()).Err(err).Msg("discover skip: sweep")
		return Row{}, false
	}
	best, ok := sim.Best(results)
	if !ok {
		return Row{}, false
	}
	// pnl must beat gas with room to spare
	if best.NetPnl < p.GasBase*1.2 {
		return Row{}, false
	}

	return Row{
		Token:         token.Hex(),
		Base:          base.Hex(),
		StalePair:     stale.Address.Hex(),
		ActivePair:    activeAddr.Hex(),
		StaleRIn:      stale.RIn,
		StaleROut:     stale.ROut,
		ActiveRIn:     active.RIn,
		ActiveROut:    active.ROut,
		PStale:        pStale,
		PActive:       pActive,
		EdgeBps:       edgeBps,
		GasBaseEst:    p.GasBase,
		BestNoTax:     best.NetPnl,
		BestSizeNoTax: best.Size,
	}, true
}

func sortRowsByEdge(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].EdgeBps > rows[j].EdgeBps })
}
