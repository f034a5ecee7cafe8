package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/eth"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/sim"
)

var (
	baseAddr   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	goodToken  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	flatToken  = common.HexToAddress("0x1000000000000000000000000000000000000002")
	brokeToken = common.HexToAddress("0x1000000000000000000000000000000000000003")

	stalePairAddr  = common.HexToAddress("0x2000000000000000000000000000000000000001")
	activePairAddr = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

// fixture book: goodToken is 5x cheaper on the active pool, flatToken
// trades at the same price everywhere, brokeToken has no pair at all
func fixtureSources() (ReserveSource, ActivePoolSource, ReservesAt) {
	staleBook := map[common.Address]eth.PairReserves{
		goodToken: {Address: stalePairAddr, RIn: 1e5, ROut: 500},  // token 5e-3 base
		flatToken: {Address: stalePairAddr, RIn: 1e6, ROut: 1000}, // token 1e-3 base
	}
	activeBook := map[common.Address]eth.PairReserves{
		activePairAddr: {Address: activePairAddr, RIn: 1000, ROut: 1e6}, // token 1e-3 base
	}

	stale := func(ctx context.Context, tokenIn, tokenOut common.Address) (eth.PairReserves, error) {
		r, ok := staleBook[tokenIn]
		if !ok {
			return eth.PairReserves{}, errors.New("no pair")
		}
		return r, nil
	}
	active := func(ctx context.Context, token, base common.Address) (common.Address, error) {
		return activePairAddr, nil
	}
	reservesAt := func(ctx context.Context, pair, tokenIn common.Address) (eth.PairReserves, error) {
		r, ok := activeBook[pair]
		if !ok {
			return eth.PairReserves{}, errors.New("unknown pair")
		}
		return r, nil
	}
	return stale, active, reservesAt
}

func fixtureScreener() *Screener {
	stale, active, reservesAt := fixtureSources()
	return NewScreener(stale, active, reservesAt, sim.NewEngine(zerolog.Nop()), zerolog.Nop())
}

func fixtureParams() Params {
	return Params{
		MinEdgeBps: 50,
		Fee:        0.003,
		Grid:       []float64{0.1, 1, 10},
		GasBase:    0.002,
	}
}

func TestDiscoverKeepsEdge(t *testing.T) {
	rows := fixtureScreener().Discover(context.Background(),
		[]common.Address{goodToken}, baseAddr, fixtureParams())
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Token != goodToken.Hex() {
		t.Errorf("token = %s", r.Token)
	}
	if r.StalePair != stalePairAddr.Hex() || r.ActivePair != activePairAddr.Hex() {
		t.Errorf("pair wiring wrong: %+v", r)
	}
	// 5e-3 vs 1e-3 mid prices is a 4e4 bps edge
	if r.EdgeBps < 3.9e4 || r.EdgeBps > 4.1e4 {
		t.Errorf("EdgeBps = %v, want ~4e4", r.EdgeBps)
	}
	if r.BestNoTax <= 0 || r.BestSizeNoTax <= 0 {
		t.Errorf("no profitable no-tax point recorded: %+v", r)
	}
}

func TestDiscoverDropsFlatAndBrokenTokens(t *testing.T) {
	rows := fixtureScreener().Discover(context.Background(),
		[]common.Address{flatToken, goodToken, brokeToken}, baseAddr, fixtureParams())
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want only the token with an edge", len(rows))
	}
	if rows[0].Token != goodToken.Hex() {
		t.Errorf("survivor = %s, want %s", rows[0].Token, goodToken.Hex())
	}
}

func TestDiscoverTopCap(t *testing.T) {
	p := fixtureParams()
	p.Top = 0
	rows := fixtureScreener().Discover(context.Background(),
		[]common.Address{goodToken}, baseAddr, p)
	if len(rows) != 1 {
		t.Fatalf("Top=0 must mean uncapped, got %d rows", len(rows))
	}
}

func TestDiscoverFallsBackToStalePair(t *testing.T) {
	stale, _, _ := fixtureSources()
	// active lookup knows nothing; reserves come from the stale pair
	noActive := func(ctx context.Context, token, base common.Address) (common.Address, error) {
		return common.Address{}, nil
	}
	reservesAt := func(ctx context.Context, pair, tokenIn common.Address) (eth.PairReserves, error) {
		if pair != stalePairAddr {
			return eth.PairReserves{}, errors.New("unexpected pair")
		}
		// base-in orientation of the same stale pool
		return eth.PairReserves{Address: stalePairAddr, RIn: 500, ROut: 1e5}, nil
	}
	s := NewScreener(stale, noActive, reservesAt, sim.NewEngine(zerolog.Nop()), zerolog.Nop())

	// same pool on both legs means zero edge, so the token is dropped,
	// but only after the fallback resolved reserves without error
	rows := s.Discover(context.Background(), []common.Address{goodToken}, baseAddr, fixtureParams())
	if len(rows) != 0 {
		t.Fatalf("same-pool roundtrip should not survive the edge filter: %+v", rows)
	}
}
