// Package rank runs the probe→simulate→decide pipeline over discover
// output and produces the final GO/NO-GO table.
package rank

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/discover"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/planner"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/sim"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/tax"
)

// TaxSource measures (or recalls) the tax profile of a token. The CLI
// wires a cache-first prober here; tests pass literal fixtures.
type TaxSource func(ctx context.Context, token common.Address) (tax.ProbeResult, error)

// Row is one ranked candidate with measured taxes and a verdict.
type Row struct {
	Token        string   `json:"token"`
	StalePair    string   `json:"stale_pair"`
	ActivePair   string   `json:"active_pair"`
	EdgeBps      float64  `json:"edge_bps"`
	BuyTax       float64  `json:"buy_tax"`
	SellTax      float64  `json:"sell_tax"`
	HoneypotBuy  bool     `json:"honeypot_buy"`
	HoneypotSell bool     `json:"honeypot_sell"`
	GasBase      float64  `json:"gas_base"`
	BestSize     float64  `json:"best_size"`
	BestPnl      float64  `json:"best_pnl"`
	Decision     string   `json:"decision"`
	Reasons      []string `json:"reasons,omitempty"`
}

// Params bound one rank run. GasBase of zero falls back to each row's
// discover-time estimate.
type Params struct {
	Fee     float64
	SlipBps float64
	GasBase float64
	Grid    []float64
	Limits  planner.Limits
	Top     int
}

// Rank probes the top discover rows, re-simulates with measured taxes
// and applies the planner limits. A failed probe is treated as a
// honeypot on both sides, never as tax-free.
func Rank(ctx context.Context, rows []discover.Row, taxes TaxSource, engine *sim.Engine, p Params, log zerolog.Logger) []Row {
	if p.Top > 0 && len(rows) > p.Top {
		rows = rows[:p.Top]
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		token := common.HexToAddress(r.Token)
		log.Info().Str("token", r.Token).Msg("probing")

		probe, err := taxes(ctx, token)
		if err != nil {
			log.Warn().Str("token", r.Token).Err(err).Msg("probe failed, assuming honeypot")
			probe = tax.ProbeResult{Token: token, HoneypotBuy: true, HoneypotSell: true}
		}

		gas := p.GasBase
		if gas == 0 {
			gas = r.GasBaseEst
		}

		profile := sim.TaxProfile{BuyTax: probe.BuyTaxEst, SellTax: probe.SellTaxEst}
		row := Row{
			Token:        r.Token,
			StalePair:    r.StalePair,
			ActivePair:   r.ActivePair,
			EdgeBps:      r.EdgeBps,
			BuyTax:       probe.BuyTaxEst,
			SellTax:      probe.SellTaxEst,
			HoneypotBuy:  probe.HoneypotBuy,
			HoneypotSell: probe.HoneypotSell,
			GasBase:      gas,
			Decision:     planner.NoGo,
		}

		results, err := engine.Simulate(
			sim.Pool{RIn: r.ActiveRIn, ROut: r.ActiveROut, Fee: p.Fee},
			sim.Pool{RIn: r.StaleRIn, ROut: r.StaleROut, Fee: p.Fee},
			profile, gas, p.SlipBps, p.Grid,
		)
		if err != nil {
			log.Warn().Str("token", r.Token).Err(err).Msg("sweep failed")
			row.Reasons = append(row.Reasons, "sweep_failed")
			out = append(out, row)
			continue
		}
		best, ok := sim.Best(results)
		if !ok {
			row.Reasons = append(row.Reasons, "no_valid_grid_point")
			out = append(out, row)
			continue
		}

		decision := planner.Decide(best, profile, probe.HoneypotBuy, probe.HoneypotSell, p.Limits)
		row.BestSize = best.Size
		row.BestPnl = best.NetPnl
		row.Decision = decision.Verdict
		row.Reasons = decision.Reasons
		out = append(out, row)
	}
	return out
}
