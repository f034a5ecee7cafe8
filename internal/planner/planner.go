// Package planner turns a ranked sweep into a binary go/no-go call.
// It reads NetPnl and EdgeBps off the top result untouched; the sweep
// itself is never recomputed here.
package planner

import (
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/sim"
)

// Decision verdict strings, matching the ranked artifact format.
const (
	Go   = "GO"
	NoGo = "NO-GO"
)

// Limits are the acceptance thresholds applied to a probed candidate.
type Limits struct {
	MinPnl     float64
	MinEdgeBps float64
	MaxBuyTax  float64
	MaxSellTax float64
}

// Decision is the planner output for one candidate.
type Decision struct {
	Verdict string   `json:"decision"`
	Size    float64  `json:"size"`
	NetPnl  float64  `json:"netPnl"`
	EdgeBps float64  `json:"edgeBps"`
	Reasons []string `json:"reasons,omitempty"`
}

// Decide applies the limits to the ranked top result and the measured
// tax profile. Any recorded reason forces NO-GO and a zero size.
func Decide(top sim.Result, taxes sim.TaxProfile, honeypotBuy, honeypotSell bool, lim Limits) Decision {
	var reasons []string
	if honeypotBuy {
		reasons = append(reasons, "honeypot_buy")
	}
	if honeypotSell {
		reasons = append(reasons, "honeypot_sell")
	}
	if taxes.BuyTax > lim.MaxBuyTax {
		reasons = append(reasons, "buy_tax_high")
	}
	if taxes.SellTax > lim.MaxSellTax {
		reasons = append(reasons, "sell_tax_high")
	}
	if top.NetPnl < lim.MinPnl {
		reasons = append(reasons, "pnl_below_min")
	}
	if top.EdgeBps < lim.MinEdgeBps {
		reasons = append(reasons, "edge_below_min")
	}

	d := Decision{
		Verdict: Go,
		Size:    top.Size,
		NetPnl:  top.NetPnl,
		EdgeBps: top.EdgeBps,
		Reasons: reasons,
	}
	if len(reasons) > 0 {
		d.Verdict = NoGo
		d.Size = 0
	}
	return d
}
