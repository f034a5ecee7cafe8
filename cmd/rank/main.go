package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/artifact"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/config"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/discover"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/eth"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/logger"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/planner"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/rank"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/sim"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/tax"
)

func main() {
	chain := flag.String("chain", "eth", "chain key (eth or bsc)")
	infile := flag.String("infile", "", "discover artifact to rank")
	fee := flag.Float64("fee", 0.003, "pool swap fee fraction")
	slipBps := flag.Float64("slip-bps", 20, "slippage haircut in bps of size")
	grid := flag.String("grid", "0.05,0.1,0.25,0.5,1,2", "trade size grid in base asset")
	gasBase := flag.Float64("gas-base", 0, "flat gas cost override (0 = per-row discover estimate)")
	dust := flag.Float64("dust", 0, "probe dust size in base asset (0 = config default)")
	cachePath := flag.String("cache", "out/tax_cache.db", "sqlite tax cache path")
	ttl := flag.Duration("ttl", 6*time.Hour, "tax cache TTL")
	top := flag.Int("top", 10, "rows to rank")
	out := flag.String("out", "", "JSON artifact path (default out/ranked_<chain>.json)")
	flag.Parse()

	if *infile == "" {
		log.Fatal("Usage: rank --chain <eth|bsc> --infile <discover.json> [--top --fee --slip-bps --grid --out]")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	lg := logger.ForComponent("rank")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	chainCfg, ok := eth.KnownChains[*chain]
	if !ok {
		log.Fatalf("unknown chain %q", *chain)
	}
	rpcURL, err := cfg.RPC(*chain)
	if err != nil {
		log.Fatal(err)
	}
	dustBase := cfg.DustBase
	if *dust > 0 {
		dustBase = *dust
	}

	var rows []discover.Row
	if err := artifact.ReadJSON(*infile, &rows); err != nil {
		log.Fatalf("read %s: %v", *infile, err)
	}

	sizes, err := sim.ParseGrid(*grid)
	if err != nil {
		log.Fatalf("bad grid: %v", err)
	}

	client, err := eth.NewClient(rpcURL)
	if err != nil {
		log.Fatalf("rpc dial: %v", err)
	}
	defer client.Close()

	prober, err := tax.NewProber(client, chainCfg, lg)
	if err != nil {
		log.Fatalf("prober: %v", err)
	}
	cache, err := tax.NewCacheDB(*cachePath)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	// cache-first tax source
	taxes := func(ctx context.Context, token common.Address) (tax.ProbeResult, error) {
		if hit, ok := cache.Get(*chain, token, chainCfg.Router, *ttl); ok {
			return *hit, nil
		}
		r, err := prober.Probe(ctx, token, dustBase, *fee)
		if err != nil {
			return tax.ProbeResult{}, err
		}
		if perr := cache.Put(*chain, r); perr != nil {
			lg.Warn().Err(perr).Msg("cache write failed")
		}
		return r, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ranked := rank.Rank(ctx, rows, taxes, sim.NewEngine(lg), rank.Params{
		Fee:     *fee,
		SlipBps: *slipBps,
		GasBase: *gasBase,
		Grid:    sizes,
		Limits: planner.Limits{
			MinPnl:     cfg.MinPnlBase,
			MinEdgeBps: cfg.MinEdgeBps,
			MaxBuyTax:  cfg.MaxTaxBuy,
			MaxSellTax: cfg.MaxTaxSell,
		},
		Top: *top,
	}, lg)

	outPath := *out
	if outPath == "" {
		outPath = fmt.Sprintf("out/ranked_%s.json", *chain)
	}
	if err := artifact.WriteJSON(outPath, ranked); err != nil {
		log.Fatalf("write artifact: %v", err)
	}

	for _, r := range ranked {
		line := fmt.Sprintf("%-6s %s  tax=%.1f%%/%.1f%%  size=%g pnl=%.6f", r.Decision, r.Token, r.BuyTax*100, r.SellTax*100, r.BestSize, r.BestPnl)
		if len(r.Reasons) > 0 {
			line += " [" + strings.Join(r.Reasons, ",") + "]"
		}
		fmt.Println(line)
	}
	fmt.Printf("wrote %s (%d rows)\n", outPath, len(ranked))
}
