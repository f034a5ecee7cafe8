package main

import (
	"bufio"
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
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/scanner"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/sim"
)

func main() {
	chain := flag.String("chain", "eth", "chain key (eth or bsc)")
	network := flag.String("network", "eth_univ2", "subgraph network key for active-pool lookup")
	base := flag.String("base", "", "base token address (default chain wrapped native)")
	tokens := flag.String("tokens", "", "comma-separated token addresses")
	tokensFile := flag.String("tokens-file", "", "file with one token address per line")
	minEdgeBps := flag.Float64("min-edge-bps", 50, "minimum mid-price edge in bps")
	fee := flag.Float64("fee", 0.003, "pool swap fee fraction")
	grid := flag.String("grid", "0.05,0.1,0.25,0.5,1,2", "trade size grid in base asset")
	gasBase := flag.Float64("gas-base", 0, "flat gas cost override in base asset (0 = estimate from RPC)")
	top := flag.Int("top", 25, "rows to keep")
	out := flag.String("out", "", "JSON artifact path (default out/discover_<chain>.json)")
	flag.Parse()

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	lg := logger.ForComponent("discover")

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

	tokenAddrs, err := loadTokens(*tokens, *tokensFile)
	if err != nil {
		log.Fatal(err)
	}
	if len(tokenAddrs) == 0 {
		log.Fatal("Usage: discover --tokens <a,b,...> | --tokens-file <path>")
	}

	sizes, err := sim.ParseGrid(*grid)
	if err != nil {
		log.Fatalf("bad grid: %v", err)
	}

	baseAddr := chainCfg.Wrapped
	if *base != "" {
		baseAddr = common.HexToAddress(*base)
	}

	client, err := eth.NewClient(rpcURL)
	if err != nil {
		log.Fatalf("rpc dial: %v", err)
	}
	defer client.Close()

	pairs, err := eth.NewPairSource(client, chainCfg)
	if err != nil {
		log.Fatalf("pair source: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	gas := *gasBase
	if gas == 0 {
		gas = eth.EstimateGasBase(ctx, client, cfg.GasUnitsApprove, cfg.GasUnitsSwap)
		lg.Info().Float64("gas_base", gas).Msg("estimated gas")
	}

	// deepest-pool lookup goes through the subgraph when one is
	// configured; otherwise the screen falls back to the stale pair
	activeLookup := func(ctx context.Context, token, base common.Address) (common.Address, error) {
		return common.Address{}, nil
	}
	if endpoint := cfg.Subgraph(*network); endpoint != "" {
		sg := scanner.NewClient(endpoint, lg)
		activeLookup = func(ctx context.Context, token, base common.Address) (common.Address, error) {
			id, err := scanner.ActivePoolForToken(ctx, sg, token.Hex(), base.Hex())
			if err != nil || id == "" {
				return common.Address{}, err
			}
			return common.HexToAddress(id), nil
		}
	}

	screener := discover.NewScreener(pairs.GetPair, activeLookup, pairs.Reserves, sim.NewEngine(lg), lg)
	rows := screener.Discover(ctx, tokenAddrs, baseAddr, discover.Params{
		MinEdgeBps: *minEdgeBps,
		Fee:        *fee,
		Grid:       sizes,
		GasBase:    gas,
		Top:        *top,
	})

	outPath := *out
	if outPath == "" {
		outPath = fmt.Sprintf("out/discover_%s.json", *chain)
	}
	if err := artifact.WriteJSON(outPath, rows); err != nil {
		log.Fatalf("write artifact: %v", err)
	}

	for _, r := range rows {
		fmt.Printf("%s  edge=%.1fbps  bestPnl=%.6f at size %g\n", r.Token, r.EdgeBps, r.BestNoTax, r.BestSizeNoTax)
	}
	fmt.Printf("wrote %s (%d rows)\n", outPath, len(rows))
}

func loadTokens(list, file string) ([]common.Address, error) {
	seen := make(map[common.Address]bool)
	var addrs []common.Address
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || strings.HasPrefix(s, "#") {
			return
		}
		a := common.HexToAddress(s)
		if !seen[a] {
			seen[a] = true
			addrs = append(addrs, a)
		}
	}
	for _, s := range strings.Split(list, ",") {
		add(s)
	}
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("tokens file: %w", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			add(sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return addrs, nil
}
