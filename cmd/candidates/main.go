package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/artifact"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/config"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/eth"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/logger"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/scanner"
)

func main() {
	chain := flag.String("chain", "eth", "chain key (eth or bsc)")
	network := flag.String("network", "eth_univ2", "subgraph network key")
	baseSymbol := flag.String("base", "WETH", "base token symbol on the subgraph")
	pages := flag.Int("pages", 3, "pages of pairs to walk")
	pageSize := flag.Int("page-size", 200, "pairs per page")
	minReserve := flag.Float64("min-reserve-usd", 25000, "minimum pool reserve in USD")
	max24h := flag.Float64("max-24h-usd", 500, "maximum 24h volume in USD (staleness filter)")
	max7d := flag.Float64("max-7d-usd", 3000, "maximum 7d volume in USD")
	minAge := flag.Float64("min-age-days", 3, "days since last activity (0 disables the check)")
	top := flag.Int("top", 50, "candidates to keep")
	out := flag.String("out", "", "JSON artifact path (default out/candidates_<chain>.json)")
	tokensOut := flag.String("tokens-out", "", "optional token list path for discover --tokens-file")
	flag.Parse()

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	lg := logger.ForComponent("candidates")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	chainCfg, ok := eth.KnownChains[*chain]
	if !ok {
		log.Fatalf("unknown chain %q", *chain)
	}
	endpoint := cfg.Subgraph(*network)
	if endpoint == "" {
		log.Fatalf("no subgraph endpoint for network %q", *network)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := scanner.NewClient(endpoint, lg)
	candidates, tokens, err := scanner.GenCandidates(ctx, client, scanner.CandidateParams{
		BaseSymbol:    *baseSymbol,
		WrappedAddr:   strings.ToLower(chainCfg.Wrapped.Hex()),
		Pages:         *pages,
		PageSize:      *pageSize,
		MinReserveUSD: *minReserve,
		Max24hUSD:     *max24h,
		Max7dUSD:      *max7d,
		MinAgeDays:    *minAge,
		Top:           *top,
	})
	if err != nil {
		log.Fatalf("candidates failed: %v", err)
	}

	outPath := *out
	if outPath == "" {
		outPath = fmt.Sprintf("out/candidates_%s.json", *chain)
	}
	if err := artifact.WriteJSON(outPath, candidates); err != nil {
		log.Fatalf("write artifact: %v", err)
	}
	if *tokensOut != "" {
		if err := os.WriteFile(*tokensOut, []byte(strings.Join(tokens, "\n")+"\n"), 0o644); err != nil {
			log.Fatalf("write token list: %v", err)
		}
	}

	for _, c := range candidates {
		fmt.Printf("%s  %s  reserve=$%.0f vol7d=$%.0f age=%.0fd score=%.2f\n", c.Pair, c.Token, c.ReserveUSD, c.Vol7d, c.AgeDays, c.Score)
	}
	fmt.Printf("wrote %s (%d candidates, %d tokens)\n", outPath, len(candidates), len(tokens))
}
