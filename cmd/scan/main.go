package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/artifact"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/config"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/logger"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/scanner"
)

func main() {
	network := flag.String("network", "eth_univ2", "subgraph network key (eth_univ2 or bsc_univ2)")
	minLiq := flag.Float64("min-liq-usd", 0, "minimum pool liquidity in USD (0 = config default)")
	pages := flag.Int("pages", 0, "pages to fetch (0 = config default)")
	top := flag.Int("top", 50, "rows to keep")
	out := flag.String("out", "", "JSON artifact path (default out/scan_<network>.json)")
	flag.Parse()

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	lg := logger.ForComponent("scan")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	endpoint := cfg.Subgraph(*network)
	if endpoint == "" {
		log.Fatalf("no subgraph endpoint for network %q", *network)
	}
	params := scanner.ScanParams{
		MinLiqUSD: cfg.MinLiqUSD,
		MaxPages:  cfg.MaxPages,
		PageLimit: cfg.PageLimit,
		Top:       *top,
	}
	if *minLiq > 0 {
		params.MinLiqUSD = *minLiq
	}
	if *pages > 0 {
		params.MaxPages = *pages
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := scanner.NewClient(endpoint, lg)
	pairs, err := scanner.Scan(ctx, client, params)
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}
	lg.Info().Int("pairs", len(pairs)).Str("network", *network).Msg("scan complete")

	outPath := *out
	if outPath == "" {
		outPath = fmt.Sprintf("out/scan_%s.json", *network)
	}
	if err := artifact.WriteJSON(outPath, pairs); err != nil {
		log.Fatalf("write artifact: %v", err)
	}

	for i, p := range pairs {
		if i >= 20 {
			break
		}
		fmt.Printf("%-44s %s/%s  reserveUSD=%s  score=%.4f\n", p.ID, p.Token0.Symbol, p.Token1.Symbol, p.ReserveUSD, p.Score)
	}
	fmt.Printf("wrote %s (%d pairs)\n", outPath, len(pairs))
}
