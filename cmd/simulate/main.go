package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/artifact"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/logger"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/sim"
)

func main() {
	staleRIn := flag.Float64("stale-rin", 0, "stale pool token-side reserve")
	staleROut := flag.Float64("stale-rout", 0, "stale pool base-side reserve")
	fee := flag.Float64("fee", 0.003, "pool swap fee fraction")
	activeRIn := flag.Float64("active-rin", 0, "active pool base-side reserve")
	activeROut := flag.Float64("active-rout", 0, "active pool token-side reserve")
	buyTax := flag.Float64("buy-tax", 0, "token buy tax fraction")
	sellTax := flag.Float64("sell-tax", 0, "token sell tax fraction")
	gasBase := flag.Float64("gas-base", 0, "flat gas cost in base asset")
	slipBps := flag.Float64("slip-bps", 0, "slippage haircut in bps of size")
	grid := flag.String("grid", "1e3,1e4", "comma-separated trade sizes (scientific notation ok)")
	out := flag.String("out", "", "JSON artifact path (default out/sim_<ts>.json)")
	parquetOut := flag.String("parquet", "", "optional parquet artifact path")
	flag.Parse()

	if *staleRIn == 0 || *staleROut == 0 || *activeRIn == 0 || *activeROut == 0 {
		log.Fatal("Usage: simulate --stale-rin --stale-rout --active-rin --active-rout [--fee --buy-tax --sell-tax --gas-base --slip-bps --grid --out --parquet]")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))

	sizes, err := sim.ParseGrid(*grid)
	if err != nil {
		log.Fatalf("bad grid: %v", err)
	}

	engine := sim.NewEngine(logger.ForComponent("sim"))
	results, err := engine.Simulate(
		sim.Pool{RIn: *activeRIn, ROut: *activeROut, Fee: *fee},
		sim.Pool{RIn: *staleRIn, ROut: *staleROut, Fee: *fee},
		sim.TaxProfile{BuyTax: *buyTax, SellTax: *sellTax},
		*gasBase, *slipBps, sizes,
	)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	outPath := *out
	if outPath == "" {
		outPath = fmt.Sprintf("out/sim_%d.json", time.Now().Unix())
	}
	if err := artifact.WriteJSON(outPath, results); err != nil {
		log.Fatalf("write artifact: %v", err)
	}
	if *parquetOut != "" {
		if err := sim.WriteParquet(*parquetOut, results); err != nil {
			log.Fatalf("write parquet: %v", err)
		}
	}

	fmt.Printf("%-14s %-14s %-14s %-14s %-12s\n", "size", "cost", "proceeds", "netPnl", "edgeBps")
	for _, r := range results {
		if r.Err != "" {
			fmt.Printf("%-14g degraded: %s\n", r.Size, r.Err)
			continue
		}
		fmt.Printf("%-14g %-14.6f %-14.6f %-14.6f %-12.2f\n", r.Size, r.CostOnActive, r.ProceedsOnStale, r.NetPnl, r.EdgeBps)
	}
	if best, ok := sim.Best(results); ok {
		fmt.Printf("\nBest size %g with pnl %.6f (%.2f bps)\n", best.Size, best.NetPnl, best.EdgeBps)
	}
	fmt.Printf("wrote %s\n", outPath)
}
