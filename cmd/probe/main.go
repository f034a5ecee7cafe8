package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/config"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/eth"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/logger"
	"github.com/Rau1CS/oldgold-taxaware-bot/internal/tax"
)

func main() {
	chain := flag.String("chain", "eth", "chain key (eth or bsc)")
	token := flag.String("token", "", "token address to probe")
	dust := flag.Float64("dust", 0, "dust size in base asset (0 = config default)")
	fee := flag.Float64("fee", 0.003, "pool swap fee fraction")
	cachePath := flag.String("cache", "out/tax_cache.db", "sqlite cache path")
	ttl := flag.Duration("ttl", 6*time.Hour, "cache entry TTL")
	flag.Parse()

	if *token == "" {
		log.Fatal("Usage: probe --chain <eth|bsc> --token <address> [--dust --fee --cache --ttl]")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	lg := logger.ForComponent("probe")

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

	cache, err := tax.NewCacheDB(*cachePath)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	addr := common.HexToAddress(*token)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, hit := cache.Get(*chain, addr, chainCfg.Router, *ttl)
	if hit {
		lg.Info().Str("token", *token).Msg("cache hit")
	} else {
		client, err := eth.NewClient(rpcURL)
		if err != nil {
			log.Fatalf("rpc dial: %v", err)
		}
		defer client.Close()

		prober, err := tax.NewProber(client, chainCfg, lg)
		if err != nil {
			log.Fatalf("prober: %v", err)
		}
		probed, err := prober.Probe(ctx, addr, dustBase, *fee)
		if err != nil {
			log.Fatalf("probe failed: %v", err)
		}
		if err := cache.Put(*chain, probed); err != nil {
			lg.Warn().Err(err).Msg("cache write failed")
		}
		result = &probed
	}

	enc, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(enc))
}
