package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment. Values have sane
// defaults so the offline commands (simulate) run with no .env at all.
type Config struct {
	// RPC endpoints per chain key
	RPCEth string
	RPCBsc string

	// Subgraph endpoints per network key
	SubgraphEthUniV2 string
	SubgraphBscV2    string

	// Scan thresholds
	MinLiqUSD float64
	MaxPages  int
	PageLimit int

	// Gas model (units, flat)
	GasUnitsApprove uint64
	GasUnitsSwap    uint64

	// Planner limits
	MinPnlBase float64
	MinEdgeBps float64
	MaxTaxBuy  float64
	MaxTaxSell float64

	// Tax probe
	DustBase float64
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RPCEth:           os.Getenv("RPC_ETH"),
		RPCBsc:           os.Getenv("RPC_BSC"),
		SubgraphEthUniV2: envOr("SUBGRAPH_ETH_UNIV2", "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v2"),
		SubgraphBscV2:    os.Getenv("SUBGRAPH_BSC_UNIV2"),
	}

	var err error
	if cfg.MinLiqUSD, err = envFloat("OG_MIN_LIQ_USD", 10000); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = envInt("OG_MAX_PAGES", 5); err != nil {
		return nil, err
	}
	if cfg.PageLimit, err = envInt("OG_LIMIT", 200); err != nil {
		return nil, err
	}
	if cfg.GasUnitsApprove, err = envUint("GAS_UNITS_APPROVE", 50000); err != nil {
		return nil, err
	}
	if cfg.GasUnitsSwap, err = envUint("GAS_UNITS_SWAP", 200000); err != nil {
		return nil, err
	}
	if cfg.MinPnlBase, err = envFloat("MIN_PNL_BASE", 0.002); err != nil {
		return nil, err
	}
	if cfg.MinEdgeBps, err = envFloat("MIN_EDGE_BPS", 10); err != nil {
		return nil, err
	}
	if cfg.MaxTaxBuy, err = envFloat("MAX_TAX_BUY", 0.15); err != nil {
		return nil, err
	}
	if cfg.MaxTaxSell, err = envFloat("MAX_TAX_SELL", 0.15); err != nil {
		return nil, err
	}
	if cfg.DustBase, err = envFloat("DUST_BASE", 0.00015); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RPC returns the RPC endpoint for a chain key, or an error when unset.
func (c *Config) RPC(chain string) (string, error) {
	switch chain {
	case "eth":
		if c.RPCEth == "" {
			return "", fmt.Errorf("RPC_ETH not set")
		}
		return c.RPCEth, nil
	case "bsc":
		if c.RPCBsc == "" {
			return "", fmt.Errorf("RPC_BSC not set")
		}
		return c.RPCBsc, nil
	}
	return "", fmt.Errorf("unknown chain %q", chain)
}

// Subgraph returns the subgraph endpoint for a network key ("" when unset).
func (c *Config) Subgraph(network string) string {
	switch network {
	case "eth_univ2":
		return c.SubgraphEthUniV2
	case "bsc_univ2":
		return c.SubgraphBscV2
	}
	return ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envUint(key string, def uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
