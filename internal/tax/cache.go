package tax

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/mattn/go-sqlite3"
)

// probe results are keyed (chain, token, router) and expire by TTL so a
// re-run after a token upgrade sees fresh taxes
const schema = `
CREATE TABLE IF NOT EXISTS tax_probes (
	chain         TEXT NOT NULL,
	token         TEXT NOT NULL,
	router        TEXT NOT NULL,
	symbol        TEXT,
	decimals      INTEGER,
	buy_tax_est   REAL,
	sell_tax_est  REAL,
	honeypot_buy  INTEGER,
	honeypot_sell INTEGER,
	expected_out  TEXT,
	probed_at     INTEGER NOT NULL,
	PRIMARY KEY (chain, token, router)
);`

// CacheDB persists dust-probe results in sqlite.
type CacheDB struct {
	db *sql.DB
}

func NewCacheDB(dbPath string) (*CacheDB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// WAL for concurrent readers during batch probing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("initialise schema: %w", err)
	}

	return &CacheDB{db: db}, nil
}

func (c *CacheDB) Close() error {
	return c.db.Close()
}

// Get returns a cached probe younger than ttl, or (nil, false).
func (c *CacheDB) Get(chain string, token, router common.Address, ttl time.Duration) (*ProbeResult, bool) {
	var (
		r                   ProbeResult
		tokenHex            string
		honeyBuy, honeySell int
	)
	err := c.db.QueryRow(
		`SELECT token, symbol, decimals, buy_tax_est, sell_tax_est,
		        honeypot_buy, honeypot_sell, expected_out, probed_at
		 FROM tax_probes WHERE chain = ? AND token = ? AND router = ?`,
		chain, token.Hex(), router.Hex(),
	).Scan(&tokenHex, &r.Symbol, &r.Decimals, &r.BuyTaxEst, &r.SellTaxEst,
		&honeyBuy, &honeySell, &r.ExpectedOut, &r.ProbedAt)
	if err != nil {
		return nil, false
	}
	if time.Since(time.Unix(r.ProbedAt, 0)) >= ttl {
		return nil, false
	}
	r.Token = common.HexToAddress(tokenHex)
	r.Router = router
	r.HoneypotBuy = honeyBuy != 0
	r.HoneypotSell = honeySell != 0
	return &r, true
}

// Put upserts one probe result.
func (c *CacheDB) Put(chain string, r ProbeResult) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO tax_probes
		 (chain, token, router, symbol, decimals, buy_tax_est, sell_tax_est,
		  honeypot_buy, honeypot_sell, expected_out, probed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chain, r.Token.Hex(), r.Router.Hex(), r.Symbol, r.Decimals,
		r.BuyTaxEst, r.SellTaxEst, boolToInt(r.HoneypotBuy), boolToInt(r.HoneypotSell),
		r.ExpectedOut, r.ProbedAt,
	)
	return err
}

// Stats reports cache size for monitoring batch runs.
func (c *CacheDB) Stats() (map[string]int64, error) {
	stats := make(map[string]int64)
	var count int64
	if err := c.db.QueryRow("SELECT COUNT(*) FROM tax_probes").Scan(&count); err != nil {
		return nil, err
	}
	stats["probe_entries"] = count
	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
