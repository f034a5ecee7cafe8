package scanner

import (
	"context"
	"fmt"
	"sort"
	"strconv"
)

// BaseSymbols are the quote assets a candidate pair must include.
var BaseSymbols = map[string]struct{}{
	"WETH": {}, "USDC": {}, "USDT": {}, "DAI": {}, "WBNB": {},
}

const pairsQuery = `
query Pairs($skip: Int!, $first: Int!) {
  pairs(skip: $skip, first: $first, orderBy: reserveUSD, orderDirection: desc) {
    id
    reserveUSD
    volumeUSD
    token0 { id symbol }
    token1 { id symbol }
  }
}`

// TokenRef is a token as the subgraph reports it.
type TokenRef struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// Pair is one subgraph pair row. Numeric fields arrive as strings.
type Pair struct {
	ID         string   `json:"id"`
	ReserveUSD string   `json:"reserveUSD"`
	VolumeUSD  string   `json:"volumeUSD"`
	Token0     TokenRef `json:"token0"`
	Token1     TokenRef `json:"token1"`
	Score      float64  `json:"score,omitempty"`
}

// ScanParams bound a scan run.
type ScanParams struct {
	MinLiqUSD float64
	MaxPages  int
	PageLimit int
	Top       int
}

// FetchPairs pages through the pairs query until a page comes back empty
// or the page cap is hit.
func FetchPairs(ctx context.Context, c *Client, maxPages, limit int) ([]Pair, error) {
	var pairs []Pair
	for page := 0; page < maxPages; page++ {
		var out struct {
			Pairs []Pair `json:"pairs"`
		}
		err := c.Post(ctx, pairsQuery, map[string]any{"skip": page * limit, "first": limit}, &out)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(out.Pairs) == 0 {
			break
		}
		pairs = append(pairs, out.Pairs...)
	}
	return pairs, nil
}

// ScorePair favors deep reserves with little volume moving them.
func ScorePair(p Pair) float64 {
	return parseUSD(p.ReserveUSD) / (parseUSD(p.VolumeUSD) + 100.0)
}

// FilterPairs keeps base-quoted pairs above the liquidity floor, scores
// them and ranks by score descending.
func FilterPairs(pairs []Pair, minLiqUSD float64) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if parseUSD(p.ReserveUSD) < minLiqUSD {
			continue
		}
		_, ok0 := BaseSymbols[p.Token0.Symbol]
		_, ok1 := BaseSymbols[p.Token1.Symbol]
		if !ok0 && !ok1 {
			continue
		}
		p.Score = ScorePair(p)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Scan fetches, filters and ranks pairs from the endpoint.
func Scan(ctx context.Context, c *Client, params ScanParams) ([]Pair, error) {
	pairs, err := FetchPairs(ctx, c, params.MaxPages, params.PageLimit)
	if err != nil {
		return nil, err
	}
	ranked := FilterPairs(pairs, params.MinLiqUSD)
	if params.Top > 0 && len(ranked) > params.Top {
		ranked = ranked[:params.Top]
	}
	return ranked, nil
}

func parseUSD(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
