package scanner

import (
	"context"
	"strings"
)

const activePoolQuery = `
query ($token: String!, $base: String!) {
  pairs(where: {
    token0_in: [$token, $base],
    token1_in: [$token, $base]
  }) {
    id
    reserveUSD
    token0 { id }
    token1 { id }
  }
}`

// ActivePoolForToken returns the deepest pool (by reserveUSD) trading
// token against base, or "" when the subgraph knows none.
func ActivePoolForToken(ctx context.Context, c *Client, token, base string) (string, error) {
	var out struct {
		Pairs []Pair `json:"pairs"`
	}
	vars := map[string]any{
		"token": strings.ToLower(token),
		"base":  strings.ToLower(base),
	}
	if err := c.Post(ctx, activePoolQuery, vars, &out); err != nil {
		return "", err
	}

	best := ""
	bestReserve := 0.0
	for _, p := range out.Pairs {
		if r := parseUSD(p.ReserveUSD); r > bestReserve {
			bestReserve = r
			best = p.ID
		}
	}
	return best, nil
}
