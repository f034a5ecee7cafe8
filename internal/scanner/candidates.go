package scanner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

const pairDayQuery = `
query PairDay($pair: String!, $first: Int!) {
  pairDayDatas(first: $first, orderBy: date, orderDirection: desc, where: {pairAddress: $pair}) {
    date
    dailyVolumeUSD
    reserveUSD
  }
}`

const dayDataWindow = 14

// PairDay is one pairDayDatas row.
type PairDay struct {
	Date           int64  `json:"date"`
	DailyVolumeUSD string `json:"dailyVolumeUSD"`
	ReserveUSD     string `json:"reserveUSD"`
}

// Candidate is a token whose base pair looks deep but dormant: reserves
// above the floor, recent volume below the caps.
type Candidate struct {
	Pair       string  `json:"pair"`
	Token      string  `json:"token"`
	Base       string  `json:"base"`
	ReserveUSD float64 `json:"reserveUSD"`
	Vol24h     float64 `json:"vol_24h"`
	Vol7d      float64 `json:"vol_7d"`
	AgeDays    float64 `json:"age_days"`
	Score      float64 `json:"score"`
}

// CandidateParams bound a candidate generation run.
type CandidateParams struct {
	BaseSymbol    string
	WrappedAddr   string
	Pages         int
	PageSize      int
	MinReserveUSD float64
	Max24hUSD     float64
	Max7dUSD      float64
	MinAgeDays    float64
	Top           int
}

// GenCandidates walks the top pairs by reserve, pulls per-pair day data
// and keeps the stale ones. Returns ranked candidates plus the deduped
// token list for downstream probing.
func GenCandidates(ctx context.Context, c *Client, params CandidateParams) ([]Candidate, []string, error) {
	var pairs []Pair
	for pg := 0; pg < params.Pages; pg++ {
		var out struct {
			Pairs []Pair `json:"pairs"`
		}
		err := c.Post(ctx, pairsQuery, map[string]any{"skip": pg * params.PageSize, "first": params.PageSize}, &out)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", pg, err)
		}
		if len(out.Pairs) == 0 {
			break
		}
		pairs = append(pairs, out.Pairs...)
	}
	c.log.Info().Int("pairs", len(pairs)).Msg("fetched pairs from subgraph")

	var candidates []Candidate
	for _, p := range pairs {
		token, base := pickTokenSide(p, params.BaseSymbol, params.WrappedAddr)
		if token == "" {
			continue
		}
		reserveUSD := parseUSD(p.ReserveUSD)
		if reserveUSD < params.MinReserveUSD {
			continue
		}

		var dd struct {
			Days []PairDay `json:"pairDayDatas"`
		}
		if err := c.Post(ctx, pairDayQuery, map[string]any{"pair": p.ID, "first": dayDataWindow}, &dd); err != nil {
			c.log.Warn().Str("pair", p.ID).Err(err).Msg("pairDayDatas failed")
			continue
		}

		vol24h, vol7d, ageDays := summarizeDayData(dd.Days)
		if vol24h > params.Max24hUSD || vol7d > params.Max7dUSD {
			continue
		}
		if params.MinAgeDays > 0 && ageDays < params.MinAgeDays {
			continue
		}
		// the no-day-data sentinel is not representable in JSON, so the
		// emitted age caps at the query window
		if math.IsInf(ageDays, 1) {
			ageDays = float64(dayDataWindow)
		}

		candidates = append(candidates, Candidate{
			Pair:       p.ID,
			Token:      token,
			Base:       base,
			ReserveUSD: reserveUSD,
			Vol24h:     vol24h,
			Vol7d:      vol7d,
			AgeDays:    ageDays,
			// deeper reserves and longer dormancy rank higher
			Score: reserveUSD / (vol7d + 1.0) * (1.0 + ageDays/7.0),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if params.Top > 0 && len(candidates) > params.Top {
		candidates = candidates[:params.Top]
	}

	tokens := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		t := strings.ToLower(cand.Token)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	return candidates, tokens, nil
}

// pickTokenSide returns (token, base) when the pair includes the chosen
// base by symbol or wrapped address, else ("", "").
func pickTokenSide(p Pair, baseSymbol, wrappedAddr string) (string, string) {
	if isBase(p.Token0, baseSymbol, wrappedAddr) {
		return p.Token1.ID, p.Token0.ID
	}
	if isBase(p.Token1, baseSymbol, wrappedAddr) {
		return p.Token0.ID, p.Token1.ID
	}
	return "", ""
}

func isBase(t TokenRef, baseSymbol, wrappedAddr string) bool {
	if strings.EqualFold(t.Symbol, baseSymbol) {
		return true
	}
	return wrappedAddr != "" && strings.EqualFold(t.ID, wrappedAddr)
}

// summarizeDayData returns (vol24h, vol7d, days since last non-zero
// volume). A pair with no day data at all is maximally dormant, so its
// age is +Inf and it passes any min-age filter.
func summarizeDayData(days []PairDay) (float64, float64, float64) {
	if len(days) == 0 {
		return 0, 0, math.Inf(1)
	}
	vol24h := parseUSD(days[0].DailyVolumeUSD)
	vol7d := 0.0
	for i, d := range days {
		if i >= 7 {
			break
		}
		vol7d += parseUSD(d.DailyVolumeUSD)
	}
	ageDays := float64(len(days))
	for i, d := range days {
		if parseUSD(d.DailyVolumeUSD) > 0 {
			ageDays = float64(i)
			break
		}
	}
	return vol24h, vol7d, ageDays
}
