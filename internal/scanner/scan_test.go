package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func mkPair(id, reserve, volume, sym0, sym1 string) Pair {
	return Pair{
		ID:         id,
		ReserveUSD: reserve,
		VolumeUSD:  volume,
		Token0:     TokenRef{ID: "0xaaa", Symbol: sym0},
		Token1:     TokenRef{ID: "0xbbb", Symbol: sym1},
	}
}

func TestFilterPairs(t *testing.T) {
	pairs := []Pair{
		mkPair("busy", "500000", "900000", "WETH", "OLD1"),   // deep but churning
		mkPair("stale", "200000", "100", "OLD2", "USDC"),     // deep and quiet
		mkPair("shallow", "500", "0", "WETH", "OLD3"),        // below liq floor
		mkPair("exotic", "300000", "50", "OLD4", "OLD5"),     // no base asset
		mkPair("ok", "50000", "2000", "DAIX", "DAI"),         // base on token1
	}
	out := FilterPairs(pairs, 10000)
	if len(out) != 3 {
		t.Fatalf("got %d pairs, want 3: %+v", len(out), out)
	}
	// quietest deep pool ranks first
	if out[0].ID != "stale" {
		t.Errorf("top pair = %s, want stale", out[0].ID)
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Errorf("score order broken at %d", i)
		}
	}
}

func TestScorePair(t *testing.T) {
	quiet := ScorePair(mkPair("a", "100000", "0", "WETH", "X"))
	busy := ScorePair(mkPair("b", "100000", "100000", "WETH", "X"))
	if quiet <= busy {
		t.Errorf("quiet pool must outscore busy one: %v <= %v", quiet, busy)
	}
	if got := ScorePair(mkPair("c", "garbage", "0", "WETH", "X")); got != 0 {
		t.Errorf("unparseable reserve should score 0, got %v", got)
	}
}

func TestPostRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"pairs": []map[string]any{{"id": "0xp"}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	var out struct {
		Pairs []Pair `json:"pairs"`
	}
	if err := c.Post(context.Background(), pairsQuery, map[string]any{"skip": 0, "first": 1}, &out); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("got %d calls, want 3", calls.Load())
	}
	if len(out.Pairs) != 1 || out.Pairs[0].ID != "0xp" {
		t.Errorf("unexpected payload: %+v", out)
	}
}

func TestPostSurfacesGraphqlErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "rate limited"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	var out struct{}
	if err := c.Post(context.Background(), pairsQuery, nil, &out); err == nil {
		t.Fatal("want error for graphql errors payload")
	}
}

func TestFetchPairsStopsOnEmptyPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		pairs := []map[string]any{}
		if n == 1 {
			pairs = append(pairs, map[string]any{"id": "0x1", "reserveUSD": "1", "volumeUSD": "1"})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"pairs": pairs}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	pairs, err := FetchPairs(context.Background(), c, 10, 200)
	if err != nil {
		t.Fatalf("FetchPairs failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Errorf("got %d pairs, want 1", len(pairs))
	}
	if calls.Load() != 2 {
		t.Errorf("got %d pages fetched, want 2 (data page + empty page)", calls.Load())
	}
}
