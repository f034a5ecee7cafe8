package sim

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidGrid is returned for an empty or malformed trade-size list.
// It fails the whole simulation before any pool math runs.
var ErrInvalidGrid = errors.New("invalid trade size grid")

// ParseGrid parses a comma-separated list of trade sizes. Scientific
// notation is accepted ("1e3,5e3,1e4"). Empty entries, non-numeric
// tokens, non-positive values and duplicates are rejected.
func ParseGrid(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	sizes := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("%w: empty entry in %q", ErrInvalidGrid, s)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad entry %q", ErrInvalidGrid, p)
		}
		sizes = append(sizes, v)
	}
	if err := checkGrid(sizes); err != nil {
		return nil, err
	}
	return sizes, nil
}

func checkGrid(sizes []float64) error {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidGrid)
	}
	seen := make(map[float64]struct{}, len(sizes))
	for _, v := range sizes {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%w: size %g must be a positive finite number", ErrInvalidGrid, v)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%w: duplicate size %g", ErrInvalidGrid, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}
