package sim

import (
	"errors"
	"testing"
)

func TestParseGrid(t *testing.T) {
	sizes, err := ParseGrid("1e3, 5e3,1e4")
	if err != nil {
		t.Fatalf("ParseGrid failed: %v", err)
	}
	want := []float64{1e3, 5e3, 1e4}
	if len(sizes) != len(want) {
		t.Fatalf("got %d sizes, want %d", len(sizes), len(want))
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("sizes[%d] = %v, want %v", i, sizes[i], want[i])
		}
	}
}

func TestParseGridRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"non-numeric", "1e3,abc"},
		{"empty string", ""},
		{"empty entry", "1e3,,1e4"},
		{"trailing comma", "1e3,"},
		{"negative", "1e3,-5"},
		{"zero", "0,1e3"},
		{"duplicate", "1e3,1e4,1e3"},
		{"inf", "1e3,inf"},
	}
	for _, tc := range cases {
		if _, err := ParseGrid(tc.in); !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("%s: want ErrInvalidGrid, got %v", tc.name, err)
		}
	}
}
