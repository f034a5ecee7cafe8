package amm

import (
	"errors"
	"math"
	"testing"
)

func TestAmountOutZeroFee(t *testing.T) {
	// with fee=0 the closed form is exactly in*rOut/(rIn+in)
	out, err := AmountOut(1000, 2000, 0, 10)
	if err != nil {
		t.Fatalf("AmountOut failed: %v", err)
	}
	want := 10.0 * 2000 / (1000 + 10)
	if math.Abs(out-want) > 1e-12 {
		t.Errorf("got %v want %v", out, want)
	}
}

func TestAmountOutBoundedByReserve(t *testing.T) {
	// even absurdly large inputs can never drain the out reserve, and
	// inputs near the float64 ceiling must not overflow to +Inf
	for _, in := range []float64{1e18, 1e300, 1e308, math.MaxFloat64} {
		out, err := AmountOut(1000, 2000, 0.003, in)
		if err != nil {
			t.Fatalf("AmountOut(%v) failed: %v", in, err)
		}
		if math.IsInf(out, 0) || math.IsNaN(out) {
			t.Fatalf("AmountOut(%v) = %v, not finite", in, out)
		}
		if out >= 2000 {
			t.Errorf("AmountOut(%v) = %v, not below out reserve", in, out)
		}
	}

	proceeds, err := ProceedsWithTax(1000, 2000, 0.003, 1e308, 0.05)
	if err != nil {
		t.Fatalf("ProceedsWithTax failed: %v", err)
	}
	if math.IsInf(proceeds, 0) || proceeds >= 2000 {
		t.Errorf("ProceedsWithTax(1e308) = %v, not below out reserve", proceeds)
	}
}

func TestAmountOutMonotone(t *testing.T) {
	prev := 0.0
	for _, in := range []float64{1, 10, 100, 1000, 10000} {
		out, err := AmountOut(1e6, 5e5, 0.003, in)
		if err != nil {
			t.Fatalf("AmountOut(%v) failed: %v", in, err)
		}
		if out <= prev {
			t.Errorf("output not strictly increasing at in=%v: %v <= %v", in, out, prev)
		}
		prev = out
	}
}

func TestAmountOutInvalidInputs(t *testing.T) {
	cases := []struct {
		name                  string
		rIn, rOut, fee, amtIn float64
	}{
		{"zero rIn", 0, 2000, 0.003, 10},
		{"negative rIn", -1, 2000, 0.003, 10},
		{"zero rOut", 1000, 0, 0.003, 10},
		{"zero amountIn", 1000, 2000, 0.003, 0},
		{"negative amountIn", 1000, 2000, 0.003, -5},
		{"fee one", 1000, 2000, 1, 10},
		{"fee above one", 1000, 2000, 1.5, 10},
		{"negative fee", 1000, 2000, -0.1, 10},
		{"nan reserve", math.NaN(), 2000, 0.003, 10},
	}
	for _, tc := range cases {
		if _, err := AmountOut(tc.rIn, tc.rOut, tc.fee, tc.amtIn); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: want ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestAmountOutWithTax(t *testing.T) {
	base, err := AmountOut(1e6, 2e6, 0.003, 500)
	if err != nil {
		t.Fatalf("AmountOut failed: %v", err)
	}
	taxed, err := AmountOutWithTax(1e6, 2e6, 0.003, 500, 0.05)
	if err != nil {
		t.Fatalf("AmountOutWithTax failed: %v", err)
	}
	if math.Abs(taxed-base*0.95) > 1e-12 {
		t.Errorf("got %v want %v", taxed, base*0.95)
	}

	if _, err := AmountOutWithTax(1e6, 2e6, 0.003, 500, 1.1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("tax above one: want ErrInvalidInput, got %v", err)
	}
	if _, err := AmountOutWithTax(1e6, 2e6, 0.003, 500, -0.1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative tax: want ErrInvalidInput, got %v", err)
	}
}

func TestProceedsWithTaxFullTaxIsZero(t *testing.T) {
	// sell tax of 100% leaves nothing to sell: zero proceeds, no error
	got, err := ProceedsWithTax(1e6, 2e6, 0.003, 100, 1)
	if err != nil {
		t.Fatalf("ProceedsWithTax failed: %v", err)
	}
	if got != 0 {
		t.Errorf("got %v want 0", got)
	}
}

func TestProceedsWithTax(t *testing.T) {
	// taxed sell equals untaxed sell of the post-tax amount
	want, err := AmountOut(1e6, 2e6, 0.003, 100*0.9)
	if err != nil {
		t.Fatalf("AmountOut failed: %v", err)
	}
	got, err := ProceedsWithTax(1e6, 2e6, 0.003, 100, 0.1)
	if err != nil {
		t.Fatalf("ProceedsWithTax failed: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestCostToAcquireInverse(t *testing.T) {
	// forward then inverse lands back on the original cost
	rIn, rOut, fee, buyTax := 1e8, 2e5, 0.003, 0.05
	for _, cost := range []float64{1, 50, 1000, 250000} {
		tokens, err := AmountOutWithTax(rIn, rOut, fee, cost, buyTax)
		if err != nil {
			t.Fatalf("forward(%v) failed: %v", cost, err)
		}
		back, err := CostToAcquire(rIn, rOut, fee, buyTax, tokens)
		if err != nil {
			t.Fatalf("CostToAcquire(%v) failed: %v", tokens, err)
		}
		if math.Abs(back-cost) > cost*1e-6 {
			t.Errorf("inverse drifted: cost %v came back as %v", cost, back)
		}
	}
}

func TestCostToAcquireUnreachableTarget(t *testing.T) {
	rIn, rOut, fee, buyTax := 1e6, 2e5, 0.003, 0.1
	// the supremum of acquirable tokens is rOut*(1-buyTax)
	for _, target := range []float64{2e5 * 0.9, 3e5, 0, -10} {
		if _, err := CostToAcquire(rIn, rOut, fee, buyTax, target); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("target %v: want ErrInvalidInput, got %v", target, err)
		}
	}
}

func TestCostToAcquireNearBoundary(t *testing.T) {
	// deep in the curve the inverse still converges
	rIn, rOut := 1e6, 2e5
	target := rOut * 0.99
	cost, err := CostToAcquire(rIn, rOut, 0.003, 0, target)
	if err != nil {
		t.Fatalf("CostToAcquire failed: %v", err)
	}
	tokens, err := AmountOutWithTax(rIn, rOut, 0.003, cost, 0)
	if err != nil {
		t.Fatalf("forward check failed: %v", err)
	}
	if math.Abs(tokens-target) > target*1e-6 {
		t.Errorf("cost %v buys %v tokens, wanted %v", cost, tokens, target)
	}
}
