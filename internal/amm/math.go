// Package amm implements constant-product pricing with transfer taxes.
// All functions are pure and safe for concurrent use.
package amm

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned for non-positive reserves or amounts,
	// or fee/tax fractions outside [0,1).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConvergence is returned when the inverse-cost search runs out
	// of iterations before meeting tolerance.
	ErrNoConvergence = errors.New("bisection did not converge")
)

// Tolerance and iteration caps for CostToAcquire. These are part of the
// public contract: same inputs always produce the same output.
const (
	RelTolerance  = 1e-9
	AbsTolerance  = 1e-18
	MaxIterations = 200

	// bracketing: upper bound seeded at rIn/bracketSeedDiv and doubled
	// until the target output is covered
	bracketSeedDiv      = 1e6
	maxBracketDoublings = 96
)

func checkPool(rIn, rOut, fee float64) error {
	if !(rIn > 0) || !(rOut > 0) || math.IsInf(rIn, 0) || math.IsInf(rOut, 0) {
		return fmt.Errorf("%w: reserves must be positive and finite (rIn=%g rOut=%g)", ErrInvalidInput, rIn, rOut)
	}
	if !(fee >= 0 && fee < 1) {
		return fmt.Errorf("%w: fee %g outside [0,1)", ErrInvalidInput, fee)
	}
	return nil
}

func checkTax(name string, tax float64) error {
	if !(tax >= 0 && tax < 1) {
		return fmt.Errorf("%w: %s %g outside [0,1)", ErrInvalidInput, name, tax)
	}
	return nil
}

// AmountOut computes the constant-product swap output for amountIn, with
// the fee taken multiplicatively from the input. The result is strictly
// increasing in amountIn and strictly less than rOut.
func AmountOut(rIn, rOut, fee, amountIn float64) (float64, error) {
	if err := checkPool(rIn, rOut, fee); err != nil {
		return 0, err
	}
	if !(amountIn > 0) || math.IsInf(amountIn, 0) {
		return 0, fmt.Errorf("%w: amountIn %g must be positive", ErrInvalidInput, amountIn)
	}
	effIn := amountIn * (1 - fee)
	// rIn/effIn + 1 > 1 keeps the quotient below rOut without the
	// numerator product ever overflowing for huge inputs
	return rOut / (rIn/effIn + 1), nil
}

// AmountOutWithTax is AmountOut with the received token reduced by buyTax
// at the transfer boundary.
func AmountOutWithTax(rIn, rOut, fee, amountIn, buyTax float64) (float64, error) {
	if err := checkTax("buyTax", buyTax); err != nil {
		return 0, err
	}
	out, err := AmountOut(rIn, rOut, fee, amountIn)
	if err != nil {
		return 0, err
	}
	return out * (1 - buyTax), nil
}

// ProceedsWithTax models a sell where sellTax is burned from tokensIn
// before it reaches the pool. A tax of ~1 yields zero proceeds, not an
// error: the transfer succeeds, the pool just receives nothing.
func ProceedsWithTax(rIn, rOut, fee, tokensIn, sellTax float64) (float64, error) {
	if err := checkTax("sellTax", sellTax); err != nil {
		return 0, err
	}
	if err := checkPool(rIn, rOut, fee); err != nil {
		return 0, err
	}
	if !(tokensIn > 0) || math.IsInf(tokensIn, 0) {
		return 0, fmt.Errorf("%w: tokensIn %g must be positive", ErrInvalidInput, tokensIn)
	}
	effIn := tokensIn * (1 - sellTax)
	if effIn <= 0 {
		return 0, nil
	}
	effIn *= 1 - fee
	return rOut / (rIn/effIn + 1), nil
}

// CostToAcquire solves the inverse problem: base input required on a pool
// so that AmountOutWithTax delivers targetTokens. There is no closed form
// once the tax folds into the rational invariant, so the root is found by
// doubling an upper bound until it brackets the target, then bisecting to
// RelTolerance (AbsTolerance floor for near-zero targets).
func CostToAcquire(rIn, rOut, fee, buyTax, targetTokens float64) (float64, error) {
	if err := checkPool(rIn, rOut, fee); err != nil {
		return 0, err
	}
	if err := checkTax("buyTax", buyTax); err != nil {
		return 0, err
	}
	maxOut := rOut * (1 - buyTax)
	if targetTokens <= 0 || targetTokens >= maxOut {
		return 0, fmt.Errorf("%w: target %g outside (0, %g)", ErrInvalidInput, targetTokens, maxOut)
	}

	outAt := func(amountIn float64) float64 {
		effIn := amountIn * (1 - fee)
		return rOut / (rIn/effIn + 1) * (1 - buyTax)
	}

	hi := rIn / bracketSeedDiv
	bracketed := false
	for i := 0; i < maxBracketDoublings; i++ {
		if outAt(hi) >= targetTokens {
			bracketed = true
			break
		}
		hi *= 2
	}
	if !bracketed {
		return hi, fmt.Errorf("%w: target %g not bracketed after %d doublings", ErrNoConvergence, targetTokens, maxBracketDoublings)
	}

	tol := math.Max(AbsTolerance, RelTolerance*targetTokens)
	lo := 0.0
	mid := hi
	for i := 0; i < MaxIterations; i++ {
		mid = (lo + hi) / 2
		out := outAt(mid)
		if math.Abs(out-targetTokens) <= tol {
			return mid, nil
		}
		if out < targetTokens {
			lo = mid
		} else {
			hi = mid
		}
	}
	// best estimate, flagged rather than silently returned
	if math.Abs(outAt(hi)-targetTokens) > tol {
		return hi, fmt.Errorf("%w: tolerance %g not met after %d iterations", ErrNoConvergence, tol, MaxIterations)
	}
	return hi, nil
}
