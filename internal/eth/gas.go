package eth

import (
	"context"
	"math/big"
)

// EstimateGasBase estimates the flat round-trip gas cost in base-asset
// units: one approve plus two swaps at the suggested gas price. Network
// failure degrades to zero; the planner then prices gas-free, which the
// min-pnl hurdle still guards.
func EstimateGasBase(ctx context.Context, client *Client, approveUnits, swapUnits uint64) float64 {
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return 0
	}
	units := new(big.Int).SetUint64(approveUnits + 2*swapUnits)
	wei := new(big.Int).Mul(gasPrice, units)
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return f
}
