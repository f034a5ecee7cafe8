package sim

// Pool carries the reserves and swap fee of one constant-product pool,
// oriented so RIn is the input-side reserve for the trade being priced.
type Pool struct {
	RIn  float64
	ROut float64
	Fee  float64
}

// TaxProfile is the fee-on-transfer profile of the traded token.
type TaxProfile struct {
	BuyTax  float64
	SellTax float64
}

// Result is one immutable grid point of a sweep. Size is the base-asset
// amount spent on the active pool, which is also CostOnActive.
type Result struct {
	Size            float64 `json:"size"`
	CostOnActive    float64 `json:"costOnActive"`
	TokensBought    float64 `json:"tokensReceivedAfterBuyTax"`
	ProceedsOnStale float64 `json:"proceedsOnStale"`
	GasCost         float64 `json:"gasCost"`
	SlippageCost    float64 `json:"slippageCost"`
	NetPnl          float64 `json:"netPnl"`
	EdgeBps         float64 `json:"edgeBps"`

	// Err records a degraded point (per-point math failure). Degraded
	// points are kept in the output after the ranked ones.
	Err string `json:"error,omitempty"`
}
