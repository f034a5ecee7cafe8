// Package tax estimates fee-on-transfer taxes with read-only dust
// quotes: no transaction is ever submitted.
package tax

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/Rau1CS/oldgold-taxaware-bot/internal/eth"
)

// ProbeResult is the measured tax profile of one token on one router.
type ProbeResult struct {
	Token        common.Address `json:"token"`
	Router       common.Address `json:"router"`
	Symbol       string         `json:"symbol"`
	Decimals     uint8          `json:"decimals"`
	BuyTaxEst    float64        `json:"buy_tax_est"`
	SellTaxEst   float64        `json:"sell_tax_est"`
	HoneypotBuy  bool           `json:"honeypot_buy"`
	HoneypotSell bool           `json:"honeypot_sell"`
	ExpectedOut  string         `json:"expected_out"`
	ProbedAt     int64          `json:"ts"`
}

// Prober quotes dust-sized round trips through a V2 router.
type Prober struct {
	client    *eth.Client
	cfg       eth.ChainConfig
	routerABI abi.ABI
	erc20ABI  abi.ABI
	log       zerolog.Logger
}

func NewProber(client *eth.Client, cfg eth.ChainConfig, log zerolog.Logger) (*Prober, error) {
	routerABI, err := abi.JSON(strings.NewReader(eth.RouterABI))
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(eth.ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return &Prober{client: client, cfg: cfg, routerABI: routerABI, erc20ABI: erc20ABI, log: log}, nil
}

// Probe quotes a dust buy (wrapped→token) and the matching sell back
// (token→wrapped). Quotes are price-impact-free at dust size, so any
// round-trip loss beyond the two pool fees is transfer tax; the loss is
// split evenly between the buy and sell side. A reverting quote marks
// the side as a honeypot.
func (p *Prober) Probe(ctx context.Context, token common.Address, dust, fee float64) (ProbeResult, error) {
	r := ProbeResult{
		Token:    token,
		Router:   p.cfg.Router,
		ProbedAt: time.Now().Unix(),
	}

	symbol, decimals, err := p.tokenMeta(ctx, token)
	if err != nil {
		return r, fmt.Errorf("token metadata: %w", err)
	}
	r.Symbol = symbol
	r.Decimals = decimals

	dustWei, err := baseToWei(dust)
	if err != nil {
		return r, err
	}

	expected, err := p.amountsOut(ctx, dustWei, []common.Address{p.cfg.Wrapped, token})
	if err != nil {
		p.log.Warn().Str("token", token.Hex()).Err(err).Msg("buy quote reverted")
		r.HoneypotBuy = true
		r.HoneypotSell = true
		return r, nil
	}
	r.ExpectedOut = expected.String()

	back, err := p.amountsOut(ctx, expected.ToBig(), []common.Address{token, p.cfg.Wrapped})
	if err != nil {
		p.log.Warn().Str("token", token.Hex()).Err(err).Msg("sell quote reverted")
		r.HoneypotSell = true
		return r, nil
	}

	buyTax, sellTax := splitRoundTripLoss(dustWei, back, fee)
	r.BuyTaxEst = buyTax
	r.SellTaxEst = sellTax
	return r, nil
}

func (p *Prober) tokenMeta(ctx context.Context, token common.Address) (string, uint8, error) {
	rawSym, err := p.call(ctx, token, p.erc20ABI, "symbol")
	if err != nil {
		return "", 0, err
	}
	symVals, err := p.erc20ABI.Unpack("symbol", rawSym)
	if err != nil || len(symVals) == 0 {
		return "", 0, fmt.Errorf("unpack symbol: %w", err)
	}
	symbol, _ := symVals[0].(string)

	rawDec, err := p.call(ctx, token, p.erc20ABI, "decimals")
	if err != nil {
		return "", 0, err
	}
	decVals, err := p.erc20ABI.Unpack("decimals", rawDec)
	if err != nil || len(decVals) == 0 {
		return "", 0, fmt.Errorf("unpack decimals: %w", err)
	}
	decimals, _ := decVals[0].(uint8)
	return symbol, decimals, nil
}

// amountsOut quotes getAmountsOut and returns the final path amount.
func (p *Prober) amountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*uint256.Int, error) {
	data, err := p.routerABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("pack getAmountsOut: %w", err)
	}
	raw, err := p.client.CallContract(ctx, ethereum.CallMsg{To: &p.cfg.Router, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call getAmountsOut: %w", err)
	}
	vals, err := p.routerABI.Unpack("getAmountsOut", raw)
	if err != nil {
		return nil, fmt.Errorf("unpack getAmountsOut: %w", err)
	}
	amounts, ok := vals[0].([]*big.Int)
	if !ok || len(amounts) == 0 {
		return nil, fmt.Errorf("unexpected getAmountsOut result")
	}
	out, overflow := uint256.FromBig(amounts[len(amounts)-1])
	if overflow {
		return nil, fmt.Errorf("quote overflows uint256")
	}
	return out, nil
}

func (p *Prober) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string) ([]byte, error) {
	data, err := contractABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := p.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	return raw, nil
}

// splitRoundTripLoss attributes the round-trip loss beyond the two pool
// fees evenly to buy and sell tax.
func splitRoundTripLoss(dustWei *big.Int, back *uint256.Int, fee float64) (buyTax, sellTax float64) {
	dust := new(big.Float).SetInt(dustWei)
	dustF, _ := dust.Float64()
	if dustF <= 0 {
		return 0, 0
	}
	survived := back.Float64() / dustF / ((1 - fee) * (1 - fee))
	if survived >= 1 {
		return 0, 0
	}
	perSide := 1 - math.Sqrt(survived)
	if perSide < 0 {
		perSide = 0
	}
	return perSide, perSide
}

func baseToWei(amount float64) (*big.Int, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("dust amount %g must be positive", amount)
	}
	wei, _ := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18)).Int(nil)
	return wei, nil
}
