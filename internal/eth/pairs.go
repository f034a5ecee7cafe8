package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
)

// PairReserves holds the pair address and its reserves oriented for a
// trade: RIn is the reserve of the input token, ROut of the output.
type PairReserves struct {
	Address common.Address
	RIn     float64
	ROut    float64
}

// PairSource resolves V2 pair addresses through the factory and reads
// their reserves. Factory lookups are immutable on chain, so they sit
// behind an LRU; reserves are always read live.
type PairSource struct {
	client     *Client
	cfg        ChainConfig
	pairABI    abi.ABI
	factoryABI abi.ABI
	pairCache  *lru.Cache[string, common.Address]
}

const pairCacheSize = 4096

func NewPairSource(client *Client, cfg ChainConfig) (*PairSource, error) {
	pairABI, err := abi.JSON(strings.NewReader(PairABI))
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}
	factoryABI, err := abi.JSON(strings.NewReader(FactoryABI))
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	cache, err := lru.New[string, common.Address](pairCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create pair cache: %w", err)
	}
	return &PairSource{
		client:     client,
		cfg:        cfg,
		pairABI:    pairABI,
		factoryABI: factoryABI,
		pairCache:  cache,
	}, nil
}

// PairFor resolves the pair address for tokenA/tokenB via the factory.
func (s *PairSource) PairFor(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	key := tokenA.Hex() + ":" + tokenB.Hex()
	if addr, ok := s.pairCache.Get(key); ok {
		return addr, nil
	}

	data, err := s.factoryABI.Pack("getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPair: %w", err)
	}
	result, err := s.client.CallContract(ctx, ethereum.CallMsg{To: &s.cfg.Factory, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("call getPair: %w", err)
	}
	addr := common.BytesToAddress(result)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("pair does not exist for %s/%s", tokenA.Hex(), tokenB.Hex())
	}
	s.pairCache.Add(key, addr)
	return addr, nil
}

// Reserves reads getReserves from a pair and orients them for tokenIn.
func (s *PairSource) Reserves(ctx context.Context, pair, tokenIn common.Address) (PairReserves, error) {
	data0, err := s.pairABI.Pack("token0")
	if err != nil {
		return PairReserves{}, fmt.Errorf("pack token0: %w", err)
	}
	raw0, err := s.client.CallContract(ctx, ethereum.CallMsg{To: &pair, Data: data0}, nil)
	if err != nil {
		return PairReserves{}, fmt.Errorf("call token0: %w", err)
	}
	token0 := common.BytesToAddress(raw0)

	data, err := s.pairABI.Pack("getReserves")
	if err != nil {
		return PairReserves{}, fmt.Errorf("pack getReserves: %w", err)
	}
	raw, err := s.client.CallContract(ctx, ethereum.CallMsg{To: &pair, Data: data}, nil)
	if err != nil {
		return PairReserves{}, fmt.Errorf("call getReserves: %w", err)
	}
	unpacked, err := s.pairABI.Unpack("getReserves", raw)
	if err != nil {
		return PairReserves{}, fmt.Errorf("unpack reserves: %w", err)
	}
	if len(unpacked) < 2 {
		return PairReserves{}, fmt.Errorf("unexpected getReserves result length %d", len(unpacked))
	}

	r0, err := reserveToFloat(unpacked[0])
	if err != nil {
		return PairReserves{}, fmt.Errorf("reserve0: %w", err)
	}
	r1, err := reserveToFloat(unpacked[1])
	if err != nil {
		return PairReserves{}, fmt.Errorf("reserve1: %w", err)
	}

	res := PairReserves{Address: pair}
	if tokenIn == token0 {
		res.RIn, res.ROut = r0, r1
	} else {
		res.RIn, res.ROut = r1, r0
	}
	return res, nil
}

// GetPair resolves the pair for tokenIn→tokenOut and returns oriented
// reserves in one shot.
func (s *PairSource) GetPair(ctx context.Context, tokenIn, tokenOut common.Address) (PairReserves, error) {
	pair, err := s.PairFor(ctx, tokenIn, tokenOut)
	if err != nil {
		return PairReserves{}, err
	}
	return s.Reserves(ctx, pair, tokenIn)
}

// reserveToFloat converts an unpacked uint112 reserve. Going through
// uint256 keeps the raw width explicit before the float conversion the
// simulator works in.
func reserveToFloat(v interface{}) (float64, error) {
	bi, ok := v.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected reserve type %T", v)
	}
	u, overflow := uint256.FromBig(bi)
	if overflow {
		return 0, fmt.Errorf("reserve overflows uint256")
	}
	return u.Float64(), nil
}
