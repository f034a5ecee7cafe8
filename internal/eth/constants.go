package eth

import (
	"github.com/ethereum/go-ethereum/common"
)

// ChainConfig holds the V2 contract addresses for one chain.
type ChainConfig struct {
	Name    string
	Router  common.Address
	Factory common.Address
	Wrapped common.Address
}

// KnownChains — supported chains keyed the way the CLI names them.
var KnownChains = map[string]ChainConfig{
	"eth": {
		Name:    "eth",
		Router:  common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
		Factory: common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		Wrapped: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
	},
	"bsc": {
		Name:    "bsc",
		Router:  common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E"),
		Factory: common.HexToAddress("0xBCfCcbde45cE874adCB698cC183deBcF17952812"),
		Wrapped: common.HexToAddress("0xBB4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"),
	},
}

// Minimal ABI fragments — only the methods we call.
const PairABI = `[
	{
		"constant": true,
		"inputs": [],
		"name": "getReserves",
		"outputs": [
			{"internalType": "uint112", "name": "reserve0", "type": "uint112"},
			{"internalType": "uint112", "name": "reserve1", "type": "uint112"},
			{"internalType": "uint32",  "name": "blockTimestampLast", "type": "uint32"}
		],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "token0",
		"outputs": [{"internalType": "address", "name": "", "type": "address"}],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`

const FactoryABI = `[
	{
		"constant": true,
		"inputs": [
			{"internalType": "address", "name": "tokenA", "type": "address"},
			{"internalType": "address", "name": "tokenB", "type": "address"}
		],
		"name": "getPair",
		"outputs": [{"internalType": "address", "name": "pair", "type": "address"}],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`

const RouterABI = `[
	{
		"constant": true,
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"}
		],
		"name": "getAmountsOut",
		"outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`

const ERC20ABI = `[
	{
		"constant": true,
		"inputs": [],
		"name": "symbol",
		"outputs": [{"internalType": "string", "name": "", "type": "string"}],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "decimals",
		"outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`
