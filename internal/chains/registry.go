// Package chains holds the static registry of supported chains and the thin
// per-chain conversions the client needs: decimal/base-unit arithmetic and
// address shape validation. Anything deeper (gas, RPC) belongs to the
// co-signer server and chain nodes, not this client.
package chains

import "panoplia-wallet/internal/domain"

// Family groups chains by address format.
type Family string

const (
	FamilyEVM     Family = "evm"
	FamilySolana  Family = "solana"
	FamilyBitcoin Family = "bitcoin"
	FamilyOther   Family = "other"
)

// Info describes one supported chain.
type Info struct {
	ID       domain.Chain
	Name     string
	Symbol   string
	Decimals int
	Family   Family
}

var registry = map[domain.Chain]Info{
	domain.ChainEthereum:  {ID: domain.ChainEthereum, Name: "Ethereum", Symbol: "ETH", Decimals: 18, Family: FamilyEVM},
	domain.ChainBitcoin:   {ID: domain.ChainBitcoin, Name: "Bitcoin", Symbol: "BTC", Decimals: 8, Family: FamilyBitcoin},
	domain.ChainSolana:    {ID: domain.ChainSolana, Name: "Solana", Symbol: "SOL", Decimals: 9, Family: FamilySolana},
	domain.ChainPolygon:   {ID: domain.ChainPolygon, Name: "Polygon", Symbol: "MATIC", Decimals: 18, Family: FamilyEVM},
	domain.ChainAvalanche: {ID: domain.ChainAvalanche, Name: "Avalanche", Symbol: "AVAX", Decimals: 18, Family: FamilyEVM},
	domain.ChainArbitrum:  {ID: domain.ChainArbitrum, Name: "Arbitrum", Symbol: "ETH", Decimals: 18, Family: FamilyEVM},
	domain.ChainOptimism:  {ID: domain.ChainOptimism, Name: "Optimism", Symbol: "ETH", Decimals: 18, Family: FamilyEVM},
	domain.ChainBSC:       {ID: domain.ChainBSC, Name: "BNB Chain", Symbol: "BNB", Decimals: 18, Family: FamilyEVM},
	domain.ChainTHORChain: {ID: domain.ChainTHORChain, Name: "THORChain", Symbol: "RUNE", Decimals: 8, Family: FamilyOther},
	domain.ChainCosmos:    {ID: domain.ChainCosmos, Name: "Cosmos", Symbol: "ATOM", Decimals: 6, Family: FamilyOther},
}

// Get returns chain info, false if the chain is unknown.
func Get(chain domain.Chain) (Info, bool) {
	info, ok := registry[chain]
	return info, ok
}

// Supported lists every registered chain.
func Supported() []Info {
	out := make([]Info, 0, len(registry))
	for _, info := range registry {
		out = append(out, info)
	}
	return out
}

// DefaultChains are the chains addresses are derived for on wallet creation.
var DefaultChains = []domain.Chain{domain.ChainEthereum, domain.ChainBitcoin, domain.ChainSolana}
