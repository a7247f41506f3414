package domain

// Chain identifies a supported blockchain.
type Chain string

const (
	ChainEthereum  Chain = "Ethereum"
	ChainBitcoin   Chain = "Bitcoin"
	ChainSolana    Chain = "Solana"
	ChainPolygon   Chain = "Polygon"
	ChainAvalanche Chain = "Avalanche"
	ChainArbitrum  Chain = "Arbitrum"
	ChainOptimism  Chain = "Optimism"
	ChainBSC       Chain = "BSC"
	ChainTHORChain Chain = "THORChain"
	ChainCosmos    Chain = "Cosmos"
)

// String returns the string representation of Chain.
func (c Chain) String() string {
	return string(c)
}

// PrimaryChain is the chain whose address is used for wallet display.
const PrimaryChain = ChainEthereum
