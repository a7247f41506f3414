package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"panoplia-wallet/internal/chains"
	"panoplia-wallet/internal/domain"
)

// EVMBalanceFetcher resolves native balances for EVM-family chains through a
// JSON-RPC node. Non-EVM chains fall through to fallback, which lets a
// deployment layer EVM lookups over static or stubbed data for the rest.
func EVMBalanceFetcher(client *ethclient.Client, fallback BalanceFetcher) BalanceFetcher {
	return func(ctx context.Context, chain domain.Chain, address string) (domain.Balance, error) {
		info, ok := chains.Get(chain)
		if !ok || info.Family != chains.FamilyEVM {
			return fallback(ctx, chain, address)
		}
		if !common.IsHexAddress(address) {
			return domain.Balance{}, fmt.Errorf("invalid %s address %q", chain, address)
		}

		wei, err := client.BalanceAt(ctx, common.HexToAddress(address), nil)
		if err != nil {
			return domain.Balance{}, fmt.Errorf("balance of %s on %s: %w", address, chain, err)
		}
		amount, err := chains.FromBaseUnit(wei.String(), info.Decimals)
		if err != nil {
			return domain.Balance{}, err
		}
		return domain.Balance{Chain: chain, Address: address, Amount: amount}, nil
	}
}
