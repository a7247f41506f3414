package wallet

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panoplia-wallet/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingFetchers struct {
	balanceCalls int
	priceCalls   int
	balanceErr   error
}

func (f *countingFetchers) balance(_ context.Context, chain domain.Chain, address string) (domain.Balance, error) {
	f.balanceCalls++
	if f.balanceErr != nil {
		return domain.Balance{}, f.balanceErr
	}
	return domain.Balance{Chain: chain, Address: address, Amount: "2.5"}, nil
}

func (f *countingFetchers) price(_ context.Context, symbol string) (domain.Price, error) {
	f.priceCalls++
	return domain.Price{Symbol: symbol, USD: 3200}, nil
}

func newTestBalances(t *testing.T) (*Balances, *countingFetchers, *fakeClock) {
	t.Helper()
	fetchers := &countingFetchers{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	b := NewBalances(fetchers.balance, fetchers.price, WithBalancesClock(clock.Now))
	return b, fetchers, clock
}

func TestBalances_CachesWithinTTL(t *testing.T) {
	b, fetchers, clock := newTestBalances(t)
	ctx := context.Background()
	addr := "0x742d35Cc6634C0532925a3b844Bc9e7595f4a23F"

	first, err := b.Balance(ctx, domain.ChainEthereum, addr)
	require.NoError(t, err)
	assert.Equal(t, "2.5", first.Amount)

	clock.Advance(29 * time.Second)
	_, err = b.Balance(ctx, domain.ChainEthereum, addr)
	require.NoError(t, err)
	assert.Equal(t, 1, fetchers.balanceCalls)
}

func TestBalances_RefetchAfterExpiry(t *testing.T) {
	b, fetchers, clock := newTestBalances(t)
	ctx := context.Background()
	addr := "0x742d35Cc6634C0532925a3b844Bc9e7595f4a23F"

	_, err := b.Balance(ctx, domain.ChainEthereum, addr)
	require.NoError(t, err)

	clock.Advance(BalanceTTL + time.Second)
	_, err = b.Balance(ctx, domain.ChainEthereum, addr)
	require.NoError(t, err)
	assert.Equal(t, 2, fetchers.balanceCalls)
}

func TestBalances_DistinctKeysPerChainAndAddress(t *testing.T) {
	b, fetchers, _ := newTestBalances(t)
	ctx := context.Background()

	_, err := b.Balance(ctx, domain.ChainEthereum, "0xaaa")
	require.NoError(t, err)
	_, err = b.Balance(ctx, domain.ChainPolygon, "0xaaa")
	require.NoError(t, err)
	_, err = b.Balance(ctx, domain.ChainEthereum, "0xbbb")
	require.NoError(t, err)
	assert.Equal(t, 3, fetchers.balanceCalls)
}

func TestBalances_PriceOutlivesBalance(t *testing.T) {
	b, fetchers, clock := newTestBalances(t)
	ctx := context.Background()
	addr := "0x742d35Cc6634C0532925a3b844Bc9e7595f4a23F"

	_, err := b.Balance(ctx, domain.ChainEthereum, addr)
	require.NoError(t, err)
	_, err = b.Price(ctx, "ETH")
	require.NoError(t, err)

	// Past the balance TTL but inside the price TTL.
	clock.Advance(45 * time.Second)

	_, err = b.Balance(ctx, domain.ChainEthereum, addr)
	require.NoError(t, err)
	_, err = b.Price(ctx, "ETH")
	require.NoError(t, err)

	assert.Equal(t, 2, fetchers.balanceCalls)
	assert.Equal(t, 1, fetchers.priceCalls)
}

func TestBalances_FetchErrorNotCached(t *testing.T) {
	b, fetchers, _ := newTestBalances(t)
	ctx := context.Background()

	fetchers.balanceErr = errors.New("rpc down")
	_, err := b.Balance(ctx, domain.ChainEthereum, "0xaaa")
	assert.Error(t, err)

	fetchers.balanceErr = nil
	got, err := b.Balance(ctx, domain.ChainEthereum, "0xaaa")
	require.NoError(t, err)
	assert.Equal(t, "2.5", got.Amount)
}

func TestBalances_ClearCacheForcesRefetch(t *testing.T) {
	b, fetchers, _ := newTestBalances(t)
	ctx := context.Background()

	_, err := b.Balance(ctx, domain.ChainEthereum, "0xaaa")
	require.NoError(t, err)
	_, err = b.Price(ctx, "ETH")
	require.NoError(t, err)

	b.ClearCache()

	_, err = b.Balance(ctx, domain.ChainEthereum, "0xaaa")
	require.NoError(t, err)
	_, err = b.Price(ctx, "ETH")
	require.NoError(t, err)

	assert.Equal(t, 2, fetchers.balanceCalls)
	assert.Equal(t, 2, fetchers.priceCalls)
}

func TestBalances_WalletBalancesSkipsFailures(t *testing.T) {
	var calls atomic.Int32
	balance := func(_ context.Context, chain domain.Chain, address string) (domain.Balance, error) {
		calls.Add(1)
		if chain == domain.ChainBitcoin {
			return domain.Balance{}, errors.New("no btc indexer")
		}
		return domain.Balance{Chain: chain, Address: address, Amount: "1"}, nil
	}
	_, price := StaticBalances(nil, nil)
	b := NewBalances(balance, price)

	w := &domain.Wallet{
		Addresses: []domain.WalletAddress{
			{Chain: domain.ChainEthereum, Address: "0xaaa"},
			{Chain: domain.ChainBitcoin, Address: "bc1qxy"},
			{Chain: domain.ChainSolana, Address: "So1ana"},
		},
	}

	got := b.WalletBalances(context.Background(), w)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBalances_USDValue(t *testing.T) {
	b, _, _ := newTestBalances(t)

	v, err := b.USDValue(context.Background(), domain.ChainEthereum, 2)
	require.NoError(t, err)
	assert.InDelta(t, 6400, v, 0.001)

	_, err = b.USDValue(context.Background(), domain.Chain("dogecoin"), 1)
	assert.Error(t, err)
}

func TestStaticBalances(t *testing.T) {
	balance, price := StaticBalances(
		map[string]domain.Balance{
			"Ethereum:0xaaa": {Chain: domain.ChainEthereum, Address: "0xaaa", Amount: "7"},
		},
		map[string]float64{"ETH": 3200},
	)

	got, err := balance(context.Background(), domain.ChainEthereum, "0xaaa")
	require.NoError(t, err)
	assert.Equal(t, "7", got.Amount)

	// Unknown addresses read as zero, not an error.
	got, err = balance(context.Background(), domain.ChainSolana, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "0", got.Amount)

	p, err := price(context.Background(), "ETH")
	require.NoError(t, err)
	assert.InDelta(t, 3200, p.USD, 0.001)
}
