package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"panoplia-wallet/internal/cache"
	"panoplia-wallet/internal/chains"
	"panoplia-wallet/internal/domain"
	"panoplia-wallet/internal/observability"
	"panoplia-wallet/internal/result"
)

const (
	// BalanceTTL bounds how long a fetched balance serves reads.
	BalanceTTL = 30 * time.Second

	// PriceTTL bounds how long a fetched price serves reads. Prices move
	// slower than balances, so they live longer.
	PriceTTL = 60 * time.Second
)

// BalanceFetcher retrieves the native balance of one address on one chain.
type BalanceFetcher func(ctx context.Context, chain domain.Chain, address string) (domain.Balance, error)

// PriceFetcher retrieves the USD spot price for a token symbol.
type PriceFetcher func(ctx context.Context, symbol string) (domain.Price, error)

// Balances caches chain balances and token prices over injected fetchers.
// Entries expire lazily on read; nothing is evicted in the background.
type Balances struct {
	fetchBalance BalanceFetcher
	fetchPrice   PriceFetcher
	balances     *cache.TTL[domain.Balance]
	prices       *cache.TTL[domain.Price]
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// BalancesOption configures a Balances.
type BalancesOption func(*Balances)

// WithBalancesLogger sets the logger.
func WithBalancesLogger(l *zap.Logger) BalancesOption {
	return func(b *Balances) { b.logger = l }
}

// WithBalancesMetrics enables cache hit/miss instrumentation.
func WithBalancesMetrics(m *observability.Metrics) BalancesOption {
	return func(b *Balances) { b.metrics = m }
}

// WithBalancesClock overrides the cache time source.
func WithBalancesClock(now func() time.Time) BalancesOption {
	return func(b *Balances) {
		b.balances = cache.New(cache.WithClock[domain.Balance](now))
		b.prices = cache.New(cache.WithClock[domain.Price](now))
	}
}

// NewBalances creates the cache layer over the given fetchers.
func NewBalances(balance BalanceFetcher, price PriceFetcher, opts ...BalancesOption) *Balances {
	b := &Balances{
		fetchBalance: balance,
		fetchPrice:   price,
		balances:     cache.New[domain.Balance](),
		prices:       cache.New[domain.Price](),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func balanceKey(chain domain.Chain, address string) string {
	return fmt.Sprintf("%s:%s", chain, address)
}

// Balance returns the cached balance for the address, fetching on a miss or
// expired entry.
func (b *Balances) Balance(ctx context.Context, chain domain.Chain, address string) (domain.Balance, error) {
	key := balanceKey(chain, address)
	if v, ok := b.balances.Get(key); ok {
		b.observe("balance", true)
		return v, nil
	}
	b.observe("balance", false)

	v, err := b.fetchBalance(ctx, chain, address)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("fetch balance %s: %w", key, err)
	}
	b.balances.Set(key, v, BalanceTTL)
	return v, nil
}

// Price returns the cached USD price for the symbol, fetching on a miss or
// expired entry.
func (b *Balances) Price(ctx context.Context, symbol string) (domain.Price, error) {
	if v, ok := b.prices.Get(symbol); ok {
		b.observe("price", true)
		return v, nil
	}
	b.observe("price", false)

	v, err := b.fetchPrice(ctx, symbol)
	if err != nil {
		return domain.Price{}, fmt.Errorf("fetch price %s: %w", symbol, err)
	}
	b.prices.Set(symbol, v, PriceTTL)
	return v, nil
}

// WalletBalances resolves every address of a wallet in parallel, skipping
// chains whose lookup fails so one dead RPC does not blank the whole view.
func (b *Balances) WalletBalances(ctx context.Context, w *domain.Wallet) []domain.Balance {
	results := make([]result.Result[domain.Balance], len(w.Addresses))
	var wg sync.WaitGroup
	for i, addr := range w.Addresses {
		wg.Add(1)
		go func(i int, addr domain.WalletAddress) {
			defer wg.Done()
			bal, err := b.Balance(ctx, addr.Chain, addr.Address)
			if err != nil {
				results[i] = result.Err[domain.Balance](err)
				return
			}
			results[i] = result.Ok(bal)
		}(i, addr)
	}
	wg.Wait()

	out := make([]domain.Balance, 0, len(results))
	for i, r := range results {
		if !r.Success {
			b.logger.Warn("balance lookup failed",
				zap.String("chain", string(w.Addresses[i].Chain)),
				zap.Error(r.Err))
			continue
		}
		out = append(out, r.Data)
	}
	return out
}

// USDValue prices a display-unit amount of a chain's native token.
func (b *Balances) USDValue(ctx context.Context, chain domain.Chain, amount float64) (float64, error) {
	info, ok := chains.Get(chain)
	if !ok {
		return 0, fmt.Errorf("unsupported chain %s", chain)
	}
	price, err := b.Price(ctx, info.Symbol)
	if err != nil {
		return 0, err
	}
	return amount * price.USD, nil
}

// ClearCache drops all cached balances and prices. Registered as a logout
// hook so no balance data crosses accounts.
func (b *Balances) ClearCache() {
	b.balances.Clear()
	b.prices.Clear()
}

func (b *Balances) observe(name string, hit bool) {
	if b.metrics == nil {
		return
	}
	if hit {
		b.metrics.CacheHits.WithLabelValues(name).Inc()
	} else {
		b.metrics.CacheMisses.WithLabelValues(name).Inc()
	}
}

// StaticBalances builds fetchers over fixed data, used by offline mode and
// tests.
func StaticBalances(balances map[string]domain.Balance, prices map[string]float64) (BalanceFetcher, PriceFetcher) {
	balance := func(_ context.Context, chain domain.Chain, address string) (domain.Balance, error) {
		if v, ok := balances[balanceKey(chain, address)]; ok {
			return v, nil
		}
		return domain.Balance{Chain: chain, Address: address, Amount: "0"}, nil
	}
	price := func(_ context.Context, symbol string) (domain.Price, error) {
		return domain.Price{Symbol: symbol, USD: prices[symbol], UpdatedAt: time.Now()}, nil
	}
	return balance, price
}
