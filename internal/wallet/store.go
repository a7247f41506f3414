// Package wallet manages the local view of the user's vaults: the wallet
// list, the active-wallet pointer, transaction history, and the cached
// balance and price data layered on top.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/domain"
	"panoplia-wallet/internal/localstore"
	"panoplia-wallet/internal/observability"
)

const (
	// DefaultPollInterval is the delay between vault activation polls.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultPollAttempts bounds activation polling. With the default
	// interval the client waits about five seconds before giving up.
	DefaultPollAttempts = 10
)

// ErrActivationTimeout is returned by CreateWallet when the vault is created
// but does not reach active status within the polling window. The vault
// still exists server-side; it is not added to the local list.
var ErrActivationTimeout = errors.New("vault activation timed out")

// ErrNoActiveWallet is returned by operations that need a selected wallet.
var ErrNoActiveWallet = errors.New("no active wallet selected")

// Store holds the wallet list and active selection. All mutation goes
// through it; reads return copies so callers never alias internal state.
type Store struct {
	api     cosigner.API
	local   localstore.Store
	logger  *zap.Logger
	metrics *observability.Metrics

	pollInterval time.Duration
	pollAttempts int
	sleep        cosigner.SleepFunc

	mu           sync.Mutex
	wallets      []domain.Wallet
	active       *domain.Wallet
	transactions []domain.Transaction
	fetchGen     uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics enables activation-poll instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithPolling overrides the activation polling schedule.
func WithPolling(interval time.Duration, attempts int) Option {
	return func(s *Store) {
		s.pollInterval = interval
		s.pollAttempts = attempts
	}
}

// WithSleep overrides the poll delay function. Tests inject an instant
// sleep that records requested durations.
func WithSleep(sleep cosigner.SleepFunc) Option {
	return func(s *Store) { s.sleep = sleep }
}

// NewStore creates a wallet store backed by the given API and local storage.
func NewStore(api cosigner.API, local localstore.Store, opts ...Option) *Store {
	s := &Store{
		api:          api,
		local:        local,
		logger:       zap.NewNop(),
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wallets returns a copy of the current wallet list.
func (s *Store) Wallets() []domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Wallet(nil), s.wallets...)
}

// Active returns a copy of the active wallet, nil if none is selected.
func (s *Store) Active() *domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	w := *s.active
	return &w
}

// Transactions returns a copy of the active wallet's loaded history.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.transactions...)
}

// FetchWallets replaces the wallet list with the server's current view and
// re-resolves the active pointer against it. If the previously active wallet
// no longer exists server-side the selection is dropped rather than kept as
// a ghost. A fetch that was overtaken by a newer one discards its result.
func (s *Store) FetchWallets(ctx context.Context) ([]domain.Wallet, error) {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	vaults, err := s.api.ListVaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch wallets: %w", err)
	}

	wallets := make([]domain.Wallet, 0, len(vaults))
	for _, v := range vaults {
		if v.Status == domain.VaultArchived {
			continue
		}
		wallets = append(wallets, walletFromVault(v))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		return append([]domain.Wallet(nil), s.wallets...), nil
	}
	s.wallets = wallets
	s.resolveActiveLocked()
	return append([]domain.Wallet(nil), s.wallets...), nil
}

// resolveActiveLocked re-points s.active at the list entry matching the
// persisted active id. Called with s.mu held.
func (s *Store) resolveActiveLocked() {
	id, ok := s.local.Get(localstore.KeyActiveWalletID)
	if !ok || id == "" {
		s.active = nil
		return
	}
	for i := range s.wallets {
		if s.wallets[i].ID == id {
			s.active = &s.wallets[i]
			s.persistActiveLocked()
			return
		}
	}
	s.active = nil
	s.clearActiveLocked()
	s.logger.Warn("active wallet no longer exists, selection cleared", zap.String("wallet_id", id))
}

// CreateWallet creates a vault and waits for it to activate. The server
// acknowledges creation immediately; onAccepted, if non-nil, is invoked with
// that acknowledgment (carrying the pairing QR payload) before polling
// starts. The new wallet joins the local list only once active; a vault
// still pending after the polling window yields ErrActivationTimeout.
func (s *Store) CreateWallet(ctx context.Context, name string, onAccepted func(*cosigner.CreateVaultResponse)) (*domain.Wallet, error) {
	if name == "" {
		return nil, errors.New("wallet name must not be empty")
	}

	resp, err := s.api.CreateVault(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	if onAccepted != nil {
		onAccepted(resp)
	}

	vault, err := s.waitForActivation(ctx, resp.VaultID)
	if err != nil {
		return nil, err
	}

	w := walletFromVault(*vault)
	s.mu.Lock()
	s.wallets = append(s.wallets, w)
	s.mu.Unlock()

	s.logger.Info("wallet created", zap.String("wallet_id", w.ID), zap.String("name", w.Name))
	return &w, nil
}

// waitForActivation polls GetVault until the vault reports active. Transport
// errors on individual polls are tolerated; only the poll budget ends the
// wait.
func (s *Store) waitForActivation(ctx context.Context, vaultID string) (*cosigner.VaultDetail, error) {
	sleep := s.sleep
	if sleep == nil {
		sleep = cosigner.DefaultSleep
	}

	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, s.pollInterval); err != nil {
				return nil, err
			}
		}
		if s.metrics != nil {
			s.metrics.ActivationPolls.Inc()
		}

		vault, err := s.api.GetVault(ctx, vaultID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Debug("activation poll failed", zap.String("vault_id", vaultID), zap.Error(err))
			continue
		}
		if vault.Status == domain.VaultActive {
			return vault, nil
		}
	}

	if s.metrics != nil {
		s.metrics.ActivationTimeouts.Inc()
	}
	return nil, fmt.Errorf("vault %s: %w", vaultID, ErrActivationTimeout)
}

// SetActiveWallet selects a wallet by id, persists the selection, and resets
// the loaded transaction history.
func (s *Store) SetActiveWallet(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.wallets {
		if s.wallets[i].ID == id {
			s.active = &s.wallets[i]
			s.transactions = nil
			s.persistActiveLocked()
			return nil
		}
	}
	return fmt.Errorf("wallet %s not found", id)
}

func (s *Store) persistActiveLocked() {
	if err := s.local.Set(localstore.KeyActiveWalletID, s.active.ID); err != nil {
		s.logger.Warn("persist active wallet id failed", zap.Error(err))
	}
	if err := localstore.SetJSON(s.local, localstore.KeyActiveWallet, *s.active); err != nil {
		s.logger.Warn("persist active wallet snapshot failed", zap.Error(err))
	}
}

func (s *Store) clearActiveLocked() {
	if err := s.local.Delete(localstore.KeyActiveWalletID); err != nil {
		s.logger.Warn("clear active wallet id failed", zap.Error(err))
	}
	if err := s.local.Delete(localstore.KeyActiveWallet); err != nil {
		s.logger.Warn("clear active wallet snapshot failed", zap.Error(err))
	}
}

// RestoreActiveWallet loads the persisted active-wallet snapshot for instant
// display before the first server fetch. The snapshot is provisional; the
// next FetchWallets re-resolves the pointer by id and drops it if the vault
// is gone.
func (s *Store) RestoreActiveWallet() *domain.Wallet {
	id, ok := s.local.Get(localstore.KeyActiveWalletID)
	if !ok || id == "" {
		return nil
	}
	var snapshot domain.Wallet
	if !localstore.GetJSON(s.local, localstore.KeyActiveWallet, &snapshot) {
		return nil
	}
	if snapshot.ID != id {
		// Snapshot drifted from the pointer; trust neither.
		return nil
	}

	s.mu.Lock()
	s.wallets = []domain.Wallet{snapshot}
	s.active = &s.wallets[0]
	s.mu.Unlock()

	w := snapshot
	return &w
}

// ArchiveWallet archives a wallet server-side and removes it locally. If it
// was the active wallet the selection is cleared.
func (s *Store) ArchiveWallet(ctx context.Context, id string) error {
	if err := s.api.ArchiveVault(ctx, id); err != nil {
		return fmt.Errorf("archive wallet: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.wallets[:0]
	for i := range s.wallets {
		if s.wallets[i].ID != id {
			kept = append(kept, s.wallets[i])
		}
	}
	s.wallets = kept
	if s.active != nil && s.active.ID == id {
		s.active = nil
		s.transactions = nil
		s.clearActiveLocked()
	} else {
		s.resolveActiveLocked()
	}
	return nil
}

// FetchTransactions loads the active wallet's signing history. A server
// failure degrades to an empty list; missing history must not block the
// wallet view.
func (s *Store) FetchTransactions(ctx context.Context) []domain.Transaction {
	s.mu.Lock()
	active := s.active
	var id string
	if active != nil {
		id = active.ID
	}
	s.mu.Unlock()
	if id == "" {
		return nil
	}

	txs, err := s.api.ListTransactions(ctx, id)
	if err != nil {
		s.logger.Warn("fetch transactions failed", zap.String("wallet_id", id), zap.Error(err))
		txs = nil
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}

	s.mu.Lock()
	s.transactions = txs
	s.mu.Unlock()
	return append([]domain.Transaction(nil), txs...)
}

// Send signs a transfer from the active wallet through the co-signer.
func (s *Store) Send(ctx context.Context, req cosigner.SignRequest) (*cosigner.SignResponse, error) {
	s.mu.Lock()
	active := s.active
	var id string
	if active != nil {
		id = active.ID
	}
	s.mu.Unlock()
	if id == "" {
		return nil, ErrNoActiveWallet
	}

	resp, err := s.api.SignTransaction(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return resp, nil
}

// Export returns the active wallet's encrypted backup content.
func (s *Store) Export(ctx context.Context) (string, error) {
	s.mu.Lock()
	active := s.active
	var id string
	if active != nil {
		id = active.ID
	}
	s.mu.Unlock()
	if id == "" {
		return "", ErrNoActiveWallet
	}
	return s.api.ExportVault(ctx, id)
}

// Import restores a wallet from backup content and refreshes the list.
func (s *Store) Import(ctx context.Context, fileContent string) (string, error) {
	id, err := s.api.ImportVault(ctx, fileContent)
	if err != nil {
		return "", fmt.Errorf("import wallet: %w", err)
	}
	if _, err := s.FetchWallets(ctx); err != nil {
		s.logger.Warn("refresh after import failed", zap.Error(err))
	}
	return id, nil
}

// Reset clears all wallet state, in memory and persisted. Registered as the
// session's logout hook.
func (s *Store) Reset() {
	s.mu.Lock()
	s.wallets = nil
	s.active = nil
	s.transactions = nil
	s.fetchGen++
	s.mu.Unlock()
	s.clearActive()
}

func (s *Store) clearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearActiveLocked()
}

// walletFromVault projects a server vault record into the local wallet view.
// The primary address is the Ethereum address, "" if the vault has none.
func walletFromVault(v cosigner.VaultDetail) domain.Wallet {
	w := domain.Wallet{
		ID:        v.ID,
		Name:      v.Name,
		Status:    v.Status,
		Addresses: append([]domain.WalletAddress(nil), v.Addresses...),
		CreatedAt: v.CreatedAt,
	}
	w.PrimaryAddress = w.AddressFor(domain.PrimaryChain)
	return w
}
