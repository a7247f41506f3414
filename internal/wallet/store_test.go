package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/cosigner/stub"
	"panoplia-wallet/internal/domain"
	"panoplia-wallet/internal/localstore"
)

// recordingSleep skips real waits and records each requested delay.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleep) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func newTestStore(api cosigner.API) (*Store, localstore.Store, *recordingSleep) {
	local := localstore.NewMemoryStore()
	sleep := &recordingSleep{}
	s := NewStore(api, local, WithSleep(sleep.sleep))
	return s, local, sleep
}

func TestStore_FetchWallets(t *testing.T) {
	s, _, _ := newTestStore(stub.NewClient())

	list, err := s.FetchWallets(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, w := range list {
		assert.Equal(t, domain.VaultActive, w.Status)
	}
	assert.Nil(t, s.Active())
}

func TestStore_FetchWalletsResolvesActivePointer(t *testing.T) {
	s, local, _ := newTestStore(stub.NewClient())
	require.NoError(t, local.Set(localstore.KeyActiveWalletID, "demo-vault-1"))

	_, err := s.FetchWallets(context.Background())
	require.NoError(t, err)

	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, "demo-vault-1", active.ID)
	assert.Equal(t, "Main Wallet", active.Name)
	// The primary address is the Ethereum one.
	assert.Equal(t, active.AddressFor(domain.ChainEthereum), active.PrimaryAddress)
}

func TestStore_FetchWalletsDropsGhostPointer(t *testing.T) {
	s, local, _ := newTestStore(stub.NewClient())
	require.NoError(t, local.Set(localstore.KeyActiveWalletID, "vault-that-was-deleted"))

	_, err := s.FetchWallets(context.Background())
	require.NoError(t, err)

	assert.Nil(t, s.Active())
	_, ok := local.Get(localstore.KeyActiveWalletID)
	assert.False(t, ok)
}

func TestStore_CreateWalletPollsUntilActive(t *testing.T) {
	api := stub.NewClient()
	api.ActivateAfter = 3
	s, _, sleep := newTestStore(api)

	var accepted *cosigner.CreateVaultResponse
	w, err := s.CreateWallet(context.Background(), "savings", func(resp *cosigner.CreateVaultResponse) {
		accepted = resp
	})
	require.NoError(t, err)

	require.NotNil(t, accepted)
	assert.NotEmpty(t, accepted.QRPayload)
	assert.Equal(t, domain.VaultPending, accepted.Status)

	assert.Equal(t, "savings", w.Name)
	assert.Equal(t, domain.VaultActive, w.Status)

	// Each poll after the first waits the poll interval.
	for _, d := range sleep.recorded() {
		assert.Equal(t, DefaultPollInterval, d)
	}
	assert.Len(t, sleep.recorded(), 3)

	// The activated wallet joined the local list.
	found := false
	for _, item := range s.Wallets() {
		if item.ID == w.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStore_CreateWalletActivationTimeout(t *testing.T) {
	api := stub.NewClient()
	api.ActivateAfter = 100
	s, _, sleep := newTestStore(api)

	before := len(s.Wallets())
	_, err := s.CreateWallet(context.Background(), "stuck", nil)
	assert.ErrorIs(t, err, ErrActivationTimeout)

	// The poll budget was spent in full before giving up.
	assert.Len(t, sleep.recorded(), DefaultPollAttempts-1)
	// A vault that never activated must not appear locally.
	assert.Len(t, s.Wallets(), before)
}

func TestStore_CreateWalletRejectsEmptyName(t *testing.T) {
	s, _, _ := newTestStore(stub.NewClient())
	_, err := s.CreateWallet(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestStore_SetActiveWallet(t *testing.T) {
	s, local, _ := newTestStore(stub.NewClient())
	_, err := s.FetchWallets(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.SetActiveWallet("demo-vault-2"))

	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, "demo-vault-2", active.ID)

	id, ok := local.Get(localstore.KeyActiveWalletID)
	assert.True(t, ok)
	assert.Equal(t, "demo-vault-2", id)

	var snapshot domain.Wallet
	assert.True(t, localstore.GetJSON(local, localstore.KeyActiveWallet, &snapshot))
	assert.Equal(t, "demo-vault-2", snapshot.ID)

	assert.Error(t, s.SetActiveWallet("nope"))
}

func TestStore_SetActiveWalletResetsTransactions(t *testing.T) {
	api := stub.NewClient()
	s, _, _ := newTestStore(api)
	_, err := s.FetchWallets(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.SetActiveWallet("demo-vault-1"))
	_, err = s.Send(context.Background(), cosigner.SignRequest{
		Chain:  domain.ChainEthereum,
		To:     "0x8B3392483BA26D65E331dB86D4F430E9B3814E5e",
		Amount: "1.5",
	})
	require.NoError(t, err)
	assert.Len(t, s.FetchTransactions(context.Background()), 1)

	require.NoError(t, s.SetActiveWallet("demo-vault-2"))
	assert.Empty(t, s.Transactions())
}

func TestStore_RestoreActiveWallet(t *testing.T) {
	s, local, _ := newTestStore(stub.NewClient())
	snapshot := domain.Wallet{ID: "demo-vault-1", Name: "Main Wallet", Status: domain.VaultActive}
	require.NoError(t, local.Set(localstore.KeyActiveWalletID, snapshot.ID))
	require.NoError(t, localstore.SetJSON(local, localstore.KeyActiveWallet, snapshot))

	restored := s.RestoreActiveWallet()
	require.NotNil(t, restored)
	assert.Equal(t, "demo-vault-1", restored.ID)
	assert.Equal(t, "demo-vault-1", s.Active().ID)
}

func TestStore_RestoreActiveWalletMismatchedSnapshot(t *testing.T) {
	s, local, _ := newTestStore(stub.NewClient())
	require.NoError(t, local.Set(localstore.KeyActiveWalletID, "demo-vault-1"))
	require.NoError(t, localstore.SetJSON(local, localstore.KeyActiveWallet,
		domain.Wallet{ID: "some-other-vault"}))

	assert.Nil(t, s.RestoreActiveWallet())
}

func TestStore_ArchiveActiveWalletClearsSelection(t *testing.T) {
	s, local, _ := newTestStore(stub.NewClient())
	_, err := s.FetchWallets(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.SetActiveWallet("demo-vault-1"))

	require.NoError(t, s.ArchiveWallet(context.Background(), "demo-vault-1"))

	assert.Nil(t, s.Active())
	assert.Len(t, s.Wallets(), 1)
	_, ok := local.Get(localstore.KeyActiveWalletID)
	assert.False(t, ok)
}

// failingTransactions makes history lookups fail while everything else works.
type failingTransactions struct {
	*stub.Client
}

func (f *failingTransactions) ListTransactions(context.Context, string) ([]domain.Transaction, error) {
	return nil, &cosigner.NetworkError{Err: errors.New("connection refused")}
}

func TestStore_FetchTransactionsDegradesToEmpty(t *testing.T) {
	api := &failingTransactions{Client: stub.NewClient()}
	s, _, _ := newTestStore(api)
	_, err := s.FetchWallets(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.SetActiveWallet("demo-vault-1"))

	txs := s.FetchTransactions(context.Background())
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestStore_FetchTransactionsWithoutActive(t *testing.T) {
	s, _, _ := newTestStore(stub.NewClient())
	assert.Nil(t, s.FetchTransactions(context.Background()))
}

func TestStore_SendWithoutActive(t *testing.T) {
	s, _, _ := newTestStore(stub.NewClient())
	_, err := s.Send(context.Background(), cosigner.SignRequest{})
	assert.ErrorIs(t, err, ErrNoActiveWallet)
}

func TestStore_Reset(t *testing.T) {
	s, local, _ := newTestStore(stub.NewClient())
	_, err := s.FetchWallets(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.SetActiveWallet("demo-vault-1"))

	s.Reset()

	assert.Empty(t, s.Wallets())
	assert.Nil(t, s.Active())
	assert.Empty(t, s.Transactions())
	_, ok := local.Get(localstore.KeyActiveWalletID)
	assert.False(t, ok)
	_, ok = local.Get(localstore.KeyActiveWallet)
	assert.False(t, ok)
}

func TestStore_RecoveryFlow(t *testing.T) {
	s, _, _ := newTestStore(stub.NewClient())
	ctx := context.Background()
	_, err := s.FetchWallets(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetActiveWallet("demo-vault-1"))

	_, err = s.SetupRecovery(ctx, []cosigner.GuardianInput{
		{Name: "Alice", Email: "alice@b.com"},
		{Name: "Bob", Email: "bob@b.com"},
		{Name: "Carol", Email: "carol@b.com"},
	}, 2)
	require.NoError(t, err)

	cfg, err := s.RecoveryConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 2, cfg.Threshold)
	assert.Len(t, cfg.Guardians, 3)

	attempt, err := s.InitiateRecovery(ctx, "demo-vault-1", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.Needed)

	for i := 0; i < 2; i++ {
		_, err = s.SubmitRecoveryShare(ctx, attempt.AttemptID, "g", "share")
		require.NoError(t, err)
	}

	id, err := s.CompleteRecovery(ctx, attempt.AttemptID)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NoError(t, s.RemoveRecovery(ctx))
	cfg, err = s.RecoveryConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestStore_SetupRecoveryThresholdBounds(t *testing.T) {
	s, _, _ := newTestStore(stub.NewClient())
	ctx := context.Background()
	_, err := s.FetchWallets(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetActiveWallet("demo-vault-1"))

	guardians := []cosigner.GuardianInput{{Name: "Alice", Email: "alice@b.com"}}
	_, err = s.SetupRecovery(ctx, guardians, 0)
	assert.Error(t, err)
	_, err = s.SetupRecovery(ctx, guardians, 2)
	assert.Error(t, err)
}
