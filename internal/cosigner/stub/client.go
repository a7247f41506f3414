// Package stub implements cosigner.API with in-memory demo data. It backs
// the explicit offline mode (PANOPLIA_OFFLINE=true) and tests; demo vaults
// carry "demo-" ids and never reach a real server, so they cannot leak into
// a server-backed wallet list.
package stub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/domain"
)

// Client is an offline in-memory implementation of cosigner.API.
type Client struct {
	mu sync.Mutex

	// ActivateAfter is how many GetVault calls a new vault stays pending
	// before flipping to active. Zero activates immediately.
	ActivateAfter int

	user         *domain.User
	vaults       map[string]*cosigner.VaultDetail
	pendingPolls map[string]int
	transactions map[string][]domain.Transaction
	recovery     map[string]*domain.RecoveryConfig
	attempts     map[string]*domain.RecoveryAttempt
}

// NewClient creates an offline client seeded with demo vaults.
func NewClient() *Client {
	c := &Client{
		vaults:       make(map[string]*cosigner.VaultDetail),
		pendingPolls: make(map[string]int),
		transactions: make(map[string][]domain.Transaction),
		recovery:     make(map[string]*domain.RecoveryConfig),
		attempts:     make(map[string]*domain.RecoveryAttempt),
	}
	for _, v := range demoVaults() {
		vault := v
		c.vaults[vault.ID] = &vault
	}
	return c
}

func demoVaults() []cosigner.VaultDetail {
	return []cosigner.VaultDetail{
		{
			ID:           "demo-vault-1",
			Name:         "Main Wallet",
			Threshold:    2,
			TotalParties: 2,
			Status:       domain.VaultActive,
			Addresses: []domain.WalletAddress{
				{Chain: domain.ChainEthereum, Address: "0x742d35Cc6634C0532925a3b844Bc9e7595f4a23F"},
				{Chain: domain.ChainBitcoin, Address: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"},
				{Chain: domain.ChainSolana, Address: "7EcDhSYGxXyscszYEp35KHN8vvw3svAuLKTzXwCFLtV"},
			},
			CreatedAt: time.Now().Add(-30 * 24 * time.Hour),
		},
		{
			ID:           "demo-vault-2",
			Name:         "Trading Wallet",
			Threshold:    2,
			TotalParties: 2,
			Status:       domain.VaultActive,
			Addresses: []domain.WalletAddress{
				{Chain: domain.ChainEthereum, Address: "0x8B3392483BA26D65E331dB86D4F430E9B3814E5e"},
			},
			CreatedAt: time.Now().Add(-7 * 24 * time.Hour),
		},
	}
}

// Register creates the offline demo account.
func (c *Client) Register(_ context.Context, email, _ string) (*cosigner.AuthResponse, error) {
	return c.login(email)
}

// Login accepts any credentials in offline mode.
func (c *Client) Login(_ context.Context, email, _ string) (*cosigner.AuthResponse, error) {
	return c.login(email)
}

func (c *Client) login(email string) (*cosigner.AuthResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &domain.User{ID: "demo-user", Email: email}
	return &cosigner.AuthResponse{Token: "demo-token", User: *c.user}, nil
}

// Me returns the demo account.
func (c *Client) Me(_ context.Context) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, &cosigner.APIError{Status: 401, Message: "not authenticated"}
	}
	u := *c.user
	return &u, nil
}

// CreateVault creates a demo vault that activates after ActivateAfter polls.
func (c *Client) CreateVault(_ context.Context, name string) (*cosigner.CreateVaultResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := "demo-" + uuid.NewString()
	c.vaults[id] = &cosigner.VaultDetail{
		ID:           id,
		Name:         name,
		Threshold:    2,
		TotalParties: 2,
		Status:       domain.VaultPending,
		Addresses: []domain.WalletAddress{
			{Chain: domain.ChainEthereum, Address: fmt.Sprintf("0x%040x", len(c.vaults)+1)},
		},
		CreatedAt: time.Now(),
	}
	c.pendingPolls[id] = c.ActivateAfter

	return &cosigner.CreateVaultResponse{
		VaultID:   id,
		SessionID: uuid.NewString(),
		QRPayload: "panoplia://pair/" + id,
		Status:    domain.VaultPending,
	}, nil
}

// ListVaults returns all non-archived demo vaults.
func (c *Client) ListVaults(_ context.Context) ([]cosigner.VaultDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cosigner.VaultDetail, 0, len(c.vaults))
	for _, v := range c.vaults {
		out = append(out, *v)
	}
	return out, nil
}

// GetVault returns one demo vault, activating pending ones on schedule.
func (c *Client) GetVault(_ context.Context, vaultID string) (*cosigner.VaultDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.vaults[vaultID]
	if !ok {
		return nil, &cosigner.APIError{Status: 404, Message: "vault not found"}
	}
	if v.Status == domain.VaultPending {
		if c.pendingPolls[vaultID] <= 0 {
			v.Status = domain.VaultActive
		} else {
			c.pendingPolls[vaultID]--
		}
	}
	out := *v
	return &out, nil
}

// ArchiveVault archives a demo vault.
func (c *Client) ArchiveVault(_ context.Context, vaultID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vaults[vaultID]
	if !ok {
		return &cosigner.APIError{Status: 404, Message: "vault not found"}
	}
	v.Status = domain.VaultArchived
	delete(c.vaults, vaultID)
	return nil
}

// ExportVault returns a fake backup blob.
func (c *Client) ExportVault(_ context.Context, vaultID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vaults[vaultID]; !ok {
		return "", &cosigner.APIError{Status: 404, Message: "vault not found"}
	}
	return "demo-export:" + vaultID, nil
}

// ImportVault restores nothing and returns a fresh demo id.
func (c *Client) ImportVault(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := "demo-" + uuid.NewString()
	c.vaults[id] = &cosigner.VaultDetail{
		ID:        id,
		Name:      "Imported Wallet",
		Status:    domain.VaultActive,
		CreatedAt: time.Now(),
	}
	return id, nil
}

// SignTransaction records a confirmed demo transaction.
func (c *Client) SignTransaction(_ context.Context, vaultID string, req cosigner.SignRequest) (*cosigner.SignResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vaults[vaultID]; !ok {
		return nil, &cosigner.APIError{Status: 404, Message: "vault not found"}
	}

	sessionID := uuid.NewString()
	c.transactions[vaultID] = append(c.transactions[vaultID], domain.Transaction{
		ID:        sessionID,
		VaultID:   vaultID,
		Chain:     req.Chain,
		To:        req.To,
		Amount:    req.Amount,
		Memo:      req.Memo,
		Status:    domain.TxConfirmed,
		CreatedAt: time.Now(),
	})
	return &cosigner.SignResponse{SessionID: sessionID, SigningPayload: "demo-payload"}, nil
}

// ListTransactions returns the demo signing history.
func (c *Client) ListTransactions(_ context.Context, vaultID string) ([]domain.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Transaction(nil), c.transactions[vaultID]...), nil
}

// SetupRecovery stores a demo recovery configuration.
func (c *Client) SetupRecovery(_ context.Context, vaultID string, guardians []cosigner.GuardianInput, threshold int) (*cosigner.SetupRecoveryResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := &domain.RecoveryConfig{
		RecoveryID: uuid.NewString(),
		VaultID:    vaultID,
		Threshold:  threshold,
	}
	ids := make([]string, len(guardians))
	for i, g := range guardians {
		ids[i] = uuid.NewString()
		cfg.Guardians = append(cfg.Guardians, domain.Guardian{
			ID:     ids[i],
			Name:   g.Name,
			Email:  g.Email,
			Status: domain.GuardianPending,
		})
	}
	c.recovery[vaultID] = cfg
	return &cosigner.SetupRecoveryResponse{RecoveryID: cfg.RecoveryID, GuardianIDs: ids}, nil
}

// GetRecovery returns the demo recovery configuration, nil if unset.
func (c *Client) GetRecovery(_ context.Context, vaultID string) (*domain.RecoveryConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.recovery[vaultID]
	if !ok {
		return nil, nil
	}
	out := *cfg
	return &out, nil
}

// DeleteRecovery removes the demo recovery configuration.
func (c *Client) DeleteRecovery(_ context.Context, vaultID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.recovery, vaultID)
	return nil
}

// InitiateRecovery starts a demo recovery attempt.
func (c *Client) InitiateRecovery(_ context.Context, vaultID, _ string) (*domain.RecoveryAttempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	needed := 2
	if cfg, ok := c.recovery[vaultID]; ok {
		needed = cfg.Threshold
	}
	attempt := &domain.RecoveryAttempt{
		AttemptID: uuid.NewString(),
		VaultID:   vaultID,
		Needed:    needed,
	}
	c.attempts[attempt.AttemptID] = attempt
	out := *attempt
	return &out, nil
}

// SubmitRecoveryShare counts a share toward the demo attempt.
func (c *Client) SubmitRecoveryShare(_ context.Context, attemptID, _, _ string) (*cosigner.ShareProgress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	attempt, ok := c.attempts[attemptID]
	if !ok {
		return nil, &cosigner.APIError{Status: 404, Message: "recovery attempt not found"}
	}
	attempt.Collected++
	return &cosigner.ShareProgress{Collected: attempt.Collected, Needed: attempt.Needed}, nil
}

// CompleteRecovery finishes a demo attempt once enough shares are in.
func (c *Client) CompleteRecovery(_ context.Context, attemptID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	attempt, ok := c.attempts[attemptID]
	if !ok {
		return "", &cosigner.APIError{Status: 404, Message: "recovery attempt not found"}
	}
	if attempt.Collected < attempt.Needed {
		return "", &cosigner.APIError{Status: 400, Message: "not enough shares collected"}
	}
	return "demo-recovered:" + attempt.VaultID, nil
}

// Health always reports healthy.
func (c *Client) Health(_ context.Context) (*cosigner.HealthResponse, error) {
	return &cosigner.HealthResponse{Status: "ok", Timestamp: time.Now()}, nil
}
