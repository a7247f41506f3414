package cosigner

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"panoplia-wallet/internal/domain"
)

// Register creates an account and returns its first session token.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.request(ctx, http.MethodPost, "/auth/register", credentialsRequest{Email: email, Password: password}, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.request(ctx, http.MethodPost, "/auth/login", credentialsRequest{Email: email, Password: password}, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account behind the current bearer token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.request(ctx, http.MethodGet, "/auth/me", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVault starts vault creation. The returned vault stays pending until
// remote key generation completes; poll GetVault for status active.
func (c *Client) CreateVault(ctx context.Context, name string) (*CreateVaultResponse, error) {
	var out CreateVaultResponse
	err := c.request(ctx, http.MethodPost, "/vaults", createVaultRequest{Name: name}, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVaults returns every vault of the current account.
func (c *Client) ListVaults(ctx context.Context) ([]VaultDetail, error) {
	var out listVaultsResponse
	if err := c.request(ctx, http.MethodGet, "/vaults", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Vaults, nil
}

// GetVault returns one vault record.
func (c *Client) GetVault(ctx context.Context, vaultID string) (*VaultDetail, error) {
	var out VaultDetail
	if err := c.request(ctx, http.MethodGet, "/vaults/"+url.PathEscape(vaultID), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveVault archives a vault. Archival is terminal.
func (c *Client) ArchiveVault(ctx context.Context, vaultID string) error {
	return c.request(ctx, http.MethodDelete, "/vaults/"+url.PathEscape(vaultID), nil, nil, nil)
}

// ExportVault returns the encrypted vault backup blob.
func (c *Client) ExportVault(ctx context.Context, vaultID string) (string, error) {
	var out exportVaultResponse
	if err := c.request(ctx, http.MethodGet, "/vaults/"+url.PathEscape(vaultID)+"/export", nil, &out, nil); err != nil {
		return "", err
	}
	return out.VaultContent, nil
}

// ImportVault restores a vault from an exported backup and returns its id.
func (c *Client) ImportVault(ctx context.Context, fileContent string) (string, error) {
	var out importVaultResponse
	if err := c.request(ctx, http.MethodPost, "/vaults/import", importVaultRequest{FileContent: fileContent}, &out, nil); err != nil {
		return "", err
	}
	return out.VaultID, nil
}

// SignTransaction starts an MPC signing session for a transfer.
func (c *Client) SignTransaction(ctx context.Context, vaultID string, req SignRequest) (*SignResponse, error) {
	var out SignResponse
	err := c.request(ctx, http.MethodPost, "/vaults/"+url.PathEscape(vaultID)+"/transactions/sign", req, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTransactions returns the signing history of a vault.
func (c *Client) ListTransactions(ctx context.Context, vaultID string) ([]domain.Transaction, error) {
	var out listTransactionsResponse
	if err := c.request(ctx, http.MethodGet, "/vaults/"+url.PathEscape(vaultID)+"/transactions", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// SetupRecovery configures social recovery for a vault.
func (c *Client) SetupRecovery(ctx context.Context, vaultID string, guardians []GuardianInput, threshold int) (*SetupRecoveryResponse, error) {
	var out SetupRecoveryResponse
	body := setupRecoveryRequest{Guardians: guardians, Threshold: threshold}
	err := c.request(ctx, http.MethodPost, "/vaults/"+url.PathEscape(vaultID)+"/recovery/setup", body, &out, nil)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecovery returns the vault's recovery configuration, or nil if none is
// set up.
func (c *Client) GetRecovery(ctx context.Context, vaultID string) (*domain.RecoveryConfig, error) {
	var out domain.RecoveryConfig
	err := c.request(ctx, http.MethodGet, "/vaults/"+url.PathEscape(vaultID)+"/recovery", nil, &out, nil)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecovery removes the vault's recovery configuration.
func (c *Client) DeleteRecovery(ctx context.Context, vaultID string) error {
	return c.request(ctx, http.MethodDelete, "/vaults/"+url.PathEscape(vaultID)+"/recovery", nil, nil, nil)
}

// InitiateRecovery starts a recovery attempt for a lost-device vault.
func (c *Client) InitiateRecovery(ctx context.Context, vaultID, email string) (*domain.RecoveryAttempt, error) {
	var out initiateRecoveryResponse
	body := initiateRecoveryRequest{VaultID: vaultID, Email: email}
	err := c.request(ctx, http.MethodPost, "/recovery/initiate", body, &out, nil)
	if err != nil {
		return nil, err
	}
	return &domain.RecoveryAttempt{
		AttemptID: out.AttemptID,
		VaultID:   vaultID,
		Needed:    out.SharesNeeded,
	}, nil
}

// SubmitRecoveryShare records one guardian's share for an attempt.
func (c *Client) SubmitRecoveryShare(ctx context.Context, attemptID, guardianID, shareData string) (*ShareProgress, error) {
	var out ShareProgress
	body := submitShareRequest{GuardianID: guardianID, ShareData: shareData}
	path := "/recovery/submit-share?attemptId=" + url.QueryEscape(attemptID)
	if err := c.request(ctx, http.MethodPost, path, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteRecovery finishes an attempt once enough shares are collected and
// returns the reconstructed vault content.
func (c *Client) CompleteRecovery(ctx context.Context, attemptID string) (string, error) {
	var out completeRecoveryResponse
	err := c.request(ctx, http.MethodPost, "/recovery/"+url.PathEscape(attemptID)+"/complete", nil, &out, nil)
	if err != nil {
		return "", err
	}
	return out.VaultContent, nil
}

// Health checks co-signer liveness. Fast timeout, no retries: callers poll
// this on their own schedule and a slow health probe is itself an answer.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	noRetries := 0
	var out HealthResponse
	err := c.request(ctx, http.MethodGet, "/health", nil, &out, &RequestConfig{
		Timeout: 5 * time.Second,
		Retries: &noRetries,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
