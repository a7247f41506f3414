package cosigner

import (
	"context"

	"panoplia-wallet/internal/domain"
)

// API is the surface of the MPC co-signer server the client consumes. The
// HTTP implementation is Client; stub.Client provides in-memory demo data
// for offline mode.
type API interface {
	// Auth
	Register(ctx context.Context, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Me(ctx context.Context) (*domain.User, error)

	// Vaults
	CreateVault(ctx context.Context, name string) (*CreateVaultResponse, error)
	ListVaults(ctx context.Context) ([]VaultDetail, error)
	GetVault(ctx context.Context, vaultID string) (*VaultDetail, error)
	ArchiveVault(ctx context.Context, vaultID string) error
	ExportVault(ctx context.Context, vaultID string) (string, error)
	ImportVault(ctx context.Context, fileContent string) (string, error)

	// Transactions
	SignTransaction(ctx context.Context, vaultID string, req SignRequest) (*SignResponse, error)
	ListTransactions(ctx context.Context, vaultID string) ([]domain.Transaction, error)

	// Social recovery
	SetupRecovery(ctx context.Context, vaultID string, guardians []GuardianInput, threshold int) (*SetupRecoveryResponse, error)
	GetRecovery(ctx context.Context, vaultID string) (*domain.RecoveryConfig, error)
	DeleteRecovery(ctx context.Context, vaultID string) error
	InitiateRecovery(ctx context.Context, vaultID, email string) (*domain.RecoveryAttempt, error)
	SubmitRecoveryShare(ctx context.Context, attemptID, guardianID, shareData string) (*ShareProgress, error)
	CompleteRecovery(ctx context.Context, attemptID string) (string, error)

	// Health
	Health(ctx context.Context) (*HealthResponse, error)
}
