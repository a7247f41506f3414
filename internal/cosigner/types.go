package cosigner

import (
	"time"

	"panoplia-wallet/internal/domain"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// CreateVaultResponse acknowledges a vault creation request. The vault id is
// assigned immediately; key generation continues asynchronously and the vault
// stays pending until it completes. QRPayload is shown to pair the co-signer
// device during that window.
type CreateVaultResponse struct {
	VaultID   string             `json:"vaultId"`
	SessionID string             `json:"sessionId"`
	QRPayload string             `json:"qrPayload"`
	Status    domain.VaultStatus `json:"status"`
}

// VaultDetail is the server's full record of a vault.
type VaultDetail struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Threshold    int                    `json:"threshold"`
	TotalParties int                    `json:"total_parties"`
	Status       domain.VaultStatus     `json:"status"`
	Addresses    []domain.WalletAddress `json:"addresses"`
	CreatedAt    time.Time              `json:"createdAt"`
}

type listVaultsResponse struct {
	Vaults []VaultDetail `json:"vaults"`
}

type exportVaultResponse struct {
	VaultContent string `json:"vaultContent"`
}

type importVaultRequest struct {
	FileContent string `json:"fileContent"`
}

type importVaultResponse struct {
	VaultID string `json:"vaultId"`
}

// SignRequest asks the co-signer to run a signing session for a transfer.
type SignRequest struct {
	Chain  domain.Chain `json:"chain"`
	To     string       `json:"to"`
	Amount string       `json:"amount"`
	Memo   string       `json:"memo,omitempty"`
}

// SignResponse identifies the signing session started for a transfer.
type SignResponse struct {
	SessionID      string `json:"sessionId"`
	SigningPayload string `json:"signingPayload"`
}

type listTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// GuardianInput names one guardian for recovery setup.
type GuardianInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type setupRecoveryRequest struct {
	Guardians []GuardianInput `json:"guardians"`
	Threshold int             `json:"threshold"`
}

// SetupRecoveryResponse acknowledges a recovery configuration.
type SetupRecoveryResponse struct {
	RecoveryID  string   `json:"recoveryId"`
	GuardianIDs []string `json:"guardianIds"`
}

type initiateRecoveryRequest struct {
	VaultID string `json:"vaultId"`
	Email   string `json:"email"`
}

type initiateRecoveryResponse struct {
	AttemptID    string `json:"attemptId"`
	SharesNeeded int    `json:"sharesNeeded"`
}

type submitShareRequest struct {
	GuardianID string `json:"guardianId"`
	ShareData  string `json:"shareData"`
}

// ShareProgress reports how many recovery shares have been collected.
type ShareProgress struct {
	Collected int `json:"collected"`
	Needed    int `json:"needed"`
}

type completeRecoveryResponse struct {
	VaultContent string `json:"vaultContent"`
}

// HealthResponse is the co-signer liveness report.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createVaultRequest struct {
	Name string `json:"name"`
}
