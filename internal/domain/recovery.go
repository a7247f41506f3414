package domain

// GuardianStatus tracks whether a guardian has accepted their share.
type GuardianStatus string

const (
	GuardianPending GuardianStatus = "pending"
	GuardianActive  GuardianStatus = "active"
)

// Guardian is a trusted party holding a recovery share for a vault.
type Guardian struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Status GuardianStatus `json:"status"`
}

// RecoveryConfig is the social-recovery setup for a vault: Threshold of
// len(Guardians) shares reconstruct access.
type RecoveryConfig struct {
	RecoveryID string     `json:"recoveryId"`
	VaultID    string     `json:"vaultId"`
	Threshold  int        `json:"threshold"`
	Guardians  []Guardian `json:"guardians"`
}

// RecoveryAttempt is an in-flight recovery: shares are collected until
// Collected reaches Needed, then the attempt can be completed.
type RecoveryAttempt struct {
	AttemptID string `json:"attemptId"`
	VaultID   string `json:"vaultId"`
	Collected int    `json:"collected"`
	Needed    int    `json:"needed"`
}
