package domain

import "time"

// VaultStatus represents the lifecycle state of a vault on the co-signer
// server. Status moves pending -> active once remote key generation
// completes; archived is terminal.
type VaultStatus string

const (
	VaultPending  VaultStatus = "pending"
	VaultActive   VaultStatus = "active"
	VaultArchived VaultStatus = "archived"
)

// IsValid checks if the status is a valid value.
func (s VaultStatus) IsValid() bool {
	return s == VaultPending || s == VaultActive || s == VaultArchived
}

// WalletAddress is a per-chain address derived from a vault.
type WalletAddress struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
}

// Wallet is the local view of a vault. Identity is the vault id issued by
// the co-signer server; it never changes once assigned.
type Wallet struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Status         VaultStatus     `json:"status"`
	Addresses      []WalletAddress `json:"addresses"`
	PrimaryAddress string          `json:"primaryAddress"` // PrimaryChain address, "" if none
	Balance        string          `json:"balance"`        // display units of the primary chain
	USDBalance     float64         `json:"usdBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// AddressFor returns the wallet's address on the given chain, or "" if the
// vault has no address derived for it.
func (w *Wallet) AddressFor(chain Chain) string {
	for _, a := range w.Addresses {
		if a.Chain == chain {
			return a.Address
		}
	}
	return ""
}
