package domain

import "time"

// TransactionStatus represents the signing/broadcast state of a transaction.
// A record is immutable once created; status only moves pending -> confirmed
// or pending -> failed, never backwards.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxConfirmed TransactionStatus = "confirmed"
	TxFailed    TransactionStatus = "failed"
)

// Transaction is a transfer signed through a vault.
type Transaction struct {
	ID        string            `json:"id"`
	VaultID   string            `json:"vaultId"`
	Chain     Chain             `json:"chain"`
	To        string            `json:"to"`
	Amount    string            `json:"amount"` // display units
	Memo      string            `json:"memo,omitempty"`
	Status    TransactionStatus `json:"status"`
	TxHash    string            `json:"txHash,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
