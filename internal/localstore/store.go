// Package localstore provides the durable key-value storage shared by the
// session and wallet stores: auth token, serialized user, the active-wallet
// pointer and snapshot, UI preferences. All keys are namespaced under a
// single application prefix. Writes are last-writer-wins; the stores are
// driven from a single process, so no cross-process locking is attempted.
package localstore

import (
	"encoding/json"
	"fmt"
)

// Keys used by the application. Everything wallet-scoped (active wallet id
// and snapshot) must be cleared on logout.
const (
	KeyToken          = "panoplia_auth_token"
	KeyUser           = "panoplia_user"
	KeyActiveWalletID = "panoplia_active_wallet_id"
	KeyActiveWallet   = "panoplia_active_wallet"
	KeyTheme          = "panoplia_theme"
	KeyRecentChains   = "panoplia_recent_chains"
)

// Store is a durable string key-value store.
type Store interface {
	// Get retrieves a value. The second return is false if the key is absent.
	Get(key string) (string, bool)

	// Set stores a value, overwriting any previous one.
	Set(key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}

// SetJSON marshals v and stores it under key.
func SetJSON(s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// GetJSON unmarshals the value under key into v. Returns false if the key is
// absent or holds malformed JSON; a corrupt entry is treated as missing
// rather than failing startup.
func GetJSON(s Store, key string, v interface{}) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// PushRecent prepends value to the string list under key, deduplicating and
// capping it at limit entries. Used for most-recently-used UI lists.
func PushRecent(s Store, key, value string, limit int) error {
	var list []string
	GetJSON(s, key, &list)

	out := make([]string, 0, limit)
	out = append(out, value)
	for _, v := range list {
		if v == value {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return SetJSON(s, key, out)
}
