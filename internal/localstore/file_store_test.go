package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SetGetDelete(t *testing.T) {
	s, err := OpenFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok := s.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "tok-1"))
	v, ok := s.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", v)

	require.NoError(t, s.Delete(KeyToken))
	_, ok = s.Get(KeyToken)
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	require.NoError(t, s.Delete(KeyToken))
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set(KeyActiveWalletID, "vault-42"))
	require.NoError(t, s1.Set(KeyTheme, "dark"))

	s2, err := OpenFileStore(dir)
	require.NoError(t, err)

	v, ok := s2.Get(KeyActiveWalletID)
	assert.True(t, ok)
	assert.Equal(t, "vault-42", v)
	v, ok = s2.Get(KeyTheme)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestFileStore_CorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte("{not json"), 0o600))

	s, err := OpenFileStore(dir)
	require.NoError(t, err)

	_, ok := s.Get(KeyToken)
	assert.False(t, ok)

	// The fresh store is writable again.
	require.NoError(t, s.Set(KeyToken, "tok"))
}

func TestFileStore_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "panoplia")

	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyUser, `{"id":"u1"}`))

	_, err = os.Stat(filepath.Join(dir, "state.json"))
	assert.NoError(t, err)
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()

	type pref struct {
		Theme string `json:"theme"`
	}
	require.NoError(t, SetJSON(s, KeyTheme, pref{Theme: "dark"}))

	var got pref
	assert.True(t, GetJSON(s, KeyTheme, &got))
	assert.Equal(t, "dark", got.Theme)

	// Corrupt entries read as missing.
	require.NoError(t, s.Set(KeyTheme, "{broken"))
	assert.False(t, GetJSON(s, KeyTheme, &got))

	assert.False(t, GetJSON(s, "absent", &got))
}

func TestPushRecent(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, PushRecent(s, KeyRecentChains, "ethereum", 3))
	require.NoError(t, PushRecent(s, KeyRecentChains, "bitcoin", 3))
	require.NoError(t, PushRecent(s, KeyRecentChains, "solana", 3))

	var list []string
	require.True(t, GetJSON(s, KeyRecentChains, &list))
	assert.Equal(t, []string{"solana", "bitcoin", "ethereum"}, list)

	// Re-pushing an entry moves it to the front without duplicating.
	require.NoError(t, PushRecent(s, KeyRecentChains, "bitcoin", 3))
	require.True(t, GetJSON(s, KeyRecentChains, &list))
	assert.Equal(t, []string{"bitcoin", "solana", "ethereum"}, list)

	// The list is capped.
	require.NoError(t, PushRecent(s, KeyRecentChains, "polygon", 3))
	require.True(t, GetJSON(s, KeyRecentChains, &list))
	assert.Equal(t, []string{"polygon", "bitcoin", "solana"}, list)
}
