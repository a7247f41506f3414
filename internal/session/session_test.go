package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/domain"
	"panoplia-wallet/internal/localstore"
)

// fakeAPI implements the auth surface; every other method panics via the
// embedded nil interface.
type fakeAPI struct {
	cosigner.API

	loginErr error
	meErr    error
	meCalls  int
	user     domain.User
	token    string
}

func (f *fakeAPI) Login(context.Context, string, string) (*cosigner.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &cosigner.AuthResponse{Token: f.token, User: f.user}, nil
}

func (f *fakeAPI) Register(ctx context.Context, email, password string) (*cosigner.AuthResponse, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeAPI) Me(context.Context) (*domain.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func newTestStore(api *fakeAPI) (*Store, localstore.Store) {
	local := localstore.NewMemoryStore()
	return NewStore(api, local), local
}

func TestStore_LoginPersistsSession(t *testing.T) {
	api := &fakeAPI{token: "tok-1", user: domain.User{ID: "u1", Email: "a@b.com"}}
	s, local := newTestStore(api)

	user, err := s.Login(context.Background(), "a@b.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "tok-1", s.Token())

	tok, ok := local.Get(localstore.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)
	_, ok = local.Get(localstore.KeyUser)
	assert.True(t, ok)
}

func TestStore_LoginValidatesInput(t *testing.T) {
	api := &fakeAPI{token: "tok-1"}
	s, _ := newTestStore(api)

	_, err := s.Login(context.Background(), "not-an-email", "password123")
	assert.Error(t, err)

	_, err = s.Login(context.Background(), "a@b.com", "short")
	assert.Error(t, err)

	assert.Equal(t, StateAnonymous, s.State())
}

func TestStore_LoginFailureStaysAnonymous(t *testing.T) {
	api := &fakeAPI{loginErr: &cosigner.APIError{Status: 401, Message: "bad credentials"}}
	s, local := newTestStore(api)

	_, err := s.Login(context.Background(), "a@b.com", "password123")
	assert.Error(t, err)
	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, s.Token())
	_, ok := local.Get(localstore.KeyToken)
	assert.False(t, ok)
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	api := &fakeAPI{token: "tok-1", user: domain.User{ID: "u1", Email: "a@b.com"}}
	s, local := newTestStore(api)

	var hookFired bool
	s.OnLogout(func() { hookFired = true })

	_, err := s.Login(context.Background(), "a@b.com", "password123")
	require.NoError(t, err)

	s.Logout()

	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.CurrentUser())
	assert.True(t, hookFired)

	_, ok := local.Get(localstore.KeyToken)
	assert.False(t, ok)
	_, ok = local.Get(localstore.KeyUser)
	assert.False(t, ok)
}

func TestStore_RestoreValidSession(t *testing.T) {
	api := &fakeAPI{user: domain.User{ID: "u1", Email: "a@b.com"}}
	s, local := newTestStore(api)
	require.NoError(t, local.Set(localstore.KeyToken, "tok-1"))
	require.NoError(t, localstore.SetJSON(local, localstore.KeyUser, api.user))

	assert.True(t, s.Restore(context.Background()))
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "u1", s.CurrentUser().ID)
	assert.Equal(t, 1, api.meCalls)
}

func TestStore_RestoreWithoutTokenFails(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newTestStore(api)

	assert.False(t, s.Restore(context.Background()))
	assert.Equal(t, 0, api.meCalls)
}

func TestStore_RestoreRejectedTokenLogsOut(t *testing.T) {
	api := &fakeAPI{meErr: &cosigner.APIError{Status: 401, Message: "expired"}}
	s, local := newTestStore(api)
	require.NoError(t, local.Set(localstore.KeyToken, "tok-stale"))

	var hookFired bool
	s.OnLogout(func() { hookFired = true })

	assert.False(t, s.Restore(context.Background()))
	assert.Equal(t, StateAnonymous, s.State())
	assert.True(t, hookFired)
	_, ok := local.Get(localstore.KeyToken)
	assert.False(t, ok)
}

func TestStore_ExpiredJWTShortCircuits(t *testing.T) {
	api := &fakeAPI{}
	local := localstore.NewMemoryStore()
	s := NewStore(api, local)

	expired := signedToken(t, time.Now().Add(-time.Hour))
	require.NoError(t, local.Set(localstore.KeyToken, expired))

	assert.False(t, s.Restore(context.Background()))
	// The dead token never reaches the server.
	assert.Equal(t, 0, api.meCalls)
	_, ok := local.Get(localstore.KeyToken)
	assert.False(t, ok)
}

func TestStore_LiveJWTStillValidatedRemotely(t *testing.T) {
	api := &fakeAPI{user: domain.User{ID: "u1", Email: "a@b.com"}}
	local := localstore.NewMemoryStore()
	s := NewStore(api, local)

	live := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, local.Set(localstore.KeyToken, live))

	assert.True(t, s.Restore(context.Background()))
	assert.Equal(t, 1, api.meCalls)
}

func TestStore_OpaqueTokenValidatedRemotely(t *testing.T) {
	// Tokens that are not JWTs skip the local expiry check entirely.
	api := &fakeAPI{user: domain.User{ID: "u1", Email: "a@b.com"}}
	s, local := newTestStore(api)
	require.NoError(t, local.Set(localstore.KeyToken, "opaque-session-token"))

	assert.True(t, s.Restore(context.Background()))
	assert.Equal(t, 1, api.meCalls)
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestStore_RegisterPersistsSession(t *testing.T) {
	api := &fakeAPI{token: "tok-new", user: domain.User{ID: "u2", Email: "new@b.com"}}
	s, _ := newTestStore(api)

	user, err := s.Register(context.Background(), "new@b.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.Equal(t, StateAuthenticated, s.State())
}
