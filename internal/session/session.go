// Package session owns authentication state: login, registration, token
// persistence, restart-time token validation, and the logout teardown that
// every wallet-scoped store hooks into.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"panoplia-wallet/internal/cosigner"
	"panoplia-wallet/internal/domain"
	"panoplia-wallet/internal/localstore"
)

// State is the authentication state machine. Transitions:
// Anonymous -> Authenticating -> Authenticated on login/register success,
// back to Anonymous on failure or logout.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// Store manages the current session. It persists the token and user snapshot
// to local storage so a restart can restore the session without re-login.
type Store struct {
	api      cosigner.API
	local    localstore.Store
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	mu       sync.Mutex
	state    State
	token    string
	user     *domain.User
	onLogout []func()
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session store backed by the given API and local storage.
func NewStore(api cosigner.API, local localstore.Store, opts ...Option) *Store {
	s := &Store{
		api:      api,
		local:    local,
		logger:   zap.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		state:    StateAnonymous,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnLogout registers a callback invoked after the session ends, on both
// explicit logout and failed token validation. Wallet-scoped stores register
// here so no data survives into the next account's session.
func (s *Store) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// State returns the current authentication state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentUser returns the authenticated user, nil if anonymous.
func (s *Store) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token, "" if anonymous. It satisfies
// cosigner.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Login authenticates with the co-signer server and persists the session.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticate(ctx, email, password, s.api.Login)
}

// Register creates an account on the co-signer server and persists the
// session it returns.
func (s *Store) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticate(ctx, email, password, s.api.Register)
}

func (s *Store) authenticate(ctx context.Context, email, password string, call func(context.Context, string, string) (*cosigner.AuthResponse, error)) (*domain.User, error) {
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}

	s.setState(StateAuthenticating)
	resp, err := call(ctx, email, password)
	if err != nil {
		s.setState(StateAnonymous)
		return nil, err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.token = resp.Token
	user := resp.User
	s.user = &user
	s.mu.Unlock()

	if err := s.local.Set(localstore.KeyToken, resp.Token); err != nil {
		s.logger.Warn("persist token failed", zap.Error(err))
	}
	if err := localstore.SetJSON(s.local, localstore.KeyUser, resp.User); err != nil {
		s.logger.Warn("persist user failed", zap.Error(err))
	}

	s.logger.Info("session started", zap.String("user_id", user.ID))
	return &user, nil
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Restore loads a persisted session from local storage and validates its
// token. It returns true if a valid session was restored. An expired or
// rejected token tears the persisted session down so no stale credentials
// linger.
func (s *Store) Restore(ctx context.Context) bool {
	token, ok := s.local.Get(localstore.KeyToken)
	if !ok || token == "" {
		return false
	}

	var user domain.User
	localstore.GetJSON(s.local, localstore.KeyUser, &user)

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.state = StateAuthenticated
	s.mu.Unlock()

	return s.ValidateToken(ctx)
}

// ValidateToken checks the current token: first locally against its expiry
// claim, then against the server. Any failure logs the session out and
// returns false.
func (s *Store) ValidateToken(ctx context.Context) bool {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return false
	}

	if expired, err := tokenExpired(token, s.now()); err == nil && expired {
		s.logger.Info("token expired locally")
		s.Logout()
		return false
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Warn("token validation failed", zap.Error(err))
		s.Logout()
		return false
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	if err := localstore.SetJSON(s.local, localstore.KeyUser, *user); err != nil {
		s.logger.Warn("persist user failed", zap.Error(err))
	}
	return true
}

// tokenExpired inspects the token's exp claim without verifying the
// signature. Signature verification is the server's job; the local check
// only short-circuits the obviously dead case.
func tokenExpired(token string, now time.Time) (bool, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Before(now), nil
}

// Logout ends the session, clears persisted credentials, and notifies
// subscribers so all wallet-scoped storage is purged.
func (s *Store) Logout() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.token = ""
	s.user = nil
	callbacks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	if err := s.local.Delete(localstore.KeyToken); err != nil {
		s.logger.Warn("clear token failed", zap.Error(err))
	}
	if err := s.local.Delete(localstore.KeyUser); err != nil {
		s.logger.Warn("clear user failed", zap.Error(err))
	}

	for _, fn := range callbacks {
		fn()
	}
	s.logger.Info("session ended")
}
