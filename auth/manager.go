package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-events-client/gateway"
	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
	"github.com/jrsteele09/go-events-client/sessions"
	"github.com/jrsteele09/go-events-client/token"
	"github.com/jrsteele09/go-events-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	logoutPath   = "/api/auth/logout"
)

// Manager owns the current user and drives sign-in, sign-up,
// sign-out and profile updates against the API.
type Manager struct {
	gw        gateway.Requester
	tokens    *token.Store
	users     *users.API
	validator *Validator
	log       zerolog.Logger

	mu        sync.RWMutex
	state     sessions.State
	listeners map[int]sessions.Listener
	nextID    int
	closed    bool
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l.With().Str("component", "session").Logger()
	}
}

// NewManager creates a manager in the loading state. Call Bootstrap to resolve it.
func NewManager(gw gateway.Requester, tokens *token.Store, options ...ManagerOption) (*Manager, error) {
	if gw == nil {
		return nil, errors.New("[NewManager] gateway is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewManager] token store is required")
	}

	m := &Manager{
		gw:        gw,
		tokens:    tokens,
		users:     users.NewAPI(gw),
		validator: NewValidator(),
		log:       zerolog.Nop(),
		state:     sessions.Loading(),
		listeners: make(map[int]sessions.Listener),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// State returns the current session snapshot.
func (m *Manager) State() sessions.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.State().IsAuthenticated()
}

// User returns the signed-in user, or nil.
func (m *Manager) User() *users.User {
	return m.State().User
}

// Subscribe registers l for state changes and returns a function that removes it.
func (m *Manager) Subscribe(l sessions.Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return func() {}
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Close drops all listeners. Later state changes are still tracked but not broadcast.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.listeners = make(map[int]sessions.Listener)
}

func (m *Manager) setState(s sessions.State) {
	m.mu.Lock()
	m.state = s
	listeners := make([]sessions.Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	m.log.Debug().Str("status", string(s.Status)).Msg("session state changed")
	for _, l := range listeners {
		l(s)
	}
}

// Bootstrap resolves the startup state from stored tokens. It never fails:
// any problem reading tokens or loading the user ends unauthenticated.
func (m *Manager) Bootstrap(ctx context.Context) sessions.State {
	pair, err := m.tokens.Get(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("read stored tokens")
		m.clearTokens(ctx)
		m.setState(sessions.Unauthenticated())
		return m.State()
	}
	if pair.Empty() {
		m.setState(sessions.Unauthenticated())
		return m.State()
	}

	user, err := m.users.Me(ctx)
	if err != nil {
		m.log.Info().Err(err).Msg("restore session failed")
		m.clearTokens(ctx)
		m.setState(sessions.Unauthenticated())
		return m.State()
	}

	m.setState(sessions.Authenticated(user))
	return m.State()
}

// SignIn exchanges credentials for a session. On failure the state is unchanged.
func (m *Manager) SignIn(ctx context.Context, creds Credentials) (*users.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := m.validator.ValidateUserCredentials(creds.Email, creds.Password); err != nil {
		return nil, err
	}
	return m.establish(ctx, loginPath, creds)
}

// SignUp registers an account and signs it in. On failure the state is unchanged.
func (m *Manager) SignUp(ctx context.Context, reg Registration) (*users.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.DisplayName = strings.TrimSpace(reg.DisplayName)
	if err := m.validator.ValidateUserCredentials(reg.Email, reg.Password); err != nil {
		return nil, err
	}
	return m.establish(ctx, registerPath, reg)
}

func (m *Manager) establish(ctx context.Context, path string, body any) (*users.User, error) {
	resp, err := gateway.Request[authResponse](ctx, m.gw, path, gateway.JSON(http.MethodPost, body))
	if err != nil {
		return nil, err
	}
	if !resp.complete() {
		return nil, errors.Wrapf(ErrIncompleteResponse, "[%s]", path)
	}

	if err := m.tokens.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		m.clearTokens(ctx)
		return nil, errors.Wrap(err, "[establish] store tokens")
	}

	m.log.Info().Str("user_id", resp.User.ID).Msg("signed in")
	m.setState(sessions.Authenticated(resp.User))
	return resp.User, nil
}

// SignOut ends the session. The logout call is best effort; local tokens
// are cleared and the state becomes unauthenticated on every path.
func (m *Manager) SignOut(ctx context.Context) (err error) {
	defer func() {
		if clearErr := m.tokens.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			err = errors.Wrap(clearErr, "[SignOut] clear tokens")
		}
		m.setState(sessions.Unauthenticated())
	}()

	refreshToken, readErr := m.tokens.GetRefresh(ctx)
	if readErr != nil {
		m.log.Warn().Err(readErr).Msg("read refresh token for logout")
		return nil
	}
	if refreshToken == "" {
		return nil
	}

	if logoutErr := m.gw.Do(ctx, logoutPath, gateway.JSON(http.MethodPost, logoutRequest{RefreshToken: refreshToken}), nil); logoutErr != nil {
		m.log.Info().Err(logoutErr).Msg("logout call failed, clearing local session anyway")
	}
	return nil
}

// Refresh reloads the signed-in user from the API. If the session turns
// out to be gone (401 after the gateway's refresh attempt), the manager
// moves to unauthenticated.
func (m *Manager) Refresh(ctx context.Context) (*users.User, error) {
	if !m.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	user, err := m.users.Me(ctx)
	if err != nil {
		if clienterrors.StatusCode(err) == http.StatusUnauthorized {
			m.clearTokens(ctx)
			m.setState(sessions.Unauthenticated())
		}
		return nil, err
	}
	m.setState(sessions.Authenticated(user))
	return user, nil
}

// UpdateProfile sends the non-empty fields of update and replaces the local
// user with the server's response. Nothing is applied before the server confirms.
func (m *Manager) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	if !m.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	update = update.Trimmed()
	if err := m.validator.ValidateProfileUpdate(update); err != nil {
		return nil, err
	}

	user, err := m.users.Update(ctx, update)
	if err != nil {
		return nil, err
	}
	if m.IsAuthenticated() {
		m.setState(sessions.Authenticated(user))
	}
	return user, nil
}

func (m *Manager) clearTokens(ctx context.Context) {
	if err := m.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		m.log.Err(err).Msg("clear tokens")
	}
}
