package token

import (
	"context"
	"errors"
	"sync"

	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
	"github.com/jrsteele09/go-events-client/securestore"
	"github.com/jrsteele09/go-events-client/token/jwt"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Store holds the current token pair. Reads are served from memory; the
// first read loads from durable storage. Writes update memory before the
// durable write starts, so readers never see a value older than the last write.
type Store struct {
	kv  securestore.KV
	log zerolog.Logger

	mu     sync.Mutex
	loaded bool // false until memory reflects storage; distinct from a loaded empty pair
	pair   Pair
}

var _ oauth2.TokenSource = (*Store)(nil)

type StoreOption func(*Store)

func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l.With().Str("component", "token_store").Logger()
	}
}

// NewStore creates a Store over kv.
func NewStore(kv securestore.KV, options ...StoreOption) (*Store, error) {
	if kv == nil {
		return nil, errors.New("[token.NewStore] kv is required")
	}
	s := &Store{kv: kv, log: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Get returns the current pair, loading it from storage on first use. A
// storage failure is returned and leaves the cache unloaded.
func (s *Store) Get(ctx context.Context) (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return Pair{}, err
	}
	return s.pair, nil
}

// GetAccess returns the access token, or "" when signed out.
func (s *Store) GetAccess(ctx context.Context) (string, error) {
	p, err := s.Get(ctx)
	return p.AccessToken, err
}

// GetRefresh returns the refresh token, or "" when signed out.
func (s *Store) GetRefresh(ctx context.Context) (string, error) {
	p, err := s.Get(ctx)
	return p.RefreshToken, err
}

func (s *Store) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	access, _, err := s.kv.Get(ctx, AccessTokenKey)
	if err != nil {
		return clienterrors.Wrapf(err, "load access token")
	}
	refresh, _, err := s.kv.Get(ctx, RefreshTokenKey)
	if err != nil {
		return clienterrors.Wrapf(err, "load refresh token")
	}

	p := Pair{AccessToken: access, RefreshToken: refresh}
	if !p.Complete() && !p.Empty() {
		s.log.Warn().Msg("stored token pair is incomplete, treating as signed out")
		p = Pair{}
	}
	s.pair = p
	s.loaded = true
	return nil
}

// SetTokens replaces the pair. An incomplete pair is never stored: if either
// token is empty the store is cleared instead.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	p := Pair{AccessToken: access, RefreshToken: refresh}
	if !p.Complete() {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	s.pair = p
	s.loaded = true
	s.mu.Unlock()

	return s.persist(ctx, p)
}

// Clear forgets both tokens.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.pair = Pair{}
	s.loaded = true
	s.mu.Unlock()

	return s.persist(ctx, Pair{})
}

// Rotate swaps in next only if the stored refresh token is still current.
// It reports false when the pair changed underneath (sign-out, another sign-in).
func (s *Store) Rotate(ctx context.Context, current string, next Pair) (bool, error) {
	if !next.Complete() {
		return false, errors.New("[token.Rotate] incomplete token pair")
	}

	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if s.pair.RefreshToken != current {
		s.mu.Unlock()
		return false, nil
	}
	s.pair = next
	s.mu.Unlock()

	return true, s.persist(ctx, next)
}

// ClearIfCurrent clears the store only if refresh is still the stored refresh token.
func (s *Store) ClearIfCurrent(ctx context.Context, refresh string) (bool, error) {
	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if s.pair.RefreshToken != refresh {
		s.mu.Unlock()
		return false, nil
	}
	s.pair = Pair{}
	s.mu.Unlock()

	return true, s.persist(ctx, Pair{})
}

func (s *Store) persist(ctx context.Context, p Pair) error {
	if p.Empty() {
		return errors.Join(
			clienterrors.Wrapf(s.kv.Delete(ctx, AccessTokenKey), "delete access token"),
			clienterrors.Wrapf(s.kv.Delete(ctx, RefreshTokenKey), "delete refresh token"),
		)
	}
	if err := s.kv.Set(ctx, AccessTokenKey, p.AccessToken); err != nil {
		return clienterrors.Wrapf(err, "store access token")
	}
	if err := s.kv.Set(ctx, RefreshTokenKey, p.RefreshToken); err != nil {
		return clienterrors.Wrapf(err, "store refresh token")
	}
	return nil
}

// TokenContext returns the access token as an *oauth2.Token, with Expiry
// taken from its exp claim when the token is a JWT.
func (s *Store) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if p.AccessToken == "" {
		return nil, clienterrors.ErrNotAuthenticated
	}
	tok := &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, ok := jwt.Expiry(p.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok, nil
}

// Token implements oauth2.TokenSource so other HTTP clients can reuse the session.
func (s *Store) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}
