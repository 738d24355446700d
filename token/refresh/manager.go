package refresh

import (
	"context"

	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
	"github.com/jrsteele09/go-events-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Manager rotates the stored token pair using the refresh token.
// Concurrent callers holding the same refresh token share one exchange, so
// a rotating server never sees the same refresh token twice.
type Manager struct {
	store    *token.Store
	exchange Exchanger
	group    singleflight.Group
	log      zerolog.Logger
}

type ManagerOption func(*Manager)

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l.With().Str("component", "token_refresh").Logger()
	}
}

// NewManager creates a new refresh token manager
func NewManager(store *token.Store, exchange Exchanger, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[refresh.NewManager] token store is required")
	}
	if exchange == nil {
		return nil, errors.New("[refresh.NewManager] exchanger is required")
	}
	m := &Manager{store: store, exchange: exchange, log: zerolog.Nop()}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Refresh exchanges the stored refresh token for a new pair and stores it.
// On failure the stored pair is cleared, unless it was replaced while the
// exchange was in flight or the exchange was cancelled. If ctx ends first,
// Refresh returns its error and leaves the stored pair alone.
func (m *Manager) Refresh(ctx context.Context) (token.Pair, error) {
	current, err := m.store.GetRefresh(ctx)
	if err != nil {
		return token.Pair{}, errors.Wrap(err, "[Refresh] read refresh token")
	}
	if current == "" {
		if err := m.store.Clear(ctx); err != nil {
			m.log.Err(err).Msg("clear tokens after missing refresh token")
		}
		return token.Pair{}, clienterrors.ErrNoRefreshToken
	}

	// The shared exchange outlives any single caller; a caller that gives up
	// stops waiting but does not cancel the others.
	flight := m.group.DoChan(current, func() (interface{}, error) {
		return m.rotate(context.WithoutCancel(ctx), current)
	})
	select {
	case <-ctx.Done():
		return token.Pair{}, errors.Wrap(ctx.Err(), "[Refresh]")
	case res := <-flight:
		if res.Shared {
			m.log.Debug().Msg("joined in-flight token refresh")
		}
		if res.Err != nil {
			return token.Pair{}, res.Err
		}
		return res.Val.(token.Pair), nil
	}
}

func (m *Manager) rotate(ctx context.Context, current string) (token.Pair, error) {
	next, err := m.exchange.Exchange(ctx, current)
	if err == nil && !next.Complete() {
		err = errors.New("[Refresh] refresh response missing tokens")
	}
	if errors.Is(err, context.Canceled) {
		return token.Pair{}, errors.Wrap(err, "[Refresh] exchange")
	}
	if err != nil {
		if _, clearErr := m.store.ClearIfCurrent(ctx, current); clearErr != nil {
			m.log.Err(clearErr).Msg("clear tokens after failed refresh")
		}
		m.log.Info().Err(err).Msg("token refresh failed, session cleared")
		return token.Pair{}, errors.Wrap(err, "[Refresh] exchange")
	}

	rotated, err := m.store.Rotate(ctx, current, next)
	switch {
	case rotated && err != nil:
		// Memory already holds the new pair; only the durable write failed.
		m.log.Err(err).Msg("persist rotated tokens")
	case err != nil:
		return token.Pair{}, errors.Wrap(err, "[Refresh] store rotated tokens")
	case !rotated:
		return token.Pair{}, errors.New("[Refresh] session changed during refresh")
	}
	m.log.Debug().Msg("token pair rotated")
	return next, nil
}
