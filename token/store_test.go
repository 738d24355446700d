package token_test

import (
	"context"
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
	"github.com/jrsteele09/go-events-client/securestore/kvfake"
	"github.com/jrsteele09/go-events-client/token"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*token.Store, *kvfake.FakeKV) {
	t.Helper()
	kv := kvfake.NewFakeKV()
	s, err := token.NewStore(kv)
	require.NoError(t, err)
	return s, kv
}

func TestStore_LazyLoad(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	require.NoError(t, kv.Set(ctx, token.AccessTokenKey, "a1"))
	require.NoError(t, kv.Set(ctx, token.RefreshTokenKey, "r1"))

	access, err := s.GetAccess(ctx)
	require.NoError(t, err)
	require.Equal(t, "a1", access)

	refresh, err := s.GetRefresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "r1", refresh)

	// one load: two keys read once
	require.Equal(t, 2, kv.Gets())
}

func TestStore_KnownEmptyIsCached(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	for i := 0; i < 3; i++ {
		p, err := s.Get(ctx)
		require.NoError(t, err)
		require.True(t, p.Empty())
	}
	require.Equal(t, 2, kv.Gets())
}

func TestStore_IncompleteStoredPairIsEmpty(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	require.NoError(t, kv.Set(ctx, token.AccessTokenKey, "a1"))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, p.Empty())
}

func TestStore_LoadFailurePropagatesAndRetries(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	kv.GetErr = errors.New("keychain locked")

	_, err := s.GetAccess(ctx)
	require.ErrorContains(t, err, "keychain locked")

	kv.GetErr = nil
	require.NoError(t, kv.Set(ctx, token.AccessTokenKey, "a1"))
	require.NoError(t, kv.Set(ctx, token.RefreshTokenKey, "r1"))

	access, err := s.GetAccess(ctx)
	require.NoError(t, err)
	require.Equal(t, "a1", access)
}

func TestStore_SetTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("persists both", func(t *testing.T) {
		s, kv := newStore(t)
		require.NoError(t, s.SetTokens(ctx, "a1", "r1"))
		v, ok := kv.Value(token.AccessTokenKey)
		require.True(t, ok)
		require.Equal(t, "a1", v)
		v, ok = kv.Value(token.RefreshTokenKey)
		require.True(t, ok)
		require.Equal(t, "r1", v)
	})

	t.Run("memory updated even when the durable write fails", func(t *testing.T) {
		s, kv := newStore(t)
		kv.SetErr = errors.New("disk full")
		err := s.SetTokens(ctx, "a1", "r1")
		require.ErrorContains(t, err, "disk full")

		access, err := s.GetAccess(ctx)
		require.NoError(t, err)
		require.Equal(t, "a1", access)
	})

	t.Run("incomplete pair clears", func(t *testing.T) {
		s, kv := newStore(t)
		require.NoError(t, s.SetTokens(ctx, "a1", "r1"))
		require.NoError(t, s.SetTokens(ctx, "a2", ""))

		p, err := s.Get(ctx)
		require.NoError(t, err)
		require.True(t, p.Empty())
		_, ok := kv.Value(token.AccessTokenKey)
		require.False(t, ok)
	})
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))

	kv.DeleteErr = errors.New("io error")
	require.Error(t, s.Clear(ctx))

	p, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, p.Empty())
}

func TestStore_Rotate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))

	ok, err := s.Rotate(ctx, "stale", token.Pair{AccessToken: "a2", RefreshToken: "r2"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Rotate(ctx, "r1", token.Pair{AccessToken: "a2", RefreshToken: "r2"})
	require.NoError(t, err)
	require.True(t, ok)

	p, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, token.Pair{AccessToken: "a2", RefreshToken: "r2"}, p)

	_, err = s.Rotate(ctx, "r2", token.Pair{AccessToken: "a3"})
	require.Error(t, err)
}

func TestStore_ClearIfCurrent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))

	cleared, err := s.ClearIfCurrent(ctx, "r0")
	require.NoError(t, err)
	require.False(t, cleared)

	cleared, err = s.ClearIfCurrent(ctx, "r1")
	require.NoError(t, err)
	require.True(t, cleared)

	p, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, p.Empty())
}

func TestStore_TokenSource(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, err := s.Token()
	require.ErrorIs(t, err, clienterrors.ErrNotAuthenticated)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	access, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, s.SetTokens(ctx, access, "r1"))

	tok, err := s.Token()
	require.NoError(t, err)
	require.Equal(t, access, tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, exp.Equal(tok.Expiry))
	require.True(t, tok.Valid())
}

func TestNewStore_RequiresKV(t *testing.T) {
	_, err := token.NewStore(nil)
	require.Error(t, err)
}
