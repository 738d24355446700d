package securestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-events-client/securestore"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path, passphrase string) *securestore.SQLiteKV {
	t.Helper()
	kv, err := securestore.OpenSQLite(context.Background(), path, passphrase)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestSQLiteKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := openTestStore(t, filepath.Join(t.TempDir(), "nested", "secure.db"), "pass")

	_, ok, err := kv.Get(ctx, "access_token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Set(ctx, "access_token", "a1"))
	require.NoError(t, kv.Set(ctx, "access_token", "a2"))

	v, ok, err := kv.Get(ctx, "access_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a2", v)

	require.NoError(t, kv.Delete(ctx, "access_token"))
	_, ok, err = kv.Get(ctx, "access_token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Delete(ctx, "never-set"))
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secure.db")

	first, err := securestore.OpenSQLite(ctx, path, "pass")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "taste_profile", `{"categoryCounts":{}}`))
	require.NoError(t, first.Close())

	second := openTestStore(t, path, "pass")
	v, ok, err := second.Get(ctx, "taste_profile")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"categoryCounts":{}}`, v)
}

func TestSQLiteKV_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secure.db")

	first, err := securestore.OpenSQLite(ctx, path, "right")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "refresh_token", "r1"))
	require.NoError(t, first.Close())

	second := openTestStore(t, path, "wrong")
	_, _, err = second.Get(ctx, "refresh_token")
	require.ErrorIs(t, err, securestore.ErrSealed)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := securestore.OpenSQLite(context.Background(), "", "pass")
	require.Error(t, err)
}
