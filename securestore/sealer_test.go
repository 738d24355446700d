package securestore_test

import (
	"testing"

	"github.com/jrsteele09/go-events-client/securestore"
	"github.com/stretchr/testify/require"
)

func TestSealer(t *testing.T) {
	salt, err := securestore.NewSalt()
	require.NoError(t, err)
	s, err := securestore.NewSealer("pass", salt)
	require.NoError(t, err)

	sealed, err := s.Seal("access_token", []byte("secret"))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "secret")

	t.Run("opens under the same key", func(t *testing.T) {
		plain, err := s.Open("access_token", sealed)
		require.NoError(t, err)
		require.Equal(t, "secret", string(plain))
	})

	t.Run("bound to the storage key", func(t *testing.T) {
		_, err := s.Open("refresh_token", sealed)
		require.ErrorIs(t, err, securestore.ErrSealed)
	})

	t.Run("tampered", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[len(tampered)-1] ^= 0xff
		_, err := s.Open("access_token", tampered)
		require.ErrorIs(t, err, securestore.ErrSealed)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := s.Open("access_token", sealed[:4])
		require.ErrorIs(t, err, securestore.ErrSealed)
	})

	t.Run("short salt rejected", func(t *testing.T) {
		_, err := securestore.NewSealer("pass", []byte("short"))
		require.Error(t, err)
	})
}
