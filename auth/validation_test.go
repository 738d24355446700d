package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-events-client/auth"
	"github.com/jrsteele09/go-events-client/users"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateUserCredentials(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.ValidateUserCredentials(" ada@example.com ", "pw"))
	})

	t.Run("missing email", func(t *testing.T) {
		err := v.ValidateUserCredentials("  ", "pw")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		require.Contains(t, err.Error(), "email is required")
	})

	t.Run("bad format", func(t *testing.T) {
		for _, email := range []string{"ada", "@example.com", "ada@example", "ada.example@com"} {
			err := v.ValidateUserCredentials(email, "pw")
			require.ErrorContains(t, err, "invalid email format", email)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		err := v.ValidateUserCredentials("ada@example.com", "")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestValidator_ValidateProfileUpdate(t *testing.T) {
	v := auth.NewValidator()

	require.ErrorIs(t, v.ValidateProfileUpdate(users.ProfileUpdate{}), auth.ErrEmptyProfileUpdate)
	require.NoError(t, v.ValidateProfileUpdate(users.ProfileUpdate{DisplayName: "Ada"}))
	require.NoError(t, v.ValidateProfileUpdate(users.ProfileUpdate{PasswordCurrent: "old", PasswordNew: "new"}))
	require.Error(t, v.ValidateProfileUpdate(users.ProfileUpdate{PasswordNew: "new"}))
	require.Error(t, v.ValidateProfileUpdate(users.ProfileUpdate{PasswordCurrent: "old"}))
}
