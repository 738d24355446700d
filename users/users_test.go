package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-events-client/gateway/gatewayfake"
	"github.com/jrsteele09/go-events-client/users"
	"github.com/stretchr/testify/require"
)

func TestUser_Name(t *testing.T) {
	require.Equal(t, "Ada", (&users.User{DisplayName: "Ada", Email: "ada@example.com"}).Name())
	require.Equal(t, "ada", (&users.User{Email: "ada@example.com"}).Name())
	require.Equal(t, "", (&users.User{}).Name())
}

func TestProfileUpdate(t *testing.T) {
	require.True(t, users.ProfileUpdate{DisplayName: "  "}.Trimmed().Empty())
	require.False(t, users.ProfileUpdate{AvatarURL: "https://cdn/x.png"}.Trimmed().Empty())

	raw, err := json.Marshal(users.ProfileUpdate{DisplayName: "Ada"})
	require.NoError(t, err)
	require.JSONEq(t, `{"display_name":"Ada"}`, string(raw))
}

func TestAPI(t *testing.T) {
	ctx := context.Background()
	fake := gatewayfake.NewFakeRequester()
	api := users.NewAPI(fake)

	fake.Respond(http.MethodGet, "/api/me", map[string]any{"user": map[string]any{"id": "u1", "email": "ada@example.com"}})
	u, err := api.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)

	fake.Handle(http.MethodPatch, "/api/me", func(_ context.Context, call gatewayfake.Call) (any, error) {
		require.JSONEq(t, `{"display_name":"Ada L"}`, string(call.Body))
		return map[string]any{"user": map[string]any{"id": "u1", "email": "ada@example.com", "display_name": "Ada L"}}, nil
	})
	u, err = api.Update(ctx, users.ProfileUpdate{DisplayName: "Ada L"})
	require.NoError(t, err)
	require.Equal(t, "Ada L", u.DisplayName)

	fake.Respond(http.MethodGet, "/api/me", map[string]any{})
	_, err = api.Me(ctx)
	require.ErrorContains(t, err, "no user")
}
