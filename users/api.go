package users

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-events-client/gateway"
	"github.com/pkg/errors"
)

const mePath = "/api/me"

type userEnvelope struct {
	User *User `json:"user"`
}

// API calls the current-user endpoints.
type API struct {
	gw gateway.Requester
}

func NewAPI(gw gateway.Requester) *API {
	return &API{gw: gw}
}

// Me returns the user the current access token belongs to.
func (a *API) Me(ctx context.Context) (*User, error) {
	env, err := gateway.Request[userEnvelope](ctx, a.gw, mePath, gateway.Options{})
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, errors.New("[users.Me] response has no user")
	}
	return env.User, nil
}

// Update sends a partial profile update and returns the server's representation.
func (a *API) Update(ctx context.Context, update ProfileUpdate) (*User, error) {
	env, err := gateway.Request[userEnvelope](ctx, a.gw, mePath, gateway.JSON(http.MethodPatch, update))
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, errors.New("[users.Update] response has no user")
	}
	return env.User, nil
}
