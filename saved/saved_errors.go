package saved

import (
	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
)

// ErrNotAuthenticated is returned by toggles and checks without a signed-in
// user, so the caller can route to sign-in.
var ErrNotAuthenticated = clienterrors.ErrNotAuthenticated
