package auth

import (
	"errors"

	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
)

var (
	ErrNotAuthenticated   = clienterrors.ErrNotAuthenticated
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyProfileUpdate = errors.New("profile update has no fields")
	ErrIncompleteResponse = errors.New("auth response missing tokens or user")
	ErrManagerClosed      = clienterrors.ErrClosed
)
