package refresh

import (
	"context"

	"github.com/jrsteele09/go-events-client/token"
)

// Exchanger trades a refresh token for a new pair at the auth server.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (token.Pair, error)
}

// ExchangeFunc adapts a function to Exchanger.
type ExchangeFunc func(ctx context.Context, refreshToken string) (token.Pair, error)

func (f ExchangeFunc) Exchange(ctx context.Context, refreshToken string) (token.Pair, error) {
	return f(ctx, refreshToken)
}
