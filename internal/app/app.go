// Package app wires the client core together and owns its lifecycle.
package app

import (
	"context"

	"github.com/jrsteele09/go-events-client/auth"
	"github.com/jrsteele09/go-events-client/events"
	"github.com/jrsteele09/go-events-client/gateway"
	"github.com/jrsteele09/go-events-client/internal/config"
	"github.com/jrsteele09/go-events-client/saved"
	"github.com/jrsteele09/go-events-client/securestore"
	"github.com/jrsteele09/go-events-client/taste"
	"github.com/jrsteele09/go-events-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// App holds one instance of every service. Build it with New and release it with Close.
type App struct {
	Tokens  *token.Store
	Gateway *gateway.Gateway
	Session *auth.Manager
	Saved   *saved.Synchronizer
	Taste   *taste.Store
	Events  *events.API

	kv  securestore.KV
	log zerolog.Logger
}

type Option func(*options)

type options struct {
	kv      securestore.KV
	gateway []gateway.GatewayOption
}

// WithKV replaces the SQLite store from configuration.
func WithKV(kv securestore.KV) Option {
	return func(o *options) { o.kv = kv }
}

// WithGatewayOptions adds options applied after the configured ones.
func WithGatewayOptions(opts ...gateway.GatewayOption) Option {
	return func(o *options) { o.gateway = append(o.gateway, opts...) }
}

// New opens storage and builds the services. The session is left loading;
// call Start to bootstrap it.
func New(ctx context.Context, c config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	kv := o.kv
	if kv == nil {
		sqlite, err := securestore.OpenSQLite(ctx, c.GetStorePath(), c.GetStorePassphrase())
		if err != nil {
			return nil, errors.Wrap(err, "[app.New] open secure store")
		}
		kv = sqlite
	}

	a := &App{kv: kv, log: log}
	if err := a.build(c, o); err != nil {
		_ = a.closeKV()
		return nil, err
	}
	return a, nil
}

func (a *App) build(c config.Config, o *options) error {
	var err error
	if a.Tokens, err = token.NewStore(a.kv, token.WithLogger(a.log)); err != nil {
		return err
	}

	gatewayOpts := append([]gateway.GatewayOption{gateway.WithConfig(c), gateway.WithLogger(a.log)}, o.gateway...)
	if a.Gateway, err = gateway.New(a.Tokens, gatewayOpts...); err != nil {
		return err
	}

	if a.Session, err = auth.NewManager(a.Gateway, a.Tokens, auth.WithLogger(a.log)); err != nil {
		return err
	}
	if a.Saved, err = saved.NewSynchronizer(a.Gateway, a.Session, saved.WithLogger(a.log)); err != nil {
		return err
	}

	if a.Taste, err = taste.NewStore(a.kv, taste.WithLogger(a.log)); err != nil {
		return err
	}
	a.Events = events.NewAPI(a.Gateway)
	return nil
}

// Start restores the stored session and, when it is authenticated, loads
// the saved collection before returning. Later sign-ins and sign-outs keep
// the collection in step through the session's notifications.
func (a *App) Start(ctx context.Context) error {
	defer a.Saved.Follow(a.Session)
	if !a.Session.Bootstrap(ctx).IsAuthenticated() {
		return nil
	}
	return a.Saved.Refresh(ctx)
}

// Close stops background work and closes storage.
func (a *App) Close() error {
	a.Saved.Close()
	a.Session.Close()
	return a.closeKV()
}

func (a *App) closeKV() error {
	if closer, ok := a.kv.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return errors.Wrap(err, "[app.Close] close secure store")
		}
	}
	return nil
}
