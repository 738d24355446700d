// Package gateway issues authenticated JSON requests against the events API.
// It attaches the bearer token, enforces per-request timeouts, refreshes the
// token pair once on a 401 and converts failures into typed errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-events-client/internal/config"
	clienterrors "github.com/jrsteele09/go-events-client/internal/errors"
	"github.com/jrsteele09/go-events-client/token"
	"github.com/jrsteele09/go-events-client/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	authPathPrefix = "/api/auth/"
	refreshPath    = "/api/auth/refresh"

	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

// Refresher rotates the token pair. *refresh.Manager implements it.
type Refresher interface {
	Refresh(ctx context.Context) (token.Pair, error)
}

// Gateway is the single HTTP entry point to the events API.
type Gateway struct {
	baseURL        string
	httpClient     *http.Client
	tokens         *token.Store
	refresher      Refresher
	timeout        time.Duration
	refreshTimeout time.Duration
	userAgent      string
	acceptLanguage string
	newRequestID   func() string
	log            zerolog.Logger
}

var _ Requester = (*Gateway)(nil)

type GatewayOption func(*Gateway)

func WithBaseURL(baseURL string) GatewayOption {
	return func(g *Gateway) {
		g.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.timeout = d
	}
}

func WithRefreshTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.refreshTimeout = d
	}
}

func WithUserAgent(ua string) GatewayOption {
	return func(g *Gateway) {
		g.userAgent = ua
	}
}

func WithLogger(l zerolog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.log = l.With().Str("component", "gateway").Logger()
	}
}

// WithRequestIDFunc replaces the X-Request-ID generator.
func WithRequestIDFunc(f func() string) GatewayOption {
	return func(g *Gateway) {
		g.newRequestID = f
	}
}

// WithRefresher replaces the built-in refresh-token rotation.
func WithRefresher(r Refresher) GatewayOption {
	return func(g *Gateway) {
		g.refresher = r
	}
}

// WithConfig applies base URL, timeouts and default headers from configuration.
func WithConfig(c interface {
	config.GatewayConfig
	config.HeadersConfig
}) GatewayOption {
	return func(g *Gateway) {
		WithBaseURL(c.GetBaseURL())(g)
		g.timeout = c.GetRequestTimeout()
		g.refreshTimeout = c.GetRefreshTimeout()
		g.userAgent = c.GetUserAgent()
		g.acceptLanguage = c.GetAcceptLanguage()
	}
}

// New creates a Gateway. A missing base URL is not an error here; every
// request fails with a ConfigurationError until one is configured.
func New(tokens *token.Store, options ...GatewayOption) (*Gateway, error) {
	if tokens == nil {
		return nil, errors.New("[gateway.New] token store is required")
	}
	g := &Gateway{
		httpClient:     &http.Client{},
		tokens:         tokens,
		timeout:        config.DefaultRequestTimeout,
		refreshTimeout: config.DefaultRequestTimeout,
		newRequestID:   uuid.NewString,
		log:            zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	if g.refresher == nil {
		m, err := refresh.NewManager(tokens, refresh.ExchangeFunc(g.exchangeRefreshToken), refresh.WithLogger(g.log))
		if err != nil {
			return nil, err
		}
		g.refresher = m
	}
	return g, nil
}

// BaseURL returns the configured API origin.
func (g *Gateway) BaseURL() string { return g.baseURL }

// response is a fully read HTTP response; the body is consumed exactly once.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// Do issues the call and decodes a 2xx JSON body into out (if non-nil).
func (g *Gateway) Do(ctx context.Context, path string, opts Options, out any) error {
	if g.baseURL == "" {
		return &clienterrors.ConfigurationError{Reason: "API base URL is not set"}
	}

	pair, err := g.tokens.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "[gateway] read tokens")
	}

	callerAuth := opts.Headers.Get(headerAuthorization) != ""
	resp, err := g.send(ctx, path, opts, pair.AccessToken, g.timeoutFor(opts))
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && !isAuthPath(path) && !callerAuth {
		if resp, err = g.retryAfterRefresh(ctx, path, opts, resp); err != nil {
			return err
		}
	}

	if !resp.ok() {
		return apiError(resp)
	}
	return decode(resp, out)
}

// retryAfterRefresh performs the single refresh attempt for a 401. If the
// refresh fails the original response stands; otherwise the retry's outcome
// is final, including a timeout or network failure. A caller that gives up
// during the refresh gets its own context error, not the 401.
func (g *Gateway) retryAfterRefresh(ctx context.Context, path string, opts Options, original *response) (*response, error) {
	pair, err := g.refresher.Refresh(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, transportError(ctx, path, ctxErr, g.log)
	}
	if err != nil {
		g.log.Info().Str("path", path).Err(err).Msg("refresh after 401 failed")
		return original, nil
	}

	retried, err := g.send(ctx, path, opts, pair.AccessToken, g.timeoutFor(opts))
	if err != nil {
		g.log.Warn().Str("path", path).Err(err).Msg("retry after refresh failed")
		return nil, err
	}
	return retried, nil
}

func (g *Gateway) timeoutFor(opts Options) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return g.timeout
}

// send performs one HTTP round trip under its own deadline and reads the whole body.
func (g *Gateway) send(ctx context.Context, path string, opts Options, accessToken string, timeout time.Duration) (*response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := g.newRequest(reqCtx, path, opts, accessToken)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log := g.log.With().
		Str("method", req.Method).
		Str("path", path).
		Str("request_id", req.Header.Get(headerRequestID)).
		Logger()

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, transportError(reqCtx, path, err, log)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(reqCtx, path, err, log)
	}

	log.Debug().
		Int("status", httpResp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	return &response{status: httpResp.StatusCode, body: body}, nil
}

func (g *Gateway) newRequest(ctx context.Context, path string, opts Options, accessToken string) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		raw, ok := opts.Body.([]byte)
		if !ok {
			var err error
			if raw, err = json.Marshal(opts.Body); err != nil {
				return nil, errors.Wrap(err, "[gateway] encode request body")
			}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.url(path), body)
	if err != nil {
		return nil, errors.Wrap(err, "[gateway] create request")
	}

	req.Header.Set("Accept", "application/json")
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	if g.acceptLanguage != "" {
		req.Header.Set("Accept-Language", g.acceptLanguage)
	}
	req.Header.Set(headerRequestID, g.newRequestID())
	for k, vs := range opts.Headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	// After the caller's headers: a caller-provided Authorization is kept,
	// and a refreshed token overrides the one that just failed.
	if accessToken != "" && req.Header.Get(headerAuthorization) == "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)
	}
	return req, nil
}

func (g *Gateway) url(path string) string {
	return g.baseURL + "/" + strings.TrimLeft(path, "/")
}

// exchangeRefreshToken calls the refresh endpoint directly, without bearer
// auth and without the 401 handling in Do.
func (g *Gateway) exchangeRefreshToken(ctx context.Context, refreshToken string) (token.Pair, error) {
	if g.baseURL == "" {
		return token.Pair{}, &clienterrors.ConfigurationError{Reason: "API base URL is not set"}
	}
	opts := Options{
		Method: http.MethodPost,
		Body:   map[string]string{"refresh_token": refreshToken},
	}
	resp, err := g.send(ctx, refreshPath, opts, "", g.refreshTimeout)
	if err != nil {
		return token.Pair{}, err
	}
	if !resp.ok() {
		return token.Pair{}, apiError(resp)
	}
	var pair token.Pair
	if err := decode(resp, &pair); err != nil {
		return token.Pair{}, err
	}
	return pair, nil
}

func isAuthPath(path string) bool {
	p := "/" + strings.TrimLeft(path, "/")
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.HasPrefix(p, authPathPrefix)
}

func transportError(reqCtx context.Context, path string, err error, log zerolog.Logger) error {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		log.Warn().Msg("api request timed out")
		return &clienterrors.TimeoutError{Path: path}
	}
	log.Warn().Err(err).Msg("api request failed")
	return &clienterrors.NetworkError{Err: err}
}

func decode(resp *response, out any) error {
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return errors.Wrap(err, "[gateway] decode response")
	}
	return nil
}

// apiError builds the error for a non-2xx response, preferring the JSON
// "error" or "message" field, then the raw body text.
func apiError(resp *response) error {
	return &clienterrors.APIError{Status: resp.status, Message: errorMessage(resp)}
}

func errorMessage(resp *response) string {
	var payload struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(resp.body, &payload); err == nil {
		for _, v := range []any{payload.Error, payload.Message} {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(resp.body)); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", resp.status)
}
