// Package apiclient is the authenticated client for the e-commerce admin API.
//
// Every call runs through a pipeline of named stages:
//
//	error-mapping -> refresh-retry -> expiry-check -> auth-attach -> transport
//
// The auth stages attach the stored bearer token, refresh it when it is
// within ExpiryBuffer of its exp claim, and resend a request at most once
// after a 401. Failures reach callers as ErrAuthExpired, *NetworkError or
// *HTTPError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jonboulle/clockwork"

	"shopadmin/internal/domain"
	"shopadmin/internal/metrics"
	"shopadmin/internal/store"
)

type Client struct {
	store     store.Store
	key       string
	transport *Transport
	refresher *Refresher
	auth      *Auth
	pipeline  *Pipeline
	handler   Handler
	clock     clockwork.Clock
}

type options struct {
	httpClient *http.Client
	clock      clockwork.Clock
	redirect   Redirector
	key        string
}

type Option func(*options)

func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

func WithClock(c clockwork.Clock) Option { return func(o *options) { o.clock = c } }

func WithRedirector(r Redirector) Option { return func(o *options) { o.redirect = r } }

// WithSessionKey overrides the store key; domain.SessionKey by default.
func WithSessionKey(key string) Option { return func(o *options) { o.key = key } }

func New(baseURL string, st store.Store, opts ...Option) *Client {
	o := options{
		clock:    clockwork.NewRealClock(),
		redirect: noRedirect,
		key:      domain.SessionKey,
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := NewTransport(baseURL, o.httpClient)
	refresher := NewRefresher(st, o.key, transport.Do, o.clock)
	auth := NewAuth(st, o.key, refresher, o.redirect, o.clock)
	pipeline := NewPipeline(
		ErrorMapping(),
		auth.RefreshRetry(),
		auth.ExpiryCheck(),
		auth.AuthAttach(),
	)

	return &Client{
		store:     st,
		key:       o.key,
		transport: transport,
		refresher: refresher,
		auth:      auth,
		pipeline:  pipeline,
		handler:   pipeline.Then(transport.Do),
		clock:     o.clock,
	}
}

// Stages lists the pipeline stage names, outermost first.
func (c *Client) Stages() []string {
	return c.pipeline.Names()
}

// Send runs req through the pipeline. Successful responses are unwrapped to
// their body, except login responses (and bodiless ones) which come back whole.
func (c *Client) Send(ctx context.Context, req *Request) (*Reply, error) {
	start := c.clock.Now()
	resp, err := c.handler(ctx, &Envelope{Request: req})
	metrics.APIRequestDuration.Observe(c.clock.Since(start).Seconds())
	metrics.APIRequestsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	if IsLoginEndpoint(req.URL) || len(bytes.TrimSpace(resp.Body)) == 0 {
		return &Reply{Response: resp}, nil
	}
	return &Reply{Data: json.RawMessage(resp.Body)}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	reply, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if reply.Data != nil {
		return reply.Data, nil
	}
	return json.RawMessage(reply.Response.Body), nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Create posts data to path.
func (c *Client) Create(ctx context.Context, path string, data any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, data)
}

// Update patches path with data.
func (c *Client) Update(ctx context.Context, path string, data any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, path, data)
}

func (c *Client) Put(ctx context.Context, path string, data any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, data)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// Login posts body to the login endpoint and returns the whole response.
// Tokens found in the response are stored as the new session.
func (c *Client) Login(ctx context.Context, body any) (*Response, error) {
	req, err := NewRequest(http.MethodPost, LoginPath, body)
	if err != nil {
		return nil, err
	}
	reply, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	creds, ok := credentialsFromLogin(reply.Response.Body)
	if !ok {
		slog.Warn("Login response carried no access token")
		return reply.Response, nil
	}
	if err := c.store.Save(ctx, c.key, creds); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	slog.Info("Signed in")
	return reply.Response, nil
}

// Logout forgets the stored session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// SetAuthorization replaces the stored access token, keeping the refresh
// token. An empty token clears the session.
func (c *Client) SetAuthorization(ctx context.Context, token string) error {
	if token == "" {
		return c.Logout(ctx)
	}
	creds, err := c.store.Load(ctx, c.key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load credentials: %w", err)
	}
	creds.AccessToken = token
	return c.store.Save(ctx, c.key, creds)
}

// Session returns the stored credentials.
func (c *Client) Session(ctx context.Context) (domain.Credentials, error) {
	return c.store.Load(ctx, c.key)
}

type loginTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Token        string `json:"token"`
}

func credentialsFromLogin(body []byte) (domain.Credentials, bool) {
	var payload struct {
		loginTokens
		Data *loginTokens `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Credentials{}, false
	}
	tokens := payload.loginTokens
	if tokens.AccessToken == "" && tokens.Token == "" && payload.Data != nil {
		tokens = *payload.Data
	}
	creds := domain.Credentials{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Token:        tokens.Token,
	}.Normalize()
	return creds, creds.AccessToken != ""
}

func outcome(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuthExpired):
		return "auth_expired"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &httpErr):
		return "http_error"
	default:
		return "other"
	}
}
