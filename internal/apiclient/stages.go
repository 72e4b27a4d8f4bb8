package apiclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"shopadmin/internal/domain"
	"shopadmin/internal/metrics"
	"shopadmin/internal/store"
)

const (
	StageErrorMapping = "error-mapping"
	StageRefreshRetry = "refresh-retry"
	StageExpiryCheck  = "expiry-check"
	StageAuthAttach   = "auth-attach"
)

// Auth holds what the auth stages share: the credential store, the
// refresher and the redirect target.
type Auth struct {
	store     store.Store
	key       string
	refresher *Refresher
	redirect  Redirector
	clock     clockwork.Clock
}

func NewAuth(st store.Store, key string, refresher *Refresher, redirect Redirector, clock clockwork.Clock) *Auth {
	if redirect == nil {
		redirect = noRedirect
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Auth{store: st, key: key, refresher: refresher, redirect: redirect, clock: clock}
}

// credentials returns the stored pair, ok=false when none is stored. Unreadable
// credentials end the session.
func (a *Auth) credentials(ctx context.Context) (domain.Credentials, bool, error) {
	creds, err := a.store.Load(ctx, a.key)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Credentials{}, false, nil
	}
	if err != nil {
		slog.Error("Stored credentials unreadable", "error", err)
		return domain.Credentials{}, false, a.expire(ctx, "credentials unreadable")
	}
	return creds, true, nil
}

// expire clears the session, redirects to login and returns ErrAuthExpired.
func (a *Auth) expire(ctx context.Context, reason string) error {
	if err := a.store.Delete(ctx, a.key); err != nil {
		slog.Error("Failed to clear credentials", "error", err)
	}
	slog.Warn("Session expired, redirecting to login", "reason", reason)
	a.redirect.RedirectToLogin(ctx)
	return ErrAuthExpired
}

// AuthAttach sets the Authorization header from env.Token, or from the store
// when no earlier stage chose a token. Without credentials the request goes
// out unauthenticated.
func (a *Auth) AuthAttach() Stage {
	return Stage{Name: StageAuthAttach, Wrap: func(next Handler) Handler {
		return func(ctx context.Context, env *Envelope) (*Response, error) {
			if IsAuthEndpoint(env.Request.URL) {
				return next(ctx, env)
			}
			token := env.Token
			if token == "" {
				creds, ok, err := a.credentials(ctx)
				if err != nil {
					return nil, err
				}
				if ok {
					token = creds.Access()
				}
			}
			if token != "" {
				if env.Request.Header == nil {
					env.Request.Header = make(http.Header)
				}
				env.Request.Header.Set("Authorization", "Bearer "+token)
				env.Token = token
			}
			return next(ctx, env)
		}
	}}
}

// ExpiryCheck refreshes an access token that is expired or inside the expiry
// buffer before the request is sent.
func (a *Auth) ExpiryCheck() Stage {
	return Stage{Name: StageExpiryCheck, Wrap: func(next Handler) Handler {
		return func(ctx context.Context, env *Envelope) (*Response, error) {
			if IsAuthEndpoint(env.Request.URL) || env.Retried {
				return next(ctx, env)
			}
			creds, ok, err := a.credentials(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return next(ctx, env)
			}
			token := creds.Access()
			if TokenExpired(token, a.clock.Now()) {
				slog.Debug("Access token expired, refreshing before send", "url", env.Request.URL)
				token, err = a.refresher.Refresh(ctx, token)
				if err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return nil, ctxErr
					}
					slog.Warn("Token refresh failed", "error", err)
					return nil, a.expire(ctx, "refresh before send failed")
				}
			}
			env.Token = token
			return next(ctx, env)
		}
	}}
}

// RefreshRetry resends a request once after a 401, with a freshly refreshed
// token. A second 401 ends the session.
func (a *Auth) RefreshRetry() Stage {
	return Stage{Name: StageRefreshRetry, Wrap: func(next Handler) Handler {
		return func(ctx context.Context, env *Envelope) (*Response, error) {
			if IsAuthEndpoint(env.Request.URL) {
				return next(ctx, env)
			}
			resp, err := next(ctx, env)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}
			if env.Retried {
				return nil, a.expire(ctx, "401 after retry")
			}

			creds, ok, err := a.credentials(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, a.expire(ctx, "401 without stored credentials")
			}
			stale := env.Token
			if stale == "" {
				stale = creds.Access()
			}

			env.Retried = true
			token, err := a.refresher.Refresh(ctx, stale)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				slog.Warn("Token refresh after 401 failed", "error", err)
				return nil, a.expire(ctx, "refresh after 401 failed")
			}
			env.Token = token
			metrics.RetriesTotal.Inc()

			resp, err = next(ctx, env)
			if err == nil && resp.StatusCode == http.StatusUnauthorized {
				return nil, a.expire(ctx, "401 after retry")
			}
			return resp, err
		}
	}}
}

// ErrorMapping turns non-2xx responses into HTTPError with an operator-safe
// message. ErrAuthExpired and NetworkError pass through untouched.
func ErrorMapping() Stage {
	return Stage{Name: StageErrorMapping, Wrap: func(next Handler) Handler {
		return func(ctx context.Context, env *Envelope) (*Response, error) {
			resp, err := next(ctx, env)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return nil, &HTTPError{
					StatusCode: resp.StatusCode,
					Message:    StatusMessage(resp.StatusCode),
					Body:       resp.Body,
				}
			}
			return resp, nil
		}
	}}
}
