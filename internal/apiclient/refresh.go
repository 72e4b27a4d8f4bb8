package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"shopadmin/internal/domain"
	"shopadmin/internal/metrics"
	"shopadmin/internal/store"
)

var errRefreshRejected = errors.New("refresh rejected")

// Refresher exchanges the stored refresh token for a new access token.
// Concurrent callers share a single in-flight exchange.
type Refresher struct {
	store store.Store
	key   string
	send  Handler
	clock clockwork.Clock
	group singleflight.Group
}

// NewRefresher posts refresh requests through send, which should be the raw
// transport rather than the authenticated pipeline.
func NewRefresher(st store.Store, key string, send Handler, clock clockwork.Clock) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Refresher{store: st, key: key, send: send, clock: clock}
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh returns a fresh access token. stale is the token the caller found
// unusable; if the store already holds a different, unexpired token (another
// caller refreshed first) that token is returned without a backend call.
func (r *Refresher) Refresh(ctx context.Context, stale string) (string, error) {
	ch := r.group.DoChan("refresh", func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx), stale)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context, stale string) (string, error) {
	creds, err := r.store.Load(ctx, r.key)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if current := creds.Access(); current != stale && !TokenExpired(current, r.clock.Now()) {
		metrics.TokenRefreshTotal.WithLabelValues("reused").Inc()
		return current, nil
	}
	if creds.RefreshToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", errors.New("no refresh token available")
	}

	req, err := NewRequest(http.MethodPost, RefreshPath, map[string]string{"refreshToken": creds.RefreshToken})
	if err != nil {
		return "", err
	}
	resp, err := r.send(ctx, &Envelope{Request: req})
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("%w: status %d", errRefreshRejected, resp.StatusCode)
	}
	var body refreshResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.AccessToken == "" {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("%w: response missing accessToken", errRefreshRejected)
	}

	rotated := body.RefreshToken != "" && body.RefreshToken != creds.RefreshToken
	next := domain.Credentials{AccessToken: body.AccessToken, RefreshToken: creds.RefreshToken}
	if body.RefreshToken != "" {
		next.RefreshToken = body.RefreshToken
	}
	if err := r.store.Save(ctx, r.key, next); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("save refreshed credentials: %w", err)
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	slog.Info("Access token refreshed", "rotated", rotated)
	return body.AccessToken, nil
}
