package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/apiclient"
	"shopadmin/internal/config"
	apphttp "shopadmin/internal/http"
	"shopadmin/internal/store/memory"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{
		HTTPTimeout:     5 * time.Second,
		AdminUsername:   "admin",
		AdminPassword:   "pw",
		JWTSecret:       "jwt-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}
	catalog := apphttp.NewCatalog()
	catalog.Seed(time.Now().UTC())
	api := httptest.NewServer(apphttp.NewServer(cfg, catalog, nil).Router())
	t.Cleanup(api.Close)
	cfg.APIBaseURL = api.URL
	return cfg
}

func TestRunSessionFlow(t *testing.T) {
	cfg := testConfig(t)
	st := memory.NewStore()
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, run(ctx, []string{"login"}, cfg, st, &out))
	assert.Contains(t, out.String(), "Signed in as admin.")

	out.Reset()
	require.NoError(t, run(ctx, []string{"products", "--search", "tote"}, cfg, st, &out))
	assert.Contains(t, out.String(), "Canvas Tote")
	assert.NotContains(t, out.String(), "Linen Shirt")

	out.Reset()
	require.NoError(t, run(ctx, []string{"summary"}, cfg, st, &out))
	assert.Contains(t, out.String(), "grossRevenue")

	out.Reset()
	require.NoError(t, run(ctx, []string{"get", "/health"}, cfg, st, &out))
	assert.Contains(t, out.String(), `"ok"`)

	require.NoError(t, run(ctx, []string{"logout"}, cfg, st, &out))

	out.Reset()
	err := run(ctx, []string{"products"}, cfg, st, &out)
	require.ErrorIs(t, err, apiclient.ErrAuthExpired)
	assert.Contains(t, out.String(), "adminctl login")
}

func TestRunLoginRejected(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	err := run(context.Background(), []string{"login", "-p", "wrong"}, cfg, memory.NewStore(), &out)
	var httpErr *apiclient.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Invalid credentials", httpErr.Message)
}

func TestRunUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, config.Config{}, memory.NewStore(), &out))
	assert.Contains(t, out.String(), "Usage: adminctl")

	err := run(context.Background(), []string{"bogus"}, config.Config{}, memory.NewStore(), &out)
	require.Error(t, err)
}
