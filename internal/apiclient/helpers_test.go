package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/domain"
	"shopadmin/internal/store/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// fakeAPI stands in for the admin backend and records what it saw.
type fakeAPI struct {
	srv *httptest.Server

	refreshCalls  atomic.Int32
	resourceCalls atomic.Int32

	mu          sync.Mutex
	authHeaders []string
	refreshBody []map[string]string

	// refresh answers POST /authentications/refresh-token.
	refresh func(w http.ResponseWriter, r *http.Request)
	// resource answers everything else.
	resource func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		refresh: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
		resource: func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(w, http.StatusOK, map[string]any{"ok": true})
		},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		refresh, resource := f.refresh, f.resource
		f.mu.Unlock()

		if r.URL.Path == RefreshPath {
			f.refreshCalls.Add(1)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.refreshBody = append(f.refreshBody, body)
			f.mu.Unlock()
			refresh(w, r)
			return
		}
		if r.URL.Path != LoginPath {
			f.resourceCalls.Add(1)
		}
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		f.mu.Unlock()
		resource(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) headers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

func (f *fakeAPI) refreshBodies() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.refreshBody...)
}

func (f *fakeAPI) setRefresh(fn func(w http.ResponseWriter, r *http.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = fn
}

func (f *fakeAPI) setResource(fn func(w http.ResponseWriter, r *http.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resource = fn
}

func (f *fakeAPI) refreshWith(accessToken, refreshToken string) {
	f.setRefresh(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"accessToken": accessToken}
		if refreshToken != "" {
			body["refreshToken"] = refreshToken
		}
		writeTestJSON(w, http.StatusOK, body)
	})
}

func writeTestJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type redirectRecorder struct {
	calls atomic.Int32
}

func (r *redirectRecorder) RedirectToLogin(_ context.Context) { r.calls.Add(1) }

type harness struct {
	api      *fakeAPI
	store    *memory.Store
	clock    clockwork.FakeClock
	redirect *redirectRecorder
	client   *Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		api:      newFakeAPI(t),
		store:    memory.NewStore(),
		clock:    clockwork.NewFakeClockAt(testNow),
		redirect: &redirectRecorder{},
	}
	h.client = New(h.api.srv.URL, h.store,
		WithClock(h.clock),
		WithRedirector(h.redirect),
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	)
	return h
}

func (h *harness) signIn(t *testing.T, access, refresh string) {
	t.Helper()
	require.NoError(t, h.store.Save(context.Background(), domain.SessionKey, domain.Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
	}))
}
