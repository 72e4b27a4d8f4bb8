package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"shopadmin/internal/config"
	"shopadmin/internal/domain"
	"shopadmin/internal/metrics"
)

type contextKey string

const contextKeyAdminSubject contextKey = "admin_subject"

type refreshGrant struct {
	subject   string
	expiresAt time.Time
}

// Server is the development stand-in for the shop REST API.
type Server struct {
	cfg     config.Config
	clock   clockwork.Clock
	catalog *Catalog

	mu     sync.Mutex
	grants map[string]refreshGrant
}

func NewServer(cfg config.Config, catalog *Catalog, clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Server{
		cfg:     cfg,
		clock:   clock,
		catalog: catalog,
		grants:  make(map[string]refreshGrant),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Post("/authentications/login", s.handleLogin)
	r.Post("/authentications/refresh-token", s.handleRefreshToken)

	r.Group(func(protected chi.Router) {
		protected.Use(s.requireAdmin)
		protected.Get("/api/products", s.handleListProducts)
		protected.Post("/api/products", s.handleCreateProduct)
		protected.Get("/api/products/{id}", s.handleGetProduct)
		protected.Put("/api/products/{id}", s.handleReplaceProduct)
		protected.Patch("/api/products/{id}", s.handlePatchProduct)
		protected.Delete("/api/products/{id}", s.handleDeleteProduct)
		protected.Get("/api/dashboards/financial-summary", s.handleFinancialSummary)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   s.clock.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		metrics.BackendLoginsTotal.WithLabelValues("login", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username != s.cfg.AdminUsername || req.Password != s.cfg.AdminPassword {
		metrics.BackendLoginsTotal.WithLabelValues("login", "failure").Inc()
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, err := s.signAccessToken(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create access token")
		return
	}
	refresh := s.issueRefreshToken(req.Username)

	metrics.BackendLoginsTotal.WithLabelValues("login", "success").Inc()
	writeData(w, http.StatusOK, map[string]string{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		metrics.BackendLoginsTotal.WithLabelValues("refresh", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	subject, ok := s.redeemRefreshToken(req.RefreshToken)
	if !ok {
		metrics.BackendLoginsTotal.WithLabelValues("refresh", "failure").Inc()
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	access, err := s.signAccessToken(subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create access token")
		return
	}

	metrics.BackendLoginsTotal.WithLabelValues("refresh", "success").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeData(w, http.StatusOK, s.catalog.List(q.Get("search"), q.Get("status")))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.Product
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.catalog.Create(req, s.clock.Now().UTC())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	slog.Info("Product created", "id", p.ID, "by", adminSubject(r.Context()))
	writeData(w, http.StatusCreated, p)
}

func (s *Server) handleReplaceProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.Product
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.catalog.Replace(chi.URLParam(r, "id"), req, s.clock.Now().UTC())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handlePatchProduct(w http.ResponseWriter, r *http.Request) {
	var req productPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.catalog.Patch(chi.URLParam(r, "id"), req, s.clock.Now().UTC())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(chi.URLParam(r, "id")); err != nil {
		writeCatalogError(w, err)
		return
	}
	slog.Info("Product deleted", "id", chi.URLParam(r, "id"), "by", adminSubject(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinancialSummary(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		return
	}
	to, err := parseDate(r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		return
	}
	if !to.IsZero() {
		to = to.Add(24 * time.Hour)
	}
	writeData(w, http.StatusOK, s.catalog.Summary(from, to))
}

func (s *Server) signAccessToken(subject string) (string, error) {
	now := s.clock.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(s.cfg.AccessTokenTTL).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) issueRefreshToken(subject string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[token] = refreshGrant{subject: subject, expiresAt: s.clock.Now().Add(s.cfg.RefreshTokenTTL)}
	return token
}

func (s *Server) redeemRefreshToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[token]
	if !ok {
		return "", false
	}
	if !s.clock.Now().Before(grant.expiresAt) {
		delete(s.grants, token)
		return "", false
	}
	return grant.subject, true
}

// RevokeRefreshTokens forgets every issued refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants = make(map[string]refreshGrant)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
		if err != nil || !parsed.Valid {
			writeError(w, http.StatusUnauthorized, "invalid access token")
			return
		}
		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid access token claims")
			return
		}
		sub, _ := claims["sub"].(string)
		ctx := context.WithValue(r.Context(), contextKeyAdminSubject, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminSubject(ctx context.Context) string {
	sub, _ := ctx.Value(contextKeyAdminSubject).(string)
	return sub
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func decodeJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{"status": "success", "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "fail", "message": msg})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errProductInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
