package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/lottery-auth/internal/api/http"
	"github.com/spec-kit/lottery-auth/internal/api/http/handlers"
	"github.com/spec-kit/lottery-auth/internal/config"
	"github.com/spec-kit/lottery-auth/internal/domain"
	"github.com/spec-kit/lottery-auth/internal/observability"
	"github.com/spec-kit/lottery-auth/internal/repository"
	"github.com/spec-kit/lottery-auth/internal/service"
	"github.com/spec-kit/lottery-auth/internal/session"
)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	app      *fiber.App
	auth     *service.AuthService
	sessions *session.MemoryStore
	metrics  *observability.Metrics
}

func newTestServer(t *testing.T, deps map[string]handlers.Pinger) *testServer {
	t.Helper()
	sessions := session.NewMemoryStore()
	metrics := observability.NewMetrics()
	authService := service.NewAuthService(config.AuthConfig{JWTSecret: "http-secret", TokenTTLSeconds: 86400}, service.AuthDependencies{
		Users:    repository.NewMemoryUserRepository(),
		Sessions: sessions,
		Metrics:  metrics,
	})

	app := httptransport.NewApp(zap.NewNop(), metrics, time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler("lottery-auth", "test", deps),
		Auth:       handlers.NewAuthHandler(authService),
		Admin:      handlers.NewAdminHandler(authService, metrics),
		Authorizer: authService,
	})
	return &testServer{app: app, auth: authService, sessions: sessions, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status, body)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func (s *testServer) seed(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	_, err := s.auth.Register(context.Background(), username, "pw-"+username, role)
	require.NoError(t, err)
	return s.login(t, username, "pw-"+username)
}

func TestRegisterLoginMeLogout(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, map[string]any{"status": "registered"}, body)

	before := time.Now().UTC()
	status, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "user", body["role"])
	expiresAt, err := time.Parse(time.RFC3339, body["expires_at"].(string))
	require.NoError(t, err)
	require.WithinDuration(t, before.Add(24*time.Hour), expiresAt, 2*time.Second)
	token := body["token"].(string)

	status, body = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "user", body["role"])
	require.NotEmpty(t, body["id"])

	status, body = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]any{"status": "logged_out"}, body)

	status, body = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob", "password": "other"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "CONFLICT", body["code"])

	status, body = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "", "password": "pw"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", body["code"])

	status, _ = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "carl", "password": "pw", "role": "root"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestLoginFailuresShareOneResponse(t *testing.T) {
	s := newTestServer(t, nil)
	_, err := s.auth.Register(context.Background(), "dora", "right", domain.RoleUser)
	require.NoError(t, err)

	statusUnknown, bodyUnknown := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "right"})
	statusWrong, bodyWrong := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "dora", "password": "wrong"})

	require.Equal(t, http.StatusUnauthorized, statusUnknown)
	require.Equal(t, statusUnknown, statusWrong)
	require.Equal(t, bodyUnknown, bodyWrong)
	require.Equal(t, "INVALID_CREDENTIALS", bodyWrong["code"])
}

func TestUnauthorizedResponsesAreUniform(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.seed(t, "erin", domain.RoleUser)

	revoked := s.seed(t, "fred", domain.RoleUser)
	require.NoError(t, s.auth.Logout(context.Background(), nil, revoked))

	tampered := token[:len(token)-1] + "A"
	if tampered == token {
		tampered = token[:len(token)-1] + "B"
	}

	var bodies []map[string]any
	for _, tok := range []string{"", "garbage", "a.b.c", tampered, revoked} {
		status, body := s.do(t, http.MethodGet, "/api/auth/me", tok, nil)
		require.Equal(t, http.StatusUnauthorized, status, "token %q", tok)
		bodies = append(bodies, body)
	}
	for _, body := range bodies {
		require.Equal(t, map[string]any{"error": "invalid or expired token", "code": "UNAUTHORIZED"}, body)
	}
}

func TestRoleGatedRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	userToken := s.seed(t, "user1", domain.RoleUser)
	modToken := s.seed(t, "mod1", domain.RoleModerator)
	adminToken := s.seed(t, "admin1", domain.RoleAdmin)

	status, body := s.do(t, http.MethodGet, "/api/admin/sessions", userToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", body["code"])

	status, _ = s.do(t, http.MethodGet, "/api/moderation/ping", userToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, http.MethodGet, "/api/moderation/ping", modToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "moderator", body["role"])

	status, _ = s.do(t, http.MethodGet, "/api/admin/sessions", modToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/api/moderation/ping", adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = s.do(t, http.MethodGet, "/api/admin/sessions", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 3, body["total_users"])
	require.EqualValues(t, 3, body["total_sessions"])
	require.EqualValues(t, 3, body["active_sessions"])

	status, _ = s.do(t, http.MethodGet, "/api/admin/sessions", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminPurge(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.seed(t, "root", domain.RoleAdmin)

	ctx := context.Background()
	require.NoError(t, s.sessions.Create(ctx, domain.NewSession("lapsed", "nobody", time.Now().Add(-2*time.Hour), time.Hour)))

	status, body := s.do(t, http.MethodPost, "/api/admin/sessions/purge", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, body["purged"])

	status, _ = s.do(t, http.MethodGet, "/api/auth/me", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestAdminMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.seed(t, "ops", domain.RoleAdmin)
	userToken := s.seed(t, "plain", domain.RoleUser)

	status, _ := s.do(t, http.MethodGet, "/api/admin/metrics", userToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodGet, "/api/admin/metrics", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	authCounts, ok := body["auth"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 2, authCounts["login_ok"])
	require.EqualValues(t, 1, authCounts["gate_forbidden"])
	require.Contains(t, body, "latency_ms")
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, map[string]handlers.Pinger{"postgres": nil})

	status, body := s.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "alive", body["status"])

	status, body = s.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]any{"postgres": "disabled"}, body["dependencies"])

	down := newTestServer(t, map[string]handlers.Pinger{"redis": downPinger{}})
	status, body = down.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "DEPENDENCY_UNAVAILABLE", body["code"])
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	s := newTestServer(t, nil)
	status, body := s.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", body["code"])
	require.Contains(t, s.metrics.Snapshot()["errors"], "/nope|GET|NOT_FOUND")
}
