package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwerty-development/gym-webapp-sub000/internal/activity"
	"github.com/qwerty-development/gym-webapp-sub000/internal/api"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/bundle"
	"github.com/qwerty-development/gym-webapp-sub000/internal/cancellation"
	"github.com/qwerty-development/gym-webapp-sub000/internal/config"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
	"github.com/qwerty-development/gym-webapp-sub000/internal/notify"
	"github.com/qwerty-development/gym-webapp-sub000/internal/purchase"
	"github.com/qwerty-development/gym-webapp-sub000/internal/user"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

type testServer struct {
	srv    *Server
	issuer *auth.Issuer
	db     sqlmock.Sqlmock
	redis  redismock.ClientMock
}

// newTestServer mounts handlers with no services behind them; only routes
// that are rejected before reaching a handler can be exercised.
func newTestServer(t *testing.T) *testServer {
	conn, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	database := sqlx.NewDb(conn, "sqlmock")
	t.Cleanup(func() { database.Close() })

	rdb, redisMock := redismock.NewClientMock()
	issuer, err := auth.NewIssuer("test-secret")
	require.NoError(t, err)

	cfg := &config.Config{Port: "0", RateLimitRPS: 100, RateLimitBurst: 100}
	srv := New(cfg, issuer, database, notify.New(rdb, config.Notify{}), Handlers{
		User:         user.NewHandler(nil),
		Wallet:       wallet.NewHandler(nil),
		Ledger:       ledger.NewHandler(nil),
		Market:       market.NewHandler(nil),
		Activity:     activity.NewHandler(nil),
		Booking:      booking.NewHandler(nil),
		Cancellation: cancellation.NewHandler(nil),
		Purchase:     purchase.NewHandler(nil),
		Bundle:       bundle.NewHandler(nil),
	})
	t.Cleanup(srv.limiter.Stop)

	return &testServer{srv: srv, issuer: issuer, db: dbMock, redis: redisMock}
}

func (ts *testServer) token(t *testing.T, role string) string {
	pair, err := ts.issuer.Issue(5, "someone@example.com", role)
	require.NoError(t, err)
	return pair.AccessToken
}

func (ts *testServer) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(w, req)
	return w
}

func TestRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/wallet"},
		{http.MethodPost, "/sessions/1/cancel"},
		{http.MethodPost, "/group-sessions/1/cancel"},
		{http.MethodPost, "/market/checkout"},
		{http.MethodPost, "/bundles/1/purchase"},
		{http.MethodPost, "/admin/group-sessions/1/cancel"},
	} {
		w := ts.do(r.method, r.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
	}
}

func TestRoutes_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	member := ts.token(t, auth.RoleMember)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/admin/group-sessions/1/cancel"},
		{http.MethodPost, "/admin/users/3/wallet/adjust"},
		{http.MethodPut, "/admin/users/3/tokens"},
		{http.MethodGet, "/admin/transactions"},
		{http.MethodPost, "/admin/bundles"},
	} {
		w := ts.do(r.method, r.path, member)
		assert.Equal(t, http.StatusForbidden, w.Code, r.path)
	}
}

func TestRoutes_RefreshTokenIsNotAccess(t *testing.T) {
	ts := newTestServer(t)
	pair, err := ts.issuer.Issue(5, "someone@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	w := ts.do(http.MethodGet, "/admin/transactions", pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		ts := newTestServer(t)
		ts.db.ExpectPing()
		ts.redis.ExpectPing().SetVal("PONG")
		ts.redis.ExpectLLen("notifications").SetVal(3)

		w := ts.do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body api.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, int64(3), body.Pending)
	})

	t.Run("database down", func(t *testing.T) {
		ts := newTestServer(t)
		ts.db.ExpectPing().WillReturnError(errors.New("connection refused"))
		ts.redis.ExpectPing().SetVal("PONG")
		ts.redis.ExpectLLen("notifications").SetVal(0)

		w := ts.do(http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
	})

	t.Run("queue down is reported only", func(t *testing.T) {
		ts := newTestServer(t)
		ts.db.ExpectPing()
		ts.redis.ExpectPing().SetErr(errors.New("redis down"))

		w := ts.do(http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"queue":"unreachable"`)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestOpenAPIDocumentCoversRoutes(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	param := regexp.MustCompile(`:(\w+)`)
	for _, route := range ts.srv.router.Routes() {
		if route.Path == "/openapi.json" || strings.HasPrefix(route.Path, "/swagger/") {
			continue
		}
		path := param.ReplaceAllString(route.Path, "{$1}")
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "missing path %s", path) {
			assert.Contains(t, ops, strings.ToLower(route.Method), "missing %s %s", route.Method, path)
		}
	}
}

func TestSwaggerUI(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/swagger/index.html", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/openapi.json")
}

func TestShutdownBeforeStart(t *testing.T) {
	ts := newTestServer(t)

	require.NoError(t, ts.srv.Shutdown(context.Background()))
	assert.NoError(t, ts.srv.Start())
}

func TestShutdownWhileStarting(t *testing.T) {
	ts := newTestServer(t)

	errCh := make(chan error, 1)
	go func() { errCh <- ts.srv.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ts.srv.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}
