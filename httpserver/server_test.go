package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ruteri/sskr-service/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServerConfig() *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      discardLogger(),
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}
}

func newTestServer(t *testing.T) *Server {
	srv, err := New(testServerConfig(), NewHandler(nil, discardLogger()), nil)
	require.NoError(t, err, "Failed to create server")
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestServer_HealthAndDrain(t *testing.T) {
	srv := newTestServer(t)
	router := srv.getRouter()

	assert.Equal(t, http.StatusOK, get(t, router, "/livez").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)

	rr := get(t, router, "/drain")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"draining"}`, rr.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, get(t, router, "/readyz").Code, "Drained server should not be ready")
	assert.JSONEq(t, `{"status":"already draining"}`, get(t, router, "/drain").Body.String())

	assert.JSONEq(t, `{"status":"ready"}`, get(t, router, "/undrain").Body.String())
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)
	assert.JSONEq(t, `{"status":"already ready"}`, get(t, router, "/undrain").Body.String())
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)
	router := srv.getRouter()

	rr := postJSON(t, router, "/api/v1/inspect", api.InspectRequest{Shard: []byte{1}})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Public API should be mounted")

	assert.Equal(t, http.StatusNotFound, get(t, router, "/admin/status").Code, "Admin API should be absent without a keeper")
	assert.Equal(t, http.StatusNotFound, get(t, router, "/debug/pprof/").Code, "pprof should be disabled by default")
}

func TestServer_AdminListener(t *testing.T) {
	admins := generateAdmins(t, 4)
	keeper, _ := recoverySetup(t, admins)
	adminHandler := NewAdminHandler(discardLogger(), keeper, admins.pubKeyPEMs)

	srv, err := New(testServerConfig(), NewHandler(nil, discardLogger()), adminHandler)
	require.NoError(t, err)
	assert.Nil(t, srv.adminSrv)
	assert.Equal(t, http.StatusOK, get(t, srv.getRouter(), "/admin/status").Code, "Admin API should share the public listener by default")

	cfg := testServerConfig()
	cfg.AdminListenAddr = "127.0.0.1:0"
	srv, err = New(cfg, NewHandler(nil, discardLogger()), adminHandler)
	require.NoError(t, err)
	require.NotNil(t, srv.adminSrv)
	assert.Equal(t, http.StatusNotFound, get(t, srv.getRouter(), "/admin/status").Code, "Admin API should not be on the public listener")
	assert.Equal(t, http.StatusOK, get(t, srv.adminSrv.Handler, "/admin/status").Code)
}
