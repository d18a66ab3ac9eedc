package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/crypto"
	"github.com/rbxbridge/rbxbridge/internal/websocket"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_EditorRoutesRequireToken(t *testing.T) {
	m, err := crypto.NewJWTManager("s3cret")
	require.NoError(t, err)
	b := bridge.New()
	r := NewRouter(b, RouterOptions{AllowedOrigins: []string{"*"}, JWT: m})

	body := []byte(`{"Code": "print(1)", "File": "a.lua"}`)
	w := serve(r, httptest.NewRequest(http.MethodPost, "/editor/execute", bytes.NewReader(body)))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := m.CreateToken("cli", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/editor/execute", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	require.Equal(t, http.StatusCreated, w.Code)

	// Place-facing routes stay open.
	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/receive?context=Edit", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NoAuthWithoutSecret(t *testing.T) {
	r := NewRouter(bridge.New(), RouterOptions{AllowedOrigins: []string{"*"}})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/editor/state", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "rbxbridge", w.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := NewRouter(bridge.New(), RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/editor/execute", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := serve(r, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_EventsRouteMountedWithHub(t *testing.T) {
	b := bridge.New()
	hub := websocket.NewHub(b, []string{"*"})
	r := NewRouter(b, RouterOptions{AllowedOrigins: []string{"*"}, Hub: hub})

	// A plain GET is not an upgrade; the route exists and refuses it.
	w := serve(r, httptest.NewRequest(http.MethodGet, "/editor/events", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	r = NewRouter(b, RouterOptions{AllowedOrigins: []string{"*"}})
	w = serve(r, httptest.NewRequest(http.MethodGet, "/editor/events", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
