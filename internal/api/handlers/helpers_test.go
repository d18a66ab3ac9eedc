package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/stretchr/testify/require"
)

func newTestRouter(b *bridge.Bridge) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	d := NewDeliveryHandler(b)
	r.GET("/api/ping", d.Ping)
	r.GET("/api/receive", d.Receive)
	r.GET("/api/places", d.ListPlaces)
	r.GET("/api/contexts", d.ActiveContexts)
	r.GET("/api/status", d.GetStatus)
	r.POST("/api/status", d.PostStatus)
	r.POST("/api/disconnect", d.Disconnect)

	e := NewEditorHandler(b)
	r.POST("/editor/execute", e.Execute)
	r.GET("/editor/state", e.GetState)
	r.POST("/editor/target/place", e.SetTargetPlace)
	r.POST("/editor/target/place/next", e.NextTargetPlace)
	r.POST("/editor/target/context", e.SetTargetContext)
	r.POST("/editor/target/context/next", e.NextTargetContext)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
