package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/crypto"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(m *crypto.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(m))
	r.GET("/whoami", func(c *gin.Context) {
		editor, _ := GetEditor(c)
		c.String(http.StatusOK, editor)
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	r := newAuthRouter(nil)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	m, err := crypto.NewJWTManager("s3cret")
	require.NoError(t, err)
	token, err := m.CreateToken("vscode", time.Hour)
	require.NoError(t, err)
	r := newAuthRouter(m)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token "+token)
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "vscode", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/whoami?token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)
}
