package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeParser(token string) (int64, string, error) {
	switch token {
	case "admin":
		return 1, "admin", nil
	case "student":
		return 2, "student", nil
	}
	return 0, "", errors.New("invalid token")
}

func newTestEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	authed := r.Group("", Auth(fakeParser))
	authed.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, strconv.FormatInt(UserID(c), 10)+":"+UserRole(c))
	})
	authed.GET("/admin", RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthSetsUserContext(t *testing.T) {
	w := do(newTestEngine(), "/me", "Bearer student")
	if w.Code != http.StatusOK || w.Body.String() != "2:student" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestAuthRejectsMissingOrBadToken(t *testing.T) {
	r := newTestEngine()
	for _, h := range []string{"", "Bearer", "Basic abc", "Bearer nope"} {
		if w := do(r, "/me", h); w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d", h, w.Code)
		}
	}
}

func TestRequireRoles(t *testing.T) {
	r := newTestEngine()
	if w := do(r, "/admin", "Bearer student"); w.Code != http.StatusForbidden {
		t.Fatalf("student status = %d", w.Code)
	}
	if w := do(r, "/admin", "bearer admin"); w.Code != http.StatusNoContent {
		t.Fatalf("admin status = %d", w.Code)
	}
}

func TestRequestIDEchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("request id not echoed: %q", w.Body.String())
	}

	w = do(r, "/", "")
	if len(w.Body.String()) != 36 {
		t.Fatalf("generated request id = %q", w.Body.String())
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.campus.edu"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.campus.edu")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.campus.edu" {
		t.Fatalf("allow origin = %q", got)
	}
}
