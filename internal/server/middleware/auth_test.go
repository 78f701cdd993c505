package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/security"
)

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"  Bearer   abc  ", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := extractBearer(c.in); got != c.want {
			t.Errorf("extractBearer(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	accessToken, _, _, err := tokens.IssueAccess("session-1", "user-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	engine := gin.New()
	engine.Use(Identity(tokens))
	engine.GET("/open", func(c *gin.Context) {
		userID, _ := GetUserID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	protected := engine.Group("/", RequireAuth())
	protected.GET("/private", func(c *gin.Context) {
		userID, _ := GetUserID(c.Request.Context())
		sessionID, _ := GetSessionID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "session_id": sessionID})
	})
	return engine, accessToken
}

func TestRequireAuth_ValidToken(t *testing.T) {
	engine, token := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"user-1", "session-1"} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	engine, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	engine, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestIdentity_OpportunisticOnOpenRoutes(t *testing.T) {
	engine, token := newAuthRouter(t)

	// Without a token the open route still serves, un-identified.
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "user-1") {
		t.Errorf("anonymous request carried an identity: %s", w.Body.String())
	}

	// With a token the same route sees the caller.
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "user-1") {
		t.Errorf("identified request lost its identity: %s", w.Body.String())
	}
}
