package bron

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"webstack-ceo/backend/internal/server/middleware"
)

// staticTier answers every tier lookup with the same plan.
type staticTier struct{ tier string }

func (s staticTier) GetTier(ctx context.Context, userID string) (string, error) {
	return s.tier, nil
}

func newBronRouter(t *testing.T, tier string, identified bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fetcher := newMockFetcher()
	fetcher.payloads["overview"] = []byte(`{"seoScore": 50}`)
	svc := NewService(fetcher, fetcher, nil, nil)
	h := NewHandler(svc, staticTier{tier: tier})

	engine := gin.New()
	if identified {
		engine.Use(func(c *gin.Context) {
			ctx := middleware.WithIdentity(c.Request.Context(), "user-1", "session-1")
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	h.Register(engine.Group("/"))
	return engine
}

func postReport(engine *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/seo/report", strings.NewReader(`{"domain":"example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestReport_FreeTierBlocked(t *testing.T) {
	engine := newBronRouter(t, "free", true)

	w := postReport(engine)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402; body = %s", w.Code, w.Body.String())
	}
}

func TestReport_StarterTierAllowed(t *testing.T) {
	engine := newBronRouter(t, "starter", true)

	w := postReport(engine)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "overview") {
		t.Errorf("body missing report payload: %s", w.Body.String())
	}
}

func TestReport_UnidentifiedCaller(t *testing.T) {
	engine := newBronRouter(t, "pro", false)

	w := postReport(engine)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestContent_FreeTierBlocked(t *testing.T) {
	engine := newBronRouter(t, "free", true)

	req := httptest.NewRequest(http.MethodPost, "/seo/content", strings.NewReader(`{"domain":"example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", w.Code)
	}
}
