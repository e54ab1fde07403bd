package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/platform/ctxutil"
)

func TestAttachRequestContextParsesHeaders(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	userID := uuid.New()

	r := gin.New()
	r.Use(AttachRequestContext())
	var got *ctxutil.RequestData
	r.GET("/probe", func(c *gin.Context) {
		got = ctxutil.GetRequestData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-User-ID", userID.String())
	req.Header.Set("X-Request-ID", "req-123")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("request data missing from context")
	}
	if got.UserID != userID {
		t.Fatalf("user id = %s, want %s", got.UserID, userID)
	}
	if got.RequestID != "req-123" {
		t.Fatalf("request id = %q", got.RequestID)
	}
}

func TestAttachRequestContextIgnoresBadUserID(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AttachRequestContext())
	var got *ctxutil.RequestData
	r.GET("/probe", func(c *gin.Context) {
		got = ctxutil.GetRequestData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-User-ID", "not-a-uuid")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("request data missing from context")
	}
	if got.UserID != uuid.Nil {
		t.Fatalf("user id = %s, want nil uuid", got.UserID)
	}
}

func TestCORSAllowsLocalDevOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS())
	r.OPTIONS("/api/v1/library-assets", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/library-assets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: got=%q", got)
	}
}
