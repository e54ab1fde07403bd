package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dlopezkluever/wizardirector/internal/domain"
)

func TestRespondDomainErrorStatuses(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.NotFoundError("gone"), http.StatusNotFound},
		{"conflict", domain.ConflictError("locked"), http.StatusConflict},
		{"validation", domain.ValidationError("bad input"), http.StatusBadRequest},
		{"external", domain.ExternalError(errors.New("bucket down")), http.StatusBadGateway},
		{"untagged", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			respondDomainError(c, "test_code", tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
