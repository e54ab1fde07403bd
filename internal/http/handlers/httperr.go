package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dlopezkluever/wizardirector/internal/domain"
	"github.com/dlopezkluever/wizardirector/internal/http/response"
)

// respondDomainError maps the domain error taxonomy onto HTTP statuses.
// Anything untagged is a 500.
func respondDomainError(c *gin.Context, code string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, code, err)
	case errors.Is(err, domain.ErrConflict):
		response.RespondError(c, http.StatusConflict, code, err)
	case errors.Is(err, domain.ErrValidation):
		response.RespondError(c, http.StatusBadRequest, code, err)
	case errors.Is(err, domain.ErrExternal):
		response.RespondError(c, http.StatusBadGateway, code, err)
	default:
		response.RespondError(c, http.StatusInternalServerError, code, err)
	}
}
