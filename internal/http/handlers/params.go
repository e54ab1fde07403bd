package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dlopezkluever/wizardirector/internal/http/response"
	"github.com/dlopezkluever/wizardirector/internal/platform/ctxutil"
)

// requireUser pulls the gateway-attached identity off the request. A
// missing or nil user id ends the request with a 401.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}
