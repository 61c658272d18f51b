// internal/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizzyhq/bizzy-backend/internal/utils"
)

// currentUserID reads the authenticated user from the context set by
// the auth middleware. A miss means the route was wired without it.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
