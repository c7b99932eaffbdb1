package handlers

import (
	"errors"

	"healthsync-server/internal/services"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError maps a service error onto the HTTP taxonomy: NotFound,
// Forbidden, Conflict and Validation each get their own status so the client
// can decide messaging; anything else is an unexpected storage error, logged
// and returned as a generic 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.BadRequest(c, err.Error())
	default:
		zap.L().Error("unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		utils.InternalServerError(c, "Unexpected server error")
	}
}
