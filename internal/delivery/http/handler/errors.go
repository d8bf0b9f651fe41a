package handler

import (
	"errors"
	"net/http"

	domainDrone "drone-fire-monitor/internal/domain/drone"
	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/internal/middleware"
	appErrors "drone-fire-monitor/pkg/errors"
	"drone-fire-monitor/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domainDrone.ErrDroneNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Drone not found")
	case errors.Is(err, domainDrone.ErrDroneMismatch):
		utils.ErrorResponse(c, http.StatusForbidden, "Token was not issued for this drone")
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) && appErr.Code == appErrors.CodeValidation {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Error())
			return
		}

		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
