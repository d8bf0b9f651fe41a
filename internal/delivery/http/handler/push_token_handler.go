package handler

import (
	"net/http"

	"drone-fire-monitor/internal/usecase/pushtoken"
	"drone-fire-monitor/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PushTokenHandler struct {
	service *pushtoken.Service
}

func NewPushTokenHandler(service *pushtoken.Service) *PushTokenHandler {
	return &PushTokenHandler{service: service}
}

func (h *PushTokenHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/push-token", h.Register)
}

func (h *PushTokenHandler) Register(c *gin.Context) {
	var req pushtoken.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Push token registered", resp)
}
