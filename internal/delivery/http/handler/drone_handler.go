package handler

import (
	"net/http"

	"drone-fire-monitor/internal/usecase/drone"
	"drone-fire-monitor/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DroneHandler struct {
	service *drone.Service
}

func NewDroneHandler(service *drone.Service) *DroneHandler {
	return &DroneHandler{service: service}
}

func (h *DroneHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/register", h.Register)

	drones := router.Group("/drones")
	{
		drones.GET("", h.ListDrones)
		drones.POST("/:drone_name/connect", h.Connect)
		drones.GET("/:drone_name/status", h.GetStatus)
		drones.GET("/:drone_name/video-url", h.GetVideoURL)
		drones.PUT("/:drone_name/video-url", h.SetVideoURL)
	}
}

func (h *DroneHandler) Register(c *gin.Context) {
	var req drone.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := http.StatusOK
	if resp.IsNew {
		status = http.StatusCreated
	}
	utils.SuccessResponse(c, status, "Drone registered successfully", resp)
}

func (h *DroneHandler) Connect(c *gin.Context) {
	resp, err := h.service.MarkConnected(c.Request.Context(), c.Param("drone_name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drone connected", resp)
}

func (h *DroneHandler) ListDrones(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drones retrieved successfully", resp)
}

func (h *DroneHandler) GetStatus(c *gin.Context) {
	resp, err := h.service.GetStatus(c.Request.Context(), c.Param("drone_name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drone status retrieved successfully", resp)
}

func (h *DroneHandler) GetVideoURL(c *gin.Context) {
	resp, err := h.service.GetVideoURL(c.Request.Context(), c.Param("drone_name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Video url retrieved successfully", resp)
}

func (h *DroneHandler) SetVideoURL(c *gin.Context) {
	var req drone.SetVideoURLRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.SetVideoURL(c.Request.Context(), c.Param("drone_name"), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Video url updated successfully", resp)
}
