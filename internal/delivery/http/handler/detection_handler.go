package handler

import (
	"net/http"

	"drone-fire-monitor/internal/middleware"
	"drone-fire-monitor/internal/usecase/detection"
	"drone-fire-monitor/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DetectionHandler struct {
	service *detection.Service
}

func NewDetectionHandler(service *detection.Service) *DetectionHandler {
	return &DetectionHandler{service: service}
}

// RegisterRoutes mounts the read endpoints.
func (h *DetectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/logs/:drone_name", h.History)
	router.GET("/drones/:drone_name/live-photos", h.LivePhotos)
}

// RegisterIngestRoutes mounts the ingestion endpoint behind the ingest token check.
func (h *DetectionHandler) RegisterIngestRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	router.POST("/event", authMiddleware, h.Ingest)
}

func (h *DetectionHandler) Ingest(c *gin.Context) {
	var req detection.IngestRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if claims, ok := middleware.GetIngestClaims(c); ok {
		req.DroneID = claims.DroneID()
	}

	resp, err := h.service.Ingest(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Event stored", resp)
}

func (h *DetectionHandler) History(c *gin.Context) {
	var query detection.HistoryQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	resp, err := h.service.History(c.Request.Context(), c.Param("drone_name"), &query)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Events retrieved successfully", resp)
}

func (h *DetectionHandler) LivePhotos(c *gin.Context) {
	resp, err := h.service.LiveWindow(c.Request.Context(), c.Param("drone_name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Live photos retrieved successfully", resp)
}
