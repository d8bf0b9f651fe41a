package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/internal/mediaproxy"
	"drone-fire-monitor/internal/middleware"
	"drone-fire-monitor/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProxyHandler struct {
	proxy *mediaproxy.Proxy
}

func NewProxyHandler(proxy *mediaproxy.Proxy) *ProxyHandler {
	return &ProxyHandler{proxy: proxy}
}

func (h *ProxyHandler) RegisterRoutes(router *gin.RouterGroup) {
	proxy := router.Group("/proxy")
	{
		proxy.GET("/image", h.Image)
		proxy.GET("/video", h.Video)
	}
}

func (h *ProxyHandler) Image(c *gin.Context) {
	h.relay(c, mediaproxy.KindImage, http.StatusNotFound, "Image not found", false)
}

func (h *ProxyHandler) Video(c *gin.Context) {
	// Streams outlive the server write timeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("Could not lift write deadline for video stream", zap.Error(err))
	}
	h.relay(c, mediaproxy.KindVideo, http.StatusBadGateway, "Video stream unavailable", true)
}

// relay copies the upstream body to the client. The upstream request is bound to the
// client request context, so a client disconnect cancels it.
func (h *ProxyHandler) relay(c *gin.Context, kind mediaproxy.Kind, failureStatus int, failureMessage string, stream bool) {
	target := c.Query("url")

	upstream, err := h.proxy.Open(c.Request.Context(), kind, target)
	if err != nil {
		if errors.Is(err, mediaproxy.ErrMissingURL) {
			utils.ErrorResponse(c, http.StatusBadRequest, "url query parameter is required")
			return
		}
		logger.Warn("Media proxy fetch failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("kind", kind.String()),
			zap.String("url", target),
			zap.Error(err),
		)
		utils.ErrorResponse(c, failureStatus, failureMessage)
		return
	}
	defer upstream.Close()

	if upstream.ContentType != "" {
		c.Header("Content-Type", upstream.ContentType)
	}
	if upstream.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(upstream.ContentLength, 10))
	}
	c.Status(http.StatusOK)

	var dst io.Writer = c.Writer
	if stream {
		dst = flushWriter{c.Writer}
	}
	if _, err := io.Copy(dst, upstream.Body); err != nil {
		logger.Debug("Media proxy copy interrupted",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}
}

// flushWriter pushes every chunk to the client as soon as it arrives.
type flushWriter struct {
	w gin.ResponseWriter
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if n > 0 {
		f.w.Flush()
	}
	return n, err
}
