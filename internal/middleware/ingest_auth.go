package middleware

import (
	"net/http"
	"strings"

	"drone-fire-monitor/internal/auth"
	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ingestClaimsKey = "ingest_claims"

// IngestAuthMiddleware requires a Bearer ingest token when the issuer is enabled.
// Without a signing secret the endpoint stays open.
func IngestAuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !issuer.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := issuer.Verify(parts[1])
		if err != nil {
			logger.Warn("Rejected ingest token",
				zap.String("request_id", GetRequestID(c)),
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ingestClaimsKey, claims)
		c.Next()
	}
}

// GetIngestClaims returns the verified ingest claims, if the request carried any.
func GetIngestClaims(c *gin.Context) (*auth.IngestClaims, bool) {
	v, exists := c.Get(ingestClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.IngestClaims)
	return claims, ok
}
