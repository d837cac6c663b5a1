package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
	"github.com/speakwell/rtcauth/internal/httputil"
	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
)

// AdminKeyHeader carries the plaintext admin key.
const AdminKeyHeader = "X-Admin-Key"

// AdminAuthMiddleware guards operator endpoints with a shared admin key checked against its
// Argon2id hash. A missing or wrong key yields 401 Unauthorized.
func AdminAuthMiddleware(
	adminKeyService usersigService.AdminKeyService,
	hashedKey string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainKey := c.GetHeader(AdminKeyHeader)
		if plainKey == "" || !adminKeyService.CompareKey(plainKey, hashedKey) {
			logger.Debug("admin authentication failed",
				slog.String("client_ip", c.ClientIP()),
				slog.Bool("key_present", plainKey != ""))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
