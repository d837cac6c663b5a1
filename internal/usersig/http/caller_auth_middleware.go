package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
	"github.com/speakwell/rtcauth/internal/httputil"
)

// CallerAuthMiddleware authenticates callers of the issuance endpoints with an HS256 access
// token in the Authorization header ("Bearer <jwt>", case-insensitive "bearer").
//
// The token must carry an expiration and a non-empty subject. On success the subject is
// stored in the request context and is available through GetCaller.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Bad signature, unexpected algorithm, expired token or missing sub → 401 Unauthorized
func CallerAuthMiddleware(secret []byte, logger *slog.Logger) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) {
		return secret, nil
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("caller authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("caller authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		rawToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if rawToken == "" {
			logger.Debug("caller authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(rawToken, claims, keyFunc); err != nil {
			logger.Debug("caller authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if strings.TrimSpace(claims.Subject) == "" {
			logger.Debug("caller authentication failed: token has no subject")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), claims.Subject))

		logger.Debug("caller authentication successful", slog.String("subject", claims.Subject))

		c.Next()
	}
}
