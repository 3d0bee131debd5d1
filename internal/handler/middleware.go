package handler

import (
	"errors"
	"strings"

	"mylibrary-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token, resolves the acting user, and
// stores the identity in the request context. The resolved identity is the
// only source of "acting user" for everything downstream.
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			zap.L().Warn("Authorization header missing", zap.String("path", c.FullPath()))
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			h.handleServiceError(c, models.ErrTokenMissing)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			zap.L().Warn("Invalid Authorization header format")
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			h.handleServiceError(c, models.ErrTokenMalformed)
			return
		}

		claims, err := h.authService.VerifyAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			h.handleServiceError(c, err)
			return
		}

		// The account behind a valid token may have been deleted since
		// issuance; a dangling token must not authenticate.
		user, err := h.userRepo.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				zap.L().Warn("Token valid but user no longer exists", zap.String("userID", claims.UserID.String()))
			}
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			h.handleServiceError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("success").Inc()
		c.Set(identityContextKey, models.IdentityFromUser(user))
		c.Set("claims", claims)
		c.Next()
	}
}
