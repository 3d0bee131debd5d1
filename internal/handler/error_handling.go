package handler

import (
	"errors"
	"net/http"

	"mylibrary-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps a domain error to an HTTP status and envelope.
// Every credential failure collapses to the same generic 401 so callers
// cannot enumerate accounts or probe token internals; ownership mismatches
// surface as the same 404 as truly missing rows.
func (h *AuthHandler) handleServiceError(c *gin.Context, err error) {
	handleServiceError(c, err, h.cfg.IsProd())
}

func (h *BookHandler) handleServiceError(c *gin.Context, err error) {
	handleServiceError(c, err, h.cfg.IsProd())
}

func handleServiceError(c *gin.Context, err error, isProd bool) {
	var verr *models.ValidationError

	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "Invalid data",
			Errors:  verr.Fields,
		})
	case errors.Is(err, models.ErrUserAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, models.Fail("A user with this username already exists"))
	case errors.Is(err, models.ErrEmailAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, models.Fail("A user with this email already exists"))
	case errors.Is(err, models.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.Fail("Invalid credentials"))
	case errors.Is(err, models.ErrTokenMissing),
		errors.Is(err, models.ErrTokenMalformed),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenExpired),
		errors.Is(err, models.ErrTokenRevoked),
		errors.Is(err, models.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.Fail("Unauthorized"))
	case errors.Is(err, models.ErrBookNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, models.Fail("Book not found"))
	default:
		zap.L().Error("Unhandled internal error", zap.Error(err), zap.String("path", c.FullPath()))
		resp := models.Fail("Internal server error")
		if !isProd {
			resp.Error = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	}
}
