package handler

import (
	"net/http"

	"mylibrary-server/internal/models"

	"github.com/gin-gonic/gin"
)

// getProfile returns the authenticated user's own account.
func (h *AuthHandler) getProfile(c *gin.Context) {
	identity, ok := getIdentityFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.OK(gin.H{"user": userResponse{
		ID:        identity.ID.String(),
		Username:  identity.Username,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}}))
}
