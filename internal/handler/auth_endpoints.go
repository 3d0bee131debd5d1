package handler

import (
	"net/http"

	"mylibrary-server/internal/models"
	"mylibrary-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// register creates a new account and returns it with a fresh token.
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Username, email and password are required"))
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, models.OKWithMessage("Account created successfully", authData{
		User:  newUserResponse(user),
		Token: token,
	}))
}

// login verifies credentials and returns the account with a fresh token.
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Email or username and password are required"))
		return
	}
	if req.Email == "" && req.Username == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Email or username and password are required"))
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	loginsTotal.Inc()

	c.JSON(http.StatusOK, models.OKWithMessage("Login successful", authData{
		User:  newUserResponse(user),
		Token: token,
	}))
}

// logout revokes the presented token for the rest of its lifetime.
func (h *AuthHandler) logout(c *gin.Context) {
	claimsRaw, exists := c.Get("claims")
	if !exists {
		zap.L().Error("Claims missing in context during logout")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Fail("Internal server error"))
		return
	}
	claims, ok := claimsRaw.(*models.Claims)
	if !ok {
		zap.L().Error("Invalid claims type in context during logout")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Fail("Internal server error"))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Message: "Successfully logged out"})
}
