// Package handler translates HTTP requests into service operations and wraps
// every outcome in the uniform response envelope. Business rules live in the
// services; nothing here re-implements them.
package handler

import (
	"net/http"

	"mylibrary-server/internal/config"
	"mylibrary-server/internal/interfaces"
	"mylibrary-server/internal/models"
	"mylibrary-server/internal/service"

	"github.com/gin-gonic/gin"
)

const identityContextKey = "identity"

// AuthHandler handles registration, login, logout and profile requests.
type AuthHandler struct {
	authService service.AuthService
	userRepo    interfaces.UserRepository
	cfg         *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, userRepo interfaces.UserRepository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userRepo:    userRepo,
		cfg:         cfg,
	}
}

// BookHandler handles the owner-scoped book endpoints.
type BookHandler struct {
	bookService service.BookService
	cfg         *config.Config
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookService service.BookService, cfg *config.Config) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		cfg:         cfg,
	}
}

// RegisterRoutes wires the API surface. Everything under /api/books plus
// profile and logout sits behind the auth middleware.
func RegisterRoutes(router *gin.Engine, auth *AuthHandler, books *BookHandler) {
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", auth.register)
		authGroup.POST("/login", auth.login)
		authGroup.POST("/logout", auth.AuthMiddleware(), auth.logout)
		authGroup.GET("/profile", auth.AuthMiddleware(), auth.getProfile)
	}

	bookGroup := router.Group("/api/books", auth.AuthMiddleware())
	{
		bookGroup.GET("", books.list)
		bookGroup.GET("/stats", books.stats)
		bookGroup.GET("/:id", books.get)
		bookGroup.POST("", books.create)
		bookGroup.PUT("/:id", books.update)
		bookGroup.DELETE("/:id", books.delete)
	}
}

// getIdentityFromContext returns the identity the auth middleware stored, or
// aborts with an internal error when a protected handler runs without it.
func getIdentityFromContext(c *gin.Context) (models.Identity, bool) {
	raw, exists := c.Get(identityContextKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Fail("Internal server error"))
		return models.Identity{}, false
	}
	identity, ok := raw.(models.Identity)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Fail("Internal server error"))
		return models.Identity{}, false
	}
	return identity, true
}
