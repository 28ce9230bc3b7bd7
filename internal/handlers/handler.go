package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/logger"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/service"
)

// RateLimiter is the external counter the gate consults per client+route.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	limiter  RateLimiter
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, limiter RateLimiter, log *logger.Logger) *Handler {
	return &Handler{services: services, limiter: limiter, log: log}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerUserRoutes(router)
	h.registerContactRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.rateLimit("signup", 5, time.Hour), h.signUp)
		auth.POST("/login", h.rateLimit("login", 10, 5*time.Minute), h.login)
		auth.GET("/refresh_token", h.rateLimit("refresh", 30, 10*time.Minute), h.refreshToken)
		auth.GET("/confirmed_email/:token", h.confirmedEmail)
		auth.POST("/request_email", h.rateLimit("request_email", 3, time.Hour), h.requestEmail)
		auth.POST("/logout", h.authMiddleware, h.logout)
	}
}

func (h *Handler) registerUserRoutes(r *gin.Engine) {
	users := r.Group("/users", h.authMiddleware)
	{
		users.GET("/me", h.me)
		users.PATCH("/avatar", h.updateAvatar)
	}
}

func (h *Handler) registerContactRoutes(r *gin.Engine) {
	contacts := r.Group("/contacts", h.authMiddleware)
	{
		contacts.GET("/", h.listContacts)
		contacts.GET("/birthdays/:days", h.upcomingBirthdays)
		contacts.GET("/:id", h.getContact)
		contacts.POST("/", h.rateLimit("contacts_write", 60, time.Minute), h.createContact)
		contacts.PATCH("/:id", h.rateLimit("contacts_write", 60, time.Minute), h.updateContact)
		contacts.DELETE("/:id", h.requireRole(models.RoleAdmin), h.deleteContact)
	}
}
