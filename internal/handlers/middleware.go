package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
)

const userCtxKey = "currentUser"

// authMiddleware decodes the bearer access token, resolves the user and
// stores it in the request context. Any failure ends the request with 401.
func (h *Handler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	user, err := h.services.CurrentUser(c.Request.Context(), parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(userCtxKey, user)
	c.Next()
}

// currentUser pulls the resolved user out of the gin context.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// requireRole rejects requests whose user role is not in the allow-list.
// Must run after authMiddleware.
func (h *Handler) requireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "not authenticated",
			})
			return
		}
		if !user.Role.In(allowed...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "operation forbidden",
			})
			return
		}
		c.Next()
	}
}

// rateLimit counts the request against the route's fixed window, keyed by
// client IP. If the counter backend is unavailable the request is admitted;
// a broken limiter must not take the API down with it.
func (h *Handler) rateLimit(route string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil {
			c.Next()
			return
		}
		key := route + ":" + c.ClientIP()
		ok, err := h.limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			if h.log != nil {
				h.log.Errorw("rate_limit_unavailable", "route", route, "err", err)
			}
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}
