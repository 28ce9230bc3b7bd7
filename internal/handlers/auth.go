package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/service"
)

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// login takes a form body, same shape as an OAuth2 password grant:
// the username field carries the email.
type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type requestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) signUp(c *gin.Context) {
	var input signUpRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, err := h.services.SignUp(c.Request.Context(), service.SignUpParams{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to create account", "auth_sign_up_failed", err, "email", input.Email)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   user,
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email"})
		case errors.Is(err, service.ErrEmailNotConfirmed):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email not confirmed"})
		case errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to log in", "auth_login_failed", err, "email", input.Username)
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *Handler) refreshToken(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	pair, err := h.services.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		case errors.Is(err, service.ErrInvalidRefreshToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to refresh token", "auth_refresh_failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *Handler) confirmedEmail(c *gin.Context) {
	already, err := h.services.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrVerificationFailed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Verification error"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to confirm email", "auth_confirm_failed", err)
		return
	}

	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}

func (h *Handler) requestEmail(c *gin.Context) {
	var input requestEmailRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	already, err := h.services.RequestConfirmation(c.Request.Context(), input.Email)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to request confirmation", "auth_request_email_failed", err, "email", input.Email)
		return
	}

	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check your email for confirmation."})
}

func (h *Handler) logout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.services.Logout(c.Request.Context(), user.ID); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to log out", "auth_logout_failed", err, "email", user.Email)
		return
	}
	c.Status(http.StatusNoContent)
}

// bearerToken extracts the token from the Authorization header without
// resolving a user; the refresh endpoint validates it itself.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
