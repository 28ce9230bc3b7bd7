package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// @Summary      Upload avatar
// @Description  Multipart "file" field; stored on the image host, 250x250 crop
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "avatar image"
// @Success      200  {object}  models.User
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /users/avatar [patch]
// @Security     BearerAuth
func (h *Handler) updateAvatar(c *gin.Context) {
	user := currentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()

	updated, err := h.services.Users.UpdateAvatar(c.Request.Context(), user.Email, file)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to update avatar", "users_avatar_failed", err, "email", user.Email)
		return
	}
	c.JSON(http.StatusOK, updated)
}
