package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/repository"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/service"
)

const (
	statusOK = "ok"

	errNotFound       = "Not Found"
	errListContacts   = "failed to list contacts"
	errCreateContact  = "failed to create contact"
	errUpdateContact  = "failed to update contact"
	errDeleteContact  = "failed to delete contact"
	errInvalidID      = "invalid contact id"
	errInvalidDays    = "days must be a positive number"
	errInvalidBodyMsg = "invalid body: "
)

// Request DTO for creating a contact.
type contactRequest struct {
	Firstname string  `json:"firstname" binding:"required"`
	Lastname  string  `json:"lastname" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     string  `json:"phone" binding:"required"`
	Birthday  *string `json:"birthday,omitempty"` // YYYY-MM-DD
}

// Request DTO for updating a contact; only email and phone are mutable.
type contactUpdateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List contacts
// @Description  Optional firstname/lastname/email query filters, ANDed together
// @Tags         contacts
// @Produce      json
// @Success      200  {array}   models.Contact
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /contacts/ [get]
// @Security     BearerAuth
func (h *Handler) listContacts(c *gin.Context) {
	user := currentUser(c)

	filter := repository.ContactFilter{
		Firstname: c.Query("firstname"),
		Lastname:  c.Query("lastname"),
		Email:     c.Query("email"),
	}

	contacts, err := h.services.Contacts.List(c.Request.Context(), user.ID, filter)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListContacts, "contacts_list_failed", err, "user", user.ID)
		return
	}
	if len(contacts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": errNotFound})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// @Summary      Contacts with upcoming birthdays
// @Description  Birthday in (today, today+days]; today itself is excluded
// @Tags         contacts
// @Produce      json
// @Param        days  path  int  true  "window in days"
// @Success      200  {array}   models.Contact
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /contacts/birthdays/{days} [get]
// @Security     BearerAuth
func (h *Handler) upcomingBirthdays(c *gin.Context) {
	user := currentUser(c)

	days, err := strconv.Atoi(c.Param("days"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDays})
		return
	}

	contacts, err := h.services.Contacts.UpcomingBirthdays(c.Request.Context(), user.ID, days)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDays) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDays})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errListContacts, "contacts_birthdays_failed", err, "user", user.ID)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// @Summary      Get contact by id
// @Tags         contacts
// @Produce      json
// @Param        id  path  int  true  "contact id"
// @Success      200  {object}  models.Contact
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /contacts/{id} [get]
// @Security     BearerAuth
func (h *Handler) getContact(c *gin.Context) {
	user := currentUser(c)

	id, ok := contactID(c)
	if !ok {
		return
	}

	contact, err := h.services.Contacts.Get(c.Request.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errListContacts, "contacts_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// @Summary      Create contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        body  body  contactRequest  true  "Contact payload"
// @Success      201  {object}  models.Contact
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /contacts/ [post]
// @Security     BearerAuth
func (h *Handler) createContact(c *gin.Context) {
	user := currentUser(c)

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyMsg + err.Error()})
		return
	}

	contact, err := h.services.Contacts.Create(c.Request.Context(), repository.CreateContactParams{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  req.Birthday,
	}, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactExists):
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Contact with email:%s already exist!", req.Email)})
		case errors.Is(err, service.ErrInvalidBirthday):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errCreateContact, "contacts_create_failed", err, "email", req.Email)
		}
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// @Summary      Update contact email/phone
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id    path  int                   true  "contact id"
// @Param        body  body  contactUpdateRequest  true  "Fields to update"
// @Success      200  {object}  models.Contact
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /contacts/{id} [patch]
// @Security     BearerAuth
func (h *Handler) updateContact(c *gin.Context) {
	user := currentUser(c)

	id, ok := contactID(c)
	if !ok {
		return
	}

	var req contactUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyMsg + err.Error()})
		return
	}

	contact, err := h.services.Contacts.Update(c.Request.Context(), id, user.ID, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errUpdateContact, "contacts_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// @Summary      Delete contact (admin only)
// @Tags         contacts
// @Produce      json
// @Param        id  path  int  true  "contact id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /contacts/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}

	if _, err := h.services.Contacts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteContact, "contacts_delete_failed", err, "id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// contactID parses the :id path param, writing the 400 itself on failure.
func contactID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return 0, false
	}
	return id, true
}
