package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// AccountHandler serves the authenticated user's own account.
type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// GetProfile returns the account with its linked contact.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	h.respondProfile(c, user)
}

// UpdateProfile changes name or email; the linked contact follows.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	updated, err := h.accountService.UpdateProfile(c.Request.Context(), user, services.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.respondProfile(c, updated)
}

// DeleteAccount removes the account. Its contact stays, unlinked.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), user); err != nil {
		respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) respondProfile(c *gin.Context, user *models.User) {
	contact, err := h.accountService.Profile(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileDTO(*user, contact))
}
