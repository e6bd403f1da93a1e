package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ListContacts returns contacts ordered by name, without the guest and admin
// accounts' contacts
func (h *ContactHandler) ListContacts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	contacts, total, err := h.contactService.ListContacts(c.Request.Context(), params.Page, params.PageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToContactListResponse(contacts, params, total))
}

// GetContact returns the contact loaded by LoadContact
func (h *ContactHandler) GetContact(c *gin.Context) {
	contact, ok := middleware.GetContact(c)
	if !ok {
		apierrors.InternalError(c, "Contact not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToContactDTO(*contact))
}

// CreateContact creates an unlinked contact
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), req.Input())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToContactDTO(*contact))
}

// ReplaceContact handles PUT; name and email are required
func (h *ContactHandler) ReplaceContact(c *gin.Context) {
	h.updateContact(c, false)
}

// PatchContact handles PATCH
func (h *ContactHandler) PatchContact(c *gin.Context) {
	h.updateContact(c, true)
}

func (h *ContactHandler) updateContact(c *gin.Context, partial bool) {
	contact, ok := middleware.GetContact(c)
	if !ok {
		apierrors.InternalError(c, "Contact not found in context")
		return
	}

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	updated, err := h.contactService.UpdateContact(c.Request.Context(), contact, req.Input(), partial)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToContactDTO(*updated))
}

// DeleteContact deletes a contact. A linked account is deleted with it.
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	contact, ok := middleware.GetContact(c)
	if !ok {
		apierrors.InternalError(c, "Contact not found in context")
		return
	}

	if err := h.contactService.DeleteContact(c.Request.Context(), contact); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
