package handler

import (
	"github.com/gin-gonic/gin"
	marketingapp "github.com/shopfront/backend/internal/application/marketing"
)

// ContactHandler handles the contact form and its admin inbox
type ContactHandler struct {
	BaseHandler
	contactService *marketingapp.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *marketingapp.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit godoc
// @ID           submitContact
// @Summary      Send a message to the store
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        request body marketingapp.ContactInput true "Message"
// @Success      201 {object} APIResponse[marketingapp.ContactResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req marketingapp.ContactInput
	if !h.BindJSON(c, &req) {
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, msg)
}

// List godoc
// @ID           adminListContacts
// @Summary      List contact messages
// @Tags         admin-contacts
// @Produce      json
// @Param        status    query string false "Status" Enums(new, read, replied, archived)
// @Param        search    query string false "Search name, email and subject"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]marketingapp.ContactResponse]
// @Security     BearerAuth
// @Router       /admin/contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	var q marketingapp.ContactListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.contactService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	respondPage(&h.BaseHandler, c, page)
}

// Get godoc
// @ID           adminGetContact
// @Summary      Read a contact message
// @Description  New messages are marked as read
// @Tags         admin-contacts
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Success      200 {object} APIResponse[marketingapp.ContactResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/contacts/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	msg, err := h.contactService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, msg)
}

// SetStatus godoc
// @ID           adminSetContactStatus
// @Summary      Change the status of a message
// @Tags         admin-contacts
// @Accept       json
// @Produce      json
// @Param        id      path string                                 true "Message ID" format(uuid)
// @Param        request body marketingapp.UpdateContactStatusInput true "Status"
// @Success      200 {object} APIResponse[marketingapp.ContactResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/contacts/{id}/status [patch]
func (h *ContactHandler) SetStatus(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req marketingapp.UpdateContactStatusInput
	if !h.BindJSON(c, &req) {
		return
	}

	msg, err := h.contactService.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, msg)
}

// Delete godoc
// @ID           adminDeleteContact
// @Summary      Delete a contact message
// @Tags         admin-contacts
// @Param        id path string true "Message ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
