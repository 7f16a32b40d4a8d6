package handler

import (
	"context"

	supportapp "github.com/peopledesk/backend/internal/application/support"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TicketHandler handles support ticket API endpoints
type TicketHandler struct {
	BaseHandler
	ticketService *supportapp.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService *supportapp.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
	}
}

// CreateTicketRequest represents a request to open a ticket
// @Description Request body for opening a support ticket
type CreateTicketRequest struct {
	Subject  string `json:"subject" binding:"required,min=1,max=200" example:"Laptop will not boot"`
	Body     string `json:"body" binding:"max=5000" example:"Black screen after the 14.6.1 update."`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high urgent" example:"high"`
}

// UpdateTicketRequest represents a request to edit a ticket
// @Description Request body for editing a ticket
type UpdateTicketRequest struct {
	Subject  *string `json:"subject" binding:"omitempty,min=1,max=200" example:"Laptop will not boot after update"`
	Body     *string `json:"body" binding:"omitempty,max=5000"`
	Priority *string `json:"priority" binding:"omitempty,oneof=low medium high urgent" example:"urgent"`
}

// AssignTicketRequest represents a request to assign a ticket
// @Description Request body for assigning a ticket to an agent
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// AddCommentRequest represents a request to comment on a ticket
// @Description Request body for adding a ticket comment
type AddCommentRequest struct {
	Body string `json:"body" binding:"required,min=1,max=5000" example:"Tried safe mode, same result."`
}

// InitiateAttachmentRequest represents a request for an attachment upload URL
// @Description Request body for initiating an attachment upload
type InitiateAttachmentRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255" example:"boot-error.png"`
	ContentType string `json:"content_type" binding:"max=100" example:"image/png"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,gt=0" example:"482133"`
}

// ConfirmAttachmentRequest represents a request to confirm a completed upload
// @Description Request body for confirming an attachment upload
type ConfirmAttachmentRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255" example:"boot-error.png"`
	ContentType string `json:"content_type" binding:"max=100" example:"image/png"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,gt=0" example:"482133"`
	StorageKey  string `json:"storage_key" binding:"required,min=1,max=500"`
}

// AttachmentDownloadResponse carries a presigned download URL
// @Description Presigned download URL for a ticket attachment
type AttachmentDownloadResponse struct {
	DownloadURL string `json:"download_url"`
}

// Create godoc
// @ID           createTicket
// @Summary      Open a ticket
// @Description  Open a new support ticket for the authenticated user
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateTicketRequest true "Ticket creation request"
// @Success      201 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), supportapp.CreateTicketInput{
		TenantID:    tenantID,
		RequesterID: requesterID,
		Subject:     req.Subject,
		Body:        req.Body,
		Priority:    req.Priority,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ticket)
}

// GetByID godoc
// @ID           getTicketById
// @Summary      Get ticket by ID
// @Description  Retrieve a ticket with its comments and attachments
// @Tags         tickets
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id} [get]
func (h *TicketHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	ticket, err := h.ticketService.GetByID(c.Request.Context(), tenantID, ticketID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// List godoc
// @ID           listTickets
// @Summary      List tickets
// @Description  Retrieve a paginated list of tickets with optional filtering
// @Tags         tickets
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        keyword query string false "Search term (subject)"
// @Param        status query string false "Status" Enums(open, in_progress, resolved, closed)
// @Param        priority query string false "Priority" Enums(low, medium, high, urgent)
// @Param        requester_id query string false "Requester ID" format(uuid)
// @Param        assignee_id query string false "Assignee ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[supportapp.TicketListResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := supportapp.TicketFilter{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if raw := c.Query("requester_id"); raw != "" {
		requesterID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid requester ID format")
			return
		}
		filter.RequesterID = &requesterID
	}
	if raw := c.Query("assignee_id"); raw != "" {
		assigneeID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid assignee ID format")
			return
		}
		filter.AssigneeID = &assigneeID
	}

	result, err := h.ticketService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Tickets, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateTicket
// @Summary      Update a ticket
// @Description  Edit a ticket's subject, body, or priority
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        request body UpdateTicketRequest true "Ticket update request"
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id} [put]
func (h *TicketHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Update(c.Request.Context(), supportapp.UpdateTicketInput{
		TenantID: tenantID,
		ID:       ticketID,
		Subject:  req.Subject,
		Body:     req.Body,
		Priority: req.Priority,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// Assign godoc
// @ID           assignTicket
// @Summary      Assign a ticket
// @Description  Assign a ticket to an agent and move it to in progress
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        request body AssignTicketRequest true "Assignment request"
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/assign [post]
func (h *TicketHandler) Assign(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	assigneeID, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		h.BadRequest(c, "Invalid assignee ID format")
		return
	}

	ticket, err := h.ticketService.Assign(c.Request.Context(), tenantID, ticketID, assigneeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// AddComment godoc
// @ID           addTicketComment
// @Summary      Comment on a ticket
// @Description  Add a comment to a ticket as the authenticated user
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        request body AddCommentRequest true "Comment"
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/comments [post]
func (h *TicketHandler) AddComment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	authorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.AddComment(c.Request.Context(), supportapp.AddCommentInput{
		TenantID: tenantID,
		TicketID: ticketID,
		AuthorID: authorID,
		Body:     req.Body,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// InitiateAttachment godoc
// @ID           initiateTicketAttachment
// @Summary      Initiate an attachment upload
// @Description  Request a presigned URL for uploading a ticket attachment
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        request body InitiateAttachmentRequest true "Attachment metadata"
// @Success      200 {object} APIResponse[supportapp.InitiateAttachmentResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/attachments/initiate [post]
func (h *TicketHandler) InitiateAttachment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	uploaderID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req InitiateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ticketService.InitiateAttachmentUpload(c.Request.Context(), supportapp.InitiateAttachmentInput{
		TenantID:    tenantID,
		TicketID:    ticketID,
		UploadedBy:  uploaderID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ConfirmAttachment godoc
// @ID           confirmTicketAttachment
// @Summary      Confirm an attachment upload
// @Description  Record an attachment after the client finishes uploading to storage
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        request body ConfirmAttachmentRequest true "Uploaded attachment"
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/attachments/confirm [post]
func (h *TicketHandler) ConfirmAttachment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	uploaderID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ConfirmAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.ConfirmAttachmentUpload(c.Request.Context(), supportapp.ConfirmAttachmentInput{
		TenantID:    tenantID,
		TicketID:    ticketID,
		UploadedBy:  uploaderID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		StorageKey:  req.StorageKey,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// DownloadAttachment godoc
// @ID           downloadTicketAttachment
// @Summary      Download an attachment
// @Description  Get a presigned download URL for a ticket attachment
// @Tags         tickets
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        attachmentId path string true "Attachment ID" format(uuid)
// @Success      200 {object} APIResponse[AttachmentDownloadResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/attachments/{attachmentId}/download [get]
func (h *TicketHandler) DownloadAttachment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID format")
		return
	}

	url, err := h.ticketService.GetAttachmentDownloadURL(c.Request.Context(), tenantID, ticketID, attachmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, AttachmentDownloadResponse{DownloadURL: url})
}

// Resolve godoc
// @ID           resolveTicket
// @Summary      Resolve a ticket
// @Description  Mark a ticket as resolved
// @Tags         tickets
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/resolve [post]
func (h *TicketHandler) Resolve(c *gin.Context) {
	h.changeStatus(c, h.ticketService.Resolve)
}

// Reopen godoc
// @ID           reopenTicket
// @Summary      Reopen a ticket
// @Description  Reopen a resolved or closed ticket
// @Tags         tickets
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/reopen [post]
func (h *TicketHandler) Reopen(c *gin.Context) {
	h.changeStatus(c, h.ticketService.Reopen)
}

// Close godoc
// @ID           closeTicket
// @Summary      Close a ticket
// @Description  Close a resolved ticket
// @Tags         tickets
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {object} APIResponse[supportapp.TicketDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id}/close [post]
func (h *TicketHandler) Close(c *gin.Context) {
	h.changeStatus(c, h.ticketService.Close)
}

// Delete godoc
// @ID           deleteTicket
// @Summary      Delete a ticket
// @Description  Delete a closed ticket with its comments and attachments
// @Tags         tickets
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /support/tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	if err := h.ticketService.Delete(c.Request.Context(), tenantID, ticketID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *TicketHandler) changeStatus(c *gin.Context, change func(ctx context.Context, tenantID, id uuid.UUID) (*supportapp.TicketDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	ticket, err := change(c.Request.Context(), tenantID, ticketID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}
