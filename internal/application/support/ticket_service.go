package support

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/support"
)

// AllowedAttachmentTypes whitelists content types for ticket uploads.
// SVG is excluded because it can carry scripts.
var AllowedAttachmentTypes = map[string]bool{
	// Images
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	// Documents
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	// Text
	"text/plain": true,
	"text/csv":   true,
	// Archives
	"application/zip": true,
}

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer (S3-compatible backends).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// TicketServiceConfig holds configuration for the ticket service
type TicketServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultTicketServiceConfig returns the default configuration
func DefaultTicketServiceConfig() TicketServiceConfig {
	return TicketServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// TicketService handles support ticket operations
type TicketService struct {
	ticketRepo support.TicketRepository
	storage    ObjectStorageService
	outboxRepo shared.OutboxRepository
	config     TicketServiceConfig
	logger     *zap.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(ticketRepo support.TicketRepository, storage ObjectStorageService, outboxRepo shared.OutboxRepository, logger *zap.Logger) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		storage:    storage,
		outboxRepo: outboxRepo,
		config:     DefaultTicketServiceConfig(),
		logger:     logger,
	}
}

// SetConfig sets the service configuration
func (s *TicketService) SetConfig(config TicketServiceConfig) {
	s.config = config
}

// CreateTicketInput contains input for opening a ticket
type CreateTicketInput struct {
	TenantID    uuid.UUID
	RequesterID uuid.UUID
	Subject     string
	Body        string
	Priority    string
}

// UpdateTicketInput contains input for editing a ticket
type UpdateTicketInput struct {
	TenantID uuid.UUID
	ID       uuid.UUID
	Subject  *string
	Body     *string
	Priority *string
}

// AddCommentInput contains input for commenting on a ticket
type AddCommentInput struct {
	TenantID uuid.UUID
	TicketID uuid.UUID
	AuthorID uuid.UUID
	Body     string
}

// InitiateAttachmentInput contains input for requesting an attachment upload
type InitiateAttachmentInput struct {
	TenantID    uuid.UUID
	TicketID    uuid.UUID
	UploadedBy  uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
}

// InitiateAttachmentResult carries the presigned upload URL for the client
type InitiateAttachmentResult struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmAttachmentInput contains input for confirming a completed upload
type ConfirmAttachmentInput struct {
	TenantID    uuid.UUID
	TicketID    uuid.UUID
	UploadedBy  uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
	StorageKey  string
}

// CommentDTO represents a ticket comment in responses
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentDTO represents a ticket attachment in responses
type AttachmentDTO struct {
	ID          uuid.UUID `json:"id"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// TicketDTO represents a ticket in responses
type TicketDTO struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body,omitempty"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	RequesterID uuid.UUID       `json:"requester_id"`
	AssigneeID  *uuid.UUID      `json:"assignee_id,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
	Comments    []CommentDTO    `json:"comments"`
	Attachments []AttachmentDTO `json:"attachments"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TicketFilter represents filter for querying tickets
type TicketFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	Priority    string
	RequesterID *uuid.UUID
	AssigneeID  *uuid.UUID
}

// TicketListResult represents a paginated ticket list
type TicketListResult struct {
	Tickets    []TicketDTO `json:"tickets"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Create opens a new support ticket
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*TicketDTO, error) {
	s.logger.Info("Creating ticket",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("requester_id", input.RequesterID.String()))

	priority := support.TicketPriority(input.Priority)
	if priority == "" {
		priority = support.TicketPriorityMedium
	}

	ticket, err := support.NewTicket(input.TenantID, input.RequesterID, input.Subject, input.Body, priority)
	if err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Save(ctx, ticket); err != nil {
		s.logger.Error("Failed to save ticket", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save ticket")
	}

	if err := s.publishEvents(ctx, ticket); err != nil {
		s.logger.Error("Failed to publish ticket events", zap.Error(err))
	}

	s.logger.Info("Ticket created",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("priority", string(ticket.Priority)))

	return toTicketDTO(ticket), nil
}

// GetByID retrieves a ticket by ID within a tenant
func (s *TicketService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.findTicket(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toTicketDTO(ticket), nil
}

// List retrieves a paginated list of tickets
func (s *TicketService) List(ctx context.Context, tenantID uuid.UUID, filter TicketFilter) (*TicketListResult, error) {
	sharedFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		sharedFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		sharedFilter.PageSize = filter.PageSize
	}
	sharedFilter.Search = filter.Keyword
	if filter.Status != "" {
		sharedFilter.Filters["status"] = filter.Status
	}
	if filter.Priority != "" {
		sharedFilter.Filters["priority"] = filter.Priority
	}
	if filter.RequesterID != nil {
		sharedFilter.Filters["requester_id"] = *filter.RequesterID
	}
	if filter.AssigneeID != nil {
		sharedFilter.Filters["assignee_id"] = *filter.AssigneeID
	}

	tickets, err := s.ticketRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list tickets", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list tickets")
	}

	total, err := s.ticketRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count tickets", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count tickets")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]TicketDTO, len(tickets))
	for i := range tickets {
		dtos[i] = *toTicketDTO(&tickets[i])
	}

	return &TicketListResult{
		Tickets:    dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update edits a ticket's subject, body, or priority
func (s *TicketService) Update(ctx context.Context, input UpdateTicketInput) (*TicketDTO, error) {
	ticket, err := s.findTicket(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	subject := ticket.Subject
	body := ticket.Body
	priority := ticket.Priority
	if input.Subject != nil {
		subject = *input.Subject
	}
	if input.Body != nil {
		body = *input.Body
	}
	if input.Priority != nil {
		priority = support.TicketPriority(*input.Priority)
	}

	if err := ticket.Update(subject, body, priority); err != nil {
		return nil, err
	}

	return s.saveTicket(ctx, ticket, "updated")
}

// Assign assigns a ticket to an agent
func (s *TicketService) Assign(ctx context.Context, tenantID, id, assigneeID uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.findTicket(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := ticket.Assign(assigneeID); err != nil {
		return nil, err
	}

	return s.saveTicket(ctx, ticket, "assigned")
}

// AddComment appends a comment to a ticket
func (s *TicketService) AddComment(ctx context.Context, input AddCommentInput) (*TicketDTO, error) {
	ticket, err := s.findTicket(ctx, input.TenantID, input.TicketID)
	if err != nil {
		return nil, err
	}

	if _, err := ticket.AddComment(input.AuthorID, input.Body); err != nil {
		return nil, err
	}

	return s.saveTicket(ctx, ticket, "commented")
}

// Resolve marks a ticket resolved
func (s *TicketService) Resolve(ctx context.Context, tenantID, id uuid.UUID) (*TicketDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*support.Ticket).Resolve, "resolved")
}

// Reopen returns a resolved ticket to in progress
func (s *TicketService) Reopen(ctx context.Context, tenantID, id uuid.UUID) (*TicketDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*support.Ticket).Reopen, "reopened")
}

// Close closes a resolved ticket
func (s *TicketService) Close(ctx context.Context, tenantID, id uuid.UUID) (*TicketDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*support.Ticket).Close, "closed")
}

// InitiateAttachmentUpload validates the upload and returns a presigned
// URL the client PUTs the file to. The attachment is recorded on the
// ticket only after ConfirmAttachmentUpload.
func (s *TicketService) InitiateAttachmentUpload(ctx context.Context, input InitiateAttachmentInput) (*InitiateAttachmentResult, error) {
	ticket, err := s.findTicket(ctx, input.TenantID, input.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == support.TicketStatusClosed {
		return nil, shared.NewDomainError("TICKET_CLOSED", "Closed tickets cannot take attachments")
	}
	if !AllowedAttachmentTypes[input.ContentType] {
		return nil, shared.NewDomainError("CONTENT_TYPE_NOT_ALLOWED",
			fmt.Sprintf("Content type '%s' is not allowed", input.ContentType))
	}
	if input.SizeBytes <= 0 || input.SizeBytes > support.MaxAttachmentSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "Attachment must be between 1 byte and 25 MiB")
	}

	storageKey := s.generateStorageKey(input.TenantID, input.TicketID, input.FileName)

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, input.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate upload URL", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate upload URL")
	}

	return &InitiateAttachmentResult{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmAttachmentUpload records an uploaded file on the ticket after
// verifying the object actually exists in storage.
func (s *TicketService) ConfirmAttachmentUpload(ctx context.Context, input ConfirmAttachmentInput) (*TicketDTO, error) {
	ticket, err := s.findTicket(ctx, input.TenantID, input.TicketID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, input.StorageKey)
	if err != nil {
		s.logger.Error("Failed to check uploaded object", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to verify uploaded file")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "Uploaded file was not found in storage")
	}

	if _, err := ticket.AddAttachment(input.UploadedBy, input.FileName, input.ContentType, input.SizeBytes, input.StorageKey); err != nil {
		return nil, err
	}

	return s.saveTicket(ctx, ticket, "attachment added")
}

// GetAttachmentDownloadURL returns a presigned download URL for an attachment
func (s *TicketService) GetAttachmentDownloadURL(ctx context.Context, tenantID, ticketID, attachmentID uuid.UUID) (string, error) {
	ticket, err := s.findTicket(ctx, tenantID, ticketID)
	if err != nil {
		return "", err
	}

	attachment := ticket.FindAttachment(attachmentID)
	if attachment == nil {
		return "", shared.NewDomainError("ATTACHMENT_NOT_FOUND", "Attachment not found")
	}

	url, _, err := s.storage.GenerateDownloadURL(ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate download URL", zap.Error(err))
		return "", shared.NewDomainError("INTERNAL_ERROR", "Failed to generate download URL")
	}

	return url, nil
}

// Delete removes a closed ticket and its stored attachments
func (s *TicketService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	ticket, err := s.findTicket(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if ticket.Status != support.TicketStatusClosed {
		return shared.NewDomainError("TICKET_NOT_CLOSED", "Only closed tickets can be deleted")
	}

	for _, attachment := range ticket.Attachments {
		if err := s.storage.DeleteObject(ctx, attachment.StorageKey); err != nil {
			s.logger.Warn("Failed to delete attachment object",
				zap.String("storage_key", attachment.StorageKey),
				zap.Error(err))
		}
	}

	if err := s.ticketRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete ticket", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete ticket")
	}

	s.logger.Info("Ticket deleted", zap.String("ticket_id", id.String()))

	return nil
}

func (s *TicketService) changeStatus(ctx context.Context, tenantID, id uuid.UUID, change func(*support.Ticket) error, action string) (*TicketDTO, error) {
	ticket, err := s.findTicket(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := change(ticket); err != nil {
		return nil, err
	}

	return s.saveTicket(ctx, ticket, action)
}

func (s *TicketService) saveTicket(ctx context.Context, ticket *support.Ticket, action string) (*TicketDTO, error) {
	if err := s.ticketRepo.Save(ctx, ticket); err != nil {
		s.logger.Error("Failed to save ticket", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save ticket")
	}

	if err := s.publishEvents(ctx, ticket); err != nil {
		s.logger.Error("Failed to publish ticket events", zap.Error(err))
	}

	s.logger.Info("Ticket "+action,
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("status", string(ticket.Status)))

	return toTicketDTO(ticket), nil
}

func (s *TicketService) findTicket(ctx context.Context, tenantID, id uuid.UUID) (*support.Ticket, error) {
	ticket, err := s.ticketRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TICKET_NOT_FOUND", "Ticket not found")
		}
		s.logger.Error("Failed to find ticket", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find ticket")
	}
	return ticket, nil
}

// generateStorageKey builds a unique storage key preserving the file extension
func (s *TicketService) generateStorageKey(tenantID, ticketID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("tenants/%s/tickets/%s/attachments/%s%s",
		tenantID, ticketID, uuid.New(), ext)
}

func (s *TicketService) publishEvents(ctx context.Context, ticket *support.Ticket) error {
	events := ticket.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}
		entries = append(entries, shared.NewOutboxEntry(ticket.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	ticket.ClearDomainEvents()
	return nil
}

// toTicketDTO converts a domain Ticket to TicketDTO
func toTicketDTO(ticket *support.Ticket) *TicketDTO {
	comments := make([]CommentDTO, len(ticket.Comments))
	for i, comment := range ticket.Comments {
		comments[i] = CommentDTO{
			ID:        comment.ID,
			AuthorID:  comment.AuthorID,
			Body:      comment.Body,
			CreatedAt: comment.CreatedAt,
		}
	}

	attachments := make([]AttachmentDTO, len(ticket.Attachments))
	for i, attachment := range ticket.Attachments {
		attachments[i] = AttachmentDTO{
			ID:          attachment.ID,
			UploadedBy:  attachment.UploadedBy,
			FileName:    attachment.FileName,
			ContentType: attachment.ContentType,
			SizeBytes:   attachment.SizeBytes,
			CreatedAt:   attachment.CreatedAt,
		}
	}

	return &TicketDTO{
		ID:          ticket.ID,
		TenantID:    ticket.TenantID,
		Subject:     ticket.Subject,
		Body:        ticket.Body,
		Priority:    string(ticket.Priority),
		Status:      string(ticket.Status),
		RequesterID: ticket.RequesterID,
		AssigneeID:  ticket.AssigneeID,
		ResolvedAt:  ticket.ResolvedAt,
		ClosedAt:    ticket.ClosedAt,
		Comments:    comments,
		Attachments: attachments,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
