package support

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// TicketPriority represents the urgency of a ticket
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// IsValid checks if the priority is valid
func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// TicketStatus represents the lifecycle status of a ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketComment is a comment on a ticket
type TicketComment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;index" json:"ticket_id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM
func (TicketComment) TableName() string {
	return "ticket_comments"
}

// TicketAttachment is a file attached to a ticket. The file itself
// lives in object storage under StorageKey.
type TicketAttachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null;index" json:"ticket_id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType string    `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	StorageKey  string    `gorm:"type:varchar(500);not null" json:"storage_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the table name for GORM
func (TicketAttachment) TableName() string {
	return "ticket_attachments"
}

// MaxAttachmentSize caps uploads at 25 MiB
const MaxAttachmentSize = 25 << 20

// Ticket is the aggregate root for support requests
type Ticket struct {
	shared.TenantAggregateRoot
	Subject     string             `gorm:"type:varchar(200);not null"`
	Body        string             `gorm:"type:text"`
	Priority    TicketPriority     `gorm:"type:varchar(10);not null;default:'medium';index"`
	Status      TicketStatus       `gorm:"type:varchar(20);not null;default:'open';index"`
	RequesterID uuid.UUID          `gorm:"type:uuid;not null;index"`
	AssigneeID  *uuid.UUID         `gorm:"type:uuid;index"`
	ResolvedAt  *time.Time         `gorm:""`
	ClosedAt    *time.Time         `gorm:""`
	Comments    []TicketComment    `gorm:"foreignKey:TicketID"`
	Attachments []TicketAttachment `gorm:"foreignKey:TicketID"`
}

// TableName returns the table name for GORM
func (Ticket) TableName() string {
	return "tickets"
}

// NewTicket creates an open ticket
func NewTicket(tenantID, requesterID uuid.UUID, subject, body string, priority TicketPriority) (*Ticket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject must be between 1 and 200 characters")
	}
	if requesterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester ID cannot be empty")
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Priority must be low, medium, high, or urgent")
	}

	ticket := &Ticket{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Subject:             subject,
		Body:                body,
		Priority:            priority,
		Status:              TicketStatusOpen,
		RequesterID:         requesterID,
		Comments:            make([]TicketComment, 0),
		Attachments:         make([]TicketAttachment, 0),
	}

	ticket.AddDomainEvent(NewTicketCreatedEvent(ticket))

	return ticket, nil
}

// Update updates the ticket's subject, body and priority
func (t *Ticket) Update(subject, body string, priority TicketPriority) error {
	if t.Status == TicketStatusClosed {
		return shared.NewDomainError("TICKET_CLOSED", "Closed tickets cannot be edited")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" || len(subject) > 200 {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject must be between 1 and 200 characters")
	}
	if !priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Priority must be low, medium, high, or urgent")
	}

	t.Subject = subject
	t.Body = body
	t.Priority = priority
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Assign assigns the ticket to an agent and moves it in progress
func (t *Ticket) Assign(assigneeID uuid.UUID) error {
	if t.Status == TicketStatusClosed {
		return shared.NewDomainError("TICKET_CLOSED", "Closed tickets cannot be assigned")
	}
	if assigneeID == uuid.Nil {
		return shared.NewDomainError("INVALID_ASSIGNEE", "Assignee ID cannot be empty")
	}

	t.AssigneeID = &assigneeID
	if t.Status == TicketStatusOpen {
		t.Status = TicketStatusInProgress
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTicketAssignedEvent(t, assigneeID))

	return nil
}

// AddComment appends a comment to the ticket
func (t *Ticket) AddComment(authorID uuid.UUID, body string) (*TicketComment, error) {
	if t.Status == TicketStatusClosed {
		return nil, shared.NewDomainError("TICKET_CLOSED", "Closed tickets cannot be commented on")
	}
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author ID cannot be empty")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("EMPTY_COMMENT", "Comment body cannot be empty")
	}

	comment := TicketComment{
		ID:        uuid.New(),
		TicketID:  t.ID,
		TenantID:  t.TenantID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}

	t.Comments = append(t.Comments, comment)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return &t.Comments[len(t.Comments)-1], nil
}

// AddAttachment records a file stored in object storage
func (t *Ticket) AddAttachment(uploadedBy uuid.UUID, fileName, contentType string, sizeBytes int64, storageKey string) (*TicketAttachment, error) {
	if t.Status == TicketStatusClosed {
		return nil, shared.NewDomainError("TICKET_CLOSED", "Closed tickets cannot take attachments")
	}
	if uploadedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UPLOADER", "Uploader ID cannot be empty")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" || len(fileName) > 255 {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name must be between 1 and 255 characters")
	}
	if sizeBytes <= 0 || sizeBytes > MaxAttachmentSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "Attachment must be between 1 byte and 25 MiB")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	attachment := TicketAttachment{
		ID:          uuid.New(),
		TicketID:    t.ID,
		TenantID:    t.TenantID,
		UploadedBy:  uploadedBy,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		StorageKey:  storageKey,
		CreatedAt:   time.Now(),
	}

	t.Attachments = append(t.Attachments, attachment)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return &t.Attachments[len(t.Attachments)-1], nil
}

// FindAttachment returns the attachment with the given ID, or nil
func (t *Ticket) FindAttachment(attachmentID uuid.UUID) *TicketAttachment {
	for i := range t.Attachments {
		if t.Attachments[i].ID == attachmentID {
			return &t.Attachments[i]
		}
	}
	return nil
}

// Resolve marks the ticket resolved
func (t *Ticket) Resolve() error {
	switch t.Status {
	case TicketStatusOpen, TicketStatusInProgress:
	default:
		return shared.NewDomainError("INVALID_STATE", "Only open or in-progress tickets can be resolved")
	}

	now := time.Now()
	t.Status = TicketStatusResolved
	t.ResolvedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTicketStatusChangedEvent(t, TicketStatusResolved))

	return nil
}

// Reopen returns a resolved ticket to in progress
func (t *Ticket) Reopen() error {
	if t.Status != TicketStatusResolved {
		return shared.NewDomainError("INVALID_STATE", "Only resolved tickets can be reopened")
	}

	t.Status = TicketStatusInProgress
	t.ResolvedAt = nil
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTicketStatusChangedEvent(t, TicketStatusInProgress))

	return nil
}

// Close closes a resolved ticket
func (t *Ticket) Close() error {
	if t.Status != TicketStatusResolved {
		return shared.NewDomainError("INVALID_STATE", "Only resolved tickets can be closed")
	}

	now := time.Now()
	t.Status = TicketStatusClosed
	t.ClosedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTicketStatusChangedEvent(t, TicketStatusClosed))

	return nil
}
