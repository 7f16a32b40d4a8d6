package support

import (
	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTicket = "Ticket"

// Event type constants
const (
	EventTypeTicketCreated       = "TicketCreated"
	EventTypeTicketAssigned      = "TicketAssigned"
	EventTypeTicketStatusChanged = "TicketStatusChanged"
)

// TicketCreatedEvent is published when a ticket is created
type TicketCreatedEvent struct {
	shared.BaseDomainEvent
	Subject     string         `json:"subject"`
	Priority    TicketPriority `json:"priority"`
	RequesterID uuid.UUID      `json:"requester_id"`
}

// NewTicketCreatedEvent creates a new TicketCreatedEvent
func NewTicketCreatedEvent(ticket *Ticket) *TicketCreatedEvent {
	return &TicketCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketCreated, AggregateTypeTicket, ticket.ID, ticket.TenantID),
		Subject:         ticket.Subject,
		Priority:        ticket.Priority,
		RequesterID:     ticket.RequesterID,
	}
}

// TicketAssignedEvent is published when a ticket is assigned
type TicketAssignedEvent struct {
	shared.BaseDomainEvent
	Subject    string    `json:"subject"`
	AssigneeID uuid.UUID `json:"assignee_id"`
}

// NewTicketAssignedEvent creates a new TicketAssignedEvent
func NewTicketAssignedEvent(ticket *Ticket, assigneeID uuid.UUID) *TicketAssignedEvent {
	return &TicketAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketAssigned, AggregateTypeTicket, ticket.ID, ticket.TenantID),
		Subject:         ticket.Subject,
		AssigneeID:      assigneeID,
	}
}

// TicketStatusChangedEvent is published on resolve, reopen and close
type TicketStatusChangedEvent struct {
	shared.BaseDomainEvent
	Subject   string       `json:"subject"`
	NewStatus TicketStatus `json:"new_status"`
}

// NewTicketStatusChangedEvent creates a new TicketStatusChangedEvent
func NewTicketStatusChangedEvent(ticket *Ticket, newStatus TicketStatus) *TicketStatusChangedEvent {
	return &TicketStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketStatusChanged, AggregateTypeTicket, ticket.ID, ticket.TenantID),
		Subject:         ticket.Subject,
		NewStatus:       newStatus,
	}
}
