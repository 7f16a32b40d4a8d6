package support

import (
	"context"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// TicketRepository defines the interface for ticket persistence
type TicketRepository interface {
	// FindByID finds a ticket by ID with comments and attachments
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)

	// FindByIDForTenant finds a ticket by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Ticket, error)

	// FindAllForTenant finds tickets for a tenant matching the filter.
	// Filter supports "status", "priority", "requester_id" and
	// "assignee_id" keys plus a search keyword over the subject.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Ticket, error)

	// Save creates or updates a ticket with comments and attachments
	Save(ctx context.Context, ticket *Ticket) error

	// Delete deletes a ticket
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts tickets for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
