package support

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopledesk/backend/internal/domain/shared"
)

func newTestTicket(t *testing.T) *Ticket {
	t.Helper()
	ticket, err := NewTicket(uuid.New(), uuid.New(), "Printer on fire", "It is very much on fire.", TicketPriorityUrgent)
	require.NoError(t, err)
	return ticket
}

func TestNewTicket(t *testing.T) {
	ticket := newTestTicket(t)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.AssigneeID)
	assert.Len(t, ticket.GetDomainEvents(), 1)

	tenantID := uuid.New()
	requesterID := uuid.New()
	_, err := NewTicket(tenantID, requesterID, "", "", TicketPriorityLow)
	assert.Error(t, err)
	_, err = NewTicket(tenantID, uuid.Nil, "Subject", "", TicketPriorityLow)
	assert.Error(t, err)
	_, err = NewTicket(tenantID, requesterID, "Subject", "", TicketPriority("critical"))
	assert.Error(t, err)
}

func TestTicketAssign(t *testing.T) {
	ticket := newTestTicket(t)
	agent := uuid.New()

	assert.Error(t, ticket.Assign(uuid.Nil))

	require.NoError(t, ticket.Assign(agent))
	assert.Equal(t, TicketStatusInProgress, ticket.Status)
	require.NotNil(t, ticket.AssigneeID)
	assert.Equal(t, agent, *ticket.AssigneeID)

	// Reassignment keeps the status
	require.NoError(t, ticket.Assign(uuid.New()))
	assert.Equal(t, TicketStatusInProgress, ticket.Status)
}

func TestTicketLifecycle(t *testing.T) {
	ticket := newTestTicket(t)

	assert.Error(t, ticket.Close())
	assert.Error(t, ticket.Reopen())

	require.NoError(t, ticket.Resolve())
	assert.Equal(t, TicketStatusResolved, ticket.Status)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Error(t, ticket.Resolve())

	require.NoError(t, ticket.Reopen())
	assert.Equal(t, TicketStatusInProgress, ticket.Status)
	assert.Nil(t, ticket.ResolvedAt)

	require.NoError(t, ticket.Resolve())
	require.NoError(t, ticket.Close())
	assert.Equal(t, TicketStatusClosed, ticket.Status)
	require.NotNil(t, ticket.ClosedAt)

	// Closed tickets are frozen
	assert.Error(t, ticket.Update("New subject", "", TicketPriorityLow))
	assert.Error(t, ticket.Assign(uuid.New()))
	_, err := ticket.AddComment(uuid.New(), "hello?")
	assert.Error(t, err)
	_, err = ticket.AddAttachment(uuid.New(), "log.txt", "text/plain", 10, "tickets/x/log.txt")
	assert.Error(t, err)
}

func TestTicketComments(t *testing.T) {
	ticket := newTestTicket(t)
	author := uuid.New()

	comment, err := ticket.AddComment(author, "  Looking into it.  ")
	require.NoError(t, err)
	assert.Equal(t, "Looking into it.", comment.Body)
	assert.Equal(t, author, comment.AuthorID)
	assert.Len(t, ticket.Comments, 1)

	_, err = ticket.AddComment(uuid.Nil, "hi")
	assert.Error(t, err)
	_, err = ticket.AddComment(author, "   ")
	assert.Error(t, err)
}

func TestTicketAttachments(t *testing.T) {
	ticket := newTestTicket(t)
	uploader := uuid.New()

	att, err := ticket.AddAttachment(uploader, "screenshot.png", "image/png", 2048, "tickets/abc/screenshot.png")
	require.NoError(t, err)
	assert.Equal(t, int64(2048), att.SizeBytes)
	assert.Equal(t, att, ticket.FindAttachment(att.ID))
	assert.Nil(t, ticket.FindAttachment(uuid.New()))

	tests := []struct {
		name     string
		fileName string
		size     int64
		key      string
		wantCode string
	}{
		{"empty name", "", 10, "k", "INVALID_FILE_NAME"},
		{"zero size", "f.txt", 0, "k", "INVALID_FILE_SIZE"},
		{"too large", "f.txt", MaxAttachmentSize + 1, "k", "INVALID_FILE_SIZE"},
		{"empty key", "f.txt", 10, "", "INVALID_STORAGE_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ticket.AddAttachment(uploader, tt.fileName, "", tt.size, tt.key)
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.wantCode, de.Code)
		})
	}
}
