package support

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/support"
)

func testTicket(t *testing.T, tenantID uuid.UUID) *support.Ticket {
	t.Helper()
	ticket, err := support.NewTicket(tenantID, uuid.New(), "Printer on fire", "The office printer is on fire", support.TicketPriorityHigh)
	require.NoError(t, err)
	ticket.ClearDomainEvents()
	return ticket
}

func newTicketService(ticketRepo *MockTicketRepository, storage *MockObjectStorage, outboxRepo *MockOutboxRepository) *TicketService {
	return NewTicketService(ticketRepo, storage, outboxRepo, zap.NewNop())
}

func TestTicketService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ticketRepo := new(MockTicketRepository)
	storage := new(MockObjectStorage)
	outboxRepo := new(MockOutboxRepository)

	ticketRepo.On("Save", ctx, mock.Anything).Return(nil)
	outboxRepo.On("Save", ctx, mock.Anything).Return(nil)

	svc := newTicketService(ticketRepo, storage, outboxRepo)

	dto, err := svc.Create(ctx, CreateTicketInput{
		TenantID:    tenantID,
		RequesterID: uuid.New(),
		Subject:     "Cannot log in",
		Body:        "Password reset email never arrives",
	})

	require.NoError(t, err)
	assert.Equal(t, "Cannot log in", dto.Subject)
	assert.Equal(t, "medium", dto.Priority)
	assert.Equal(t, "open", dto.Status)

	ticketRepo.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestTicketService_AddComment_ClosedTicket(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ticketRepo := new(MockTicketRepository)
	storage := new(MockObjectStorage)
	outboxRepo := new(MockOutboxRepository)

	ticket := testTicket(t, tenantID)
	require.NoError(t, ticket.Resolve())
	require.NoError(t, ticket.Close())
	ticket.ClearDomainEvents()

	ticketRepo.On("FindByIDForTenant", ctx, tenantID, ticket.ID).Return(ticket, nil)

	svc := newTicketService(ticketRepo, storage, outboxRepo)

	_, err := svc.AddComment(ctx, AddCommentInput{
		TenantID: tenantID,
		TicketID: ticket.ID,
		AuthorID: uuid.New(),
		Body:     "Any update?",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "TICKET_CLOSED", domainErr.Code)
	ticketRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTicketService_InitiateAttachmentUpload(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ticketRepo := new(MockTicketRepository)
	storage := new(MockObjectStorage)
	outboxRepo := new(MockOutboxRepository)

	ticket := testTicket(t, tenantID)

	ticketRepo.On("FindByIDForTenant", ctx, tenantID, ticket.ID).Return(ticket, nil)
	expiresAt := time.Now().Add(15 * time.Minute)
	storage.On("GenerateUploadURL", ctx, mock.Anything, "image/png", 15*time.Minute).
		Return("https://storage.example.com/put", expiresAt, nil)

	svc := newTicketService(ticketRepo, storage, outboxRepo)

	result, err := svc.InitiateAttachmentUpload(ctx, InitiateAttachmentInput{
		TenantID:    tenantID,
		TicketID:    ticket.ID,
		UploadedBy:  uuid.New(),
		FileName:    "screenshot.png",
		ContentType: "image/png",
		SizeBytes:   1024,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/put", result.UploadURL)
	assert.True(t, strings.HasPrefix(result.StorageKey, "tenants/"+tenantID.String()+"/tickets/"))
	assert.True(t, strings.HasSuffix(result.StorageKey, ".png"))
}

func TestTicketService_InitiateAttachmentUpload_DisallowedType(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ticketRepo := new(MockTicketRepository)
	storage := new(MockObjectStorage)
	outboxRepo := new(MockOutboxRepository)

	ticket := testTicket(t, tenantID)

	ticketRepo.On("FindByIDForTenant", ctx, tenantID, ticket.ID).Return(ticket, nil)

	svc := newTicketService(ticketRepo, storage, outboxRepo)

	_, err := svc.InitiateAttachmentUpload(ctx, InitiateAttachmentInput{
		TenantID:    tenantID,
		TicketID:    ticket.ID,
		UploadedBy:  uuid.New(),
		FileName:    "payload.svg",
		ContentType: "image/svg+xml",
		SizeBytes:   1024,
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONTENT_TYPE_NOT_ALLOWED", domainErr.Code)
	storage.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTicketService_ConfirmAttachmentUpload(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ticketRepo := new(MockTicketRepository)
	storage := new(MockObjectStorage)
	outboxRepo := new(MockOutboxRepository)

	ticket := testTicket(t, tenantID)
	storageKey := "tenants/" + tenantID.String() + "/tickets/" + ticket.ID.String() + "/attachments/abc.png"

	ticketRepo.On("FindByIDForTenant", ctx, tenantID, ticket.ID).Return(ticket, nil)
	storage.On("ObjectExists", ctx, storageKey).Return(true, nil)
	ticketRepo.On("Save", ctx, mock.Anything).Return(nil)

	svc := newTicketService(ticketRepo, storage, outboxRepo)

	dto, err := svc.ConfirmAttachmentUpload(ctx, ConfirmAttachmentInput{
		TenantID:    tenantID,
		TicketID:    ticket.ID,
		UploadedBy:  uuid.New(),
		FileName:    "screenshot.png",
		ContentType: "image/png",
		SizeBytes:   1024,
		StorageKey:  storageKey,
	})

	require.NoError(t, err)
	require.Len(t, dto.Attachments, 1)
	assert.Equal(t, "screenshot.png", dto.Attachments[0].FileName)
	ticketRepo.AssertExpectations(t)
}

func TestTicketService_ConfirmAttachmentUpload_MissingObject(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ticketRepo := new(MockTicketRepository)
	storage := new(MockObjectStorage)
	outboxRepo := new(MockOutboxRepository)

	ticket := testTicket(t, tenantID)

	ticketRepo.On("FindByIDForTenant", ctx, tenantID, ticket.ID).Return(ticket, nil)
	storage.On("ObjectExists", ctx, mock.Anything).Return(false, nil)

	svc := newTicketService(ticketRepo, storage, outboxRepo)

	_, err := svc.ConfirmAttachmentUpload(ctx, ConfirmAttachmentInput{
		TenantID:    tenantID,
		TicketID:    ticket.ID,
		UploadedBy:  uuid.New(),
		FileName:    "screenshot.png",
		ContentType: "image/png",
		SizeBytes:   1024,
		StorageKey:  "tenants/x/tickets/y/attachments/z.png",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UPLOAD_NOT_FOUND", domainErr.Code)
	ticketRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTicketService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	ticketRepo := new(MockTicketRepository)
	storage := new(MockObjectStorage)
	outboxRepo := new(MockOutboxRepository)

	ticket := testTicket(t, tenantID)

	ticketRepo.On("FindByIDForTenant", ctx, tenantID, ticket.ID).Return(ticket, nil)
	ticketRepo.On("Save", ctx, mock.Anything).Return(nil)
	outboxRepo.On("Save", ctx, mock.Anything).Return(nil)

	svc := newTicketService(ticketRepo, storage, outboxRepo)

	agentID := uuid.New()
	dto, err := svc.Assign(ctx, tenantID, ticket.ID, agentID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", dto.Status)

	dto, err = svc.Resolve(ctx, tenantID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "resolved", dto.Status)
	require.NotNil(t, dto.ResolvedAt)

	dto, err = svc.Close(ctx, tenantID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", dto.Status)
	require.NotNil(t, dto.ClosedAt)
}
