package crm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/crm"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// CustomerService handles customer management operations
type CustomerService struct {
	customerRepo crm.CustomerRepository
	outboxRepo   shared.OutboxRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo crm.CustomerRepository, outboxRepo shared.OutboxRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// CreateCustomerInput contains input for creating a customer
type CreateCustomerInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	Type        string
	ContactName string
	Phone       string
	Email       string
	Address     *AddressInput
	TaxID       string
	Notes       string
}

// UpdateCustomerInput contains input for updating a customer
type UpdateCustomerInput struct {
	TenantID    uuid.UUID
	ID          uuid.UUID
	Name        *string
	Type        *string
	ContactName *string
	Phone       *string
	Email       *string
	Address     *AddressInput
	TaxID       *string
	Notes       *string
}

// AddressInput contains input for a postal address
type AddressInput struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a AddressInput) toAddress() (valueobject.Address, error) {
	return valueobject.NewAddress(a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country)
}

// CustomerDTO represents a customer in responses
type CustomerDTO struct {
	ID          uuid.UUID           `json:"id"`
	TenantID    uuid.UUID           `json:"tenant_id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Type        string              `json:"type"`
	Status      string              `json:"status"`
	ContactName string              `json:"contact_name,omitempty"`
	Phone       string              `json:"phone,omitempty"`
	Email       string              `json:"email,omitempty"`
	Address     valueobject.Address `json:"address"`
	TaxID       string              `json:"tax_id,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CustomerFilter represents filter for querying customers
type CustomerFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
	Type     string
}

// CustomerListResult represents a paginated customer list
type CustomerListResult struct {
	Customers  []CustomerDTO `json:"customers"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	s.logger.Info("Creating customer",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("code", input.Code))

	exists, err := s.customerRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		s.logger.Error("Failed to check customer code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check code availability")
	}
	if exists {
		return nil, shared.NewDomainError("CODE_EXISTS", "Customer code already exists")
	}

	customer, err := crm.NewCustomer(input.TenantID, input.Code, input.Name, crm.CustomerType(input.Type))
	if err != nil {
		return nil, err
	}

	if input.ContactName != "" || input.Phone != "" || input.Email != "" {
		if err := customer.SetContact(input.ContactName, input.Phone, input.Email); err != nil {
			return nil, err
		}
	}
	if input.Address != nil {
		address, err := input.Address.toAddress()
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		customer.SetAddress(address)
	}
	if input.TaxID != "" {
		if err := customer.SetTaxID(input.TaxID); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		customer.SetNotes(input.Notes)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		s.logger.Error("Failed to save customer", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save customer")
	}

	if err := s.publishEvents(ctx, customer); err != nil {
		s.logger.Error("Failed to publish customer events", zap.Error(err))
	}

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("code", customer.Code))

	return toCustomerDTO(customer), nil
}

// GetByID retrieves a customer by ID within a tenant
func (s *CustomerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.findCustomer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toCustomerDTO(customer), nil
}

// GetByCode retrieves a customer by code within a tenant
func (s *CustomerService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*CustomerDTO, error) {
	customer, err := s.customerRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		s.logger.Error("Failed to find customer", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find customer")
	}
	return toCustomerDTO(customer), nil
}

// List retrieves a paginated list of customers
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) (*CustomerListResult, error) {
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
	if filter.Type != "" {
		sharedFilter.Filters["type"] = filter.Type
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list customers", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list customers")
	}

	total, err := s.customerRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count customers", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count customers")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = *toCustomerDTO(&customers[i])
	}

	return &CustomerListResult{
		Customers:  dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates a customer's information
func (s *CustomerService) Update(ctx context.Context, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.findCustomer(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil || input.Type != nil {
		name := customer.Name
		customerType := customer.Type
		if input.Name != nil {
			name = *input.Name
		}
		if input.Type != nil {
			customerType = crm.CustomerType(*input.Type)
		}
		if err := customer.Update(name, customerType); err != nil {
			return nil, err
		}
	}

	if input.ContactName != nil || input.Phone != nil || input.Email != nil {
		contactName := customer.ContactName
		phone := customer.Phone
		email := customer.Email
		if input.ContactName != nil {
			contactName = *input.ContactName
		}
		if input.Phone != nil {
			phone = *input.Phone
		}
		if input.Email != nil {
			email = *input.Email
		}
		if err := customer.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}

	if input.Address != nil {
		address, err := input.Address.toAddress()
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		customer.SetAddress(address)
	}

	if input.TaxID != nil {
		if err := customer.SetTaxID(*input.TaxID); err != nil {
			return nil, err
		}
	}

	if input.Notes != nil {
		customer.SetNotes(*input.Notes)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		s.logger.Error("Failed to update customer", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update customer")
	}

	if err := s.publishEvents(ctx, customer); err != nil {
		s.logger.Error("Failed to publish customer events", zap.Error(err))
	}

	s.logger.Info("Customer updated", zap.String("customer_id", input.ID.String()))

	return toCustomerDTO(customer), nil
}

// Activate reactivates a customer
func (s *CustomerService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*CustomerDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*crm.Customer).Activate, "activate")
}

// Deactivate deactivates a customer
func (s *CustomerService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*CustomerDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*crm.Customer).Deactivate, "deactivate")
}

// Suspend suspends a customer from new transactions
func (s *CustomerService) Suspend(ctx context.Context, tenantID, id uuid.UUID) (*CustomerDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*crm.Customer).Suspend, "suspend")
}

// Delete deletes a customer
func (s *CustomerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	customer, err := s.findCustomer(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if customer.IsActive() {
		return shared.NewDomainError("CUSTOMER_ACTIVE", "Active customers cannot be deleted")
	}

	customer.AddDomainEvent(crm.NewCustomerDeletedEvent(customer))

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete customer", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete customer")
	}

	if err := s.publishEvents(ctx, customer); err != nil {
		s.logger.Error("Failed to publish customer events", zap.Error(err))
	}

	s.logger.Info("Customer deleted",
		zap.String("customer_id", id.String()),
		zap.String("code", customer.Code))

	return nil
}

func (s *CustomerService) changeStatus(ctx context.Context, tenantID, id uuid.UUID, change func(*crm.Customer) error, action string) (*CustomerDTO, error) {
	customer, err := s.findCustomer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := change(customer); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		s.logger.Error("Failed to "+action+" customer", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save customer")
	}

	if err := s.publishEvents(ctx, customer); err != nil {
		s.logger.Error("Failed to publish customer events", zap.Error(err))
	}

	s.logger.Info("Customer status changed",
		zap.String("customer_id", id.String()),
		zap.String("status", string(customer.Status)))

	return toCustomerDTO(customer), nil
}

func (s *CustomerService) findCustomer(ctx context.Context, tenantID, id uuid.UUID) (*crm.Customer, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		s.logger.Error("Failed to find customer", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find customer")
	}
	return customer, nil
}

func (s *CustomerService) publishEvents(ctx context.Context, customer *crm.Customer) error {
	events := customer.GetDomainEvents()
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
		entries = append(entries, shared.NewOutboxEntry(customer.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	customer.ClearDomainEvents()
	return nil
}

// toCustomerDTO converts a domain Customer to CustomerDTO
func toCustomerDTO(customer *crm.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:          customer.ID,
		TenantID:    customer.TenantID,
		Code:        customer.Code,
		Name:        customer.Name,
		Type:        string(customer.Type),
		Status:      string(customer.Status),
		ContactName: customer.ContactName,
		Phone:       customer.Phone,
		Email:       customer.Email,
		Address:     customer.Address,
		TaxID:       customer.TaxID,
		Notes:       customer.Notes,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}
