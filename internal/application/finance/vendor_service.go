package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// VendorService handles vendor management operations
type VendorService struct {
	vendorRepo finance.VendorRepository
	logger     *zap.Logger
}

// NewVendorService creates a new vendor service
func NewVendorService(vendorRepo finance.VendorRepository, logger *zap.Logger) *VendorService {
	return &VendorService{
		vendorRepo: vendorRepo,
		logger:     logger,
	}
}

// CreateVendorInput contains input for creating a vendor
type CreateVendorInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	ContactName string
	Phone       string
	Email       string
	Address     *AddressInput
	TaxID       string
	BankName    string
	BankAccount string
	CreditDays  int
	Notes       string
}

// UpdateVendorInput contains input for updating a vendor
type UpdateVendorInput struct {
	TenantID    uuid.UUID
	ID          uuid.UUID
	Name        *string
	ContactName *string
	Phone       *string
	Email       *string
	Address     *AddressInput
	TaxID       *string
	BankName    *string
	BankAccount *string
	CreditDays  *int
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

// VendorDTO represents a vendor in responses
type VendorDTO struct {
	ID          uuid.UUID           `json:"id"`
	TenantID    uuid.UUID           `json:"tenant_id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Status      string              `json:"status"`
	ContactName string              `json:"contact_name,omitempty"`
	Phone       string              `json:"phone,omitempty"`
	Email       string              `json:"email,omitempty"`
	Address     valueobject.Address `json:"address"`
	TaxID       string              `json:"tax_id,omitempty"`
	BankName    string              `json:"bank_name,omitempty"`
	BankAccount string              `json:"bank_account,omitempty"`
	CreditDays  int                 `json:"credit_days"`
	Notes       string              `json:"notes,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// VendorFilter represents filter for querying vendors
type VendorFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// VendorListResult represents a paginated vendor list
type VendorListResult struct {
	Vendors    []VendorDTO `json:"vendors"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Create creates a new vendor
func (s *VendorService) Create(ctx context.Context, input CreateVendorInput) (*VendorDTO, error) {
	s.logger.Info("Creating vendor",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("code", input.Code))

	exists, err := s.vendorRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		s.logger.Error("Failed to check vendor code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check code availability")
	}
	if exists {
		return nil, shared.NewDomainError("CODE_EXISTS", "Vendor code already exists")
	}

	vendor, err := finance.NewVendor(input.TenantID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}

	if input.ContactName != "" || input.Phone != "" || input.Email != "" {
		if err := vendor.SetContact(input.ContactName, input.Phone, input.Email); err != nil {
			return nil, err
		}
	}
	if input.Address != nil {
		address, err := input.Address.toAddress()
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		vendor.SetAddress(address)
	}
	if input.TaxID != "" {
		if err := vendor.SetTaxID(input.TaxID); err != nil {
			return nil, err
		}
	}
	if input.BankName != "" || input.BankAccount != "" {
		if err := vendor.SetBankInfo(input.BankName, input.BankAccount); err != nil {
			return nil, err
		}
	}
	if input.CreditDays != 0 {
		if err := vendor.SetPaymentTerms(input.CreditDays); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		vendor.SetNotes(input.Notes)
	}

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		s.logger.Error("Failed to save vendor", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save vendor")
	}

	s.logger.Info("Vendor created",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("code", vendor.Code))

	return toVendorDTO(vendor), nil
}

// GetByID retrieves a vendor by ID within a tenant
func (s *VendorService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.findVendor(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toVendorDTO(vendor), nil
}

// List retrieves a paginated list of vendors
func (s *VendorService) List(ctx context.Context, tenantID uuid.UUID, filter VendorFilter) (*VendorListResult, error) {
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

	vendors, err := s.vendorRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list vendors", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list vendors")
	}

	total, err := s.vendorRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count vendors", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count vendors")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]VendorDTO, len(vendors))
	for i := range vendors {
		dtos[i] = *toVendorDTO(&vendors[i])
	}

	return &VendorListResult{
		Vendors:    dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates a vendor's information
func (s *VendorService) Update(ctx context.Context, input UpdateVendorInput) (*VendorDTO, error) {
	vendor, err := s.findVendor(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := vendor.Update(*input.Name); err != nil {
			return nil, err
		}
	}

	if input.ContactName != nil || input.Phone != nil || input.Email != nil {
		contactName := vendor.ContactName
		phone := vendor.Phone
		email := vendor.Email
		if input.ContactName != nil {
			contactName = *input.ContactName
		}
		if input.Phone != nil {
			phone = *input.Phone
		}
		if input.Email != nil {
			email = *input.Email
		}
		if err := vendor.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}

	if input.Address != nil {
		address, err := input.Address.toAddress()
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		vendor.SetAddress(address)
	}

	if input.TaxID != nil {
		if err := vendor.SetTaxID(*input.TaxID); err != nil {
			return nil, err
		}
	}

	if input.BankName != nil || input.BankAccount != nil {
		bankName := vendor.BankName
		bankAccount := vendor.BankAccount
		if input.BankName != nil {
			bankName = *input.BankName
		}
		if input.BankAccount != nil {
			bankAccount = *input.BankAccount
		}
		if err := vendor.SetBankInfo(bankName, bankAccount); err != nil {
			return nil, err
		}
	}

	if input.CreditDays != nil {
		if err := vendor.SetPaymentTerms(*input.CreditDays); err != nil {
			return nil, err
		}
	}

	if input.Notes != nil {
		vendor.SetNotes(*input.Notes)
	}

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		s.logger.Error("Failed to update vendor", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update vendor")
	}

	s.logger.Info("Vendor updated", zap.String("vendor_id", input.ID.String()))

	return toVendorDTO(vendor), nil
}

// Activate reactivates a vendor
func (s *VendorService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*VendorDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*finance.Vendor).Activate, "activate")
}

// Deactivate deactivates a vendor
func (s *VendorService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*VendorDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*finance.Vendor).Deactivate, "deactivate")
}

// Block blocks a vendor from new transactions
func (s *VendorService) Block(ctx context.Context, tenantID, id uuid.UUID) (*VendorDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*finance.Vendor).Block, "block")
}

// Delete deletes a vendor
func (s *VendorService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	vendor, err := s.findVendor(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if vendor.IsActive() {
		return shared.NewDomainError("VENDOR_ACTIVE", "Active vendors cannot be deleted")
	}

	if err := s.vendorRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete vendor", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete vendor")
	}

	s.logger.Info("Vendor deleted",
		zap.String("vendor_id", id.String()),
		zap.String("code", vendor.Code))

	return nil
}

func (s *VendorService) changeStatus(ctx context.Context, tenantID, id uuid.UUID, change func(*finance.Vendor) error, action string) (*VendorDTO, error) {
	vendor, err := s.findVendor(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := change(vendor); err != nil {
		return nil, err
	}

	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		s.logger.Error("Failed to "+action+" vendor", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save vendor")
	}

	s.logger.Info("Vendor status changed",
		zap.String("vendor_id", id.String()),
		zap.String("status", string(vendor.Status)))

	return toVendorDTO(vendor), nil
}

func (s *VendorService) findVendor(ctx context.Context, tenantID, id uuid.UUID) (*finance.Vendor, error) {
	vendor, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("VENDOR_NOT_FOUND", "Vendor not found")
		}
		s.logger.Error("Failed to find vendor", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find vendor")
	}
	return vendor, nil
}

// toVendorDTO converts a domain Vendor to VendorDTO
func toVendorDTO(vendor *finance.Vendor) *VendorDTO {
	return &VendorDTO{
		ID:          vendor.ID,
		TenantID:    vendor.TenantID,
		Code:        vendor.Code,
		Name:        vendor.Name,
		Status:      string(vendor.Status),
		ContactName: vendor.ContactName,
		Phone:       vendor.Phone,
		Email:       vendor.Email,
		Address:     vendor.Address,
		TaxID:       vendor.TaxID,
		BankName:    vendor.BankName,
		BankAccount: vendor.BankAccount,
		CreditDays:  vendor.CreditDays,
		Notes:       vendor.Notes,
		CreatedAt:   vendor.CreatedAt,
		UpdatedAt:   vendor.UpdatedAt,
	}
}
