package finance

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// VendorStatus represents the status of a vendor
type VendorStatus string

const (
	VendorStatusActive   VendorStatus = "active"
	VendorStatusInactive VendorStatus = "inactive"
	VendorStatusBlocked  VendorStatus = "blocked" // Blocked for compliance or payment disputes
)

// Vendor is the aggregate root for accounts-payable counterparties
type Vendor struct {
	shared.TenantAggregateRoot
	Code        string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_vendor_tenant_code,priority:2"`
	Name        string              `gorm:"type:varchar(200);not null"`
	Status      VendorStatus        `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string              `gorm:"type:varchar(100)"`
	Phone       string              `gorm:"type:varchar(50);index"`
	Email       string              `gorm:"type:varchar(200);index"`
	Address     valueobject.Address `gorm:"type:jsonb"`
	TaxID       string              `gorm:"type:varchar(50)"`
	BankName    string              `gorm:"type:varchar(200)"`
	BankAccount string              `gorm:"type:varchar(100)"`
	CreditDays  int                 `gorm:"not null;default:0"` // Payment terms: days until payment due
	Notes       string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates an active vendor
func NewVendor(tenantID uuid.UUID, code, name string) (*Vendor, error) {
	if err := validateVendorCode(code); err != nil {
		return nil, err
	}
	if err := validateVendorName(name); err != nil {
		return nil, err
	}

	vendor := &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              VendorStatusActive,
	}

	vendor.AddDomainEvent(NewVendorCreatedEvent(vendor))

	return vendor, nil
}

// Update updates the vendor's name
func (v *Vendor) Update(name string) error {
	if err := validateVendorName(name); err != nil {
		return err
	}

	v.Name = name
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	v.AddDomainEvent(NewVendorUpdatedEvent(v))

	return nil
}

// SetContact sets the vendor's contact information
func (v *Vendor) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" {
		if len(phone) > 50 || !regexp.MustCompile(`^[\d\s\-\(\)\+]+$`).MatchString(phone) {
			return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
		}
	}
	if email != "" {
		if len(email) > 200 || !regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`).MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}

	v.ContactName = contactName
	v.Phone = phone
	v.Email = email
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// SetAddress sets the vendor's address
func (v *Vendor) SetAddress(address valueobject.Address) {
	v.Address = address
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
}

// SetTaxID sets the vendor's tax identification number
func (v *Vendor) SetTaxID(taxID string) error {
	if taxID != "" && len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}

	v.TaxID = taxID
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// SetBankInfo sets the vendor's remittance bank details
func (v *Vendor) SetBankInfo(bankName, bankAccount string) error {
	if bankName != "" && len(bankName) > 200 {
		return shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot exceed 200 characters")
	}
	if bankAccount != "" && len(bankAccount) > 100 {
		return shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account cannot exceed 100 characters")
	}

	v.BankName = bankName
	v.BankAccount = bankAccount
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// SetPaymentTerms sets the credit days granted by this vendor
func (v *Vendor) SetPaymentTerms(creditDays int) error {
	if creditDays < 0 || creditDays > 365 {
		return shared.NewDomainError("INVALID_CREDIT_DAYS", "Credit days must be between 0 and 365")
	}

	v.CreditDays = creditDays
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// SetNotes sets the vendor's notes
func (v *Vendor) SetNotes(notes string) {
	v.Notes = notes
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
}

// Activate activates the vendor
func (v *Vendor) Activate() error {
	if v.Status == VendorStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Vendor is already active")
	}

	oldStatus := v.Status
	v.Status = VendorStatusActive
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	v.AddDomainEvent(NewVendorStatusChangedEvent(v, oldStatus, VendorStatusActive))

	return nil
}

// Deactivate deactivates the vendor
func (v *Vendor) Deactivate() error {
	if v.Status == VendorStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Vendor is already inactive")
	}

	oldStatus := v.Status
	v.Status = VendorStatusInactive
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	v.AddDomainEvent(NewVendorStatusChangedEvent(v, oldStatus, VendorStatusInactive))

	return nil
}

// Block blocks the vendor from new transactions
func (v *Vendor) Block() error {
	if v.Status == VendorStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "Vendor is already blocked")
	}

	oldStatus := v.Status
	v.Status = VendorStatusBlocked
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	v.AddDomainEvent(NewVendorStatusChangedEvent(v, oldStatus, VendorStatusBlocked))

	return nil
}

// IsActive reports whether the vendor is active
func (v *Vendor) IsActive() bool {
	return v.Status == VendorStatusActive
}

// IsBlocked reports whether the vendor is blocked
func (v *Vendor) IsBlocked() bool {
	return v.Status == VendorStatusBlocked
}

func validateVendorCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Vendor code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Vendor code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Vendor code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateVendorName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Vendor name cannot exceed 200 characters")
	}
	return nil
}
