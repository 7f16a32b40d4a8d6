package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended" // Suspended by the operator
)

// PayrollFrequency is how often a tenant runs payroll
type PayrollFrequency string

const (
	PayrollMonthly     PayrollFrequency = "monthly"
	PayrollBiweekly    PayrollFrequency = "biweekly"
	PayrollWeekly      PayrollFrequency = "weekly"
	PayrollSemimonthly PayrollFrequency = "semimonthly"
)

// CompanyProfile holds the company-level settings a tenant admin edits
// on the company profile page. Stored embedded on the tenant row.
type CompanyProfile struct {
	LegalName            string               `json:"legal_name"`
	TaxID                string               `json:"tax_id"`
	Address              valueobject.Address  `json:"address"`
	DefaultCurrency      valueobject.Currency `json:"default_currency"`
	Timezone             string               `json:"timezone"`
	FiscalYearStartMonth int                  `json:"fiscal_year_start_month"` // 1..12
	PayrollFrequency     PayrollFrequency     `json:"payroll_frequency"`
}

// DefaultCompanyProfile returns the profile for a freshly created tenant
func DefaultCompanyProfile() CompanyProfile {
	return CompanyProfile{
		DefaultCurrency:      valueobject.DefaultCurrency,
		Timezone:             "UTC",
		FiscalYearStartMonth: 1,
		PayrollFrequency:     PayrollMonthly,
	}
}

// Tenant is the aggregate root for an organization in the multi-tenant
// system. Tenants themselves are platform-level, not tenant-scoped.
type Tenant struct {
	shared.BaseAggregateRoot
	Code         string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string         `gorm:"type:varchar(200);not null"`
	Status       TenantStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName  string         `gorm:"type:varchar(100)"`
	ContactPhone string         `gorm:"type:varchar(50)"`
	ContactEmail string         `gorm:"type:varchar(200)"`
	LogoURL      string         `gorm:"type:varchar(500)"`
	Domain       string         `gorm:"type:varchar(200);uniqueIndex"` // Custom subdomain
	Profile      CompanyProfile `gorm:"embedded;embeddedPrefix:profile_"`
	Notes        string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates an active tenant with a default company profile
func NewTenant(code, name string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if err := validateTenantName(name); err != nil {
		return nil, err
	}

	tenant := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            TenantStatusActive,
		Profile:           DefaultCompanyProfile(),
	}

	tenant.AddDomainEvent(NewTenantCreatedEvent(tenant))

	return tenant, nil
}

// Update updates the tenant's basic information
func (t *Tenant) Update(name string) error {
	if err := validateTenantName(name); err != nil {
		return err
	}

	t.Name = name
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantUpdatedEvent(t))

	return nil
}

// SetContact sets the tenant's contact information
func (t *Tenant) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	t.ContactName = contactName
	t.ContactPhone = phone
	t.ContactEmail = email
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetLogoURL sets the tenant's logo URL
func (t *Tenant) SetLogoURL(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Logo URL cannot exceed 500 characters")
	}

	t.LogoURL = url
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetDomain sets the tenant's custom subdomain
func (t *Tenant) SetDomain(domain string) error {
	if domain != "" && len(domain) > 200 {
		return shared.NewDomainError("INVALID_DOMAIN", "Domain cannot exceed 200 characters")
	}
	t.Domain = strings.ToLower(strings.TrimSpace(domain))
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UpdateProfile replaces the company profile settings
func (t *Tenant) UpdateProfile(profile CompanyProfile) error {
	if profile.LegalName != "" && len(profile.LegalName) > 200 {
		return shared.NewDomainError("INVALID_LEGAL_NAME", "Legal name cannot exceed 200 characters")
	}
	if profile.TaxID != "" && len(profile.TaxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}
	if len(profile.DefaultCurrency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Default currency must be a 3-letter code")
	}
	if profile.FiscalYearStartMonth < 1 || profile.FiscalYearStartMonth > 12 {
		return shared.NewDomainError("INVALID_FISCAL_YEAR_START", "Fiscal year start month must be between 1 and 12")
	}
	switch profile.PayrollFrequency {
	case PayrollMonthly, PayrollBiweekly, PayrollWeekly, PayrollSemimonthly:
	default:
		return shared.NewDomainError("INVALID_PAYROLL_FREQUENCY", "Invalid payroll frequency")
	}
	if profile.Timezone != "" {
		if _, err := time.LoadLocation(profile.Timezone); err != nil {
			return shared.NewDomainError("INVALID_TIMEZONE", "Unknown timezone")
		}
	}

	t.Profile = profile
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantProfileUpdatedEvent(t))

	return nil
}

// SetNotes sets the tenant's notes
func (t *Tenant) SetNotes(notes string) {
	t.Notes = notes
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Activate activates the tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}

	oldStatus := t.Status
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusActive))

	return nil
}

// Deactivate deactivates the tenant
func (t *Tenant) Deactivate() error {
	if t.Status == TenantStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Tenant is already inactive")
	}

	oldStatus := t.Status
	t.Status = TenantStatusInactive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusInactive))

	return nil
}

// Suspend suspends the tenant
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}

	oldStatus := t.Status
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusSuspended))

	return nil
}

// IsActive reports whether the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// IsSuspended reports whether the tenant is suspended
func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}

// GetTenantID returns the tenant's own ID
func (t *Tenant) GetTenantID() uuid.UUID {
	return t.ID
}

func validateTenantCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Tenant code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateTenantName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}
	return nil
}
