package handler

// CreateTenantRequest represents a request to create a tenant
// @Description Request body for creating a tenant
type CreateTenantRequest struct {
	Code         string `json:"code" binding:"required,min=1,max=50" example:"ACME"`
	Name         string `json:"name" binding:"required,min=1,max=200" example:"Acme Corporation"`
	ContactName  string `json:"contact_name" binding:"max=100" example:"Jordan Smith"`
	ContactPhone string `json:"contact_phone" binding:"max=50" example:"+1-503-555-0100"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email,max=200" example:"admin@acme.example.com"`
	LogoURL      string `json:"logo_url" binding:"omitempty,url,max=500"`
	Domain       string `json:"domain" binding:"max=200" example:"acme"`
	Notes        string `json:"notes" binding:"max=1000"`
}

// UpdateTenantRequest represents a request to update a tenant
// @Description Request body for updating a tenant
type UpdateTenantRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200" example:"Acme Corporation"`
	ContactName  *string `json:"contact_name" binding:"omitempty,max=100" example:"Jordan Smith"`
	ContactPhone *string `json:"contact_phone" binding:"omitempty,max=50" example:"+1-503-555-0101"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email,max=200" example:"ops@acme.example.com"`
	LogoURL      *string `json:"logo_url" binding:"omitempty,url,max=500"`
	Domain       *string `json:"domain" binding:"omitempty,max=200" example:"acme"`
	Notes        *string `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateCompanyProfileRequest represents a request to update the company profile
// @Description Request body for updating a tenant's company profile
type UpdateCompanyProfileRequest struct {
	LegalName            *string `json:"legal_name" binding:"omitempty,max=200" example:"Acme Corporation Inc."`
	TaxID                *string `json:"tax_id" binding:"omitempty,max=50" example:"94-1234567"`
	AddressLine1         *string `json:"address_line1" binding:"omitempty,max=200"`
	AddressLine2         *string `json:"address_line2" binding:"omitempty,max=200"`
	City                 *string `json:"city" binding:"omitempty,max=100" example:"Portland"`
	State                *string `json:"state" binding:"omitempty,max=100" example:"OR"`
	PostalCode           *string `json:"postal_code" binding:"omitempty,max=20" example:"97201"`
	Country              *string `json:"country" binding:"omitempty,max=100" example:"US"`
	DefaultCurrency      *string `json:"default_currency" binding:"omitempty,len=3" example:"USD"`
	Timezone             *string `json:"timezone" binding:"omitempty,max=100" example:"America/Los_Angeles"`
	FiscalYearStartMonth *int    `json:"fiscal_year_start_month" binding:"omitempty,min=1,max=12" example:"1"`
	PayrollFrequency     *string `json:"payroll_frequency" binding:"omitempty,oneof=monthly biweekly weekly semimonthly" example:"monthly"`
}

// TenantListQuery represents query parameters for listing tenants
type TenantListQuery struct {
	Keyword  string `form:"keyword"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=code name status created_at updated_at"`
	SortDir  string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// TenantStatsResponse represents tenant statistics
// @Description Platform-level tenant counts by status
type TenantStatsResponse struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
}
