package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// Permission is a functional permission in resource:action form
type Permission struct {
	Code        string // e.g. "invoice:create"
	Resource    string // e.g. "invoice"
	Action      string // e.g. "create"
	Description string
}

// NewPermission creates a Permission value object
func NewPermission(resource, action string) (*Permission, error) {
	if err := validatePermissionPart(resource, "resource"); err != nil {
		return nil, err
	}
	if err := validatePermissionPart(action, "action"); err != nil {
		return nil, err
	}

	resource = strings.ToLower(strings.TrimSpace(resource))
	action = strings.ToLower(strings.TrimSpace(action))

	return &Permission{
		Code:     resource + ":" + action,
		Resource: resource,
		Action:   action,
	}, nil
}

// NewPermissionFromCode parses "resource:action" into a Permission
func NewPermissionFromCode(code string) (*Permission, error) {
	parts := strings.SplitN(code, ":", 2)
	if len(parts) != 2 {
		return nil, shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code must be in format 'resource:action'")
	}
	return NewPermission(parts[0], parts[1])
}

// Equals compares permissions by code
func (p Permission) Equals(other Permission) bool {
	return p.Code == other.Code
}

// IsEmpty reports whether the permission is the zero value
func (p Permission) IsEmpty() bool {
	return p.Code == ""
}

// Role is the aggregate root for RBAC roles
type Role struct {
	shared.TenantAggregateRoot
	Code         string
	Name         string
	Description  string
	IsSystemRole bool // System roles cannot be deleted
	IsEnabled    bool
	SortOrder    int
	Permissions  []Permission // Stored in role_permissions, loaded by the repository
}

// RolePermission is the persistence row for a granted permission
type RolePermission struct {
	RoleID      uuid.UUID
	TenantID    uuid.UUID
	Code        string
	Resource    string
	Action      string
	Description string
	CreatedAt   time.Time
}

// NewRole creates an enabled, non-system role
func NewRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	if err := validateRoleCode(code); err != nil {
		return nil, err
	}
	if err := validateRoleName(name); err != nil {
		return nil, err
	}

	role := &Role{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		IsEnabled:           true,
		Permissions:         make([]Permission, 0),
	}

	role.AddDomainEvent(NewRoleCreatedEvent(role))

	return role, nil
}

// NewSystemRole creates a role that cannot be deleted
func NewSystemRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	role, err := NewRole(tenantID, code, name)
	if err != nil {
		return nil, err
	}
	role.IsSystemRole = true
	return role, nil
}

// Update updates the role's name and description
func (r *Role) Update(name, description string) error {
	if err := validateRoleName(name); err != nil {
		return err
	}

	r.Name = strings.TrimSpace(name)
	r.Description = description
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRoleUpdatedEvent(r))

	return nil
}

// SetSortOrder sets the display ordering
func (r *Role) SetSortOrder(order int) {
	r.SortOrder = order
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Enable enables the role
func (r *Role) Enable() error {
	if r.IsEnabled {
		return shared.NewDomainError("ALREADY_ENABLED", "Role is already enabled")
	}

	r.IsEnabled = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRoleEnabledEvent(r))

	return nil
}

// Disable disables the role
func (r *Role) Disable() error {
	if !r.IsEnabled {
		return shared.NewDomainError("ALREADY_DISABLED", "Role is already disabled")
	}

	r.IsEnabled = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRoleDisabledEvent(r))

	return nil
}

// GrantPermission grants a permission to the role
func (r *Role) GrantPermission(perm Permission) error {
	if perm.IsEmpty() {
		return shared.NewDomainError("INVALID_PERMISSION", "Permission cannot be empty")
	}
	for _, p := range r.Permissions {
		if p.Equals(perm) {
			return shared.NewDomainError("PERMISSION_ALREADY_GRANTED", "Role already has this permission")
		}
	}

	r.Permissions = append(r.Permissions, perm)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRolePermissionGrantedEvent(r, perm))

	return nil
}

// GrantPermissionByCode grants a permission given its code string
func (r *Role) GrantPermissionByCode(code string) error {
	perm, err := NewPermissionFromCode(code)
	if err != nil {
		return err
	}
	return r.GrantPermission(*perm)
}

// RevokePermission revokes a permission by code
func (r *Role) RevokePermission(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code cannot be empty")
	}

	found := false
	var revoked Permission
	kept := make([]Permission, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		if p.Code == code {
			found = true
			revoked = p
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return shared.NewDomainError("PERMISSION_NOT_FOUND", "Role does not have this permission")
	}

	r.Permissions = kept
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRolePermissionRevokedEvent(r, revoked))

	return nil
}

// SetPermissions replaces the permission set, deduplicating by code
func (r *Role) SetPermissions(permissions []Permission) error {
	seen := make(map[string]bool, len(permissions))
	unique := make([]Permission, 0, len(permissions))
	for _, p := range permissions {
		if p.IsEmpty() {
			return shared.NewDomainError("INVALID_PERMISSION", "Permission cannot be empty")
		}
		if !seen[p.Code] {
			seen[p.Code] = true
			unique = append(unique, p)
		}
	}

	r.Permissions = unique
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// HasPermission reports whether the role holds the permission code
func (r *Role) HasPermission(code string) bool {
	for _, p := range r.Permissions {
		if p.Code == code {
			return true
		}
	}
	return false
}

// PermissionsForResource returns all permissions on the given resource
func (r *Role) PermissionsForResource(resource string) []Permission {
	resource = strings.ToLower(strings.TrimSpace(resource))
	result := make([]Permission, 0)
	for _, p := range r.Permissions {
		if p.Resource == resource {
			result = append(result, p)
		}
	}
	return result
}

// CanDelete reports whether the role may be deleted
func (r *Role) CanDelete() bool {
	return !r.IsSystemRole
}

func validateRoleCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot be empty")
	}
	if len(code) < 2 {
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must be at least 2 characters")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot exceed 50 characters")
	}
	if !regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`).MatchString(code) {
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

func validateRoleName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot exceed 100 characters")
	}
	return nil
}

func validatePermissionPart(part, kind string) error {
	part = strings.TrimSpace(part)
	if part == "" {
		return shared.NewDomainError("INVALID_PERMISSION_"+strings.ToUpper(kind), "Permission "+kind+" cannot be empty")
	}
	if len(part) > 50 {
		return shared.NewDomainError("INVALID_PERMISSION_"+strings.ToUpper(kind), "Permission "+kind+" cannot exceed 50 characters")
	}
	if !regexp.MustCompile(`^[a-z][a-z0-9_]*$`).MatchString(strings.ToLower(part)) {
		return shared.NewDomainError("INVALID_PERMISSION_"+strings.ToUpper(kind), "Permission "+kind+" must start with a letter and contain only lowercase letters, numbers, and underscores")
	}
	return nil
}

// Predefined system role codes
const (
	RoleCodeAdmin      = "ADMIN"
	RoleCodeOwner      = "OWNER"
	RoleCodeHRManager  = "HR_MANAGER"
	RoleCodeAccountant = "ACCOUNTANT"
	RoleCodeSales      = "SALES"
	RoleCodeSupport    = "SUPPORT"
	RoleCodeEmployee   = "EMPLOYEE"
)

// Predefined resources
const (
	ResourceUser        = "user"
	ResourceRole        = "role"
	ResourceTenant      = "tenant"
	ResourceEmployee    = "employee"
	ResourceLeave       = "leave_request"
	ResourcePayroll     = "payroll_run"
	ResourceInvoice     = "invoice"
	ResourceVendor      = "vendor"
	ResourceLedger      = "ledger"
	ResourceCustomer    = "customer"
	ResourceFeatureFlag = "feature_flag"
	ResourceDevice      = "mobile_device"
	ResourceTicket      = "ticket"
	ResourceReport      = "report"
)

// Predefined actions
const (
	ActionCreate   = "create"
	ActionRead     = "read"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionCancel   = "cancel"
	ActionSend     = "send"
	ActionPay      = "pay"
	ActionAssign   = "assign"
	ActionLock     = "lock"
	ActionUnlock   = "unlock"
	ActionWipe     = "wipe"
	ActionEvaluate = "evaluate"
	ActionExport   = "export"
)
