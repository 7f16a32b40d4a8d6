// Package datascope provides row-level ownership filtering for GORM queries.
//
// Some resources are visible to everyone with the resource-wide read
// permission, while ordinary staff only see rows they own. A role grants
// "<resource>:read" for full visibility or "<resource>:read_own" for
// ownership-restricted visibility. The widest grant across a user's
// enabled roles wins.
//
// Usage:
//
//	filter := datascope.NewFilter(ctx, roles)
//	scopedDB := filter.Apply(db, "leave_request")
//	scopedDB.Find(&requests) // WHERE employee_id = ? is auto-added for read_own
package datascope

import (
	"context"

	"github.com/peopledesk/backend/internal/domain/identity"
	"github.com/peopledesk/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScopeType is the visibility level for a resource
type ScopeType string

const (
	// ScopeAll grants visibility of every row in the tenant
	ScopeAll ScopeType = "ALL"
	// ScopeSelf restricts visibility to rows owned by the current user
	ScopeSelf ScopeType = "SELF"
	// ScopeNone means no read grant at all
	ScopeNone ScopeType = "NONE"
)

// Actions recognized when deriving scopes from permissions
const (
	ActionRead    = "read"
	ActionReadOwn = "read_own"
	ActionManage  = "manage"
)

// DataScopeContextKey is the context key type for stored scopes
type DataScopeContextKey string

// ScopesKey is the context key for storing the user's resource scopes
const ScopesKey DataScopeContextKey = "data_scopes"

// EmployeeIDKey is the context key for the user's linked employee ID.
// Set by the auth middleware when the account is linked to an employee.
const EmployeeIDKey DataScopeContextKey = "employee_id"

// Filter applies ownership filtering to GORM queries
type Filter struct {
	ctx        context.Context
	userID     uuid.UUID
	employeeID uuid.UUID
	scopes     map[string]ScopeType // resource -> widest granted scope
}

// NewFilter derives a Filter from the user's enabled roles.
// The widest grant per resource wins (read/manage > read_own).
func NewFilter(ctx context.Context, roles []identity.Role) *Filter {
	return &Filter{
		ctx:        ctx,
		userID:     currentUserID(ctx),
		employeeID: currentEmployeeID(ctx),
		scopes:     deriveScopes(roles),
	}
}

// NewFilterFromContext creates a Filter from scopes stored in context
func NewFilterFromContext(ctx context.Context) *Filter {
	scopes := make(map[string]ScopeType)
	if stored, ok := ctx.Value(ScopesKey).(map[string]ScopeType); ok {
		scopes = stored
	}

	return &Filter{
		ctx:        ctx,
		userID:     currentUserID(ctx),
		employeeID: currentEmployeeID(ctx),
		scopes:     scopes,
	}
}

// WithEmployeeID stores the user's linked employee ID in context
func WithEmployeeID(ctx context.Context, employeeID uuid.UUID) context.Context {
	return context.WithValue(ctx, EmployeeIDKey, employeeID)
}

// WithScopes stores derived scopes in context for downstream handlers
func WithScopes(ctx context.Context, roles []identity.Role) context.Context {
	return context.WithValue(ctx, ScopesKey, deriveScopes(roles))
}

// Apply applies ownership filtering for a resource
func (f *Filter) Apply(db *gorm.DB, resource string) *gorm.DB {
	scope, exists := f.scopes[resource]
	if !exists {
		// No grant recorded for this resource. Action-level access is
		// enforced by the permission middleware, so default to ALL here.
		return db
	}

	switch scope {
	case ScopeAll:
		return db

	case ScopeSelf:
		ownerID := f.ownerID(resource)
		if ownerID == uuid.Nil {
			return db.Where("1 = 0")
		}
		column := ownerColumns[resource]
		if column == "" {
			column = "created_by"
		}
		return db.Where(column+" = ?", ownerID)

	case ScopeNone:
		return db.Where("1 = 0")

	default:
		return db
	}
}

// ApplyToQuery returns a GORM scope function for the resource
func (f *Filter) ApplyToQuery(resource string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return f.Apply(db, resource)
	}
}

// GetScopeType returns the scope for a resource, defaulting to ALL
func (f *Filter) GetScopeType(resource string) ScopeType {
	if scope, exists := f.scopes[resource]; exists {
		return scope
	}
	return ScopeAll
}

// HasScope returns true if a scope is recorded for the resource
func (f *Filter) HasScope(resource string) bool {
	_, exists := f.scopes[resource]
	return exists
}

// GetUserID returns the current user ID
func (f *Filter) GetUserID() uuid.UUID {
	return f.userID
}

// CanAccessAll returns true if the user sees every row of the resource
func (f *Filter) CanAccessAll(resource string) bool {
	scope, exists := f.scopes[resource]
	if !exists {
		return true
	}
	return scope == ScopeAll
}

// IsOwner checks if the current user owns a record
func (f *Filter) IsOwner(ownerID *uuid.UUID) bool {
	if ownerID == nil || f.userID == uuid.Nil {
		return false
	}
	return *ownerID == f.userID || *ownerID == f.employeeID
}

// ownerID returns the identifier compared against the owner column.
// Employee-owned resources match on the linked employee ID, the rest
// on the user ID.
func (f *Filter) ownerID(resource string) uuid.UUID {
	if employeeOwnedResources[resource] {
		return f.employeeID
	}
	return f.userID
}

// ScopeFunc is a GORM scope function type
type ScopeFunc func(*gorm.DB) *gorm.DB

// Scope creates a GORM scope for ownership filtering
func Scope(ctx context.Context, resource string, roles []identity.Role) ScopeFunc {
	return NewFilter(ctx, roles).ApplyToQuery(resource)
}

// ScopeFromContext creates a GORM scope using scopes stored in context
func ScopeFromContext(ctx context.Context, resource string) ScopeFunc {
	return NewFilterFromContext(ctx).ApplyToQuery(resource)
}

// IsOwnershipScoped returns true if the resource has an owner column
func IsOwnershipScoped(resource string) bool {
	_, exists := ownerColumns[resource]
	return exists
}

func currentUserID(ctx context.Context) uuid.UUID {
	userIDStr := logger.GetUserID(ctx)
	if userIDStr == "" {
		return uuid.Nil
	}
	userID, _ := uuid.Parse(userIDStr)
	return userID
}

func currentEmployeeID(ctx context.Context) uuid.UUID {
	if employeeID, ok := ctx.Value(EmployeeIDKey).(uuid.UUID); ok {
		return employeeID
	}
	return uuid.Nil
}

// deriveScopes merges read grants from all enabled roles.
// A full read or manage grant beats read_own.
func deriveScopes(roles []identity.Role) map[string]ScopeType {
	scopes := make(map[string]ScopeType)
	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		for _, perm := range role.Permissions {
			var granted ScopeType
			switch perm.Action {
			case ActionRead, ActionManage:
				granted = ScopeAll
			case ActionReadOwn:
				granted = ScopeSelf
			default:
				continue
			}

			existing, exists := scopes[perm.Resource]
			if !exists || scopeLevel(granted) > scopeLevel(existing) {
				scopes[perm.Resource] = granted
			}
		}
	}
	return scopes
}

func scopeLevel(s ScopeType) int {
	switch s {
	case ScopeAll:
		return 100
	case ScopeSelf:
		return 10
	default:
		return 0
	}
}

// ownerColumns maps ownership-scoped resources to their owner column.
// Leave requests and payslips are owned through the employee record,
// tickets through the requester.
var ownerColumns = map[string]string{
	"leave_request": "employee_id",
	"payslip":       "employee_id",
	"ticket":        "requester_id",
	"mobile_device": "employee_id",
}

// employeeOwnedResources marks resources whose owner column holds an
// employee ID rather than a user ID
var employeeOwnedResources = map[string]bool{
	"leave_request": true,
	"payslip":       true,
	"mobile_device": true,
}
