package middleware

import (
	"net/http"

	"github.com/peopledesk/backend/internal/domain/identity"
	"github.com/peopledesk/backend/internal/infrastructure/persistence/datascope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ownership scope context keys
const (
	DataScopeFilterKey = "data_scope_filter"
	UserRolesKey       = "user_roles"
)

// DataScopeMiddlewareConfig holds configuration for the ownership scope middleware
type DataScopeMiddlewareConfig struct {
	// RoleRepository is required for loading roles with their permissions
	RoleRepository identity.RoleRepository
	// UserRepository is optional; when set, the user's linked employee ID
	// is resolved so employee-owned resources can be filtered
	UserRepository identity.UserRepository
	// SkipPaths are paths that don't require ownership filtering
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require ownership filtering
	SkipPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultDataScopeConfig returns default ownership scope middleware configuration
func DefaultDataScopeConfig(roleRepo identity.RoleRepository) DataScopeMiddlewareConfig {
	return DataScopeMiddlewareConfig{
		RoleRepository: roleRepo,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
		Logger: nil,
	}
}

// DataScopeMiddleware creates middleware that loads the user's roles and
// derives ownership scopes into context. Must run after JWTAuthMiddleware
// as it depends on JWT claims.
func DataScopeMiddleware(roleRepo identity.RoleRepository) gin.HandlerFunc {
	return DataScopeMiddlewareWithConfig(DefaultDataScopeConfig(roleRepo))
}

// DataScopeMiddlewareWithConfig creates ownership scope middleware with custom config
func DataScopeMiddlewareWithConfig(cfg DataScopeMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		for _, prefix := range cfg.SkipPathPrefixes {
			if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
				c.Next()
				return
			}
		}

		// Role IDs come from JWT claims set by JWTAuthMiddleware
		roleIDStrings := GetJWTRoleIDs(c)
		if len(roleIDStrings) == 0 {
			// No roles recorded - scope enforcement is left to the
			// permission middleware
			c.Next()
			return
		}

		roleIDs := make([]uuid.UUID, 0, len(roleIDStrings))
		for _, idStr := range roleIDStrings {
			if id, err := uuid.Parse(idStr); err == nil {
				roleIDs = append(roleIDs, id)
			}
		}

		if len(roleIDs) == 0 {
			c.Next()
			return
		}

		tenantIDStr := GetJWTTenantID(c)
		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Invalid tenant ID in JWT",
					zap.String("tenant_id", tenantIDStr),
					zap.Error(err),
				)
			}
			c.Next()
			return
		}

		ctx := c.Request.Context()
		rolePtrs, err := cfg.RoleRepository.FindByIDs(ctx, roleIDs)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to load roles for ownership scoping",
					zap.Error(err),
					zap.String("tenant_id", tenantIDStr),
				)
			}
			// Continue without ownership filtering on error
			c.Next()
			return
		}

		roles := make([]identity.Role, 0, len(rolePtrs))
		for _, rolePtr := range rolePtrs {
			if rolePtr == nil || rolePtr.TenantID != tenantID {
				continue
			}
			if len(rolePtr.Permissions) == 0 {
				if err := cfg.RoleRepository.LoadPermissions(ctx, rolePtr); err != nil {
					if cfg.Logger != nil {
						cfg.Logger.Warn("Failed to load permissions for role",
							zap.Error(err),
							zap.String("role_id", rolePtr.ID.String()),
						)
					}
				}
			}
			roles = append(roles, *rolePtr)
		}

		c.Set(UserRolesKey, roles)

		// Resolve the linked employee ID so employee-owned resources
		// (leave requests, payslips, devices) can be matched
		ctx = datascope.WithScopes(ctx, roles)
		if employeeID := resolveEmployeeID(c, cfg); employeeID != uuid.Nil {
			ctx = datascope.WithEmployeeID(ctx, employeeID)
		}
		c.Request = c.Request.WithContext(ctx)

		filter := datascope.NewFilterFromContext(ctx)
		c.Set(DataScopeFilterKey, filter)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Ownership scopes loaded",
				zap.Int("role_count", len(roles)),
				zap.String("user_id", GetJWTUserID(c)),
			)
		}

		c.Next()
	}
}

func resolveEmployeeID(c *gin.Context, cfg DataScopeMiddlewareConfig) uuid.UUID {
	if cfg.UserRepository == nil {
		return uuid.Nil
	}
	userID, err := uuid.Parse(GetJWTUserID(c))
	if err != nil {
		return uuid.Nil
	}
	user, err := cfg.UserRepository.FindByID(c.Request.Context(), userID)
	if err != nil || user == nil || user.EmployeeID == nil {
		return uuid.Nil
	}
	return *user.EmployeeID
}

// GetDataScopeFilter retrieves the ownership filter from gin.Context
func GetDataScopeFilter(c *gin.Context) *datascope.Filter {
	if filter, exists := c.Get(DataScopeFilterKey); exists {
		if f, ok := filter.(*datascope.Filter); ok {
			return f
		}
	}
	return nil
}

// GetUserRoles retrieves the user's roles from gin.Context
func GetUserRoles(c *gin.Context) []identity.Role {
	if roles, exists := c.Get(UserRolesKey); exists {
		if r, ok := roles.([]identity.Role); ok {
			return r
		}
	}
	return nil
}

// RequireDataScope requires at least the given scope for a resource.
// Used on routes that must not be reachable with an ownership-restricted
// grant, such as team-wide report endpoints.
func RequireDataScope(resource string, minScope datascope.ScopeType, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := GetDataScopeFilter(c)
		if filter == nil {
			// No filter means no restrictions recorded
			c.Next()
			return
		}

		actualScope := filter.GetScopeType(resource)
		if !meetsMinimumScope(actualScope, minScope) {
			if logger != nil {
				logger.Warn("Insufficient data scope",
					zap.String("resource", resource),
					zap.String("required", string(minScope)),
					zap.String("actual", string(actualScope)),
					zap.String("user_id", GetJWTUserID(c)),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_DATA_SCOPE",
					"message": "You don't have sufficient data access for this operation",
				},
			})
			return
		}

		c.Next()
	}
}

// meetsMinimumScope checks if actualScope meets or exceeds minScope
func meetsMinimumScope(actualScope, minScope datascope.ScopeType) bool {
	scopeLevels := map[datascope.ScopeType]int{
		datascope.ScopeNone: 0,
		datascope.ScopeSelf: 10,
		datascope.ScopeAll:  100,
	}

	return scopeLevels[actualScope] >= scopeLevels[minScope]
}
