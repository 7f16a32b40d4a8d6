package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/peopledesk/backend/internal/domain/identity"
	"github.com/peopledesk/backend/internal/infrastructure/persistence/datascope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoleRepository implements identity.RoleRepository for testing
type mockRoleRepository struct {
	roles       map[uuid.UUID]*identity.Role
	findByIDsFn func(ctx context.Context, ids []uuid.UUID) ([]*identity.Role, error)
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{
		roles: make(map[uuid.UUID]*identity.Role),
	}
}

func (m *mockRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepository) Update(ctx context.Context, role *identity.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.roles, id)
	return nil
}

func (m *mockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	if role, ok := m.roles[id]; ok {
		return role, nil
	}
	return nil, nil
}

func (m *mockRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Role, error) {
	if m.findByIDsFn != nil {
		return m.findByIDsFn(ctx, ids)
	}
	var result []*identity.Role
	for _, id := range ids {
		if role, ok := m.roles[id]; ok {
			result = append(result, role)
		}
	}
	return result, nil
}

func (m *mockRoleRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*identity.Role, error) {
	for _, role := range m.roles {
		if role.TenantID == tenantID && role.Code == code {
			return role, nil
		}
	}
	return nil, nil
}

func (m *mockRoleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter *identity.RoleFilter) ([]*identity.Role, error) {
	var result []*identity.Role
	for _, role := range m.roles {
		if role.TenantID == tenantID {
			result = append(result, role)
		}
	}
	return result, nil
}

func (m *mockRoleRepository) Count(ctx context.Context, tenantID uuid.UUID, filter *identity.RoleFilter) (int64, error) {
	count := int64(0)
	for _, role := range m.roles {
		if role.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *mockRoleRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	for _, role := range m.roles {
		if role.TenantID == tenantID && role.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRoleRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	_, exists := m.roles[id]
	return exists, nil
}

func (m *mockRoleRepository) FindSystemRoles(ctx context.Context, tenantID uuid.UUID) ([]*identity.Role, error) {
	var result []*identity.Role
	for _, role := range m.roles {
		if role.TenantID == tenantID && role.IsSystemRole {
			result = append(result, role)
		}
	}
	return result, nil
}

func (m *mockRoleRepository) SavePermissions(ctx context.Context, role *identity.Role) error {
	return nil
}

func (m *mockRoleRepository) LoadPermissions(ctx context.Context, role *identity.Role) error {
	return nil
}

func (m *mockRoleRepository) FindUsersWithRole(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *mockRoleRepository) CountUsersWithRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	return 0, nil
}

func (m *mockRoleRepository) FindRolesWithPermission(ctx context.Context, tenantID uuid.UUID, permissionCode string) ([]*identity.Role, error) {
	return nil, nil
}

func (m *mockRoleRepository) GetAllPermissionCodes(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	return nil, nil
}

// mockUserRepoForScope implements just enough of identity.UserRepository
// for employee ID resolution
type mockUserRepoForScope struct {
	identity.UserRepository
	users map[uuid.UUID]*identity.User
}

func (m *mockUserRepoForScope) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, nil
}

func roleGranting(t *testing.T, tenantID uuid.UUID, code, name string, permCodes ...string) *identity.Role {
	t.Helper()
	role, err := identity.NewRole(tenantID, code, name)
	require.NoError(t, err)
	for _, pc := range permCodes {
		require.NoError(t, role.GrantPermissionByCode(pc))
	}
	return role
}

func TestDataScopeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("skips configured paths", func(t *testing.T) {
		mockRepo := newMockRoleRepository()
		middleware := DataScopeMiddlewareWithConfig(DataScopeMiddlewareConfig{
			RoleRepository: mockRepo,
			SkipPaths:      []string{"/health"},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

		middleware(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, GetDataScopeFilter(c))
	})

	t.Run("skips configured path prefixes", func(t *testing.T) {
		mockRepo := newMockRoleRepository()
		middleware := DataScopeMiddlewareWithConfig(DataScopeMiddlewareConfig{
			RoleRepository:   mockRepo,
			SkipPathPrefixes: []string{"/swagger"},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)

		middleware(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("continues without roles in context", func(t *testing.T) {
		mockRepo := newMockRoleRepository()
		middleware := DataScopeMiddleware(mockRepo)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/hr/leave-requests", nil)

		middleware(c)

		// No error, just continues
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("derives ownership scopes from role grants", func(t *testing.T) {
		mockRepo := newMockRoleRepository()

		role := roleGranting(t, tenantID, "STAFF", "Staff", "leave_request:read_own")
		_ = mockRepo.Create(context.Background(), role)

		middleware := DataScopeMiddleware(mockRepo)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/hr/leave-requests", nil)

		// Set JWT context values
		c.Set(JWTTenantIDKey, tenantID.String())
		c.Set(JWTUserIDKey, userID.String())
		c.Set(JWTRoleIDsKey, []string{role.ID.String()})

		middleware(c)

		filter := GetDataScopeFilter(c)
		require.NotNil(t, filter)
		assert.Equal(t, datascope.ScopeSelf, filter.GetScopeType("leave_request"))
	})

	t.Run("widest grant across roles wins", func(t *testing.T) {
		mockRepo := newMockRoleRepository()

		role1 := roleGranting(t, tenantID, "STAFF", "Staff", "leave_request:read_own")
		_ = mockRepo.Create(context.Background(), role1)

		role2 := roleGranting(t, tenantID, "HR_MANAGER", "HR Manager", "leave_request:read")
		_ = mockRepo.Create(context.Background(), role2)

		middleware := DataScopeMiddleware(mockRepo)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/hr/leave-requests", nil)

		c.Set(JWTTenantIDKey, tenantID.String())
		c.Set(JWTUserIDKey, userID.String())
		c.Set(JWTRoleIDsKey, []string{role1.ID.String(), role2.ID.String()})

		middleware(c)

		filter := GetDataScopeFilter(c)
		require.NotNil(t, filter)
		assert.Equal(t, datascope.ScopeAll, filter.GetScopeType("leave_request"))
	})

	t.Run("stores roles in context", func(t *testing.T) {
		mockRepo := newMockRoleRepository()

		role := roleGranting(t, tenantID, "STAFF", "Staff", "ticket:read_own")
		_ = mockRepo.Create(context.Background(), role)

		middleware := DataScopeMiddleware(mockRepo)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/support/tickets", nil)

		c.Set(JWTTenantIDKey, tenantID.String())
		c.Set(JWTUserIDKey, userID.String())
		c.Set(JWTRoleIDsKey, []string{role.ID.String()})

		middleware(c)

		roles := GetUserRoles(c)
		require.Len(t, roles, 1)
		assert.Equal(t, role.Code, roles[0].Code)
	})

	t.Run("filters roles by tenant ID", func(t *testing.T) {
		mockRepo := newMockRoleRepository()
		otherTenantID := uuid.New()

		// Role belongs to a different tenant
		role := roleGranting(t, otherTenantID, "STAFF", "Staff", "leave_request:read_own")
		_ = mockRepo.Create(context.Background(), role)

		middleware := DataScopeMiddleware(mockRepo)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/hr/leave-requests", nil)

		c.Set(JWTTenantIDKey, tenantID.String())
		c.Set(JWTUserIDKey, userID.String())
		c.Set(JWTRoleIDsKey, []string{role.ID.String()})

		middleware(c)

		roles := GetUserRoles(c)
		assert.Empty(t, roles)
	})

	t.Run("resolves linked employee ID into context", func(t *testing.T) {
		mockRepo := newMockRoleRepository()
		role := roleGranting(t, tenantID, "STAFF", "Staff", "payslip:read_own")
		_ = mockRepo.Create(context.Background(), role)

		employeeID := uuid.New()
		user, err := identity.NewUser(tenantID, "staff", "Password1!")
		require.NoError(t, err)
		user.ID = userID
		require.NoError(t, user.LinkEmployee(employeeID))

		middleware := DataScopeMiddlewareWithConfig(DataScopeMiddlewareConfig{
			RoleRepository: mockRepo,
			UserRepository: &mockUserRepoForScope{users: map[uuid.UUID]*identity.User{userID: user}},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/hr/payslips", nil)

		c.Set(JWTTenantIDKey, tenantID.String())
		c.Set(JWTUserIDKey, userID.String())
		c.Set(JWTRoleIDsKey, []string{role.ID.String()})

		middleware(c)

		got, ok := c.Request.Context().Value(datascope.EmployeeIDKey).(uuid.UUID)
		require.True(t, ok)
		assert.Equal(t, employeeID, got)
	})
}

func TestGetDataScopeFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns nil when no filter set", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		filter := GetDataScopeFilter(c)
		assert.Nil(t, filter)
	})

	t.Run("returns filter when set", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		ctx := context.Background()
		expectedFilter := datascope.NewFilter(ctx, []identity.Role{})
		c.Set(DataScopeFilterKey, expectedFilter)

		filter := GetDataScopeFilter(c)
		assert.Equal(t, expectedFilter, filter)
	})

	t.Run("returns nil for wrong type", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Set(DataScopeFilterKey, "not a filter")

		filter := GetDataScopeFilter(c)
		assert.Nil(t, filter)
	})
}

func TestGetUserRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.New()

	t.Run("returns nil when no roles set", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		roles := GetUserRoles(c)
		assert.Nil(t, roles)
	})

	t.Run("returns roles when set", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		role, _ := identity.NewRole(tenantID, "HR_MANAGER", "HR Manager")
		c.Set(UserRolesKey, []identity.Role{*role})

		roles := GetUserRoles(c)
		require.Len(t, roles, 1)
		assert.Equal(t, "HR_MANAGER", roles[0].Code)
	})
}

func TestRequireDataScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenantID := uuid.New()

	t.Run("allows access when no filter (no restrictions)", func(t *testing.T) {
		middleware := RequireDataScope("leave_request", datascope.ScopeAll, nil)

		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)

		called := false
		r.GET("/test", middleware, func(c *gin.Context) {
			called = true
			c.Status(http.StatusOK)
		})

		c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, c.Request)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("allows access when scope meets requirement", func(t *testing.T) {
		middleware := RequireDataScope("leave_request", datascope.ScopeSelf, nil)

		role := roleGranting(t, tenantID, "HR_MANAGER", "HR Manager", "leave_request:read")

		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)

		filter := datascope.NewFilter(context.Background(), []identity.Role{*role})

		called := false
		r.GET("/test", func(c *gin.Context) {
			c.Set(DataScopeFilterKey, filter)
			c.Next()
		}, middleware, func(c *gin.Context) {
			called = true
			c.Status(http.StatusOK)
		})

		c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, c.Request)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("denies access when scope insufficient", func(t *testing.T) {
		middleware := RequireDataScope("leave_request", datascope.ScopeAll, nil)

		role := roleGranting(t, tenantID, "STAFF", "Staff", "leave_request:read_own")

		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)

		filter := datascope.NewFilter(context.Background(), []identity.Role{*role})

		called := false
		r.GET("/test", func(c *gin.Context) {
			c.Set(DataScopeFilterKey, filter)
			c.Next()
		}, middleware, func(c *gin.Context) {
			called = true
			c.Status(http.StatusOK)
		})

		c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
		r.ServeHTTP(w, c.Request)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestMeetsMinimumScope(t *testing.T) {
	testCases := []struct {
		name     string
		actual   datascope.ScopeType
		min      datascope.ScopeType
		expected bool
	}{
		{"ALL meets ALL", datascope.ScopeAll, datascope.ScopeAll, true},
		{"ALL meets SELF", datascope.ScopeAll, datascope.ScopeSelf, true},
		{"SELF meets SELF", datascope.ScopeSelf, datascope.ScopeSelf, true},
		{"SELF meets NONE", datascope.ScopeSelf, datascope.ScopeNone, true},
		{"SELF does not meet ALL", datascope.ScopeSelf, datascope.ScopeAll, false},
		{"NONE does not meet SELF", datascope.ScopeNone, datascope.ScopeSelf, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := meetsMinimumScope(tc.actual, tc.min)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestDefaultDataScopeConfig(t *testing.T) {
	mockRepo := newMockRoleRepository()
	config := DefaultDataScopeConfig(mockRepo)

	assert.Equal(t, mockRepo, config.RoleRepository)
	assert.Contains(t, config.SkipPaths, "/health")
	assert.Contains(t, config.SkipPaths, "/api/v1/auth/login")
	assert.Contains(t, config.SkipPathPrefixes, "/swagger")
}
