// This file contains security penetration tests for the PeopleDesk backend.
// Tests cover:
// - Penetration testing (IDOR, privilege escalation, session management)
// - Authentication security (brute force, token manipulation, session fixation)
// - Data security (sensitive data exposure, cross-tenant access, data integrity)
package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	identityapp "github.com/peopledesk/backend/internal/application/identity"
	"github.com/peopledesk/backend/internal/domain/crm"
	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/identity"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/infrastructure/auth"
	"github.com/peopledesk/backend/internal/infrastructure/config"
	"github.com/peopledesk/backend/internal/infrastructure/persistence"
	"github.com/peopledesk/backend/internal/interfaces/http/handler"
	"github.com/peopledesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// Test Infrastructure
// ============================================================================

// PenetrationTestServer provides a comprehensive test environment for penetration testing
type PenetrationTestServer struct {
	DB           *TestDB
	Engine       *gin.Engine
	TenantRepo   *persistence.GormTenantRepository
	UserRepo     *persistence.GormUserRepository
	RoleRepo     *persistence.GormRoleRepository
	EmployeeRepo *persistence.GormEmployeeRepository
	CustomerRepo *persistence.GormCustomerRepository
	AuthService  *identityapp.AuthService
	JWTService   *auth.JWTService
}

// NewPenetrationTestServer creates a new test server for penetration testing
func NewPenetrationTestServer(t *testing.T) *PenetrationTestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(testDB.DB)
	userRepo := persistence.NewGormUserRepository(testDB.DB)
	roleRepo := persistence.NewGormRoleRepository(testDB.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(testDB.DB)
	customerRepo := persistence.NewGormCustomerRepository(testDB.DB)

	// Initialize JWT service
	jwtConfig := config.JWTConfig{
		Secret:                 "test-secret-key-for-pentest-1234567890",
		RefreshSecret:          "test-refresh-secret-key-for-pentest-12345",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "peopledesk-pentest",
		MaxRefreshCount:        10,
	}
	jwtService := auth.NewJWTService(jwtConfig)

	// Initialize auth service with strict settings
	authConfig := identityapp.AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
	logger := zap.NewNop()
	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, auth.NewInMemoryTokenBlacklist(), authConfig, logger)

	// Cookie config for the refresh token cookie
	cookieConfig := config.CookieConfig{
		Domain:   "",
		Path:     "/",
		Secure:   false,
		SameSite: "lax",
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cookieConfig, jwtConfig)

	// Setup engine with security middleware
	engine := gin.New()
	engine.Use(middleware.Secure())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.BodyLimit(1024 * 1024))

	// Setup routes
	api := engine.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.RefreshToken)

	// Protected routes with various permission requirements
	protectedAPI := api.Group("")
	protectedAPI.Use(middleware.JWTAuthMiddleware(jwtService))

	// Employee endpoints (for IDOR testing)
	protectedAPI.GET("/employees/:employee_id", func(c *gin.Context) {
		employeeID := c.Param("employee_id")
		// Simulate fetching an employee - in real scenario this would check tenant_id
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"id": employeeID, "name": "Test Employee"},
		})
	})

	// Customer endpoints with tenant scope
	protectedAPI.GET("/customers/:customer_id", func(c *gin.Context) {
		customerID := c.Param("customer_id")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"id": customerID, "name": "Test Customer"},
		})
	})

	// Admin-only endpoint
	protectedAPI.GET("/admin/users", middleware.RequirePermission("user:admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{}})
	})

	protectedAPI.DELETE("/admin/users/:user_id", middleware.RequirePermission("user:delete"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "deleted"})
	})

	// Sensitive data endpoint
	protectedAPI.GET("/me/sensitive", func(c *gin.Context) {
		// Should never return sensitive data like passwords
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"id":       c.GetString("user_id"),
				"username": c.GetString("username"),
				// password should NEVER be here
			},
		})
	})

	return &PenetrationTestServer{
		DB:           testDB,
		Engine:       engine,
		TenantRepo:   tenantRepo,
		UserRepo:     userRepo,
		RoleRepo:     roleRepo,
		EmployeeRepo: employeeRepo,
		CustomerRepo: customerRepo,
		AuthService:  authService,
		JWTService:   jwtService,
	}
}

// Request makes an HTTP request to the test server
func (ts *PenetrationTestServer) Request(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// CreateTenant creates a test tenant
func (ts *PenetrationTestServer) CreateTenant(t *testing.T, code, name string) *identity.Tenant {
	t.Helper()
	ctx := context.Background()

	tenant, err := identity.NewTenant(code, name)
	require.NoError(t, err)

	err = ts.TenantRepo.Save(ctx, tenant)
	require.NoError(t, err)

	return tenant
}

// CreateUser creates a test user
func (ts *PenetrationTestServer) CreateUser(t *testing.T, tenantID uuid.UUID, username, password string, roleIDs ...uuid.UUID) *identity.User {
	t.Helper()
	ctx := context.Background()

	user, err := identity.NewActiveUser(tenantID, username, password)
	require.NoError(t, err)

	email := fmt.Sprintf("%s_%s@pentest.local", username, uuid.New().String()[:8])
	err = user.SetEmail(email)
	require.NoError(t, err)

	if len(roleIDs) > 0 {
		err = user.SetRoles(roleIDs)
		require.NoError(t, err)
	}

	err = ts.UserRepo.Create(ctx, user)
	require.NoError(t, err)

	if len(roleIDs) > 0 {
		err = ts.UserRepo.SaveUserRoles(ctx, user)
		require.NoError(t, err)
	}

	return user
}

// CreateRole creates a test role with permissions
func (ts *PenetrationTestServer) CreateRole(t *testing.T, tenantID uuid.UUID, code, name string, permissions ...string) *identity.Role {
	t.Helper()
	ctx := context.Background()

	role, err := identity.NewRole(tenantID, code, name)
	require.NoError(t, err)

	for _, permCode := range permissions {
		perm, err := identity.NewPermissionFromCode(permCode)
		require.NoError(t, err)
		err = role.GrantPermission(*perm)
		require.NoError(t, err)
	}

	err = ts.RoleRepo.Create(ctx, role)
	require.NoError(t, err)

	if len(permissions) > 0 {
		err = ts.RoleRepo.SavePermissions(ctx, role)
		require.NoError(t, err)
	}

	return role
}

// Login performs login and returns the access token
func (ts *PenetrationTestServer) Login(t *testing.T, username, password string) string {
	t.Helper()

	resp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)

	require.Equal(t, http.StatusOK, resp.Code, "Login failed: %s", resp.Body.String())

	var result map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &result)
	require.NoError(t, err)

	data := result["data"].(map[string]any)
	token := data["token"].(map[string]any)
	return token["access_token"].(string)
}

// ============================================================================
// PENETRATION TESTS - IDOR (Insecure Direct Object Reference)
// ============================================================================

func TestPenetration_IDOR(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping penetration test in short mode")
	}

	ts := NewPenetrationTestServer(t)
	ctx := context.Background()

	// Create two tenants
	tenantA := ts.CreateTenant(t, "TENANT_IDOR_A", "IDOR Test Tenant A")
	tenantB := ts.CreateTenant(t, "TENANT_IDOR_B", "IDOR Test Tenant B")

	// Create roles
	roleA := ts.CreateRole(t, tenantA.ID, "USER_A", "User Role A", "employee:read", "customer:read")
	roleB := ts.CreateRole(t, tenantB.ID, "USER_B", "User Role B", "employee:read", "customer:read")

	// Create users
	userA := ts.CreateUser(t, tenantA.ID, "user_idor_a", "TestPass123", roleA.ID)
	userB := ts.CreateUser(t, tenantB.ID, "user_idor_b", "TestPass123", roleB.ID)
	_ = userA
	_ = userB

	// Create employees in each tenant
	hireDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	employeeA, _ := hr.NewEmployee(tenantA.ID, "EMP-IDOR-A", "Ada", "Lovelace", "emp-idor-a@pentest.local", hireDate)
	employeeB, _ := hr.NewEmployee(tenantB.ID, "EMP-IDOR-B", "Alan", "Turing", "emp-idor-b@pentest.local", hireDate)
	require.NoError(t, ts.EmployeeRepo.Save(ctx, employeeA))
	require.NoError(t, ts.EmployeeRepo.Save(ctx, employeeB))

	// Create customers in each tenant
	customerA, _ := crm.NewCustomer(tenantA.ID, "CUST-IDOR-A", "Customer A", crm.CustomerTypeIndividual)
	customerB, _ := crm.NewCustomer(tenantB.ID, "CUST-IDOR-B", "Customer B", crm.CustomerTypeIndividual)
	require.NoError(t, ts.CustomerRepo.Save(ctx, customerA))
	require.NoError(t, ts.CustomerRepo.Save(ctx, customerB))

	tokenA := ts.Login(t, "user_idor_a", "TestPass123")
	tokenB := ts.Login(t, "user_idor_b", "TestPass123")

	t.Run("user_cannot_access_other_tenant_employee_via_direct_id", func(t *testing.T) {
		// User A tries to access Employee B directly by ID
		// This tests IDOR vulnerability where attacker guesses/enumerates IDs

		// In a properly secured system, this should return 404 or 403
		// The employee exists but belongs to another tenant
		foundEmployee, err := ts.EmployeeRepo.FindByIDForTenant(ctx, tenantA.ID, employeeB.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound, "Should not find other tenant's employee")
		assert.Nil(t, foundEmployee)
	})

	t.Run("user_cannot_access_other_tenant_customer_via_direct_id", func(t *testing.T) {
		// User A tries to access Customer B directly by ID
		foundCustomer, err := ts.CustomerRepo.FindByIDForTenant(ctx, tenantA.ID, customerB.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound, "Should not find other tenant's customer")
		assert.Nil(t, foundCustomer)
	})

	t.Run("sequential_id_enumeration_does_not_leak_data", func(t *testing.T) {
		// Attempt to enumerate employees by trying random UUIDs
		// This should not reveal any information about other tenants
		for i := 0; i < 10; i++ {
			randomID := uuid.New()
			foundEmployee, err := ts.EmployeeRepo.FindByIDForTenant(ctx, tenantA.ID, randomID)
			assert.ErrorIs(t, err, shared.ErrNotFound)
			assert.Nil(t, foundEmployee)
		}
	})

	t.Run("token_tenant_claims_are_verified", func(t *testing.T) {
		// Verify that tokens contain correct tenant claims
		// and that they cannot be manipulated

		// Decode token A to verify tenant claim
		parts := strings.Split(tokenA, ".")
		require.Len(t, parts, 3)

		payloadBytes, err := decodeBase64URLPentest(parts[1])
		require.NoError(t, err)

		var claims map[string]any
		err = json.Unmarshal(payloadBytes, &claims)
		require.NoError(t, err)

		assert.Equal(t, tenantA.ID.String(), claims["tenant_id"])
	})

	t.Run("token_B_cannot_access_tenant_A_data", func(t *testing.T) {
		// Even with a valid token, cross-tenant access should be blocked
		// This verifies token tenant_id is enforced

		// User B's token should not allow access to Tenant A's data
		// The repository layer should enforce tenant isolation
		_, err := ts.EmployeeRepo.FindByIDForTenant(ctx, tenantB.ID, employeeA.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	_ = tokenB // Used in future tests
}

// ============================================================================
// PENETRATION TESTS - Privilege Escalation
// ============================================================================

func TestPenetration_PrivilegeEscalation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping penetration test in short mode")
	}

	ts := NewPenetrationTestServer(t)

	// Create tenant
	tenant := ts.CreateTenant(t, "TENANT_PRIV", "Privilege Test Tenant")

	// Create roles with different privilege levels
	userRole := ts.CreateRole(t, tenant.ID, "NORMAL_USER", "Normal User", "employee:read")
	adminRole := ts.CreateRole(t, tenant.ID, "ADMIN", "Administrator", "employee:read", "employee:write", "user:admin", "user:delete")

	// Create users
	normalUser := ts.CreateUser(t, tenant.ID, "normal_user", "TestPass123", userRole.ID)
	adminUser := ts.CreateUser(t, tenant.ID, "admin_user", "AdminPass123", adminRole.ID)
	_ = normalUser
	_ = adminUser

	normalToken := ts.Login(t, "normal_user", "TestPass123")
	adminToken := ts.Login(t, "admin_user", "AdminPass123")

	t.Run("normal_user_cannot_access_admin_endpoints", func(t *testing.T) {
		// Normal user tries to access admin-only endpoint
		resp := ts.Request("GET", "/api/v1/admin/users", nil, map[string]string{
			"Authorization": "Bearer " + normalToken,
		})

		assert.Equal(t, http.StatusForbidden, resp.Code,
			"Normal user should not access admin endpoints")
	})

	t.Run("normal_user_cannot_delete_users", func(t *testing.T) {
		// Normal user tries to delete another user
		resp := ts.Request("DELETE", "/api/v1/admin/users/"+uuid.New().String(), nil, map[string]string{
			"Authorization": "Bearer " + normalToken,
		})

		assert.Equal(t, http.StatusForbidden, resp.Code,
			"Normal user should not be able to delete users")
	})

	t.Run("admin_can_access_admin_endpoints", func(t *testing.T) {
		// Admin user should have access
		resp := ts.Request("GET", "/api/v1/admin/users", nil, map[string]string{
			"Authorization": "Bearer " + adminToken,
		})

		assert.Equal(t, http.StatusOK, resp.Code,
			"Admin user should access admin endpoints")
	})

	t.Run("modifying_token_role_does_not_grant_access", func(t *testing.T) {
		// Attempt to modify JWT payload to add admin role
		// This should fail signature verification

		parts := strings.Split(normalToken, ".")
		require.Len(t, parts, 3)

		// Decode payload
		payloadBytes, _ := decodeBase64URLPentest(parts[1])
		var claims map[string]any
		json.Unmarshal(payloadBytes, &claims)

		// Try to add admin permission
		claims["permissions"] = []string{"employee:read", "user:admin", "user:delete"}

		// Re-encode payload
		modifiedPayload, _ := json.Marshal(claims)
		modifiedPayloadB64 := base64.RawURLEncoding.EncodeToString(modifiedPayload)

		// Create tampered token (keeping original signature)
		tamperedToken := parts[0] + "." + modifiedPayloadB64 + "." + parts[2]

		// Attempt to use tampered token
		resp := ts.Request("GET", "/api/v1/admin/users", nil, map[string]string{
			"Authorization": "Bearer " + tamperedToken,
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code,
			"Tampered token should be rejected")
	})

	t.Run("horizontal_privilege_escalation_blocked", func(t *testing.T) {
		// Create another normal user
		otherUser := ts.CreateUser(t, tenant.ID, "other_user", "OtherPass123", userRole.ID)

		// Normal user tries to access/modify other user's data
		// This is horizontal privilege escalation
		resp := ts.Request("DELETE", "/api/v1/admin/users/"+otherUser.ID.String(), nil, map[string]string{
			"Authorization": "Bearer " + normalToken,
		})

		assert.Equal(t, http.StatusForbidden, resp.Code,
			"User should not be able to affect other users")
	})
}

// ============================================================================
// PENETRATION TESTS - Authentication Security
// ============================================================================

func TestPenetration_AuthenticationSecurity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping penetration test in short mode")
	}

	ts := NewPenetrationTestServer(t)

	// Create tenant and user
	tenant := ts.CreateTenant(t, "TENANT_AUTH", "Auth Test Tenant")
	role := ts.CreateRole(t, tenant.ID, "USER_ROLE", "User Role", "employee:read")
	user := ts.CreateUser(t, tenant.ID, "auth_test_user", "SecurePass123!", role.ID)
	_ = user

	t.Run("brute_force_protection_locks_account", func(t *testing.T) {
		// Create a fresh user for this test
		bruteUser := ts.CreateUser(t, tenant.ID, "brute_force_user", "RealPass123!", role.ID)
		_ = bruteUser

		// Attempt multiple failed logins
		failedAttempts := 0
		for i := 0; i < 6; i++ {
			resp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
				"username": "brute_force_user",
				"password": "WrongPassword" + fmt.Sprint(i),
			}, nil)

			if resp.Code == http.StatusForbidden {
				// Account locked
				t.Logf("Account locked after %d failed attempts", i+1)
				break
			} else if resp.Code == http.StatusUnauthorized {
				failedAttempts++
			}
		}

		// After lockout, even correct password should fail
		resp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
			"username": "brute_force_user",
			"password": "RealPass123!",
		}, nil)

		assert.Equal(t, http.StatusForbidden, resp.Code,
			"Locked account should reject even correct password")

		var result map[string]any
		json.Unmarshal(resp.Body.Bytes(), &result)
		errInfo := result["error"].(map[string]any)
		assert.Equal(t, "ERR_FORBIDDEN", errInfo["code"])
	})

	t.Run("concurrent_brute_force_is_detected", func(t *testing.T) {
		// Create a fresh user
		concurrentUser := ts.CreateUser(t, tenant.ID, "concurrent_brute_user", "RealPass456!", role.ID)
		_ = concurrentUser

		// Launch concurrent login attempts
		var wg sync.WaitGroup
		var lockedCount int32
		var failedCount int32

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(attempt int) {
				defer wg.Done()

				resp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
					"username": "concurrent_brute_user",
					"password": "WrongPass" + fmt.Sprint(attempt),
				}, nil)

				if resp.Code == http.StatusForbidden {
					atomic.AddInt32(&lockedCount, 1)
				} else if resp.Code == http.StatusUnauthorized {
					atomic.AddInt32(&failedCount, 1)
				}
			}(i)
		}

		wg.Wait()

		// Either account should be locked, or we got many failed attempts
		// Note: Due to race conditions, lock detection may vary
		t.Logf("Concurrent test results: locked=%d, failed=%d", lockedCount, failedCount)

		// The system should track failed attempts - we verify at least some requests were processed
		totalProcessed := lockedCount + failedCount
		assert.Greater(t, totalProcessed, int32(0), "System should process concurrent login attempts")
	})

	t.Run("account_enumeration_prevention", func(t *testing.T) {
		// Try to enumerate accounts by checking response differences
		// Both existing and non-existing accounts should return similar errors

		existingResp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
			"username": "auth_test_user",
			"password": "WrongPassword123",
		}, nil)

		nonExistingResp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
			"username": "definitely_not_exists_user_12345",
			"password": "WrongPassword123",
		}, nil)

		// Both should return 401 (not 404 for non-existing)
		assert.Equal(t, http.StatusUnauthorized, existingResp.Code)
		assert.Equal(t, http.StatusUnauthorized, nonExistingResp.Code)

		// Response bodies should be similar (not revealing existence)
		var existingResult, nonExistingResult map[string]any
		json.Unmarshal(existingResp.Body.Bytes(), &existingResult)
		json.Unmarshal(nonExistingResp.Body.Bytes(), &nonExistingResult)

		// Error codes should be the same
		existingErr := existingResult["error"].(map[string]any)
		nonExistingErr := nonExistingResult["error"].(map[string]any)
		assert.Equal(t, existingErr["code"], nonExistingErr["code"],
			"Error codes should be identical to prevent enumeration")
	})

	t.Run("token_replay_after_logout_is_prevented", func(t *testing.T) {
		// Note: This test depends on the implementation of token blacklisting
		// If not implemented, this documents the expected behavior

		token := ts.Login(t, "auth_test_user", "SecurePass123!")

		// Verify token works
		resp1 := ts.Request("GET", "/api/v1/employees/test-id", nil, map[string]string{
			"Authorization": "Bearer " + token,
		})
		assert.Equal(t, http.StatusOK, resp1.Code)

		// The token should continue to work until expiration
		// (Server-side token invalidation requires additional infrastructure like Redis)
		// This test documents the current behavior
		t.Log("Note: Token replay prevention requires server-side token blacklisting")
	})

	t.Run("jwt_none_algorithm_attack_is_blocked", func(t *testing.T) {
		// Create a token with "none" algorithm (common JWT attack)
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","tenant_id":"` + tenant.ID.String() + `","permissions":["user:admin"]}`))
		noneToken := header + "." + payload + "."

		resp := ts.Request("GET", "/api/v1/admin/users", nil, map[string]string{
			"Authorization": "Bearer " + noneToken,
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code,
			"JWT with 'none' algorithm should be rejected")
	})

	t.Run("jwt_algorithm_confusion_attack_is_blocked", func(t *testing.T) {
		// Try to change algorithm from HS256 to RS256 or vice versa
		// This is a common attack where the secret key is used as a public key

		token := ts.Login(t, "auth_test_user", "SecurePass123!")
		parts := strings.Split(token, ".")

		// Modify header to use different algorithm
		newHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
		tamperedToken := newHeader + "." + parts[1] + "." + parts[2]

		resp := ts.Request("GET", "/api/v1/employees/test-id", nil, map[string]string{
			"Authorization": "Bearer " + tamperedToken,
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code,
			"JWT with changed algorithm should be rejected")
	})

	t.Run("expired_token_is_rejected", func(t *testing.T) {
		// Create a short-lived JWT service for testing
		shortConfig := config.JWTConfig{
			Secret:                 "test-secret-key-for-pentest-1234567890",
			RefreshSecret:          "test-refresh-secret-key-for-pentest-12345",
			AccessTokenExpiration:  1 * time.Millisecond,
			RefreshTokenExpiration: 1 * time.Millisecond,
			Issuer:                 "peopledesk-pentest",
			MaxRefreshCount:        10,
		}
		shortJWTService := auth.NewJWTService(shortConfig)

		// Generate token
		tokenInput := auth.GenerateTokenInput{
			TenantID:    tenant.ID,
			UserID:      uuid.New(),
			Username:    "expired_test",
			RoleIDs:     []uuid.UUID{},
			Permissions: []string{"employee:read"},
		}
		tokenPair, _ := shortJWTService.GenerateTokenPair(tokenInput)

		// Wait for expiration
		time.Sleep(10 * time.Millisecond)

		resp := ts.Request("GET", "/api/v1/employees/test-id", nil, map[string]string{
			"Authorization": "Bearer " + tokenPair.AccessToken,
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code,
			"Expired token should be rejected")
	})
}

// ============================================================================
// PENETRATION TESTS - Data Security
// ============================================================================

func TestPenetration_DataSecurity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping penetration test in short mode")
	}

	ts := NewPenetrationTestServer(t)

	// Create tenant and user
	tenant := ts.CreateTenant(t, "TENANT_DATA", "Data Security Tenant")
	role := ts.CreateRole(t, tenant.ID, "DATA_USER", "Data User", "employee:read")
	user := ts.CreateUser(t, tenant.ID, "data_security_user", "DataPass123!", role.ID)
	_ = user

	token := ts.Login(t, "data_security_user", "DataPass123!")

	t.Run("password_never_exposed_in_api_responses", func(t *testing.T) {
		// Login response should not contain password
		loginResp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
			"username": "data_security_user",
			"password": "DataPass123!",
		}, nil)

		responseBody := loginResp.Body.String()
		assert.NotContains(t, responseBody, "DataPass123!",
			"Password should never appear in response")
		assert.NotContains(t, strings.ToLower(responseBody), "\"password\"",
			"Password field should not exist in response")
	})

	t.Run("sensitive_endpoint_does_not_leak_internal_data", func(t *testing.T) {
		resp := ts.Request("GET", "/api/v1/me/sensitive", nil, map[string]string{
			"Authorization": "Bearer " + token,
		})

		responseBody := resp.Body.String()

		// Should not contain password hash or other sensitive data
		assert.NotContains(t, responseBody, "password")
		assert.NotContains(t, responseBody, "$2a$") // bcrypt hash prefix
		assert.NotContains(t, responseBody, "secret")
	})

	t.Run("error_messages_do_not_leak_stack_traces", func(t *testing.T) {
		// Send malformed request
		resp := ts.Request("POST", "/api/v1/auth/login", "not json", map[string]string{
			"Content-Type": "application/json",
		})

		responseBody := resp.Body.String()

		assert.NotContains(t, responseBody, "panic")
		assert.NotContains(t, responseBody, ".go:")
		assert.NotContains(t, responseBody, "goroutine")
		assert.NotContains(t, responseBody, "runtime error")
	})

	t.Run("sql_errors_do_not_leak_schema", func(t *testing.T) {
		resp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
			"username": "'; SELECT * FROM users; --",
			"password": "test",
		}, nil)

		responseBody := resp.Body.String()

		assert.NotContains(t, responseBody, "SELECT")
		assert.NotContains(t, responseBody, "FROM")
		assert.NotContains(t, responseBody, "users")
		assert.NotContains(t, responseBody, "column")
		assert.NotContains(t, responseBody, "table")
	})

	t.Run("jwt_does_not_contain_sensitive_data", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		payloadBytes, _ := decodeBase64URLPentest(parts[1])
		var claims map[string]any
		json.Unmarshal(payloadBytes, &claims)

		// JWT should not contain sensitive data
		assert.NotContains(t, claims, "password")
		assert.NotContains(t, claims, "email") // PII minimization
		assert.NotContains(t, claims, "phone")
		assert.NotContains(t, claims, "address")

		// Should contain necessary claims
		assert.Contains(t, claims, "sub")
		assert.Contains(t, claims, "tenant_id")
		assert.Contains(t, claims, "exp")
	})

	t.Run("cross_tenant_data_access_blocked", func(t *testing.T) {
		ctx := context.Background()

		// Create another tenant with data
		otherTenant := ts.CreateTenant(t, "TENANT_OTHER_DATA", "Other Data Tenant")
		otherEmployee, _ := hr.NewEmployee(otherTenant.ID, "EMP-OTHER", "Grace", "Hopper", "emp-other@pentest.local", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, ts.EmployeeRepo.Save(ctx, otherEmployee))

		// Current user should not be able to access other tenant's data
		foundEmployee, err := ts.EmployeeRepo.FindByIDForTenant(ctx, tenant.ID, otherEmployee.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, foundEmployee)
	})
}

// ============================================================================
// PENETRATION TESTS - Session Management
// ============================================================================

func TestPenetration_SessionManagement(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping penetration test in short mode")
	}

	ts := NewPenetrationTestServer(t)

	tenant := ts.CreateTenant(t, "TENANT_SESSION", "Session Test Tenant")
	role := ts.CreateRole(t, tenant.ID, "SESSION_USER", "Session User", "employee:read")
	user := ts.CreateUser(t, tenant.ID, "session_user", "SessionPass123!", role.ID)
	_ = user

	t.Run("session_fixation_prevention", func(t *testing.T) {
		// Login should create a new session, not accept pre-existing session ID

		// First login
		token1 := ts.Login(t, "session_user", "SessionPass123!")

		// Second login should generate different token
		token2 := ts.Login(t, "session_user", "SessionPass123!")

		// Tokens should be different (new session each login)
		assert.NotEqual(t, token1, token2,
			"Each login should generate a unique token")
	})

	t.Run("concurrent_sessions_are_independent", func(t *testing.T) {
		// Multiple concurrent sessions should be independent

		token1 := ts.Login(t, "session_user", "SessionPass123!")
		token2 := ts.Login(t, "session_user", "SessionPass123!")

		// Both tokens should work independently
		resp1 := ts.Request("GET", "/api/v1/employees/test", nil, map[string]string{
			"Authorization": "Bearer " + token1,
		})
		resp2 := ts.Request("GET", "/api/v1/employees/test", nil, map[string]string{
			"Authorization": "Bearer " + token2,
		})

		assert.Equal(t, http.StatusOK, resp1.Code)
		assert.Equal(t, http.StatusOK, resp2.Code)
	})

	t.Run("refresh_token_cannot_be_used_as_access_token", func(t *testing.T) {
		// Login to get the refresh token cookie
		loginResp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
			"username": "session_user",
			"password": "SessionPass123!",
		}, nil)

		var refreshToken string
		for _, cookie := range loginResp.Result().Cookies() {
			if cookie.Name == "refresh_token" {
				refreshToken = cookie.Value
				break
			}
		}
		require.NotEmpty(t, refreshToken, "refresh_token cookie should be set")

		// Try to use refresh token as access token
		resp := ts.Request("GET", "/api/v1/employees/test", nil, map[string]string{
			"Authorization": "Bearer " + refreshToken,
		})

		// Should fail - refresh token is not valid for API access
		assert.Equal(t, http.StatusUnauthorized, resp.Code,
			"Refresh token should not work as access token")
	})

	t.Run("access_token_cannot_be_used_for_refresh", func(t *testing.T) {
		token := ts.Login(t, "session_user", "SessionPass123!")

		// Try to use access token as the refresh cookie
		req := httptest.NewRequest("POST", "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: token})

		w := httptest.NewRecorder()
		ts.Engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code,
			"Access token should not work for refresh")
	})
}

// ============================================================================
// PENETRATION TESTS - Input Validation
// ============================================================================

func TestPenetration_InputValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping penetration test in short mode")
	}

	ts := NewPenetrationTestServer(t)

	tenant := ts.CreateTenant(t, "TENANT_INPUT", "Input Test Tenant")
	role := ts.CreateRole(t, tenant.ID, "INPUT_USER", "Input User", "employee:read")
	user := ts.CreateUser(t, tenant.ID, "input_user", "InputPass123!", role.ID)
	_ = user

	token := ts.Login(t, "input_user", "InputPass123!")

	t.Run("command_injection_in_path_params_blocked", func(t *testing.T) {
		// URL-encoded command injection payloads
		injectionPayloads := []struct {
			name    string
			payload string
		}{
			{"semicolon_ls", "%3B%20ls%20-la"},      // ; ls -la
			{"pipe_cat", "%7C%20cat%20etc%20passwd"}, // | cat etc passwd (no slashes to avoid routing issues)
			{"backtick_whoami", "%60whoami%60"},     // `whoami`
			{"dollar_id", "%24(id)"},               // $(id)
			{"ampersand_ls", "%26%20ls"},           // & ls
			{"crlf_ls", "%0a%0dls"},                // CRLF injection
		}

		for _, tc := range injectionPayloads {
			t.Run(tc.name, func(t *testing.T) {
				resp := ts.Request("GET", "/api/v1/employees/"+tc.payload, nil, map[string]string{
					"Authorization": "Bearer " + token,
				})

				// Should return 200 (found mock) or 404/400, not execute command or cause 500
				assert.True(t, resp.Code != http.StatusInternalServerError,
					"Command injection payload should not cause server error: %s (got %d)", tc.name, resp.Code)

				// Response should not contain command output
				body := resp.Body.String()
				assert.NotContains(t, body, "root:")
				assert.NotContains(t, body, "/bin/")
				assert.NotContains(t, body, "uid=")
			})
		}
	})

	t.Run("ldap_injection_blocked", func(t *testing.T) {
		ldapPayloads := []string{
			"*)(uid=*",
			"admin)(&)",
			"*)(objectClass=*",
		}

		for _, payload := range ldapPayloads {
			resp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
				"username": payload,
				"password": "test",
			}, nil)

			// Should return 400 (bad request due to invalid chars) or 401 (invalid credentials)
			// Either is acceptable - the key is it doesn't leak LDAP errors or execute injection
			assert.True(t, resp.Code == http.StatusUnauthorized || resp.Code == http.StatusBadRequest,
				"LDAP injection should be handled safely: %s (got %d)", payload, resp.Code)

			// Response should not contain LDAP-specific error messages
			body := resp.Body.String()
			assert.NotContains(t, body, "LDAP")
			assert.NotContains(t, body, "ldap")
			assert.NotContains(t, body, "DN")
		}
	})

	t.Run("xxe_injection_blocked", func(t *testing.T) {
		// XXE attempts through JSON (though less common)
		xxePayloads := []string{
			`{"name": "<!DOCTYPE foo [<!ENTITY xxe SYSTEM 'file:///etc/passwd'>]><foo>&xxe;</foo>"}`,
			`{"name": "<?xml version='1.0'?><!DOCTYPE foo [<!ENTITY xxe SYSTEM 'http://evil.com/'>]><foo>&xxe;</foo>"}`,
		}

		for _, payload := range xxePayloads {
			req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			w := httptest.NewRecorder()
			ts.Engine.ServeHTTP(w, req)

			// Should return 400 (bad JSON) not expose file contents
			body := w.Body.String()
			assert.NotContains(t, body, "root:")
			assert.NotContains(t, body, "/bin/bash")
		}
	})

	t.Run("header_injection_blocked", func(t *testing.T) {
		injectionHeaders := map[string]string{
			"X-Forwarded-For":   "127.0.0.1\r\nX-Injected: malicious",
			"X-Custom":          "value\r\nSet-Cookie: session=hijacked",
			"User-Agent":        "Mozilla\r\nX-Evil: header",
		}

		for headerName, headerValue := range injectionHeaders {
			resp := ts.Request("GET", "/api/v1/employees/test", nil, map[string]string{
				"Authorization": "Bearer " + token,
				headerName:      headerValue,
			})

			// Response should not contain injected headers
			assert.NotContains(t, resp.Header().Get("X-Injected"), "malicious")
			assert.NotContains(t, resp.Header().Get("X-Evil"), "header")
			assert.NotContains(t, resp.Header().Get("Set-Cookie"), "hijacked")
		}
	})

	t.Run("unicode_normalization_attacks_handled", func(t *testing.T) {
		unicodePayloads := []string{
			"adm\u0069n",           // Unicode homoglyph
			"admin\u200B",          // Zero-width space
			"\u0041\u0064min",      // Unicode A
			"adm\uFF49n",           // Fullwidth i
		}

		for _, payload := range unicodePayloads {
			resp := ts.Request("POST", "/api/v1/auth/login", map[string]string{
				"username": payload,
				"password": "test",
			}, nil)

			// Should return 400 (bad request due to unicode) or 401 (invalid credentials)
			// Either is acceptable - the key is it doesn't bypass authentication
			assert.True(t, resp.Code == http.StatusUnauthorized || resp.Code == http.StatusBadRequest,
				"Unicode payload should not bypass auth (got %d)", resp.Code)
		}
	})
}

// ============================================================================
// PENETRATION TESTS - Rate Limiting and DoS Prevention
// ============================================================================

func TestPenetration_RateLimitingAndDoS(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping penetration test in short mode")
	}

	ts := NewPenetrationTestServer(t)

	tenant := ts.CreateTenant(t, "TENANT_RATE", "Rate Limit Tenant")
	role := ts.CreateRole(t, tenant.ID, "RATE_USER", "Rate User", "employee:read")
	user := ts.CreateUser(t, tenant.ID, "rate_user", "RatePass123!", role.ID)
	_ = user

	token := ts.Login(t, "rate_user", "RatePass123!")

	t.Run("large_request_body_rejected", func(t *testing.T) {
		// Create a very large payload
		largeData := make([]byte, 2*1024*1024) // 2MB
		for i := range largeData {
			largeData[i] = 'a'
		}

		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBuffer(largeData))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		ts.Engine.ServeHTTP(w, req)

		// Should be rejected (413 or 400)
		assert.True(t, w.Code == http.StatusRequestEntityTooLarge || w.Code == http.StatusBadRequest,
			"Large request should be rejected, got %d", w.Code)
	})

	t.Run("slowloris_style_attack_headers_not_infinite", func(t *testing.T) {
		// Test that the server doesn't wait indefinitely for headers
		// This is more of a documentation test - actual slowloris protection
		// would be at the reverse proxy level

		// Send request with incomplete headers - should timeout or reject
		// In Go's http.Server, this is handled by ReadHeaderTimeout
		t.Log("Note: Slowloris protection typically handled by reverse proxy (nginx, etc.)")
	})

	t.Run("recursive_json_depth_limited", func(t *testing.T) {
		// Create deeply nested JSON
		depth := 1000
		nested := `{"a":`
		for i := 0; i < depth; i++ {
			nested += `{"a":`
		}
		nested += `"x"`
		for i := 0; i < depth+1; i++ {
			nested += `}`
		}

		req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(nested))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		ts.Engine.ServeHTTP(w, req)

		// Should return error, not stack overflow
		assert.True(t, w.Code == http.StatusBadRequest || w.Code == http.StatusUnauthorized,
			"Deep nested JSON should be handled safely")
	})

	t.Run("many_query_params_handled", func(t *testing.T) {
		// Create URL with many query parameters
		params := make([]string, 1000)
		for i := range params {
			params[i] = fmt.Sprintf("param%d=value%d", i, i)
		}
		url := "/api/v1/employees/test?" + strings.Join(params, "&")

		resp := ts.Request("GET", url, nil, map[string]string{
			"Authorization": "Bearer " + token,
		})

		// Should handle gracefully
		assert.True(t, resp.Code >= 200 && resp.Code < 500,
			"Many query params should be handled, got %d", resp.Code)
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

func decodeBase64URLPentest(s string) ([]byte, error) {
	// Add padding if necessary
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}

	// Replace URL-safe characters
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")

	return base64.StdEncoding.DecodeString(s)
}
