package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
	"github.com/peopledesk/backend/internal/infrastructure/persistence"
)

func newTestEmployee(t *testing.T, tenantID uuid.UUID, staffNumber string) *hr.Employee {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", staffNumber)
	employee, err := hr.NewEmployee(tenantID, staffNumber, "Test", "Employee", email, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return employee
}

// TestEmployeeRepository_Integration tests the EmployeeRepository against a real PostgreSQL database
func TestEmployeeRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormEmployeeRepository(testDB.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	testDB.CreateTestTenantWithUUID(tenantID)

	t.Run("Save and FindByID", func(t *testing.T) {
		employee := newTestEmployee(t, tenantID, "EMP-001")

		err := repo.Save(ctx, employee)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, employee.ID, found.ID)
		assert.Equal(t, "EMP-001", found.StaffNumber)
		assert.Equal(t, "emp-001@example.com", found.Email)
		assert.Equal(t, hr.EmployeeStatusActive, found.Status)
		assert.Equal(t, employee.TenantID, found.TenantID)
	})

	t.Run("FindByIDForTenant", func(t *testing.T) {
		employee := newTestEmployee(t, tenantID, "EMP-002")

		err := repo.Save(ctx, employee)
		require.NoError(t, err)

		found, err := repo.FindByIDForTenant(ctx, tenantID, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, employee.ID, found.ID)

		otherTenant := uuid.New()
		_, err = repo.FindByIDForTenant(ctx, otherTenant, employee.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindByStaffNumber", func(t *testing.T) {
		employee := newTestEmployee(t, tenantID, "EMP-003")

		err := repo.Save(ctx, employee)
		require.NoError(t, err)

		// Staff numbers are normalized to upper case on both write and lookup
		found, err := repo.FindByStaffNumber(ctx, tenantID, "emp-003")
		require.NoError(t, err)
		assert.Equal(t, "EMP-003", found.StaffNumber)
	})

	t.Run("Salary and assignment updates persist", func(t *testing.T) {
		employee := newTestEmployee(t, tenantID, "EMP-004")

		err := repo.Save(ctx, employee)
		require.NoError(t, err)

		err = employee.Assign("Engineering", "Senior Engineer")
		require.NoError(t, err)
		err = employee.SetSalary(decimal.NewFromInt(8500), valueobject.Currency("EUR"))
		require.NoError(t, err)

		err = repo.Save(ctx, employee)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, "Engineering", found.Department)
		assert.Equal(t, "Senior Engineer", found.JobTitle)
		assert.True(t, found.BaseSalary.Equal(decimal.NewFromInt(8500)))
		assert.Equal(t, valueobject.Currency("EUR"), found.SalaryCurrency)
	})

	t.Run("Termination and reinstatement", func(t *testing.T) {
		employee := newTestEmployee(t, tenantID, "EMP-005")

		err := repo.Save(ctx, employee)
		require.NoError(t, err)

		err = employee.Terminate(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		err = repo.Save(ctx, employee)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, hr.EmployeeStatusTerminated, found.Status)
		require.NotNil(t, found.TerminationDate)

		err = found.Reinstate()
		require.NoError(t, err)
		err = repo.Save(ctx, found)
		require.NoError(t, err)

		found2, err := repo.FindByID(ctx, employee.ID)
		require.NoError(t, err)
		assert.Equal(t, hr.EmployeeStatusActive, found2.Status)
		assert.Nil(t, found2.TerminationDate)
	})

	t.Run("FindAllForTenant with pagination", func(t *testing.T) {
		paginationTenant := uuid.New()
		testDB.CreateTestTenantWithUUID(paginationTenant)
		for i := range 10 {
			employee := newTestEmployee(t, paginationTenant, fmt.Sprintf("PAGE-EMP-%03d", i))
			err := repo.Save(ctx, employee)
			require.NoError(t, err)
		}

		filter := shared.Filter{Page: 1, PageSize: 5}
		employees, err := repo.FindAllForTenant(ctx, paginationTenant, filter)
		require.NoError(t, err)
		assert.Equal(t, 5, len(employees))

		filter.Page = 2
		page2, err := repo.FindAllForTenant(ctx, paginationTenant, filter)
		require.NoError(t, err)
		assert.Equal(t, 5, len(page2))
	})

	t.Run("Filter by department and status", func(t *testing.T) {
		filterTenant := uuid.New()
		testDB.CreateTestTenantWithUUID(filterTenant)

		engineer := newTestEmployee(t, filterTenant, "FILTER-ENG")
		err := engineer.Assign("Engineering", "Engineer")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, engineer))

		accountant := newTestEmployee(t, filterTenant, "FILTER-FIN")
		err = accountant.Assign("Finance", "Accountant")
		require.NoError(t, err)
		require.NoError(t, accountant.Terminate(time.Now()))
		require.NoError(t, repo.Save(ctx, accountant))

		engineering, err := repo.FindAllForTenant(ctx, filterTenant, shared.Filter{
			Filters: map[string]any{"department": "Engineering"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, len(engineering))
		assert.Equal(t, "FILTER-ENG", engineering[0].StaffNumber)

		terminated, err := repo.FindAllForTenant(ctx, filterTenant, shared.Filter{
			Filters: map[string]any{"status": hr.EmployeeStatusTerminated},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, len(terminated))
		assert.Equal(t, "FILTER-FIN", terminated[0].StaffNumber)
	})

	t.Run("FindPayrollEligible", func(t *testing.T) {
		payrollTenant := uuid.New()
		testDB.CreateTestTenantWithUUID(payrollTenant)

		active := newTestEmployee(t, payrollTenant, "PAY-ACTIVE")
		require.NoError(t, repo.Save(ctx, active))

		onLeave := newTestEmployee(t, payrollTenant, "PAY-LEAVE")
		require.NoError(t, onLeave.StartLeave())
		require.NoError(t, repo.Save(ctx, onLeave))

		terminated := newTestEmployee(t, payrollTenant, "PAY-TERM")
		require.NoError(t, terminated.Terminate(time.Now()))
		require.NoError(t, repo.Save(ctx, terminated))

		eligible, err := repo.FindPayrollEligible(ctx, payrollTenant)
		require.NoError(t, err)
		assert.Equal(t, 2, len(eligible))
		for _, e := range eligible {
			assert.NotEqual(t, hr.EmployeeStatusTerminated, e.Status)
		}
	})

	t.Run("Delete employee", func(t *testing.T) {
		employee := newTestEmployee(t, tenantID, "DELETE-EMP")

		require.NoError(t, repo.Save(ctx, employee))
		require.NoError(t, repo.Delete(ctx, employee.ID))

		_, err := repo.FindByID(ctx, employee.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Count and ExistsByStaffNumber", func(t *testing.T) {
		countTenant := uuid.New()
		testDB.CreateTestTenantWithUUID(countTenant)

		for i := range 4 {
			employee := newTestEmployee(t, countTenant, fmt.Sprintf("COUNT-EMP-%d", i))
			require.NoError(t, repo.Save(ctx, employee))
		}

		count, err := repo.Count(ctx, countTenant, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)

		exists, err := repo.ExistsByStaffNumber(ctx, countTenant, "COUNT-EMP-0")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByStaffNumber(ctx, countTenant, "MISSING-EMP")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

// TestEmployeeRepository_TenantIsolation tests tenant data isolation for employees
func TestEmployeeRepository_TenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormEmployeeRepository(testDB.DB)
	ctx := context.Background()

	tenant1 := uuid.New()
	tenant2 := uuid.New()
	testDB.CreateTestTenantWithUUID(tenant1)
	testDB.CreateTestTenantWithUUID(tenant2)

	for i := range 3 {
		employee := newTestEmployee(t, tenant1, fmt.Sprintf("T1-EMP-%d", i))
		require.NoError(t, repo.Save(ctx, employee))
	}
	for i := range 2 {
		employee := newTestEmployee(t, tenant2, fmt.Sprintf("T2-EMP-%d", i))
		require.NoError(t, repo.Save(ctx, employee))
	}

	t1Employees, err := repo.FindAllForTenant(ctx, tenant1, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, len(t1Employees))
	for _, e := range t1Employees {
		assert.Equal(t, tenant1, e.TenantID)
	}

	t2Employees, err := repo.FindAllForTenant(ctx, tenant2, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, len(t2Employees))
	for _, e := range t2Employees {
		assert.Equal(t, tenant2, e.TenantID)
	}

	// Staff numbers are only unique within a tenant
	dupe := newTestEmployee(t, tenant2, "T1-EMP-0")
	require.NoError(t, repo.Save(ctx, dupe))
}
