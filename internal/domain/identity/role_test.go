package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRole(t *testing.T) {
	role, err := NewRole(uuid.New(), "hr_manager", "HR Manager")
	require.NoError(t, err)
	assert.Equal(t, "HR_MANAGER", role.Code)
	assert.True(t, role.IsEnabled)
	assert.False(t, role.IsSystemRole)
	assert.True(t, role.CanDelete())

	_, err = NewRole(uuid.New(), "", "name")
	assert.Error(t, err)
	_, err = NewRole(uuid.New(), "1bad", "name")
	assert.Error(t, err)
	_, err = NewRole(uuid.New(), "ok_code", "")
	assert.Error(t, err)
}

func TestSystemRoleCannotBeDeleted(t *testing.T) {
	role, err := NewSystemRole(uuid.New(), RoleCodeAdmin, "Administrator")
	require.NoError(t, err)
	assert.True(t, role.IsSystemRole)
	assert.False(t, role.CanDelete())
}

func TestRoleEnableDisable(t *testing.T) {
	role, _ := NewRole(uuid.New(), "SUPPORT", "Support")

	assert.Error(t, role.Enable())
	require.NoError(t, role.Disable())
	assert.False(t, role.IsEnabled)
	assert.Error(t, role.Disable())
	require.NoError(t, role.Enable())
}

func TestPermissionParsing(t *testing.T) {
	perm, err := NewPermissionFromCode("invoice:create")
	require.NoError(t, err)
	assert.Equal(t, "invoice", perm.Resource)
	assert.Equal(t, "create", perm.Action)
	assert.Equal(t, "invoice:create", perm.Code)

	_, err = NewPermissionFromCode("no-separator")
	assert.Error(t, err)
	_, err = NewPermission("", "create")
	assert.Error(t, err)
	_, err = NewPermission("invoice", "")
	assert.Error(t, err)
}

func TestRolePermissions(t *testing.T) {
	role, _ := NewRole(uuid.New(), "ACCOUNTANT", "Accountant")

	require.NoError(t, role.GrantPermissionByCode("invoice:create"))
	require.NoError(t, role.GrantPermissionByCode("invoice:read"))
	require.NoError(t, role.GrantPermissionByCode("ledger:read"))

	assert.True(t, role.HasPermission("invoice:create"))
	assert.Error(t, role.GrantPermissionByCode("invoice:create"))

	assert.Len(t, role.PermissionsForResource("invoice"), 2)

	require.NoError(t, role.RevokePermission("invoice:create"))
	assert.False(t, role.HasPermission("invoice:create"))
	assert.Error(t, role.RevokePermission("invoice:create"))
}

func TestRoleSetPermissionsDeduplicates(t *testing.T) {
	role, _ := NewRole(uuid.New(), "SALES", "Sales")

	p1, _ := NewPermission("customer", "read")
	p2, _ := NewPermission("customer", "update")
	require.NoError(t, role.SetPermissions([]Permission{*p1, *p2, *p1}))
	assert.Len(t, role.Permissions, 2)

	err := role.SetPermissions([]Permission{{}})
	assert.Error(t, err)
}
