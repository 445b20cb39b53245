package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAllowedEverything(t *testing.T) {
	for _, res := range Resources() {
		for _, act := range Actions() {
			assert.True(t, Allowed(RoleAdmin, res, act), "%s %s", res, act)
		}
	}
}

func TestUnknownInputsDenied(t *testing.T) {
	assert.False(t, Allowed("guest", "bookings", Read))
	assert.False(t, Allowed(RoleAdmin, "seats", Read))
	assert.False(t, Allowed(RoleAdmin, "bookings", "approve"))
}

func TestRoleAssignmentIsAdminOnly(t *testing.T) {
	assert.True(t, Allowed(RoleAdmin, ResRoles, Update))
	assert.True(t, Allowed(RoleManager, ResRoles, Read))
	assert.False(t, Allowed(RoleManager, ResRoles, Update))
	assert.False(t, Allowed(RoleStaff, ResRoles, Read))
	assert.False(t, Allowed(RoleViewer, ResRoles, Read))
}

func TestStaffCannotDelete(t *testing.T) {
	assert.True(t, Allowed(RoleStaff, "bookings", Create))
	assert.True(t, Allowed(RoleStaff, "bookings", Update))
	assert.False(t, Allowed(RoleStaff, "bookings", Delete))
	assert.False(t, Allowed(RoleStaff, "invoices", Create))
	assert.False(t, Allowed(RoleStaff, ResImport, Create))
}

func TestViewerReadsOnly(t *testing.T) {
	assert.True(t, Allowed(RoleViewer, "bookings", Read))
	assert.True(t, Allowed(RoleViewer, ResDashboard, Read))
	assert.False(t, Allowed(RoleViewer, "bookings", Create))
	assert.False(t, Allowed(RoleViewer, ResExport, Read))
	assert.False(t, Allowed(RoleViewer, ResEmails, Read))
}

func TestMatrixCoversAllResources(t *testing.T) {
	matrix := Matrix()
	require.Len(t, matrix, len(Resources()))

	assert.Equal(t, "artists", matrix[0].Resource)
	assert.Equal(t, []string{Read, Create, Update, Delete}, matrix[0].Roles[RoleAdmin])
	assert.Equal(t, []string{Read}, matrix[0].Roles[RoleViewer])

	last := matrix[len(matrix)-1]
	assert.Equal(t, ResRoles, last.Resource)
	assert.Empty(t, last.Roles[RoleStaff])
}

func TestPermissionsMatchAllowed(t *testing.T) {
	perms := Permissions(RoleStaff)
	assert.Equal(t, []string{Read, Create, Update}, perms["bookings"])
	_, hasRoles := perms[ResRoles]
	assert.False(t, hasRoles)
}
