package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Super_Admin ")
	assert.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, r)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestCapabilityTable(t *testing.T) {
	for _, r := range AllRoles {
		assert.Truef(t, Can(r, CapPaymentInitiate), "%s should initiate payments", r)
	}

	assert.False(t, Can(RoleMember, CapJoinRequestReview))
	assert.True(t, Can(RoleCoordinator, CapJoinRequestReview))
	assert.True(t, Can(RoleSubCoordinator, CapJoinRequestReview))

	assert.Equal(t, []Role{RoleSuperAdmin}, RolesWith(CapPaymentLedgerRead))
	assert.Equal(t, []Role{RoleSuperAdmin}, RolesWith(CapPaymentLedgerWrite))
	assert.False(t, Can(Role("owner"), CapPaymentInitiate))
}

func TestCapabilityTableSlicesAreIndependent(t *testing.T) {
	// appends for admin/super_admin must not leak into the shared staff slice
	assert.False(t, Can(RoleCoordinator, CapClubManage))
	assert.False(t, Can(RoleAdmin, CapPaymentLedgerRead))
}
