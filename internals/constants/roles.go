package constants

import (
	"fmt"
	"strings"
)

// Role is the closed set of society roles carried in the access token.
type Role string

const (
	RoleMember         Role = "member"
	RoleCoordinator    Role = "coordinator"
	RoleSubCoordinator Role = "sub_coordinator"
	RoleAdmin          Role = "admin"
	RoleSuperAdmin     Role = "super_admin"
)

// AllRoles in ascending order of privilege.
var AllRoles = []Role{
	RoleMember,
	RoleSubCoordinator,
	RoleCoordinator,
	RoleAdmin,
	RoleSuperAdmin,
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Capability names one permission checked by route guards.
type Capability string

const (
	CapPaymentInitiate    Capability = "payment:initiate"
	CapPaymentReadOwn     Capability = "payment:read_own"
	CapPaymentLedgerRead  Capability = "payment:ledger_read"
	CapPaymentLedgerWrite Capability = "payment:ledger_write"

	CapJoinRequestReview Capability = "club:join_request_review"

	CapClubManage        Capability = "club:manage"
	CapEventManage       Capability = "event:manage"
	CapNoticeManage      Capability = "notice:manage"
	CapTaskManage        Capability = "task:manage"
	CapScholarshipManage Capability = "scholarship:manage"
	CapUserManage        Capability = "user:manage"
	CapFinanceManage     Capability = "finance:manage"
)

var memberCaps = []Capability{
	CapPaymentInitiate,
	CapPaymentReadOwn,
}

var clubStaffCaps = append(append([]Capability{}, memberCaps...),
	CapJoinRequestReview,
	CapEventManage,
	CapNoticeManage,
	CapTaskManage,
)

// capabilityTable is the only place role permissions are declared.
var capabilityTable = map[Role][]Capability{
	RoleMember:         memberCaps,
	RoleSubCoordinator: clubStaffCaps,
	RoleCoordinator:    clubStaffCaps,
	RoleAdmin: append(append([]Capability{}, clubStaffCaps...),
		CapClubManage,
	),
	RoleSuperAdmin: append(append([]Capability{}, clubStaffCaps...),
		CapClubManage,
		CapScholarshipManage,
		CapUserManage,
		CapFinanceManage,
		CapPaymentLedgerRead,
		CapPaymentLedgerWrite,
	),
}

func Can(r Role, c Capability) bool {
	for _, have := range capabilityTable[r] {
		if have == c {
			return true
		}
	}
	return false
}

// RolesWith lists the roles granted a capability, lowest privilege first.
func RolesWith(c Capability) []Role {
	var out []Role
	for _, r := range AllRoles {
		if Can(r, c) {
			out = append(out, r)
		}
	}
	return out
}

const ErrCapabilityDenied = "❌ Role %s is not allowed to %s."

func CapabilityError(r Role, c Capability) string {
	return fmt.Sprintf(ErrCapabilityDenied, r, c)
}
