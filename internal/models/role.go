package models

// Role values for members of the reporting organization. The four
// operational roles form a strict reporting ladder; super admins operate
// outside any team's tree.
const (
	RoleAgent           = "agent"
	RoleDistrictManager = "district_manager"
	RoleRegionalManager = "regional_manager"
	RoleStateManager    = "state_manager"
	RoleSuperAdmin      = "super_admin"
)

// roleRanks orders roles from most junior to most senior. Lower rank
// reports to the next rank up.
var roleRanks = map[string]int{
	RoleAgent:           1,
	RoleDistrictManager: 2,
	RoleRegionalManager: 3,
	RoleStateManager:    4,
	RoleSuperAdmin:      5,
}

// managerRoleByRole maps each operational role to the one role allowed to
// manage it directly. State managers sit at the root and have no manager.
var managerRoleByRole = map[string]string{
	RoleAgent:           RoleDistrictManager,
	RoleDistrictManager: RoleRegionalManager,
	RoleRegionalManager: RoleStateManager,
}

func IsValidRole(role string) bool {
	_, known := roleRanks[role]
	return known
}

func IsOperationalRole(role string) bool {
	return IsValidRole(role) && role != RoleSuperAdmin
}

// RoleRank returns the position of a role in the reporting ladder, or 0 for
// unknown roles.
func RoleRank(role string) int {
	return roleRanks[role]
}

// ManagerRoleFor returns the single role rank that may directly manage the
// given role. The second result is false for state managers and super
// admins, which have no direct manager.
func ManagerRoleFor(role string) (string, bool) {
	managerRole, ok := managerRoleByRole[role]
	return managerRole, ok
}

// IsAllowedManagerRole reports whether a user with managerRole may manage a
// user with memberRole. The rank directly above is the normal case; when no
// holder of that rank is available the chain escalates, so any strictly more
// senior operational role is accepted.
func IsAllowedManagerRole(memberRole string, managerRole string) bool {
	if _, ok := ManagerRoleFor(memberRole); !ok {
		return false
	}
	if !IsOperationalRole(managerRole) {
		return false
	}
	return RoleRank(managerRole) > RoleRank(memberRole)
}
