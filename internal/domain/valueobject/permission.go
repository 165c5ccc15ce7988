package valueobject

import (
	"fmt"
	"slices"
	"strings"
)

// Role groups permissions granted to a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Permission names a single guarded action.
type Permission string

const (
	PermReadClients   Permission = "READ_CLIENTS"
	PermCreateClients Permission = "CREATE_CLIENTS"
	PermUpdateClients Permission = "UPDATE_CLIENTS"
	PermDeleteClients Permission = "DELETE_CLIENTS"
	PermSimulateLoans Permission = "SIMULATE_LOANS"
	PermCreateLoans   Permission = "CREATE_LOANS"
	PermReadLoans     Permission = "READ_LOANS"
	PermUpdateLoans   Permission = "UPDATE_LOANS"
	PermDeleteLoans   Permission = "DELETE_LOANS"
	PermReadDashboard Permission = "READ_DASHBOARD"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermReadClients, PermCreateClients, PermUpdateClients, PermDeleteClients,
		PermSimulateLoans, PermCreateLoans, PermReadLoans, PermUpdateLoans, PermDeleteLoans,
		PermReadDashboard,
	},
	RoleUser: {
		PermReadClients, PermCreateClients,
		PermSimulateLoans, PermCreateLoans, PermReadLoans,
	},
}

// NewRole validates a raw role name.
func NewRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rolePermissions[r]; !ok {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}

// PermissionsFor returns the sorted, de-duplicated union of permissions
// granted by roles. Unknown roles grant nothing.
func PermissionsFor(roles ...Role) []Permission {
	var out []Permission
	for _, r := range roles {
		out = append(out, rolePermissions[r]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
