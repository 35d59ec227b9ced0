// Package authz holds the role/capability matrix. Every access decision in
// the service goes through Can; there are no role string comparisons
// elsewhere.
package authz

// Role is the closed set of user roles.
type Role string

const (
	RoleCrew       Role = "crew"
	RoleVendor     Role = "vendor"
	RoleOpsStaff   Role = "ops_staff"
	RoleOpsAdmin   Role = "ops_admin"
	RoleFinance    Role = "finance"
	RoleSuperAdmin Role = "super_admin"
)

// Resource is the closed set of guarded resources.
type Resource string

const (
	ResourceOrders        Resource = "orders"
	ResourcePools         Resource = "pools"
	ResourceNotifications Resource = "notifications"
	ResourceExceptions    Resource = "exceptions"
	ResourceFinance       Resource = "finance"
	ResourceVendorOrders  Resource = "vendor_orders"
	ResourceDeliveries    Resource = "deliveries"
)

type Access int

const (
	AccessNone Access = iota
	AccessRead
	AccessWrite
)

var matrix = map[Role]map[Resource]Access{
	RoleCrew: {
		ResourceOrders:        AccessWrite,
		ResourcePools:         AccessRead,
		ResourceNotifications: AccessRead,
		ResourceExceptions:    AccessRead,
	},
	RoleVendor: {
		ResourceVendorOrders:  AccessWrite,
		ResourceNotifications: AccessRead,
		ResourceExceptions:    AccessRead,
		ResourceDeliveries:    AccessRead,
	},
	RoleOpsStaff: {
		ResourceOrders:        AccessRead,
		ResourcePools:         AccessRead,
		ResourceNotifications: AccessRead,
		ResourceExceptions:    AccessWrite,
		ResourceVendorOrders:  AccessRead,
		ResourceDeliveries:    AccessWrite,
	},
	RoleOpsAdmin: {
		ResourceOrders:        AccessWrite,
		ResourcePools:         AccessWrite,
		ResourceNotifications: AccessRead,
		ResourceExceptions:    AccessWrite,
		ResourceFinance:       AccessRead,
		ResourceVendorOrders:  AccessWrite,
		ResourceDeliveries:    AccessWrite,
	},
	RoleFinance: {
		ResourceOrders:        AccessRead,
		ResourcePools:         AccessRead,
		ResourceNotifications: AccessRead,
		ResourceExceptions:    AccessWrite,
		ResourceFinance:       AccessWrite,
		ResourceVendorOrders:  AccessRead,
	},
	RoleSuperAdmin: {
		ResourceOrders:        AccessWrite,
		ResourcePools:         AccessWrite,
		ResourceNotifications: AccessWrite,
		ResourceExceptions:    AccessWrite,
		ResourceFinance:       AccessWrite,
		ResourceVendorOrders:  AccessWrite,
		ResourceDeliveries:    AccessWrite,
	},
}

// Can returns the access level a role has on a resource. Unknown roles and
// unlisted resources get AccessNone.
func Can(role Role, resource Resource) Access {
	return matrix[role][resource]
}

// CanOverrideVesselFilter reports whether the role may replace the vessel
// scope of a notification or exception listing with an arbitrary IMO. For
// everyone else the scope is forced server-side.
func CanOverrideVesselFilter(role Role) bool {
	switch role {
	case RoleOpsAdmin, RoleFinance, RoleSuperAdmin:
		return true
	}
	return false
}
