package authz

import "testing"

func TestCan(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		resource Resource
		want     Access
	}{
		{"crew writes own orders", RoleCrew, ResourceOrders, AccessWrite},
		{"crew cannot touch finance", RoleCrew, ResourceFinance, AccessNone},
		{"vendor reads deliveries", RoleVendor, ResourceDeliveries, AccessRead},
		{"vendor cannot manage pools", RoleVendor, ResourcePools, AccessNone},
		{"ops staff works exceptions", RoleOpsStaff, ResourceExceptions, AccessWrite},
		{"ops staff reads orders only", RoleOpsStaff, ResourceOrders, AccessRead},
		{"ops admin manages pools", RoleOpsAdmin, ResourcePools, AccessWrite},
		{"finance writes finance", RoleFinance, ResourceFinance, AccessWrite},
		{"super admin writes everything", RoleSuperAdmin, ResourceDeliveries, AccessWrite},
		{"unknown role gets nothing", Role("intern"), ResourceOrders, AccessNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.role, tt.resource); got != tt.want {
				t.Fatalf("Can(%s,%s)=%v want=%v", tt.role, tt.resource, got, tt.want)
			}
		})
	}
}

func TestCanOverrideVesselFilter(t *testing.T) {
	allowed := []Role{RoleOpsAdmin, RoleFinance, RoleSuperAdmin}
	denied := []Role{RoleCrew, RoleVendor, RoleOpsStaff, Role("")}
	for _, r := range allowed {
		if !CanOverrideVesselFilter(r) {
			t.Fatalf("%s should be allowed to override", r)
		}
	}
	for _, r := range denied {
		if CanOverrideVesselFilter(r) {
			t.Fatalf("%s must not override", r)
		}
	}
}
