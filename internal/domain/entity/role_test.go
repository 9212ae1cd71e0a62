package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyerPermissions(t *testing.T) Permissions {
	t.Helper()

	for _, role := range DefaultRoles() {
		if role.Name == RoleBuyer {
			return role.Permissions
		}
	}
	t.Fatal("buyer role missing from defaults")

	return nil
}

func sellerPermissions(t *testing.T) Permissions {
	t.Helper()

	for _, role := range DefaultRoles() {
		if role.Name == RoleSeller {
			return role.Permissions
		}
	}
	t.Fatal("seller role missing from defaults")

	return nil
}

func TestPermissions_Allows(t *testing.T) {
	t.Parallel()

	buyer := buyerPermissions(t)
	seller := sellerPermissions(t)

	tests := []struct {
		name     string
		granted  Permissions
		required Permission
		want     bool
	}{
		{
			name:     "buyer can read products",
			granted:  buyer,
			required: Permission{Resource: ResourceProducts, Actions: []Action{ActionRead}},
			want:     true,
		},
		{
			name:     "buyer cannot create products",
			granted:  buyer,
			required: Permission{Resource: ResourceProducts, Actions: []Action{ActionCreate}},
			want:     false,
		},
		{
			name:     "buyer can create and read orders",
			granted:  buyer,
			required: Permission{Resource: ResourceOrders, Actions: []Action{ActionCreate, ActionRead}},
			want:     true,
		},
		{
			name:     "buyer has no users grant at all",
			granted:  buyer,
			required: Permission{Resource: ResourceUsers, Actions: []Action{ActionRead}},
			want:     false,
		},
		{
			name:     "seller holds full product control",
			granted:  seller,
			required: Permission{Resource: ResourceProducts, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
			want:     true,
		},
		{
			name:     "seller cannot update orders",
			granted:  seller,
			required: Permission{Resource: ResourceOrders, Actions: []Action{ActionRead, ActionUpdate}},
			want:     false,
		},
		{
			name:     "required action order does not matter",
			granted:  seller,
			required: Permission{Resource: ResourceProducts, Actions: []Action{ActionDelete, ActionCreate}},
			want:     true,
		},
		{
			name:     "empty action list matches any held resource",
			granted:  buyer,
			required: Permission{Resource: ResourceProfile},
			want:     true,
		},
		{
			name:     "empty permission set denies everything",
			granted:  Permissions{},
			required: Permission{Resource: ResourceProfile, Actions: []Action{ActionRead}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.granted.Allows(tt.required))
		})
	}
}

func TestPermissions_AllowsAll(t *testing.T) {
	t.Parallel()

	seller := sellerPermissions(t)

	assert.True(t, seller.AllowsAll([]Permission{
		{Resource: ResourceProducts, Actions: []Action{ActionCreate}},
		{Resource: ResourceProfile, Actions: []Action{ActionUpdate}},
	}))

	// One unmet requirement fails the whole check.
	assert.False(t, seller.AllowsAll([]Permission{
		{Resource: ResourceProducts, Actions: []Action{ActionCreate}},
		{Resource: ResourceOrders, Actions: []Action{ActionDelete}},
	}))

	assert.True(t, seller.AllowsAll(nil))
}

func TestResourceAndActionValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, ResourceProducts.IsValid())
	assert.True(t, ResourceUsers.IsValid())
	assert.False(t, Resource("invoices").IsValid())

	assert.True(t, ActionDelete.IsValid())
	assert.False(t, Action("approve").IsValid())
}

func TestNormalizeRoleName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "buyer", NormalizeRoleName("  Buyer "))
	assert.Equal(t, "seller", NormalizeRoleName("SELLER"))
	assert.Equal(t, "", NormalizeRoleName("   "))
}

func TestDefaultRoles(t *testing.T) {
	t.Parallel()

	roles := DefaultRoles()
	require.Len(t, roles, 2)

	names := make(map[string]bool, len(roles))
	for _, role := range roles {
		names[role.Name] = true

		for _, perm := range role.Permissions {
			assert.True(t, perm.Resource.IsValid(), "role %s carries unknown resource %q", role.Name, perm.Resource)
			for _, action := range perm.Actions {
				assert.True(t, action.IsValid(), "role %s carries unknown action %q", role.Name, action)
			}
		}
	}

	assert.True(t, names[RoleBuyer])
	assert.True(t, names[RoleSeller])
}
