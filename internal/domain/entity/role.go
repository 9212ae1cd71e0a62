// Package entity contains the core business objects of the project.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Resource identifies a category of things a permission can cover.
// Resources form a closed enumeration so a typo in a route declaration
// fails at compile time instead of silently never matching.
type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceOrders   Resource = "orders"
	ResourceProfile  Resource = "profile"
	ResourceUsers    Resource = "users"
)

// IsValid checks if the Resource is a known value.
func (r Resource) IsValid() bool {
	switch r {
	case ResourceProducts, ResourceOrders, ResourceProfile, ResourceUsers:
		return true
	default:
		return false
	}
}

// Action is a single operation that can be allowed on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// IsValid checks if the Action is a known value.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	default:
		return false
	}
}

// Permission grants a set of actions on one resource.
// Actions are compared as a set: order is irrelevant and duplicates are harmless.
type Permission struct {
	Resource Resource `json:"resource"`
	Actions  []Action `json:"actions"`
}

// allows reports whether every action in required is present in this permission.
func (p Permission) allows(required []Action) bool {
	for _, want := range required {
		found := false
		for _, have := range p.Actions {
			if have == want {
				found = true

				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Permissions is the ordered permission list carried by a Role.
type Permissions []Permission

// Allows reports whether the set satisfies a single required permission:
// a matching resource entry must exist and must contain every required action.
func (ps Permissions) Allows(required Permission) bool {
	for _, p := range ps {
		if p.Resource == required.Resource {
			return p.allows(required.Actions)
		}
	}

	return false
}

// AllowsAll reports whether the set satisfies every required permission.
func (ps Permissions) AllowsAll(required []Permission) bool {
	for _, req := range required {
		if !ps.Allows(req) {
			return false
		}
	}

	return true
}

// Role is a named, shared bundle of permissions. Many users reference one
// role; role lifetime is independent of any user.
type Role struct {
	ID          uuid.UUID
	Name        string
	Permissions Permissions
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeRoleName lowercases and trims a user-supplied role name so lookups
// are case-insensitive.
func NormalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Default role names seeded on first start.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// DefaultRoles returns the role bundles seeded when the role store is empty.
func DefaultRoles() []*Role {
	return []*Role{
		{
			Name: RoleBuyer,
			Permissions: Permissions{
				{Resource: ResourceProducts, Actions: []Action{ActionRead}},
				{Resource: ResourceOrders, Actions: []Action{ActionCreate, ActionRead}},
				{Resource: ResourceProfile, Actions: []Action{ActionRead, ActionUpdate}},
			},
		},
		{
			Name: RoleSeller,
			Permissions: Permissions{
				{Resource: ResourceProducts, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
				{Resource: ResourceOrders, Actions: []Action{ActionRead}},
				{Resource: ResourceProfile, Actions: []Action{ActionRead, ActionUpdate}},
				{Resource: ResourceUsers, Actions: []Action{ActionRead}},
			},
		},
	}
}
