// Package policy decides which identities may perform which actions.
package policy

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrForbidden = errors.New("forbidden")

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Identity is the caller resolved from a verified session token.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type Action int

const (
	SearchCatalog Action = iota + 1
	AddProduct
	ManageCart
	PlaceOrder
	ViewOwnOrders
	ViewOrder
	ViewAllOrders
	DeleteOrder
	ChangePassword
	ManageUsers
)

var actionNames = map[Action]string{
	SearchCatalog:  "search_catalog",
	AddProduct:     "add_product",
	ManageCart:     "manage_cart",
	PlaceOrder:     "place_order",
	ViewOwnOrders:  "view_own_orders",
	ViewOrder:      "view_order",
	ViewAllOrders:  "view_all_orders",
	DeleteOrder:    "delete_order",
	ChangePassword: "change_password",
	ManageUsers:    "manage_users",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Resource describes the row an action targets. A zero Resource asks only
// whether the role may ever perform the action.
type Resource struct {
	OwnerID uuid.UUID
}

// ownerScoped actions are open to customers only on rows they own.
var ownerScoped = map[Action]bool{
	ViewOrder:      true,
	DeleteOrder:    true,
	ChangePassword: true,
}

var customerActions = map[Action]bool{
	SearchCatalog:  true,
	ManageCart:     true,
	PlaceOrder:     true,
	ViewOwnOrders:  true,
	ViewOrder:      true,
	DeleteOrder:    true,
	ChangePassword: true,
}

func Authorize(id Identity, action Action, res Resource) error {
	if id.UserID == uuid.Nil {
		return fmt.Errorf("%s: anonymous caller: %w", action, ErrForbidden)
	}
	if _, known := actionNames[action]; !known {
		return fmt.Errorf("%s: unknown action: %w", action, ErrForbidden)
	}

	switch id.Role {
	case RoleAdmin:
		return nil
	case RoleCustomer:
		if !customerActions[action] {
			return fmt.Errorf("%s requires admin: %w", action, ErrForbidden)
		}
		if ownerScoped[action] && res.OwnerID != uuid.Nil && res.OwnerID != id.UserID {
			return fmt.Errorf("%s on foreign resource: %w", action, ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown role %q: %w", action, id.Role, ErrForbidden)
	}
}
