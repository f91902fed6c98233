package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	alice := Identity{UserID: uuid.New(), Role: RoleCustomer}
	bob := uuid.New()
	admin := Identity{UserID: uuid.New(), Role: RoleAdmin}

	tests := []struct {
		name    string
		id      Identity
		action  Action
		res     Resource
		allowed bool
	}{
		{name: "customer manages cart", id: alice, action: ManageCart, allowed: true},
		{name: "customer places order", id: alice, action: PlaceOrder, allowed: true},
		{name: "customer searches", id: alice, action: SearchCatalog, allowed: true},
		{name: "customer deletes own order", id: alice, action: DeleteOrder, res: Resource{OwnerID: alice.UserID}, allowed: true},
		{name: "customer deletes foreign order", id: alice, action: DeleteOrder, res: Resource{OwnerID: bob}, allowed: false},
		{name: "customer views foreign order", id: alice, action: ViewOrder, res: Resource{OwnerID: bob}, allowed: false},
		{name: "customer changes own password", id: alice, action: ChangePassword, res: Resource{OwnerID: alice.UserID}, allowed: true},
		{name: "customer lists all orders", id: alice, action: ViewAllOrders, allowed: false},
		{name: "customer manages users", id: alice, action: ManageUsers, allowed: false},
		{name: "customer adds product", id: alice, action: AddProduct, allowed: false},
		{name: "admin deletes foreign order", id: admin, action: DeleteOrder, res: Resource{OwnerID: bob}, allowed: true},
		{name: "admin manages users", id: admin, action: ManageUsers, allowed: true},
		{name: "unknown role", id: Identity{UserID: bob, Role: "guest"}, action: ManageCart, allowed: false},
		{name: "anonymous", id: Identity{Role: RoleAdmin}, action: ManageCart, allowed: false},
		{name: "unknown action", id: admin, action: Action(99), allowed: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Authorize(tt.id, tt.action, tt.res)
			if tt.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "delete_order", DeleteOrder.String())
	assert.Equal(t, "action(42)", Action(42).String())
}
