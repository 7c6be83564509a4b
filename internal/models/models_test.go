package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestItemRefConstructors(t *testing.T) {
	assert.Equal(t, KindFood, FoodRef(3).Kind())
	assert.Equal(t, int64(3), FoodRef(3).ID())
	assert.True(t, FoodRef(3).IsProduct())
	assert.True(t, AccessoryRef(4).IsProduct())
	assert.False(t, PetRef(5).IsProduct())
	assert.True(t, ItemRef{}.IsZero())
	assert.Equal(t, "pet:5", PetRef(5).String())
}

func TestNewItemRefValidates(t *testing.T) {
	_, err := NewItemRef("toy", 1)
	assert.ErrorIs(t, err, ErrInvalidItemRef)

	_, err = NewItemRef(KindFood, 0)
	assert.ErrorIs(t, err, ErrInvalidItemRef)

	ref, err := NewItemRef(KindAccessory, 9)
	require.NoError(t, err)
	assert.Equal(t, AccessoryRef(9), ref)
}

func TestItemRefJSON(t *testing.T) {
	data, err := json.Marshal(AccessoryRef(12))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"accessory","id":12}`, string(data))

	var ref ItemRef
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"pet","id":2}`), &ref))
	assert.Equal(t, PetRef(2), ref)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"pet","id":-1}`), &ref))
}

func TestProductDiscount(t *testing.T) {
	orig := dec("120.00")
	p := Product{Price: dec("90.00"), OriginalPrice: &orig}
	assert.True(t, p.HasDiscount())
	assert.Equal(t, 25, p.DiscountPercent())

	same := dec("90.00")
	p.OriginalPrice = &same
	assert.False(t, p.HasDiscount())
	assert.Equal(t, 0, p.DiscountPercent())

	p.OriginalPrice = nil
	assert.False(t, p.HasDiscount())
}

func TestDiscountPercentTruncates(t *testing.T) {
	orig := dec("3.00")
	p := Product{Price: dec("2.00"), OriginalPrice: &orig}
	assert.Equal(t, 33, p.DiscountPercent())
}

func TestCartTotal(t *testing.T) {
	cart := Cart{Items: []LineItem{
		{UnitPrice: dec("100.00"), Quantity: 2},
		{UnitPrice: dec("50.00"), Quantity: 1},
	}}
	assert.True(t, cart.Total().Equal(dec("250.00")))
	assert.Equal(t, 3, cart.ItemCount())

	cart.Items[1].Quantity = 3
	assert.True(t, cart.Total().Equal(dec("350.00")))

	cart.Items = cart.Items[:1]
	assert.True(t, cart.Total().Equal(dec("200.00")))

	empty := Cart{}
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.Total().IsZero())
}

func TestLineSubtotalRoundsToCents(t *testing.T) {
	item := LineItem{UnitPrice: dec("0.125"), Quantity: 3}
	assert.True(t, item.Subtotal().Equal(dec("0.38")), "subtotal %s", item.Subtotal())

	cart := Cart{Items: []LineItem{item, {UnitPrice: dec("0.005"), Quantity: 1}}}
	assert.True(t, cart.Total().Equal(dec("0.39")), "total %s", cart.Total())
}

func TestParseEnums(t *testing.T) {
	st, ok := ParseOrderStatus("shipped")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusShipped, st)
	_, ok = ParseOrderStatus("bogus_status")
	assert.False(t, ok)

	_, ok = ParsePaymentMethod("transfer")
	assert.True(t, ok)
	_, ok = ParsePaymentMethod("cheque")
	assert.False(t, ok)

	_, ok = ParsePetStatus("reserved")
	assert.True(t, ok)
	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestUserRoles(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsStaff())
	assert.True(t, (&User{Role: RoleEmployee}).IsStaff())
	assert.False(t, (&User{Role: RoleEmployee}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleCustomer}).IsStaff())
}
