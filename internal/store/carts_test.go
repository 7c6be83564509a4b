package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotalTracksMutations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	food := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")
	collar := f.product(t, ctx, db, models.KindAccessory, "Collar", "50.00")

	total, err := store.CartTotal(ctx, db, f.customer)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	_, err = store.AddToCart(ctx, db, f.customer, food.Ref(), 2)
	require.NoError(t, err)
	total, err = store.CartTotal(ctx, db, f.customer)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("200.00")), "got %s", total)

	line, err := store.AddToCart(ctx, db, f.customer, collar.Ref(), 1)
	require.NoError(t, err)
	total, err = store.CartTotal(ctx, db, f.customer)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("250.00")), "got %s", total)

	require.NoError(t, store.UpdateCartItem(ctx, db, f.customer, line.ID, 3))
	total, err = store.CartTotal(ctx, db, f.customer)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("350.00")), "got %s", total)

	require.NoError(t, store.RemoveCartItem(ctx, db, f.customer, line.ID))
	total, err = store.CartTotal(ctx, db, f.customer)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("200.00")), "got %s", total)
}

func TestAddToCartMergesLines(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	food := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")

	_, err := store.AddToCart(ctx, db, f.customer, food.Ref(), 1)
	require.NoError(t, err)
	line, err := store.AddToCart(ctx, db, f.customer, food.Ref(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	cart, err := store.GetCart(ctx, db, f.customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCartQuantityCap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	food := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")

	_, err := store.AddToCart(ctx, db, f.customer, food.Ref(), models.MaxLineQuantity+1)
	assert.ErrorIs(t, err, database.ErrInvalidQuantity)
	_, err = store.AddToCart(ctx, db, f.customer, food.Ref(), 1<<31-1)
	assert.ErrorIs(t, err, database.ErrInvalidQuantity)

	line, err := store.AddToCart(ctx, db, f.customer, food.Ref(), models.MaxLineQuantity-1)
	require.NoError(t, err)

	// Merging past the cap is refused and the line keeps its quantity.
	_, err = store.AddToCart(ctx, db, f.customer, food.Ref(), 2)
	assert.ErrorIs(t, err, database.ErrInvalidQuantity)

	err = store.UpdateCartItem(ctx, db, f.customer, line.ID, models.MaxLineQuantity+1)
	assert.ErrorIs(t, err, database.ErrInvalidQuantity)

	cart, err := store.GetCart(ctx, db, f.customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, models.MaxLineQuantity-1, cart.Items[0].Quantity)

	_, err = store.AddToCart(ctx, db, f.customer, food.Ref(), 1)
	require.NoError(t, err)
}

func TestAddToCartRejections(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	food := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")
	pet := f.pet(t, ctx, db, "Firulais", "1500.00")

	_, err := store.AddToCart(ctx, db, f.customer, pet.Ref(), 1)
	assert.ErrorIs(t, err, database.ErrPetRequiresContact)

	_, err = store.AddToCart(ctx, db, f.customer, food.Ref(), 0)
	assert.ErrorIs(t, err, database.ErrInvalidQuantity)

	_, err = store.AddToCart(ctx, db, f.customer, models.FoodRef(99999), 1)
	assert.ErrorIs(t, err, database.ErrProductUnavailable)

	// Right id, wrong kind.
	_, err = store.AddToCart(ctx, db, f.customer, models.AccessoryRef(food.ID), 1)
	assert.ErrorIs(t, err, database.ErrProductUnavailable)

	in := store.ProductInput{
		Kind: food.Kind, CategoryID: food.CategoryID, TypeID: food.TypeID,
		Name: food.Name, Price: food.Price, Stock: food.Stock, Active: false,
	}
	_, err = store.UpdateProduct(ctx, db, food.ID, food.Version, in)
	require.NoError(t, err)
	_, err = store.AddToCart(ctx, db, f.customer, food.Ref(), 1)
	assert.ErrorIs(t, err, database.ErrProductUnavailable)
}

func TestCartItemOwnership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	food := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")
	line, err := store.AddToCart(ctx, db, f.customer, food.Ref(), 1)
	require.NoError(t, err)

	err = store.UpdateCartItem(ctx, db, f.employee, line.ID, 5)
	assert.ErrorIs(t, err, database.ErrCartItemNotFound)
	err = store.RemoveCartItem(ctx, db, f.employee, line.ID)
	assert.ErrorIs(t, err, database.ErrCartItemNotFound)

	cart, err := store.GetCart(ctx, db, f.customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestConcurrentGetCartConverges(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	const concurrency = 8
	ids := make(chan int64, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart, err := store.GetCart(ctx, db, f.customer)
			if assert.NoError(t, err) {
				ids <- cart.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)

	var active int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM carts WHERE user_id = $1 AND active`, f.customer.ID).Scan(&active))
	assert.Equal(t, 1, active)
}
