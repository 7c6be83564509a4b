package store_test

import (
	"context"
	"testing"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimisticStockEdit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	product := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")

	require.NoError(t, store.UpdateStockOptimistic(ctx, db, product.ID, 45, product.Version))

	err := store.UpdateStockOptimistic(ctx, db, product.ID, 40, product.Version)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)

	after, err := store.GetProduct(ctx, db, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, after.Stock)
	assert.Equal(t, product.Version+1, after.Version)

	err = store.UpdateStockOptimistic(ctx, db, 99999, 1, 1)
	assert.ErrorIs(t, err, database.ErrProductNotFound)

	err = store.UpdateStockOptimistic(ctx, db, product.ID, -1, after.Version)
	assert.ErrorIs(t, err, database.ErrInvalidInput)
}

func TestFeaturedAndSearch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	_, err := store.CreateProduct(ctx, db, store.ProductInput{
		Kind: models.KindAccessory, CategoryID: f.category.ID, TypeID: f.petType.ID,
		Name: "Correa retráctil", Price: dec("320.00"), Featured: true, Active: true,
	})
	require.NoError(t, err)
	_, err = store.CreateProduct(ctx, db, store.ProductInput{
		Kind: models.KindAccessory, CategoryID: f.category.ID, TypeID: f.petType.ID,
		Name: "Correa vieja", Price: dec("10.00"), Featured: true, Active: false,
	})
	require.NoError(t, err)
	f.product(t, ctx, db, models.KindFood, "Croquetas cachorro", "100.00")
	f.pet(t, ctx, db, "Correcaminos", "900.00")

	featured, err := store.FeaturedProducts(ctx, db, models.KindAccessory, 8)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Correa retráctil", featured[0].Name)

	results, err := store.SearchCatalog(ctx, db, "corre", 20)
	require.NoError(t, err)
	assert.Len(t, results.Products, 1)
	assert.Len(t, results.Pets, 1)

	// Category names match too.
	results, err = store.SearchCatalog(ctx, db, "alimentos", 20)
	require.NoError(t, err)
	assert.Len(t, results.Products, 2)

	results, err = store.SearchCatalog(ctx, db, "100%", 20)
	require.NoError(t, err)
	assert.Empty(t, results.Products)

	page, err := store.ListProducts(ctx, db, store.ProductFilter{Kind: models.KindAccessory, ActiveOnly: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestCatalogReferentialRules(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	_, err := store.CreateType(ctx, db, store.TypeInput{Name: "Perro"})
	assert.ErrorIs(t, err, database.ErrDuplicateName)

	product := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")

	assert.ErrorIs(t, store.DeleteCategory(ctx, db, f.category.ID), database.ErrInUse)
	assert.ErrorIs(t, store.DeleteType(ctx, db, f.petType.ID), database.ErrInUse)

	_, err = store.AddToCart(ctx, db, f.customer, product.Ref(), 1)
	require.NoError(t, err)
	_, err = store.PlaceOrder(ctx, db, testCheckout(t), f.customer, store.PlaceOrderRequest{ShippingAddress: "Calle 1"})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteProduct(ctx, db, product.ID), database.ErrInUse)
	assert.ErrorIs(t, store.DeleteProduct(ctx, db, 99999), database.ErrProductNotFound)
}

func TestPetStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	pet := f.pet(t, ctx, db, "Michi", "800.00")
	assert.Equal(t, models.PetAvailable, pet.Status)

	sold, err := store.SetPetStatus(ctx, db, pet.ID, "sold")
	require.NoError(t, err)
	assert.Equal(t, models.PetSold, sold.Status)

	_, err = store.SetPetStatus(ctx, db, pet.ID, "lost")
	assert.ErrorIs(t, err, database.ErrInvalidPetStatus)

	available, err := store.ListPets(ctx, db, store.PetFilter{Status: models.PetAvailable})
	require.NoError(t, err)
	assert.Empty(t, available)
}
