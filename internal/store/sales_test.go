package store_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeTestOrder(t *testing.T, ctx context.Context, f *fixture, db *sql.DB) *models.Order {
	t.Helper()
	food := f.product(t, ctx, db, models.KindFood, "Croquetas", "100.00")
	_, err := store.AddToCart(ctx, db, f.customer, food.Ref(), 1)
	require.NoError(t, err)
	order, err := store.PlaceOrder(ctx, db, testCheckout(t), f.customer, store.PlaceOrderRequest{
		ShippingAddress: "Calle 1",
	})
	require.NoError(t, err)
	return order
}

func TestRecordSaleOncePerOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)
	order := placeTestOrder(t, ctx, f, db)

	sale, err := store.RecordSale(ctx, db, store.RecordSaleRequest{
		OrderID:   order.ID,
		Method:    "card",
		Reference: "AUTH-1",
		SellerID:  &f.employee.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, sale.OrderNumber)
	require.NotNil(t, sale.SellerID)
	assert.Equal(t, f.employee.ID, *sale.SellerID)

	_, err = store.RecordSale(ctx, db, store.RecordSaleRequest{OrderID: order.ID, Method: "cash"})
	assert.ErrorIs(t, err, database.ErrDuplicateSale)

	stored, err := store.GetSaleByOrder(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, stored.ID)
	assert.Equal(t, models.PaymentCard, stored.PaymentMethod)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales WHERE order_id = $1`, order.ID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestDeleteSaleAllowsCorrection(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)
	order := placeTestOrder(t, ctx, f, db)

	wrong, err := store.RecordSale(ctx, db, store.RecordSaleRequest{OrderID: order.ID, Method: "cash"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteSale(ctx, db, wrong.ID))
	assert.ErrorIs(t, store.DeleteSale(ctx, db, wrong.ID), database.ErrSaleNotFound)
	_, err = store.GetSale(ctx, db, wrong.ID)
	assert.ErrorIs(t, err, database.ErrSaleNotFound)

	fixed, err := store.RecordSale(ctx, db, store.RecordSaleRequest{
		OrderID:   order.ID,
		Method:    "transfer",
		Reference: "SPEI-42",
	})
	require.NoError(t, err)
	assert.NotEqual(t, wrong.ID, fixed.ID)
	assert.Equal(t, models.PaymentTransfer, fixed.PaymentMethod)

	kept, err := store.GetOrder(ctx, db, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, kept.OrderNumber)
}

func TestConcurrentRecordSale(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)
	order := placeTestOrder(t, ctx, f, db)

	const concurrency = 5
	var wg sync.WaitGroup
	results := make(chan error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.RecordSale(ctx, db, store.RecordSaleRequest{OrderID: order.ID, Method: "cash"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
			continue
		}
		assert.ErrorIs(t, err, database.ErrDuplicateSale)
	}
	assert.Equal(t, 1, successCount)
}

func TestRecordSaleValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)
	order := placeTestOrder(t, ctx, f, db)

	_, err := store.RecordSale(ctx, db, store.RecordSaleRequest{OrderID: order.ID, Method: "cheque"})
	assert.ErrorIs(t, err, database.ErrInvalidPaymentMethod)

	_, err = store.RecordSale(ctx, db, store.RecordSaleRequest{OrderID: 99999, Method: "cash"})
	assert.ErrorIs(t, err, database.ErrOrderNotFound)

	_, err = store.RecordSale(ctx, db, store.RecordSaleRequest{
		OrderID: order.ID, Method: "cash", SellerID: &f.customer.ID,
	})
	assert.ErrorIs(t, err, database.ErrInvalidSeller)

	missing := int64(99999)
	_, err = store.RecordSale(ctx, db, store.RecordSaleRequest{
		OrderID: order.ID, Method: "cash", SellerID: &missing,
	})
	assert.ErrorIs(t, err, database.ErrInvalidSeller)

	_, err = store.GetSaleByOrder(ctx, db, order.ID)
	assert.ErrorIs(t, err, database.ErrSaleNotFound)
}

func TestListSalesAndReports(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := newFixture(t, ctx, db)

	first := placeTestOrder(t, ctx, f, db)
	second := placeTestOrder(t, ctx, f, db)
	for _, o := range []*models.Order{first, second} {
		_, err := store.RecordSale(ctx, db, store.RecordSaleRequest{OrderID: o.ID, Method: "transfer"})
		require.NoError(t, err)
	}

	all, err := store.ListSales(ctx, db, time.Time{}, time.Time{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	future, err := store.ListSales(ctx, db, time.Now().Add(time.Hour), time.Time{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), future.Total)

	stats, err := store.GetDashboardStats(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalSales)
	assert.True(t, stats.Revenue.Equal(first.Total.Add(second.Total)), "revenue %s", stats.Revenue)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Len(t, stats.RecentOrders, 2)

	top, err := store.TopSellingProducts(ctx, db, 5)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}
