package admin

import (
	"context"
	"testing"
	"time"

	"github.com/chofys/petshop/internal/access"
	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The panel rejects before touching the database, so a nil *sql.DB is
// enough to exercise every denial path.
func newTestPanel(t *testing.T) *Panel {
	t.Helper()
	gate, err := access.NewGate()
	require.NoError(t, err)
	return NewPanel(nil, gate, store.Checkout{})
}

func TestCustomerIsForbiddenEverywhere(t *testing.T) {
	p := newTestPanel(t)
	ctx := context.Background()
	customer := &models.User{ID: 1, Role: models.RoleCustomer}

	calls := map[string]func() error{
		"create category": func() error { _, err := p.CreateCategory(ctx, customer, store.CategoryInput{Name: "x"}); return err },
		"delete type":     func() error { return p.DeleteType(ctx, customer, 1) },
		"create product":  func() error { _, err := p.CreateProduct(ctx, customer, store.ProductInput{}); return err },
		"set stock":       func() error { return p.SetStock(ctx, customer, 1, 5, 1) },
		"pet status":      func() error { _, err := p.SetPetStatus(ctx, customer, 1, "sold"); return err },
		"list orders":     func() error { _, err := p.ListOrders(ctx, customer, "", 1, 10); return err },
		"transition":      func() error { _, err := p.TransitionOrder(ctx, customer, 1, "shipped"); return err },
		"claim":           func() error { _, err := p.ClaimNextOrder(ctx, customer); return err },
		"reserve pet":     func() error { _, err := p.ReservePet(ctx, customer, 1, 1, "", ""); return err },
		"record sale":     func() error { _, err := p.RecordSale(ctx, customer, store.RecordSaleRequest{OrderID: 1, Method: "cash"}); return err },
		"delete sale":     func() error { return p.DeleteSale(ctx, customer, 1) },
		"list sales":      func() error { _, err := p.ListSales(ctx, customer, time.Time{}, time.Time{}, 1, 10); return err },
		"list users":      func() error { _, err := p.ListUsers(ctx, customer, 1, 10); return err },
		"set role":        func() error { _, err := p.SetUserRole(ctx, customer, 1, "admin"); return err },
		"dashboard":       func() error { _, err := p.Dashboard(ctx, customer); return err },
		"top sellers":     func() error { _, err := p.TopSellers(ctx, customer, 5); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), database.ErrForbidden)
		})
	}
}

func TestNilActorIsForbidden(t *testing.T) {
	p := newTestPanel(t)
	_, err := p.GetOrder(context.Background(), nil, 1)
	assert.ErrorIs(t, err, database.ErrForbidden)
}

func TestEmployeeCannotManageUsersOrViewReports(t *testing.T) {
	p := newTestPanel(t)
	ctx := context.Background()
	employee := &models.User{ID: 2, Role: models.RoleEmployee}

	_, err := p.ListUsers(ctx, employee, 1, 10)
	assert.ErrorIs(t, err, database.ErrForbidden)
	_, err = p.SetUserRole(ctx, employee, 2, "admin")
	assert.ErrorIs(t, err, database.ErrForbidden)
	assert.ErrorIs(t, p.DeleteUser(ctx, employee, 3), database.ErrForbidden)
	_, err = p.Dashboard(ctx, employee)
	assert.ErrorIs(t, err, database.ErrForbidden)
}

func TestSetUserRoleValidatesRole(t *testing.T) {
	p := newTestPanel(t)
	admin := &models.User{ID: 3, Role: models.RoleAdmin}

	_, err := p.SetUserRole(context.Background(), admin, 1, "superuser")
	assert.ErrorIs(t, err, database.ErrInvalidRole)
}
