// Package admin holds the staff-facing operations. Every method checks
// the actor's capability with the role gate before it touches the store.
package admin

import (
	"context"
	"database/sql"
	"time"

	"github.com/chofys/petshop/internal/access"
	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
)

type Panel struct {
	db       *sql.DB
	gate     *access.Gate
	checkout store.Checkout
}

func NewPanel(db *sql.DB, gate *access.Gate, checkout store.Checkout) *Panel {
	return &Panel{db: db, gate: gate, checkout: checkout}
}

func (p *Panel) require(actor *models.User, c access.Capability) error {
	if !p.gate.Can(actor, c) {
		return database.ErrForbidden
	}
	return nil
}

// Catalog

func (p *Panel) CreateCategory(ctx context.Context, actor *models.User, in store.CategoryInput) (*models.Category, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.CreateCategory(ctx, p.db, in)
}

func (p *Panel) UpdateCategory(ctx context.Context, actor *models.User, id int64, in store.CategoryInput) (*models.Category, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.UpdateCategory(ctx, p.db, id, in)
}

func (p *Panel) DeleteCategory(ctx context.Context, actor *models.User, id int64) error {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return err
	}
	return store.DeleteCategory(ctx, p.db, id)
}

func (p *Panel) CreateType(ctx context.Context, actor *models.User, in store.TypeInput) (*models.Type, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.CreateType(ctx, p.db, in)
}

func (p *Panel) UpdateType(ctx context.Context, actor *models.User, id int64, in store.TypeInput) (*models.Type, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.UpdateType(ctx, p.db, id, in)
}

func (p *Panel) DeleteType(ctx context.Context, actor *models.User, id int64) error {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return err
	}
	return store.DeleteType(ctx, p.db, id)
}

func (p *Panel) CreateProduct(ctx context.Context, actor *models.User, in store.ProductInput) (*models.Product, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.CreateProduct(ctx, p.db, in)
}

// UpdateProduct applies an edit made against the given version. Prices
// changed here affect carts immediately and placed orders never.
func (p *Panel) UpdateProduct(ctx context.Context, actor *models.User, id int64, version int, in store.ProductInput) (*models.Product, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.UpdateProduct(ctx, p.db, id, version, in)
}

func (p *Panel) SetStock(ctx context.Context, actor *models.User, id int64, stock, version int) error {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return err
	}
	return store.UpdateStockOptimistic(ctx, p.db, id, stock, version)
}

func (p *Panel) DeleteProduct(ctx context.Context, actor *models.User, id int64) error {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return err
	}
	return store.DeleteProduct(ctx, p.db, id)
}

// ListProducts includes inactive products, unlike the storefront.
func (p *Panel) ListProducts(ctx context.Context, actor *models.User, filter store.ProductFilter, page, pageSize int) (*store.OffsetPage, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.ListProducts(ctx, p.db, filter, page, pageSize)
}

func (p *Panel) CreatePet(ctx context.Context, actor *models.User, in store.PetInput) (*models.Pet, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.CreatePet(ctx, p.db, in)
}

func (p *Panel) UpdatePet(ctx context.Context, actor *models.User, id int64, in store.PetInput) (*models.Pet, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.UpdatePet(ctx, p.db, id, in)
}

func (p *Panel) SetPetStatus(ctx context.Context, actor *models.User, id int64, status string) (*models.Pet, error) {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return nil, err
	}
	return store.SetPetStatus(ctx, p.db, id, status)
}

func (p *Panel) DeletePet(ctx context.Context, actor *models.User, id int64) error {
	if err := p.require(actor, access.ManageCatalog); err != nil {
		return err
	}
	return store.DeletePet(ctx, p.db, id)
}

// Orders

func (p *Panel) ListOrders(ctx context.Context, actor *models.User, status string, page, pageSize int) (*store.OffsetPage, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	return store.ListOrders(ctx, p.db, status, page, pageSize)
}

func (p *Panel) GetOrder(ctx context.Context, actor *models.User, id int64) (*models.Order, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	return store.GetOrder(ctx, p.db, id)
}

func (p *Panel) TransitionOrder(ctx context.Context, actor *models.User, id int64, status string) (*models.Order, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	return store.TransitionOrder(ctx, p.db, id, status)
}

func (p *Panel) ClaimNextOrder(ctx context.Context, actor *models.User) (*models.Order, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	return store.ClaimNextPendingOrder(ctx, p.db)
}

func (p *Panel) ReservePet(ctx context.Context, actor *models.User, customerID, petID int64, shippingAddress, notes string) (*models.Order, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	return store.ReservePet(ctx, p.db, p.checkout, customerID, petID, shippingAddress, notes)
}

// Sales

// RecordSale books payment for an order. The acting staff member is the
// seller unless the request names another one.
func (p *Panel) RecordSale(ctx context.Context, actor *models.User, req store.RecordSaleRequest) (*models.Sale, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	if req.SellerID == nil {
		req.SellerID = &actor.ID
	}
	return store.RecordSale(ctx, p.db, req)
}

func (p *Panel) GetSale(ctx context.Context, actor *models.User, id int64) (*models.Sale, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	return store.GetSale(ctx, p.db, id)
}

func (p *Panel) DeleteSale(ctx context.Context, actor *models.User, id int64) error {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return err
	}
	return store.DeleteSale(ctx, p.db, id)
}

func (p *Panel) ListSales(ctx context.Context, actor *models.User, from, to time.Time, page, pageSize int) (*store.OffsetPage, error) {
	if err := p.require(actor, access.ManageOrders); err != nil {
		return nil, err
	}
	return store.ListSales(ctx, p.db, from, to, page, pageSize)
}

// Users

func (p *Panel) ListUsers(ctx context.Context, actor *models.User, page, pageSize int) (*store.OffsetPage, error) {
	if err := p.require(actor, access.ManageUsers); err != nil {
		return nil, err
	}
	return store.ListUsers(ctx, p.db, page, pageSize)
}

func (p *Panel) CreateUser(ctx context.Context, actor *models.User, req store.CreateUserRequest) (*models.User, error) {
	if err := p.require(actor, access.ManageUsers); err != nil {
		return nil, err
	}
	return store.CreateUser(ctx, p.db, req)
}

func (p *Panel) SetUserRole(ctx context.Context, actor *models.User, userID int64, role string) (*models.User, error) {
	if err := p.require(actor, access.ManageUsers); err != nil {
		return nil, err
	}
	r, ok := models.ParseRole(role)
	if !ok {
		return nil, database.ErrInvalidRole
	}
	return store.UpdateUserRole(ctx, p.db, userID, r)
}

func (p *Panel) DeleteUser(ctx context.Context, actor *models.User, userID int64) error {
	if err := p.require(actor, access.ManageUsers); err != nil {
		return err
	}
	return store.DeleteUser(ctx, p.db, userID)
}

// Reports

func (p *Panel) Dashboard(ctx context.Context, actor *models.User) (*store.DashboardStats, error) {
	if err := p.require(actor, access.ViewReports); err != nil {
		return nil, err
	}
	return store.GetDashboardStats(ctx, p.db)
}

func (p *Panel) TopSellers(ctx context.Context, actor *models.User, limit int) ([]store.ProductSales, error) {
	if err := p.require(actor, access.ViewReports); err != nil {
		return nil, err
	}
	return store.TopSellingProducts(ctx, p.db, limit)
}
