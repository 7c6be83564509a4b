package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/chofys/petshop/internal/access"
	"github.com/chofys/petshop/internal/admin"
	"github.com/chofys/petshop/internal/config"
	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/pricing"
	"github.com/chofys/petshop/internal/store"
)

type app struct {
	db       *sql.DB
	panel    *admin.Panel
	checkout store.Checkout
	currency string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	calc, err := pricing.NewCalculator(cfg.Shop.TaxRate)
	if err != nil {
		log.Fatalf("Pricing: %v", err)
	}

	gate, err := access.NewGate()
	if err != nil {
		log.Fatalf("Role gate: %v", err)
	}

	checkout := store.Checkout{Pricing: calc, OrderPrefix: cfg.Shop.OrderPrefix}
	a := &app{
		db:       db,
		panel:    admin.NewPanel(db, gate, checkout),
		checkout: checkout,
		currency: cfg.Shop.Currency,
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on port %s (tax rate %s, currency %s)", cfg.Server.Port, calc.TaxRate(), cfg.Shop.Currency)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /categories", a.listCategories)
	mux.HandleFunc("GET /types", a.listTypes)
	mux.HandleFunc("GET /products", a.listProducts)
	mux.HandleFunc("GET /products/featured", a.featuredProducts)
	mux.HandleFunc("GET /products/{id}", a.getProduct)
	mux.HandleFunc("GET /pets", a.listPets)
	mux.HandleFunc("GET /pets/{id}", a.getPet)
	mux.HandleFunc("GET /search", a.search)

	mux.HandleFunc("GET /me", a.withActor(a.getProfile))
	mux.HandleFunc("PUT /me", a.withActor(a.updateProfile))
	mux.HandleFunc("GET /cart", a.withActor(a.getCart))
	mux.HandleFunc("POST /cart/items", a.withActor(a.addCartItem))
	mux.HandleFunc("PATCH /cart/items/{id}", a.withActor(a.updateCartItem))
	mux.HandleFunc("DELETE /cart/items/{id}", a.withActor(a.removeCartItem))
	mux.HandleFunc("POST /orders", a.withActor(a.placeOrder))
	mux.HandleFunc("GET /orders", a.withActor(a.listMyOrders))
	mux.HandleFunc("GET /orders/{id}", a.withActor(a.getMyOrder))

	mux.HandleFunc("POST /admin/categories", a.withActor(a.adminCreateCategory))
	mux.HandleFunc("PUT /admin/categories/{id}", a.withActor(a.adminUpdateCategory))
	mux.HandleFunc("DELETE /admin/categories/{id}", a.withActor(a.adminDeleteCategory))
	mux.HandleFunc("POST /admin/types", a.withActor(a.adminCreateType))
	mux.HandleFunc("PUT /admin/types/{id}", a.withActor(a.adminUpdateType))
	mux.HandleFunc("DELETE /admin/types/{id}", a.withActor(a.adminDeleteType))
	mux.HandleFunc("GET /admin/products", a.withActor(a.adminListProducts))
	mux.HandleFunc("POST /admin/products", a.withActor(a.adminCreateProduct))
	mux.HandleFunc("PUT /admin/products/{id}", a.withActor(a.adminUpdateProduct))
	mux.HandleFunc("PATCH /admin/products/{id}/stock", a.withActor(a.adminSetStock))
	mux.HandleFunc("DELETE /admin/products/{id}", a.withActor(a.adminDeleteProduct))
	mux.HandleFunc("POST /admin/pets", a.withActor(a.adminCreatePet))
	mux.HandleFunc("PUT /admin/pets/{id}", a.withActor(a.adminUpdatePet))
	mux.HandleFunc("PATCH /admin/pets/{id}/status", a.withActor(a.adminSetPetStatus))
	mux.HandleFunc("POST /admin/pets/{id}/reserve", a.withActor(a.adminReservePet))
	mux.HandleFunc("DELETE /admin/pets/{id}", a.withActor(a.adminDeletePet))

	mux.HandleFunc("GET /admin/orders", a.withActor(a.adminListOrders))
	mux.HandleFunc("POST /admin/orders/claim", a.withActor(a.adminClaimOrder))
	mux.HandleFunc("GET /admin/orders/{id}", a.withActor(a.adminGetOrder))
	mux.HandleFunc("PATCH /admin/orders/{id}/status", a.withActor(a.adminTransitionOrder))
	mux.HandleFunc("POST /admin/sales", a.withActor(a.adminRecordSale))
	mux.HandleFunc("GET /admin/sales", a.withActor(a.adminListSales))
	mux.HandleFunc("GET /admin/sales/{id}", a.withActor(a.adminGetSale))
	mux.HandleFunc("DELETE /admin/sales/{id}", a.withActor(a.adminDeleteSale))

	mux.HandleFunc("GET /admin/users", a.withActor(a.adminListUsers))
	mux.HandleFunc("POST /admin/users", a.withActor(a.adminCreateUser))
	mux.HandleFunc("PATCH /admin/users/{id}/role", a.withActor(a.adminSetUserRole))
	mux.HandleFunc("DELETE /admin/users/{id}", a.withActor(a.adminDeleteUser))
	mux.HandleFunc("GET /admin/dashboard", a.withActor(a.adminDashboard))
	mux.HandleFunc("GET /admin/reports/top-products", a.withActor(a.adminTopProducts))

	return mux
}
