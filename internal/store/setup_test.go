package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/pricing"
	"github.com/chofys/petshop/internal/store"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start postgres container")

	host, err := postgres.Host(ctx)
	require.NoError(t, err)
	port, err := postgres.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(t, database.Migrate(dsn, "../../migrations", database.MigrateUp), "run migrations")

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCheckout(t *testing.T) store.Checkout {
	t.Helper()
	calc, err := pricing.NewCalculator(dec("0.16"))
	require.NoError(t, err)
	return store.Checkout{Pricing: calc, OrderPrefix: "ORD"}
}

// fixture holds a minimal catalog: one category, one type, a customer and
// an employee.
type fixture struct {
	category *models.Category
	petType  *models.Type
	customer *models.User
	employee *models.User
}

func newFixture(t *testing.T, ctx context.Context, db *sql.DB) *fixture {
	t.Helper()

	category, err := store.CreateCategory(ctx, db, store.CategoryInput{Name: "Alimentos"})
	require.NoError(t, err)
	petType, err := store.CreateType(ctx, db, store.TypeInput{Name: "Perro"})
	require.NoError(t, err)
	customer, err := store.CreateUser(ctx, db, store.CreateUserRequest{
		Username: "ana", Email: "ana@example.com", Address: "Calle 1",
	})
	require.NoError(t, err)
	employee, err := store.CreateUser(ctx, db, store.CreateUserRequest{
		Username: "luis", Role: models.RoleEmployee,
	})
	require.NoError(t, err)

	return &fixture{category: category, petType: petType, customer: customer, employee: employee}
}

func (f *fixture) product(t *testing.T, ctx context.Context, db *sql.DB, kind models.ItemKind, name, price string) *models.Product {
	t.Helper()
	p, err := store.CreateProduct(ctx, db, store.ProductInput{
		Kind:       kind,
		CategoryID: f.category.ID,
		TypeID:     f.petType.ID,
		Name:       name,
		Price:      dec(price),
		Stock:      10,
		Active:     true,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) pet(t *testing.T, ctx context.Context, db *sql.DB, name, price string) *models.Pet {
	t.Helper()
	p, err := store.CreatePet(ctx, db, store.PetInput{
		TypeID:    f.petType.ID,
		Name:      name,
		Breed:     "Mestizo",
		AgeMonths: 4,
		Price:     dec(price),
	})
	require.NoError(t, err)
	return p
}
