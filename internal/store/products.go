package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, kind, category_id, type_id, name, description, price, original_price,
	stock, image, featured, active, created_at, updated_at, version`

type ProductInput struct {
	Kind          models.ItemKind
	CategoryID    int64
	TypeID        int64
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Stock         int
	Image         string
	Featured      bool
	Active        bool
}

func (in ProductInput) validate() error {
	if in.Kind != models.KindFood && in.Kind != models.KindAccessory {
		return fmt.Errorf("%w: product kind %q", database.ErrInvalidInput, in.Kind)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: product name is required", database.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", database.ErrInvalidInput)
	}
	if in.OriginalPrice != nil && in.OriginalPrice.IsNegative() {
		return fmt.Errorf("%w: original price must not be negative", database.ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", database.ErrInvalidInput)
	}
	return nil
}

type ProductFilter struct {
	Kind         models.ItemKind
	CategoryID   int64
	TypeID       int64
	ActiveOnly   bool
	FeaturedOnly bool
}

func (f ProductFilter) where() (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.CategoryID != 0 {
		add("category_id = $%d", f.CategoryID)
	}
	if f.TypeID != 0 {
		add("type_id = $%d", f.TypeID)
	}
	if f.ActiveOnly {
		conds = append(conds, "active")
	}
	if f.FeaturedOnly {
		conds = append(conds, "featured")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanProduct(row rowScanner, p *models.Product) error {
	var original decimal.NullDecimal
	err := row.Scan(
		&p.ID,
		&p.Kind,
		&p.CategoryID,
		&p.TypeID,
		&p.Name,
		&p.Description,
		&p.Price,
		&original,
		&p.Stock,
		&p.Image,
		&p.Featured,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Version,
	)
	if err != nil {
		return err
	}
	p.OriginalPrice = nil
	if original.Valid {
		p.OriginalPrice = &original.Decimal
	}
	return nil
}

func nullableDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func CreateProduct(ctx context.Context, q Querier, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{}

	query := `
		INSERT INTO products (kind, category_id, type_id, name, description, price, original_price,
		                      stock, image, featured, active, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW(), 1)
		RETURNING ` + productColumns

	err := scanProduct(q.QueryRowContext(ctx, query,
		in.Kind, in.CategoryID, in.TypeID, in.Name, in.Description, in.Price,
		nullableDecimal(in.OriginalPrice), in.Stock, in.Image, in.Featured, in.Active), product)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: unknown category or type", database.ErrInvalidInput)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, q Querier, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	err := scanProduct(q.QueryRowContext(ctx, query, id), product)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// GetListedProduct returns the product behind ref only if it is active;
// anything else is reported as unavailable.
func GetListedProduct(ctx context.Context, q Querier, ref models.ItemRef) (*models.Product, error) {
	if !ref.IsProduct() {
		return nil, database.ErrProductUnavailable
	}

	product, err := GetProduct(ctx, q, ref.ID())
	if err != nil {
		if err == database.ErrProductNotFound {
			return nil, database.ErrProductUnavailable
		}
		return nil, err
	}
	if product.Kind != ref.Kind() || !product.Active {
		return nil, database.ErrProductUnavailable
	}

	return product, nil
}

// UpdateProduct replaces a product's editable fields if version still
// matches what the editor loaded.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, version int, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{}

	query := `
		UPDATE products
		SET kind = $1, category_id = $2, type_id = $3, name = $4, description = $5,
		    price = $6, original_price = $7, stock = $8, image = $9, featured = $10, active = $11,
		    version = version + 1, updated_at = NOW()
		WHERE id = $12 AND version = $13
		RETURNING ` + productColumns

	err := scanProduct(db.QueryRowContext(ctx, query,
		in.Kind, in.CategoryID, in.TypeID, in.Name, in.Description, in.Price,
		nullableDecimal(in.OriginalPrice), in.Stock, in.Image, in.Featured, in.Active,
		id, version), product)
	if err != nil {
		if err == sql.ErrNoRows {
			if _, getErr := GetProduct(ctx, db, id); getErr != nil {
				return nil, getErr
			}
			return nil, database.ErrConcurrentModification
		}
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: unknown category or type", database.ErrInvalidInput)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func UpdateStockOptimistic(ctx context.Context, db *sql.DB, productID int64, newStock int, version int) error {
	if newStock < 0 {
		return fmt.Errorf("%w: stock must not be negative", database.ErrInvalidInput)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE products
		 SET stock = $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND version = $3`,
		newStock, productID, version)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := GetProduct(ctx, db, productID); err != nil {
			return err
		}
		return database.ErrConcurrentModification
	}

	return nil
}

// DeleteProduct removes a product that no order references. Ordered
// products should be deactivated instead.
func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	return deleteByID(ctx, db, "products", id, database.ErrProductNotFound)
}

func ListProducts(ctx context.Context, db *sql.DB, filter ProductFilter, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)
	where, args := filter.where()

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`
		SELECT %s
		FROM products%s
		ORDER BY name, id
		LIMIT $%d OFFSET $%d`, productColumns, where, len(args)+1, len(args)+2)

	rows, err := db.QueryContext(ctx, query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

// FeaturedProducts returns up to limit active, featured products of kind.
func FeaturedProducts(ctx context.Context, db *sql.DB, kind models.ItemKind, limit int) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE kind = $1 AND featured AND active
		 ORDER BY updated_at DESC, id DESC
		 LIMIT $2`,
		kind, limit)
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

type SearchResults struct {
	Query    string           `json:"query"`
	Products []models.Product `json:"products"`
	Pets     []models.Pet     `json:"pets"`
}

// SearchCatalog matches active products by name, description or category
// name, and available pets by name, breed or description.
func SearchCatalog(ctx context.Context, db *sql.DB, text string, limit int) (*SearchResults, error) {
	results := &SearchResults{Query: text, Products: []models.Product{}, Pets: []models.Pet{}}
	text = strings.TrimSpace(text)
	if text == "" {
		return results, nil
	}
	pattern := "%" + escapeLike(text) + "%"

	rows, err := db.QueryContext(ctx,
		`SELECT `+qualify("p", productColumns)+`
		 FROM products p
		 JOIN categories c ON c.id = p.category_id
		 WHERE p.active
		   AND (p.name ILIKE $1 OR p.description ILIKE $1 OR c.name ILIKE $1)
		 ORDER BY p.name, p.id
		 LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	products, err := collectProducts(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	results.Products = products

	petRows, err := db.QueryContext(ctx,
		`SELECT `+petColumns+`
		 FROM pets
		 WHERE status = $1
		   AND (name ILIKE $2 OR breed ILIKE $2 OR description ILIKE $2)
		 ORDER BY name, id
		 LIMIT $3`,
		models.PetAvailable, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search pets: %w", err)
	}
	defer petRows.Close()

	pets, err := collectPets(petRows)
	if err != nil {
		return nil, err
	}
	results.Pets = pets

	return results, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// qualify prefixes every column in a comma-separated list with alias.
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
