package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
)

type CategoryInput struct {
	Name        string
	Description string
	Image       string
}

type TypeInput struct {
	Name        string
	Description string
	Icon        string
}

func CreateCategory(ctx context.Context, q Querier, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", database.ErrInvalidInput)
	}

	c := &models.Category{}
	err := q.QueryRowContext(ctx,
		`INSERT INTO categories (name, description, image, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, name, description, image, created_at`,
		in.Name, in.Description, in.Image).Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return c, nil
}

func GetCategory(ctx context.Context, q Querier, id int64) (*models.Category, error) {
	c := &models.Category{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, description, image, created_at FROM categories WHERE id = $1`,
		id).Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return c, nil
}

func GetCategoryByName(ctx context.Context, q Querier, name string) (*models.Category, error) {
	c := &models.Category{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, description, image, created_at FROM categories WHERE name = $1 ORDER BY id LIMIT 1`,
		name).Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}

	return c, nil
}

func UpdateCategory(ctx context.Context, db *sql.DB, id int64, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: category name is required", database.ErrInvalidInput)
	}

	c := &models.Category{}
	err := db.QueryRowContext(ctx,
		`UPDATE categories SET name = $1, description = $2, image = $3
		 WHERE id = $4
		 RETURNING id, name, description, image, created_at`,
		in.Name, in.Description, in.Image, id).Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return c, nil
}

func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	return deleteByID(ctx, db, "categories", id, database.ErrCategoryNotFound)
}

func ListCategories(ctx context.Context, db *sql.DB) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, image, created_at FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Image, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

func CreateType(ctx context.Context, q Querier, in TypeInput) (*models.Type, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: type name is required", database.ErrInvalidInput)
	}

	t := &models.Type{}
	err := q.QueryRowContext(ctx,
		`INSERT INTO types (name, description, icon, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, name, description, icon, created_at`,
		in.Name, in.Description, in.Icon).Scan(&t.ID, &t.Name, &t.Description, &t.Icon, &t.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "types_name_key") {
			return nil, database.ErrDuplicateName
		}
		return nil, fmt.Errorf("create type: %w", err)
	}

	return t, nil
}

func GetType(ctx context.Context, q Querier, id int64) (*models.Type, error) {
	t := &models.Type{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, description, icon, created_at FROM types WHERE id = $1`,
		id).Scan(&t.ID, &t.Name, &t.Description, &t.Icon, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrTypeNotFound
		}
		return nil, fmt.Errorf("get type: %w", err)
	}

	return t, nil
}

func GetTypeByName(ctx context.Context, q Querier, name string) (*models.Type, error) {
	t := &models.Type{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, description, icon, created_at FROM types WHERE name = $1`,
		name).Scan(&t.ID, &t.Name, &t.Description, &t.Icon, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrTypeNotFound
		}
		return nil, fmt.Errorf("get type by name: %w", err)
	}

	return t, nil
}

func UpdateType(ctx context.Context, db *sql.DB, id int64, in TypeInput) (*models.Type, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: type name is required", database.ErrInvalidInput)
	}

	t := &models.Type{}
	err := db.QueryRowContext(ctx,
		`UPDATE types SET name = $1, description = $2, icon = $3
		 WHERE id = $4
		 RETURNING id, name, description, icon, created_at`,
		in.Name, in.Description, in.Icon, id).Scan(&t.ID, &t.Name, &t.Description, &t.Icon, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrTypeNotFound
		}
		if database.IsUniqueViolation(err, "types_name_key") {
			return nil, database.ErrDuplicateName
		}
		return nil, fmt.Errorf("update type: %w", err)
	}

	return t, nil
}

func DeleteType(ctx context.Context, db *sql.DB, id int64) error {
	return deleteByID(ctx, db, "types", id, database.ErrTypeNotFound)
}

func ListTypes(ctx context.Context, db *sql.DB) ([]models.Type, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, icon, created_at FROM types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	defer rows.Close()

	types := []models.Type{}
	for rows.Next() {
		var t models.Type
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Icon, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return types, nil
}

// deleteByID removes one row from a catalog table. table is always a
// constant from this package, never user input.
func deleteByID(ctx context.Context, db *sql.DB, table string, id int64, notFound error) error {
	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return database.ErrInUse
		}
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
