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

const petColumns = `id, type_id, name, breed, age_months, description, price, image, status, created_at, updated_at`

type PetInput struct {
	TypeID      int64
	Name        string
	Breed       string
	AgeMonths   int
	Description string
	Price       decimal.Decimal
	Image       string
	Status      models.PetStatus
}

func (in *PetInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: pet name is required", database.ErrInvalidInput)
	}
	if in.AgeMonths < 0 {
		return fmt.Errorf("%w: age must not be negative", database.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", database.ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = models.PetAvailable
	}
	if _, ok := models.ParsePetStatus(string(in.Status)); !ok {
		return database.ErrInvalidPetStatus
	}
	return nil
}

type PetFilter struct {
	TypeID int64
	Status models.PetStatus
}

func scanPet(row rowScanner, p *models.Pet) error {
	return row.Scan(
		&p.ID,
		&p.TypeID,
		&p.Name,
		&p.Breed,
		&p.AgeMonths,
		&p.Description,
		&p.Price,
		&p.Image,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func collectPets(rows *sql.Rows) ([]models.Pet, error) {
	pets := []models.Pet{}
	for rows.Next() {
		var pet models.Pet
		if err := scanPet(rows, &pet); err != nil {
			return nil, fmt.Errorf("scan pet: %w", err)
		}
		pets = append(pets, pet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return pets, nil
}

func CreatePet(ctx context.Context, q Querier, in PetInput) (*models.Pet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	pet := &models.Pet{}

	query := `
		INSERT INTO pets (type_id, name, breed, age_months, description, price, image, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + petColumns

	err := scanPet(q.QueryRowContext(ctx, query,
		in.TypeID, in.Name, in.Breed, in.AgeMonths, in.Description, in.Price, in.Image, in.Status), pet)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: unknown type", database.ErrInvalidInput)
		}
		return nil, fmt.Errorf("create pet: %w", err)
	}

	return pet, nil
}

func GetPet(ctx context.Context, q Querier, id int64) (*models.Pet, error) {
	pet := &models.Pet{}

	err := scanPet(q.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id), pet)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPetNotFound
		}
		return nil, fmt.Errorf("get pet: %w", err)
	}

	return pet, nil
}

func UpdatePet(ctx context.Context, db *sql.DB, id int64, in PetInput) (*models.Pet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	pet := &models.Pet{}

	query := `
		UPDATE pets
		SET type_id = $1, name = $2, breed = $3, age_months = $4, description = $5,
		    price = $6, image = $7, status = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + petColumns

	err := scanPet(db.QueryRowContext(ctx, query,
		in.TypeID, in.Name, in.Breed, in.AgeMonths, in.Description, in.Price, in.Image, in.Status, id), pet)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrPetNotFound
		}
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: unknown type", database.ErrInvalidInput)
		}
		return nil, fmt.Errorf("update pet: %w", err)
	}

	return pet, nil
}

func DeletePet(ctx context.Context, db *sql.DB, id int64) error {
	return deleteByID(ctx, db, "pets", id, database.ErrPetNotFound)
}

func ListPets(ctx context.Context, db *sql.DB, filter PetFilter) ([]models.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE ($1 = 0 OR type_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, filter.TypeID, string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	return collectPets(rows)
}

// lockPetNoWait takes the pet's row lock or fails at once with
// ErrLockTimeout when another staff member holds it.
func lockPetNoWait(ctx context.Context, tx *sql.Tx, id int64) (*models.Pet, error) {
	pet := &models.Pet{}

	query := `SELECT ` + petColumns + ` FROM pets WHERE id = $1 FOR UPDATE NOWAIT`

	err := scanPet(tx.QueryRowContext(ctx, query, id), pet)
	if err != nil {
		if database.IsLockNotAvailable(err) {
			return nil, database.ErrLockTimeout
		}
		if err == sql.ErrNoRows {
			return nil, database.ErrPetNotFound
		}
		return nil, fmt.Errorf("lock pet (nowait): %w", err)
	}

	return pet, nil
}

// SetPetStatus moves a pet to any valid status; there are no automatic
// rules between states.
func SetPetStatus(ctx context.Context, db *sql.DB, id int64, status string) (*models.Pet, error) {
	st, ok := models.ParsePetStatus(status)
	if !ok {
		return nil, database.ErrInvalidPetStatus
	}

	var pet *models.Pet
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := lockPetNoWait(ctx, tx, id); err != nil {
			return err
		}

		pet = &models.Pet{}
		err := scanPet(tx.QueryRowContext(ctx,
			`UPDATE pets SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+petColumns,
			st, id), pet)
		if err != nil {
			return fmt.Errorf("update pet status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pet, nil
}
