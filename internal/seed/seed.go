// Package seed loads a catalog described in YAML into the database.
// Categories, types and users are matched by name and reused; products
// and pets are always inserted.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Categories []Category `yaml:"categories"`
	Types      []Type     `yaml:"types"`
	Products   []Product  `yaml:"products"`
	Pets       []Pet      `yaml:"pets"`
	Users      []User     `yaml:"users"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type Type struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

type Product struct {
	Kind          models.ItemKind  `yaml:"kind"`
	Category      string           `yaml:"category"`
	Type          string           `yaml:"type"`
	Name          string           `yaml:"name"`
	Description   string           `yaml:"description"`
	Price         decimal.Decimal  `yaml:"price"`
	OriginalPrice *decimal.Decimal `yaml:"original_price"`
	Stock         int              `yaml:"stock"`
	Image         string           `yaml:"image"`
	Featured      bool             `yaml:"featured"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active"`
}

type Pet struct {
	Type        string           `yaml:"type"`
	Name        string           `yaml:"name"`
	Breed       string           `yaml:"breed"`
	AgeMonths   int              `yaml:"age_months"`
	Description string           `yaml:"description"`
	Price       decimal.Decimal  `yaml:"price"`
	Image       string           `yaml:"image"`
	Status      models.PetStatus `yaml:"status"`
}

type User struct {
	Username string      `yaml:"username"`
	Email    string      `yaml:"email"`
	Name     string      `yaml:"name"`
	Phone    string      `yaml:"phone"`
	Address  string      `yaml:"address"`
	Role     models.Role `yaml:"role"`
}

type Result struct {
	Categories int
	Types      int
	Products   int
	Pets       int
	Users      int
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate checks that every product and pet names a category and type
// that exist in the file.
func (c *Catalog) validate() error {
	categories := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		categories[cat.Name] = true
	}
	types := make(map[string]bool, len(c.Types))
	for _, t := range c.Types {
		types[t.Name] = true
	}

	for _, p := range c.Products {
		if !categories[p.Category] {
			return fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
		if !types[p.Type] {
			return fmt.Errorf("product %q: unknown type %q", p.Name, p.Type)
		}
	}
	for _, p := range c.Pets {
		if !types[p.Type] {
			return fmt.Errorf("pet %q: unknown type %q", p.Name, p.Type)
		}
	}
	return nil
}

// Apply writes the catalog in one transaction.
func Apply(ctx context.Context, db *sql.DB, c *Catalog) (*Result, error) {
	var res *Result

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		res = &Result{}
		categoryIDs := make(map[string]int64, len(c.Categories))
		typeIDs := make(map[string]int64, len(c.Types))

		for _, in := range c.Categories {
			cat, err := store.GetCategoryByName(ctx, tx, in.Name)
			if err == database.ErrCategoryNotFound {
				cat, err = store.CreateCategory(ctx, tx, store.CategoryInput{
					Name: in.Name, Description: in.Description, Image: in.Image,
				})
				res.Categories++
			}
			if err != nil {
				return fmt.Errorf("category %q: %w", in.Name, err)
			}
			categoryIDs[in.Name] = cat.ID
		}

		for _, in := range c.Types {
			t, err := store.GetTypeByName(ctx, tx, in.Name)
			if err == database.ErrTypeNotFound {
				t, err = store.CreateType(ctx, tx, store.TypeInput{
					Name: in.Name, Description: in.Description, Icon: in.Icon,
				})
				res.Types++
			}
			if err != nil {
				return fmt.Errorf("type %q: %w", in.Name, err)
			}
			typeIDs[in.Name] = t.ID
		}

		for _, in := range c.Products {
			active := in.Active == nil || *in.Active
			_, err := store.CreateProduct(ctx, tx, store.ProductInput{
				Kind:          in.Kind,
				CategoryID:    categoryIDs[in.Category],
				TypeID:        typeIDs[in.Type],
				Name:          in.Name,
				Description:   in.Description,
				Price:         in.Price,
				OriginalPrice: in.OriginalPrice,
				Stock:         in.Stock,
				Image:         in.Image,
				Featured:      in.Featured,
				Active:        active,
			})
			if err != nil {
				return fmt.Errorf("product %q: %w", in.Name, err)
			}
			res.Products++
		}

		for _, in := range c.Pets {
			_, err := store.CreatePet(ctx, tx, store.PetInput{
				TypeID:      typeIDs[in.Type],
				Name:        in.Name,
				Breed:       in.Breed,
				AgeMonths:   in.AgeMonths,
				Description: in.Description,
				Price:       in.Price,
				Image:       in.Image,
				Status:      in.Status,
			})
			if err != nil {
				return fmt.Errorf("pet %q: %w", in.Name, err)
			}
			res.Pets++
		}

		for _, in := range c.Users {
			_, err := store.GetUserByUsername(ctx, tx, in.Username)
			if err == nil {
				continue
			}
			if err != database.ErrUserNotFound {
				return fmt.Errorf("user %q: %w", in.Username, err)
			}
			_, err = store.CreateUser(ctx, tx, store.CreateUserRequest{
				Username: in.Username,
				Email:    in.Email,
				Name:     in.Name,
				Phone:    in.Phone,
				Address:  in.Address,
				Role:     in.Role,
			})
			if err != nil {
				return fmt.Errorf("user %q: %w", in.Username, err)
			}
			res.Users++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
