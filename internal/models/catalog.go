package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Type struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a purchasable catalog entry: a food or an accessory.
type Product struct {
	ID            int64            `json:"id"`
	Kind          ItemKind         `json:"kind"`
	CategoryID    int64            `json:"category_id"`
	TypeID        int64            `json:"type_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock"`
	Image         string           `json:"image,omitempty"`
	Featured      bool             `json:"featured"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Version       int              `json:"version"`
}

func (p *Product) Ref() ItemRef {
	ref, _ := NewItemRef(p.Kind, p.ID)
	return ref
}

func (p *Product) HasDiscount() bool {
	return p.OriginalPrice != nil && p.Price.LessThan(*p.OriginalPrice)
}

// DiscountPercent is the whole-number percentage off the original price,
// truncated toward zero.
func (p *Product) DiscountPercent() int {
	if !p.HasDiscount() || p.OriginalPrice.IsZero() {
		return 0
	}
	off := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(off.IntPart())
}

type PetStatus string

const (
	PetAvailable PetStatus = "available"
	PetReserved  PetStatus = "reserved"
	PetSold      PetStatus = "sold"
)

func ParsePetStatus(s string) (PetStatus, bool) {
	switch st := PetStatus(s); st {
	case PetAvailable, PetReserved, PetSold:
		return st, true
	}
	return "", false
}

type Pet struct {
	ID          int64           `json:"id"`
	TypeID      int64           `json:"type_id"`
	Name        string          `json:"name"`
	Breed       string          `json:"breed"`
	AgeMonths   int             `json:"age_months"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Status      PetStatus       `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Pet) Ref() ItemRef {
	return PetRef(p.ID)
}
