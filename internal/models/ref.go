package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ItemKind string

const (
	KindFood      ItemKind = "food"
	KindAccessory ItemKind = "accessory"
	KindPet       ItemKind = "pet"
)

var ErrInvalidItemRef = errors.New("invalid item reference")

// ItemRef points at exactly one sellable thing. The zero value refers to
// nothing; build one with FoodRef, AccessoryRef, PetRef or NewItemRef.
type ItemRef struct {
	kind ItemKind
	id   int64
}

func FoodRef(id int64) ItemRef      { return ItemRef{kind: KindFood, id: id} }
func AccessoryRef(id int64) ItemRef { return ItemRef{kind: KindAccessory, id: id} }
func PetRef(id int64) ItemRef       { return ItemRef{kind: KindPet, id: id} }

func NewItemRef(kind ItemKind, id int64) (ItemRef, error) {
	if id <= 0 {
		return ItemRef{}, fmt.Errorf("%w: id %d", ErrInvalidItemRef, id)
	}
	switch kind {
	case KindFood, KindAccessory, KindPet:
		return ItemRef{kind: kind, id: id}, nil
	}
	return ItemRef{}, fmt.Errorf("%w: kind %q", ErrInvalidItemRef, kind)
}

func (r ItemRef) Kind() ItemKind { return r.kind }
func (r ItemRef) ID() int64      { return r.id }
func (r ItemRef) IsZero() bool   { return r.kind == "" }

// IsProduct is true for refs that live in the products table and can go
// into a cart.
func (r ItemRef) IsProduct() bool {
	return r.kind == KindFood || r.kind == KindAccessory
}

func (r ItemRef) String() string {
	if r.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", r.kind, r.id)
}

type itemRefJSON struct {
	Kind ItemKind `json:"kind"`
	ID   int64    `json:"id"`
}

func (r ItemRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(itemRefJSON{Kind: r.kind, ID: r.id})
}

func (r *ItemRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ItemRef{}
		return nil
	}
	var raw itemRefJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ref, err := NewItemRef(raw.Kind, raw.ID)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
