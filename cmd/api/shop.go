package main

import (
	"net/http"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
	"github.com/shopspring/decimal"
)

const (
	featuredLimit = 8
	searchLimit   = 50
)

func (a *app) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), a.db)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (a *app) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := store.ListTypes(r.Context(), a.db)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, types)
}

func (a *app) listProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	filter := store.ProductFilter{
		Kind:       models.ItemKind(r.URL.Query().Get("kind")),
		CategoryID: queryInt64(r, "category_id"),
		TypeID:     queryInt64(r, "type_id"),
		ActiveOnly: true,
	}

	result, err := store.ListProducts(r.Context(), a.db, filter, page, pageSize)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *app) featuredProducts(w http.ResponseWriter, r *http.Request) {
	kind := models.ItemKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = models.KindFood
	}

	products, err := store.FeaturedProducts(r.Context(), a.db, kind, featuredLimit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// getProduct hides inactive products from the storefront.
func (a *app) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := store.GetProduct(r.Context(), a.db, id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if !product.Active {
		respondErr(w, r, database.ErrProductNotFound)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *app) listPets(w http.ResponseWriter, r *http.Request) {
	pets, err := store.ListPets(r.Context(), a.db, store.PetFilter{
		TypeID: queryInt64(r, "type_id"),
		Status: models.PetAvailable,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pets)
}

func (a *app) getPet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	pet, err := store.GetPet(r.Context(), a.db, id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pet)
}

func (a *app) search(w http.ResponseWriter, r *http.Request) {
	results, err := store.SearchCatalog(r.Context(), a.db, r.URL.Query().Get("q"), searchLimit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (a *app) getProfile(w http.ResponseWriter, r *http.Request, actor *models.User) {
	respondJSON(w, http.StatusOK, actor)
}

func (a *app) updateProfile(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := store.UpdateProfile(r.Context(), a.db, actor.ID, store.ProfileUpdate{
		Email:   req.Email,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type cartView struct {
	*models.Cart
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

func (a *app) getCart(w http.ResponseWriter, r *http.Request, actor *models.User) {
	cart, err := store.GetCart(r.Context(), a.db, actor)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView{
		Cart:      cart,
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
		Currency:  a.currency,
	})
}

func (a *app) addCartItem(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req struct {
		Item     models.ItemRef `json:"item"`
		Quantity int            `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Item.IsZero() {
		respondErr(w, r, models.ErrInvalidItemRef)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := store.AddToCart(r.Context(), a.db, actor, req.Item, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (a *app) updateCartItem(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := store.UpdateCartItem(r.Context(), a.db, actor, id, req.Quantity); err != nil {
		respondErr(w, r, err)
		return
	}
	a.getCart(w, r, actor)
}

func (a *app) removeCartItem(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := store.RemoveCartItem(r.Context(), a.db, actor, id); err != nil {
		respondErr(w, r, err)
		return
	}
	a.getCart(w, r, actor)
}

func (a *app) placeOrder(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req struct {
		CartID          int64  `json:"cart_id"`
		ShippingAddress string `json:"shipping_address"`
		Notes           string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ShippingAddress == "" {
		req.ShippingAddress = actor.Address
	}

	order, err := store.PlaceOrder(r.Context(), a.db, a.checkout, actor, store.PlaceOrderRequest{
		CartID:          req.CartID,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (a *app) listMyOrders(w http.ResponseWriter, r *http.Request, actor *models.User) {
	result, err := store.ListOrdersCursor(r.Context(), a.db, actor.ID, r.URL.Query().Get("cursor"), queryInt(r, "limit"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *app) getMyOrder(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := store.GetOrderForUser(r.Context(), a.db, actor.ID, id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
