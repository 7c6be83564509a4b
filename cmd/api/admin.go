package main

import (
	"net/http"
	"time"

	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/store"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (c categoryRequest) input() store.CategoryInput {
	return store.CategoryInput{Name: c.Name, Description: c.Description, Image: c.Image}
}

type typeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (t typeRequest) input() store.TypeInput {
	return store.TypeInput{Name: t.Name, Description: t.Description, Icon: t.Icon}
}

type productRequest struct {
	Kind          models.ItemKind  `json:"kind"`
	CategoryID    int64            `json:"category_id"`
	TypeID        int64            `json:"type_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Stock         int              `json:"stock"`
	Image         string           `json:"image"`
	Featured      bool             `json:"featured"`
	Active        bool             `json:"active"`
	Version       int              `json:"version"`
}

func (p productRequest) input() store.ProductInput {
	return store.ProductInput{
		Kind:          p.Kind,
		CategoryID:    p.CategoryID,
		TypeID:        p.TypeID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Stock:         p.Stock,
		Image:         p.Image,
		Featured:      p.Featured,
		Active:        p.Active,
	}
}

type petRequest struct {
	TypeID      int64            `json:"type_id"`
	Name        string           `json:"name"`
	Breed       string           `json:"breed"`
	AgeMonths   int              `json:"age_months"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Image       string           `json:"image"`
	Status      models.PetStatus `json:"status"`
}

func (p petRequest) input() store.PetInput {
	return store.PetInput{
		TypeID:      p.TypeID,
		Name:        p.Name,
		Breed:       p.Breed,
		AgeMonths:   p.AgeMonths,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Status:      p.Status,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (a *app) adminCreateCategory(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := a.panel.CreateCategory(r.Context(), actor, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (a *app) adminUpdateCategory(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := a.panel.UpdateCategory(r.Context(), actor, id, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (a *app) adminDeleteCategory(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.panel.DeleteCategory(r.Context(), actor, id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) adminCreateType(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req typeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := a.panel.CreateType(r.Context(), actor, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (a *app) adminUpdateType(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req typeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := a.panel.UpdateType(r.Context(), actor, id, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (a *app) adminDeleteType(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.panel.DeleteType(r.Context(), actor, id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) adminListProducts(w http.ResponseWriter, r *http.Request, actor *models.User) {
	page, pageSize := pageParams(r)
	filter := store.ProductFilter{
		Kind:       models.ItemKind(r.URL.Query().Get("kind")),
		CategoryID: queryInt64(r, "category_id"),
		TypeID:     queryInt64(r, "type_id"),
	}
	result, err := a.panel.ListProducts(r.Context(), actor, filter, page, pageSize)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *app) adminCreateProduct(w http.ResponseWriter, r *http.Request, actor *models.User) {
	req := productRequest{Active: true}
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := a.panel.CreateProduct(r.Context(), actor, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (a *app) adminUpdateProduct(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := a.panel.UpdateProduct(r.Context(), actor, id, req.Version, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *app) adminSetStock(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Stock   int `json:"stock"`
		Version int `json:"version"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.panel.SetStock(r.Context(), actor, id, req.Stock, req.Version); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) adminDeleteProduct(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.panel.DeleteProduct(r.Context(), actor, id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) adminCreatePet(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req petRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pet, err := a.panel.CreatePet(r.Context(), actor, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, pet)
}

func (a *app) adminUpdatePet(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req petRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pet, err := a.panel.UpdatePet(r.Context(), actor, id, req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pet)
}

func (a *app) adminSetPetStatus(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pet, err := a.panel.SetPetStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pet)
}

func (a *app) adminReservePet(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		CustomerID      int64  `json:"customer_id"`
		ShippingAddress string `json:"shipping_address"`
		Notes           string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := a.panel.ReservePet(r.Context(), actor, req.CustomerID, id, req.ShippingAddress, req.Notes)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (a *app) adminDeletePet(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.panel.DeletePet(r.Context(), actor, id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) adminListOrders(w http.ResponseWriter, r *http.Request, actor *models.User) {
	page, pageSize := pageParams(r)
	result, err := a.panel.ListOrders(r.Context(), actor, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *app) adminGetOrder(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := a.panel.GetOrder(r.Context(), actor, id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (a *app) adminTransitionOrder(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := a.panel.TransitionOrder(r.Context(), actor, id, req.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (a *app) adminClaimOrder(w http.ResponseWriter, r *http.Request, actor *models.User) {
	order, err := a.panel.ClaimNextOrder(r.Context(), actor)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (a *app) adminRecordSale(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req struct {
		OrderID   int64  `json:"order_id"`
		Method    string `json:"payment_method"`
		Reference string `json:"payment_reference"`
		SellerID  *int64 `json:"seller_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	sale, err := a.panel.RecordSale(r.Context(), actor, store.RecordSaleRequest{
		OrderID:   req.OrderID,
		Method:    req.Method,
		Reference: req.Reference,
		SellerID:  req.SellerID,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

// adminListSales takes from/to as YYYY-MM-DD; to is inclusive.
func (a *app) adminListSales(w http.ResponseWriter, r *http.Request, actor *models.User) {
	from, to, ok := parseDateRange(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)
	result, err := a.panel.ListSales(r.Context(), actor, from, to, page, pageSize)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func parseDateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error

	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = time.ParseInLocation(dateLayout, s, time.Local); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from date")
			return from, to, false
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = time.ParseInLocation(dateLayout, s, time.Local); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to date")
			return from, to, false
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, true
}

func (a *app) adminGetSale(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sale, err := a.panel.GetSale(r.Context(), actor, id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

func (a *app) adminDeleteSale(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.panel.DeleteSale(r.Context(), actor, id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) adminListUsers(w http.ResponseWriter, r *http.Request, actor *models.User) {
	page, pageSize := pageParams(r)
	result, err := a.panel.ListUsers(r.Context(), actor, page, pageSize)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *app) adminCreateUser(w http.ResponseWriter, r *http.Request, actor *models.User) {
	var req struct {
		Username string      `json:"username"`
		Email    string      `json:"email"`
		Name     string      `json:"name"`
		Phone    string      `json:"phone"`
		Address  string      `json:"address"`
		Role     models.Role `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := a.panel.CreateUser(r.Context(), actor, store.CreateUserRequest{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (a *app) adminSetUserRole(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := a.panel.SetUserRole(r.Context(), actor, id, req.Role)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (a *app) adminDeleteUser(w http.ResponseWriter, r *http.Request, actor *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := a.panel.DeleteUser(r.Context(), actor, id); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) adminDashboard(w http.ResponseWriter, r *http.Request, actor *models.User) {
	stats, err := a.panel.Dashboard(r.Context(), actor)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (a *app) adminTopProducts(w http.ResponseWriter, r *http.Request, actor *models.User) {
	report, err := a.panel.TopSellers(r.Context(), actor, queryInt(r, "limit"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
