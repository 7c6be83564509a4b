package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/chofys/petshop/internal/pricing"
	"github.com/google/uuid"
)

const orderColumns = `id, user_id, cart_id, order_number, status, subtotal, tax, total,
	shipping_address, notes, created_at, updated_at, version`

// orderNumberAttempts bounds how many fresh numbers an insert tries when
// the generated one is already taken.
const orderNumberAttempts = 5

// Checkout carries the shop settings order placement depends on.
type Checkout struct {
	Pricing     *pricing.Calculator
	OrderPrefix string
	// NumberFunc generates order numbers; nil means NewOrderNumber.
	NumberFunc func(prefix string, now time.Time) string
}

func (co Checkout) nextNumber() string {
	if co.NumberFunc != nil {
		return co.NumberFunc(co.OrderPrefix, time.Now())
	}
	return NewOrderNumber(co.OrderPrefix, time.Now())
}

type PlaceOrderRequest struct {
	// CartID selects the cart to check out; zero means the user's active cart.
	CartID          int64
	ShippingAddress string
	Notes           string
}

// NewOrderNumber builds PREFIX-YYYYMMDD-XXXXXXXX with a random suffix. The
// UNIQUE constraint on orders.order_number is what guarantees uniqueness.
func NewOrderNumber(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "ORD"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

func scanOrder(row rowScanner, order *models.Order) error {
	var cartID sql.NullInt64
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&cartID,
		&order.OrderNumber,
		&order.Status,
		&order.Subtotal,
		&order.Tax,
		&order.Total,
		&order.ShippingAddress,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		return err
	}
	order.CartID = nil
	if cartID.Valid {
		order.CartID = &cartID.Int64
	}
	return nil
}

// lockCheckoutCart locks the cart being checked out and verifies that it
// belongs to userID and is still active.
func lockCheckoutCart(ctx context.Context, tx *sql.Tx, userID, cartID int64) (int64, error) {
	var id, owner int64
	var active bool

	var err error
	if cartID == 0 {
		err = tx.QueryRowContext(ctx,
			`SELECT id, user_id, active FROM carts WHERE user_id = $1 AND active FOR UPDATE`,
			userID).Scan(&id, &owner, &active)
		if err == sql.ErrNoRows {
			return 0, database.ErrEmptyCart
		}
	} else {
		err = tx.QueryRowContext(ctx,
			`SELECT id, user_id, active FROM carts WHERE id = $1 FOR UPDATE`,
			cartID).Scan(&id, &owner, &active)
		if err == sql.ErrNoRows {
			return 0, database.ErrCartNotFound
		}
	}
	if err != nil {
		return 0, fmt.Errorf("lock cart: %w", err)
	}

	if owner != userID {
		return 0, database.ErrCartNotFound
	}
	if !active {
		return 0, database.ErrCartInactive
	}

	return id, nil
}

// insertOrder stores the order under a fresh number from co. A number
// that collides with an existing order is skipped without aborting tx.
func insertOrder(ctx context.Context, tx *sql.Tx, co Checkout, order *models.Order) error {
	var cartID sql.NullInt64
	if order.CartID != nil {
		cartID = sql.NullInt64{Int64: *order.CartID, Valid: true}
	}

	for i := 0; i < orderNumberAttempts; i++ {
		order.OrderNumber = co.nextNumber()
		err := scanOrder(tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, cart_id, order_number, status, subtotal, tax, total,
			                     shipping_address, notes, created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW(), 1)
			 ON CONFLICT ON CONSTRAINT orders_order_number_key DO NOTHING
			 RETURNING `+orderColumns,
			order.UserID, cartID, order.OrderNumber, models.OrderStatusPending,
			order.Subtotal, order.Tax, order.Total, order.ShippingAddress, order.Notes), order)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	}

	return fmt.Errorf("create order: no free order number after %d attempts", orderNumberAttempts)
}

func insertOrderDetail(ctx context.Context, tx *sql.Tx, detail *models.OrderDetail) error {
	var productID, petID sql.NullInt64
	if detail.Item.Kind() == models.KindPet {
		petID = sql.NullInt64{Int64: detail.Item.ID(), Valid: true}
	} else {
		productID = sql.NullInt64{Int64: detail.Item.ID(), Valid: true}
	}

	err := tx.QueryRowContext(ctx,
		`INSERT INTO order_details (order_id, item_kind, product_id, pet_id, item_name,
		                            quantity, unit_price, subtotal, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 RETURNING id, created_at`,
		detail.OrderID, detail.Item.Kind(), productID, petID, detail.ItemName,
		detail.Quantity, detail.UnitPrice, detail.Subtotal).Scan(&detail.ID, &detail.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order detail: %w", err)
	}
	return nil
}

// PlaceOrder turns the user's cart into an order with frozen prices and
// deactivates the cart in one serializable transaction.
func PlaceOrder(ctx context.Context, db *sql.DB, co Checkout, user *models.User, req PlaceOrderRequest) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.CheckoutTxOptions(), func(tx *sql.Tx) error {
		cartID, err := lockCheckoutCart(ctx, tx, user.ID, req.CartID)
		if err != nil {
			return err
		}

		items, err := loadLineItems(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return database.ErrEmptyCart
		}
		for _, item := range items {
			if !item.Available {
				return fmt.Errorf("%w: %s", database.ErrProductUnavailable, item.ProductName)
			}
		}

		cart := models.Cart{ID: cartID, Items: items}
		totals := co.Pricing.Totals(cart.Total())

		order = &models.Order{
			UserID:          user.ID,
			CartID:          &cartID,
			Subtotal:        totals.Subtotal,
			Tax:             totals.Tax,
			Total:           totals.Total,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			Notes:           req.Notes,
		}
		if err := insertOrder(ctx, tx, co, order); err != nil {
			return err
		}

		for _, item := range items {
			detail := models.OrderDetail{
				OrderID:   order.ID,
				Item:      item.Product,
				ItemName:  item.ProductName,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  item.Subtotal(),
			}
			if err := insertOrderDetail(ctx, tx, &detail); err != nil {
				return err
			}
			order.Details = append(order.Details, detail)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE carts SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`,
			cartID)
		if err != nil {
			return fmt.Errorf("deactivate cart: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return database.ErrCartInactive
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ReservePet turns a customer's enquiry about a pet into a one-line order
// and marks the pet reserved. The pet row is locked NOWAIT so two staff
// members cannot reserve the same animal.
func ReservePet(ctx context.Context, db *sql.DB, co Checkout, customerID, petID int64, shippingAddress, notes string) (*models.Order, error) {
	var order *models.Order

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := GetUser(ctx, tx, customerID); err != nil {
			return err
		}

		pet, err := lockPetNoWait(ctx, tx, petID)
		if err != nil {
			return err
		}
		if pet.Status != models.PetAvailable {
			return database.ErrPetUnavailable
		}

		totals := co.Pricing.Totals(pet.Price)
		order = &models.Order{
			UserID:          customerID,
			Subtotal:        totals.Subtotal,
			Tax:             totals.Tax,
			Total:           totals.Total,
			ShippingAddress: shippingAddress,
			Notes:           notes,
		}
		if err := insertOrder(ctx, tx, co, order); err != nil {
			return err
		}

		detail := models.OrderDetail{
			OrderID:   order.ID,
			Item:      pet.Ref(),
			ItemName:  pet.Name,
			Quantity:  1,
			UnitPrice: pet.Price,
			Subtotal:  pricing.LineSubtotal(pet.Price, 1),
		}
		if err := insertOrderDetail(ctx, tx, &detail); err != nil {
			return err
		}
		order.Details = append(order.Details, detail)

		_, err = tx.ExecContext(ctx,
			`UPDATE pets SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.PetReserved, petID)
		if err != nil {
			return fmt.Errorf("reserve pet: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func loadOrderDetails(ctx context.Context, q Querier, orderID int64) ([]models.OrderDetail, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, item_kind, COALESCE(product_id, pet_id), item_name,
		        quantity, unit_price, subtotal, created_at
		 FROM order_details
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("get order details: %w", err)
	}
	defer rows.Close()

	details := []models.OrderDetail{}
	for rows.Next() {
		var detail models.OrderDetail
		var kind models.ItemKind
		var itemID int64
		err := rows.Scan(
			&detail.ID,
			&detail.OrderID,
			&kind,
			&itemID,
			&detail.ItemName,
			&detail.Quantity,
			&detail.UnitPrice,
			&detail.Subtotal,
			&detail.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		if detail.Item, err = models.NewItemRef(kind, itemID); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return details, nil
}

// GetOrder loads any order with its details. Staff use only; customers go
// through GetOrderForUser.
func GetOrder(ctx context.Context, q Querier, id int64) (*models.Order, error) {
	order := &models.Order{}

	err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	order.Details, err = loadOrderDetails(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrderForUser loads an order only if userID placed it.
func GetOrderForUser(ctx context.Context, db *sql.DB, userID, id int64) (*models.Order, error) {
	order, err := GetOrder(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, database.ErrOrderNotFound
	}
	return order, nil
}

func ListOrdersCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", database.ErrInvalidInput)
	}
	_, limit = NormalizePage(1, limit)

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ListOrders is the staff order list, newest first, optionally narrowed to
// one status.
func ListOrders(ctx context.Context, db *sql.DB, status string, page, pageSize int) (*OffsetPage, error) {
	if status != "" {
		if _, ok := models.ParseOrderStatus(status); !ok {
			return nil, database.ErrInvalidStatus
		}
	}
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`, status).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// TransitionOrder sets an order's status. Any status in the fixed set is
// accepted; anything else fails with ErrInvalidStatus and changes nothing.
func TransitionOrder(ctx context.Context, db *sql.DB, id int64, status string) (*models.Order, error) {
	st, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, database.ErrInvalidStatus
	}

	order := &models.Order{}
	err := scanOrder(db.QueryRowContext(ctx,
		`UPDATE orders
		 SET status = $1, version = version + 1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+orderColumns,
		st, id), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("transition order: %w", err)
	}

	return order, nil
}

func GetNextPendingOrder(ctx context.Context, tx *sql.Tx) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		ORDER BY created_at, id
		FOR UPDATE SKIP LOCKED
		LIMIT 1`

	err := scanOrder(tx.QueryRowContext(ctx, query, models.OrderStatusPending), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get next pending order: %w", err)
	}

	return order, nil
}

// ClaimNextPendingOrder moves the oldest pending order nobody else is
// working on to processing. Concurrent claimers never get the same order.
func ClaimNextPendingOrder(ctx context.Context, db *sql.DB) (*models.Order, error) {
	var order *models.Order

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		next, err := GetNextPendingOrder(ctx, tx)
		if err != nil {
			return err
		}

		order = &models.Order{}
		err = scanOrder(tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $1, version = version + 1, updated_at = NOW()
			 WHERE id = $2
			 RETURNING `+orderColumns,
			models.OrderStatusProcessing, next.ID), order)
		if err != nil {
			return fmt.Errorf("claim order: %w", err)
		}

		order.Details, err = loadOrderDetails(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}
