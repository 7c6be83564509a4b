package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
	"github.com/shopspring/decimal"
)

const activeCartAttempts = 3

// getOrCreateActiveCart returns the user's single active cart, creating it
// if needed, and leaves its row locked when q is a transaction. The partial
// unique index carts_one_active_per_user makes concurrent creators converge
// on one row.
func getOrCreateActiveCart(ctx context.Context, q Querier, userID int64) (*models.Cart, error) {
	for attempt := 0; attempt < activeCartAttempts; attempt++ {
		cart := &models.Cart{}

		err := q.QueryRowContext(ctx,
			`INSERT INTO carts (user_id, active, created_at, updated_at)
			 VALUES ($1, TRUE, NOW(), NOW())
			 ON CONFLICT (user_id) WHERE active DO NOTHING
			 RETURNING id, user_id, active, created_at, updated_at`,
			userID).Scan(&cart.ID, &cart.UserID, &cart.Active, &cart.CreatedAt, &cart.UpdatedAt)
		if err == nil {
			return cart, nil
		}
		if err != sql.ErrNoRows {
			if database.IsForeignKeyViolation(err) {
				return nil, database.ErrUserNotFound
			}
			return nil, fmt.Errorf("create cart: %w", err)
		}

		// Another request owns the active cart; a checkout may deactivate it
		// before our lock is granted, in which case we start over.
		err = q.QueryRowContext(ctx,
			`SELECT id, user_id, active, created_at, updated_at
			 FROM carts
			 WHERE user_id = $1 AND active
			 FOR UPDATE`,
			userID).Scan(&cart.ID, &cart.UserID, &cart.Active, &cart.CreatedAt, &cart.UpdatedAt)
		if err == nil {
			return cart, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("lock cart: %w", err)
		}
	}

	return nil, database.ErrConcurrentModification
}

func loadLineItems(ctx context.Context, q Querier, cartID int64) ([]models.LineItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT li.id, li.cart_id, p.kind, p.id, p.name, p.price, li.quantity, p.active, li.created_at
		 FROM line_items li
		 JOIN products p ON p.id = li.product_id
		 WHERE li.cart_id = $1
		 ORDER BY li.id`,
		cartID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		var kind models.ItemKind
		var productID int64
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&kind,
			&productID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.Available,
			&item.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		if item.Product, err = models.NewItemRef(kind, productID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// GetCart returns the user's active cart with its items priced at current
// catalog prices. The cart is created on first access.
func GetCart(ctx context.Context, db *sql.DB, user *models.User) (*models.Cart, error) {
	var cart *models.Cart

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var err error
		cart, err = getOrCreateActiveCart(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		cart.Items, err = loadLineItems(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// CartTotal sums unit price × quantity over the user's active cart. It reads
// the items fresh on every call.
func CartTotal(ctx context.Context, db *sql.DB, user *models.User) (decimal.Decimal, error) {
	cart, err := GetCart(ctx, db, user)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

// AddToCart puts quantity units of the referenced product in the user's
// active cart. An existing line for the same product is incremented, as
// long as the merged quantity stays within models.MaxLineQuantity.
func AddToCart(ctx context.Context, db *sql.DB, user *models.User, ref models.ItemRef, quantity int) (*models.LineItem, error) {
	if ref.Kind() == models.KindPet {
		return nil, database.ErrPetRequiresContact
	}
	if quantity <= 0 || quantity > models.MaxLineQuantity {
		return nil, database.ErrInvalidQuantity
	}

	var item *models.LineItem

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		product, err := GetListedProduct(ctx, tx, ref)
		if err != nil {
			return err
		}

		cart, err := getOrCreateActiveCart(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		item = &models.LineItem{
			CartID:      cart.ID,
			Product:     ref,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Available:   true,
		}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO line_items (cart_id, product_id, quantity, created_at)
			 VALUES ($1, $2, $3, NOW())
			 ON CONFLICT ON CONSTRAINT line_items_cart_product_key
			 DO UPDATE SET quantity = line_items.quantity + EXCLUDED.quantity
			 WHERE line_items.quantity + EXCLUDED.quantity <= $4
			 RETURNING id, quantity, created_at`,
			cart.ID, product.ID, quantity, models.MaxLineQuantity).Scan(&item.ID, &item.Quantity, &item.AddedAt)
		if err == sql.ErrNoRows {
			return database.ErrInvalidQuantity
		}
		if err != nil {
			return fmt.Errorf("upsert line item: %w", err)
		}

		return touchCart(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// lockOwnedLineItem finds a line item in the user's active cart and locks
// the cart. Items in other users' carts are reported as not found.
func lockOwnedLineItem(ctx context.Context, tx *sql.Tx, userID, itemID int64) (int64, error) {
	var cartID int64
	err := tx.QueryRowContext(ctx,
		`SELECT c.id
		 FROM line_items li
		 JOIN carts c ON c.id = li.cart_id
		 WHERE li.id = $1 AND c.user_id = $2 AND c.active
		 FOR UPDATE OF c`,
		itemID, userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, database.ErrCartItemNotFound
		}
		return 0, fmt.Errorf("lock line item: %w", err)
	}
	return cartID, nil
}

// UpdateCartItem sets an item's quantity. A quantity of zero or less
// removes the item.
func UpdateCartItem(ctx context.Context, db *sql.DB, user *models.User, itemID int64, quantity int) error {
	if quantity > models.MaxLineQuantity {
		return database.ErrInvalidQuantity
	}

	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		cartID, err := lockOwnedLineItem(ctx, tx, user.ID, itemID)
		if err != nil {
			return err
		}

		if quantity <= 0 {
			_, err = tx.ExecContext(ctx, `DELETE FROM line_items WHERE id = $1`, itemID)
		} else {
			_, err = tx.ExecContext(ctx, `UPDATE line_items SET quantity = $1 WHERE id = $2`, quantity, itemID)
		}
		if err != nil {
			return fmt.Errorf("update line item: %w", err)
		}

		return touchCart(ctx, tx, cartID)
	})
}

func RemoveCartItem(ctx context.Context, db *sql.DB, user *models.User, itemID int64) error {
	return UpdateCartItem(ctx, db, user, itemID, 0)
}

func touchCart(ctx context.Context, tx *sql.Tx, cartID int64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
