package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chofys/petshop/internal/database"
	"github.com/chofys/petshop/internal/models"
)

const saleColumns = `s.id, s.order_id, o.order_number, s.payment_method, s.payment_reference, s.seller_id, s.created_at`

type RecordSaleRequest struct {
	OrderID   int64
	Method    string
	Reference string
	SellerID  *int64
}

func scanSale(row rowScanner, sale *models.Sale) error {
	var sellerID sql.NullInt64
	err := row.Scan(
		&sale.ID,
		&sale.OrderID,
		&sale.OrderNumber,
		&sale.PaymentMethod,
		&sale.PaymentReference,
		&sellerID,
		&sale.CreatedAt,
	)
	if err != nil {
		return err
	}
	sale.SellerID = nil
	if sellerID.Valid {
		sale.SellerID = &sellerID.Int64
	}
	return nil
}

// RecordSale attaches a payment record to an order. An order has at most
// one sale; a second attempt fails with ErrDuplicateSale and leaves the
// first untouched.
func RecordSale(ctx context.Context, db *sql.DB, req RecordSaleRequest) (*models.Sale, error) {
	method, ok := models.ParsePaymentMethod(req.Method)
	if !ok {
		return nil, database.ErrInvalidPaymentMethod
	}

	var sale *models.Sale

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var orderNumber string
		err := tx.QueryRowContext(ctx,
			`SELECT order_number FROM orders WHERE id = $1`, req.OrderID).Scan(&orderNumber)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}

		var sellerID sql.NullInt64
		if req.SellerID != nil {
			seller, err := GetUser(ctx, tx, *req.SellerID)
			if err != nil {
				if err == database.ErrUserNotFound {
					return database.ErrInvalidSeller
				}
				return err
			}
			if !seller.IsStaff() {
				return database.ErrInvalidSeller
			}
			sellerID = sql.NullInt64{Int64: seller.ID, Valid: true}
		}

		sale = &models.Sale{OrderID: req.OrderID, OrderNumber: orderNumber, PaymentMethod: method, PaymentReference: req.Reference}
		var storedSeller sql.NullInt64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO sales (order_id, payment_method, payment_reference, seller_id, created_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 ON CONFLICT ON CONSTRAINT sales_order_id_key DO NOTHING
			 RETURNING id, seller_id, created_at`,
			req.OrderID, method, req.Reference, sellerID).Scan(&sale.ID, &storedSeller, &sale.CreatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrDuplicateSale
			}
			return fmt.Errorf("record sale: %w", err)
		}
		if storedSeller.Valid {
			sale.SellerID = &storedSeller.Int64
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

// DeleteSale removes a payment record so it can be recorded again with
// the right method or reference. The order itself is untouched.
func DeleteSale(ctx context.Context, db *sql.DB, id int64) error {
	return deleteByID(ctx, db, "sales", id, database.ErrSaleNotFound)
}

func GetSale(ctx context.Context, q Querier, id int64) (*models.Sale, error) {
	sale := &models.Sale{}

	err := scanSale(q.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales s JOIN orders o ON o.id = s.order_id WHERE s.id = $1`, id), sale)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return sale, nil
}

func GetSaleByOrder(ctx context.Context, q Querier, orderID int64) (*models.Sale, error) {
	sale := &models.Sale{}

	err := scanSale(q.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales s JOIN orders o ON o.id = s.order_id WHERE s.order_id = $1`, orderID), sale)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale by order: %w", err)
	}

	return sale, nil
}

// ListSales pages through sales recorded in [from, to), newest first. A
// zero bound is open.
func ListSales(ctx context.Context, db *sql.DB, from, to time.Time, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = NormalizePage(page, pageSize)

	var fromArg, toArg sql.NullTime
	if !from.IsZero() {
		fromArg = sql.NullTime{Time: from, Valid: true}
	}
	if !to.IsZero() {
		toArg = sql.NullTime{Time: to, Valid: true}
	}

	const where = `WHERE ($1::timestamptz IS NULL OR s.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR s.created_at < $2)`

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales s `+where, fromArg, toArg).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count sales: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+saleColumns+`
		 FROM sales s
		 JOIN orders o ON o.id = s.order_id
		 `+where+`
		 ORDER BY s.created_at DESC, s.id DESC
		 LIMIT $3 OFFSET $4`,
		fromArg, toArg, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		var sale models.Sale
		if err := scanSale(rows, &sale); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(sales, total, page, pageSize), nil
}
