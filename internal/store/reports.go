package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chofys/petshop/internal/models"
	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

type DashboardStats struct {
	TotalSales    int64           `json:"total_sales"`
	Revenue       decimal.Decimal `json:"revenue"`
	TotalOrders   int64           `json:"total_orders"`
	PendingOrders int64           `json:"pending_orders"`
	TotalProducts int64           `json:"total_products"`
	TotalUsers    int64           `json:"total_users"`
	RecentOrders  []models.Order  `json:"recent_orders"`
}

// ProductSales is one row of the top-sellers report.
type ProductSales struct {
	ProductID int64           `json:"product_id"`
	Kind      models.ItemKind `json:"kind"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// GetDashboardStats reads all counters from a single snapshot.
func GetDashboardStats(ctx context.Context, db *sql.DB) (*DashboardStats, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &DashboardStats{}

	err = tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sales),
			(SELECT COALESCE(SUM(o.total), 0) FROM sales s JOIN orders o ON o.id = s.order_id),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = $1),
			(SELECT COUNT(*) FROM products WHERE active),
			(SELECT COUNT(*) FROM users)`,
		models.OrderStatusPending).Scan(
		&stats.TotalSales,
		&stats.Revenue,
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.TotalProducts,
		&stats.TotalUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard counters: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`,
		recentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	defer rows.Close()

	stats.RecentOrders, err = collectOrders(rows)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// TopSellingProducts ranks products by units ordered, ignoring cancelled
// orders.
func TopSellingProducts(ctx context.Context, db *sql.DB, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.kind, p.name, SUM(od.quantity), SUM(od.subtotal)
		FROM order_details od
		JOIN orders o ON o.id = od.order_id
		JOIN products p ON p.id = od.product_id
		WHERE o.status <> $1
		GROUP BY p.id, p.kind, p.name
		ORDER BY SUM(od.quantity) DESC, p.id
		LIMIT $2`,
		models.OrderStatusCancelled, limit)
	if err != nil {
		return nil, fmt.Errorf("top selling products: %w", err)
	}
	defer rows.Close()

	report := []ProductSales{}
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Kind, &ps.Name, &ps.UnitsSold, &ps.Revenue); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		report = append(report, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return report, nil
}
