package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sales-dashboard/internal/models"

	_ "github.com/lib/pq"
)

const (
	pingRetries   = 5
	pingRetryWait = 2 * time.Second
)

const selectOrders = `
	SELECT order_date, city, product, payment_method, customer_name, quantity, price
	FROM orders
	ORDER BY order_date`

// PostgresSource loads the dataset from an orders table. It is a one-shot
// reader, not a connection pool for the request path: the dashboard serves
// from memory after load.
type PostgresSource struct {
	dsn    string
	logger *slog.Logger
}

func NewPostgresSource(dsn string) *PostgresSource {
	return &PostgresSource{dsn: dsn, logger: slog.Default()}
}

func (s *PostgresSource) Load(ctx context.Context) ([]models.Order, error) {
	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	if err := s.ping(ctx, db); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectOrders)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var (
			order    models.Order
			quantity int64
		)
		if err := rows.Scan(&order.OrderDate, &order.City, &order.Product,
			&order.PaymentMethod, &order.CustomerName, &quantity, &order.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if quantity < 0 {
			return nil, fmt.Errorf("quantity is negative: %d", quantity)
		}
		order.Quantity = int(quantity)
		order.MonthKey = order.OrderDate.Format(models.MonthKeyLayout)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("orders table is empty")
	}

	s.logger.Info("loaded dataset from postgres", "records", len(orders))
	return orders, nil
}

func (s *PostgresSource) ping(ctx context.Context, db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= pingRetries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		s.logger.Warn("postgres ping failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pingRetryWait):
		}
	}
	return fmt.Errorf("postgres unreachable after %d attempts: %w", pingRetries, err)
}
