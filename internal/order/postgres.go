package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"repairbot/core/logger"
	"repairbot/internal/catalog"
)

// PostgresLedger persists committed orders in the orders table. The order id
// is derived from a bigserial sequence by a stored generated column, so ids
// stay unique under concurrent commits without extra coordination.
type PostgresLedger struct {
	db *sqlx.DB
}

// NewPostgresLedger wraps an already connected database handle.
func NewPostgresLedger(db *sqlx.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

type orderRow struct {
	OrderID     string    `db:"order_id"`
	OwnerID     int64     `db:"owner_id"`
	OwnerName   string    `db:"owner_name"`
	ServiceID   string    `db:"service_id"`
	ServiceName string    `db:"service_name"`
	PriceMinor  int64     `db:"price_minor"`
	Phone       string    `db:"phone"`
	Device      string    `db:"device"`
	Problem     string    `db:"problem"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r orderRow) toOrder() Order {
	return Order{
		ID:        r.OrderID,
		OwnerID:   r.OwnerID,
		OwnerName: r.OwnerName,
		Service: catalog.Service{
			ID:          r.ServiceID,
			DisplayName: r.ServiceName,
			PriceMinor:  r.PriceMinor,
		},
		Phone:     r.Phone,
		Device:    r.Device,
		Problem:   r.Problem,
		Status:    Status(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

const insertOrderQuery = `
INSERT INTO orders (owner_id, owner_name, service_id, service_name, price_minor,
                    phone, device, problem, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING order_id`

// Commit inserts the full record in a single statement; either the row is
// stored and an id returned, or nothing is.
func (l *PostgresLedger) Commit(ctx context.Context, o Order) (string, error) {
	if o.OwnerID == 0 {
		return "", fmt.Errorf("order: commit without owner id")
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = StatusReceived
	}

	var orderID string
	err := l.db.QueryRowxContext(ctx, insertOrderQuery,
		o.OwnerID, o.OwnerName,
		o.Service.ID, o.Service.DisplayName, o.Service.PriceMinor,
		o.Phone, o.Device, o.Problem,
		string(o.Status), o.CreatedAt,
	).Scan(&orderID)
	if err != nil {
		logger.Error(ctx, "service.orders", "order.commit",
			slog.String("status", "fail"),
			slog.Int64("owner_id", o.OwnerID),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("order: insert: %w", err)
	}

	logger.Info(ctx, "service.orders", "order.committed",
		slog.String("status", "ok"),
		slog.String("order_id", orderID),
		slog.Int64("owner_id", o.OwnerID),
		slog.String("service_id", o.Service.ID),
	)
	return orderID, nil
}

const listByOwnerQuery = `
SELECT order_id, owner_id, owner_name, service_id, service_name, price_minor,
       phone, device, problem, status, created_at
FROM orders
WHERE owner_id = $1
ORDER BY seq`

// ListByOwner returns the owner's orders in creation order.
func (l *PostgresLedger) ListByOwner(ctx context.Context, ownerID int64) ([]Order, error) {
	var rows []orderRow
	if err := l.db.SelectContext(ctx, &rows, listByOwnerQuery, ownerID); err != nil {
		return nil, fmt.Errorf("order: list by owner %d: %w", ownerID, err)
	}
	orders := make([]Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, r.toOrder())
	}
	return orders, nil
}
