// Package order defines committed repair orders and the append-only ledger
// that owns them.
package order

import (
	"context"
	"time"

	"repairbot/internal/catalog"
)

// Status is the processing state of an order. Only StatusReceived is assigned
// by this bot; the rest exist for the workshop side of the schema and have no
// transition logic here.
type Status string

const (
	StatusReceived   Status = "Received"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// Order is an immutable committed repair order. The service field is a
// snapshot taken at confirmation time, so later catalog changes do not affect
// existing orders.
type Order struct {
	ID        string          `db:"order_id"`
	OwnerID   int64           `db:"owner_id"`
	OwnerName string          `db:"owner_name"`
	Service   catalog.Service `db:"-"`
	Phone     string          `db:"phone"`
	Device    string          `db:"device"`
	Problem   string          `db:"problem"`
	Status    Status          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
}

// Ledger is the append-only collection of committed orders.
//
// Commit assigns the order id and stores the record all-or-nothing; ids are
// unique for the ledger's lifetime and never reused. ListByOwner returns the
// owner's orders in creation order. Both are safe under concurrent calls from
// different users.
type Ledger interface {
	Commit(ctx context.Context, o Order) (string, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Order, error)
}
