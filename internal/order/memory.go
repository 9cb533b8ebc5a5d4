package order

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"repairbot/core/logger"
)

// MemoryLedger is the default in-process ledger. A single mutex guards the
// append-only slice and the per-owner sequence counters, which is enough for
// the concurrency contract: commits from different users never corrupt state,
// and a committed order is visible to every subsequent ListByOwner.
type MemoryLedger struct {
	mu     sync.Mutex
	orders []Order
	seq    map[int64]int64
}

// NewMemoryLedger constructs an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seq: make(map[int64]int64)}
}

// Commit appends the order, assigning the next id for its owner.
func (l *MemoryLedger) Commit(ctx context.Context, o Order) (string, error) {
	if o.OwnerID == 0 {
		return "", fmt.Errorf("order: commit without owner id")
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = StatusReceived
	}

	l.mu.Lock()
	l.seq[o.OwnerID]++
	o.ID = fmt.Sprintf("ORD-%d-%d", o.OwnerID, l.seq[o.OwnerID])
	l.orders = append(l.orders, o)
	l.mu.Unlock()

	logger.Info(ctx, "service.orders", "order.committed",
		slog.String("status", "ok"),
		slog.String("order_id", o.ID),
		slog.Int64("owner_id", o.OwnerID),
		slog.String("service_id", o.Service.ID),
	)
	return o.ID, nil
}

// ListByOwner returns the owner's orders in creation order.
func (l *MemoryLedger) ListByOwner(_ context.Context, ownerID int64) ([]Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Order
	for _, o := range l.orders {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}
