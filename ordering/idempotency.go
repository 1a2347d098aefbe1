package ordering

import (
	"context"
	"errors"
	"fmt"

	"table-order-api/repository"
)

type OrderLookup interface {
	FindIDByIdempotencyKey(ctx context.Context, key string) (string, error)
}

// IdempotencyGuard is the cheap pre-check for reused keys. Concurrent
// duplicates can both pass it; the unique index on the key settles those.
type IdempotencyGuard struct {
	orders OrderLookup
}

func NewIdempotencyGuard(orders OrderLookup) *IdempotencyGuard {
	return &IdempotencyGuard{orders: orders}
}

// Check returns an IDEMPOTENT_ORDER error naming the existing order when key was used before.
func (g *IdempotencyGuard) Check(ctx context.Context, key string) error {
	id, err := g.orders.FindIDByIdempotencyKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	return &Error{Code: CodeIdempotentOrder, Message: ErrMsgOrderExists, OrderID: id}
}
