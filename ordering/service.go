package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"table-order-api/models"
	"table-order-api/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxIdempotencyKeyLen = 128

// maxConcurrentLookups bounds the catalog reads issued for one request.
const maxConcurrentLookups = 8

type CreateOrderInput struct {
	SessionToken   string
	IdempotencyKey string
	Items          []ItemRequest
}

// Result is the persisted order. Replayed is set when the idempotency key had
// already been used and the existing order is returned unchanged.
type Result struct {
	Order    *models.Order
	Replayed bool
}

type Catalog interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

type OrderStore interface {
	OrderLookup
	OrderWriter
}

type Deps struct {
	Sessions SessionStore
	Catalog  Catalog
	Taxes    TaxSchedule
	Orders   OrderStore
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service validates, prices and persists table orders.
type Service struct {
	sessions  *SessionValidator
	guard     *IdempotencyGuard
	taxes     *TaxResolver
	persister *Persister
	catalog   Catalog
	orders    OrderStore
	now       func() time.Time
	log       *zap.Logger
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		sessions:  NewSessionValidator(d.Sessions, d.Clock, d.Logger),
		guard:     NewIdempotencyGuard(d.Orders),
		taxes:     NewTaxResolver(d.Taxes),
		persister: NewPersister(d.Orders),
		catalog:   d.Catalog,
		orders:    d.Orders,
		now:       d.Clock,
		log:       d.Logger,
	}
}

// CreateOrder turns a validated request into exactly one persisted order per
// idempotency key. Domain rejections are *Error values; anything else is an
// internal failure and nothing was written.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Result, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	session, err := s.sessions.Validate(ctx, in.SessionToken)
	if err != nil {
		return nil, err
	}

	if err := s.guard.Check(ctx, in.IdempotencyKey); err != nil {
		var existing *Error
		if errors.As(err, &existing) && existing.Code == CodeIdempotentOrder {
			return s.replay(ctx, existing.OrderID)
		}
		return nil, err
	}

	lines, err := s.prepareItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rate, err := s.taxes.RateFor(ctx, now)
	if err != nil {
		return nil, err
	}
	totals := Aggregate(lines, rate)
	order := BuildOrder(session, in.IdempotencyKey, lines, totals, now)

	created, err := s.persister.Persist(ctx, order)
	if errors.Is(err, repository.ErrDuplicateKey) {
		// a concurrent request with the same key committed first
		s.log.Info("idempotency key race lost, returning winning order",
			zap.String("idempotency_key", in.IdempotencyKey))
		id, lookupErr := s.orders.FindIDByIdempotencyKey(ctx, in.IdempotencyKey)
		if lookupErr != nil {
			return nil, fmt.Errorf("refetch order after duplicate key: %w", lookupErr)
		}
		return s.replay(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("table_no", created.TableNo),
		zap.String("total", created.Total.String()),
		zap.Int("items", len(created.Items)))
	return &Result{Order: created}, nil
}

func (s *Service) replay(ctx context.Context, orderID string) (*Result, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load existing order: %w", err)
	}
	return &Result{Order: order, Replayed: true}, nil
}

// prepareItems resolves and prices every line concurrently. Results keep the
// request order, and the first failure cancels the remaining lookups.
func (s *Service) prepareItems(ctx context.Context, items []ItemRequest) ([]PricedLine, error) {
	lines := make([]PricedLine, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, item := range items {
		g.Go(func() error {
			product, err := s.catalog.FindByID(gctx, item.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				product, err = nil, nil
			}
			if err != nil {
				return fmt.Errorf("load product %s: %w", item.ProductID, err)
			}
			resolved, err := ResolveLine(product, item)
			if err != nil {
				return err
			}
			lines[i] = PriceLine(resolved)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

func validateInput(in CreateOrderInput) error {
	if in.IdempotencyKey == "" {
		return newError(CodeInvalidRequest, ErrMsgKeyRequired)
	}
	if len(in.IdempotencyKey) > maxIdempotencyKeyLen {
		return newError(CodeInvalidRequest, ErrMsgKeyTooLong)
	}
	if in.SessionToken == "" {
		return newError(CodeInvalidSession, ErrMsgSessionInvalid)
	}
	if len(in.Items) == 0 {
		return newError(CodeInvalidRequest, ErrMsgItemsRequired)
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return newErrorf(CodeInvalidRequest, ErrMsgQuantityPositive, "%s", item.ProductID)
		}
		for _, c := range item.Components {
			if c.Quantity < 1 {
				return newErrorf(CodeInvalidRequest, ErrMsgQuantityPositive, "%s", c.ProductID)
			}
		}
	}
	return nil
}
