package ordering

import (
	"context"
	"fmt"
	"time"

	"table-order-api/models"
)

type OrderWriter interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
}

// Persister commits a built order tree in one transaction and reads it back hydrated.
type Persister struct {
	orders OrderWriter
}

func NewPersister(orders OrderWriter) *Persister {
	return &Persister{orders: orders}
}

// Persist returns repository.ErrDuplicateKey (wrapped) when the idempotency key was taken meanwhile.
func (p *Persister) Persist(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := p.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	created, err := p.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reload created order: %w", err)
	}
	return created, nil
}

// BuildOrder turns priced lines into the owned order tree, rounding every
// stored amount to two places.
func BuildOrder(session *models.Session, key string, lines []PricedLine, totals Totals, at time.Time) *models.Order {
	order := &models.Order{
		TableNo:        session.Table.Number,
		SessionID:      session.ID,
		IdempotencyKey: key,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		Status:         models.StatusUnpaid,
		CreatedAt:      at,
		Items:          make([]models.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		parent := buildItem(line.Parent, at)
		for _, c := range line.Components {
			parent.Components = append(parent.Components, buildItem(c, at))
		}
		order.Items = append(order.Items, parent)
	}
	return order
}

func buildItem(p PricedItem, at time.Time) models.OrderItem {
	item := models.OrderItem{
		ProductID:  p.ProductID,
		Quantity:   p.Quantity,
		UnitPrice:  p.UnitPrice.Round(),
		TotalPrice: p.TotalPrice.Round(),
		CreatedAt:  at,
	}
	for _, t := range p.Toppings {
		item.Toppings = append(item.Toppings, models.OrderItemTopping{
			ToppingID: t.ToppingID,
			Quantity:  t.Quantity,
			UnitPrice: t.UnitPrice.Round(),
		})
	}
	return item
}
