package repository

import (
	"context"
	"fmt"
	"time"

	"table-order-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Status  models.OrderStatus
	TableNo string
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// withTree preloads the owned order tree: top-level items in position order,
// their products and toppings, and their component items likewise.
func withTree(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_item_id IS NULL").Order("position asc")
		}).
		Preload("Items.Product").
		Preload("Items.Toppings", byPosition).
		Preload("Items.Toppings.Topping").
		Preload("Items.Components", byPosition).
		Preload("Items.Components.Product").
		Preload("Items.Components.Toppings", byPosition).
		Preload("Items.Components.Toppings.Topping")
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := withTree(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find order %s: %w", id, notFound(err))
	}
	return &order, nil
}

// FindIDByIdempotencyKey returns the id of the order created with key.
func (r *OrderRepository) FindIDByIdempotencyKey(ctx context.Context, key string) (string, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Select("id").First(&order, "idempotency_key = ?", key).Error
	if err != nil {
		return "", fmt.Errorf("find order by idempotency key: %w", notFound(err))
	}
	return order.ID, nil
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := withTree(r.db.WithContext(ctx))
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.TableNo != "" {
		query = query.Where("table_no = ?", f.TableNo)
	}
	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Create writes the order, its parent items, their component items and every
// topping row in one transaction, allocating the order number inside it.
// A unique-index conflict (the idempotency key) is reported as ErrDuplicateKey.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextOrderNumber(tx, order.CreatedAt)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range order.Items {
			parent := &order.Items[i]
			parent.OrderID = order.ID
			parent.Position = i
			if err := createItem(tx, parent); err != nil {
				return err
			}
			for j := range parent.Components {
				component := &parent.Components[j]
				component.OrderID = order.ID
				component.ParentItemID = &parent.ID
				component.Position = j
				if err := createItem(tx, component); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if isDuplicateKey(err) {
		return fmt.Errorf("create order: %w", ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func createItem(tx *gorm.DB, item *models.OrderItem) error {
	if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
		return err
	}
	if len(item.Toppings) == 0 {
		return nil
	}
	for k := range item.Toppings {
		item.Toppings[k].OrderItemID = item.ID
		item.Toppings[k].Position = k
	}
	return tx.Omit(clause.Associations).Create(&item.Toppings).Error
}

// nextOrderNumber bumps the running number for the order's day.
func nextOrderNumber(tx *gorm.DB, at time.Time) (string, error) {
	day := at.Format("20060102")
	var seq int64
	err := tx.Raw(`INSERT INTO order_number_seqs (day, seq) VALUES (?, 1)
ON CONFLICT (day) DO UPDATE SET seq = order_number_seqs.seq + 1
RETURNING seq`, day).Scan(&seq).Error
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	return fmt.Sprintf("ORD_%s_%03d", day, seq), nil
}

// UpdateStatus moves an order to a new status, stamping paid/served times on
// first entry, and records the transition in the status history.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *models.Order, to models.OrderStatus, changedBy, note string, now time.Time) error {
	from := order.Status
	paidAt, servedAt := order.PaidAt, order.ServedAt
	updates := map[string]interface{}{"status": to}
	if to == models.StatusPaid && paidAt == nil {
		paidAt = &now
		updates["paid_at"] = now
	}
	if to == models.StatusServed && servedAt == nil {
		servedAt = &now
		updates["served_at"] = now
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		history := models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  changedBy,
			Note:       note,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.Status, order.PaidAt, order.ServedAt = to, paidAt, servedAt
	return nil
}

// History returns the status transitions of an order, oldest first.
func (r *OrderRepository) History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&history).Error; err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	return history, nil
}
