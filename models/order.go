package models

import (
	"time"

	"table-order-api/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the billing/serving state of a table order
type OrderStatus string

const (
	StatusUnpaid OrderStatus = "unpaid"
	StatusPaid   OrderStatus = "paid"
	StatusServed OrderStatus = "served"
)

type Order struct {
	ID             string               `json:"id" gorm:"primaryKey;size:64"`
	OrderNumber    string               `json:"order_number" gorm:"not null;index"`
	TableNo        string               `json:"table_no" gorm:"not null;index"`
	SessionID      string               `json:"session_id" gorm:"size:64"`
	IdempotencyKey string               `json:"idempotency_key" gorm:"uniqueIndex;not null;size:128"`
	Subtotal       money.Money          `json:"subtotal" gorm:"not null"`
	Tax            money.Money          `json:"tax" gorm:"not null"`
	Total          money.Money          `json:"total" gorm:"not null"`
	Status         OrderStatus          `json:"status" gorm:"not null;default:'unpaid';index"`
	Items          []OrderItem          `json:"items" gorm:"foreignKey:OrderID"` // top-level items only; components hang off their parent
	StatusHistory  []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	PaidAt         *time.Time           `json:"paid_at"`
	ServedAt       *time.Time           `json:"served_at"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusUnpaid
	}
	return nil
}

// OrderItem is a priced line. A set purchase is one parent item plus its
// component items, which reference the parent through ParentItemID.
type OrderItem struct {
	ID           string             `json:"id" gorm:"primaryKey;size:64"`
	OrderID      string             `json:"order_id" gorm:"not null;index"`
	ProductID    string             `json:"product_id" gorm:"not null"`
	Product      Product            `json:"product" gorm:"foreignKey:ProductID"`
	Quantity     int                `json:"quantity" gorm:"not null"`
	UnitPrice    money.Money        `json:"unit_price" gorm:"not null"`  // snapshot price at time of order
	TotalPrice   money.Money        `json:"total_price" gorm:"not null"` // snapshot
	ParentItemID *string            `json:"parent_item_id" gorm:"size:64;index"`
	Position     int                `json:"position" gorm:"not null;default:0"`
	Components   []OrderItem        `json:"components,omitempty" gorm:"foreignKey:ParentItemID"`
	Toppings     []OrderItemTopping `json:"toppings" gorm:"foreignKey:OrderItemID"`
	CreatedAt    time.Time          `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

func (i *OrderItem) IsComponent() bool { return i.ParentItemID != nil }

type OrderItemTopping struct {
	ID          string      `json:"id" gorm:"primaryKey;size:64"`
	OrderItemID string      `json:"order_item_id" gorm:"not null;index"`
	ToppingID   string      `json:"topping_id" gorm:"not null"`
	Topping     Topping     `json:"topping" gorm:"foreignKey:ToppingID"`
	Quantity    int         `json:"quantity" gorm:"not null"`
	UnitPrice   money.Money `json:"unit_price" gorm:"not null"` // snapshot
	Position    int         `json:"-" gorm:"not null;default:0"`
}

func (t *OrderItemTopping) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// OrderStatusHistory tracks every status change made by staff
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  string      `json:"changed_by"` // staff user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderNumberSeq allocates the per-day running number used in order numbers.
type OrderNumberSeq struct {
	Day string `gorm:"primaryKey;size:8"`
	Seq int64  `gorm:"not null"`
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Table{},
		&Session{},
		&Topping{},
		&Product{},
		&ProductTopping{},
		&SetComponent{},
		&TaxRateSchedule{},
		&Order{},
		&OrderItem{},
		&OrderItemTopping{},
		&OrderStatusHistory{},
		&OrderNumberSeq{},
	}
}
