package models

import (
	"time"

	"table-order-api/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductType string

const (
	ProductSingle ProductType = "single"
	ProductSet    ProductType = "set"
)

type Product struct {
	ID            string           `json:"id" gorm:"primaryKey;size:64"`
	Name          string           `json:"name" gorm:"not null"`
	Description   string           `json:"description"`
	Category      string           `json:"category" gorm:"index"`
	ImageURL      string           `json:"image_url"`
	ProductType   ProductType      `json:"product_type" gorm:"not null;default:'single'"`
	Price         money.Money      `json:"price" gorm:"not null"`
	IsAvailable   bool             `json:"is_available" gorm:"default:true"`
	DisplayOrder  int              `json:"display_order" gorm:"default:0"`
	Toppings      []ProductTopping `json:"toppings,omitempty" gorm:"foreignKey:ProductID"`
	SetComponents []SetComponent   `json:"set_components,omitempty" gorm:"foreignKey:SetProductID"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Product) IsSet() bool { return p.ProductType == ProductSet }

type Topping struct {
	ID          string      `json:"id" gorm:"primaryKey;size:64"`
	Name        string      `json:"name" gorm:"not null"`
	Price       money.Money `json:"price" gorm:"not null"`
	IsAvailable bool        `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (t *Topping) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ProductTopping marks a topping as selectable for a product.
type ProductTopping struct {
	ProductID string  `json:"product_id" gorm:"primaryKey;size:64"`
	ToppingID string  `json:"topping_id" gorm:"primaryKey;size:64"`
	Topping   Topping `json:"topping" gorm:"foreignKey:ToppingID"`
}

// SetComponent is one selectable slot entry of a set product.
// ExtraPrice is charged per unit of the component instead of the component's own price.
type SetComponent struct {
	ID                 string      `json:"id" gorm:"primaryKey;size:64"`
	SetProductID       string      `json:"set_product_id" gorm:"not null;index"`
	ComponentProductID string      `json:"component_product_id" gorm:"not null"`
	ComponentProduct   Product     `json:"component_product" gorm:"foreignKey:ComponentProductID"`
	SlotName           string      `json:"slot_name" gorm:"not null"`
	Required           bool        `json:"required"`
	MinQty             int         `json:"min_qty" gorm:"not null;default:0"`
	MaxQty             int         `json:"max_qty" gorm:"not null;default:1"`
	DefaultQty         int         `json:"default_qty" gorm:"not null;default:0"`
	ExtraPrice         money.Money `json:"extra_price" gorm:"not null"`
	DisplayOrder       int         `json:"display_order" gorm:"default:0"`
}

func (s *SetComponent) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
