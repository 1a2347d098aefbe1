package repository

import (
	"context"
	"fmt"

	"table-order-api/models"

	"gorm.io/gorm"
)

type ProductFilter struct {
	Category    string
	ProductType models.ProductType
	IsAvailable *bool
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID loads a product with its allowed toppings and, for sets, the
// component definitions together with each component product's own toppings.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Toppings.Topping").
		Preload("SetComponents", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order asc").Order("id asc")
		}).
		Preload("SetComponents.ComponentProduct.Toppings.Topping").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id, notFound(err))
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Preload("Toppings.Topping")
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.ProductType != "" {
		query = query.Where("product_type = ?", f.ProductType)
	}
	if f.IsAvailable != nil {
		query = query.Where("is_available = ?", *f.IsAvailable)
	}

	var products []models.Product
	if err := query.Order("display_order asc").Order("created_at desc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// SetAvailability marks a product sold out or back on the menu.
func (r *ProductRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_available", available)
	if res.Error != nil {
		return fmt.Errorf("set product %s availability: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set product %s availability: %w", id, ErrNotFound)
	}
	return nil
}
