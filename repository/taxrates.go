package repository

import (
	"context"
	"fmt"

	"table-order-api/models"

	"gorm.io/gorm"
)

type TaxRateRepository struct {
	db *gorm.DB
}

func NewTaxRateRepository(db *gorm.DB) *TaxRateRepository {
	return &TaxRateRepository{db: db}
}

// List returns the whole schedule, oldest entry first.
func (r *TaxRateRepository) List(ctx context.Context) ([]models.TaxRateSchedule, error) {
	var entries []models.TaxRateSchedule
	if err := r.db.WithContext(ctx).Order("effective_from asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list tax rates: %w", err)
	}
	return entries, nil
}
