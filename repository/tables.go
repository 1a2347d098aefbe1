package repository

import (
	"context"
	"fmt"

	"table-order-api/models"

	"gorm.io/gorm"
)

type TableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

func (r *TableRepository) List(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := r.db.WithContext(ctx).Order("number asc").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (r *TableRepository) FindByID(ctx context.Context, id string) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find table %s: %w", id, notFound(err))
	}
	return &table, nil
}

// FindActiveByToken resolves the token printed in a table's QR code.
func (r *TableRepository) FindActiveByToken(ctx context.Context, token string) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).
		Where("table_token = ? AND is_active = ?", token, true).
		First(&table).Error
	if err != nil {
		return nil, fmt.Errorf("find table by token: %w", notFound(err))
	}
	return &table, nil
}

func (r *TableRepository) Create(ctx context.Context, table *models.Table) error {
	err := r.db.WithContext(ctx).Create(table).Error
	if isDuplicateKey(err) {
		return fmt.Errorf("create table %s: %w", table.Number, ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("create table %s: %w", table.Number, err)
	}
	return nil
}
