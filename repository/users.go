package repository

import (
	"context"
	"fmt"
	"time"

	"table-order-api/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns every staff account, admins first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("role asc").Order("email asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("find user by email: %w", notFound(err))
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, notFound(err))
	}
	return &user, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", now).Error
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
