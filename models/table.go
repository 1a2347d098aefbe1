package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Table struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	Number     string    `json:"number" gorm:"uniqueIndex;not null"`
	Name       string    `json:"name"`
	TableToken string    `json:"table_token" gorm:"uniqueIndex;not null"`
	QRURL      string    `json:"qr_url"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionExpired SessionStatus = "expired"
)

// Session is the diner's ordering session issued when a table QR code is scanned.
type Session struct {
	ID        string        `json:"id" gorm:"primaryKey;size:64"`
	TableID   string        `json:"table_id" gorm:"not null;index"`
	Table     Table         `json:"table" gorm:"foreignKey:TableID"`
	Token     string        `json:"token" gorm:"uniqueIndex;not null"`
	Status    SessionStatus `json:"status" gorm:"not null;default:'active'"`
	ExpiresAt time.Time     `json:"expires_at" gorm:"not null"`
	UserAgent string        `json:"user_agent"`
	IPAddress string        `json:"ip_address"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Usable reports whether the session may place orders at now.
func (s *Session) Usable(now time.Time) bool {
	return s.Status == SessionActive && s.ExpiresAt.After(now)
}

// TaxRateSchedule is one entry of the tax schedule; Rate is a percentage.
type TaxRateSchedule struct {
	ID            string          `json:"id" gorm:"primaryKey;size:64"`
	Rate          decimal.Decimal `json:"rate" gorm:"type:decimal(5,2);not null"`
	EffectiveFrom time.Time       `json:"effective_from" gorm:"not null;index"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (t *TaxRateSchedule) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
