package ordering

import (
	"context"
	"fmt"
	"time"

	"table-order-api/models"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies when no schedule entry is in effect.
var DefaultTaxRate = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

type TaxSchedule interface {
	List(ctx context.Context) ([]models.TaxRateSchedule, error)
}

type TaxResolver struct {
	schedule TaxSchedule
}

func NewTaxResolver(schedule TaxSchedule) *TaxResolver {
	return &TaxResolver{schedule: schedule}
}

// RateFor returns the fractional tax rate (0.10 for 10%) in effect at t.
func (r *TaxResolver) RateFor(ctx context.Context, t time.Time) (decimal.Decimal, error) {
	entries, err := r.schedule.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve tax rate: %w", err)
	}
	return EffectiveRate(entries, t), nil
}

// EffectiveRate picks the entry with the latest EffectiveFrom not after t.
func EffectiveRate(entries []models.TaxRateSchedule, t time.Time) decimal.Decimal {
	var current *models.TaxRateSchedule
	for i := range entries {
		e := &entries[i]
		if e.EffectiveFrom.After(t) {
			continue
		}
		if current == nil || e.EffectiveFrom.After(current.EffectiveFrom) {
			current = e
		}
	}
	if current == nil {
		return DefaultTaxRate
	}
	return current.Rate.Div(hundred)
}
