package ordering

import (
	"context"
	"errors"
	"testing"
	"time"

	"table-order-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSchedule struct {
	entries []models.TaxRateSchedule
	err     error
}

func (s staticSchedule) List(context.Context) ([]models.TaxRateSchedule, error) {
	return s.entries, s.err
}

func TestEffectiveRate(t *testing.T) {
	april2024 := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)
	april2026 := time.Date(2026, 3, 31, 15, 0, 0, 0, time.UTC)
	// deliberately out of order
	entries := []models.TaxRateSchedule{
		{Rate: decimal.RequireFromString("11"), EffectiveFrom: april2026},
		{Rate: decimal.RequireFromString("10"), EffectiveFrom: april2024},
	}

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before any entry", april2024.Add(-time.Second), "0.1"},
		{"at first boundary", april2024, "0.1"},
		{"between entries", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "0.1"},
		{"at revision", april2026, "0.11"},
		{"after revision", april2026.AddDate(1, 0, 0), "0.11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveRate(entries, tt.at)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestEffectiveRateDefault(t *testing.T) {
	assert.True(t, DefaultTaxRate.Equal(EffectiveRate(nil, time.Now())))
}

func TestTaxResolverPropagatesErrors(t *testing.T) {
	r := NewTaxResolver(staticSchedule{err: errors.New("db down")})
	_, err := r.RateFor(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
