package pricing

import (
	"testing"

	"bookmart/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRentalCharge(t *testing.T) {
	tests := []struct {
		name         string
		dailyRate    float64
		weeklyRate   float64
		durationDays int
		expected     float64
	}{
		{
			name:         "Single day",
			dailyRate:    1.99,
			weeklyRate:   5.99,
			durationDays: 1,
			expected:     1.99,
		},
		{
			name:         "Under a week charges daily rate",
			dailyRate:    1.99,
			weeklyRate:   5.99,
			durationDays: 3,
			expected:     5.97,
		},
		{
			name:         "Exactly one week charges weekly rate",
			dailyRate:    1.99,
			weeklyRate:   5.99,
			durationDays: 7,
			expected:     5.99,
		},
		{
			name:         "Week plus remainder",
			dailyRate:    1.99,
			weeklyRate:   5.99,
			durationDays: 10,
			expected:     11.96, // 5.99 + ceil(1.99*3)
		},
		{
			name:         "Whole weeks have no daily remainder term",
			dailyRate:    1.99,
			weeklyRate:   5.99,
			durationDays: 21,
			expected:     17.97,
		},
		{
			name:         "Daily rate derived from weekly over five days",
			dailyRate:    0,
			weeklyRate:   5.00,
			durationDays: 5,
			expected:     5.00, // 5 * (5.00/5)
		},
		{
			name:         "Derived daily rate rounds up",
			dailyRate:    0,
			weeklyRate:   5.99,
			durationDays: 3,
			expected:     3.60, // ceil(3 * 1.198)
		},
		{
			name:         "Fractional daily product ceils per charge",
			dailyRate:    0.33,
			weeklyRate:   2.00,
			durationDays: 4,
			expected:     1.32,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RentalCharge(tt.dailyRate, tt.weeklyRate, tt.durationDays)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)

			// Pure function: same inputs, same output.
			again, err := RentalCharge(tt.dailyRate, tt.weeklyRate, tt.durationDays)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRentalCharge_InvalidDuration(t *testing.T) {
	for _, days := range []int{0, -1, -30} {
		_, err := RentalCharge(1.99, 5.99, days)
		require.Error(t, err)
		assert.Equal(t, model.ErrInvalidRentalDuration, err)
	}
}

func TestRentalCharge_WholeWeeksEqualWeeklyMultiple(t *testing.T) {
	weekly := 7.49
	for weeks := 1; weeks <= 8; weeks++ {
		got, err := RentalCharge(1.99, weekly, weeks*7)
		require.NoError(t, err)
		assert.InDelta(t, Round2(float64(weeks)*weekly), got, 1e-9)
	}
}

func TestLineAmount(t *testing.T) {
	purchase := model.CartLine{
		BookID:    "b1",
		Type:      model.LineTypePurchase,
		UnitPrice: 15.99,
		Quantity:  2,
	}
	amount, err := LineAmount(purchase)
	require.NoError(t, err)
	assert.Equal(t, 15.99, amount)

	rental := model.CartLine{
		BookID:   "b2",
		Type:     model.LineTypeRental,
		Quantity: 1,
		Rental: &model.RentalTerms{
			DailyRate:    1.99,
			WeeklyRate:   5.99,
			DurationDays: 10,
		},
	}
	amount, err = LineAmount(rental)
	require.NoError(t, err)
	assert.InDelta(t, 11.96, amount, 1e-9)

	_, err = LineAmount(model.CartLine{Type: model.LineTypeRental})
	assert.Equal(t, model.ErrInvalidRentalDuration, err)
}

func TestSubtotal(t *testing.T) {
	lines := []model.CartLine{
		{BookID: "b1", Type: model.LineTypePurchase, UnitPrice: 15.99, Quantity: 2},
		{
			BookID:   "b2",
			Type:     model.LineTypeRental,
			Quantity: 1,
			Rental:   &model.RentalTerms{DailyRate: 1.99, WeeklyRate: 5.99, DurationDays: 7},
		},
	}

	assert.InDelta(t, 37.97, Subtotal(lines), 1e-9)
	assert.Equal(t, 0.0, Subtotal(nil))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 5.97, Ceil2(1.99*3))
	assert.Equal(t, 5.98, Ceil2(5.971))
	assert.Equal(t, 42.78, Round2(34.98*1.08+5.00))
	assert.Equal(t, 10.0, Round2(10.004))
}

func TestWeeksForDuration(t *testing.T) {
	tests := []struct {
		days  int
		weeks int
	}{
		{1, 1},
		{6, 1},
		{7, 1},
		{8, 2},
		{14, 2},
		{15, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.weeks, WeeksForDuration(tt.days))
	}
}
