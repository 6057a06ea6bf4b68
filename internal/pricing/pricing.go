package pricing

import (
	"math"

	"bookmart/internal/model"
)

// roundEpsilon absorbs binary floating point noise before cent
// rounding, so e.g. 1.99*3 (5.970000000000001) still ceils to 5.97.
const roundEpsilon = 1e-9

// Round2 rounds a monetary amount to the nearest cent.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Ceil2 rounds a monetary amount up to the next cent.
func Ceil2(amount float64) float64 {
	return math.Ceil(amount*100-roundEpsilon) / 100
}

// weeklyToDailyDivisor converts a weekly rate to a daily rate when no
// daily rate is supplied. The divisor is 5, not 7: a week is priced as
// a 5-day lending week. Changing this silently changes rental prices.
const weeklyToDailyDivisor = 5

// RentalCharge computes the charge for renting at the given rates for
// durationDays. Durations under a week are charged at the daily rate;
// longer durations are split into whole weeks at the weekly rate plus
// remaining days at the daily rate. A zero dailyRate is derived from
// the weekly rate.
func RentalCharge(dailyRate, weeklyRate float64, durationDays int) (float64, error) {
	if durationDays < 1 {
		return 0, model.ErrInvalidRentalDuration
	}

	if dailyRate == 0 {
		dailyRate = weeklyRate / weeklyToDailyDivisor
	}

	if durationDays < 7 {
		return Ceil2(dailyRate * float64(durationDays)), nil
	}

	weeks := durationDays / 7
	remainingDays := durationDays % 7

	charge := float64(weeks) * weeklyRate
	if remainingDays > 0 {
		charge += Ceil2(dailyRate * float64(remainingDays))
	}

	return Round2(charge), nil
}

// LineAmount returns the per-unit charge for a cart line: the purchase
// price for purchase lines, or the full rental charge for the line's
// duration. Cart totals and order snapshots both go through here so
// rental pricing is never re-derived ad hoc.
func LineAmount(line model.CartLine) (float64, error) {
	if line.Type == model.LineTypeRental {
		if line.Rental == nil {
			return 0, model.ErrInvalidRentalDuration
		}
		return RentalCharge(line.Rental.DailyRate, line.Rental.WeeklyRate, line.Rental.DurationDays)
	}
	return line.UnitPrice, nil
}

// Subtotal sums LineAmount*quantity over the given lines, rounded to
// cents. Lines with non-conforming rental terms contribute nothing.
func Subtotal(lines []model.CartLine) float64 {
	var sum float64
	for _, line := range lines {
		amount, err := LineAmount(line)
		if err != nil {
			continue
		}
		sum += amount * float64(line.Quantity)
	}
	return Round2(sum)
}

// WeeksForDuration converts a day-based rental duration to the whole
// number of weeks recorded on a Rental, rounding partial weeks up.
func WeeksForDuration(durationDays int) int {
	weeks := (durationDays + 6) / 7
	if weeks < 1 {
		weeks = 1
	}
	return weeks
}
