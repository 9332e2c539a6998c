package domain

import (
	"math"
	"time"
)

// One arroba is 15 kg of carcass weight.
const KgPerArroba = 15.0

// CarcassArrobas converts total live weight into arrobas at the given
// carcass yield percentage.
func CarcassArrobas(liveWeightKg, carcassYield float64) float64 {
	return liveWeightKg * carcassYield / 100 / KgPerArroba
}

// LotPurchaseValue prices a lot: price per arroba times the carcass
// arrobas of its total purchase weight.
func LotPurchaseValue(pricePerArroba, purchaseWeightKg, carcassYield float64) float64 {
	return pricePerArroba * CarcassArrobas(purchaseWeightKg, carcassYield)
}

// LotAverageWeight returns the per-animal average of a total weight.
func LotAverageWeight(totalWeightKg float64, quantity int) float64 {
	if quantity <= 0 {
		return 0
	}
	return totalWeightKg / float64(quantity)
}

// ProjectSlaughterDate estimates when the lot reaches target weight at the
// expected daily gain. Returns nil when the projection is undefined or the
// lot is already at target.
func ProjectSlaughterDate(from time.Time, averageWeight, targetWeight, expectedGMD float64) *time.Time {
	if expectedGMD <= 0 || targetWeight <= averageWeight {
		return nil
	}
	days := int(math.Ceil((targetWeight - averageWeight) / expectedGMD))
	d := from.AddDate(0, 0, days)
	return &d
}

// WeightBreak returns the transport shrinkage between purchase and
// reception weighings, and its percentage of the purchase weight.
func WeightBreak(purchaseWeight, receivedWeight float64) (loss, pct float64) {
	loss = purchaseWeight - receivedWeight
	if purchaseWeight > 0 {
		pct = loss / purchaseWeight * 100
	}
	return loss, pct
}

// DistributeEvenly splits total across n buckets as evenly as possible:
// each bucket gets the quotient, the first total%n buckets one extra.
func DistributeEvenly(total, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	q, r := total/n, total%n
	for i := range out {
		out[i] = q
		if i < r {
			out[i]++
		}
	}
	return out
}

// MonthWindow returns the first instant of ref's month and the first
// instant of the next month.
func MonthWindow(ref time.Time) (start, end time.Time) {
	start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return start, start.AddDate(0, 1, 0)
}

// Percentage returns part/whole*100, zero when the whole is not positive.
// Margin computations rely on this to never divide by zero.
func Percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
