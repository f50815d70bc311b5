package services

import (
	"math"

	"kedai/internal/models"
)

// ComputeFee returns the processing fee, in minor currency units, for paying
// the given subtotal with the given method. Percentage fees round half-up to
// the minor unit. A nil method costs nothing, and the fee is never negative.
// Pure: same inputs always produce the same fee.
func ComputeFee(method *models.PaymentMethod, subtotal int64) int64 {
	if method == nil {
		return 0
	}

	var fee int64
	switch method.FeeType {
	case models.FeePercentage:
		fee = roundHalfUp(float64(subtotal) * method.FeeValue / 100)
	case models.FeeFixed:
		fee = roundHalfUp(method.FeeValue)
	}

	if fee < 0 {
		fee = 0
	}
	return fee
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
