package services_test

import (
	"testing"

	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestComputeFee_Percentage(t *testing.T) {
	method := &models.PaymentMethod{
		Code:     "card_paystack",
		FeeType:  models.FeePercentage,
		FeeValue: 1.5,
	}

	// 1.5% of 10000 minor units
	assert.Equal(t, int64(150), services.ComputeFee(method, 10000))

	// Rounds half-up to the minor unit: 2.5% of 999 = 24.975
	method.FeeValue = 2.5
	assert.Equal(t, int64(25), services.ComputeFee(method, 999))

	// Exactly .5 rounds up: 1% of 50 = 0.5
	method.FeeValue = 1
	assert.Equal(t, int64(1), services.ComputeFee(method, 50))
}

func TestComputeFee_Fixed(t *testing.T) {
	method := &models.PaymentMethod{
		Code:     "cod",
		FeeType:  models.FeeFixed,
		FeeValue: 100,
	}

	assert.Equal(t, int64(100), services.ComputeFee(method, 5000))
	// Fixed fee ignores the subtotal entirely
	assert.Equal(t, int64(100), services.ComputeFee(method, 1))
}

func TestComputeFee_NoMethod(t *testing.T) {
	assert.Equal(t, int64(0), services.ComputeFee(nil, 10000))
}

func TestComputeFee_NeverNegative(t *testing.T) {
	method := &models.PaymentMethod{
		Code:     "weird",
		FeeType:  models.FeeFixed,
		FeeValue: -500,
	}
	assert.Equal(t, int64(0), services.ComputeFee(method, 10000))

	method.FeeType = models.FeePercentage
	method.FeeValue = -1.5
	assert.Equal(t, int64(0), services.ComputeFee(method, 10000))
}

func TestComputeFee_Deterministic(t *testing.T) {
	method := &models.PaymentMethod{
		Code:     "card_paystack",
		FeeType:  models.FeePercentage,
		FeeValue: 1.5,
	}

	first := services.ComputeFee(method, 123457)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, services.ComputeFee(method, 123457))
	}
}
