package vehicleservice_test

import (
	"testing"

	"go-garage/internal/shared/money"
	"go-garage/internal/vehicleservice"
	vehicleserviceerrors "go-garage/internal/vehicleservice/errors"

	"github.com/stretchr/testify/assert"
)

func serviceWith(t *testing.T, cost, paid string) *vehicleservice.Service {
	t.Helper()

	costM, err := money.FromString(cost)
	assert.NoError(t, err)
	paidM, err := money.FromString(paid)
	assert.NoError(t, err)

	svc := &vehicleservice.Service{
		Cost:            costM,
		AmountPaid:      paidM,
		RemainingAmount: costM.Sub(paidM),
	}
	switch {
	case svc.RemainingAmount.IsZero():
		svc.PaymentStatus = vehicleservice.PaymentStatusPaid
	case paidM.IsPositive():
		svc.PaymentStatus = vehicleservice.PaymentStatusPartial
	default:
		svc.PaymentStatus = vehicleservice.PaymentStatusPending
	}
	return svc
}

func TestApplyPaymentPartial(t *testing.T) {
	svc := serviceWith(t, "100.00", "0.00")

	leftover, err := svc.ApplyPayment(money.FromUnits(4050))

	assert.NoError(t, err)
	assert.True(t, leftover.IsZero())
	assert.Equal(t, "40.50", svc.AmountPaid.String())
	assert.Equal(t, "59.50", svc.RemainingAmount.String())
	assert.Equal(t, vehicleservice.PaymentStatusPartial, svc.PaymentStatus)
}

func TestApplyPaymentExactSettlement(t *testing.T) {
	svc := serviceWith(t, "100.00", "60.00")

	leftover, err := svc.ApplyPayment(money.FromUnits(4000))

	assert.NoError(t, err)
	assert.True(t, leftover.IsZero())
	assert.True(t, svc.RemainingAmount.IsZero())
	assert.Equal(t, vehicleservice.PaymentStatusPaid, svc.PaymentStatus)
}

func TestApplyPaymentOverpayReturnsLeftover(t *testing.T) {
	svc := serviceWith(t, "100.00", "0.00")

	leftover, err := svc.ApplyPayment(money.FromUnits(20000))

	assert.NoError(t, err)
	assert.Equal(t, "100.00", leftover.String())
	assert.Equal(t, "100.00", svc.AmountPaid.String())
	assert.True(t, svc.RemainingAmount.IsZero())
	assert.Equal(t, vehicleservice.PaymentStatusPaid, svc.PaymentStatus)
}

func TestApplyPaymentRejectsNonPositive(t *testing.T) {
	svc := serviceWith(t, "100.00", "0.00")

	_, err := svc.ApplyPayment(money.Zero)
	assert.ErrorIs(t, err, vehicleserviceerrors.ErrInvalidAmount)

	_, err = svc.ApplyPayment(money.FromUnits(-500))
	assert.ErrorIs(t, err, vehicleserviceerrors.ErrInvalidAmount)

	assert.True(t, svc.AmountPaid.IsZero())
	assert.Equal(t, vehicleservice.PaymentStatusPending, svc.PaymentStatus)
}

func TestConsumedDoesNotMutate(t *testing.T) {
	svc := serviceWith(t, "100.00", "40.00")

	assert.Equal(t, "25.00", svc.Consumed(money.FromUnits(2500)).String())
	assert.Equal(t, "60.00", svc.Consumed(money.FromUnits(20000)).String())

	assert.Equal(t, "40.00", svc.AmountPaid.String())
	assert.Equal(t, "60.00", svc.RemainingAmount.String())
	assert.Equal(t, vehicleservice.PaymentStatusPartial, svc.PaymentStatus)
}

func TestReversePayment(t *testing.T) {
	svc := serviceWith(t, "100.00", "100.00")

	err := svc.ReversePayment(money.FromUnits(2500))

	assert.NoError(t, err)
	assert.Equal(t, "75.00", svc.AmountPaid.String())
	assert.Equal(t, "25.00", svc.RemainingAmount.String())
	assert.Equal(t, vehicleservice.PaymentStatusPartial, svc.PaymentStatus)
}

func TestReversePaymentBelowZeroFails(t *testing.T) {
	svc := serviceWith(t, "100.00", "30.00")

	err := svc.ReversePayment(money.FromUnits(5000))

	assert.ErrorIs(t, err, vehicleserviceerrors.ErrInconsistentState)
	assert.Equal(t, "30.00", svc.AmountPaid.String())
}

func TestValidateDetectsDrift(t *testing.T) {
	svc := serviceWith(t, "100.00", "40.00")
	assert.NoError(t, svc.Validate())

	svc.RemainingAmount = money.FromUnits(1)
	assert.ErrorIs(t, svc.Validate(), vehicleserviceerrors.ErrInconsistentState)

	svc = serviceWith(t, "100.00", "40.00")
	svc.PaymentStatus = vehicleservice.PaymentStatusPaid
	assert.ErrorIs(t, svc.Validate(), vehicleserviceerrors.ErrInconsistentState)

	svc = serviceWith(t, "100.00", "40.00")
	svc.AmountPaid = money.FromUnits(-100)
	assert.ErrorIs(t, svc.Validate(), vehicleserviceerrors.ErrInconsistentState)
}

func TestRepeatedPartialPaymentsNoDrift(t *testing.T) {
	svc := serviceWith(t, "100.00", "0.00")

	tenCents := money.FromUnits(10)
	for i := 0; i < 1000; i++ {
		_, err := svc.ApplyPayment(tenCents)
		assert.NoError(t, err)
	}

	assert.Equal(t, "100.00", svc.AmountPaid.String())
	assert.True(t, svc.RemainingAmount.IsZero())
	assert.Equal(t, vehicleservice.PaymentStatusPaid, svc.PaymentStatus)
}
