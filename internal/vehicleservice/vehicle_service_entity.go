package vehicleservice

import (
	"time"

	vehicleserviceerrors "go-garage/internal/vehicleservice/errors"

	"go-garage/internal/shared/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusInService = "in-service"
	StatusCompleted = "completed"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Service is one charge performed on a vehicle. Its money fields are owned
// by the payment allocator: nothing else mutates amount_paid.
type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VehicleID   uuid.UUID `gorm:"type:uuid;not null;index:idx_vehicle_payment_status"`
	Description string    `gorm:"type:varchar(255);not null"`

	// Stored in minor units (cents) on bigint columns.
	Cost            money.Money `gorm:"type:bigint;not null;default:0"`
	AmountPaid      money.Money `gorm:"type:bigint;not null;default:0"`
	RemainingAmount money.Money `gorm:"type:bigint;not null;default:0"`

	Status        string `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'pending';index:idx_vehicle_payment_status"`

	ServiceDate time.Time `gorm:"type:date;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// ApplyPayment consumes up to the remaining amount and returns the unconsumed
// leftover. Over-payment never drives remaining negative; the caller decides
// what to do with the leftover (surface it as an excess warning).
func (s *Service) ApplyPayment(amount money.Money) (money.Money, error) {
	if !amount.IsPositive() {
		return money.Zero, vehicleserviceerrors.ErrInvalidAmount
	}

	consumed := s.Consumed(amount)
	s.AmountPaid = s.AmountPaid.Add(consumed)
	s.rederive()

	if err := s.Validate(); err != nil {
		return money.Zero, err
	}

	return amount.Sub(consumed), nil
}

// ReversePayment backs a previously applied amount out, used when a payment
// row is edited or deleted.
func (s *Service) ReversePayment(amount money.Money) error {
	if !amount.IsPositive() {
		return vehicleserviceerrors.ErrInvalidAmount
	}
	if s.AmountPaid.Sub(amount).IsNegative() {
		return vehicleserviceerrors.ErrInconsistentState
	}

	s.AmountPaid = s.AmountPaid.Sub(amount)
	s.rederive()

	return s.Validate()
}

// Consumed reports how much of the remaining amount a payment of the given
// size would settle, without mutating anything.
func (s *Service) Consumed(amount money.Money) money.Money {
	return money.Min(amount, s.RemainingAmount)
}

func (s *Service) IsOutstanding() bool {
	return s.PaymentStatus != PaymentStatusPaid && s.RemainingAmount.IsPositive()
}

// rederive recomputes the two derived fields from cost and amount_paid.
func (s *Service) rederive() {
	s.RemainingAmount = s.Cost.Sub(s.AmountPaid)
	switch {
	case s.RemainingAmount.IsZero():
		s.PaymentStatus = PaymentStatusPaid
	case s.AmountPaid.IsPositive():
		s.PaymentStatus = PaymentStatusPartial
	default:
		s.PaymentStatus = PaymentStatusPending
	}
}

// Validate checks the settlement invariants. A failure is fatal for the
// operation that caused it; persistence layers call this after every
// mutation before writing.
func (s *Service) Validate() error {
	if s.AmountPaid.IsNegative() || s.AmountPaid.Cmp(s.Cost) > 0 {
		return vehicleserviceerrors.ErrInconsistentState
	}
	if s.RemainingAmount != s.Cost.Sub(s.AmountPaid) {
		return vehicleserviceerrors.ErrInconsistentState
	}

	expected := PaymentStatusPending
	switch {
	case s.RemainingAmount.IsZero():
		expected = PaymentStatusPaid
	case s.AmountPaid.IsPositive():
		expected = PaymentStatusPartial
	}
	if s.PaymentStatus != expected {
		return vehicleserviceerrors.ErrInconsistentState
	}

	return nil
}
