package employeepayment

import (
	"time"

	"go-garage/internal/shared/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeSalary    = "salary"
	TypeAdvance   = "advance"
	TypeDeduction = "deduction"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// EmployeePayment is one ledger entry on an employee's account. Salary
// entries credit the balance once paid; advances and deductions debit it
// from the moment they are recorded.
type EmployeePayment struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID   `gorm:"type:uuid;not null;index:idx_employee_payment_date"`
	RunID       *uuid.UUID  `gorm:"type:uuid;index"`
	PaymentType string      `gorm:"type:varchar(20);not null"`
	Amount      money.Money `gorm:"type:bigint;not null"`
	Status      string      `gorm:"type:varchar(20);not null;default:'pending'"`
	Notes       *string     `gorm:"type:varchar(500)"`
	PaymentDate time.Time   `gorm:"type:date;not null;index:idx_employee_payment_date"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func ValidType(paymentType string) bool {
	switch paymentType {
	case TypeSalary, TypeAdvance, TypeDeduction:
		return true
	}
	return false
}

// ComputeBalance folds ledger entries into the employee's net position:
// confirmed salary credits minus every advance and deduction. Pending salary
// does not count until confirmed.
func ComputeBalance(entries []EmployeePayment) money.Money {
	balance := money.Zero
	for _, e := range entries {
		switch e.PaymentType {
		case TypeSalary:
			if e.Status == StatusPaid {
				balance = balance.Add(e.Amount)
			}
		case TypeAdvance, TypeDeduction:
			balance = balance.Sub(e.Amount)
		}
	}
	return balance
}
