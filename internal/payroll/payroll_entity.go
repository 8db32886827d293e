package payroll

import (
	"time"

	"go-garage/internal/shared/money"

	"github.com/google/uuid"
)

// PayrollRun is the audit record of one approved pay run. The individual
// salary and deduction entries live on the employee ledger, keyed by RunID.
type PayrollRun struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunNumber       string      `gorm:"type:varchar(20);not null;uniqueIndex:uq_payroll_run_number"`
	ApprovedBy      uuid.UUID   `gorm:"type:uuid;not null"`
	PaymentDate     time.Time   `gorm:"type:date;not null"`
	EmployeeCount   int         `gorm:"not null"`
	TotalGross      money.Money `gorm:"type:bigint;not null"`
	TotalDeductions money.Money `gorm:"type:bigint;not null"`
	TotalNet        money.Money `gorm:"type:bigint;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
