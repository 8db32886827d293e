package payment

import (
	"time"

	"go-garage/internal/shared/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
	MethodCheck    = "check"
)

// Payment is one receipt applied against a service. Amount is what was
// actually consumed by the service, never the raw tendered amount.
type Payment struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ServiceID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	ReceiptNumber string      `gorm:"type:varchar(20);not null;uniqueIndex:uq_payment_receipt_number"`
	Amount        money.Money `gorm:"type:bigint;not null"`
	PaymentMethod string      `gorm:"type:varchar(20);not null"`
	TransactionID *string     `gorm:"type:varchar(100)"`
	Notes         *string     `gorm:"type:varchar(500)"`
	PaymentDate   time.Time   `gorm:"type:date;not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func ValidMethod(method string) bool {
	switch method {
	case MethodCash, MethodCard, MethodTransfer, MethodCheck:
		return true
	}
	return false
}
