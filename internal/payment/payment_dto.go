package payment

import "go-garage/internal/shared/money"

type RecordPaymentRequest struct {
	Amount        money.Money `json:"amount" binding:"required"`
	PaymentMethod string      `json:"payment_method" binding:"required,oneof=cash card transfer check"`
	TransactionID *string     `json:"transaction_id" binding:"omitempty,max=100"`
	Notes         *string     `json:"notes" binding:"omitempty,max=500"`
	PaymentDate   string      `json:"payment_date" binding:"required"`
}

type UpdatePaymentRequest struct {
	Amount        money.Money `json:"amount" binding:"required"`
	PaymentMethod string      `json:"payment_method" binding:"required,oneof=cash card transfer check"`
	TransactionID *string     `json:"transaction_id" binding:"omitempty,max=100"`
	Notes         *string     `json:"notes" binding:"omitempty,max=500"`
	PaymentDate   string      `json:"payment_date" binding:"required"`
}

type PaymentResponse struct {
	ID            string      `json:"id"`
	ServiceID     string      `json:"service_id"`
	ReceiptNumber string      `json:"receipt_number"`
	Amount        money.Money `json:"amount"`
	PaymentMethod string      `json:"payment_method"`
	TransactionID *string     `json:"transaction_id,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
	PaymentDate   string      `json:"payment_date"`

	// ExcessAmount is the tendered portion that exceeded what the service
	// could absorb. Informational only, nothing is stored for it.
	ExcessAmount money.Money `json:"excess_amount,omitempty"`
}

type AllocationResponse struct {
	Payments     []PaymentResponse `json:"payments"`
	TotalApplied money.Money       `json:"total_applied"`
	ExcessAmount money.Money       `json:"excess_amount"`
}
