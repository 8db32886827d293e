package employeepayment

import "go-garage/internal/shared/money"

type RecordAdvanceRequest struct {
	Amount      money.Money `json:"amount" binding:"required"`
	Notes       *string     `json:"notes" binding:"omitempty,max=500"`
	PaymentDate string      `json:"payment_date" binding:"required"`
}

type RecordDeductionRequest struct {
	Amount      money.Money `json:"amount" binding:"required"`
	Notes       *string     `json:"notes" binding:"omitempty,max=500"`
	PaymentDate string      `json:"payment_date" binding:"required"`
}

type EntryResponse struct {
	ID          string      `json:"id"`
	EmployeeID  string      `json:"employee_id"`
	RunID       *string     `json:"run_id,omitempty"`
	PaymentType string      `json:"payment_type"`
	Amount      money.Money `json:"amount"`
	Status      string      `json:"status"`
	Notes       *string     `json:"notes,omitempty"`
	PaymentDate string      `json:"payment_date"`
}

type LedgerResponse struct {
	EmployeeID string          `json:"employee_id"`
	Entries    []EntryResponse `json:"entries"`
	Balance    money.Money     `json:"balance"`
}

type BalanceResponse struct {
	EmployeeID string      `json:"employee_id"`
	AsOf       *string     `json:"as_of,omitempty"`
	Balance    money.Money `json:"balance"`
}
