package payroll

import "go-garage/internal/shared/money"

type Selection struct {
	EmployeeID      string      `json:"employee_id" binding:"required,uuid"`
	ManualDeduction money.Money `json:"manual_deduction"`
	Notes           *string     `json:"notes" binding:"omitempty,max=500"`
}

type PreviewRequest struct {
	Selections []Selection `json:"selections" binding:"required"`
}

type ApproveRequest struct {
	PaymentDate string      `json:"payment_date" binding:"required"`
	Selections  []Selection `json:"selections" binding:"required"`
}

// Row is one employee's line in a run. NetPayable folds in the carried
// account balance but is informational; what is persisted is the gross
// salary entry and the deduction entry.
type Row struct {
	EmployeeID      string      `json:"employee_id"`
	FullName        string      `json:"full_name"`
	GrossSalary     money.Money `json:"gross_salary"`
	AccountBalance  money.Money `json:"account_balance"`
	ManualDeduction money.Money `json:"manual_deduction"`
	NetPayable      money.Money `json:"net_payable"`
}

type PreviewResponse struct {
	Rows            []Row       `json:"rows"`
	EmployeeCount   int         `json:"employee_count"`
	TotalGross      money.Money `json:"total_gross"`
	TotalDeductions money.Money `json:"total_deductions"`
	TotalNet        money.Money `json:"total_net"`
}

type RunResponse struct {
	ID              string      `json:"id"`
	RunNumber       string      `json:"run_number"`
	ApprovedBy      string      `json:"approved_by"`
	PaymentDate     string      `json:"payment_date"`
	Rows            []Row       `json:"rows,omitempty"`
	EmployeeCount   int         `json:"employee_count"`
	TotalGross      money.Money `json:"total_gross"`
	TotalDeductions money.Money `json:"total_deductions"`
	TotalNet        money.Money `json:"total_net"`
}
