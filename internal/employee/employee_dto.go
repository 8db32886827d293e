package employee

import "go-garage/internal/shared/money"

type CreateEmployeeRequest struct {
	EmployeeNumber string      `json:"employee_number"`
	FullName       string      `json:"full_name" binding:"required,max=150"`
	Phone          *string     `json:"phone" binding:"omitempty,max=30"`
	Salary         money.Money `json:"salary"`
	HireDate       string      `json:"hire_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FullName string      `json:"full_name" binding:"required,max=150"`
	Phone    *string     `json:"phone" binding:"omitempty,max=30"`
	Salary   money.Money `json:"salary"`
	Status   string      `json:"status" binding:"required,oneof=active inactive"`
	HireDate string      `json:"hire_date" binding:"required"`
}

type EmployeeResponse struct {
	ID             string      `json:"id"`
	EmployeeNumber string      `json:"employee_number"`
	FullName       string      `json:"full_name"`
	Phone          *string     `json:"phone,omitempty"`
	Salary         money.Money `json:"salary"`
	Status         string      `json:"status"`
	HireDate       string      `json:"hire_date"`
}

// EmployeeOption is the slim shape used by selection dropdowns.
type EmployeeOption struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
