package vehicleservice

import "go-garage/internal/shared/money"

type CreateServiceRequest struct {
	VehicleID   string      `json:"vehicle_id" binding:"required,uuid"`
	Description string      `json:"description" binding:"required,max=255"`
	Cost        money.Money `json:"cost"`
	Status      string      `json:"status" binding:"omitempty,oneof=pending in-service completed"`
	ServiceDate string      `json:"service_date" binding:"required"`
}

type UpdateServiceRequest struct {
	Description string `json:"description" binding:"required,max=255"`
	Status      string `json:"status" binding:"required,oneof=pending in-service completed"`
	ServiceDate string `json:"service_date" binding:"required"`
}

type ServiceResponse struct {
	ID              string      `json:"id"`
	VehicleID       string      `json:"vehicle_id"`
	Description     string      `json:"description"`
	Cost            money.Money `json:"cost"`
	AmountPaid      money.Money `json:"amount_paid"`
	RemainingAmount money.Money `json:"remaining_amount"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	ServiceDate     string      `json:"service_date"`
}
