package events

import "time"

const PaymentRecordedTopic = "garage.payment.recorded.v1"

type PaymentRecordedEvent struct {
	EventType     string    `json:"event_type"`
	PaymentID     string    `json:"payment_id"`
	ServiceID     string    `json:"service_id"`
	VehicleID     string    `json:"vehicle_id"`
	ReceiptNumber string    `json:"receipt_number"`
	Amount        string    `json:"amount"`
	ExcessAmount  string    `json:"excess_amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
