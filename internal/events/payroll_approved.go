package events

import "time"

const PayrollApprovedTopic = "garage.payroll.approved.v1"

type PayrollApprovedEvent struct {
	EventType     string    `json:"event_type"`
	RunID         string    `json:"run_id"`
	ApprovedBy    string    `json:"approved_by"`
	EmployeeCount int       `json:"employee_count"`
	TotalGross    string    `json:"total_gross"`
	TotalNet      string    `json:"total_net"`
	OccurredAt    time.Time `json:"occurred_at"`
}
