package employee

import (
	"time"

	"go-garage/internal/shared/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Employee struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeNumber string      `gorm:"type:varchar(20);not null;uniqueIndex:uq_employee_number"`
	FullName       string      `gorm:"type:varchar(150);not null"`
	Phone          *string     `gorm:"type:varchar(30)"`
	Salary         money.Money `gorm:"type:bigint;not null;default:0"`
	Status         string      `gorm:"type:varchar(20);not null;default:'active'"`
	HireDate       time.Time   `gorm:"type:date;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}
