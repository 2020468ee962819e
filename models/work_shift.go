package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ShiftPaymentPending = "pending"
	ShiftPaymentPaid    = "paid"
)

// WorkShift is one logged stretch of work by an employee, usually at an event.
type WorkShift struct {
	Base
	EmployeeID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	EventID       *uuid.UUID `gorm:"type:uuid;index"`
	StartTime     time.Time  `gorm:"not null;index"`
	EndTime       time.Time  `gorm:"not null"`
	HoursWorked   float64
	HourlyRate    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TotalPayment  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus string          `gorm:"type:varchar(20);not null"` // pending, paid
	Notes         string          `gorm:"type:text"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
}

// ShiftPay returns hours between start and end, rounded to two places, and
// the matching pay at rate.
func ShiftPay(start, end time.Time, rate decimal.Decimal) (float64, decimal.Decimal) {
	hours := decimal.NewFromFloat(end.Sub(start).Hours()).Round(2)
	h, _ := hours.Float64()
	return h, rate.Mul(hours).Round(2)
}
