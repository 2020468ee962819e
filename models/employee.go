package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	Base
	EmployeeCode string `gorm:"uniqueIndex;not null"`
	FullName     string `gorm:"not null;index"`
	Email        string
	PhoneNumber  string `gorm:"not null"`
	Address      string

	Position   string `gorm:"not null"`
	Department string `gorm:"index"`
	HireDate   time.Time

	CompensationType string          `gorm:"type:varchar(10);not null"` // hourly, role
	HourlyRate       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	RoleRates        MoneyMap
	MonthlySalary    decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	PaymentMethod    string
	BankAccount      string

	EmergencyContactName     string
	EmergencyContactPhone    string
	EmergencyContactRelation string
	IDNumber                 string

	IsActive          bool `gorm:"index"`
	TotalEventsWorked int

	// running totals of logged work shifts
	TotalHoursWorked float64
	TotalEarnings    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PendingPayments  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Rating *float64
	Notes  string `gorm:"type:text"`
}
