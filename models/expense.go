package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Expense struct {
	Base
	EventID     *uuid.UUID      `gorm:"type:uuid;index"`
	Category    string          `gorm:"type:varchar(20);not null;index"` // food, decoration, music, photography, staff, utilities, maintenance, other
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	ExpenseDate time.Time       `gorm:"not null;index"`
	Vendor      string
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
}
