package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	Base
	EventID       uuid.UUID `gorm:"type:uuid;index;not null"`
	EventName     string
	ReceiptNumber string `gorm:"uniqueIndex;not null"`

	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"` // cash, bank_transfer, credit_card, check, other
	PaymentDate   time.Time       `gorm:"not null;index"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;index"`

	PayerName       string
	PayerPhone      string
	PayerEmail      string
	Description     string
	Notes           string `gorm:"type:text"`
	TransactionID   string
	ReferenceNumber string

	IsVerified bool
	VerifiedBy *uuid.UUID `gorm:"type:uuid"`
	VerifiedAt *time.Time

	IsRefunded   bool
	RefundAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RefundDate   *time.Time
	RefundReason string

	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// NetAmount is what the payment still contributes after refunds.
func (p *Payment) NetAmount() decimal.Decimal {
	net := p.Amount.Sub(p.RefundAmount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}
