package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventStatusPending    = "pending"
	EventStatusConfirmed  = "confirmed"
	EventStatusInProgress = "in_progress"
	EventStatusCompleted  = "completed"
	EventStatusCancelled  = "cancelled"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusOverdue  = "overdue"
)

const (
	CompensationHourly = "hourly"
	CompensationRole   = "role"
)

// EventPricing is stored inline on the event row with a pricing_ prefix.
type EventPricing struct {
	BasePrice          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AdditionalServices MoneyMap
	Discounts          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Taxes              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

type EventContact struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Relation  string `json:"relation,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

// EventEmployeeAssignment is one staffed role on an event. Cost is fixed when
// the assignment list is written.
type EventEmployeeAssignment struct {
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	Role         string          `json:"role"`
	Hours        *float64        `json:"hours,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
}

type Event struct {
	Base
	EventName      string    `gorm:"not null"`
	EventType      string    `gorm:"type:varchar(30);not null;index"`
	EventTypeOther string
	Location       string    `gorm:"type:varchar(30);not null;index"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	EventDate      time.Time `gorm:"not null;index"`
	StartTime      string    `gorm:"type:varchar(5)"`
	EndTime        string    `gorm:"type:varchar(5)"`
	ExpectedGuests int
	ActualGuests   *int
	GuestGender    string `gorm:"type:varchar(10)"`

	Contacts            datatypes.JSONSlice[EventContact]
	Services            datatypes.JSONType[map[string]bool]
	SpecialRequests     string `gorm:"type:text"`
	DecorationType      string
	DecorationDetails   string `gorm:"type:text"`
	MenuSelections      datatypes.JSONType[map[string][]string]
	DietaryRestrictions datatypes.JSONSlice[string]

	Pricing       EventPricing    `gorm:"embedded;embeddedPrefix:pricing_"`
	DepositAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DepositPaid   bool

	// Rollup fields, derived on every financial mutation.
	AmountPaid         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus      string          `gorm:"type:varchar(20);not null;index"`
	Assignments        datatypes.JSONSlice[EventEmployeeAssignment]
	LaborCost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalExpenses      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalRevenue       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Profit             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ProfitMargin       float64

	InternalNotes string `gorm:"type:text"`
	CancelledAt   *time.Time
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy     *uuid.UUID `gorm:"type:uuid"`

	Version int `gorm:"not null"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if err = e.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if e.Version == 0 {
		e.Version = 1
	}
	if e.PaymentStatus == "" {
		e.PaymentStatus = PaymentStatusPending
	}
	return
}

// AssignedEmployeeIDs lists the distinct employees staffed on the event.
func (e *Event) AssignedEmployeeIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, a := range e.Assignments {
		if !seen[a.EmployeeID] {
			seen[a.EmployeeID] = true
			ids = append(ids, a.EmployeeID)
		}
	}
	return ids
}

// PrimaryContact returns the contact flagged primary, or the first one.
func (e *Event) PrimaryContact() *EventContact {
	for i := range e.Contacts {
		if e.Contacts[i].IsPrimary {
			return &e.Contacts[i]
		}
	}
	if len(e.Contacts) > 0 {
		return &e.Contacts[0]
	}
	return nil
}
