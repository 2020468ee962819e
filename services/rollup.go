package services

import (
	"context"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// EventStore loads and persists whole events.
type EventStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Save(ctx context.Context, event *models.Event) error
}

type PaymentStore interface {
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Payment, error)
}

type EmployeeStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

type ExpenseStore interface {
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Expense, error)
}

// AssignmentInput is one requested staffing row before costing.
type AssignmentInput struct {
	EmployeeID uuid.UUID
	Role       string
	Hours      *float64
}

// ComputeTotalPrice returns base + services - discounts + taxes.
func ComputeTotalPrice(p models.EventPricing) (decimal.Decimal, error) {
	if p.BasePrice.IsNegative() || p.Discounts.IsNegative() || p.Taxes.IsNegative() {
		return decimal.Zero, apperr.InvalidAmount("pricing amounts cannot be negative")
	}
	for name, amount := range p.AdditionalServices {
		if amount.IsNegative() {
			return decimal.Zero, apperr.InvalidAmount("additional service " + name + " cannot be negative")
		}
	}
	total := p.BasePrice.
		Add(p.AdditionalServices.Sum()).
		Sub(p.Discounts).
		Add(p.Taxes)
	if total.IsNegative() {
		return decimal.Zero, apperr.InvalidAmount("discounts exceed the event price")
	}
	return total.Round(2), nil
}

// TotalPaid sums what paid and refunded payments still contribute.
// Pending payments contribute nothing.
func TotalPaid(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		switch payments[i].PaymentStatus {
		case models.PaymentStatusPaid, models.PaymentStatusRefunded:
			total = total.Add(payments[i].NetAmount())
		}
	}
	return total
}

// DerivePaymentStatus maps what was paid against the price to
// pending, partial or paid.
func DerivePaymentStatus(totalPaid, totalPrice decimal.Decimal) string {
	switch {
	case totalPaid.GreaterThanOrEqual(totalPrice):
		return models.PaymentStatusPaid
	case totalPaid.IsPositive():
		return models.PaymentStatusPartial
	default:
		return models.PaymentStatusPending
	}
}

// ApplyPaymentRollup sets amount paid, outstanding balance and payment
// status from the event's payments. Other fields are left alone.
func ApplyPaymentRollup(event *models.Event, payments []models.Payment) {
	paid := TotalPaid(payments)
	outstanding := event.Pricing.TotalPrice.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	event.AmountPaid = paid
	event.OutstandingBalance = outstanding
	event.PaymentStatus = DerivePaymentStatus(paid, event.Pricing.TotalPrice)
}

// AssignmentCost prices one staffing row from the employee's compensation model.
func AssignmentCost(employee *models.Employee, role string, hours *float64) decimal.Decimal {
	switch employee.CompensationType {
	case models.CompensationHourly:
		if hours == nil || *hours <= 0 {
			return decimal.Zero
		}
		return employee.HourlyRate.Mul(decimal.NewFromFloat(*hours)).Round(2)
	case models.CompensationRole:
		if rate, ok := employee.RoleRates[role]; ok {
			return rate
		}
	}
	return decimal.Zero
}

// ApplyLaborCost rebuilds the assignment list with per-row cost and sets
// labor_cost to their sum. Unknown employees cost zero; any other lookup
// failure aborts without touching the event.
func ApplyLaborCost(ctx context.Context, event *models.Event, inputs []AssignmentInput, employees EmployeeStore, log *zap.Logger) error {
	for _, in := range inputs {
		if in.Hours != nil && *in.Hours < 0 {
			return apperr.InvalidAmount("assignment hours cannot be negative")
		}
	}

	assignments := make([]models.EventEmployeeAssignment, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		row := models.EventEmployeeAssignment{
			EmployeeID: in.EmployeeID,
			Role:       in.Role,
			Hours:      in.Hours,
			Cost:       decimal.Zero,
		}
		employee, err := employees.GetByID(ctx, in.EmployeeID)
		switch {
		case err == nil:
			row.EmployeeName = employee.FullName
			row.Cost = AssignmentCost(employee, in.Role, in.Hours)
		case apperr.Is(err, apperr.CodeNotFound):
			log.Warn("assigned employee not found, costing at zero",
				zap.String("event_id", event.ID.String()),
				zap.String("employee_id", in.EmployeeID.String()))
		default:
			return err
		}
		total = total.Add(row.Cost)
		assignments = append(assignments, row)
	}

	event.Assignments = assignments
	event.LaborCost = total
	return nil
}

// ApplyExpenses sets total_expenses from the event's expense records,
// folding in labor cost when laborInExpenses is set.
func ApplyExpenses(event *models.Event, expenses []models.Expense, laborInExpenses bool) {
	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}
	if laborInExpenses {
		total = total.Add(event.LaborCost)
	}
	event.TotalExpenses = total
}

// ApplyProfit sets profit = revenue - expenses and the margin in percent.
func ApplyProfit(event *models.Event) {
	event.Profit = event.TotalRevenue.Sub(event.TotalExpenses)
	event.ProfitMargin = ProfitMargin(event.Profit, event.TotalRevenue)
}

// ProfitMargin is profit / revenue * 100 rounded to two places, 0 without revenue.
func ProfitMargin(profit, revenue decimal.Decimal) float64 {
	if revenue.IsZero() {
		return 0
	}
	margin, _ := profit.Div(revenue).Mul(hundred).Round(2).Float64()
	return margin
}
