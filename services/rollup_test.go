package services

import (
	"context"
	"strings"
	"testing"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msg ...string) {
	t.Helper()
	assert.Truef(t, money(want).Equal(got), "%s: want %s, got %s", strings.Join(msg, " "), want, got)
}

func paid(amount string) models.Payment {
	return models.Payment{Amount: money(amount), PaymentStatus: models.PaymentStatusPaid}
}

func refunded(amount, refund string) models.Payment {
	return models.Payment{
		Amount:        money(amount),
		RefundAmount:  money(refund),
		IsRefunded:    true,
		PaymentStatus: models.PaymentStatusRefunded,
	}
}

func pricedEvent(total string) *models.Event {
	return &models.Event{Pricing: models.EventPricing{TotalPrice: money(total)}}
}

func TestComputeTotalPrice(t *testing.T) {
	t.Run("adds services and taxes, subtracts discounts", func(t *testing.T) {
		total, err := ComputeTotalPrice(models.EventPricing{
			BasePrice:          money("15000"),
			AdditionalServices: models.MoneyMap{"dj": money("2500"), "photography": money("3000")},
			Discounts:          money("1500"),
			Taxes:              money("0"),
		})
		require.NoError(t, err)
		assertMoney(t, "19000", total)
	})

	t.Run("rejects a negative component", func(t *testing.T) {
		_, err := ComputeTotalPrice(models.EventPricing{BasePrice: money("-1")})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))

		_, err = ComputeTotalPrice(models.EventPricing{
			BasePrice:          money("100"),
			AdditionalServices: models.MoneyMap{"cake": money("-5")},
		})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))
	})

	t.Run("rejects discounts larger than the price", func(t *testing.T) {
		_, err := ComputeTotalPrice(models.EventPricing{BasePrice: money("100"), Discounts: money("150")})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))
	})
}

func TestApplyPaymentRollup(t *testing.T) {
	tests := []struct {
		name            string
		total           string
		payments        []models.Payment
		wantPaid        string
		wantOutstanding string
		wantStatus      string
	}{
		{
			name:            "no payments is pending",
			total:           "19000",
			wantPaid:        "0",
			wantOutstanding: "19000",
			wantStatus:      models.PaymentStatusPending,
		},
		{
			name:            "one partial payment",
			total:           "19000",
			payments:        []models.Payment{paid("5000")},
			wantPaid:        "5000",
			wantOutstanding: "14000",
			wantStatus:      models.PaymentStatusPartial,
		},
		{
			name:            "payments summing to the total",
			total:           "19000",
			payments:        []models.Payment{paid("5000"), paid("14000")},
			wantPaid:        "19000",
			wantOutstanding: "0",
			wantStatus:      models.PaymentStatusPaid,
		},
		{
			name:            "overpayment clamps the balance at zero",
			total:           "1000",
			payments:        []models.Payment{paid("1200")},
			wantPaid:        "1200",
			wantOutstanding: "0",
			wantStatus:      models.PaymentStatusPaid,
		},
		{
			name:            "pending payments count for nothing",
			total:           "1000",
			payments:        []models.Payment{{Amount: money("500"), PaymentStatus: models.PaymentStatusPending}},
			wantPaid:        "0",
			wantOutstanding: "1000",
			wantStatus:      models.PaymentStatusPending,
		},
		{
			name:            "fully refunded only payment goes back to pending",
			total:           "19000",
			payments:        []models.Payment{refunded("19000", "19000")},
			wantPaid:        "0",
			wantOutstanding: "19000",
			wantStatus:      models.PaymentStatusPending,
		},
		{
			name:            "fully refunded payment with others remaining is partial",
			total:           "19000",
			payments:        []models.Payment{refunded("14000", "14000"), paid("5000")},
			wantPaid:        "5000",
			wantOutstanding: "14000",
			wantStatus:      models.PaymentStatusPartial,
		},
		{
			name:            "partial refund counts its net remainder",
			total:           "10000",
			payments:        []models.Payment{refunded("10000", "2500")},
			wantPaid:        "7500",
			wantOutstanding: "2500",
			wantStatus:      models.PaymentStatusPartial,
		},
		{
			name:            "zero priced event is paid",
			total:           "0",
			wantPaid:        "0",
			wantOutstanding: "0",
			wantStatus:      models.PaymentStatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := pricedEvent(tt.total)
			ApplyPaymentRollup(event, tt.payments)
			assertMoney(t, tt.wantPaid, event.AmountPaid, "amount paid")
			assertMoney(t, tt.wantOutstanding, event.OutstandingBalance, "outstanding")
			assert.Equal(t, tt.wantStatus, event.PaymentStatus)
		})
	}
}

func TestApplyPaymentRollupIsIdempotent(t *testing.T) {
	event := pricedEvent("19000")
	event.LaborCost = money("800")
	payments := []models.Payment{paid("5000"), refunded("3000", "1000")}

	ApplyPaymentRollup(event, payments)
	first := *event
	ApplyPaymentRollup(event, payments)

	assert.True(t, first.AmountPaid.Equal(event.AmountPaid))
	assert.True(t, first.OutstandingBalance.Equal(event.OutstandingBalance))
	assert.Equal(t, first.PaymentStatus, event.PaymentStatus)
	assertMoney(t, "800", event.LaborCost, "unrelated fields are left alone")
}

func TestDerivePaymentStatusExactlyOne(t *testing.T) {
	total := money("1000")
	for _, p := range []string{"0", "0.01", "999.99", "1000", "1000.01"} {
		status := DerivePaymentStatus(money(p), total)
		assert.Contains(t, []string{
			models.PaymentStatusPending,
			models.PaymentStatusPartial,
			models.PaymentStatusPaid,
		}, status)
	}
	assert.Equal(t, models.PaymentStatusPending, DerivePaymentStatus(money("0"), total))
	assert.Equal(t, models.PaymentStatusPartial, DerivePaymentStatus(money("999.99"), total))
	assert.Equal(t, models.PaymentStatusPaid, DerivePaymentStatus(money("1000"), total))
}

type fakeEmployees map[uuid.UUID]*models.Employee

func (f fakeEmployees) GetByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, apperr.NotFound("Employee")
}

type failingEmployees struct{ err error }

func (f failingEmployees) GetByID(context.Context, uuid.UUID) (*models.Employee, error) {
	return nil, f.err
}

func hours(h float64) *float64 { return &h }

func TestApplyLaborCost(t *testing.T) {
	waiter := &models.Employee{
		FullName:         "Dana Levi",
		CompensationType: models.CompensationRole,
		RoleRates:        models.MoneyMap{"waiter": money("120")},
	}
	waiter.ID = uuid.New()
	cook := &models.Employee{
		FullName:         "Omar Haddad",
		CompensationType: models.CompensationHourly,
		HourlyRate:       money("45.50"),
	}
	cook.ID = uuid.New()
	employees := fakeEmployees{waiter.ID: waiter, cook.ID: cook}

	t.Run("role rates and hourly rates", func(t *testing.T) {
		event := pricedEvent("10000")
		err := ApplyLaborCost(context.Background(), event, []AssignmentInput{
			{EmployeeID: waiter.ID, Role: "waiter"},
			{EmployeeID: waiter.ID, Role: "chef"},
			{EmployeeID: cook.ID, Role: "kitchen", Hours: hours(6)},
		}, employees, zap.NewNop())
		require.NoError(t, err)

		require.Len(t, event.Assignments, 3)
		assertMoney(t, "120", event.Assignments[0].Cost)
		assertMoney(t, "0", event.Assignments[1].Cost, "role absent from the map costs zero")
		assertMoney(t, "273", event.Assignments[2].Cost)
		assert.Equal(t, "Dana Levi", event.Assignments[0].EmployeeName)
		assertMoney(t, "393", event.LaborCost)
	})

	t.Run("hourly employee without hours costs zero", func(t *testing.T) {
		event := pricedEvent("10000")
		require.NoError(t, ApplyLaborCost(context.Background(), event,
			[]AssignmentInput{{EmployeeID: cook.ID}}, employees, zap.NewNop()))
		assertMoney(t, "0", event.LaborCost)
	})

	t.Run("unknown employee costs zero", func(t *testing.T) {
		event := pricedEvent("10000")
		require.NoError(t, ApplyLaborCost(context.Background(), event, []AssignmentInput{
			{EmployeeID: uuid.New(), Role: "waiter"},
			{EmployeeID: waiter.ID, Role: "waiter"},
		}, employees, zap.NewNop()))
		assertMoney(t, "120", event.LaborCost)
		assert.Len(t, event.Assignments, 2)
	})

	t.Run("negative hours leave the event untouched", func(t *testing.T) {
		event := pricedEvent("10000")
		event.LaborCost = money("50")
		err := ApplyLaborCost(context.Background(), event,
			[]AssignmentInput{{EmployeeID: cook.ID, Hours: hours(-1)}}, employees, zap.NewNop())
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))
		assertMoney(t, "50", event.LaborCost)
	})

	t.Run("store failures propagate", func(t *testing.T) {
		event := pricedEvent("10000")
		err := ApplyLaborCost(context.Background(), event,
			[]AssignmentInput{{EmployeeID: cook.ID}}, failingEmployees{err: assert.AnError}, zap.NewNop())
		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, event.Assignments)
	})

	t.Run("does not touch expenses or revenue", func(t *testing.T) {
		event := pricedEvent("10000")
		event.TotalExpenses = money("700")
		event.TotalRevenue = money("10000")
		require.NoError(t, ApplyLaborCost(context.Background(), event,
			[]AssignmentInput{{EmployeeID: waiter.ID, Role: "waiter"}}, employees, zap.NewNop()))
		assertMoney(t, "700", event.TotalExpenses)
		assertMoney(t, "10000", event.TotalRevenue)
	})
}

func TestApplyExpensesAndProfit(t *testing.T) {
	expenses := []models.Expense{{Amount: money("1500")}, {Amount: money("500")}}

	t.Run("labor folded into expenses", func(t *testing.T) {
		event := pricedEvent("10000")
		event.TotalRevenue = money("10000")
		event.LaborCost = money("1000")
		ApplyExpenses(event, expenses, true)
		ApplyProfit(event)
		assertMoney(t, "3000", event.TotalExpenses)
		assertMoney(t, "7000", event.Profit)
		assert.Equal(t, 70.0, event.ProfitMargin)
	})

	t.Run("labor kept separate", func(t *testing.T) {
		event := pricedEvent("10000")
		event.TotalRevenue = money("10000")
		event.LaborCost = money("1000")
		ApplyExpenses(event, expenses, false)
		ApplyProfit(event)
		assertMoney(t, "2000", event.TotalExpenses)
		assertMoney(t, "8000", event.Profit)
	})

	t.Run("no revenue means zero margin", func(t *testing.T) {
		event := pricedEvent("0")
		ApplyExpenses(event, expenses, false)
		ApplyProfit(event)
		assertMoney(t, "-2000", event.Profit)
		assert.Equal(t, 0.0, event.ProfitMargin)
	})

	t.Run("margin is rounded to two places", func(t *testing.T) {
		assert.Equal(t, 33.33, ProfitMargin(money("1"), money("3")))
		assert.Equal(t, -50.0, ProfitMargin(money("-500"), money("1000")))
	})
}
