package services

import (
	"strings"
	"testing"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEventServiceCreate(t *testing.T) {
	t.Run("prices the event and starts pending", func(t *testing.T) {
		ts := newTestServices(t, true)
		input := weddingInput("15000")
		input.Pricing.AdditionalServices = map[string]decimal.Decimal{"dj": money("2500"), "flowers": money("3000")}
		input.Pricing.Discounts = money("1500")

		event := ts.createEvent(t, input)
		assertMoney(t, "19000", event.Pricing.TotalPrice)
		assertMoney(t, "19000", event.TotalRevenue)
		assertMoney(t, "19000", event.OutstandingBalance)
		assert.Equal(t, models.PaymentStatusPending, event.PaymentStatus)
		assert.Equal(t, models.EventStatusPending, event.Status)
		assert.Equal(t, 2, event.Version)
	})

	t.Run("a paid deposit is booked as a payment", func(t *testing.T) {
		ts := newTestServices(t, true)
		input := weddingInput("19000")
		input.DepositAmount = money("5000")
		input.DepositPaid = true
		input.DepositMethod = "bank_transfer"

		event := ts.createEvent(t, input)
		assertMoney(t, "5000", event.AmountPaid)
		assertMoney(t, "14000", event.OutstandingBalance)
		assert.Equal(t, models.PaymentStatusPartial, event.PaymentStatus)

		var payments []models.Payment
		require.NoError(t, ts.db.Where("event_id = ?", event.ID).Find(&payments).Error)
		require.Len(t, payments, 1)
		assert.Equal(t, "Deposit", payments[0].Description)
		assert.Equal(t, "bank_transfer", payments[0].PaymentMethod)
		assert.Equal(t, "Noa Cohen", payments[0].PayerName)
		assert.True(t, strings.HasPrefix(payments[0].ReceiptNumber, "RCPT-"))
	})

	t.Run("an unpaid deposit is not booked", func(t *testing.T) {
		ts := newTestServices(t, true)
		input := weddingInput("19000")
		input.DepositAmount = money("5000")

		event := ts.createEvent(t, input)
		assertMoney(t, "0", event.AmountPaid)
		var count int64
		ts.db.Model(&models.Payment{}).Where("event_id = ?", event.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("rejects discounts above the price", func(t *testing.T) {
		ts := newTestServices(t, true)
		input := weddingInput("1000")
		input.Pricing.Discounts = money("1500")

		_, err := ts.events.Create(ctxBG, input, ts.userID)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))
		var count int64
		ts.db.Model(&models.Event{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("costs assignments given at creation", func(t *testing.T) {
		ts := newTestServices(t, true)
		waiter := ts.addEmployee(t, models.Employee{
			FullName:         "Dana Levi",
			CompensationType: models.CompensationRole,
			RoleRates:        models.MoneyMap{"waiter": money("120")},
		})
		input := weddingInput("10000")
		input.Assignments = []AssignmentRequest{{EmployeeID: waiter.ID, Role: "waiter"}}

		event := ts.createEvent(t, input)
		assertMoney(t, "120", event.LaborCost)
		assertMoney(t, "120", event.TotalExpenses)
		assertMoney(t, "9880", event.Profit)
	})
}

func TestEventServiceUpdatePricing(t *testing.T) {
	ts := newTestServices(t, true)
	input := weddingInput("19000")
	input.DepositAmount = money("5000")
	input.DepositPaid = true
	event := ts.createEvent(t, input)

	pricing := PricingInput{BasePrice: money("4000")}
	updated, err := ts.events.Update(ctxBG, event.ID, UpdateEventInput{Pricing: &pricing}, ts.userID)
	require.NoError(t, err)

	assertMoney(t, "4000", updated.Pricing.TotalPrice)
	assertMoney(t, "4000", updated.TotalRevenue)
	assertMoney(t, "0", updated.OutstandingBalance)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
}

func TestEventServiceUpdateMarksDepositPaid(t *testing.T) {
	ts := newTestServices(t, true)
	input := weddingInput("19000")
	input.DepositAmount = money("3000")
	event := ts.createEvent(t, input)

	depositPaid := true
	updated, err := ts.events.Update(ctxBG, event.ID, UpdateEventInput{DepositPaid: &depositPaid}, ts.userID)
	require.NoError(t, err)
	assertMoney(t, "3000", updated.AmountPaid)
	assert.Equal(t, models.PaymentStatusPartial, updated.PaymentStatus)

	// marking it paid again books nothing new
	updated, err = ts.events.Update(ctxBG, event.ID, UpdateEventInput{DepositPaid: &depositPaid}, ts.userID)
	require.NoError(t, err)
	assertMoney(t, "3000", updated.AmountPaid)
}

func TestEventServiceCancel(t *testing.T) {
	ts := newTestServices(t, true)
	input := weddingInput("19000")
	input.DepositAmount = money("5000")
	input.DepositPaid = true
	event := ts.createEvent(t, input)

	cancelled, err := ts.events.Cancel(ctxBG, event.ID, "  venue double booked ", ts.userID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, "CANCELLED: venue double booked", cancelled.InternalNotes)
	assert.Equal(t, models.PaymentStatusPartial, cancelled.PaymentStatus, "payment status is independent of the event status")

	_, err = ts.events.Cancel(ctxBG, event.ID, "again", ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))

	_, err = ts.events.Cancel(ctxBG, uuid.New(), "", ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestEventServiceDelete(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("1000"))

	require.NoError(t, ts.events.Delete(ctxBG, event.ID))
	err := ts.events.Delete(ctxBG, event.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestEventServiceCreateLogsUnknownEmployeeWithEventID(t *testing.T) {
	ts := newTestServices(t, true)
	core, logs := observer.New(zapcore.WarnLevel)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	events := NewEventService(ts.finance, node, zap.New(core))

	input := weddingInput("9000")
	input.Assignments = []AssignmentRequest{{EmployeeID: uuid.New(), Role: "waiter"}}
	event, err := events.Create(ctxBG, input, ts.userID)
	require.NoError(t, err)
	assertMoney(t, "0", event.LaborCost)

	warnings := logs.FilterMessage("assigned employee not found, costing at zero").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, event.ID.String(), warnings[0].ContextMap()["event_id"])
	assert.NotEqual(t, uuid.Nil, event.ID)
}
