package services

import (
	"testing"

	"eventhall-backend/apperr"
	"eventhall-backend/models"
	"eventhall-backend/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStoreSaveRejectsStaleVersion(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("19000"))

	events := store.NewEventStore(ts.db)
	first, err := events.GetByID(ctxBG, event.ID)
	require.NoError(t, err)
	second, err := events.GetByID(ctxBG, event.ID)
	require.NoError(t, err)

	first.InternalNotes = "first writer"
	require.NoError(t, events.Save(ctxBG, first))

	second.InternalNotes = "second writer"
	err = events.Save(ctxBG, second)
	assert.ErrorIs(t, err, apperr.ErrConcurrentUpdate)
	assert.Equal(t, first.Version-1, second.Version, "a rejected save keeps the version it was read at")

	stored := ts.reload(t, event.ID)
	assert.Equal(t, "first writer", stored.InternalNotes)
	assert.Equal(t, first.Version, stored.Version)
}

func TestRecomputePaymentRollup(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("19000"))

	// a payment written behind the rollup's back
	require.NoError(t, ts.db.Create(&models.Payment{
		EventID:       event.ID,
		ReceiptNumber: "RCPT-manual-1",
		Amount:        money("5000"),
		PaymentMethod: "cash",
		PaymentDate:   event.EventDate,
		PaymentStatus: models.PaymentStatusPaid,
	}).Error)

	updated, err := ts.finance.RecomputePaymentRollup(ctxBG, event.ID)
	require.NoError(t, err)
	assertMoney(t, "5000", updated.AmountPaid)
	assertMoney(t, "14000", updated.OutstandingBalance)
	assert.Equal(t, models.PaymentStatusPartial, updated.PaymentStatus)

	again, err := ts.finance.RecomputePaymentRollup(ctxBG, event.ID)
	require.NoError(t, err)
	assert.True(t, updated.OutstandingBalance.Equal(again.OutstandingBalance))
	assert.Equal(t, updated.PaymentStatus, again.PaymentStatus)

	_, err = ts.finance.RecomputePaymentRollup(ctxBG, uuid.New())
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestRecomputeLaborCostAndProfit(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("10000"))
	waiter := ts.addEmployee(t, models.Employee{
		FullName:         "Dana Levi",
		CompensationType: models.CompensationRole,
		RoleRates:        models.MoneyMap{"waiter": money("120")},
	})

	updated, err := ts.finance.RecomputeLaborCost(ctxBG, event.ID, []AssignmentInput{
		{EmployeeID: waiter.ID, Role: "waiter"},
		{EmployeeID: waiter.ID, Role: "chef"},
	})
	require.NoError(t, err)
	assertMoney(t, "120", updated.LaborCost)
	assertMoney(t, "0", updated.TotalExpenses, "labor recompute leaves expenses alone")

	stored := ts.reload(t, event.ID)
	require.Len(t, stored.Assignments, 2)
	assertMoney(t, "120", stored.Assignments[0].Cost)
	assertMoney(t, "0", stored.Assignments[1].Cost)

	require.NoError(t, ts.db.Model(&models.Event{}).Where("id = ?", event.ID).
		Update("total_expenses", money("2500")).Error)
	withProfit, err := ts.finance.RecomputeProfit(ctxBG, event.ID)
	require.NoError(t, err)
	assertMoney(t, "7500", withProfit.Profit)
	assert.Equal(t, 75.0, withProfit.ProfitMargin)
}

func TestRecomputeAllFoldsLaborIntoExpenses(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("10000"))
	cook := ts.addEmployee(t, models.Employee{
		FullName:         "Omar Haddad",
		CompensationType: models.CompensationHourly,
		HourlyRate:       money("50"),
	})

	_, err := ts.events.AssignEmployees(ctxBG, event.ID, []AssignmentRequest{
		{EmployeeID: cook.ID, Role: "kitchen", Hours: hours(8)},
	}, ts.userID)
	require.NoError(t, err)
	_, err = ts.expenses.Create(ctxBG, CreateExpenseInput{
		EventID:     &event.ID,
		Category:    "food",
		Description: "Catering ingredients",
		Amount:      money("1600"),
	}, ts.userID)
	require.NoError(t, err)

	updated, err := ts.finance.RecomputeAll(ctxBG, event.ID)
	require.NoError(t, err)
	assertMoney(t, "400", updated.LaborCost)
	assertMoney(t, "2000", updated.TotalExpenses)
	assertMoney(t, "10000", updated.TotalRevenue)
	assertMoney(t, "8000", updated.Profit)
	assert.Equal(t, 80.0, updated.ProfitMargin)
}

func TestLaborKeptOutOfExpenses(t *testing.T) {
	ts := newTestServices(t, false)
	event := ts.createEvent(t, weddingInput("10000"))
	cook := ts.addEmployee(t, models.Employee{
		FullName:         "Omar Haddad",
		CompensationType: models.CompensationHourly,
		HourlyRate:       money("50"),
	})

	updated, err := ts.events.AssignEmployees(ctxBG, event.ID, []AssignmentRequest{
		{EmployeeID: cook.ID, Hours: hours(8)},
	}, ts.userID)
	require.NoError(t, err)
	assertMoney(t, "400", updated.LaborCost)
	assertMoney(t, "0", updated.TotalExpenses)
	assertMoney(t, "10000", updated.Profit)
}
