package services

import (
	"testing"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseServiceKeepsEventTotals(t *testing.T) {
	ts := newTestServices(t, true)
	wedding := ts.createEvent(t, weddingInput("10000"))
	henna := ts.createEvent(t, weddingInput("6000"))

	expense, err := ts.expenses.Create(ctxBG, CreateExpenseInput{
		EventID:     &wedding.ID,
		Category:    "decoration",
		Description: "Flower arches",
		Amount:      money("1200"),
	}, ts.userID)
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, expense.Currency)

	stored := ts.reload(t, wedding.ID)
	assertMoney(t, "1200", stored.TotalExpenses)
	assertMoney(t, "8800", stored.Profit)
	assert.Equal(t, 88.0, stored.ProfitMargin)

	t.Run("moving the expense updates both events", func(t *testing.T) {
		_, err := ts.expenses.Update(ctxBG, expense.ID, UpdateExpenseInput{EventID: &henna.ID})
		require.NoError(t, err)
		assertMoney(t, "0", ts.reload(t, wedding.ID).TotalExpenses)
		assertMoney(t, "1200", ts.reload(t, henna.ID).TotalExpenses)
		assertMoney(t, "4800", ts.reload(t, henna.ID).Profit)
	})

	t.Run("changing the amount re-derives profit", func(t *testing.T) {
		amount := money("3000")
		_, err := ts.expenses.Update(ctxBG, expense.ID, UpdateExpenseInput{Amount: &amount})
		require.NoError(t, err)
		assertMoney(t, "3000", ts.reload(t, henna.ID).Profit)
	})

	t.Run("deleting the expense clears it from the event", func(t *testing.T) {
		require.NoError(t, ts.expenses.Delete(ctxBG, expense.ID))
		stored := ts.reload(t, henna.ID)
		assertMoney(t, "0", stored.TotalExpenses)
		assertMoney(t, "6000", stored.Profit)
	})
}

func TestExpenseServiceValidation(t *testing.T) {
	ts := newTestServices(t, true)
	missing := uuid.New()

	_, err := ts.expenses.Create(ctxBG, CreateExpenseInput{
		EventID: &missing, Category: "food", Description: "Bread", Amount: money("10"),
	}, ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = ts.expenses.Create(ctxBG, CreateExpenseInput{
		Category: "food", Description: "Bread", Amount: money("-10"),
	}, ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))

	general, err := ts.expenses.Create(ctxBG, CreateExpenseInput{
		Category: "utilities", Description: "Electricity", Amount: money("900"), Currency: "USD",
	}, ts.userID)
	require.NoError(t, err)
	assert.Nil(t, general.EventID)
	assert.Equal(t, "USD", general.Currency)

	var count int64
	ts.db.Model(&models.Expense{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
