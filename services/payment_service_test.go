package services

import (
	"strings"
	"testing"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServices) pay(t *testing.T, eventID uuid.UUID, amount string) (*models.Payment, *models.Event) {
	t.Helper()
	payment, event, err := ts.payments.Record(ctxBG, CreatePaymentInput{
		EventID:       eventID,
		Amount:        money(amount),
		PaymentMethod: "cash",
	}, ts.userID)
	require.NoError(t, err)
	return payment, event
}

func TestPaymentServiceRecord(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("19000"))

	payment, updated := ts.pay(t, event.ID, "5000")
	assert.Equal(t, models.PaymentStatusPaid, payment.PaymentStatus)
	assert.True(t, strings.HasPrefix(payment.ReceiptNumber, "RCPT-"))
	assert.Equal(t, event.EventName, payment.EventName)
	assertMoney(t, "14000", updated.OutstandingBalance)
	assert.Equal(t, models.PaymentStatusPartial, updated.PaymentStatus)

	_, updated = ts.pay(t, event.ID, "14000")
	assertMoney(t, "0", updated.OutstandingBalance)
	assertMoney(t, "19000", updated.AmountPaid)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)

	stored := ts.reload(t, event.ID)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assertMoney(t, "19000", stored.AmountPaid)
}

func TestPaymentServiceRecordValidation(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("1000"))

	_, _, err := ts.payments.Record(ctxBG, CreatePaymentInput{
		EventID: event.ID, Amount: decimal.Zero, PaymentMethod: "cash",
	}, ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))

	_, _, err = ts.payments.Record(ctxBG, CreatePaymentInput{
		EventID: uuid.New(), Amount: money("100"), PaymentMethod: "cash",
	}, ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	var count int64
	ts.db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count, "failed records leave nothing behind")
}

func TestPaymentServiceRefund(t *testing.T) {
	t.Run("full refund of the only payment returns to pending", func(t *testing.T) {
		ts := newTestServices(t, true)
		event := ts.createEvent(t, weddingInput("19000"))
		payment, _ := ts.pay(t, event.ID, "19000")

		refundedPayment, updated, err := ts.payments.Refund(ctxBG, payment.ID, RefundPaymentInput{
			RefundAmount: money("19000"),
			RefundReason: "event cancelled",
		}, ts.userID)
		require.NoError(t, err)
		assert.True(t, refundedPayment.IsRefunded)
		assert.Equal(t, models.PaymentStatusRefunded, refundedPayment.PaymentStatus)
		assert.NotNil(t, refundedPayment.RefundDate)
		assert.Equal(t, models.PaymentStatusPending, updated.PaymentStatus)
		assertMoney(t, "19000", updated.OutstandingBalance)
	})

	t.Run("full refund with other payments remaining is partial", func(t *testing.T) {
		ts := newTestServices(t, true)
		event := ts.createEvent(t, weddingInput("19000"))
		ts.pay(t, event.ID, "5000")
		second, _ := ts.pay(t, event.ID, "14000")

		_, updated, err := ts.payments.Refund(ctxBG, second.ID, RefundPaymentInput{
			RefundAmount: money("14000"),
			RefundReason: "duplicate transfer",
		}, ts.userID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPartial, updated.PaymentStatus)
		assertMoney(t, "5000", updated.AmountPaid)
		assertMoney(t, "14000", updated.OutstandingBalance)
	})

	t.Run("partial refund keeps the net remainder", func(t *testing.T) {
		ts := newTestServices(t, true)
		event := ts.createEvent(t, weddingInput("10000"))
		payment, _ := ts.pay(t, event.ID, "10000")

		_, updated, err := ts.payments.Refund(ctxBG, payment.ID, RefundPaymentInput{
			RefundAmount: money("2500"),
			RefundReason: "fewer guests",
		}, ts.userID)
		require.NoError(t, err)
		assertMoney(t, "7500", updated.AmountPaid)
		assertMoney(t, "2500", updated.OutstandingBalance)
		assert.Equal(t, models.PaymentStatusPartial, updated.PaymentStatus)
	})

	t.Run("invalid refunds change nothing", func(t *testing.T) {
		ts := newTestServices(t, true)
		event := ts.createEvent(t, weddingInput("10000"))
		payment, _ := ts.pay(t, event.ID, "4000")
		before := ts.reload(t, event.ID)

		_, _, err := ts.payments.Refund(ctxBG, payment.ID, RefundPaymentInput{
			RefundAmount: money("4000.01"), RefundReason: "too much",
		}, ts.userID)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))

		_, _, err = ts.payments.Refund(ctxBG, payment.ID, RefundPaymentInput{
			RefundAmount: decimal.Zero, RefundReason: "nothing",
		}, ts.userID)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidAmount))

		after := ts.reload(t, event.ID)
		assert.Equal(t, before.Version, after.Version)
		assertMoney(t, "4000", after.AmountPaid)

		stored := models.Payment{}
		require.NoError(t, ts.db.First(&stored, "id = ?", payment.ID).Error)
		assert.False(t, stored.IsRefunded)

		_, _, err = ts.payments.Refund(ctxBG, uuid.New(), RefundPaymentInput{
			RefundAmount: money("1"), RefundReason: "missing",
		}, ts.userID)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})

	t.Run("a refunded payment cannot be refunded again", func(t *testing.T) {
		ts := newTestServices(t, true)
		event := ts.createEvent(t, weddingInput("10000"))
		payment, _ := ts.pay(t, event.ID, "4000")

		_, _, err := ts.payments.Refund(ctxBG, payment.ID, RefundPaymentInput{
			RefundAmount: money("1000"), RefundReason: "first",
		}, ts.userID)
		require.NoError(t, err)

		_, _, err = ts.payments.Refund(ctxBG, payment.ID, RefundPaymentInput{
			RefundAmount: money("1000"), RefundReason: "second",
		}, ts.userID)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
	})
}

func TestPaymentServiceUpdate(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("10000"))
	payment, _ := ts.pay(t, event.ID, "4000")

	verified := true
	pending := models.PaymentStatusPending
	updated, err := ts.payments.Update(ctxBG, payment.ID, UpdatePaymentInput{
		IsVerified:    &verified,
		PaymentStatus: &pending,
	}, ts.userID)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)
	require.NotNil(t, updated.VerifiedBy)
	assert.Equal(t, ts.userID, *updated.VerifiedBy)
	assert.NotNil(t, updated.VerifiedAt)

	stored := ts.reload(t, event.ID)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus, "a pending payment no longer counts")
	assertMoney(t, "0", stored.AmountPaid)

	amount := money("12000")
	paidStatus := models.PaymentStatusPaid
	_, err = ts.payments.Update(ctxBG, payment.ID, UpdatePaymentInput{Amount: &amount, PaymentStatus: &paidStatus}, ts.userID)
	require.NoError(t, err)
	stored = ts.reload(t, event.ID)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assertMoney(t, "0", stored.OutstandingBalance)
}

func TestPaymentServiceDelete(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("10000"))
	first, _ := ts.pay(t, event.ID, "4000")
	ts.pay(t, event.ID, "6000")

	require.NoError(t, ts.payments.Delete(ctxBG, first.ID))
	stored := ts.reload(t, event.ID)
	assertMoney(t, "6000", stored.AmountPaid)
	assert.Equal(t, models.PaymentStatusPartial, stored.PaymentStatus)

	err := ts.payments.Delete(ctxBG, first.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestPaymentServiceVerify(t *testing.T) {
	ts := newTestServices(t, true)
	event := ts.createEvent(t, weddingInput("8000"))
	payment, _ := ts.pay(t, event.ID, "3000")
	before := ts.reload(t, event.ID)

	verified, err := ts.payments.Verify(ctxBG, payment.ID, ts.userID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, ts.userID, *verified.VerifiedBy)
	assert.NotNil(t, verified.VerifiedAt)

	after := ts.reload(t, event.ID)
	assert.Equal(t, before.Version, after.Version, "verification leaves the event untouched")
	assertMoney(t, "3000", after.AmountPaid)

	_, err = ts.payments.Verify(ctxBG, payment.ID, ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = ts.payments.Verify(ctxBG, uuid.New(), ts.userID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
