// controllers/payments.go
package controllers

import (
	"net/http"

	"eventhall-backend/models"
	"eventhall-backend/services"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentController struct {
	db       *gorm.DB
	payments *services.PaymentService
}

func NewPaymentController(db *gorm.DB, payments *services.PaymentService) *PaymentController {
	return &PaymentController{db: db, payments: payments}
}

// CreatePayment records a payment and returns it with the updated event
func (h *PaymentController) CreatePayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	payment, event, err := h.payments.Record(c.Request.Context(), input, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"payment": newPaymentResponse(payment),
		"event":   newEventResponse(event),
	})
}

// GetPayments lists payments, latest first
func (h *PaymentController) GetPayments(c *gin.Context) {
	p := utils.ParsePagination(c)
	q := h.db.Model(&models.Payment{})

	eventID, ok := queryUUID(c, "event_id")
	if !ok {
		return
	}
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	if status := c.Query("payment_status"); status != "" {
		q = q.Where("payment_status = ?", status)
	}
	if method := c.Query("payment_method"); method != "" {
		q = q.Where("payment_method = ?", method)
	}
	verified, ok := queryBool(c, "is_verified")
	if !ok {
		return
	}
	if verified != nil {
		q = q.Where("is_verified = ?", *verified)
	}
	if q, ok = dateRange(c, q, "payment_date"); !ok {
		return
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}
	var payments []models.Payment
	if err := q.Order("payment_date DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}
	c.JSON(http.StatusOK, utils.NewPage(mapSlice(payments, newPaymentResponse), total, p))
}

// GetEventPayments lists every payment of one event
func (h *PaymentController) GetEventPayments(c *gin.Context) {
	eventID, ok := parseID(c, "event_id", "event")
	if !ok {
		return
	}
	var event models.Event
	if err := h.db.First(&event, "id = ?", eventID).Error; err != nil {
		respondLookupError(c, err, "Event")
		return
	}
	var payments []models.Payment
	if err := h.db.Where("event_id = ?", eventID).Order("payment_date ASC").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"event_id":            event.ID,
		"total_price":         event.Pricing.TotalPrice,
		"amount_paid":         event.AmountPaid,
		"outstanding_balance": event.OutstandingBalance,
		"payment_status":      event.PaymentStatus,
		"payments":            mapSlice(payments, newPaymentResponse),
	})
}

type OutstandingEvent struct {
	EventID            uuid.UUID       `json:"event_id"`
	EventName          string          `json:"event_name"`
	EventDate          string          `json:"event_date"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	PaymentStatus      string          `json:"payment_status"`
}

// GetOutstanding summarises unpaid balances of active events
func (h *PaymentController) GetOutstanding(c *gin.Context) {
	active := func() *gorm.DB {
		return h.db.Model(&models.Event{}).
			Where("status <> ? AND outstanding_balance > 0", models.EventStatusCancelled)
	}

	total, err := sum(active(), "outstanding_balance")
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute outstanding balance")
		return
	}

	byStatus := map[string]int64{}
	var rows []groupCount
	active().Select("payment_status AS group_key, COUNT(*) AS total").Group("payment_status").Scan(&rows)
	for _, r := range rows {
		byStatus[r.GroupKey] = r.Total
	}

	var top []models.Event
	if err := active().Order("outstanding_balance DESC").Limit(10).Find(&top).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	events := make([]OutstandingEvent, len(top))
	for i, e := range top {
		events[i] = OutstandingEvent{
			EventID:            e.ID,
			EventName:          e.EventName,
			EventDate:          e.EventDate.Format("2006-01-02"),
			TotalPrice:         e.Pricing.TotalPrice,
			AmountPaid:         e.AmountPaid,
			OutstandingBalance: e.OutstandingBalance,
			PaymentStatus:      e.PaymentStatus,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_outstanding": total,
		"by_status":         byStatus,
		"top_outstanding":   events,
	})
}

func (h *PaymentController) GetPayment(c *gin.Context) {
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return
	}
	var payment models.Payment
	if err := h.db.First(&payment, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Payment")
		return
	}
	c.JSON(http.StatusOK, newPaymentResponse(&payment))
}

func (h *PaymentController) UpdatePayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return
	}
	var input services.UpdatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	payment, err := h.payments.Update(c.Request.Context(), id, input, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaymentResponse(payment))
}

// RefundPayment records a refund (admin only)
func (h *PaymentController) RefundPayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return
	}
	var input services.RefundPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	payment, event, err := h.payments.Refund(c.Request.Context(), id, input, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment": newPaymentResponse(payment),
		"event":   newEventResponse(event),
	})
}

// VerifyPayment marks a payment as verified by the caller
func (h *PaymentController) VerifyPayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return
	}
	payment, err := h.payments.Verify(c.Request.Context(), id, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaymentResponse(payment))
}

type PaymentStatsOverview struct {
	TotalPayments       int64                      `json:"total_payments"`
	TotalAmount         decimal.Decimal            `json:"total_amount"`
	TotalRefunded       decimal.Decimal            `json:"total_refunded"`
	NetAmount           decimal.Decimal            `json:"net_amount"`
	VerifiedPayments    int64                      `json:"verified_payments"`
	PendingVerification int64                      `json:"pending_verification"`
	ByMethod            map[string]decimal.Decimal `json:"by_method"`
	ByStatus            map[string]int64           `json:"by_status"`
}

// GetPaymentStats aggregates payments in the optional payment_date range
func (h *PaymentController) GetPaymentStats(c *gin.Context) {
	scoped, ok := dateRange(c, h.db.Model(&models.Payment{}), "payment_date")
	if !ok {
		return
	}
	base := func() *gorm.DB { return scoped.Session(&gorm.Session{}) }

	var stats PaymentStatsOverview
	var err error
	if err = base().Count(&stats.TotalPayments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute payment stats")
		return
	}
	if stats.TotalAmount, err = sum(base(), "amount"); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute payment stats")
		return
	}
	if stats.TotalRefunded, err = sum(base(), "refund_amount"); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute payment stats")
		return
	}
	stats.NetAmount = stats.TotalAmount.Sub(stats.TotalRefunded)

	base().Where("is_verified = ?", true).Count(&stats.VerifiedPayments)
	stats.PendingVerification = stats.TotalPayments - stats.VerifiedPayments

	stats.ByMethod = map[string]decimal.Decimal{}
	var methods []struct {
		GroupKey string
		Total    decimal.Decimal
	}
	base().Select("payment_method AS group_key, COALESCE(SUM(amount), 0) AS total").
		Group("payment_method").Scan(&methods)
	for _, m := range methods {
		stats.ByMethod[m.GroupKey] = m.Total
	}

	stats.ByStatus = map[string]int64{}
	var rows []groupCount
	base().Select("payment_status AS group_key, COUNT(*) AS total").Group("payment_status").Scan(&rows)
	for _, r := range rows {
		stats.ByStatus[r.GroupKey] = r.Total
	}

	c.JSON(http.StatusOK, stats)
}

func (h *PaymentController) DeletePayment(c *gin.Context) {
	id, ok := parseID(c, "id", "payment")
	if !ok {
		return
	}
	if err := h.payments.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}
