package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"eventhall-backend/models"
	"eventhall-backend/services"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CancelEventInput struct {
	Reason string `json:"reason"`
}

type EventController struct {
	db      *gorm.DB
	events  *services.EventService
	finance *services.FinanceService
}

func NewEventController(db *gorm.DB, events *services.EventService, finance *services.FinanceService) *EventController {
	return &EventController{db: db, events: events, finance: finance}
}

// CreateEvent creates an event and derives its totals
func (h *EventController) CreateEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	event, err := h.events.Create(c.Request.Context(), input, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEventResponse(event))
}

// GetEvents lists events, newest event date first
func (h *EventController) GetEvents(c *gin.Context) {
	p := utils.ParsePagination(c)
	q := h.db.Model(&models.Event{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if eventType := c.Query("event_type"); eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	if location := c.Query("location"); location != "" {
		q = q.Where("location = ?", location)
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		q = q.Where("payment_status = ?", paymentStatus)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(event_name) LIKE ? OR LOWER(special_requests) LIKE ?", like, like)
	}
	q, ok := dateRange(c, q, "event_date")
	if !ok {
		return
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	var events []models.Event
	if err := q.Order("event_date DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&events).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	c.JSON(http.StatusOK, utils.NewPage(mapSlice(events, newEventResponse), total, p))
}

// GetUpcomingEvents returns the next non-cancelled events
func (h *EventController) GetUpcomingEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		utils.RespondWithError(c, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}
	var events []models.Event
	if err := h.db.
		Where("event_date >= ? AND status <> ?", nowUTC(), models.EventStatusCancelled).
		Order("event_date ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	c.JSON(http.StatusOK, mapSlice(events, newEventResponse))
}

type EventStatsOverview struct {
	TotalEvents        int64            `json:"total_events"`
	TotalRevenue       decimal.Decimal  `json:"total_revenue"`
	TotalExpenses      decimal.Decimal  `json:"total_expenses"`
	TotalProfit        decimal.Decimal  `json:"total_profit"`
	TotalOutstanding   decimal.Decimal  `json:"total_outstanding"`
	AverageMargin      float64          `json:"average_profit_margin"`
	UpcomingEvents     int64            `json:"upcoming_events"`
	StatusBreakdown    map[string]int64 `json:"status_breakdown"`
	EventTypeBreakdown map[string]int64 `json:"event_type_breakdown"`
}

type groupCount struct {
	GroupKey string
	Total    int64
}

// GetEventStats aggregates money and counts over all events
func (h *EventController) GetEventStats(c *gin.Context) {
	var stats EventStatsOverview
	var err error
	base := func() *gorm.DB { return h.db.Model(&models.Event{}) }

	if err = base().Count(&stats.TotalEvents).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	if stats.TotalRevenue, err = sum(base(), "total_revenue"); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	if stats.TotalExpenses, err = sum(base(), "total_expenses"); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	if stats.TotalProfit, err = sum(base(), "profit"); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	if stats.TotalOutstanding, err = sum(base().Where("status <> ?", models.EventStatusCancelled), "outstanding_balance"); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	stats.AverageMargin = services.ProfitMargin(stats.TotalProfit, stats.TotalRevenue)

	base().Where("event_date >= ? AND status <> ?", nowUTC(), models.EventStatusCancelled).Count(&stats.UpcomingEvents)

	stats.StatusBreakdown = map[string]int64{}
	var rows []groupCount
	base().Select("status AS group_key, COUNT(*) AS total").Group("status").Scan(&rows)
	for _, r := range rows {
		stats.StatusBreakdown[r.GroupKey] = r.Total
	}

	stats.EventTypeBreakdown = map[string]int64{}
	rows = nil
	base().Select("event_type AS group_key, COUNT(*) AS total").Group("event_type").Scan(&rows)
	for _, r := range rows {
		stats.EventTypeBreakdown[r.GroupKey] = r.Total
	}

	c.JSON(http.StatusOK, stats)
}

// GetEvent retrieves a specific event by ID
func (h *EventController) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	var event models.Event
	if err := h.db.First(&event, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, newEventResponse(&event))
}

// UpdateEvent applies a partial update and re-derives the financials
func (h *EventController) UpdateEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	var input services.UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	event, err := h.events.Update(c.Request.Context(), id, input, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(event))
}

func (h *EventController) CancelEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	var input CancelEventInput
	// the body is optional; ?reason= works too
	_ = c.ShouldBindJSON(&input)
	if input.Reason == "" {
		input.Reason = c.Query("reason")
	}
	event, err := h.events.Cancel(c.Request.Context(), id, input.Reason, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(event))
}

// AssignEmployees replaces the staffing list and recomputes labor cost
func (h *EventController) AssignEmployees(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	var input []services.AssignmentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	for _, a := range input {
		if a.Hours != nil && *a.Hours < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "hours cannot be negative")
			return
		}
	}
	event, err := h.events.AssignEmployees(c.Request.Context(), id, input, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(event))
}

// RecomputeEvent rebuilds every derived money field from stored data
func (h *EventController) RecomputeEvent(c *gin.Context) {
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	event, err := h.finance.RecomputeAll(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(event))
}

// DeleteEvent soft deletes an event (admin only)
func (h *EventController) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	if err := h.events.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}
