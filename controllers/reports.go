// controllers/reports.go
package controllers

import (
	"net/http"
	"sort"
	"time"

	"eventhall-backend/models"
	"eventhall-backend/services"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportController serves the financial summary and the home dashboard
type ReportController struct {
	db *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{db: db}
}

type ReportSummary struct {
	StartDate     *time.Time      `json:"start_date,omitempty"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	EventCount    int64           `json:"event_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	NetPayments   decimal.Decimal `json:"net_payments"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitMargin  float64         `json:"profit_margin"`
	Growth        RevenueGrowth   `json:"growth"`
}

type RevenueGrowth struct {
	CurrentMonth   decimal.Decimal `json:"current_month"`
	MonthGrowth    float64         `json:"month_growth"`
	CurrentQuarter decimal.Decimal `json:"current_quarter"`
	QuarterGrowth  float64         `json:"quarter_growth"`
	CurrentYear    decimal.Decimal `json:"current_year"`
	YearGrowth     float64         `json:"year_growth"`
}

// netPaid sums what payments in [start, end] still contribute after refunds.
func (rc *ReportController) netPaid(start, end time.Time) (decimal.Decimal, error) {
	q := rc.db.Model(&models.Payment{}).
		Where("payment_status IN ?", []string{models.PaymentStatusPaid, models.PaymentStatusRefunded}).
		Where("payment_date BETWEEN ? AND ?", start, end)
	return sum(q, "amount - refund_amount")
}

func quarterStart(date time.Time) time.Time {
	quarter := (int(date.Month()) - 1) / 3
	return time.Date(date.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, date.Location())
}

func growthPercentage(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

func (rc *ReportController) revenueGrowth(now time.Time) (RevenueGrowth, error) {
	type period struct{ start, end time.Time }
	month := period{utils.BeginningOfMonth(now), utils.BeginningOfMonth(now).AddDate(0, 1, 0).Add(-time.Nanosecond)}
	quarter := period{quarterStart(now), quarterStart(now).AddDate(0, 3, 0).Add(-time.Nanosecond)}
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	year := period{yearStart, yearStart.AddDate(1, 0, 0).Add(-time.Nanosecond)}

	previous := func(p period, years, months int) period {
		return period{p.start.AddDate(years, months, 0), p.start.Add(-time.Nanosecond)}
	}

	var out RevenueGrowth
	var err error
	fetch := func(p period) decimal.Decimal {
		if err != nil {
			return decimal.Zero
		}
		var v decimal.Decimal
		v, err = rc.netPaid(p.start, p.end)
		return v
	}

	out.CurrentMonth = fetch(month)
	out.MonthGrowth = growthPercentage(out.CurrentMonth, fetch(previous(month, 0, -1)))
	out.CurrentQuarter = fetch(quarter)
	out.QuarterGrowth = growthPercentage(out.CurrentQuarter, fetch(previous(quarter, 0, -3)))
	out.CurrentYear = fetch(year)
	out.YearGrowth = growthPercentage(out.CurrentYear, fetch(previous(year, -1, 0)))
	return out, err
}

// GetSummary aggregates the rollup fields of non-cancelled events in the
// optional event_date range
func (rc *ReportController) GetSummary(c *gin.Context) {
	events := rc.db.Model(&models.Event{}).Where("status <> ?", models.EventStatusCancelled)
	events, ok := dateRange(c, events, "event_date")
	if !ok {
		return
	}

	summary := ReportSummary{}
	if v := c.Query("start_date"); v != "" {
		t, _ := utils.ParseDate(v)
		summary.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, _ := utils.ParseDate(v)
		summary.EndDate = &t
	}

	if err := events.Session(&gorm.Session{}).Count(&summary.EventCount).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count events")
		return
	}

	totals := []struct {
		column string
		dst    *decimal.Decimal
	}{
		{"total_revenue", &summary.Revenue},
		{"amount_paid", &summary.NetPayments},
		{"outstanding_balance", &summary.Outstanding},
		{"labor_cost", &summary.LaborCost},
		{"total_expenses", &summary.TotalExpenses},
		{"profit", &summary.Profit},
	}
	for _, t := range totals {
		v, err := sum(events.Session(&gorm.Session{}), t.column)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute report totals")
			return
		}
		*t.dst = v
	}
	if summary.Revenue.IsPositive() {
		summary.ProfitMargin, _ = summary.Profit.Div(summary.Revenue).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}

	growth, err := rc.revenueGrowth(nowUTC())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute revenue growth")
		return
	}
	summary.Growth = growth

	c.JSON(http.StatusOK, summary)
}

type EventProfit struct {
	EventID   string          `json:"event_id"`
	EventName string          `json:"event_name"`
	EventDate string          `json:"event_date"`
	Revenue   decimal.Decimal `json:"revenue"`
	Collected decimal.Decimal `json:"collected"`
	LaborCost decimal.Decimal `json:"labor_cost"`
	Costs     decimal.Decimal `json:"costs"`
	Profit    decimal.Decimal `json:"profit"`
	Margin    float64         `json:"margin_percent"`
}

type MonthProfit struct {
	Month      string          `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	Costs      decimal.Decimal `json:"costs"`
	Profit     decimal.Decimal `json:"profit"`
	EventCount int             `json:"event_count"`
}

type ProfitabilitySummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCosts   decimal.Decimal `json:"total_costs"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	ProfitMargin float64         `json:"profit_margin"`
}

type ProfitabilityReport struct {
	Summary ProfitabilitySummary `json:"summary"`
	ByEvent []EventProfit        `json:"by_event"`
	ByMonth []MonthProfit        `json:"by_month"`
}

// GetProfitability breaks the rolled up profit of non-cancelled events down
// per event and per calendar month of the event date
func (rc *ReportController) GetProfitability(c *gin.Context) {
	q := rc.db.Where("status <> ?", models.EventStatusCancelled)
	q, ok := dateRange(c, q, "event_date")
	if !ok {
		return
	}
	var events []models.Event
	if err := q.Order("event_date ASC").Find(&events).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	report := ProfitabilityReport{ByEvent: make([]EventProfit, len(events)), ByMonth: []MonthProfit{}}
	months := map[string]*MonthProfit{}
	for i, e := range events {
		report.ByEvent[i] = EventProfit{
			EventID:   e.ID.String(),
			EventName: e.EventName,
			EventDate: e.EventDate.Format("2006-01-02"),
			Revenue:   e.TotalRevenue,
			Collected: e.AmountPaid,
			LaborCost: e.LaborCost,
			Costs:     e.TotalExpenses,
			Profit:    e.Profit,
			Margin:    services.ProfitMargin(e.Profit, e.TotalRevenue),
		}
		report.Summary.TotalRevenue = report.Summary.TotalRevenue.Add(e.TotalRevenue)
		report.Summary.TotalCosts = report.Summary.TotalCosts.Add(e.TotalExpenses)
		report.Summary.TotalProfit = report.Summary.TotalProfit.Add(e.Profit)

		key := e.EventDate.UTC().Format("2006-01")
		m, seen := months[key]
		if !seen {
			m = &MonthProfit{Month: key}
			months[key] = m
		}
		m.Revenue = m.Revenue.Add(e.TotalRevenue)
		m.Costs = m.Costs.Add(e.TotalExpenses)
		m.Profit = m.Profit.Add(e.Profit)
		m.EventCount++
	}
	report.Summary.ProfitMargin = services.ProfitMargin(report.Summary.TotalProfit, report.Summary.TotalRevenue)

	for _, m := range months {
		report.ByMonth = append(report.ByMonth, *m)
	}
	sort.Slice(report.ByMonth, func(i, j int) bool { return report.ByMonth[i].Month < report.ByMonth[j].Month })

	c.JSON(http.StatusOK, report)
}

type DashboardEvent struct {
	ID            string          `json:"id"`
	EventName     string          `json:"event_name"`
	EventType     string          `json:"event_type"`
	EventDate     string          `json:"event_date"`
	DaysUntil     int             `json:"days_until"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Outstanding   decimal.Decimal `json:"outstanding_balance"`
}

type DashboardOverview struct {
	UpcomingEvents    []DashboardEvent   `json:"upcoming_events"`
	TotalOutstanding  decimal.Decimal    `json:"total_outstanding"`
	MonthNetRevenue   decimal.Decimal    `json:"month_net_revenue"`
	OpenTasks         int64              `json:"open_tasks"`
	OverdueTasks      int64              `json:"overdue_tasks"`
	RemindersDueToday []ReminderResponse `json:"reminders_due_today"`
}

// GetDashboard returns the at-a-glance numbers for the home screen
func (rc *ReportController) GetDashboard(c *gin.Context) {
	now := nowUTC()
	today := utils.BeginningOfDay(now)
	closed := []string{models.TaskStatusCompleted, models.TaskStatusCancelled}

	var upcoming []models.Event
	err := rc.db.Where("event_date BETWEEN ? AND ? AND status <> ?",
		today, utils.EndOfDay(today.AddDate(0, 0, 7)), models.EventStatusCancelled).
		Order("event_date ASC").Find(&upcoming).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve upcoming events")
		return
	}
	overview := DashboardOverview{UpcomingEvents: make([]DashboardEvent, len(upcoming))}
	for i, e := range upcoming {
		overview.UpcomingEvents[i] = DashboardEvent{
			ID:            e.ID.String(),
			EventName:     e.EventName,
			EventType:     e.EventType,
			EventDate:     e.EventDate.Format("2006-01-02"),
			DaysUntil:     utils.DaysBetween(today, e.EventDate),
			Status:        e.Status,
			PaymentStatus: e.PaymentStatus,
			Outstanding:   e.OutstandingBalance,
		}
	}

	overview.TotalOutstanding, err = sum(rc.db.Model(&models.Event{}).
		Where("status <> ?", models.EventStatusCancelled), "outstanding_balance")
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute outstanding balance")
		return
	}
	overview.MonthNetRevenue, err = rc.netPaid(utils.BeginningOfMonth(now), now)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute monthly revenue")
		return
	}

	rc.db.Model(&models.Task{}).Where("status NOT IN ?", closed).Count(&overview.OpenTasks)
	rc.db.Model(&models.Task{}).Where("status NOT IN ? AND due_date < ?", closed, now).Count(&overview.OverdueTasks)

	var reminders []models.Reminder
	rc.db.Where("is_done = ? AND due_at BETWEEN ? AND ?", false, today, utils.EndOfDay(today)).
		Order("due_at ASC").Find(&reminders)
	overview.RemindersDueToday = mapSlice(reminders, newReminderResponse)

	c.JSON(http.StatusOK, overview)
}
