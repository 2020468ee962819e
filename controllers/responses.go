package controllers

import (
	"time"

	"eventhall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	Username              string     `json:"username"`
	FullName              string     `json:"full_name"`
	Phone                 string     `json:"phone,omitempty"`
	Role                  string     `json:"role"`
	Department            string     `json:"department,omitempty"`
	PreferredLanguage     string     `json:"preferred_language"`
	EmailNotifications    bool       `json:"email_notifications"`
	WhatsAppNotifications bool       `json:"whatsapp_notifications"`
	PushNotifications     bool       `json:"push_notifications"`
	IsActive              bool       `json:"is_active"`
	LastLogin             *time.Time `json:"last_login,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Username:              u.Username,
		FullName:              u.FullName,
		Phone:                 u.Phone,
		Role:                  u.Role,
		Department:            u.Department,
		PreferredLanguage:     u.PreferredLanguage,
		EmailNotifications:    u.EmailNotifications,
		WhatsAppNotifications: u.WhatsAppNotifications,
		PushNotifications:     u.PushNotifications,
		IsActive:              u.IsActive,
		LastLogin:             u.LastLogin,
		CreatedAt:             u.CreatedAt,
	}
}

type PricingResponse struct {
	BasePrice          decimal.Decimal            `json:"base_price"`
	AdditionalServices map[string]decimal.Decimal `json:"additional_services"`
	Discounts          decimal.Decimal            `json:"discounts"`
	Taxes              decimal.Decimal            `json:"taxes"`
	TotalPrice         decimal.Decimal            `json:"total_price"`
}

type EventResponse struct {
	ID                  uuid.UUID                        `json:"id"`
	EventName           string                           `json:"event_name"`
	EventType           string                           `json:"event_type"`
	EventTypeOther      string                           `json:"event_type_other,omitempty"`
	Location            string                           `json:"location"`
	Status              string                           `json:"status"`
	EventDate           time.Time                        `json:"event_date"`
	StartTime           string                           `json:"start_time,omitempty"`
	EndTime             string                           `json:"end_time,omitempty"`
	ExpectedGuests      int                              `json:"expected_guests"`
	ActualGuests        *int                             `json:"actual_guests,omitempty"`
	GuestGender         string                           `json:"guest_gender,omitempty"`
	Contacts            []models.EventContact            `json:"contacts"`
	Services            map[string]bool                  `json:"services"`
	SpecialRequests     string                           `json:"special_requests,omitempty"`
	DecorationType      string                           `json:"decoration_type,omitempty"`
	DecorationDetails   string                           `json:"decoration_details,omitempty"`
	MenuSelections      map[string][]string              `json:"menu_selections"`
	DietaryRestrictions []string                         `json:"dietary_restrictions"`
	Pricing             PricingResponse                  `json:"pricing"`
	DepositAmount       decimal.Decimal                  `json:"deposit_amount"`
	DepositPaid         bool                             `json:"deposit_paid"`
	AmountPaid          decimal.Decimal                  `json:"amount_paid"`
	OutstandingBalance  decimal.Decimal                  `json:"outstanding_balance"`
	PaymentStatus       string                           `json:"payment_status"`
	AssignedEmployees   []uuid.UUID                      `json:"assigned_employees"`
	Assignments         []models.EventEmployeeAssignment `json:"assignments"`
	LaborCost           decimal.Decimal                  `json:"labor_cost"`
	TotalExpenses       decimal.Decimal                  `json:"total_expenses"`
	TotalRevenue        decimal.Decimal                  `json:"total_revenue"`
	Profit              decimal.Decimal                  `json:"profit"`
	ProfitMargin        float64                          `json:"profit_margin"`
	InternalNotes       string                           `json:"internal_notes,omitempty"`
	CancelledAt         *time.Time                       `json:"cancelled_at,omitempty"`
	CreatedBy           *uuid.UUID                       `json:"created_by,omitempty"`
	UpdatedBy           *uuid.UUID                       `json:"updated_by,omitempty"`
	Version             int                              `json:"version"`
	CreatedAt           time.Time                        `json:"created_at"`
	UpdatedAt           time.Time                        `json:"updated_at"`
}

func newEventResponse(e *models.Event) EventResponse {
	services := e.Services.Data()
	if services == nil {
		services = map[string]bool{}
	}
	menu := e.MenuSelections.Data()
	if menu == nil {
		menu = map[string][]string{}
	}
	additional := map[string]decimal.Decimal(e.Pricing.AdditionalServices)
	if additional == nil {
		additional = map[string]decimal.Decimal{}
	}
	assigned := e.AssignedEmployeeIDs()
	if assigned == nil {
		assigned = []uuid.UUID{}
	}
	return EventResponse{
		ID:                  e.ID,
		EventName:           e.EventName,
		EventType:           e.EventType,
		EventTypeOther:      e.EventTypeOther,
		Location:            e.Location,
		Status:              e.Status,
		EventDate:           e.EventDate,
		StartTime:           e.StartTime,
		EndTime:             e.EndTime,
		ExpectedGuests:      e.ExpectedGuests,
		ActualGuests:        e.ActualGuests,
		GuestGender:         e.GuestGender,
		Contacts:            nonNil(e.Contacts),
		Services:            services,
		SpecialRequests:     e.SpecialRequests,
		DecorationType:      e.DecorationType,
		DecorationDetails:   e.DecorationDetails,
		MenuSelections:      menu,
		DietaryRestrictions: nonNil(e.DietaryRestrictions),
		Pricing: PricingResponse{
			BasePrice:          e.Pricing.BasePrice,
			AdditionalServices: additional,
			Discounts:          e.Pricing.Discounts,
			Taxes:              e.Pricing.Taxes,
			TotalPrice:         e.Pricing.TotalPrice,
		},
		DepositAmount:      e.DepositAmount,
		DepositPaid:        e.DepositPaid,
		AmountPaid:         e.AmountPaid,
		OutstandingBalance: e.OutstandingBalance,
		PaymentStatus:      e.PaymentStatus,
		AssignedEmployees:  assigned,
		Assignments:        nonNil(e.Assignments),
		LaborCost:          e.LaborCost,
		TotalExpenses:      e.TotalExpenses,
		TotalRevenue:       e.TotalRevenue,
		Profit:             e.Profit,
		ProfitMargin:       e.ProfitMargin,
		InternalNotes:      e.InternalNotes,
		CancelledAt:        e.CancelledAt,
		CreatedBy:          e.CreatedBy,
		UpdatedBy:          e.UpdatedBy,
		Version:            e.Version,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	EventID         uuid.UUID       `json:"event_id"`
	EventName       string          `json:"event_name"`
	ReceiptNumber   string          `json:"receipt_number"`
	Amount          decimal.Decimal `json:"amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentStatus   string          `json:"payment_status"`
	PayerName       string          `json:"payer_name,omitempty"`
	PayerPhone      string          `json:"payer_phone,omitempty"`
	PayerEmail      string          `json:"payer_email,omitempty"`
	Description     string          `json:"description,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	IsVerified      bool            `json:"is_verified"`
	VerifiedBy      *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	IsRefunded      bool            `json:"is_refunded"`
	RefundAmount    decimal.Decimal `json:"refund_amount"`
	RefundDate      *time.Time      `json:"refund_date,omitempty"`
	RefundReason    string          `json:"refund_reason,omitempty"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func newPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		EventID:         p.EventID,
		EventName:       p.EventName,
		ReceiptNumber:   p.ReceiptNumber,
		Amount:          p.Amount,
		NetAmount:       p.NetAmount(),
		PaymentMethod:   p.PaymentMethod,
		PaymentDate:     p.PaymentDate,
		PaymentStatus:   p.PaymentStatus,
		PayerName:       p.PayerName,
		PayerPhone:      p.PayerPhone,
		PayerEmail:      p.PayerEmail,
		Description:     p.Description,
		Notes:           p.Notes,
		TransactionID:   p.TransactionID,
		ReferenceNumber: p.ReferenceNumber,
		IsVerified:      p.IsVerified,
		VerifiedBy:      p.VerifiedBy,
		VerifiedAt:      p.VerifiedAt,
		IsRefunded:      p.IsRefunded,
		RefundAmount:    p.RefundAmount,
		RefundDate:      p.RefundDate,
		RefundReason:    p.RefundReason,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
	}
}

type EmployeeResponse struct {
	ID                       uuid.UUID                  `json:"id"`
	EmployeeCode             string                     `json:"employee_code"`
	FullName                 string                     `json:"full_name"`
	Email                    string                     `json:"email,omitempty"`
	PhoneNumber              string                     `json:"phone_number"`
	Address                  string                     `json:"address,omitempty"`
	Position                 string                     `json:"position"`
	Department               string                     `json:"department,omitempty"`
	HireDate                 time.Time                  `json:"hire_date"`
	CompensationType         string                     `json:"compensation_type"`
	HourlyRate               decimal.Decimal            `json:"hourly_rate"`
	RoleRates                map[string]decimal.Decimal `json:"role_rates"`
	MonthlySalary            decimal.NullDecimal        `json:"monthly_salary"`
	PaymentMethod            string                     `json:"payment_method,omitempty"`
	BankAccount              string                     `json:"bank_account,omitempty"`
	EmergencyContactName     string                     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone    string                     `json:"emergency_contact_phone,omitempty"`
	EmergencyContactRelation string                     `json:"emergency_contact_relation,omitempty"`
	IDNumber                 string                     `json:"id_number,omitempty"`
	IsActive                 bool                       `json:"is_active"`
	TotalEventsWorked        int                        `json:"total_events_worked"`
	TotalHoursWorked         float64                    `json:"total_hours_worked"`
	TotalEarnings            decimal.Decimal            `json:"total_earnings"`
	PendingPayments          decimal.Decimal            `json:"pending_payments"`
	Rating                   *float64                   `json:"rating,omitempty"`
	Notes                    string                     `json:"notes,omitempty"`
	CreatedAt                time.Time                  `json:"created_at"`
	UpdatedAt                time.Time                  `json:"updated_at"`
}

func newEmployeeResponse(e *models.Employee) EmployeeResponse {
	rates := map[string]decimal.Decimal(e.RoleRates)
	if rates == nil {
		rates = map[string]decimal.Decimal{}
	}
	return EmployeeResponse{
		ID:                       e.ID,
		EmployeeCode:             e.EmployeeCode,
		FullName:                 e.FullName,
		Email:                    e.Email,
		PhoneNumber:              e.PhoneNumber,
		Address:                  e.Address,
		Position:                 e.Position,
		Department:               e.Department,
		HireDate:                 e.HireDate,
		CompensationType:         e.CompensationType,
		HourlyRate:               e.HourlyRate,
		RoleRates:                rates,
		MonthlySalary:            e.MonthlySalary,
		PaymentMethod:            e.PaymentMethod,
		BankAccount:              e.BankAccount,
		EmergencyContactName:     e.EmergencyContactName,
		EmergencyContactPhone:    e.EmergencyContactPhone,
		EmergencyContactRelation: e.EmergencyContactRelation,
		IDNumber:                 e.IDNumber,
		IsActive:                 e.IsActive,
		TotalEventsWorked:        e.TotalEventsWorked,
		TotalHoursWorked:         e.TotalHoursWorked,
		TotalEarnings:            e.TotalEarnings,
		PendingPayments:          e.PendingPayments,
		Rating:                   e.Rating,
		Notes:                    e.Notes,
		CreatedAt:                e.CreatedAt,
		UpdatedAt:                e.UpdatedAt,
	}
}

type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	EventID     *uuid.UUID      `json:"event_id,omitempty"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ExpenseDate time.Time       `json:"expense_date"`
	Vendor      string          `json:"vendor,omitempty"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		EventID:     e.EventID,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		ExpenseDate: e.ExpenseDate,
		Vendor:      e.Vendor,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

type TaskResponse struct {
	ID                  uuid.UUID              `json:"id"`
	Title               string                 `json:"title"`
	Description         string                 `json:"description,omitempty"`
	Status              string                 `json:"status"`
	Priority            string                 `json:"priority"`
	Category            string                 `json:"category,omitempty"`
	AssignedTo          *uuid.UUID             `json:"assigned_to,omitempty"`
	AssignedToName      string                 `json:"assigned_to_name,omitempty"`
	AssignedBy          *uuid.UUID             `json:"assigned_by,omitempty"`
	AssignedByName      string                 `json:"assigned_by_name,omitempty"`
	EventID             *uuid.UUID             `json:"event_id,omitempty"`
	EventName           string                 `json:"event_name,omitempty"`
	DueDate             *time.Time             `json:"due_date,omitempty"`
	CompletedDate       *time.Time             `json:"completed_date,omitempty"`
	CompletedBy         *uuid.UUID             `json:"completed_by,omitempty"`
	CompletionNotes     string                 `json:"completion_notes,omitempty"`
	ProgressPercentage  int                    `json:"progress_percentage"`
	Tags                []string               `json:"tags"`
	Checklist           []models.ChecklistItem `json:"checklist"`
	Comments            []models.TaskComment   `json:"comments"`
	ReminderEnabled     bool                   `json:"reminder_enabled"`
	ReminderBeforeHours int                    `json:"reminder_before_hours"`
	IsOverdue           bool                   `json:"is_overdue"`
	CreatedBy           *uuid.UUID             `json:"created_by,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

func newTaskResponse(t *models.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:                  t.ID,
		Title:               t.Title,
		Description:         t.Description,
		Status:              t.Status,
		Priority:            t.Priority,
		Category:            t.Category,
		AssignedTo:          t.AssignedTo,
		AssignedToName:      t.AssignedToName,
		AssignedBy:          t.AssignedBy,
		AssignedByName:      t.AssignedByName,
		EventID:             t.EventID,
		EventName:           t.EventName,
		DueDate:             t.DueDate,
		CompletedDate:       t.CompletedDate,
		CompletedBy:         t.CompletedBy,
		CompletionNotes:     t.CompletionNotes,
		ProgressPercentage:  t.ProgressPercentage,
		Tags:                nonNil(t.Tags),
		Checklist:           nonNil(t.Checklist),
		Comments:            nonNil(t.Comments),
		ReminderEnabled:     t.ReminderEnabled,
		ReminderBeforeHours: t.ReminderBeforeHours,
		IsOverdue:           t.IsOverdue(now),
		CreatedBy:           t.CreatedBy,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

type ReminderResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	DueAt          time.Time  `json:"due_at"`
	Recurring      bool       `json:"recurring"`
	Frequency      string     `json:"frequency,omitempty"`
	RecurrenceRule string     `json:"recurrence_rule,omitempty"`
	AssignedTo     *uuid.UUID `json:"assigned_to,omitempty"`
	RelatedEventID *uuid.UUID `json:"related_event_id,omitempty"`
	RelatedTaskID  *uuid.UUID `json:"related_task_id,omitempty"`
	IsDone         bool       `json:"is_done"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
	CreatedBy      *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func newReminderResponse(r *models.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		DueAt:          r.DueAt,
		Recurring:      r.Recurring,
		Frequency:      r.Frequency,
		RecurrenceRule: r.RecurrenceRule,
		AssignedTo:     r.AssignedTo,
		RelatedEventID: r.RelatedEventID,
		RelatedTaskID:  r.RelatedTaskID,
		IsDone:         r.IsDone,
		CompletedAt:    r.CompletedAt,
		NotifiedAt:     r.NotifiedAt,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
	}
}

type WorkShiftResponse struct {
	ID            uuid.UUID       `json:"id"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	EventID       *uuid.UUID      `json:"event_id,omitempty"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	HoursWorked   float64         `json:"hours_worked"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	PaymentStatus string          `json:"payment_status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func newWorkShiftResponse(s *models.WorkShift) WorkShiftResponse {
	return WorkShiftResponse{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		EventID:       s.EventID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		HoursWorked:   s.HoursWorked,
		HourlyRate:    s.HourlyRate,
		TotalPayment:  s.TotalPayment,
		PaymentStatus: s.PaymentStatus,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
	}
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func mapSlice[T any, R any](in []T, fn func(*T) R) []R {
	out := make([]R, len(in))
	for i := range in {
		out[i] = fn(&in[i])
	}
	return out
}
