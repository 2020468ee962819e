package services

import (
	"context"
	"strings"
	"time"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type PricingInput struct {
	BasePrice          decimal.Decimal            `json:"base_price" binding:"gte=0"`
	AdditionalServices map[string]decimal.Decimal `json:"additional_services"`
	Discounts          decimal.Decimal            `json:"discounts" binding:"gte=0"`
	Taxes              decimal.Decimal            `json:"taxes" binding:"gte=0"`
}

func (p PricingInput) toModel() models.EventPricing {
	return models.EventPricing{
		BasePrice:          p.BasePrice,
		AdditionalServices: models.MoneyMap(p.AdditionalServices),
		Discounts:          p.Discounts,
		Taxes:              p.Taxes,
	}
}

type ContactInput struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required,phone"`
	Email     string `json:"email" binding:"omitempty,email"`
	Relation  string `json:"relation"`
	IsPrimary bool   `json:"is_primary"`
}

type AssignmentRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
	Role       string    `json:"role"`
	Hours      *float64  `json:"hours" binding:"omitempty,gte=0"`
}

func toAssignmentInputs(reqs []AssignmentRequest) []AssignmentInput {
	out := make([]AssignmentInput, len(reqs))
	for i, r := range reqs {
		out[i] = AssignmentInput{EmployeeID: r.EmployeeID, Role: r.Role, Hours: r.Hours}
	}
	return out
}

func toContacts(in []ContactInput) datatypes.JSONSlice[models.EventContact] {
	out := make(datatypes.JSONSlice[models.EventContact], len(in))
	for i, c := range in {
		out[i] = models.EventContact{
			Name:      c.Name,
			Phone:     c.Phone,
			Email:     c.Email,
			Relation:  c.Relation,
			IsPrimary: c.IsPrimary,
		}
	}
	return out
}

type CreateEventInput struct {
	EventName           string              `json:"event_name" binding:"required,min=1,max=200"`
	EventType           string              `json:"event_type" binding:"required,oneof=wedding henna engagement graduation birthday other"`
	EventTypeOther      string              `json:"event_type_other"`
	Location            string              `json:"location" binding:"required,oneof=hall_floor_0 hall_floor_1 garden waterfall"`
	Status              string              `json:"status" binding:"omitempty,oneof=pending confirmed in_progress completed cancelled"`
	EventDate           time.Time           `json:"event_date" binding:"required"`
	StartTime           string              `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime             string              `json:"end_time" binding:"omitempty,datetime=15:04"`
	ExpectedGuests      int                 `json:"expected_guests" binding:"required,gt=0"`
	GuestGender         string              `json:"guest_gender" binding:"omitempty,oneof=male female mixed"`
	Contacts            []ContactInput      `json:"contacts" binding:"required,min=1,dive"`
	Services            map[string]bool     `json:"services"`
	SpecialRequests     string              `json:"special_requests"`
	DecorationType      string              `json:"decoration_type"`
	DecorationDetails   string              `json:"decoration_details"`
	MenuSelections      map[string][]string `json:"menu_selections"`
	DietaryRestrictions []string            `json:"dietary_restrictions"`
	Pricing             PricingInput        `json:"pricing" binding:"required"`
	DepositAmount       decimal.Decimal     `json:"deposit_amount" binding:"gte=0"`
	DepositPaid         bool                `json:"deposit_paid"`
	DepositMethod       string              `json:"deposit_method" binding:"omitempty,oneof=cash bank_transfer credit_card check other"`
	Assignments         []AssignmentRequest `json:"assignments" binding:"omitempty,dive"`
	InternalNotes       string              `json:"internal_notes"`
}

type UpdateEventInput struct {
	EventName           *string              `json:"event_name" binding:"omitempty,min=1,max=200"`
	EventType           *string              `json:"event_type" binding:"omitempty,oneof=wedding henna engagement graduation birthday other"`
	EventTypeOther      *string              `json:"event_type_other"`
	Location            *string              `json:"location" binding:"omitempty,oneof=hall_floor_0 hall_floor_1 garden waterfall"`
	Status              *string              `json:"status" binding:"omitempty,oneof=pending confirmed in_progress completed cancelled"`
	EventDate           *time.Time           `json:"event_date"`
	StartTime           *string              `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime             *string              `json:"end_time" binding:"omitempty,datetime=15:04"`
	ExpectedGuests      *int                 `json:"expected_guests" binding:"omitempty,gt=0"`
	ActualGuests        *int                 `json:"actual_guests" binding:"omitempty,gte=0"`
	GuestGender         *string              `json:"guest_gender" binding:"omitempty,oneof=male female mixed"`
	Contacts            *[]ContactInput      `json:"contacts" binding:"omitempty,min=1,dive"`
	Services            *map[string]bool     `json:"services"`
	SpecialRequests     *string              `json:"special_requests"`
	DecorationType      *string              `json:"decoration_type"`
	DecorationDetails   *string              `json:"decoration_details"`
	MenuSelections      *map[string][]string `json:"menu_selections"`
	DietaryRestrictions *[]string            `json:"dietary_restrictions"`
	Pricing             *PricingInput        `json:"pricing"`
	DepositAmount       *decimal.Decimal     `json:"deposit_amount" binding:"omitempty,gte=0"`
	DepositPaid         *bool                `json:"deposit_paid"`
	DepositMethod       string               `json:"deposit_method" binding:"omitempty,oneof=cash bank_transfer credit_card check other"`
	Assignments         *[]AssignmentRequest `json:"assignments" binding:"omitempty,dive"`
	InternalNotes       *string              `json:"internal_notes"`
}

// EventService owns event writes. All of them finish with a financial rollup.
type EventService struct {
	finance *FinanceService
	node    *snowflake.Node
	log     *zap.Logger
}

func NewEventService(finance *FinanceService, node *snowflake.Node, log *zap.Logger) *EventService {
	return &EventService{finance: finance, node: node, log: log}
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput, userID uuid.UUID) (*models.Event, error) {
	pricing := input.Pricing.toModel()
	total, err := ComputeTotalPrice(pricing)
	if err != nil {
		return nil, err
	}
	pricing.TotalPrice = total
	if input.DepositAmount.IsNegative() {
		return nil, apperr.InvalidAmount("deposit amount cannot be negative")
	}

	status := input.Status
	if status == "" {
		status = models.EventStatusPending
	}

	event := &models.Event{
		EventName:           input.EventName,
		EventType:           input.EventType,
		EventTypeOther:      input.EventTypeOther,
		Location:            input.Location,
		Status:              status,
		EventDate:           input.EventDate.UTC(),
		StartTime:           input.StartTime,
		EndTime:             input.EndTime,
		ExpectedGuests:      input.ExpectedGuests,
		GuestGender:         input.GuestGender,
		Contacts:            toContacts(input.Contacts),
		Services:            datatypes.NewJSONType(input.Services),
		SpecialRequests:     input.SpecialRequests,
		DecorationType:      input.DecorationType,
		DecorationDetails:   input.DecorationDetails,
		MenuSelections:      datatypes.NewJSONType(input.MenuSelections),
		DietaryRestrictions: datatypes.JSONSlice[string](input.DietaryRestrictions),
		Pricing:             pricing,
		DepositAmount:       input.DepositAmount,
		DepositPaid:         input.DepositPaid,
		TotalRevenue:        total,
		OutstandingBalance:  total,
		PaymentStatus:       models.PaymentStatusPending,
		InternalNotes:       input.InternalNotes,
		CreatedBy:           &userID,
		UpdatedBy:           &userID,
	}
	if status == models.EventStatusCancelled {
		now := time.Now().UTC()
		event.CancelledAt = &now
	}

	// the ID is needed before the insert so labor costing can log it
	event.ID = uuid.New()

	err = s.finance.inTx(ctx, func(st stores) error {
		if len(input.Assignments) > 0 {
			if err := ApplyLaborCost(ctx, event, toAssignmentInputs(input.Assignments), st.employees, s.log); err != nil {
				return err
			}
		}
		if err := st.events.Create(ctx, event); err != nil {
			return err
		}
		if event.DepositPaid && event.DepositAmount.IsPositive() {
			if err := s.recordDeposit(ctx, st, event, input.DepositMethod, userID); err != nil {
				return err
			}
		}
		return s.finance.rollup(ctx, st, event)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("total_price", event.Pricing.TotalPrice.String()))
	return event, nil
}

// recordDeposit books the deposit as a regular payment so it flows through
// the same rollup as every other payment.
func (s *EventService) recordDeposit(ctx context.Context, st stores, event *models.Event, method string, userID uuid.UUID) error {
	if method == "" {
		method = "cash"
	}
	payment := &models.Payment{
		EventID:       event.ID,
		EventName:     event.EventName,
		ReceiptNumber: receiptNumber(s.node),
		Amount:        event.DepositAmount,
		PaymentMethod: method,
		PaymentDate:   time.Now().UTC(),
		PaymentStatus: models.PaymentStatusPaid,
		Description:   "Deposit",
		CreatedBy:     &userID,
	}
	if contact := event.PrimaryContact(); contact != nil {
		payment.PayerName = contact.Name
		payment.PayerPhone = contact.Phone
		payment.PayerEmail = contact.Email
	}
	return st.payments.Create(ctx, payment)
}

func (s *EventService) Update(ctx context.Context, id uuid.UUID, input UpdateEventInput, userID uuid.UUID) (*models.Event, error) {
	var event *models.Event
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if event, err = st.events.GetByID(ctx, id); err != nil {
			return err
		}
		wasDepositPaid := event.DepositPaid

		if input.Pricing != nil {
			pricing := input.Pricing.toModel()
			total, err := ComputeTotalPrice(pricing)
			if err != nil {
				return err
			}
			pricing.TotalPrice = total
			event.Pricing = pricing
			event.TotalRevenue = total
		}
		if input.Assignments != nil {
			if err := ApplyLaborCost(ctx, event, toAssignmentInputs(*input.Assignments), st.employees, s.log); err != nil {
				return err
			}
		}
		applyEventUpdate(event, input)
		event.UpdatedBy = &userID

		if !wasDepositPaid && event.DepositPaid && event.DepositAmount.IsPositive() {
			if err := s.recordDeposit(ctx, st, event, input.DepositMethod, userID); err != nil {
				return err
			}
		}
		return s.finance.rollup(ctx, st, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func applyEventUpdate(event *models.Event, input UpdateEventInput) {
	if input.EventName != nil {
		event.EventName = *input.EventName
	}
	if input.EventType != nil {
		event.EventType = *input.EventType
	}
	if input.EventTypeOther != nil {
		event.EventTypeOther = *input.EventTypeOther
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.Status != nil && *input.Status != event.Status {
		event.Status = *input.Status
		if event.Status == models.EventStatusCancelled {
			now := time.Now().UTC()
			event.CancelledAt = &now
		} else {
			event.CancelledAt = nil
		}
	}
	if input.EventDate != nil {
		event.EventDate = input.EventDate.UTC()
	}
	if input.StartTime != nil {
		event.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		event.EndTime = *input.EndTime
	}
	if input.ExpectedGuests != nil {
		event.ExpectedGuests = *input.ExpectedGuests
	}
	if input.ActualGuests != nil {
		event.ActualGuests = input.ActualGuests
	}
	if input.GuestGender != nil {
		event.GuestGender = *input.GuestGender
	}
	if input.Contacts != nil {
		event.Contacts = toContacts(*input.Contacts)
	}
	if input.Services != nil {
		event.Services = datatypes.NewJSONType(*input.Services)
	}
	if input.SpecialRequests != nil {
		event.SpecialRequests = *input.SpecialRequests
	}
	if input.DecorationType != nil {
		event.DecorationType = *input.DecorationType
	}
	if input.DecorationDetails != nil {
		event.DecorationDetails = *input.DecorationDetails
	}
	if input.MenuSelections != nil {
		event.MenuSelections = datatypes.NewJSONType(*input.MenuSelections)
	}
	if input.DietaryRestrictions != nil {
		event.DietaryRestrictions = datatypes.JSONSlice[string](*input.DietaryRestrictions)
	}
	if input.DepositAmount != nil {
		event.DepositAmount = *input.DepositAmount
	}
	if input.DepositPaid != nil {
		event.DepositPaid = *input.DepositPaid
	}
	if input.InternalNotes != nil {
		event.InternalNotes = *input.InternalNotes
	}
}

// Cancel marks the event cancelled and records the reason in the notes.
// Payment status is not affected.
func (s *EventService) Cancel(ctx context.Context, id uuid.UUID, reason string, userID uuid.UUID) (*models.Event, error) {
	var event *models.Event
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if event, err = st.events.GetByID(ctx, id); err != nil {
			return err
		}
		if event.Status == models.EventStatusCancelled {
			return apperr.InvalidState("Event is already cancelled")
		}
		now := time.Now().UTC()
		event.Status = models.EventStatusCancelled
		event.CancelledAt = &now
		event.UpdatedBy = &userID
		if reason = strings.TrimSpace(reason); reason != "" {
			note := "CANCELLED: " + reason
			if event.InternalNotes != "" {
				note = event.InternalNotes + "\n" + note
			}
			event.InternalNotes = note
		}
		return st.events.Save(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// AssignEmployees rewrites the staffing list, then re-derives expenses and profit.
func (s *EventService) AssignEmployees(ctx context.Context, id uuid.UUID, reqs []AssignmentRequest, userID uuid.UUID) (*models.Event, error) {
	var event *models.Event
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if event, err = st.events.GetByID(ctx, id); err != nil {
			return err
		}
		if err := ApplyLaborCost(ctx, event, toAssignmentInputs(reqs), st.employees, s.log); err != nil {
			return err
		}
		event.UpdatedBy = &userID
		return s.finance.rollup(ctx, st, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.finance.inTx(ctx, func(st stores) error {
		return st.events.Delete(ctx, id)
	})
}
