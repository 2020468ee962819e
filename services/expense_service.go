package services

import (
	"context"
	"time"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateExpenseInput struct {
	EventID     *uuid.UUID      `json:"event_id"`
	Category    string          `json:"category" binding:"required,oneof=food decoration music photography staff utilities maintenance other"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"gt=0"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	ExpenseDate *time.Time      `json:"expense_date"`
	Vendor      string          `json:"vendor"`
}

type UpdateExpenseInput struct {
	EventID     *uuid.UUID       `json:"event_id"`
	ClearEvent  bool             `json:"clear_event"`
	Category    *string          `json:"category" binding:"omitempty,oneof=food decoration music photography staff utilities maintenance other"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount" binding:"omitempty,gt=0"`
	Currency    *string          `json:"currency" binding:"omitempty,len=3"`
	ExpenseDate *time.Time       `json:"expense_date"`
	Vendor      *string          `json:"vendor"`
}

const DefaultCurrency = "ILS"

// ExpenseService writes expenses and refreshes the totals of the events they belong to.
type ExpenseService struct {
	finance *FinanceService
}

func NewExpenseService(finance *FinanceService) *ExpenseService {
	return &ExpenseService{finance: finance}
}

func (s *ExpenseService) Create(ctx context.Context, input CreateExpenseInput, userID uuid.UUID) (*models.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, apperr.InvalidAmount("expense amount must be greater than zero")
	}
	expense := &models.Expense{
		EventID:     input.EventID,
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount.Round(2),
		Currency:    input.Currency,
		ExpenseDate: time.Now().UTC(),
		Vendor:      input.Vendor,
		CreatedBy:   &userID,
	}
	if expense.Currency == "" {
		expense.Currency = DefaultCurrency
	}
	if input.ExpenseDate != nil {
		expense.ExpenseDate = input.ExpenseDate.UTC()
	}

	err := s.finance.inTx(ctx, func(st stores) error {
		if expense.EventID != nil {
			// the event must exist before money is booked against it
			if _, err := st.events.GetByID(ctx, *expense.EventID); err != nil {
				return err
			}
		}
		if err := st.expenses.Create(ctx, expense); err != nil {
			return err
		}
		return s.refreshEvents(ctx, st, expense.EventID)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, input UpdateExpenseInput) (*models.Expense, error) {
	var expense *models.Expense
	err := s.finance.inTx(ctx, func(st stores) error {
		var err error
		if expense, err = st.expenses.GetByID(ctx, id); err != nil {
			return err
		}
		previous := expense.EventID

		if input.ClearEvent {
			expense.EventID = nil
		} else if input.EventID != nil {
			if _, err := st.events.GetByID(ctx, *input.EventID); err != nil {
				return err
			}
			expense.EventID = input.EventID
		}
		if input.Category != nil {
			expense.Category = *input.Category
		}
		if input.Description != nil {
			expense.Description = *input.Description
		}
		if input.Amount != nil {
			if !input.Amount.IsPositive() {
				return apperr.InvalidAmount("expense amount must be greater than zero")
			}
			expense.Amount = input.Amount.Round(2)
		}
		if input.Currency != nil {
			expense.Currency = *input.Currency
		}
		if input.ExpenseDate != nil {
			expense.ExpenseDate = input.ExpenseDate.UTC()
		}
		if input.Vendor != nil {
			expense.Vendor = *input.Vendor
		}
		if err := st.expenses.Save(ctx, expense); err != nil {
			return err
		}
		return s.refreshEvents(ctx, st, previous, expense.EventID)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.finance.inTx(ctx, func(st stores) error {
		expense, err := st.expenses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := st.expenses.Delete(ctx, expense); err != nil {
			return err
		}
		return s.refreshEvents(ctx, st, expense.EventID)
	})
}

// refreshEvents re-derives totals of every distinct, still existing event.
func (s *ExpenseService) refreshEvents(ctx context.Context, st stores, ids ...*uuid.UUID) error {
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		event, err := st.events.GetByID(ctx, *id)
		if apperr.Is(err, apperr.CodeNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := s.finance.rollup(ctx, st, event); err != nil {
			return err
		}
	}
	return nil
}
