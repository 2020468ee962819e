package services

import (
	"context"

	"eventhall-backend/apperr"
	"eventhall-backend/metrics"
	"eventhall-backend/models"
	"eventhall-backend/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FinanceService keeps an event's derived money fields in step with its
// pricing, payments, assignments and expenses. Every recompute is a single
// transaction and the event save is version checked.
type FinanceService struct {
	db              *gorm.DB
	log             *zap.Logger
	metrics         *metrics.Metrics
	laborInExpenses bool
}

func NewFinanceService(db *gorm.DB, log *zap.Logger, m *metrics.Metrics, laborInExpenses bool) *FinanceService {
	return &FinanceService{db: db, log: log, metrics: m, laborInExpenses: laborInExpenses}
}

// stores groups the repositories bound to one transaction.
type stores struct {
	events    *store.EventStore
	payments  *store.PaymentStore
	employees *store.EmployeeStore
	expenses  *store.ExpenseStore

	// payment statuses of the rollups saved so far, observed after commit
	rolledUp *[]string
}

func newStores(tx *gorm.DB) stores {
	return stores{
		events:    store.NewEventStore(tx),
		payments:  store.NewPaymentStore(tx),
		employees: store.NewEmployeeStore(tx),
		expenses:  store.NewExpenseStore(tx),
		rolledUp:  new([]string),
	}
}

// inTx runs fn in a transaction with transaction-bound stores. Rollup
// metrics are only recorded once the transaction has committed.
func (s *FinanceService) inTx(ctx context.Context, fn func(st stores) error) error {
	var rolledUp []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := newStores(tx)
		if err := fn(st); err != nil {
			return err
		}
		rolledUp = *st.rolledUp
		return nil
	})
	if err == nil {
		for _, status := range rolledUp {
			s.metrics.ObserveRollup(status)
		}
	}
	if apperr.Is(err, apperr.CodeConcurrentUpdate) {
		s.metrics.ObserveConflict()
		s.log.Warn("event save lost version check", zap.Error(err))
	}
	return err
}

// rollup re-derives payment, expense and profit fields of event and saves it.
func (s *FinanceService) rollup(ctx context.Context, st stores, event *models.Event) error {
	payments, err := st.payments.FindByEventID(ctx, event.ID)
	if err != nil {
		return err
	}
	expenses, err := st.expenses.FindByEventID(ctx, event.ID)
	if err != nil {
		return err
	}
	ApplyPaymentRollup(event, payments)
	ApplyExpenses(event, expenses, s.laborInExpenses)
	ApplyProfit(event)
	if err := st.events.Save(ctx, event); err != nil {
		return err
	}
	*st.rolledUp = append(*st.rolledUp, event.PaymentStatus)
	return nil
}

// RecomputePaymentRollup reloads the event's payments and updates its
// paid amount, outstanding balance and payment status.
func RecomputePaymentRollup(ctx context.Context, events EventStore, payments PaymentStore, eventID uuid.UUID) (*models.Event, error) {
	event, err := events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	list, err := payments.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ApplyPaymentRollup(event, list)
	if err := events.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// RecomputeLaborCost replaces the event's assignments with costed rows.
// Expenses and revenue are untouched.
func RecomputeLaborCost(ctx context.Context, events EventStore, employees EmployeeStore, eventID uuid.UUID, inputs []AssignmentInput, log *zap.Logger) (*models.Event, error) {
	event, err := events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := ApplyLaborCost(ctx, event, inputs, employees, log); err != nil {
		return nil, err
	}
	if err := events.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// RecomputeProfit updates profit and margin from stored revenue and expenses.
func RecomputeProfit(ctx context.Context, events EventStore, eventID uuid.UUID) (*models.Event, error) {
	event, err := events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ApplyProfit(event)
	if err := events.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *FinanceService) RecomputePaymentRollup(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var event *models.Event
	err := s.inTx(ctx, func(st stores) error {
		var err error
		event, err = RecomputePaymentRollup(ctx, st.events, st.payments, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRollup(event.PaymentStatus)
	return event, nil
}

func (s *FinanceService) RecomputeLaborCost(ctx context.Context, eventID uuid.UUID, inputs []AssignmentInput) (*models.Event, error) {
	var event *models.Event
	err := s.inTx(ctx, func(st stores) error {
		var err error
		event, err = RecomputeLaborCost(ctx, st.events, st.employees, eventID, inputs, s.log)
		return err
	})
	return event, err
}

func (s *FinanceService) RecomputeProfit(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var event *models.Event
	err := s.inTx(ctx, func(st stores) error {
		var err error
		event, err = RecomputeProfit(ctx, st.events, eventID)
		return err
	})
	return event, err
}

// RecomputeAll re-derives every money field of the event from stored data.
// Assignment costs are kept as written and labor cost is re-summed from them.
func (s *FinanceService) RecomputeAll(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var event *models.Event
	err := s.inTx(ctx, func(st stores) error {
		var err error
		if event, err = st.events.GetByID(ctx, eventID); err != nil {
			return err
		}
		labor := decimal.Zero
		for _, a := range event.Assignments {
			labor = labor.Add(a.Cost)
		}
		event.LaborCost = labor
		return s.rollup(ctx, st, event)
	})
	return event, err
}
