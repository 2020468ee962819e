package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"eventhall-backend/models"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ctxBG = context.Background()

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

type testServices struct {
	db       *gorm.DB
	finance  *FinanceService
	events   *EventService
	payments *PaymentService
	expenses *ExpenseService
	userID   uuid.UUID
}

func newTestServices(t *testing.T, laborInExpenses bool) *testServices {
	t.Helper()
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	finance := NewFinanceService(db, log, nil, laborInExpenses)
	return &testServices{
		db:       db,
		finance:  finance,
		events:   NewEventService(finance, node, log),
		payments: NewPaymentService(finance, node, log),
		expenses: NewExpenseService(finance),
		userID:   uuid.New(),
	}
}

func weddingInput(base string) CreateEventInput {
	return CreateEventInput{
		EventName:      "Cohen - Mizrahi wedding",
		EventType:      "wedding",
		Location:       "hall_floor_1",
		EventDate:      time.Now().UTC().AddDate(0, 2, 0),
		StartTime:      "19:00",
		EndTime:        "23:30",
		ExpectedGuests: 350,
		Contacts: []ContactInput{
			{Name: "Noa Cohen", Phone: "+972501234567", IsPrimary: true},
		},
		Pricing: PricingInput{BasePrice: money(base)},
	}
}

func (ts *testServices) createEvent(t *testing.T, input CreateEventInput) *models.Event {
	t.Helper()
	event, err := ts.events.Create(ctxBG, input, ts.userID)
	require.NoError(t, err)
	return event
}

func (ts *testServices) reload(t *testing.T, id uuid.UUID) *models.Event {
	t.Helper()
	var event models.Event
	require.NoError(t, ts.db.First(&event, "id = ?", id).Error)
	return &event
}

func (ts *testServices) addEmployee(t *testing.T, e models.Employee) *models.Employee {
	t.Helper()
	if e.EmployeeCode == "" {
		e.EmployeeCode = "EMP-" + uuid.NewString()[:8]
	}
	if e.PhoneNumber == "" {
		e.PhoneNumber = "+972521111111"
	}
	if e.Position == "" {
		e.Position = "staff"
	}
	e.IsActive = true
	require.NoError(t, ts.db.Create(&e).Error)
	return &e
}
