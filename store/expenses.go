package store

import (
	"context"

	"eventhall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseStore struct {
	db *gorm.DB
}

func NewExpenseStore(db *gorm.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

func (s *ExpenseStore) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&expenses).Error
	return expenses, err
}

func (s *ExpenseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Expense")
	}
	return &expense, nil
}

func (s *ExpenseStore) Create(ctx context.Context, expense *models.Expense) error {
	return s.db.WithContext(ctx).Create(expense).Error
}

func (s *ExpenseStore) Save(ctx context.Context, expense *models.Expense) error {
	return s.db.WithContext(ctx).Save(expense).Error
}

func (s *ExpenseStore) Delete(ctx context.Context, expense *models.Expense) error {
	return s.db.WithContext(ctx).Delete(expense).Error
}
