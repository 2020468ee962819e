package store

import (
	"context"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStore struct {
	db *gorm.DB
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

// FindByEventID returns every payment of the event, refunded ones included.
func (s *PaymentStore) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("payment_date ASC").
		Find(&payments).Error
	return payments, err
}

func (s *PaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Payment")
	}
	return &payment, nil
}

func (s *PaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	return s.db.WithContext(ctx).Create(payment).Error
}

func (s *PaymentStore) Save(ctx context.Context, payment *models.Payment) error {
	return s.db.WithContext(ctx).Save(payment).Error
}

func (s *PaymentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Payment")
	}
	return nil
}
