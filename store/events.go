package store

import (
	"context"
	"fmt"

	"eventhall-backend/apperr"
	"eventhall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Event")
	}
	return &event, nil
}

func (s *EventStore) Create(ctx context.Context, event *models.Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}

// Save overwrites the whole row if nobody else saved it since it was read.
func (s *EventStore) Save(ctx context.Context, event *models.Event) error {
	current := event.Version
	event.Version = current + 1
	res := s.db.WithContext(ctx).
		Model(event).
		Where("version = ?", current).
		Select("*").
		Updates(event)
	if res.Error != nil {
		event.Version = current
		return fmt.Errorf("save event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		event.Version = current
		return apperr.ErrConcurrentUpdate
	}
	return nil
}

func (s *EventStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Event")
	}
	return nil
}
