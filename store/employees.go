package store

import (
	"context"

	"eventhall-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeStore struct {
	db *gorm.DB
}

func NewEmployeeStore(db *gorm.DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

func (s *EmployeeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Employee")
	}
	return &employee, nil
}
