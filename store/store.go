// Package store holds the gorm-backed repositories used by the services.
package store

import (
	"errors"

	"eventhall-backend/apperr"

	"gorm.io/gorm"
)

// notFound converts gorm's missing-row error into a domain NotFound.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return err
}
