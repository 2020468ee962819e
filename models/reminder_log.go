// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderLogSent    = "sent"
	ReminderLogFailed  = "failed"
	ReminderLogSkipped = "skipped"
)

type ReminderLog struct {
	Base
	ReminderID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	Message      string     `gorm:"type:text"`
	Status       string     `gorm:"type:varchar(20)"` // sent, failed, skipped
	ErrorMessage string     `gorm:"type:text"`
	Channel      string     `gorm:"type:varchar(20)"` // whatsapp, sms, log
	SentAt       time.Time
}
