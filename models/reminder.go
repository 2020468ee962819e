package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

type Reminder struct {
	Base
	Title       string    `gorm:"not null"`
	Description string    `gorm:"type:text"`
	DueAt       time.Time `gorm:"not null;index"`

	Recurring      bool
	Frequency      string `gorm:"type:varchar(10)"` // daily, weekly, monthly, yearly
	RecurrenceRule string // cron expression, wins over Frequency

	AssignedTo     *uuid.UUID `gorm:"type:uuid;index"`
	RelatedEventID *uuid.UUID `gorm:"type:uuid;index"`
	RelatedTaskID  *uuid.UUID `gorm:"type:uuid;index"`

	IsDone      bool `gorm:"index"`
	CompletedAt *time.Time
	NotifiedAt  *time.Time

	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}
