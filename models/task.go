package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type TaskComment struct {
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	Base
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(20);not null;index"`
	Priority    string `gorm:"type:varchar(10);not null;index"`
	Category    string

	AssignedTo     *uuid.UUID `gorm:"type:uuid;index"`
	AssignedToName string
	AssignedBy     *uuid.UUID `gorm:"type:uuid"`
	AssignedByName string
	EventID        *uuid.UUID `gorm:"type:uuid;index"`
	EventName      string

	DueDate            *time.Time `gorm:"index"`
	CompletedDate      *time.Time
	CompletedBy        *uuid.UUID `gorm:"type:uuid"`
	CompletionNotes    string     `gorm:"type:text"`
	ProgressPercentage int

	Tags      datatypes.JSONSlice[string]
	Checklist datatypes.JSONSlice[ChecklistItem]
	Comments  datatypes.JSONSlice[TaskComment]

	ReminderEnabled     bool
	ReminderBeforeHours int

	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// IsOverdue is true once the due date has passed on an open task.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled {
		return false
	}
	return now.After(*t.DueDate)
}

// ChecklistProgress returns the share of checked items, 0-100.
func (t *Task) ChecklistProgress() int {
	if len(t.Checklist) == 0 {
		return 0
	}
	done := 0
	for _, item := range t.Checklist {
		if item.Done {
			done++
		}
	}
	return done * 100 / len(t.Checklist)
}

// PriorityRank orders priorities from most to least pressing.
func PriorityRank(priority string) int {
	switch priority {
	case TaskPriorityUrgent:
		return 0
	case TaskPriorityHigh:
		return 1
	case TaskPriorityMedium:
		return 2
	default:
		return 3
	}
}
