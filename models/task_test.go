package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	assert.False(t, (&Task{Status: TaskStatusTodo}).IsOverdue(now))
	assert.True(t, (&Task{Status: TaskStatusTodo, DueDate: &yesterday}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusInProgress, DueDate: &tomorrow}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusCompleted, DueDate: &yesterday}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusCancelled, DueDate: &yesterday}).IsOverdue(now))
}

func TestTaskChecklistProgress(t *testing.T) {
	task := &Task{}
	assert.Equal(t, 0, task.ChecklistProgress())

	task.Checklist = []ChecklistItem{
		{Text: "Book DJ", Done: true},
		{Text: "Order cake", Done: false},
		{Text: "Print seating chart", Done: true},
	}
	assert.Equal(t, 66, task.ChecklistProgress())
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityRank(TaskPriorityUrgent), PriorityRank(TaskPriorityHigh))
	assert.Less(t, PriorityRank(TaskPriorityHigh), PriorityRank(TaskPriorityMedium))
	assert.Less(t, PriorityRank(TaskPriorityMedium), PriorityRank(TaskPriorityLow))
	assert.Equal(t, PriorityRank(TaskPriorityLow), PriorityRank("whatever"))
}
