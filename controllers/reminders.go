// controllers/reminders.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"eventhall-backend/models"
	"eventhall-backend/services"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderController struct {
	db *gorm.DB
}

func NewReminderController(db *gorm.DB) *ReminderController {
	return &ReminderController{db: db}
}

type CreateReminderInput struct {
	Title          string     `json:"title" binding:"required,max=200"`
	Description    string     `json:"description"`
	DueAt          time.Time  `json:"due_at" binding:"required"`
	Recurring      bool       `json:"recurring"`
	Frequency      string     `json:"frequency" binding:"omitempty,oneof=daily weekly monthly yearly"`
	RecurrenceRule string     `json:"recurrence_rule"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
	RelatedEventID *uuid.UUID `json:"related_event_id"`
	RelatedTaskID  *uuid.UUID `json:"related_task_id"`
}

type UpdateReminderInput struct {
	Title          *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description    *string    `json:"description"`
	DueAt          *time.Time `json:"due_at"`
	Recurring      *bool      `json:"recurring"`
	Frequency      *string    `json:"frequency" binding:"omitempty,oneof=daily weekly monthly yearly"`
	RecurrenceRule *string    `json:"recurrence_rule"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
	RelatedEventID *uuid.UUID `json:"related_event_id"`
}

func (h *ReminderController) CreateReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input CreateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	rule := strings.TrimSpace(input.RecurrenceRule)
	if err := services.ValidateRecurrence(input.Recurring, input.Frequency, rule); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	assignee := input.AssignedTo
	if assignee == nil {
		assignee = &userID
	}
	reminder := models.Reminder{
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		DueAt:          input.DueAt.UTC(),
		Recurring:      input.Recurring || rule != "",
		Frequency:      input.Frequency,
		RecurrenceRule: rule,
		AssignedTo:     assignee,
		RelatedEventID: input.RelatedEventID,
		RelatedTaskID:  input.RelatedTaskID,
		CreatedBy:      &userID,
	}
	if err := h.db.Create(&reminder).Error; err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create reminder")
		return
	}
	c.JSON(http.StatusCreated, newReminderResponse(&reminder))
}

// GetReminders lists reminders by due time
func (h *ReminderController) GetReminders(c *gin.Context) {
	p := utils.ParsePagination(c)
	q := h.db.Model(&models.Reminder{})

	assignedTo, ok := queryUUID(c, "assigned_to")
	if !ok {
		return
	}
	if assignedTo != nil {
		q = q.Where("assigned_to = ?", *assignedTo)
	}
	done, ok := queryBool(c, "is_done")
	if !ok {
		return
	}
	if done != nil {
		q = q.Where("is_done = ?", *done)
	}
	if q, ok = dateRange(c, q, "due_at"); !ok {
		return
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminders")
		return
	}
	var reminders []models.Reminder
	if err := q.Order("due_at ASC").Offset(p.Offset()).Limit(p.PageSize).Find(&reminders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminders")
		return
	}
	c.JSON(http.StatusOK, utils.NewPage(mapSlice(reminders, newReminderResponse), total, p))
}

func (h *ReminderController) GetReminder(c *gin.Context) {
	id, ok := parseID(c, "id", "reminder")
	if !ok {
		return
	}
	var reminder models.Reminder
	if err := h.db.First(&reminder, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Reminder")
		return
	}
	c.JSON(http.StatusOK, newReminderResponse(&reminder))
}

func (h *ReminderController) UpdateReminder(c *gin.Context) {
	id, ok := parseID(c, "id", "reminder")
	if !ok {
		return
	}
	var input UpdateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var reminder models.Reminder
	if err := h.db.First(&reminder, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Reminder")
		return
	}

	if input.Title != nil {
		reminder.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		reminder.Description = *input.Description
	}
	if input.DueAt != nil {
		reminder.DueAt = input.DueAt.UTC()
		// a moved reminder fires again
		reminder.NotifiedAt = nil
	}
	if input.Recurring != nil {
		reminder.Recurring = *input.Recurring
	}
	if input.Frequency != nil {
		reminder.Frequency = *input.Frequency
	}
	if input.RecurrenceRule != nil {
		reminder.RecurrenceRule = strings.TrimSpace(*input.RecurrenceRule)
	}
	if input.AssignedTo != nil {
		reminder.AssignedTo = input.AssignedTo
	}
	if input.RelatedEventID != nil {
		reminder.RelatedEventID = input.RelatedEventID
	}
	if err := services.ValidateRecurrence(reminder.Recurring, reminder.Frequency, reminder.RecurrenceRule); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	if err := h.db.Save(&reminder).Error; err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update reminder")
		return
	}
	c.JSON(http.StatusOK, newReminderResponse(&reminder))
}

// CompleteReminder marks the reminder done
func (h *ReminderController) CompleteReminder(c *gin.Context) {
	id, ok := parseID(c, "id", "reminder")
	if !ok {
		return
	}
	var reminder models.Reminder
	if err := h.db.First(&reminder, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Reminder")
		return
	}
	if reminder.IsDone {
		utils.RespondWithError(c, http.StatusConflict, "Reminder already completed")
		return
	}
	now := nowUTC()
	reminder.IsDone = true
	reminder.CompletedAt = &now
	err := h.db.Model(&reminder).Updates(map[string]interface{}{
		"is_done":      true,
		"completed_at": now,
	}).Error
	if err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to complete reminder")
		return
	}
	c.JSON(http.StatusOK, newReminderResponse(&reminder))
}

func (h *ReminderController) DeleteReminder(c *gin.Context) {
	id, ok := parseID(c, "id", "reminder")
	if !ok {
		return
	}
	result := h.db.Delete(&models.Reminder{}, "id = ?", id)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete reminder")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Reminder not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}
