// controllers/tasks.go
package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventhall-backend/models"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskController struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTaskController(db *gorm.DB, log *zap.Logger) *TaskController {
	return &TaskController{db: db, log: log}
}

type CreateTaskInput struct {
	Title               string                 `json:"title" binding:"required,max=200"`
	Description         string                 `json:"description"`
	Status              string                 `json:"status" binding:"omitempty,oneof=todo in_progress completed cancelled"`
	Priority            string                 `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Category            string                 `json:"category"`
	AssignedTo          *uuid.UUID             `json:"assigned_to"`
	EventID             *uuid.UUID             `json:"event_id"`
	DueDate             *time.Time             `json:"due_date"`
	Tags                []string               `json:"tags"`
	Checklist           []models.ChecklistItem `json:"checklist"`
	ReminderEnabled     bool                   `json:"reminder_enabled"`
	ReminderBeforeHours int                    `json:"reminder_before_hours" binding:"gte=0,lte=720"`
}

type UpdateTaskInput struct {
	Title              *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description        *string    `json:"description"`
	Status             *string    `json:"status" binding:"omitempty,oneof=todo in_progress completed cancelled"`
	Priority           *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Category           *string    `json:"category"`
	AssignedTo         *uuid.UUID `json:"assigned_to"`
	EventID            *uuid.UUID `json:"event_id"`
	DueDate            *time.Time `json:"due_date"`
	ProgressPercentage *int       `json:"progress_percentage" binding:"omitempty,gte=0,lte=100"`
	Tags               *[]string  `json:"tags"`
}

type TaskCommentInput struct {
	Comment string `json:"comment" binding:"required"`
}

// priorityOrder sorts urgent first, low last.
const priorityOrder = "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END"

func (h *TaskController) userName(id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	var user models.User
	if err := h.db.Select("id", "full_name").First(&user, "id = ?", *id).Error; err != nil {
		return "", err
	}
	return user.FullName, nil
}

func (h *TaskController) eventName(id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	var event models.Event
	if err := h.db.Select("id", "event_name").First(&event, "id = ?", *id).Error; err != nil {
		return "", err
	}
	return event.EventName, nil
}

func (h *TaskController) listQuery(c *gin.Context, q *gorm.DB) (*gorm.DB, bool) {
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		q = q.Where("priority = ?", priority)
	}
	assignedTo, ok := queryUUID(c, "assigned_to")
	if !ok {
		return nil, false
	}
	if assignedTo != nil {
		q = q.Where("assigned_to = ?", *assignedTo)
	}
	eventID, ok := queryUUID(c, "event_id")
	if !ok {
		return nil, false
	}
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	overdue, ok := queryBool(c, "overdue")
	if !ok {
		return nil, false
	}
	if overdue != nil && *overdue {
		q = q.Where("due_date < ? AND status NOT IN ?", nowUTC(),
			[]string{models.TaskStatusCompleted, models.TaskStatusCancelled})
	}
	return q, true
}

func (h *TaskController) respondTasks(c *gin.Context, q *gorm.DB) {
	p := utils.ParsePagination(c)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}
	var tasks []models.Task
	err := q.Order(priorityOrder).Order("due_date ASC").Order("created_at DESC").
		Offset(p.Offset()).Limit(p.PageSize).Find(&tasks).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}
	now := nowUTC()
	items := mapSlice(tasks, func(t *models.Task) TaskResponse { return newTaskResponse(t, now) })
	c.JSON(http.StatusOK, utils.NewPage(items, total, p))
}

// scheduleReminder creates the reminder that fires ReminderBeforeHours
// ahead of the task's due date.
func scheduleReminder(tx *gorm.DB, task *models.Task, userID uuid.UUID) error {
	if !task.ReminderEnabled || task.DueDate == nil {
		return nil
	}
	assignee := task.AssignedTo
	if assignee == nil {
		assignee = &userID
	}
	reminder := models.Reminder{
		Title:          "Task due: " + task.Title,
		Description:    task.Description,
		DueAt:          task.DueDate.Add(-time.Duration(task.ReminderBeforeHours) * time.Hour),
		AssignedTo:     assignee,
		RelatedTaskID:  &task.ID,
		RelatedEventID: task.EventID,
		CreatedBy:      &userID,
	}
	return tx.Create(&reminder).Error
}

func (h *TaskController) CreateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	assignedToName, err := h.userName(input.AssignedTo)
	if err != nil {
		respondLookupError(c, err, "Assignee")
		return
	}
	eventName, err := h.eventName(input.EventID)
	if err != nil {
		respondLookupError(c, err, "Event")
		return
	}
	assignedByName, _ := h.userName(&userID)

	task := models.Task{
		Title:               strings.TrimSpace(input.Title),
		Description:         input.Description,
		Status:              input.Status,
		Priority:            input.Priority,
		Category:            input.Category,
		AssignedTo:          input.AssignedTo,
		AssignedToName:      assignedToName,
		EventID:             input.EventID,
		EventName:           eventName,
		DueDate:             input.DueDate,
		Tags:                datatypes.JSONSlice[string](input.Tags),
		Checklist:           datatypes.JSONSlice[models.ChecklistItem](input.Checklist),
		ReminderEnabled:     input.ReminderEnabled,
		ReminderBeforeHours: input.ReminderBeforeHours,
		CreatedBy:           &userID,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.AssignedTo != nil {
		task.AssignedBy = &userID
		task.AssignedByName = assignedByName
	}
	if task.ReminderEnabled && task.ReminderBeforeHours == 0 {
		task.ReminderBeforeHours = 24
	}
	if len(task.Checklist) > 0 {
		task.ProgressPercentage = task.ChecklistProgress()
	}
	if task.Status == models.TaskStatusCompleted {
		now := nowUTC()
		task.CompletedDate = &now
		task.ProgressPercentage = 100
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return scheduleReminder(tx, &task, userID)
	})
	if err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(&task, nowUTC()))
}

func (h *TaskController) GetTasks(c *gin.Context) {
	q, ok := h.listQuery(c, h.db.Model(&models.Task{}))
	if !ok {
		return
	}
	h.respondTasks(c, q)
}

// GetMyTasks lists tasks assigned to the caller
func (h *TaskController) GetMyTasks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	q, ok := h.listQuery(c, h.db.Model(&models.Task{}).Where("assigned_to = ?", userID))
	if !ok {
		return
	}
	h.respondTasks(c, q)
}

type TaskStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	Overdue    int64            `json:"overdue"`
	DueToday   int64            `json:"due_today"`
	Mine       int64            `json:"mine"`
}

func (h *TaskController) GetTaskStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	base := func() *gorm.DB { return h.db.Model(&models.Task{}) }
	open := []string{models.TaskStatusCompleted, models.TaskStatusCancelled}
	now := nowUTC()

	stats := TaskStats{ByStatus: map[string]int64{}, ByPriority: map[string]int64{}}
	base().Count(&stats.Total)

	var rows []groupCount
	base().Select("status AS group_key, COUNT(*) AS total").Group("status").Scan(&rows)
	for _, r := range rows {
		stats.ByStatus[r.GroupKey] = r.Total
	}
	rows = nil
	base().Select("priority AS group_key, COUNT(*) AS total").Group("priority").Scan(&rows)
	for _, r := range rows {
		stats.ByPriority[r.GroupKey] = r.Total
	}

	base().Where("due_date < ? AND status NOT IN ?", now, open).Count(&stats.Overdue)
	base().Where("due_date BETWEEN ? AND ? AND status NOT IN ?",
		utils.BeginningOfDay(now), utils.EndOfDay(now), open).Count(&stats.DueToday)
	base().Where("assigned_to = ? AND status NOT IN ?", userID, open).Count(&stats.Mine)

	c.JSON(http.StatusOK, stats)
}

func (h *TaskController) GetTask(c *gin.Context) {
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var task models.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Task")
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(&task, nowUTC()))
}

func (h *TaskController) UpdateTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var input UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var task models.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Task")
		return
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = datatypes.JSONSlice[string](*input.Tags)
	}
	if input.ProgressPercentage != nil {
		task.ProgressPercentage = *input.ProgressPercentage
	}
	if input.AssignedTo != nil && (task.AssignedTo == nil || *task.AssignedTo != *input.AssignedTo) {
		name, err := h.userName(input.AssignedTo)
		if err != nil {
			respondLookupError(c, err, "Assignee")
			return
		}
		byName, _ := h.userName(&userID)
		task.AssignedTo = input.AssignedTo
		task.AssignedToName = name
		task.AssignedBy = &userID
		task.AssignedByName = byName
	}
	if input.EventID != nil {
		name, err := h.eventName(input.EventID)
		if err != nil {
			respondLookupError(c, err, "Event")
			return
		}
		task.EventID = input.EventID
		task.EventName = name
	}
	if input.Status != nil && *input.Status != task.Status {
		task.Status = *input.Status
		if task.Status == models.TaskStatusCompleted {
			now := nowUTC()
			task.CompletedDate = &now
			task.CompletedBy = &userID
			task.ProgressPercentage = 100
		} else {
			task.CompletedDate = nil
			task.CompletedBy = nil
		}
	}

	if err := h.db.Save(&task).Error; err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(&task, nowUTC()))
}

// AddComment appends a comment signed with the caller's name
func (h *TaskController) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var input TaskCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var task models.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Task")
		return
	}
	name, _ := h.userName(&userID)
	task.Comments = append(task.Comments, models.TaskComment{
		UserID:    userID,
		UserName:  name,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: nowUTC(),
	})
	if err := h.db.Model(&task).Update("comments", task.Comments).Error; err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(&task, nowUTC()))
}

// UpdateChecklist replaces the checklist and derives progress from it
func (h *TaskController) UpdateChecklist(c *gin.Context) {
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var items []models.ChecklistItem
	if err := c.ShouldBindJSON(&items); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	for i, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, fmt.Sprintf("Checklist item %d has no text", i))
			return
		}
	}
	var task models.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Task")
		return
	}
	task.Checklist = datatypes.JSONSlice[models.ChecklistItem](items)
	task.ProgressPercentage = task.ChecklistProgress()

	err := h.db.Model(&task).Updates(map[string]interface{}{
		"checklist":           task.Checklist,
		"progress_percentage": task.ProgressPercentage,
	}).Error
	if err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update checklist")
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(&task, nowUTC()))
}

type CompleteTaskInput struct {
	CompletionNotes string `json:"completion_notes"`
}

// CompleteTask closes an open task and marks the caller as the one who
// finished it. The body is optional.
func (h *TaskController) CompleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var input CompleteTaskInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithBindError(c, err)
		return
	}
	var task models.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Task")
		return
	}
	switch task.Status {
	case models.TaskStatusCompleted:
		utils.RespondWithError(c, http.StatusConflict, "Task is already completed")
		return
	case models.TaskStatusCancelled:
		utils.RespondWithError(c, http.StatusBadRequest, "Cancelled tasks cannot be completed")
		return
	}

	now := nowUTC()
	task.Status = models.TaskStatusCompleted
	task.CompletedDate = &now
	task.CompletedBy = &userID
	task.CompletionNotes = strings.TrimSpace(input.CompletionNotes)
	task.ProgressPercentage = 100
	if err := h.db.Save(&task).Error; err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to complete task")
		return
	}
	h.log.Info("task completed", zap.String("task_id", task.ID.String()), zap.String("completed_by", userID.String()))
	c.JSON(http.StatusOK, newTaskResponse(&task, now))
}

// DeleteTask is allowed to the task's creator and to admins
func (h *TaskController) DeleteTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	var task models.Task
	if err := h.db.First(&task, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Task")
		return
	}
	isCreator := task.CreatedBy != nil && *task.CreatedBy == userID
	if !isCreator && !utils.IsAdmin(c) {
		utils.RespondWithError(c, http.StatusForbidden, "Only the task creator or an admin can delete this task")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("related_task_id = ? AND is_done = ?", task.ID, false).
			Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.log.Error("delete task failed", zap.String("task_id", task.ID.String()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
