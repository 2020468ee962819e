package controllers

import (
	"net/http"

	"eventhall-backend/models"
	"eventhall-backend/services"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExpenseController struct {
	db       *gorm.DB
	expenses *services.ExpenseService
}

func NewExpenseController(db *gorm.DB, expenses *services.ExpenseService) *ExpenseController {
	return &ExpenseController{db: db, expenses: expenses}
}

func (h *ExpenseController) CreateExpense(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	expense, err := h.expenses.Create(c.Request.Context(), input, userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newExpenseResponse(expense))
}

func (h *ExpenseController) GetExpenses(c *gin.Context) {
	p := utils.ParsePagination(c)
	q := h.db.Model(&models.Expense{})

	eventID, ok := queryUUID(c, "event_id")
	if !ok {
		return
	}
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if q, ok = dateRange(c, q, "expense_date"); !ok {
		return
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}
	var expenses []models.Expense
	if err := q.Order("expense_date DESC").Offset(p.Offset()).Limit(p.PageSize).Find(&expenses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}
	c.JSON(http.StatusOK, utils.NewPage(mapSlice(expenses, newExpenseResponse), total, p))
}

func (h *ExpenseController) GetExpense(c *gin.Context) {
	id, ok := parseID(c, "id", "expense")
	if !ok {
		return
	}
	var expense models.Expense
	if err := h.db.First(&expense, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Expense")
		return
	}
	c.JSON(http.StatusOK, newExpenseResponse(&expense))
}

func (h *ExpenseController) UpdateExpense(c *gin.Context) {
	id, ok := parseID(c, "id", "expense")
	if !ok {
		return
	}
	var input services.UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	expense, err := h.expenses.Update(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newExpenseResponse(expense))
}

func (h *ExpenseController) DeleteExpense(c *gin.Context) {
	id, ok := parseID(c, "id", "expense")
	if !ok {
		return
	}
	if err := h.expenses.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
