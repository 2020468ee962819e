package controllers

import (
	"net/http"
	"strings"
	"time"

	"eventhall-backend/models"
	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EmployeeController struct {
	db *gorm.DB
}

func NewEmployeeController(db *gorm.DB) *EmployeeController {
	return &EmployeeController{db: db}
}

type CreateEmployeeInput struct {
	EmployeeCode             string                     `json:"employee_code" binding:"required,max=30"`
	FullName                 string                     `json:"full_name" binding:"required"`
	Email                    string                     `json:"email" binding:"omitempty,email"`
	PhoneNumber              string                     `json:"phone_number" binding:"required,phone"`
	Address                  string                     `json:"address"`
	Position                 string                     `json:"position" binding:"required"`
	Department               string                     `json:"department"`
	HireDate                 *time.Time                 `json:"hire_date"`
	CompensationType         string                     `json:"compensation_type" binding:"required,oneof=hourly role"`
	HourlyRate               decimal.Decimal            `json:"hourly_rate" binding:"gte=0"`
	RoleRates                map[string]decimal.Decimal `json:"role_rates"`
	MonthlySalary            decimal.NullDecimal        `json:"monthly_salary"`
	PaymentMethod            string                     `json:"payment_method"`
	BankAccount              string                     `json:"bank_account"`
	EmergencyContactName     string                     `json:"emergency_contact_name"`
	EmergencyContactPhone    string                     `json:"emergency_contact_phone" binding:"omitempty,phone"`
	EmergencyContactRelation string                     `json:"emergency_contact_relation"`
	IDNumber                 string                     `json:"id_number"`
	Notes                    string                     `json:"notes"`
}

type UpdateEmployeeInput struct {
	EmployeeCode             *string                     `json:"employee_code" binding:"omitempty,max=30"`
	FullName                 *string                     `json:"full_name" binding:"omitempty,min=1"`
	Email                    *string                     `json:"email" binding:"omitempty,email"`
	PhoneNumber              *string                     `json:"phone_number" binding:"omitempty,phone"`
	Address                  *string                     `json:"address"`
	Position                 *string                     `json:"position" binding:"omitempty,min=1"`
	Department               *string                     `json:"department"`
	HireDate                 *time.Time                  `json:"hire_date"`
	CompensationType         *string                     `json:"compensation_type" binding:"omitempty,oneof=hourly role"`
	HourlyRate               *decimal.Decimal            `json:"hourly_rate" binding:"omitempty,gte=0"`
	RoleRates                *map[string]decimal.Decimal `json:"role_rates"`
	MonthlySalary            *decimal.NullDecimal        `json:"monthly_salary"`
	PaymentMethod            *string                     `json:"payment_method"`
	BankAccount              *string                     `json:"bank_account"`
	EmergencyContactName     *string                     `json:"emergency_contact_name"`
	EmergencyContactPhone    *string                     `json:"emergency_contact_phone" binding:"omitempty,phone"`
	EmergencyContactRelation *string                     `json:"emergency_contact_relation"`
	IDNumber                 *string                     `json:"id_number"`
	IsActive                 *bool                       `json:"is_active"`
	Rating                   *float64                    `json:"rating" binding:"omitempty,gte=0,lte=5"`
	Notes                    *string                     `json:"notes"`
}

// validRoleRates rejects negative per-role rates.
func validRoleRates(rates map[string]decimal.Decimal) bool {
	for _, rate := range rates {
		if rate.IsNegative() {
			return false
		}
	}
	return true
}

func (h *EmployeeController) codeTaken(code string, exclude *models.Employee) bool {
	q := h.db.Model(&models.Employee{}).Where("employee_code = ?", code)
	if exclude != nil {
		q = q.Where("id <> ?", exclude.ID)
	}
	var count int64
	q.Count(&count)
	return count > 0
}

func (h *EmployeeController) CreateEmployee(c *gin.Context) {
	var input CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if !validRoleRates(input.RoleRates) {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "Role rates cannot be negative")
		return
	}
	code := strings.TrimSpace(input.EmployeeCode)
	if h.codeTaken(code, nil) {
		utils.RespondWithError(c, http.StatusConflict, "Employee code already exists")
		return
	}

	hireDate := nowUTC()
	if input.HireDate != nil {
		hireDate = input.HireDate.UTC()
	}
	employee := models.Employee{
		EmployeeCode:             code,
		FullName:                 strings.TrimSpace(input.FullName),
		Email:                    input.Email,
		PhoneNumber:              utils.NormalizePhone(input.PhoneNumber),
		Address:                  input.Address,
		Position:                 input.Position,
		Department:               input.Department,
		HireDate:                 hireDate,
		CompensationType:         input.CompensationType,
		HourlyRate:               input.HourlyRate,
		RoleRates:                models.MoneyMap(input.RoleRates),
		MonthlySalary:            input.MonthlySalary,
		PaymentMethod:            input.PaymentMethod,
		BankAccount:              input.BankAccount,
		EmergencyContactName:     input.EmergencyContactName,
		EmergencyContactPhone:    input.EmergencyContactPhone,
		EmergencyContactRelation: input.EmergencyContactRelation,
		IDNumber:                 input.IDNumber,
		IsActive:                 true,
		Notes:                    input.Notes,
	}
	if err := h.db.Create(&employee).Error; err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create employee")
		return
	}
	c.JSON(http.StatusCreated, newEmployeeResponse(&employee))
}

// GetEmployees lists employees sorted by name
func (h *EmployeeController) GetEmployees(c *gin.Context) {
	p := utils.ParsePagination(c)
	q := h.db.Model(&models.Employee{})

	active, ok := queryBool(c, "is_active")
	if !ok {
		return
	}
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if department := c.Query("department"); department != "" {
		q = q.Where("department = ?", department)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(employee_code) LIKE ? OR phone_number LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}
	var employees []models.Employee
	if err := q.Order("full_name ASC").Offset(p.Offset()).Limit(p.PageSize).Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}
	c.JSON(http.StatusOK, utils.NewPage(mapSlice(employees, newEmployeeResponse), total, p))
}

func (h *EmployeeController) GetEmployee(c *gin.Context) {
	id, ok := parseID(c, "id", "employee")
	if !ok {
		return
	}
	var employee models.Employee
	if err := h.db.First(&employee, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Employee")
		return
	}
	c.JSON(http.StatusOK, newEmployeeResponse(&employee))
}

// UpdateEmployee changes the record only. Events already staffed keep the
// labor cost they were assigned with until they are recomputed.
func (h *EmployeeController) UpdateEmployee(c *gin.Context) {
	id, ok := parseID(c, "id", "employee")
	if !ok {
		return
	}
	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	var employee models.Employee
	if err := h.db.First(&employee, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Employee")
		return
	}

	if input.EmployeeCode != nil {
		code := strings.TrimSpace(*input.EmployeeCode)
		if code != employee.EmployeeCode && h.codeTaken(code, &employee) {
			utils.RespondWithError(c, http.StatusConflict, "Employee code already exists")
			return
		}
		employee.EmployeeCode = code
	}
	if input.RoleRates != nil {
		if !validRoleRates(*input.RoleRates) {
			utils.RespondWithError(c, http.StatusUnprocessableEntity, "Role rates cannot be negative")
			return
		}
		employee.RoleRates = models.MoneyMap(*input.RoleRates)
	}
	if input.FullName != nil {
		employee.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil {
		employee.Email = *input.Email
	}
	if input.PhoneNumber != nil {
		employee.PhoneNumber = utils.NormalizePhone(*input.PhoneNumber)
	}
	if input.Address != nil {
		employee.Address = *input.Address
	}
	if input.Position != nil {
		employee.Position = *input.Position
	}
	if input.Department != nil {
		employee.Department = *input.Department
	}
	if input.HireDate != nil {
		employee.HireDate = input.HireDate.UTC()
	}
	if input.CompensationType != nil {
		employee.CompensationType = *input.CompensationType
	}
	if input.HourlyRate != nil {
		employee.HourlyRate = *input.HourlyRate
	}
	if input.MonthlySalary != nil {
		employee.MonthlySalary = *input.MonthlySalary
	}
	if input.PaymentMethod != nil {
		employee.PaymentMethod = *input.PaymentMethod
	}
	if input.BankAccount != nil {
		employee.BankAccount = *input.BankAccount
	}
	if input.EmergencyContactName != nil {
		employee.EmergencyContactName = *input.EmergencyContactName
	}
	if input.EmergencyContactPhone != nil {
		employee.EmergencyContactPhone = *input.EmergencyContactPhone
	}
	if input.EmergencyContactRelation != nil {
		employee.EmergencyContactRelation = *input.EmergencyContactRelation
	}
	if input.IDNumber != nil {
		employee.IDNumber = *input.IDNumber
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}
	if input.Rating != nil {
		employee.Rating = input.Rating
	}
	if input.Notes != nil {
		employee.Notes = *input.Notes
	}

	if err := h.db.Save(&employee).Error; err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, newEmployeeResponse(&employee))
}

// DeleteEmployee soft deletes the employee (admin only)
func (h *EmployeeController) DeleteEmployee(c *gin.Context) {
	id, ok := parseID(c, "id", "employee")
	if !ok {
		return
	}
	result := h.db.Delete(&models.Employee{}, "id = ?", id)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete employee")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}

type WorkShiftInput struct {
	EventID    *uuid.UUID       `json:"event_id"`
	StartTime  time.Time        `json:"start_time" binding:"required"`
	EndTime    time.Time        `json:"end_time" binding:"required"`
	HourlyRate *decimal.Decimal `json:"hourly_rate" binding:"omitempty,gte=0"`
	Notes      string           `json:"notes"`
}

const maxShiftLength = 24 * time.Hour

// AddWorkShift logs a shift and adds its hours and pay to the employee's
// running totals. The rate defaults to the employee's hourly rate.
func (h *EmployeeController) AddWorkShift(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "employee")
	if !ok {
		return
	}
	var input WorkShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	start, end := input.StartTime.UTC(), input.EndTime.UTC()
	if !end.After(start) {
		utils.RespondWithError(c, http.StatusBadRequest, "end_time must be after start_time")
		return
	}
	if end.Sub(start) > maxShiftLength {
		utils.RespondWithError(c, http.StatusBadRequest, "A shift cannot be longer than 24 hours")
		return
	}

	var employee models.Employee
	if err := h.db.First(&employee, "id = ?", id).Error; err != nil {
		respondLookupError(c, err, "Employee")
		return
	}
	if input.EventID != nil {
		var event models.Event
		if err := h.db.Select("id").First(&event, "id = ?", *input.EventID).Error; err != nil {
			respondLookupError(c, err, "Event")
			return
		}
	}

	rate := employee.HourlyRate
	if input.HourlyRate != nil {
		rate = *input.HourlyRate
	}
	hours, pay := models.ShiftPay(start, end, rate)
	shift := models.WorkShift{
		EmployeeID:    employee.ID,
		EventID:       input.EventID,
		StartTime:     start,
		EndTime:       end,
		HoursWorked:   hours,
		HourlyRate:    rate,
		TotalPayment:  pay,
		PaymentStatus: models.ShiftPaymentPending,
		Notes:         input.Notes,
		CreatedBy:     &userID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shift).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Employee{}).Where("id = ?", employee.ID).Updates(map[string]interface{}{
			"total_hours_worked": gorm.Expr("total_hours_worked + ?", hours),
			"total_earnings":     gorm.Expr("total_earnings + ?", pay),
			"pending_payments":   gorm.Expr("pending_payments + ?", pay),
		}).Error; err != nil {
			return err
		}
		return tx.First(&employee, "id = ?", employee.ID).Error
	})
	if err != nil {
		_ = c.Error(err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to log work shift")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"shift":    newWorkShiftResponse(&shift),
		"employee": newEmployeeResponse(&employee),
	})
}

type TopPerformer struct {
	ID                string   `json:"id"`
	FullName          string   `json:"full_name"`
	Position          string   `json:"position"`
	Rating            *float64 `json:"rating"`
	TotalEventsWorked int      `json:"total_events_worked"`
}

type EmployeeStatsOverview struct {
	TotalEmployees     int64            `json:"total_employees"`
	ActiveEmployees    int64            `json:"active_employees"`
	HoursThisMonth     float64          `json:"total_hours_this_month"`
	TotalWagesPending  decimal.Decimal  `json:"total_wages_pending"`
	ByPosition         map[string]int64 `json:"by_position"`
	ByCompensationType map[string]int64 `json:"by_compensation_type"`
	TopPerformers      []TopPerformer   `json:"top_performers"`
}

// GetEmployeeStats summarises the workforce and this month's logged hours
func (h *EmployeeController) GetEmployeeStats(c *gin.Context) {
	base := func() *gorm.DB { return h.db.Model(&models.Employee{}) }
	stats := EmployeeStatsOverview{TopPerformers: []TopPerformer{}}

	if err := base().Count(&stats.TotalEmployees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute employee stats")
		return
	}
	base().Where("is_active = ?", true).Count(&stats.ActiveEmployees)

	var err error
	if stats.TotalWagesPending, err = sum(base(), "pending_payments"); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute employee stats")
		return
	}

	var hours struct{ Total float64 }
	h.db.Model(&models.WorkShift{}).
		Select("COALESCE(SUM(hours_worked), 0) AS total").
		Where("start_time >= ?", utils.BeginningOfMonth(nowUTC())).
		Scan(&hours)
	stats.HoursThisMonth = hours.Total

	stats.ByPosition = map[string]int64{}
	var rows []groupCount
	base().Where("is_active = ?", true).
		Select("position AS group_key, COUNT(*) AS total").Group("position").Scan(&rows)
	for _, r := range rows {
		stats.ByPosition[r.GroupKey] = r.Total
	}

	stats.ByCompensationType = map[string]int64{}
	rows = nil
	base().Where("is_active = ?", true).
		Select("compensation_type AS group_key, COUNT(*) AS total").Group("compensation_type").Scan(&rows)
	for _, r := range rows {
		stats.ByCompensationType[r.GroupKey] = r.Total
	}

	var top []models.Employee
	base().Where("is_active = ? AND rating IS NOT NULL", true).
		Order("rating DESC").Order("total_events_worked DESC").Limit(5).Find(&top)
	for _, e := range top {
		stats.TopPerformers = append(stats.TopPerformers, TopPerformer{
			ID:                e.ID.String(),
			FullName:          e.FullName,
			Position:          e.Position,
			Rating:            e.Rating,
			TotalEventsWorked: e.TotalEventsWorked,
		})
	}

	c.JSON(http.StatusOK, stats)
}
