package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"eventhall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// parseID reads a uuid path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, param, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser reads the authenticated user, answering 401 when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	return id, true
}

// dateRange applies ?start_date / ?end_date to column.
func dateRange(c *gin.Context, q *gorm.DB, column string) (*gorm.DB, bool) {
	if v := c.Query("start_date"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid start_date")
			return nil, false
		}
		q = q.Where(column+" >= ?", t)
	}
	if v := c.Query("end_date"); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid end_date")
			return nil, false
		}
		if len(v) == len("2006-01-02") {
			t = utils.EndOfDay(t)
		}
		q = q.Where(column+" <= ?", t)
	}
	return q, true
}

// queryUUID parses an optional uuid query parameter.
func queryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+key)
		return nil, false
	}
	return &id, true
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, key string) (*bool, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+key)
		return nil, false
	}
	return &b, true
}

// sum returns COALESCE(SUM(expr), 0) over q.
func sum(q *gorm.DB, expr string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.Select("COALESCE(SUM(" + expr + "), 0)").Row().Scan(&total)
	return total, err
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// respondLookupError answers 404 for a missing row and 500 otherwise.
func respondLookupError(c *gin.Context, err error, entity string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, entity+" not found")
		return
	}
	_ = c.Error(err)
	utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
}
