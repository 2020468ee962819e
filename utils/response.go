package utils

import (
	"errors"
	"net/http"

	"eventhall-backend/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RespondWithError writes {"error": message} and aborts the chain.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithAppError maps a service error to its HTTP status. Errors
// without a domain code are recorded on the context and answered with 500.
func RespondWithAppError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		_ = c.Error(err)
		RespondWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.AbortWithStatusJSON(StatusForCode(appErr.Code), gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// StatusForCode returns the HTTP status for a domain error code.
func StatusForCode(code string) int {
	switch code {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeInvalidInput, apperr.CodeInvalidState:
		return http.StatusBadRequest
	case apperr.CodeInvalidAmount:
		return http.StatusUnprocessableEntity
	case apperr.CodeConflict, apperr.CodeConcurrentUpdate:
		return http.StatusConflict
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithBindError reports binding failures field by field.
func RespondWithBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid input",
			"fields": fields,
		})
		return
	}
	RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
}
