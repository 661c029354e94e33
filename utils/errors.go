// utils/errors.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodePayment      = "PAYMENT_ERROR"
	CodeInternal     = "INTERNAL"
)

func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusPaymentRequired:
		return CodePayment
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}

// RespondWithError renders the {code, message} error envelope.
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    CodeForStatus(status),
			"message": message,
		},
	})
}

// RespondWithDBError maps a gorm lookup error to the envelope.
func RespondWithDBError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondWithError(c, http.StatusNotFound, notFoundMessage)
		return
	}
	RespondWithError(c, http.StatusInternalServerError, "Database error")
}
