package response

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Error codes shared by the service layer and the HTTP envelope
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeSizeLimitExceeded = "SIZE_LIMIT_EXCEEDED"
	ErrCodeUnsupportedType   = "UNSUPPORTED_TYPE"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// AppError is the error type returned by the service layer. Code selects the
// HTTP status, Message is safe to surface to the user verbatim, Details is
// for logs only.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// ErrorBody is the error payload inside an error envelope
type ErrorBody struct {
	Code    string `json:"code" example:"VALIDATION_ERROR"`
	Message string `json:"message" example:"completion notes required"`
}

// SuccessResponse is the success envelope
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}

// SendSuccess writes a success envelope
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

// SendError writes an error envelope
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Success: false,
		Error:   ErrorBody{Code: code, Message: message},
	})
}
