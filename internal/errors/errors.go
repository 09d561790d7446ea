package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeInvalidCSRF = "INVALID_CSRF"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"

	// Business logic errors
	ErrCodeInvalidOperation = "INVALID_OPERATION"

	// Transport errors
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a standardized error outcome. Status is the HTTP
// status used by JSON endpoints; page flows only show Message.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	Status  int         `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(status int, code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
		Status:  status,
	}
}

// WithMessage returns a copy of e carrying another message.
func (e *APIError) WithMessage(message string) *APIError {
	clone := *e
	clone.Message = message
	return &clone
}

// Predefined errors
var (
	ErrUnauthorized       = NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "Connecte-toi pour continuer.")
	ErrInvalidCredentials = NewAPIError(http.StatusUnauthorized, ErrCodeInvalidCredentials, "Identifiants invalides.")
	ErrForbidden          = NewAPIError(http.StatusForbidden, ErrCodeForbidden, "Action non autorisée.")
	ErrAdminRequired      = NewAPIError(http.StatusForbidden, ErrCodeForbidden, "Accès administrateur requis.")
	ErrInvalidCSRF        = NewAPIError(http.StatusForbidden, ErrCodeInvalidCSRF, "Ta session a expiré. Merci de réessayer.")
	ErrInvalidInput       = NewAPIError(http.StatusBadRequest, ErrCodeInvalidInput, "Requête invalide.")
	ErrNotFound           = NewAPIError(http.StatusNotFound, ErrCodeNotFound, "Ressource introuvable.")
	ErrMethodNotAllowed   = NewAPIError(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Méthode non autorisée.")
	ErrInternalError      = NewAPIError(http.StatusInternalServerError, ErrCodeInternalError, "Une erreur est survenue.")
)

// RespondWithError sends an error response using the JSON envelope shared by
// every API endpoint.
func RespondWithError(c *gin.Context, err *APIError) {
	body := gin.H{
		"success": false,
		"error":   err.Message,
		"code":    err.Code,
	}
	if err.Details != nil {
		body["details"] = err.Details
	}
	c.JSON(err.Status, body)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	respond(c, ErrUnauthorized, message)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	respond(c, ErrForbidden, message)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	respond(c, ErrNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	respond(c, ErrInvalidInput, message)
}

// MethodNotAllowed sends a 405 response
func MethodNotAllowed(c *gin.Context) {
	RespondWithError(c, ErrMethodNotAllowed)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	respond(c, ErrInternalError, message)
}

func respond(c *gin.Context, base *APIError, message string) {
	if message == "" {
		RespondWithError(c, base)
		return
	}
	RespondWithError(c, base.WithMessage(message))
}
