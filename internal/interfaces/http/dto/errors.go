package dto

import "net/http"

// Error codes surfaced by the API. Domain error codes map straight
// through; the HTTP layer only decides the status code.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when creating a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeInvalidTransition is used for disallowed status transitions
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeConfirmationRequired is used when completion lacks delivery confirmation
	ErrCodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	// ErrCodeInsufficientStock is used when stock cannot cover a deduction
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeSequenceConflict is used when invoice sequence allocation keeps failing
	ErrCodeSequenceConflict = "SEQUENCE_CONFLICT"
	// ErrCodeDuplicateInvoice is used when an order already has an invoice
	ErrCodeDuplicateInvoice = "DUPLICATE_INVOICE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Conflicts with concurrent writers are 409; business rule violations
// on a well-formed request are 422.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusConflict,
	ErrCodeSequenceConflict:    http.StatusConflict,
	ErrCodeDuplicateInvoice:    http.StatusConflict,

	ErrCodeInvalidTransition:    http.StatusUnprocessableEntity,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired: http.StatusUnprocessableEntity,

	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_APPROVER": http.StatusBadRequest,
	"VALIDATION_ERROR": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unknown codes are treated as business rule violations (422) rather
// than internal errors: domain code paths produce meaningful codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
