package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidTransition    = NewDomainError("INVALID_TRANSITION", "Status transition is not allowed")
	ErrConfirmationRequired = NewDomainError("CONFIRMATION_REQUIRED", "Delivery confirmation is required")
	ErrInsufficientStock    = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrSequenceConflict     = NewDomainError("SEQUENCE_CONFLICT", "Invoice sequence allocation conflict")
	ErrDuplicateInvoice     = NewDomainError("DUPLICATE_INVOICE", "Invoice already exists for this order")
)
