package service

import (
	"fmt"
	"net/http"
)

// Error codes returned in the error_code field of failure responses.
const (
	CodeInvalidData           = "INVALID_DATA"
	CodeDoubleReport          = "DOUBLE_REPORT"
	CodeDatabaseError         = "DATABASE_CONNECTION_ERROR"
	CodeMeasureNotFound       = "MEASURE_NOT_FOUND"
	CodeConfirmationDuplicate = "CONFIRMATION_DUPLICATE"
	CodeInvalidType           = "INVALID_TYPE"
	CodeMeasuresNotFound      = "MEASURES_NOT_FOUND"
)

// Error is a business-rule or validation failure carrying the machine code
// and HTTP status the handlers translate it to.
type Error struct {
	Code        string
	Status      int
	Description string
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ErrInvalidData reports a request shape or type violation.
func ErrInvalidData(description string) *Error {
	return &Error{Code: CodeInvalidData, Status: http.StatusBadRequest, Description: description}
}

// ErrDoubleReport reports a period-uniqueness violation.
func ErrDoubleReport() *Error {
	return &Error{Code: CodeDoubleReport, Status: http.StatusConflict, Description: "reading for this month already recorded"}
}

// ErrDatabase wraps a persistence failure during create. Status 400 is kept
// from the original service contract.
func ErrDatabase(cause error) *Error {
	return &Error{Code: CodeDatabaseError, Status: http.StatusBadRequest, Description: cause.Error(), cause: cause}
}

// ErrMeasureNotFound reports an unknown measure identifier.
func ErrMeasureNotFound() *Error {
	return &Error{Code: CodeMeasureNotFound, Status: http.StatusNotFound, Description: "measure not found"}
}

// ErrConfirmationDuplicate reports a second confirmation attempt.
func ErrConfirmationDuplicate() *Error {
	return &Error{Code: CodeConfirmationDuplicate, Status: http.StatusConflict, Description: "measure already confirmed"}
}

// ErrInvalidType reports an unrecognized measure type on listing.
func ErrInvalidType() *Error {
	return &Error{Code: CodeInvalidType, Status: http.StatusBadRequest, Description: "measure type not permitted"}
}

// ErrMeasuresNotFound reports an empty listing result. Status 400 is kept
// from the original service contract.
func ErrMeasuresNotFound() *Error {
	return &Error{Code: CodeMeasuresNotFound, Status: http.StatusBadRequest, Description: "no readings found"}
}
