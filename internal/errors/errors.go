package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeMissingGroupingColumn = "MISSING_GROUPING_COLUMN"
	CodeNoMonthColumns        = "NO_MONTH_COLUMNS"
	CodeNoCustomerColumn      = "NO_CUSTOMER_COLUMN"
	CodeFileError             = "FILE_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeInternalError         = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func MissingGroupingColumn(dimension, column string) *AppError {
	return New(CodeMissingGroupingColumn,
		fmt.Sprintf("%s analysis requires a %q column and none was found", dimension, column))
}

func NoMonthColumnsFound(year int) *AppError {
	return New(CodeNoMonthColumns,
		fmt.Sprintf("no %d monthly revenue columns detected in the sheet", year))
}

func NoCustomerColumn() *AppError {
	return New(CodeNoCustomerColumn, "no customer identifier column detected in the sheet")
}

func FileError(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeFileError,
		Message: fmt.Sprintf("failed to open %s", path),
		Cause:   cause,
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
