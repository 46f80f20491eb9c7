package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Details []string
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

// Wrap wraps an error with additional context, keeping the code of the innermost AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Details: appErr.Details,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// GetCode returns the error code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// GetDetails returns the details attached to the outermost AppError in the chain
func GetDetails(err error) []string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// Predefined error codes
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeFileNotFound   = "FILE_NOT_FOUND"
	CodeParseError     = "PARSE_ERROR"
	CodeMissingColumns = "MISSING_COLUMNS"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeTooLarge       = "PAYLOAD_TOO_LARGE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// FileNotFound reports an absent data file; callers treat it as "no data available".
// cause should be core.ErrDatasetAbsent so errors.Is keeps matching it.
func FileNotFound(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeFileNotFound,
		Message: fmt.Sprintf("file not found: %s", path),
		Cause:   cause,
	}
}

// ParseError reports a corrupt or unreadable spreadsheet. The cause text is surfaced to users.
func ParseError(source string, cause error) *AppError {
	return &AppError{
		Code:    CodeParseError,
		Message: fmt.Sprintf("failed to read spreadsheet %s", source),
		Cause:   cause,
	}
}

// MissingColumns lists the required columns an upload lacks
func MissingColumns(columns []string) *AppError {
	return &AppError{
		Code:    CodeMissingColumns,
		Message: fmt.Sprintf("missing required columns: %s", strings.Join(columns, ", ")),
		Details: append([]string(nil), columns...),
	}
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// TooLarge reports an upload over the configured size limit
func TooLarge(limitBytes int64) *AppError {
	return New(CodeTooLarge, fmt.Sprintf("upload exceeds the %d MB limit", limitBytes>>20))
}
