// Package apierror defines the coded error type surfaced by the query
// engine and its HTTP API.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes.
const (
	// CodeQueryExecution covers statement creation, execution and result
	// draining failures, including driver-level SQL errors.
	CodeQueryExecution = "QUERY_EXECUTION_ERROR"

	// CodePreparedStatementBind covers bind values whose runtime type has no
	// supported mapping and driver-rejected bind calls.
	CodePreparedStatementBind = "PREPARED_STATEMENT_BIND_ERROR"

	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeStatementNotFound = "STATEMENT_NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// SQLState values per the SQL standard.
const (
	SQLStateSuccess       = "00000"
	SQLStateDataException = "22000"
	SQLStateNoData        = "02000"
	SQLStateGeneralError  = "HY000"
)

// GetSQLState returns the SQL state for a given error code.
func GetSQLState(code string) string {
	switch code {
	case CodePreparedStatementBind:
		return SQLStateDataException
	case CodeStatementNotFound:
		return SQLStateNoData
	default:
		return SQLStateGeneralError
	}
}

// QueryError is a coded engine error.
type QueryError struct {
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	SQLState string         `json:"sqlState,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *QueryError) MarshalJSON() ([]byte, error) {
	type Alias QueryError
	return json.Marshal(&struct {
		*Alias
	}{
		Alias: (*Alias)(e),
	})
}

// WithData adds data to the error.
func (e *QueryError) WithData(key string, value any) *QueryError {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// Is checks if this error matches another error by code.
func (e *QueryError) Is(target error) bool {
	var qe *QueryError
	if errors.As(target, &qe) {
		return e.Code == qe.Code
	}
	return false
}

// New creates a QueryError with the given code and message.
func New(code, message string) *QueryError {
	return &QueryError{
		Code:     code,
		Message:  message,
		SQLState: GetSQLState(code),
		Data:     make(map[string]any),
	}
}

// NewBindError reports a parameter that could not be bound. The parameter is
// identified by name when the authoring model knows one, otherwise by its
// 1-based position.
func NewBindError(param string, typeName string, cause error) *QueryError {
	e := New(CodePreparedStatementBind, fmt.Sprintf("failed to bind parameter %s", param))
	e.Data["parameter"] = param
	if typeName != "" {
		e.Data["valueType"] = typeName
		e.Message = fmt.Sprintf("failed to bind parameter %s of type %s", param, typeName)
	}
	if cause != nil {
		e.Data["originalError"] = cause.Error()
	}
	return e
}

// WrapError wraps an underlying error under a code.
func WrapError(code, message string, err error) *QueryError {
	return &QueryError{
		Code:     code,
		Message:  message,
		SQLState: GetSQLState(code),
		Data: map[string]any{
			"originalError": err.Error(),
		},
	}
}

// FromError converts a standard error to a QueryError. A nil error stays
// nil; an existing QueryError passes through unchanged.
func FromError(err error) *QueryError {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}
	return &QueryError{
		Code:     CodeInternal,
		Message:  err.Error(),
		SQLState: SQLStateGeneralError,
		Data:     make(map[string]any),
	}
}

// ErrorResponse is the JSON error envelope used by all handlers.
type ErrorResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Code     string         `json:"code"`
	SQLState string         `json:"sqlState,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// ToResponse converts the QueryError to an ErrorResponse.
func (e *QueryError) ToResponse() *ErrorResponse {
	data := make(map[string]any)
	for k, v := range e.Data {
		data[k] = v
	}
	return &ErrorResponse{
		Success:  false,
		Message:  e.Message,
		Code:     e.Code,
		SQLState: e.SQLState,
		Data:     data,
	}
}
