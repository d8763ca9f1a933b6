package errors

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// TemplateError represents a failure to read or render a template file
type TemplateError struct {
	File string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// Unwrap returns the underlying error
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// NewTemplateError creates a new TemplateError
func NewTemplateError(file string, err error) *TemplateError {
	return &TemplateError{
		File: file,
		Err:  err,
	}
}

// ParamsError represents an unreadable or malformed bindings file
type ParamsError struct {
	File    string
	Message string
}

func (e *ParamsError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("invalid params: %s", e.Message)
	}
	return fmt.Sprintf("invalid params file %s: %s", e.File, e.Message)
}

// NewParamsError creates a new ParamsError
func NewParamsError(file, message string) *ParamsError {
	return &ParamsError{
		File:    file,
		Message: message,
	}
}

// ConnectionError represents PostgreSQL connection failure
type ConnectionError struct {
	Message    string
	Suggestion string
}

func (e *ConnectionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(message, suggestion string) *ConnectionError {
	return &ConnectionError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// ExecError represents a rendered statement rejected by PostgreSQL
type ExecError struct {
	File     string
	SQLError *pgconn.PgError // PostgreSQL error details
	Err      error
}

func (e *ExecError) Error() string {
	if e.SQLError != nil {
		return fmt.Sprintf("executing %s failed: [%s] %s", e.File, e.SQLError.Code, e.SQLError.Message)
	}
	return fmt.Sprintf("executing %s failed: %v", e.File, e.Err)
}

// Unwrap returns the underlying error
func (e *ExecError) Unwrap() error {
	if e.SQLError != nil {
		return e.SQLError
	}
	return e.Err
}

// NewExecError creates a new ExecError
func NewExecError(file string, sqlError *pgconn.PgError, err error) *ExecError {
	return &ExecError{
		File:     file,
		SQLError: sqlError,
		Err:      err,
	}
}
