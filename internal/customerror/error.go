package customerror

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type CustomError interface {
	Error() string
	GetHTTPCode() int
}

// ValidationError несёт ошибки по каждому полю: путь поля -> сообщение.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) GetHTTPCode() int {
	return http.StatusBadRequest
}

type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{message: msg}
}

func (e *NotFoundError) Error() string {
	return e.message
}

func (e *NotFoundError) GetHTTPCode() int {
	return http.StatusNotFound
}

type UniqueViolationError struct {
	httpCode int
	message  string
}

func NewUniqueViolationError(msg string) *UniqueViolationError {
	return &UniqueViolationError{httpCode: http.StatusConflict, message: msg}
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation: %s", e.message)
}

func (e *UniqueViolationError) GetHTTPCode() int {
	return e.httpCode
}

type CreationFailedError struct {
	message string
	err     error
}

func NewCreationFailedError(msg string, err error) *CreationFailedError {
	return &CreationFailedError{message: msg, err: err}
}

func (e *CreationFailedError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *CreationFailedError) Unwrap() error {
	return e.err
}

func (e *CreationFailedError) GetHTTPCode() int {
	return http.StatusInternalServerError
}

type CommonPGError struct {
	httpCode int
	message  string
}

func NewCommonPGError(msg string) *CommonPGError {
	return &CommonPGError{httpCode: http.StatusInternalServerError, message: msg}
}

func (e *CommonPGError) Error() string {
	return e.message
}

func (e *CommonPGError) GetHTTPCode() int {
	return e.httpCode
}
