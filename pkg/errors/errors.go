package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeNotFound        = "NOT_FOUND"
	CodeEmptyModel      = "EMPTY_MODEL"
	CodeMalformedSeed   = "MALFORMED_SEED"
	CodeMalformedRecord = "MALFORMED_RECORD"
	CodeValidation      = "VALIDATION_ERROR"
	CodeCache           = "CACHE_ERROR"
	CodeService         = "SERVICE_ERROR"
	CodeCrawl           = "CRAWL_ERROR"
)

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrNotFound        = &AppError{Message: "not found", Code: CodeNotFound, StatusCode: 404}
	ErrEmptyModel      = &AppError{Message: "empty model", Code: CodeEmptyModel, StatusCode: 500}
	ErrMalformedSeed   = &AppError{Message: "malformed seed", Code: CodeMalformedSeed, StatusCode: 404}
	ErrMalformedRecord = &AppError{Message: "malformed training record", Code: CodeMalformedRecord, StatusCode: 500}
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
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

// Is reports whether target is an *AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

type NotFoundError struct {
	*AppError
	Kind string
	Key  any
}

func NewNotFoundError(kind string, key any) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s not found: %v", kind, key),
			Code:       CodeNotFound,
			StatusCode: 404,
			Context: map[string]any{
				"kind": kind,
				"key":  key,
			},
		},
		Kind: kind,
		Key:  key,
	}
}

type EmptyModelError struct {
	*AppError
	Model string
}

func NewEmptyModelError(model string, context map[string]any) *EmptyModelError {
	return &EmptyModelError{
		AppError: &AppError{
			Message:    fmt.Sprintf("model %q has no training data", model),
			Code:       CodeEmptyModel,
			StatusCode: 500,
			Context:    context,
		},
		Model: model,
	}
}

type MalformedSeedError struct {
	*AppError
	Input string
}

func NewMalformedSeedError(input string, cause error) *MalformedSeedError {
	return &MalformedSeedError{
		AppError: &AppError{
			Message:    fmt.Sprintf("malformed seed string %q", input),
			Code:       CodeMalformedSeed,
			StatusCode: 404,
			Context: map[string]any{
				"input": input,
			},
			Cause: cause,
		},
		Input: input,
	}
}

type MalformedRecordError struct {
	*AppError
	Line int
}

func NewMalformedRecordError(line int, cause error) *MalformedRecordError {
	return &MalformedRecordError{
		AppError: &AppError{
			Message:    fmt.Sprintf("malformed training record at line %d", line),
			Code:       CodeMalformedRecord,
			StatusCode: 500,
			Context: map[string]any{
				"line": line,
			},
			Cause: cause,
		},
		Line: line,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

type CrawlError struct {
	*AppError
	URL string
}

func NewCrawlError(message, url string, statusCode int, cause error) *CrawlError {
	return &CrawlError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCrawl,
			StatusCode: statusCode,
			Context: map[string]any{
				"url": url,
			},
			Cause: cause,
		},
		URL: url,
	}
}

func (e *AppError) appError() *AppError {
	return e
}

type appErrorCarrier interface {
	appError() *AppError
}

// StatusCode extracts the HTTP status carried anywhere in err's chain, or 500.
func StatusCode(err error) int {
	var carrier appErrorCarrier
	if stderrors.As(err, &carrier) {
		return carrier.appError().StatusCode
	}
	return 500
}

// Code returns the error code carried anywhere in err's chain, or "".
func Code(err error) string {
	var carrier appErrorCarrier
	if stderrors.As(err, &carrier) {
		return carrier.appError().Code
	}
	return ""
}
