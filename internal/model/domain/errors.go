package domain

import "errors"

// DomainError is the error type crossing package boundaries. Err keeps the
// underlying cause for logging and errors.Is.
type DomainError struct {
	Code    string
	Message string
	Module  string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	CodeStorage           = "STORAGE_FAILURE"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnknownFamily     = "UNKNOWN_METRIC_FAMILY"
	CodeUnknownEntityKind = "UNKNOWN_ENTITY_KIND"
	CodeRateLimited       = "RATE_LIMITED"
)

const (
	ModuleStore      = "store"
	ModuleEvaluation = "evaluation"
	ModuleHistory    = "history"
	ModuleProsperity = "prosperity"
	ModuleRelevance  = "relevance"
	ModuleRateLimit  = "ratelimit"
)

func NewError(module, code, message string, cause error) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message, Err: cause}
}

// StorageError marks cause as a persistence failure.
func StorageError(message string, cause error) *DomainError {
	return NewError(ModuleStore, CodeStorage, message, cause)
}

func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsStorage(err error) bool      { return CodeOf(err) == CodeStorage }
func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsInvalidInput(err error) bool { return CodeOf(err) == CodeInvalidInput }
func IsRateLimited(err error) bool  { return CodeOf(err) == CodeRateLimited }

// IsUnknown reports whether err rejects an unknown metric family or entity kind.
func IsUnknown(err error) bool {
	code := CodeOf(err)
	return code == CodeUnknownFamily || code == CodeUnknownEntityKind
}
