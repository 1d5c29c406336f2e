package cloudshift

import "fmt"

// TranslationError indicates the external translation call failed or returned
// a malformed document. Nothing is ever cached on this path.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("translation error: %s", e.Message)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates an edit was appended against an absent cache key.
// This is a usage error and is surfaced, never swallowed.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cache record not found: %s", e.Key)
}

// StoreWriteError indicates a durable cache write failed.
type StoreWriteError struct {
	Op    string // "put", "append_edit", "clear"
	Key   string
	Cause error
}

func (e *StoreWriteError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store write error (%s %s): %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("store write error (%s): %v", e.Op, e.Cause)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Cause
}

// StoreCorruptionError indicates backing cache data was unreadable. Stores
// recover by treating the damaged data as absent; the error is logged, not
// propagated into the translation pipeline.
type StoreCorruptionError struct {
	Path  string
	Cause error
}

func (e *StoreCorruptionError) Error() string {
	return fmt.Sprintf("store corruption at %s: %v", e.Path, e.Cause)
}

func (e *StoreCorruptionError) Unwrap() error {
	return e.Cause
}

// MalformedReportError indicates the external scorer returned a report that
// could not be parsed into the expected shape.
type MalformedReportError struct {
	Message string
	Cause   error
}

func (e *MalformedReportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed validation report: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed validation report: %s", e.Message)
}

func (e *MalformedReportError) Unwrap() error {
	return e.Cause
}
