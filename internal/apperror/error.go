package apperror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Kind classifies how a failure is recovered.
type Kind string

const (
	// KindTransient failures are logged and retried by the caller's normal cadence.
	KindTransient Kind = "transient"
	// KindPrerequisite means a required collaborator is absent; the operation no-ops.
	KindPrerequisite Kind = "prerequisite"
	// KindUnavailable aborts the current attempt only.
	KindUnavailable Kind = "unavailable"
	// KindMalformed input is dropped.
	KindMalformed Kind = "malformed"
	KindInternal  Kind = "internal"
)

// AppError implements the error interface and provides structured error handling
type AppError struct {
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	Context   string    `json:"context,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
	stack     []uintptr
}

// Error implements the error interface
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Context)
		sb.WriteString(")")
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on code so sentinel comparisons work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithTraceID sets the trace ID for distributed tracing
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// ToLog serializes the error for logging with stack trace
func (e *AppError) ToLog() map[string]any {
	log := map[string]any{
		"code":      e.Code,
		"message":   e.Message,
		"kind":      e.Kind,
		"timestamp": e.Timestamp.Format(time.RFC3339),
	}

	if e.Context != "" {
		log["context"] = e.Context
	}
	if e.TraceID != "" {
		log["traceId"] = e.TraceID
	}
	if e.cause != nil {
		log["cause"] = e.cause.Error()
	}
	if len(e.stack) > 0 {
		log["stack"] = e.formatStack()
	}

	return log
}

func (e *AppError) formatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			sb.WriteString(fmt.Sprintf("\n\t%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates a new AppError with the given code and options
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:      code,
		Message:   messages[code],
		Kind:      defaultKind(code),
		Timestamp: time.Now(),
		stack:     captureStack(),
	}

	for _, opt := range opts {
		opt(err)
	}

	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

// Option is a functional option for AppError
type Option func(*AppError)

// WithMessage sets a custom message
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext adds context information
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithKind overrides the kind derived from the code.
func WithKind(kind Kind) Option {
	return func(e *AppError) {
		e.Kind = kind
	}
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// Transient creates a recoverable network error.
func Transient(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithKind(KindTransient))
}

// Malformed creates an error for input that must be dropped.
func Malformed(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithKind(KindMalformed))
}

// Wrap wraps a standard error into AppError
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return New(code, WithContext(context), WithCause(err))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// GetKind extracts the kind, treating foreign errors as internal.
func GetKind(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsTransient reports whether err is a recoverable network failure.
func IsTransient(err error) bool {
	return err != nil && GetKind(err) == KindTransient
}

func defaultKind(code Code) Kind {
	s := string(code)
	switch {
	case strings.HasPrefix(s, "WEBSOCKET"),
		strings.Contains(s, "FETCH"),
		strings.Contains(s, "TIMEOUT"),
		strings.Contains(s, "STATUS"),
		strings.HasPrefix(s, "CIRCUIT"),
		code == CodeRateLimitExceeded,
		code == CodeExternalServiceError,
		code == CodeSubscribeFailed,
		code == CodeMempoolNoData:
		return KindTransient
	case strings.Contains(s, "NOT_FOUND"):
		return KindPrerequisite
	case strings.Contains(s, "DECODE"),
		strings.Contains(s, "MALFORMED"),
		strings.Contains(s, "INVALID"):
		return KindMalformed
	case code == CodeEngineLoadFailed:
		return KindUnavailable
	default:
		return KindInternal
	}
}
