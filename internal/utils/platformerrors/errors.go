package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID stores the request ID so errors created downstream can carry it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ErrorType is the category an error is reported under.
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden     ErrorType = "FORBIDDEN"
	ErrorTypeInternal      ErrorType = "INTERNAL"
	ErrorTypeExternal      ErrorType = "EXTERNAL"
	ErrorTypeDatabaseError ErrorType = "DATABASE_ERROR"
	ErrorTypeTimeout       ErrorType = "TIMEOUT"
)

var httpStatus = map[ErrorType]int{
	ErrorTypeNotFound:      http.StatusNotFound,
	ErrorTypeValidation:    http.StatusBadRequest,
	ErrorTypeConflict:      http.StatusConflict,
	ErrorTypeUnauthorized:  http.StatusUnauthorized,
	ErrorTypeForbidden:     http.StatusForbidden,
	ErrorTypeExternal:      http.StatusBadGateway,
	ErrorTypeTimeout:       http.StatusGatewayTimeout,
	ErrorTypeDatabaseError: http.StatusInternalServerError,
	ErrorTypeInternal:      http.StatusInternalServerError,
}

// Layer names where an error was raised.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerRoute          Layer = "route"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError is a classified error. UUID is a stable, greppable code such
// as "thread-not-found" and is what clients see as `code`.
type PlatformError struct {
	UUID      string
	Type      ErrorType
	Layer     Layer
	Message   string
	RequestID string
	Err       error
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s][%s] %s: %v", e.Layer, e.Type, e.UUID, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s][%s] %s", e.Layer, e.Type, e.UUID, e.Message)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func (e *PlatformError) GetErrorType() ErrorType { return e.Type }

func (e *PlatformError) GetRequestID() string { return e.RequestID }

func (e *PlatformError) GetUUID() string { return e.UUID }

// NewError classifies err. An empty code becomes "unclassified".
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, code string) *PlatformError {
	if code == "" {
		code = "unclassified"
	}
	return &PlatformError{
		UUID:      code,
		Type:      errorType,
		Layer:     layer,
		Message:   message,
		RequestID: RequestIDFromContext(ctx),
		Err:       err,
	}
}

// AsError wraps err for layer. An inner PlatformError keeps its type and code;
// context deadlines become timeouts and anything else is internal.
func AsError(ctx context.Context, layer Layer, err error, message string) *PlatformError {
	if err == nil {
		return nil
	}

	var inner *PlatformError
	if errors.As(err, &inner) {
		return NewError(ctx, layer, inner.Type, message+": "+inner.Message, inner, inner.UUID)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ctx, layer, ErrorTypeTimeout, message, err, "")
	case errors.Is(err, context.Canceled):
		return NewError(ctx, layer, ErrorTypeExternal, message, err, "")
	}
	return NewError(ctx, layer, ErrorTypeInternal, message, err, "")
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes. Unknown types are 500.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	if code, ok := httpStatus[errorType]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// IsErrorType reports whether err is a PlatformError of errorType.
func IsErrorType(err error, errorType ErrorType) bool {
	var pe *PlatformError
	return errors.As(err, &pe) && pe.Type == errorType
}

// LogError logs err at error level when it maps to a 5xx and at debug
// otherwise. Unclassified errors are always logged at error level.
func LogError(log zerolog.Logger, err error) {
	if err == nil {
		return
	}
	var pe *PlatformError
	if !errors.As(err, &pe) {
		log.Error().Err(err).Msg("unclassified error")
		return
	}

	ev := log.Debug()
	if ErrorTypeToHTTPStatus(pe.Type) >= http.StatusInternalServerError {
		ev = log.Error()
	}
	if pe.RequestID != "" {
		ev = ev.Str("request_id", pe.RequestID)
	}
	if pe.Err != nil {
		ev = ev.Err(pe.Err)
	}
	ev.Str("error_code", pe.UUID).
		Str("error_type", string(pe.Type)).
		Str("layer", string(pe.Layer)).
		Msg(pe.Message)
}
