package platformerrors_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/utils/platformerrors"
)

var errSentinel = errors.New("sentinel")

func TestNewError_CarriesRequestID(t *testing.T) {
	ctx := platformerrors.WithRequestID(context.Background(), "req-123")
	err := platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "thread not found", errSentinel, "thread-not-found")

	assert.Equal(t, "req-123", err.GetRequestID())
	assert.Equal(t, "thread-not-found", err.GetUUID())
	assert.ErrorIs(t, err, errSentinel)
	assert.Contains(t, err.Error(), "thread not found")
}

func TestAsError_PreservesInnerType(t *testing.T) {
	inner := platformerrors.NewError(context.Background(), platformerrors.LayerRepository, platformerrors.ErrorTypeForbidden, "zone owned by another user", nil, "zone-forbidden")
	wrapped := platformerrors.AsError(context.Background(), platformerrors.LayerDomain, fmt.Errorf("lookup: %w", inner), "load zone")

	require.NotNil(t, wrapped)
	assert.Equal(t, platformerrors.ErrorTypeForbidden, wrapped.GetErrorType())
	assert.Equal(t, "zone-forbidden", wrapped.GetUUID())
	assert.True(t, platformerrors.IsErrorType(wrapped, platformerrors.ErrorTypeForbidden))
}

func TestAsError_ClassifiesContextErrors(t *testing.T) {
	assert.Nil(t, platformerrors.AsError(context.Background(), platformerrors.LayerDomain, nil, "noop"))

	timeout := platformerrors.AsError(context.Background(), platformerrors.LayerDomain, context.DeadlineExceeded, "tool call")
	assert.Equal(t, platformerrors.ErrorTypeTimeout, timeout.GetErrorType())

	plain := platformerrors.AsError(context.Background(), platformerrors.LayerDomain, errSentinel, "boom")
	assert.Equal(t, platformerrors.ErrorTypeInternal, plain.GetErrorType())
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType platformerrors.ErrorType
		expected  int
	}{
		{platformerrors.ErrorTypeNotFound, http.StatusNotFound},
		{platformerrors.ErrorTypeValidation, http.StatusBadRequest},
		{platformerrors.ErrorTypeConflict, http.StatusConflict},
		{platformerrors.ErrorTypeUnauthorized, http.StatusUnauthorized},
		{platformerrors.ErrorTypeForbidden, http.StatusForbidden},
		{platformerrors.ErrorTypeExternal, http.StatusBadGateway},
		{platformerrors.ErrorTypeTimeout, http.StatusGatewayTimeout},
		{platformerrors.ErrorTypeDatabaseError, http.StatusInternalServerError},
		{platformerrors.ErrorType("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.expected, platformerrors.ErrorTypeToHTTPStatus(tt.errorType))
		})
	}
}

func TestLogError_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	platformerrors.LogError(log, platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "thread not found", nil, "thread-not-found"))
	assert.Empty(t, buf.String())

	ctx := platformerrors.WithRequestID(context.Background(), "req-9")
	platformerrors.LogError(log, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "append message", errSentinel, "message-append-failed"))
	assert.Contains(t, buf.String(), `"error_code":"message-append-failed"`)
	assert.Contains(t, buf.String(), `"request_id":"req-9"`)
	assert.Contains(t, buf.String(), `"level":"error"`)

	buf.Reset()
	platformerrors.LogError(log, errSentinel)
	assert.Contains(t, buf.String(), "unclassified error")
}
