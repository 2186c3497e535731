package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agri-api/internal/utils/platformerrors"
)

// ErrorResponse is the JSON body of every non-streamed error.
type ErrorResponse struct {
	Code          string `json:"code"`
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleError maps domain errors to an HTTP status and aborts the request.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(platformErr.GetErrorType())

		errorMessage := platformErr.Message
		if errorMessage == "" || statusCode >= http.StatusInternalServerError {
			errorMessage = message
		}

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:          platformErr.GetUUID(),
			Error:         errorMessage,
			Message:       errorMessage,
			ErrorInstance: platformErr,
			RequestID:     requestID(reqCtx, platformErr.GetRequestID()),
		})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Code:          "unclassified",
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     requestID(reqCtx, ""),
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()), ErrorResponse{
		Code:          err.GetUUID(),
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     requestID(reqCtx, err.GetRequestID()),
	})
}

func requestID(reqCtx *gin.Context, fromErr string) string {
	if fromErr != "" {
		return fromErr
	}
	return platformerrors.RequestIDFromContext(reqCtx.Request.Context())
}
