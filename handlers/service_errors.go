package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/upb/paper-assistant-gateway/services"
	"github.com/upb/paper-assistant-gateway/utils"
	"go.uber.org/zap"
)

// StatusClientClosedRequest is written when the caller went away mid-request
const StatusClientClosedRequest = 499

// StatusForErrorType maps an error category to its HTTP status
func StatusForErrorType(t services.ErrorType) int {
	switch t {
	case services.ErrorTypeConfiguration:
		return http.StatusPreconditionFailed
	case services.ErrorTypeValidation:
		return http.StatusBadRequest
	case services.ErrorTypeAuthInvalid:
		return http.StatusUnauthorized
	case services.ErrorTypeNotFound:
		return http.StatusNotFound
	case services.ErrorTypeServiceBusy:
		return http.StatusServiceUnavailable
	case services.ErrorTypeRateLimited, services.ErrorTypeQuotaExceeded:
		return http.StatusTooManyRequests
	case services.ErrorTypeUnknown:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Info("request aborted", zap.Error(err))
		if err := utils.WriteError(w, StatusClientClosedRequest, "cancelled", "request was cancelled", nil); err != nil {
			logger.Error("failed to write cancelled response", zap.Error(err))
		}
		return
	}

	var domainErr *services.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error("unhandled error type", zap.Error(err))
		if err := utils.WriteInternalServerError(w, "An unexpected error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
		return
	}

	status := StatusForErrorType(domainErr.Type)
	message := domainErr.Message
	if domainErr.Type == services.ErrorTypeInternal {
		// Log internal errors but return generic message
		logger.Error("internal server error", zap.Error(err))
		message = "An internal error occurred"
	}

	logger.Debug("handled service error",
		zap.String("type", string(domainErr.Type)),
		zap.String("message", domainErr.Message),
		zap.Any("details", domainErr.Details))

	if err := utils.WriteError(w, status, string(domainErr.Type), message, domainErr.Details); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// HandleValidationError handles errors from request parsing and validation
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, err.Error(), details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
