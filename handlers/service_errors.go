package handlers

import (
	"net/http"

	"github.com/upb/studio-dashboard/services"
	"github.com/upb/studio-dashboard/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to JSON API responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}
	if utils.IsValidationError(err) {
		HandleValidationError(w, err, logger)
		return
	}

	details := services.GetErrorDetails(err)
	errType := services.GetErrorType(err)

	var writeErr error
	switch errType {
	case services.ErrorTypeNotFound:
		writeErr = utils.WriteError(w, http.StatusNotFound, err.Error(), details)
	case services.ErrorTypeValidation:
		writeErr = utils.WriteBadRequest(w, err.Error(), details)
	case services.ErrorTypeUnauthorized:
		writeErr = utils.WriteUnauthorized(w, err.Error())
	case services.ErrorTypeForbidden:
		writeErr = utils.WriteError(w, http.StatusForbidden, err.Error(), details)
	case services.ErrorTypeInternal:
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")
	default:
		logger.Error("unhandled error type", zap.Error(err), zap.String("error_type", string(errType)))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var details map[string]interface{}
	message := err.Error()

	if utils.IsValidationError(err) {
		message = "Validation failed"
		details = make(map[string]interface{})
		for k, v := range utils.GetValidationFields(err) {
			details[k] = v
		}
	}

	if err := utils.WriteBadRequest(w, message, details); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
