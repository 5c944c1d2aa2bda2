package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"github.com/straye-as/project-tracker/internal/spreadsheet"
	"go.uber.org/zap"
)

var validate = newValidator()

// newValidator reports field errors under their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ImportRejectedResponse is the 422 body of an import that produced row or structural errors
type ImportRejectedResponse struct {
	domain.APIError
	ImportErrors []spreadsheet.ImportError `json:"import_errors"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errs[toJSONFieldName(fe)] = formatValidationError(fe)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: errs,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName returns the dotted JSON path of a failed field without the request type prefix,
// e.g. "checklist[0].title"
func toJSONFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx != -1 {
		return ns[idx+1:]
	}
	return fe.Field()
}

// decodeAndValidate reads a JSON body into req and validates it, answering 400 on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return false
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// parseUUIDParam parses a chi path parameter, answering 400 when it is not a UUID
func parseUUIDParam(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID: must be a valid UUID", label))
		return uuid.Nil, false
	}
	return id, true
}

// queryBool reads a boolean query parameter; anything unparsable is false
func queryBool(r *http.Request, key string) bool {
	return queryBoolDefault(r, key, false)
}

// queryBoolDefault reads a boolean query parameter, returning def when it is absent or unparsable
func queryBoolDefault(r *http.Request, key string, def bool) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return b
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusRequestEntityTooLarge:
		return domain.ErrorTypeTooLarge
	case http.StatusUnprocessableEntity:
		return domain.ErrorTypeImportRejected
	default:
		return domain.ErrorTypeInternal
	}
}

var notFoundErrors = []error{
	service.ErrGroupNotFound,
	service.ErrProjectNotFound,
	service.ErrStageNotFound,
	service.ErrTaskNotFound,
	service.ErrSubtaskNotFound,
	service.ErrSectionNotFound,
	service.ErrFieldNotFound,
	service.ErrFileNotFound,
	service.ErrImageNotFound,
	service.ErrCommentNotFound,
	service.ErrHistoryEventNotFound,
	service.ErrTemplateNotFound,
	service.ErrBackupNotFound,
}

// handleServiceError maps service errors to HTTP responses. Unknown errors are logged and answered with 500.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var rejected *service.ImportRejectedError
	if errors.As(err, &rejected) {
		respondJSON(w, http.StatusUnprocessableEntity, ImportRejectedResponse{
			APIError: domain.APIError{
				Type:   domain.ErrorTypeImportRejected,
				Title:  http.StatusText(http.StatusUnprocessableEntity),
				Status: http.StatusUnprocessableEntity,
				Detail: rejected.Error(),
			},
			ImportErrors: rejected.Errors,
		})
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			respondWithError(w, http.StatusNotFound, capitalize(target.Error()))
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrGroupHasProjects):
		respondWithError(w, http.StatusConflict, "Product group still has projects")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("failed to "+action, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
