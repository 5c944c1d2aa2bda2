package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
)

// queryList reads a repeatable, comma-separated query parameter
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid UUID", key)
	}
	return &id, nil
}

func queryDate(r *http.Request, key string) (*domain.Date, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", key)
	}
	return &d, nil
}

// queryCustomFields decodes the custom_fields parameter, a JSON array of filters
func queryCustomFields(r *http.Request) ([]domain.CustomFieldFilter, error) {
	raw := r.URL.Query().Get("custom_fields")
	if raw == "" {
		return nil, nil
	}
	var filters []domain.CustomFieldFilter
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil, fmt.Errorf("custom_fields must be a JSON array of filters")
	}
	for _, f := range filters {
		if err := validate.Struct(f); err != nil {
			return nil, fmt.Errorf("custom_fields: invalid filter for %q", f.FieldID)
		}
	}
	return filters, nil
}

// parseProjectFilters builds repository filters from the project list query parameters.
// includeArchived applies when the request does not set include_archived.
func parseProjectFilters(r *http.Request, includeArchived bool) (repository.ProjectFilters, error) {
	filters := repository.ProjectFilters{
		IncludeArchived: queryBoolDefault(r, "include_archived", includeArchived),
		Brand:           strings.TrimSpace(r.URL.Query().Get("brand")),
	}

	var err error
	if filters.GroupID, err = queryUUID(r, "group_id"); err != nil {
		return filters, err
	}
	if filters.CurrentStageID, err = queryUUID(r, "current_stage_id"); err != nil {
		return filters, err
	}
	if filters.PlannedFrom, err = queryDate(r, "planned_from"); err != nil {
		return filters, err
	}
	if filters.PlannedTo, err = queryDate(r, "planned_to"); err != nil {
		return filters, err
	}

	for _, s := range queryList(r, "status") {
		status := domain.ProjectStatus(s)
		if !status.IsValid() {
			return filters, fmt.Errorf("status must be one of: active closed archived")
		}
		filters.Statuses = append(filters.Statuses, status)
	}
	// Asking for archived projects by status implies including them
	for _, s := range filters.Statuses {
		if s == domain.ProjectStatusArchived {
			filters.IncludeArchived = true
		}
	}

	if filters.CustomFields, err = queryCustomFields(r); err != nil {
		return filters, err
	}
	return filters, nil
}
