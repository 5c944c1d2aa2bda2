package handler

import (
	"net/http"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

type GroupHandler struct {
	groupService *service.GroupService
	logger       *zap.Logger
}

func NewGroupHandler(groupService *service.GroupService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		logger:       logger,
	}
}

// List godoc
// @Summary List product groups
// @Tags Groups
// @Produce json
// @Param include_archived query bool false "Include archived groups" default(true)
// @Param custom_fields query string false "JSON array of extra field filters"
// @Success 200 {array} domain.ProductGroup
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /groups [get]
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	customFields, err := queryCustomFields(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	groups, err := h.groupService.List(r.Context(), repository.GroupFilters{
		IncludeArchived: queryBoolDefault(r, "include_archived", true),
		CustomFields:    customFields,
	})
	if err != nil {
		handleServiceError(w, h.logger, err, "list product groups")
		return
	}

	respondJSON(w, http.StatusOK, groups)
}

// Create godoc
// @Summary Create product group
// @Tags Groups
// @Accept json
// @Produce json
// @Param request body domain.CreateGroupRequest true "Group data"
// @Success 201 {object} domain.ProductGroup
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /groups [post]
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGroupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	group, err := h.groupService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create product group")
		return
	}

	w.Header().Set("Location", "/api/v1/groups/"+group.ID.String())
	respondJSON(w, http.StatusCreated, group)
}

// GetByID godoc
// @Summary Get product group by ID
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID" format(uuid)
// @Success 200 {object} domain.ProductGroup
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /groups/{id} [get]
func (h *GroupHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "group")
	if !ok {
		return
	}

	group, err := h.groupService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get product group")
		return
	}

	respondJSON(w, http.StatusOK, group)
}

// Update godoc
// @Summary Update product group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID" format(uuid)
// @Param request body domain.UpdateGroupRequest true "Group data"
// @Success 200 {object} domain.ProductGroup
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /groups/{id} [put]
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "group")
	if !ok {
		return
	}

	var req domain.UpdateGroupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	group, err := h.groupService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update product group")
		return
	}

	respondJSON(w, http.StatusOK, group)
}

// Delete godoc
// @Summary Delete product group
// @Description Refused with 409 while projects still reference the group
// @Tags Groups
// @Param id path string true "Group ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "group")
	if !ok {
		return
	}

	if err := h.groupService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete product group")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FieldMeta godoc
// @Summary Describe extra fields shared by product groups
// @Tags Groups
// @Produce json
// @Success 200 {array} domain.CustomFieldMeta
// @Router /groups/field-meta [get]
func (h *GroupHandler) FieldMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.groupService.FieldMeta(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "describe group fields")
		return
	}
	respondJSON(w, http.StatusOK, meta)
}
