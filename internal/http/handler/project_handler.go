package handler

import (
	"net/http"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description List projects with optional filters. Archived projects are hidden unless requested.
// @Tags Projects
// @Produce json
// @Param include_archived query bool false "Include archived projects" default(true)
// @Param group_id query string false "Filter by product group" format(uuid)
// @Param brand query string false "Filter by brand (case-insensitive)"
// @Param status query string false "Comma-separated statuses" Enums(active, closed, archived)
// @Param current_stage_id query string false "Filter by current GTM stage" format(uuid)
// @Param planned_from query string false "Planned launch on or after (YYYY-MM-DD)"
// @Param planned_to query string false "Planned launch on or before (YYYY-MM-DD)"
// @Param custom_fields query string false "JSON array of custom field filters"
// @Success 200 {array} domain.Project
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := parseProjectFilters(r, true)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	projects, err := h.projectService.List(r.Context(), filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "list projects")
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// Create godoc
// @Summary Create project
// @Description Create a new project in an existing product group
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.Project
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Product group not found"
// @Failure 500 {object} domain.APIError
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// GetByID godoc
// @Summary Get project by ID
// @Description Get a project with its GTM plan, tasks, characteristics and attachments
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.Project
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.Project
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Description Delete a project together with its stored files and images
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FieldMeta godoc
// @Summary Describe custom fields shared by projects
// @Tags Projects
// @Produce json
// @Success 200 {array} domain.CustomFieldMeta
// @Router /projects/field-meta [get]
func (h *ProjectHandler) FieldMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.projectService.FieldMeta(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "describe project fields")
		return
	}
	respondJSON(w, http.StatusOK, meta)
}

// ============================================================================
// Comments
// ============================================================================

// ListComments godoc
// @Summary List project comments, newest first
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.Comment
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/comments [get]
func (h *ProjectHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	comments, err := h.projectService.ListComments(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "list comments")
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// AddComment godoc
// @Summary Add project comment
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CommentRequest true "Comment"
// @Success 201 {object} domain.Comment
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/comments [post]
func (h *ProjectHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.projectService.AddComment(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// UpdateComment godoc
// @Summary Edit project comment
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param commentId path string true "Comment ID" format(uuid)
// @Param request body domain.CommentRequest true "Comment"
// @Success 200 {object} domain.Comment
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/comments/{commentId} [put]
func (h *ProjectHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	commentID, ok := parseUUIDParam(w, r, "commentId", "comment")
	if !ok {
		return
	}

	var req domain.CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.projectService.UpdateComment(r.Context(), id, commentID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update comment")
		return
	}
	respondJSON(w, http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete project comment
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Param commentId path string true "Comment ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/comments/{commentId} [delete]
func (h *ProjectHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	commentID, ok := parseUUIDParam(w, r, "commentId", "comment")
	if !ok {
		return
	}

	if err := h.projectService.DeleteComment(r.Context(), id, commentID); err != nil {
		handleServiceError(w, h.logger, err, "delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// History
// ============================================================================

// ListHistory godoc
// @Summary List project history, newest first
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.HistoryEvent
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/history [get]
func (h *ProjectHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	events, err := h.projectService.ListHistory(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "list history")
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// AddHistoryEvent godoc
// @Summary Record a manual history event
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.HistoryEventRequest true "Event"
// @Success 201 {object} domain.HistoryEvent
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/history [post]
func (h *ProjectHandler) AddHistoryEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.HistoryEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.projectService.AddHistoryEvent(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add history event")
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// DeleteHistoryEvent godoc
// @Summary Delete history event
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Param eventId path string true "Event ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/history/{eventId} [delete]
func (h *ProjectHandler) DeleteHistoryEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	eventID, ok := parseUUIDParam(w, r, "eventId", "event")
	if !ok {
		return
	}

	if err := h.projectService.DeleteHistoryEvent(r.Context(), id, eventID); err != nil {
		handleServiceError(w, h.logger, err, "delete history event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
