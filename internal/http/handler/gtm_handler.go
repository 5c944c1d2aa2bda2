package handler

import (
	"net/http"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

// GTMHandler serves a project's go-to-market plan: stages, tasks, subtasks and task comments
type GTMHandler struct {
	gtmService *service.GTMService
	logger     *zap.Logger
}

func NewGTMHandler(gtmService *service.GTMService, logger *zap.Logger) *GTMHandler {
	return &GTMHandler{
		gtmService: gtmService,
		logger:     logger,
	}
}

// ListStages godoc
// @Summary List GTM stages in plan order
// @Tags GTM
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.GTMStage
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/stages [get]
func (h *GTMHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	stages, err := h.gtmService.ListStages(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list GTM stages")
		return
	}
	respondJSON(w, http.StatusOK, stages)
}

// AddStage godoc
// @Summary Add GTM stage
// @Description Order 0 appends the stage after the existing ones
// @Tags GTM
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.StageRequest true "Stage"
// @Success 201 {object} domain.GTMStage
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/stages [post]
func (h *GTMHandler) AddStage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.StageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stage, err := h.gtmService.AddStage(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add GTM stage")
		return
	}
	respondJSON(w, http.StatusCreated, stage)
}

// UpdateStage godoc
// @Summary Update GTM stage
// @Tags GTM
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param stageId path string true "Stage ID" format(uuid)
// @Param request body domain.StageRequest true "Stage"
// @Success 200 {object} domain.GTMStage
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/stages/{stageId} [put]
func (h *GTMHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	stageID, ok := parseUUIDParam(w, r, "stageId", "stage")
	if !ok {
		return
	}

	var req domain.StageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stage, err := h.gtmService.UpdateStage(r.Context(), projectID, stageID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update GTM stage")
		return
	}
	respondJSON(w, http.StatusOK, stage)
}

// DeleteStage godoc
// @Summary Delete GTM stage
// @Description Tasks linked to the stage are kept and unlinked
// @Tags GTM
// @Param id path string true "Project ID" format(uuid)
// @Param stageId path string true "Stage ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/stages/{stageId} [delete]
func (h *GTMHandler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	stageID, ok := parseUUIDParam(w, r, "stageId", "stage")
	if !ok {
		return
	}

	if err := h.gtmService.DeleteStage(r.Context(), projectID, stageID); err != nil {
		handleServiceError(w, h.logger, err, "delete GTM stage")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyTemplate godoc
// @Summary Replace the GTM plan with a template's stages
// @Tags GTM
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.ApplyTemplateRequest true "Template"
// @Success 200 {array} domain.GTMStage
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/stages/apply-template [post]
func (h *GTMHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.ApplyTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stages, err := h.gtmService.ApplyTemplate(r.Context(), projectID, req.TemplateID)
	if err != nil {
		handleServiceError(w, h.logger, err, "apply GTM template")
		return
	}
	respondJSON(w, http.StatusOK, stages)
}

// SetCurrentStage godoc
// @Summary Set or clear the project's current GTM stage
// @Tags GTM
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.SetCurrentStageRequest true "Stage, null to clear"
// @Success 200 {object} domain.Project
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/current-stage [put]
func (h *GTMHandler) SetCurrentStage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.SetCurrentStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.gtmService.SetCurrentStage(r.Context(), projectID, req.StageID)
	if err != nil {
		handleServiceError(w, h.logger, err, "set current GTM stage")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// ============================================================================
// Tasks
// ============================================================================

// ListTasks godoc
// @Summary List project tasks
// @Description Important tasks first, then by order and due date
// @Tags Tasks
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param status query string false "Comma-separated statuses" Enums(todo, in_progress, done)
// @Param only_active query bool false "Hide done tasks"
// @Param stage_id query string false "Filter by GTM stage" format(uuid)
// @Success 200 {array} domain.Task
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks [get]
func (h *GTMHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	filters := service.TaskFilters{OnlyActive: queryBool(r, "only_active")}
	for _, s := range queryList(r, "status") {
		status := domain.TaskStatus(s)
		switch status {
		case domain.TaskStatusTodo, domain.TaskStatusInProgress, domain.TaskStatusDone:
			filters.Statuses = append(filters.Statuses, status)
		default:
			respondWithError(w, http.StatusBadRequest, "status must be one of: todo in_progress done")
			return
		}
	}
	stageID, err := queryUUID(r, "stage_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters.StageID = stageID

	tasks, err := h.gtmService.ListTasks(r.Context(), projectID, filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "list tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// AddTask godoc
// @Summary Add task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.TaskRequest true "Task"
// @Success 201 {object} domain.Task
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks [post]
func (h *GTMHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.gtmService.AddTask(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary Update task
// @Description Subtasks and comments are kept
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body domain.TaskRequest true "Task"
// @Success 200 {object} domain.Task
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks/{taskId} [put]
func (h *GTMHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}

	var req domain.TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.gtmService.UpdateTask(r.Context(), projectID, taskID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete task
// @Tags Tasks
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks/{taskId} [delete]
func (h *GTMHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}

	if err := h.gtmService.DeleteTask(r.Context(), projectID, taskID); err != nil {
		handleServiceError(w, h.logger, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddSubtask godoc
// @Summary Add subtask
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body domain.SubtaskRequest true "Subtask"
// @Success 201 {object} domain.Subtask
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks/{taskId}/subtasks [post]
func (h *GTMHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}

	var req domain.SubtaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	subtask, err := h.gtmService.AddSubtask(r.Context(), projectID, taskID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add subtask")
		return
	}
	respondJSON(w, http.StatusCreated, subtask)
}

// UpdateSubtask godoc
// @Summary Update subtask
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param subtaskId path string true "Subtask ID" format(uuid)
// @Param request body domain.SubtaskRequest true "Subtask"
// @Success 200 {object} domain.Subtask
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks/{taskId}/subtasks/{subtaskId} [put]
func (h *GTMHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}
	subtaskID, ok := parseUUIDParam(w, r, "subtaskId", "subtask")
	if !ok {
		return
	}

	var req domain.SubtaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	subtask, err := h.gtmService.UpdateSubtask(r.Context(), projectID, taskID, subtaskID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update subtask")
		return
	}
	respondJSON(w, http.StatusOK, subtask)
}

// DeleteSubtask godoc
// @Summary Delete subtask
// @Tags Tasks
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param subtaskId path string true "Subtask ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks/{taskId}/subtasks/{subtaskId} [delete]
func (h *GTMHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}
	subtaskID, ok := parseUUIDParam(w, r, "subtaskId", "subtask")
	if !ok {
		return
	}

	if err := h.gtmService.DeleteSubtask(r.Context(), projectID, taskID, subtaskID); err != nil {
		handleServiceError(w, h.logger, err, "delete subtask")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTaskComment godoc
// @Summary Comment on a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body domain.CommentRequest true "Comment"
// @Success 201 {object} domain.Comment
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks/{taskId}/comments [post]
func (h *GTMHandler) AddTaskComment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}

	var req domain.CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.gtmService.AddTaskComment(r.Context(), projectID, taskID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add task comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// DeleteTaskComment godoc
// @Summary Delete task comment
// @Tags Tasks
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param commentId path string true "Comment ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/tasks/{taskId}/comments/{commentId} [delete]
func (h *GTMHandler) DeleteTaskComment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	taskID, ok := parseUUIDParam(w, r, "taskId", "task")
	if !ok {
		return
	}
	commentID, ok := parseUUIDParam(w, r, "commentId", "comment")
	if !ok {
		return
	}

	if err := h.gtmService.DeleteTaskComment(r.Context(), projectID, taskID, commentID); err != nil {
		handleServiceError(w, h.logger, err, "delete task comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
