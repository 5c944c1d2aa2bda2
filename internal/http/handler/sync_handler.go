package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

// SyncHandler serves Excel exports and imports
type SyncHandler struct {
	syncService    *service.SyncService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewSyncHandler(syncService *service.SyncService, maxUploadBytes int64, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		syncService:    syncService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *SyncHandler) writeExport(w http.ResponseWriter, export *service.Export) {
	writeDownload(w, h.logger, export.FileName, service.XLSXContentType, int64(len(export.Data)), bytes.NewReader(export.Data))
}

// readWorkbook returns the uploaded workbook bytes and the dryRun flag
func (h *SyncHandler) readWorkbook(w http.ResponseWriter, r *http.Request) ([]byte, bool, bool) {
	file, _, ok := readUpload(w, r, h.maxUploadBytes)
	if !ok {
		return nil, false, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read uploaded workbook")
		return nil, false, false
	}

	dryRun := queryBool(r, "dryRun")
	if v := r.FormValue("dryRun"); v != "" {
		dryRun, _ = strconv.ParseBool(v)
	}
	return data, dryRun, true
}

// ExportProjects godoc
// @Summary Export projects to Excel
// @Description Accepts the same filters as the project list
// @Tags Sync
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param include_archived query bool false "Include archived projects" default(true)
// @Param group_id query string false "Filter by product group" format(uuid)
// @Param brand query string false "Filter by brand"
// @Param status query string false "Comma-separated statuses"
// @Success 200
// @Failure 400 {object} domain.APIError
// @Router /export/projects [get]
func (h *SyncHandler) ExportProjects(w http.ResponseWriter, r *http.Request) {
	filters, err := parseProjectFilters(r, true)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	export, err := h.syncService.ExportProjects(r.Context(), filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "export projects")
		return
	}
	h.writeExport(w, export)
}

// ExportGTMOverview godoc
// @Summary Export GTM plans of many projects, one sheet per project
// @Tags Sync
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param include_archived query bool false "Include archived projects" default(true)
// @Param group_id query string false "Filter by product group" format(uuid)
// @Success 200
// @Failure 400 {object} domain.APIError
// @Router /export/gtm-overview [get]
func (h *SyncHandler) ExportGTMOverview(w http.ResponseWriter, r *http.Request) {
	filters, err := parseProjectFilters(r, true)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	export, err := h.syncService.ExportGTMOverview(r.Context(), filters)
	if err != nil {
		handleServiceError(w, h.logger, err, "export GTM overview")
		return
	}
	h.writeExport(w, export)
}

// ExportProjectBundle godoc
// @Summary Export one project with its GTM plan and characteristics
// @Tags Sync
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Project ID" format(uuid)
// @Success 200
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/export [get]
func (h *SyncHandler) ExportProjectBundle(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	export, err := h.syncService.ExportProjectBundle(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "export project")
		return
	}
	h.writeExport(w, export)
}

// ExportStages godoc
// @Summary Export a project's GTM stages and tasks
// @Tags Sync
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Project ID" format(uuid)
// @Success 200
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/export/stages [get]
func (h *SyncHandler) ExportStages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	export, err := h.syncService.ExportStages(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "export GTM stages")
		return
	}
	h.writeExport(w, export)
}

// ExportCharacteristics godoc
// @Summary Export a project's characteristics
// @Tags Sync
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Project ID" format(uuid)
// @Success 200
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/export/characteristics [get]
func (h *SyncHandler) ExportCharacteristics(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	export, err := h.syncService.ExportCharacteristics(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "export characteristics")
		return
	}
	h.writeExport(w, export)
}

// ImportProjects godoc
// @Summary Import projects from Excel
// @Description Rows with a known project ID update that project, other rows create projects.
// @Description Any row error rejects the whole workbook with 422.
// @Tags Sync
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Param dryRun query bool false "Parse and report without saving"
// @Success 200 {object} spreadsheet.ProjectImportResult
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Failure 422 {object} ImportRejectedResponse
// @Router /import/projects [post]
func (h *SyncHandler) ImportProjects(w http.ResponseWriter, r *http.Request) {
	data, dryRun, ok := h.readWorkbook(w, r)
	if !ok {
		return
	}

	result, err := h.syncService.ImportProjects(r.Context(), data, dryRun)
	if err != nil {
		handleServiceError(w, h.logger, err, "import projects")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ImportStages godoc
// @Summary Replace a project's GTM stages and tasks from Excel
// @Tags Sync
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param file formData file true "Workbook"
// @Param dryRun query bool false "Parse and report without saving"
// @Success 200 {object} spreadsheet.StageImportResult
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Failure 422 {object} ImportRejectedResponse
// @Router /projects/{id}/import/stages [post]
func (h *SyncHandler) ImportStages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	data, dryRun, ok := h.readWorkbook(w, r)
	if !ok {
		return
	}

	result, err := h.syncService.ImportStages(r.Context(), projectID, data, dryRun)
	if err != nil {
		handleServiceError(w, h.logger, err, "import GTM stages")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ImportCharacteristics godoc
// @Summary Reconcile a project's characteristics with an Excel workbook
// @Tags Sync
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param file formData file true "Workbook"
// @Param dryRun query bool false "Parse and report without saving"
// @Success 200 {object} spreadsheet.CharacteristicImportResult
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Failure 422 {object} ImportRejectedResponse
// @Router /projects/{id}/import/characteristics [post]
func (h *SyncHandler) ImportCharacteristics(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	data, dryRun, ok := h.readWorkbook(w, r)
	if !ok {
		return
	}

	result, err := h.syncService.ImportCharacteristics(r.Context(), projectID, data, dryRun)
	if err != nil {
		handleServiceError(w, h.logger, err, "import characteristics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
