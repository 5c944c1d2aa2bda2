package handler

import (
	"net/http"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

type CharacteristicHandler struct {
	characteristicService *service.CharacteristicService
	logger                *zap.Logger
}

func NewCharacteristicHandler(characteristicService *service.CharacteristicService, logger *zap.Logger) *CharacteristicHandler {
	return &CharacteristicHandler{
		characteristicService: characteristicService,
		logger:                logger,
	}
}

// ListSections godoc
// @Summary List characteristic sections with their fields
// @Tags Characteristics
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.CharacteristicSection
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics [get]
func (h *CharacteristicHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	sections, err := h.characteristicService.ListSections(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list characteristics")
		return
	}
	respondJSON(w, http.StatusOK, sections)
}

// AddSection godoc
// @Summary Add characteristic section
// @Tags Characteristics
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.SectionRequest true "Section"
// @Success 201 {object} domain.CharacteristicSection
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/sections [post]
func (h *CharacteristicHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.SectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	section, err := h.characteristicService.AddSection(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add characteristic section")
		return
	}
	respondJSON(w, http.StatusCreated, section)
}

// UpdateSection godoc
// @Summary Rename or reorder characteristic section
// @Tags Characteristics
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param sectionId path string true "Section ID" format(uuid)
// @Param request body domain.SectionRequest true "Section"
// @Success 200 {object} domain.CharacteristicSection
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/sections/{sectionId} [put]
func (h *CharacteristicHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	sectionID, ok := parseUUIDParam(w, r, "sectionId", "section")
	if !ok {
		return
	}

	var req domain.SectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	section, err := h.characteristicService.UpdateSection(r.Context(), projectID, sectionID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update characteristic section")
		return
	}
	respondJSON(w, http.StatusOK, section)
}

// DeleteSection godoc
// @Summary Delete characteristic section and its fields
// @Tags Characteristics
// @Param id path string true "Project ID" format(uuid)
// @Param sectionId path string true "Section ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/sections/{sectionId} [delete]
func (h *CharacteristicHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	sectionID, ok := parseUUIDParam(w, r, "sectionId", "section")
	if !ok {
		return
	}

	if err := h.characteristicService.DeleteSection(r.Context(), projectID, sectionID); err != nil {
		handleServiceError(w, h.logger, err, "delete characteristic section")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddField godoc
// @Summary Add characteristic field
// @Tags Characteristics
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param sectionId path string true "Section ID" format(uuid)
// @Param request body domain.FieldRequest true "Field"
// @Success 201 {object} domain.CharacteristicField
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/sections/{sectionId}/fields [post]
func (h *CharacteristicHandler) AddField(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	sectionID, ok := parseUUIDParam(w, r, "sectionId", "section")
	if !ok {
		return
	}

	var req domain.FieldRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	field, err := h.characteristicService.AddField(r.Context(), projectID, sectionID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "add characteristic field")
		return
	}
	respondJSON(w, http.StatusCreated, field)
}

// UpdateField godoc
// @Summary Update characteristic field
// @Tags Characteristics
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param sectionId path string true "Section ID" format(uuid)
// @Param fieldId path string true "Field ID" format(uuid)
// @Param request body domain.FieldRequest true "Field"
// @Success 200 {object} domain.CharacteristicField
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/sections/{sectionId}/fields/{fieldId} [put]
func (h *CharacteristicHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	sectionID, ok := parseUUIDParam(w, r, "sectionId", "section")
	if !ok {
		return
	}
	fieldID, ok := parseUUIDParam(w, r, "fieldId", "field")
	if !ok {
		return
	}

	var req domain.FieldRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	field, err := h.characteristicService.UpdateField(r.Context(), projectID, sectionID, fieldID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update characteristic field")
		return
	}
	respondJSON(w, http.StatusOK, field)
}

// DeleteField godoc
// @Summary Delete characteristic field
// @Tags Characteristics
// @Param id path string true "Project ID" format(uuid)
// @Param sectionId path string true "Section ID" format(uuid)
// @Param fieldId path string true "Field ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/sections/{sectionId}/fields/{fieldId} [delete]
func (h *CharacteristicHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	sectionID, ok := parseUUIDParam(w, r, "sectionId", "section")
	if !ok {
		return
	}
	fieldID, ok := parseUUIDParam(w, r, "fieldId", "field")
	if !ok {
		return
	}

	if err := h.characteristicService.DeleteField(r.Context(), projectID, sectionID, fieldID); err != nil {
		handleServiceError(w, h.logger, err, "delete characteristic field")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyTemplate godoc
// @Summary Replace characteristics with a template's structure
// @Description Field values start empty
// @Tags Characteristics
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.ApplyTemplateRequest true "Template"
// @Success 200 {array} domain.CharacteristicSection
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/apply-template [post]
func (h *CharacteristicHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.ApplyTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sections, err := h.characteristicService.ApplyTemplate(r.Context(), projectID, req.TemplateID)
	if err != nil {
		handleServiceError(w, h.logger, err, "apply characteristic template")
		return
	}
	respondJSON(w, http.StatusOK, sections)
}

// CopyFromProject godoc
// @Summary Copy characteristic structure from another project
// @Description Field values start empty
// @Tags Characteristics
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body domain.CopyCharacteristicsRequest true "Source project"
// @Success 200 {array} domain.CharacteristicSection
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/characteristics/copy [post]
func (h *CharacteristicHandler) CopyFromProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	var req domain.CopyCharacteristicsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sections, err := h.characteristicService.CopyFromProject(r.Context(), projectID, req.SourceProjectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "copy characteristics")
		return
	}
	respondJSON(w, http.StatusOK, sections)
}
