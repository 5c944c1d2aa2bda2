package handler

import (
	"net/http"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

// TemplateHandler serves reusable GTM and characteristic templates
type TemplateHandler struct {
	templateService *service.TemplateService
	logger          *zap.Logger
}

func NewTemplateHandler(templateService *service.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// ListGTM godoc
// @Summary List GTM templates
// @Tags Templates
// @Produce json
// @Success 200 {array} domain.GTMTemplate
// @Router /templates/gtm [get]
func (h *TemplateHandler) ListGTM(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.ListGTM(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list GTM templates")
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

// GetGTM godoc
// @Summary Get GTM template
// @Tags Templates
// @Produce json
// @Param templateId path string true "Template ID" format(uuid)
// @Success 200 {object} domain.GTMTemplate
// @Failure 404 {object} domain.APIError
// @Router /templates/gtm/{templateId} [get]
func (h *TemplateHandler) GetGTM(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "templateId", "template")
	if !ok {
		return
	}

	template, err := h.templateService.GetGTM(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get GTM template")
		return
	}
	respondJSON(w, http.StatusOK, template)
}

// CreateGTM godoc
// @Summary Create GTM template
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body domain.GTMTemplateRequest true "Template"
// @Success 201 {object} domain.GTMTemplate
// @Failure 400 {object} domain.APIError
// @Router /templates/gtm [post]
func (h *TemplateHandler) CreateGTM(w http.ResponseWriter, r *http.Request) {
	var req domain.GTMTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	template, err := h.templateService.CreateGTM(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create GTM template")
		return
	}

	w.Header().Set("Location", "/api/v1/templates/gtm/"+template.ID.String())
	respondJSON(w, http.StatusCreated, template)
}

// UpdateGTM godoc
// @Summary Update GTM template
// @Tags Templates
// @Accept json
// @Produce json
// @Param templateId path string true "Template ID" format(uuid)
// @Param request body domain.GTMTemplateRequest true "Template"
// @Success 200 {object} domain.GTMTemplate
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /templates/gtm/{templateId} [put]
func (h *TemplateHandler) UpdateGTM(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "templateId", "template")
	if !ok {
		return
	}

	var req domain.GTMTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	template, err := h.templateService.UpdateGTM(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update GTM template")
		return
	}
	respondJSON(w, http.StatusOK, template)
}

// DeleteGTM godoc
// @Summary Delete GTM template
// @Tags Templates
// @Param templateId path string true "Template ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /templates/gtm/{templateId} [delete]
func (h *TemplateHandler) DeleteGTM(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "templateId", "template")
	if !ok {
		return
	}

	if err := h.templateService.DeleteGTM(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete GTM template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCharacteristic godoc
// @Summary List characteristic templates
// @Tags Templates
// @Produce json
// @Success 200 {array} domain.CharacteristicTemplate
// @Router /templates/characteristics [get]
func (h *TemplateHandler) ListCharacteristic(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.ListCharacteristic(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list characteristic templates")
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

// GetCharacteristic godoc
// @Summary Get characteristic template
// @Tags Templates
// @Produce json
// @Param templateId path string true "Template ID" format(uuid)
// @Success 200 {object} domain.CharacteristicTemplate
// @Failure 404 {object} domain.APIError
// @Router /templates/characteristics/{templateId} [get]
func (h *TemplateHandler) GetCharacteristic(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "templateId", "template")
	if !ok {
		return
	}

	template, err := h.templateService.GetCharacteristic(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get characteristic template")
		return
	}
	respondJSON(w, http.StatusOK, template)
}

// CreateCharacteristic godoc
// @Summary Create characteristic template
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body domain.CharacteristicTemplateRequest true "Template"
// @Success 201 {object} domain.CharacteristicTemplate
// @Failure 400 {object} domain.APIError
// @Router /templates/characteristics [post]
func (h *TemplateHandler) CreateCharacteristic(w http.ResponseWriter, r *http.Request) {
	var req domain.CharacteristicTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	template, err := h.templateService.CreateCharacteristic(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create characteristic template")
		return
	}

	w.Header().Set("Location", "/api/v1/templates/characteristics/"+template.ID.String())
	respondJSON(w, http.StatusCreated, template)
}

// UpdateCharacteristic godoc
// @Summary Update characteristic template
// @Tags Templates
// @Accept json
// @Produce json
// @Param templateId path string true "Template ID" format(uuid)
// @Param request body domain.CharacteristicTemplateRequest true "Template"
// @Success 200 {object} domain.CharacteristicTemplate
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /templates/characteristics/{templateId} [put]
func (h *TemplateHandler) UpdateCharacteristic(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "templateId", "template")
	if !ok {
		return
	}

	var req domain.CharacteristicTemplateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	template, err := h.templateService.UpdateCharacteristic(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update characteristic template")
		return
	}
	respondJSON(w, http.StatusOK, template)
}

// DeleteCharacteristic godoc
// @Summary Delete characteristic template
// @Tags Templates
// @Param templateId path string true "Template ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /templates/characteristics/{templateId} [delete]
func (h *TemplateHandler) DeleteCharacteristic(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "templateId", "template")
	if !ok {
		return
	}

	if err := h.templateService.DeleteCharacteristic(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete characteristic template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
