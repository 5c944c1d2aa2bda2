package handler

import (
	"net/http"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

type BackupHandler struct {
	backupService *service.BackupService
	logger        *zap.Logger
}

func NewBackupHandler(backupService *service.BackupService, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
		logger:        logger,
	}
}

// @Summary List backups, newest first
// @Tags Backups
// @Produce json
// @Success 200 {array} domain.BackupInfo
// @Router /backups [get]
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list backups")
		return
	}
	respondJSON(w, http.StatusOK, backups)
}

// @Summary Create a backup of the data store
// @Tags Backups
// @Produce json
// @Success 201 {object} domain.BackupInfo
// @Router /backups [post]
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	info, err := h.backupService.Create(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "create backup")
		return
	}
	respondJSON(w, http.StatusCreated, info)
}

// @Summary Restore the data store from a backup
// @Description The current state is backed up first
// @Tags Backups
// @Accept json
// @Produce json
// @Param request body domain.RestoreBackupRequest true "Backup file"
// @Success 200 {object} domain.BackupInfo
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /backups/restore [post]
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req domain.RestoreBackupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	info, err := h.backupService.Restore(r.Context(), req.FileName)
	if err != nil {
		handleServiceError(w, h.logger, err, "restore backup")
		return
	}
	respondJSON(w, http.StatusOK, info)
}
