package handler

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"go.uber.org/zap"
)

// AttachmentHandler serves project files and images
type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	maxUploadBytes    int64
	logger            *zap.Logger
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, maxUploadBytes int64, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
	}
}

// readUpload limits the request body and returns the multipart "file" part.
// The caller closes the returned file.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", maxBytes>>20))
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return nil, nil, false
	}
	return file, header, true
}

// writeDownload streams stored bytes as an attachment
func writeDownload(w http.ResponseWriter, logger *zap.Logger, filename, contentType string, size int64, body io.Reader) {
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		logger.Warn("download interrupted", zap.String("filename", filename), zap.Error(err))
	}
}

// ListFiles godoc
// @Summary List project files
// @Tags Attachments
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.FileAttachment
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/files [get]
func (h *AttachmentHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	files, err := h.attachmentService.ListFiles(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list files")
		return
	}
	respondJSON(w, http.StatusOK, files)
}

// UploadFile godoc
// @Summary Upload project file
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param file formData file true "File to upload"
// @Param description formData string false "Description"
// @Param category formData string false "Category"
// @Success 201 {object} domain.FileAttachment
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Router /projects/{id}/files [post]
func (h *AttachmentHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	file, header, ok := readUpload(w, r, h.maxUploadBytes)
	if !ok {
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.UploadFile(r.Context(), projectID, service.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}, file)
	if err != nil {
		handleServiceError(w, h.logger, err, "upload file")
		return
	}
	respondJSON(w, http.StatusCreated, attachment)
}

// UpdateFile godoc
// @Summary Update file metadata
// @Tags Attachments
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param fileId path string true "File ID" format(uuid)
// @Param request body domain.UpdateFileRequest true "Metadata"
// @Success 200 {object} domain.FileAttachment
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/files/{fileId} [put]
func (h *AttachmentHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(w, r, "fileId", "file")
	if !ok {
		return
	}

	var req domain.UpdateFileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	file, err := h.attachmentService.UpdateFile(r.Context(), projectID, fileID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update file")
		return
	}
	respondJSON(w, http.StatusOK, file)
}

// DownloadFile godoc
// @Summary Download project file
// @Tags Attachments
// @Produce application/octet-stream
// @Param id path string true "Project ID" format(uuid)
// @Param fileId path string true "File ID" format(uuid)
// @Success 200
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/files/{fileId}/download [get]
func (h *AttachmentHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(w, r, "fileId", "file")
	if !ok {
		return
	}

	file, body, err := h.attachmentService.DownloadFile(r.Context(), projectID, fileID)
	if err != nil {
		handleServiceError(w, h.logger, err, "download file")
		return
	}
	defer body.Close()

	writeDownload(w, h.logger, file.Name, file.ContentType, file.Size, body)
}

// DeleteFile godoc
// @Summary Delete project file
// @Tags Attachments
// @Param id path string true "Project ID" format(uuid)
// @Param fileId path string true "File ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/files/{fileId} [delete]
func (h *AttachmentHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(w, r, "fileId", "file")
	if !ok {
		return
	}

	if err := h.attachmentService.DeleteFile(r.Context(), projectID, fileID); err != nil {
		handleServiceError(w, h.logger, err, "delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListImages godoc
// @Summary List project images in display order
// @Tags Attachments
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.ImageAttachment
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/images [get]
func (h *AttachmentHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	images, err := h.attachmentService.ListImages(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list images")
		return
	}
	respondJSON(w, http.StatusOK, images)
}

// UploadImage godoc
// @Summary Upload project image
// @Description Marking an image as cover clears the flag on every other image
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param file formData file true "Image"
// @Param caption formData string false "Caption"
// @Param is_cover formData bool false "Use as cover"
// @Success 201 {object} domain.ImageAttachment
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Router /projects/{id}/images [post]
func (h *AttachmentHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}

	file, header, ok := readUpload(w, r, h.maxUploadBytes)
	if !ok {
		return
	}
	defer file.Close()

	isCover, _ := strconv.ParseBool(r.FormValue("is_cover"))
	image, err := h.attachmentService.UploadImage(r.Context(), projectID, service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Caption:     r.FormValue("caption"),
		IsCover:     isCover,
	}, file)
	if err != nil {
		handleServiceError(w, h.logger, err, "upload image")
		return
	}
	respondJSON(w, http.StatusCreated, image)
}

// UpdateImage godoc
// @Summary Update image caption, order or cover flag
// @Tags Attachments
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param imageId path string true "Image ID" format(uuid)
// @Param request body domain.UpdateImageRequest true "Image"
// @Success 200 {object} domain.ImageAttachment
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/images/{imageId} [put]
func (h *AttachmentHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	imageID, ok := parseUUIDParam(w, r, "imageId", "image")
	if !ok {
		return
	}

	var req domain.UpdateImageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	image, err := h.attachmentService.UpdateImage(r.Context(), projectID, imageID, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update image")
		return
	}
	respondJSON(w, http.StatusOK, image)
}

// DownloadImage godoc
// @Summary Download project image
// @Tags Attachments
// @Produce image/*
// @Param id path string true "Project ID" format(uuid)
// @Param imageId path string true "Image ID" format(uuid)
// @Success 200
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/images/{imageId}/download [get]
func (h *AttachmentHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	imageID, ok := parseUUIDParam(w, r, "imageId", "image")
	if !ok {
		return
	}

	image, body, err := h.attachmentService.DownloadImage(r.Context(), projectID, imageID)
	if err != nil {
		handleServiceError(w, h.logger, err, "download image")
		return
	}
	defer body.Close()

	writeDownload(w, h.logger, image.Filename, image.ContentType, image.Size, body)
}

// DeleteImage godoc
// @Summary Delete project image
// @Tags Attachments
// @Param id path string true "Project ID" format(uuid)
// @Param imageId path string true "Image ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/images/{imageId} [delete]
func (h *AttachmentHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseUUIDParam(w, r, "id", "project")
	if !ok {
		return
	}
	imageID, ok := parseUUIDParam(w, r, "imageId", "image")
	if !ok {
		return
	}

	if err := h.attachmentService.DeleteImage(r.Context(), projectID, imageID); err != nil {
		handleServiceError(w, h.logger, err, "delete image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
