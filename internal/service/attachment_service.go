package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/storage"
	"go.uber.org/zap"
)

// FileUpload describes an incoming project file
type FileUpload struct {
	Filename    string
	ContentType string
	Description string
	Category    string
}

// ImageUpload describes an incoming project image
type ImageUpload struct {
	Filename    string
	ContentType string
	Caption     string
	IsCover     bool
}

// AttachmentService stores project files and images. Metadata lives in the project document,
// bytes go to the files and images storages.
type AttachmentService struct {
	projectRepo *repository.ProjectRepository
	files       storage.Storage
	images      storage.Storage
	logger      *zap.Logger
}

func NewAttachmentService(projectRepo *repository.ProjectRepository, files, images storage.Storage, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		projectRepo: projectRepo,
		files:       files,
		images:      images,
		logger:      logger,
	}
}

// ============================================================================
// Files
// ============================================================================

func (s *AttachmentService) ListFiles(ctx context.Context, projectID uuid.UUID) ([]domain.FileAttachment, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return project.Files, nil
}

// UploadFile stores the bytes and attaches the file to the project.
// The stored bytes are removed again when the project write fails.
func (s *AttachmentService) UploadFile(ctx context.Context, projectID uuid.UUID, upload FileUpload, data io.Reader) (*domain.FileAttachment, error) {
	name := cleanFilename(upload.Filename)
	if name == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	contentType := contentTypeOrDefault(upload.ContentType)
	storagePath, size, err := s.files.Upload(ctx, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	file := domain.FileAttachment{
		ID:          uuid.New(),
		Name:        name,
		Description: upload.Description,
		Category:    strings.TrimSpace(upload.Category),
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		UploadedAt:  nowUTC(),
	}

	_, err = s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		p.Files = append(p.Files, file)
		recordHistory(p, file.UploadedAt, "File uploaded", name)
		return nil
	})
	if err != nil {
		s.cleanup(ctx, s.files, storagePath)
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	s.logger.Info("Project file uploaded",
		zap.String("project_id", projectID.String()),
		zap.String("file_id", file.ID.String()),
		zap.Int64("size", size),
	)
	return &file, nil
}

// UpdateFile edits file metadata; the stored bytes are unchanged
func (s *AttachmentService) UpdateFile(ctx context.Context, projectID, fileID uuid.UUID, req *domain.UpdateFileRequest) (*domain.FileAttachment, error) {
	name := cleanFilename(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var updated domain.FileAttachment
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Files {
			if p.Files[i].ID == fileID {
				p.Files[i].Name = name
				p.Files[i].Description = req.Description
				p.Files[i].Category = strings.TrimSpace(req.Category)
				updated = p.Files[i]
				return nil
			}
		}
		return ErrFileNotFound
	})
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return &updated, nil
}

// DownloadFile opens the stored bytes. The caller closes the reader.
func (s *AttachmentService) DownloadFile(ctx context.Context, projectID, fileID uuid.UUID) (*domain.FileAttachment, io.ReadCloser, error) {
	file, err := s.findFile(ctx, projectID, fileID)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.files.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to download file: %w", err)
	}
	return file, reader, nil
}

func (s *AttachmentService) DeleteFile(ctx context.Context, projectID, fileID uuid.UUID) error {
	var removed domain.FileAttachment
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Files {
			if p.Files[i].ID == fileID {
				removed = p.Files[i]
				p.Files = append(p.Files[:i], p.Files[i+1:]...)
				recordHistory(p, nowUTC(), "File deleted", removed.Name)
				return nil
			}
		}
		return ErrFileNotFound
	})
	if err != nil {
		return mapNotFound(err, ErrProjectNotFound)
	}

	s.cleanup(ctx, s.files, removed.StoragePath)
	return nil
}

func (s *AttachmentService) findFile(ctx context.Context, projectID, fileID uuid.UUID) (*domain.FileAttachment, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	for i := range project.Files {
		if project.Files[i].ID == fileID {
			return &project.Files[i], nil
		}
	}
	return nil, ErrFileNotFound
}

// ============================================================================
// Images
// ============================================================================

// ListImages returns images sorted by order
func (s *AttachmentService) ListImages(ctx context.Context, projectID uuid.UUID) ([]domain.ImageAttachment, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return sortImages(project.Images), nil
}

// UploadImage stores an image. Order is appended after existing images;
// marking it as cover clears the flag on every other image.
func (s *AttachmentService) UploadImage(ctx context.Context, projectID uuid.UUID, upload ImageUpload, data io.Reader) (*domain.ImageAttachment, error) {
	name := cleanFilename(upload.Filename)
	if name == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	contentType := contentTypeOrDefault(upload.ContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image", ErrInvalidInput, contentType)
	}
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	storagePath, size, err := s.images.Upload(ctx, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image := domain.ImageAttachment{
		ID:          uuid.New(),
		Filename:    name,
		Caption:     upload.Caption,
		IsCover:     upload.IsCover,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		UploadedAt:  nowUTC(),
	}

	_, err = s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		image.Order = len(p.Images)
		if image.IsCover {
			clearCover(p.Images)
		}
		p.Images = append(p.Images, image)
		recordHistory(p, image.UploadedAt, "Image uploaded", name)
		return nil
	})
	if err != nil {
		s.cleanup(ctx, s.images, storagePath)
		return nil, mapNotFound(err, ErrProjectNotFound)
	}

	s.logger.Info("Project image uploaded",
		zap.String("project_id", projectID.String()),
		zap.String("image_id", image.ID.String()),
		zap.Bool("is_cover", image.IsCover),
	)
	return &image, nil
}

func (s *AttachmentService) UpdateImage(ctx context.Context, projectID, imageID uuid.UUID, req *domain.UpdateImageRequest) (*domain.ImageAttachment, error) {
	var updated domain.ImageAttachment
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Images {
			if p.Images[i].ID != imageID {
				continue
			}
			if req.IsCover {
				clearCover(p.Images)
			}
			p.Images[i].Caption = req.Caption
			p.Images[i].Order = req.Order
			p.Images[i].IsCover = req.IsCover
			updated = p.Images[i]
			return nil
		}
		return ErrImageNotFound
	})
	if err != nil {
		return nil, mapNotFound(err, ErrProjectNotFound)
	}
	return &updated, nil
}

// DownloadImage opens the stored bytes. The caller closes the reader.
func (s *AttachmentService) DownloadImage(ctx context.Context, projectID, imageID uuid.UUID) (*domain.ImageAttachment, io.ReadCloser, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrProjectNotFound)
	}

	for i := range project.Images {
		if project.Images[i].ID != imageID {
			continue
		}
		image := project.Images[i]
		reader, err := s.images.Download(ctx, image.StoragePath)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, nil, ErrImageNotFound
			}
			return nil, nil, fmt.Errorf("failed to download image: %w", err)
		}
		return &image, reader, nil
	}
	return nil, nil, ErrImageNotFound
}

func (s *AttachmentService) DeleteImage(ctx context.Context, projectID, imageID uuid.UUID) error {
	var removed domain.ImageAttachment
	_, err := s.projectRepo.Mutate(ctx, projectID, func(p *domain.Project) error {
		for i := range p.Images {
			if p.Images[i].ID == imageID {
				removed = p.Images[i]
				p.Images = append(p.Images[:i], p.Images[i+1:]...)
				recordHistory(p, nowUTC(), "Image deleted", removed.Filename)
				return nil
			}
		}
		return ErrImageNotFound
	})
	if err != nil {
		return mapNotFound(err, ErrProjectNotFound)
	}

	s.cleanup(ctx, s.images, removed.StoragePath)
	return nil
}

// Purge removes the stored bytes of every file and image of a deleted project
func (s *AttachmentService) Purge(ctx context.Context, project *domain.Project) {
	for _, f := range project.Files {
		s.cleanup(ctx, s.files, f.StoragePath)
	}
	for _, img := range project.Images {
		s.cleanup(ctx, s.images, img.StoragePath)
	}
}

// cleanup deletes stored bytes, best effort
func (s *AttachmentService) cleanup(ctx context.Context, store storage.Storage, storagePath string) {
	if storagePath == "" {
		return
	}
	if err := store.Delete(ctx, storagePath); err != nil {
		s.logger.Warn("failed to delete attachment from storage",
			zap.Error(err),
			zap.String("storage_path", storagePath),
		)
	}
}

func clearCover(images []domain.ImageAttachment) {
	for i := range images {
		images[i].IsCover = false
	}
}

func sortImages(images []domain.ImageAttachment) []domain.ImageAttachment {
	sorted := append([]domain.ImageAttachment{}, images...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// cleanFilename strips any directory part a client may send
func cleanFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func contentTypeOrDefault(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
