package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/service"
	"github.com/straye-as/project-tracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAttachmentService(t *testing.T, env *testEnv) (*service.AttachmentService, storage.Storage, storage.Storage) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	images, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return service.NewAttachmentService(env.projects, files, images, zap.NewNop()), files, images
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestAttachmentService_FileLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, files, _ := newAttachmentService(t, env)
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	file, err := attachments.UploadFile(ctx, project.ID, service.FileUpload{
		Filename:    `C:\docs\brief.pdf`,
		ContentType: "application/pdf",
		Category:    " specs ",
	}, strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "brief.pdf", file.Name)
	assert.Equal(t, "specs", file.Category)
	assert.Equal(t, int64(9), file.Size)

	meta, rc, err := attachments.DownloadFile(ctx, project.ID, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", meta.ContentType)
	assert.Equal(t, "pdf bytes", readAll(t, rc))

	updated, err := attachments.UpdateFile(ctx, project.ID, file.ID, &domain.UpdateFileRequest{Name: "final.pdf", Description: "Final"})
	require.NoError(t, err)
	assert.Equal(t, "final.pdf", updated.Name)
	assert.Equal(t, file.StoragePath, updated.StoragePath)

	list, err := attachments.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, attachments.DeleteFile(ctx, project.ID, file.ID))
	_, err = files.Download(ctx, file.StoragePath)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "stored bytes are removed with the file")
	assert.ErrorIs(t, attachments.DeleteFile(ctx, project.ID, file.ID), service.ErrFileNotFound)

	_, err = attachments.UploadFile(ctx, uuid.New(), service.FileUpload{Filename: "a.txt"}, strings.NewReader("x"))
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestAttachmentService_SingleCover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, _, _ := newAttachmentService(t, env)
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	upload := func(name string, cover bool) *domain.ImageAttachment {
		img, err := attachments.UploadImage(ctx, project.ID, service.ImageUpload{
			Filename: name, ContentType: "image/png", IsCover: cover,
		}, strings.NewReader(name))
		require.NoError(t, err)
		return img
	}

	front := upload("front.png", true)
	side := upload("side.png", false)
	back := upload("back.png", true)
	assert.Equal(t, 0, front.Order)
	assert.Equal(t, 2, back.Order)

	countCovers := func() (int, uuid.UUID) {
		images, err := attachments.ListImages(ctx, project.ID)
		require.NoError(t, err)
		n, id := 0, uuid.Nil
		for _, img := range images {
			if img.IsCover {
				n++
				id = img.ID
			}
		}
		return n, id
	}

	n, cover := countCovers()
	assert.Equal(t, 1, n)
	assert.Equal(t, back.ID, cover)

	_, err := attachments.UpdateImage(ctx, project.ID, side.ID, &domain.UpdateImageRequest{Caption: "Side", Order: 1, IsCover: true})
	require.NoError(t, err)
	n, cover = countCovers()
	assert.Equal(t, 1, n)
	assert.Equal(t, side.ID, cover)

	_, rc, err := attachments.DownloadImage(ctx, project.ID, side.ID)
	require.NoError(t, err)
	assert.Equal(t, "side.png", readAll(t, rc))

	require.NoError(t, attachments.DeleteImage(ctx, project.ID, front.ID))
	_, _, err = attachments.DownloadImage(ctx, project.ID, front.ID)
	assert.ErrorIs(t, err, service.ErrImageNotFound)
}

func TestAttachmentService_RejectsNonImages(t *testing.T) {
	env := newTestEnv(t)
	attachments, _, _ := newAttachmentService(t, env)
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	_, err := attachments.UploadImage(context.Background(), project.ID, service.ImageUpload{
		Filename: "notes.txt", ContentType: "text/plain",
	}, strings.NewReader("x"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestAttachmentService_PurgeOnProjectDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attachments, files, images := newAttachmentService(t, env)
	projects := service.NewProjectService(env.projects, env.groups, attachments, zap.NewNop())
	project := env.createProject(t, env.createGroup(t, "Kitchen").ID, "Kettle")

	file, err := attachments.UploadFile(ctx, project.ID, service.FileUpload{Filename: "a.txt"}, strings.NewReader("a"))
	require.NoError(t, err)
	img, err := attachments.UploadImage(ctx, project.ID, service.ImageUpload{Filename: "a.jpg", ContentType: "image/jpeg"}, strings.NewReader("b"))
	require.NoError(t, err)

	require.NoError(t, projects.Delete(ctx, project.ID))

	_, err = files.Download(ctx, file.StoragePath)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	_, err = images.Download(ctx, img.StoragePath)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
