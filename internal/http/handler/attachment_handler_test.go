package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentHandler_FileUploadAndDownload(t *testing.T) {
	srv := newTestServer(t)
	project := createProject(t, srv, createGroup(t, srv, "Kitchen"), "Kettle")
	base := "/api/v1/projects/" + project.ID.String() + "/files"
	content := []byte("packaging brief v2")

	rr := doUpload(t, srv, base, "brief.txt", "text/plain", content, map[string]string{
		"description": "Packaging brief",
		"category":    "design",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	file := decode[domain.FileAttachment](t, rr)
	assert.Equal(t, "brief.txt", file.Name)
	assert.Equal(t, "design", file.Category)
	assert.Equal(t, int64(len(content)), file.Size)

	rr = doJSON(t, srv, http.MethodGet, base+"/"+file.ID.String()+"/download", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, content, rr.Body.Bytes())
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "brief.txt")

	rr = doJSON(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.FileAttachment](t, rr), 1)

	rr = doJSON(t, srv, http.MethodDelete, base+"/"+file.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = doJSON(t, srv, http.MethodGet, base+"/"+file.ID.String()+"/download", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAttachmentHandler_ImageCover(t *testing.T) {
	srv := newTestServer(t)
	project := createProject(t, srv, createGroup(t, srv, "Kitchen"), "Kettle")
	base := "/api/v1/projects/" + project.ID.String() + "/images"
	png := []byte("\x89PNG\r\n\x1a\n")

	rr := doUpload(t, srv, base, "front.png", "image/png", png, map[string]string{"is_cover": "true"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	front := decode[domain.ImageAttachment](t, rr)
	assert.True(t, front.IsCover)

	rr = doUpload(t, srv, base, "back.png", "image/png", png, map[string]string{"is_cover": "true", "caption": "Back"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	back := decode[domain.ImageAttachment](t, rr)
	assert.Equal(t, 1, back.Order)

	rr = doJSON(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	images := decode[[]domain.ImageAttachment](t, rr)
	require.Len(t, images, 2)
	assert.False(t, images[0].IsCover, "a new cover clears the previous one")
	assert.True(t, images[1].IsCover)
}

func TestAttachmentHandler_RejectedUploads(t *testing.T) {
	srv := newTestServer(t)
	project := createProject(t, srv, createGroup(t, srv, "Kitchen"), "Kettle")
	base := "/api/v1/projects/" + project.ID.String()

	tests := []struct {
		name        string
		path        string
		contentType string
		content     []byte
		wantStatus  int
	}{
		{"image that is not an image", base + "/images", "text/plain", []byte("hello"), http.StatusBadRequest},
		{"file over the upload limit", base + "/files", "application/octet-stream", bytes.Repeat([]byte("x"), 2*testMaxUpload), http.StatusRequestEntityTooLarge},
		{"unknown project", "/api/v1/projects/" + uuid.NewString() + "/files", "text/plain", []byte("hello"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doUpload(t, srv, tt.path, "upload.bin", tt.contentType, tt.content, nil)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}
}
