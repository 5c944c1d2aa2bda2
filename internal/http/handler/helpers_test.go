package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/straye-as/project-tracker/internal/config"
	"github.com/straye-as/project-tracker/internal/domain"
	"github.com/straye-as/project-tracker/internal/http/handler"
	"github.com/straye-as/project-tracker/internal/http/middleware"
	"github.com/straye-as/project-tracker/internal/http/router"
	"github.com/straye-as/project-tracker/internal/repository"
	"github.com/straye-as/project-tracker/internal/service"
	"github.com/straye-as/project-tracker/internal/spreadsheet"
	"github.com/straye-as/project-tracker/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMaxUpload = 1 << 20

// newTestServer wires the full HTTP stack against a temporary document store
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	log := zap.NewNop()
	dir := t.TempDir()

	store, err := repository.OpenStore(filepath.Join(dir, "project_tracker.json"), log)
	require.NoError(t, err)
	files, err := storage.NewLocalStorage(filepath.Join(dir, "files"))
	require.NoError(t, err)
	images, err := storage.NewLocalStorage(filepath.Join(dir, "images"))
	require.NoError(t, err)

	groupRepo := repository.NewGroupRepository(store)
	projectRepo := repository.NewProjectRepository(store)
	templateRepo := repository.NewTemplateRepository(store)

	attachments := service.NewAttachmentService(projectRepo, files, images, log)
	projects := service.NewProjectService(projectRepo, groupRepo, attachments, log)

	cfg := &config.Config{
		App:       config.AppConfig{Environment: "development"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	rt := router.NewRouter(cfg, log, store, middleware.NewRateLimiter(&cfg.RateLimit, log), router.Handlers{
		Group:          handler.NewGroupHandler(service.NewGroupService(groupRepo, log), log),
		Project:        handler.NewProjectHandler(projects, log),
		GTM:            handler.NewGTMHandler(service.NewGTMService(projectRepo, templateRepo, log), log),
		Characteristic: handler.NewCharacteristicHandler(service.NewCharacteristicService(projectRepo, templateRepo, log), log),
		Template:       handler.NewTemplateHandler(service.NewTemplateService(templateRepo, log), log),
		Attachment:     handler.NewAttachmentHandler(attachments, testMaxUpload, log),
		Dashboard:      handler.NewDashboardHandler(service.NewDashboardService(projectRepo, groupRepo, log), log),
		Backup:         handler.NewBackupHandler(service.NewBackupService(store, filepath.Join(dir, "backups"), log), log),
		Sync:           handler.NewSyncHandler(service.NewSyncService(spreadsheet.NewCodec(log), projectRepo, groupRepo, log), testMaxUpload, log),
	})
	return rt.Setup()
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

// doUpload posts a multipart form with one "file" part plus extra fields
func doUpload(t *testing.T, srv http.Handler, path, filename, contentType string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func createGroup(t *testing.T, srv http.Handler, name string) domain.ProductGroup {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/v1/groups", domain.CreateGroupRequest{Name: name})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.ProductGroup](t, rr)
}

func createProject(t *testing.T, srv http.Handler, group domain.ProductGroup, name string) domain.Project {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/v1/projects", domain.CreateProjectRequest{
		GroupID: group.ID,
		Name:    name,
		Brand:   "Alpha",
		Market:  "NO",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.Project](t, rr)
}
