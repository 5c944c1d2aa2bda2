package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/straye-as/project-tracker/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, filepath.Join("data", "project_tracker.json"), cfg.Data.PrimaryStore)
	assert.Equal(t, filepath.Join("data", "backups"), cfg.Data.BackupsDir)
	assert.Equal(t, filepath.Join("data", "files"), cfg.Data.FilesDir)
	assert.Equal(t, filepath.Join("data", "images"), cfg.Data.ImagesDir)

	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, int64(50<<20), cfg.Storage.MaxUploadBytes())
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Backup.Cron)
	assert.Equal(t, 14, cfg.Backup.Keep)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("STORAGE_MODE", "azure")
	t.Setenv("BACKUP_KEEP", "3")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Data.Dir)
	assert.Equal(t, filepath.Join(dir, "project_tracker.json"), cfg.Data.PrimaryStore)
	assert.Equal(t, filepath.Join(dir, "backups"), cfg.Data.BackupsDir)
	assert.Equal(t, "azure", cfg.Storage.Mode)
	assert.Equal(t, 3, cfg.Backup.Keep)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithSecrets_WithoutVault(t *testing.T) {
	t.Setenv("USE_AZURE_KEY_VAULT", "")
	t.Setenv("STORAGE_CLOUDCONNECTIONSTRING", "UseDevelopmentStorage=true")

	cfg, err := config.LoadWithSecrets(context.Background(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.Storage.CloudConnectionString)
}

func TestLoadWithSecrets_VaultIgnoredInDevelopment(t *testing.T) {
	t.Setenv("USE_AZURE_KEY_VAULT", "true")
	t.Setenv("APP_ENVIRONMENT", "development")

	cfg, err := config.LoadWithSecrets(context.Background(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoadWithSecrets_VaultRequiresName(t *testing.T) {
	t.Setenv("USE_AZURE_KEY_VAULT", "true")
	t.Setenv("APP_ENVIRONMENT", "production")
	t.Setenv("AZURE_KEY_VAULT_NAME", "")
	t.Setenv("SECRETS_KEYVAULTNAME", "")

	_, err := config.LoadWithSecrets(context.Background(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_KEY_VAULT_NAME")
}
