package secrets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/straye-as/project-tracker/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVault struct {
	values map[string]string
	calls  int
}

func (f *fakeVault) GetSecret(_ context.Context, name string) (string, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("secret not found")
	}
	return v, nil
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      secrets.SecretSource
		environment string
		want        secrets.SecretSource
	}{
		{secrets.SourceAuto, "development", secrets.SourceEnvironment},
		{secrets.SourceAuto, "", secrets.SourceEnvironment},
		{secrets.SourceAuto, "production", secrets.SourceVault},
		{secrets.SourceAuto, "staging", secrets.SourceVault},
		{secrets.SourceEnvironment, "production", secrets.SourceEnvironment},
		{secrets.SourceVault, "development", secrets.SourceVault},
	}
	for _, tt := range tests {
		t.Run(string(tt.source)+"/"+tt.environment, func(t *testing.T) {
			assert.Equal(t, tt.want, secrets.ResolveSource(tt.source, tt.environment))
		})
	}
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("TRACKER_TEST_SECRET", "from-env")

	p, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceAuto, Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsVaultEnabled())

	v, err := p.GetSecret(context.Background(), "TRACKER_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = p.GetSecret(context.Background(), "TRACKER_TEST_MISSING")
	assert.Error(t, err)
}

func TestProvider_VaultRequiresName(t *testing.T) {
	_, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceVault}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvider_GetSecretOrEnvPrefersEnvironment(t *testing.T) {
	vault := &fakeVault{values: map[string]string{"storage-connection-string": "from-vault"}}
	p := secrets.NewVaultProvider(vault, zap.NewNop())

	t.Setenv("STORAGE_CLOUDCONNECTIONSTRING", "")
	v, err := p.GetSecretOrEnv(context.Background(), "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	t.Setenv("STORAGE_CLOUDCONNECTIONSTRING", "override")
	v, err = p.GetSecretOrEnv(context.Background(), "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING")
	require.NoError(t, err)
	assert.Equal(t, "override", v)
	assert.Equal(t, 1, vault.calls)
}

func TestCachedGetter(t *testing.T) {
	vault := &fakeVault{values: map[string]string{"a": "1"}}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := secrets.WithCache(vault, time.Minute, zap.NewNop()).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := cache.GetSecret(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "1", v)
	}
	assert.Equal(t, 1, vault.calls)

	now = now.Add(2 * time.Minute)
	_, err := cache.GetSecret(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, vault.calls, "expired entries are fetched again")

	_, err = cache.GetSecret(ctx, "missing")
	assert.Error(t, err)
	_, err = cache.GetSecret(ctx, "missing")
	assert.Error(t, err)
	assert.Equal(t, 4, vault.calls, "errors are not cached")

	cache.ClearCache()
	_, err = cache.GetSecret(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, vault.calls)
}
