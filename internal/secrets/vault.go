package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

// Getter fetches a secret value by name
type Getter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// VaultClient reads secrets from Azure Key Vault
type VaultClient struct {
	client    *azsecrets.Client
	vaultName string
	logger    *zap.Logger
}

// VaultConfig holds configuration for the vault client
type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewVaultClient creates a Key Vault getter, wrapped in a TTL cache when enabled.
// Authentication uses DefaultAzureCredential (environment, managed identity or Azure CLI).
func NewVaultClient(cfg *VaultConfig, logger *zap.Logger) (Getter, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.Error("Failed to create Azure credential", zap.Error(err))
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		logger.Error("Failed to create Key Vault client", zap.Error(err))
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("Azure Key Vault client initialized",
		zap.String("vault_url", vaultURL),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
	)

	vc := &VaultClient{client: client, vaultName: cfg.VaultName, logger: logger}
	if !cfg.CacheEnabled {
		return vc, nil
	}
	return WithCache(vc, cfg.CacheTTL, logger), nil
}

// GetSecret retrieves a secret from Azure Key Vault
func (v *VaultClient) GetSecret(ctx context.Context, name string) (string, error) {
	v.logger.Debug("Fetching secret from Key Vault", zap.String("secret_name", name))

	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		v.logger.Error("Failed to get secret from Key Vault",
			zap.String("secret_name", name),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", name)
	}
	return *resp.Value, nil
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// CachedGetter memoizes secrets of an inner getter for a fixed TTL. Errors are not cached.
type CachedGetter struct {
	inner  Getter
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedSecret
}

// WithCache wraps inner with a TTL cache; a zero TTL means five minutes
func WithCache(inner Getter, ttl time.Duration, logger *zap.Logger) *CachedGetter {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedGetter{
		inner:  inner,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
		cache:  make(map[string]cachedSecret),
	}
}

// WithClock replaces the time source, for tests
func (c *CachedGetter) WithClock(now func() time.Time) *CachedGetter {
	c.now = now
	return c
}

// GetSecret returns the cached value while fresh, otherwise asks the inner getter
func (c *CachedGetter) GetSecret(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if cached, ok := c.cache[name]; ok {
		if c.now().Before(cached.expiresAt) {
			c.mu.Unlock()
			c.logger.Debug("Secret retrieved from cache", zap.String("secret_name", name))
			return cached.value, nil
		}
		delete(c.cache, name)
	}
	c.mu.Unlock()

	value, err := c.inner.GetSecret(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[name] = cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// ClearCache drops all cached secrets
func (c *CachedGetter) ClearCache() {
	c.mu.Lock()
	c.cache = make(map[string]cachedSecret)
	c.mu.Unlock()
}
