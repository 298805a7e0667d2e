package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
api:
  base_url: https://shop.example.com
  token: from-file
fallback:
  backend: redis
  redis_addr: redis:6379
engine:
  late_policy: apply
contact:
  telegram: "@help"
`), 0o600))

	t.Setenv("STOREFRONT_API_TOKEN", "from-env")
	t.Setenv("STOREFRONT_API_CACHE_TTL", "5s")
	t.Setenv("STOREFRONT_ENGINE_KEEP_OPEN_ON_INVALID", "true")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
	assert.Equal(t, "from-env", cfg.API.Token, "env wins over the file")
	assert.Equal(t, 5*time.Second, cfg.API.CacheTTL)
	assert.Equal(t, config.BackendRedis, cfg.Fallback.Backend)
	assert.Equal(t, "apply", cfg.Engine.LatePolicy)
	assert.True(t, cfg.Engine.KeepOpenOnInvalid)
	assert.Equal(t, "@help", cfg.Contact.Telegram)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout, "defaults survive partial files")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Fallback.Backend = "s3"
	cfg.Engine.LatePolicy = "later"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown fallback backend "s3"`)
	assert.Contains(t, err.Error(), `unknown late policy "later"`)
	assert.Contains(t, err.Error(), `unknown log level "loud"`)
}

func TestValidate_EncryptionKeys(t *testing.T) {
	cfg := config.Default()
	cfg.Fallback.EncryptionKey = "not base64!"
	assert.ErrorContains(t, cfg.Validate(), "not base64")

	cfg = config.Default()
	cfg.Fallback.PreviousKeys = []string{"AAAA"}
	assert.ErrorContains(t, cfg.Validate(), "need an active encryption key")

	t.Setenv("STOREFRONT_FALLBACK_PREVIOUS_KEYS", "AAAA,BBBB")
	t.Setenv("STOREFRONT_FALLBACK_ENCRYPTION_KEY", "CCCC")
	loaded, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA", "BBBB"}, loaded.Fallback.PreviousKeys)
}
