package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	// Change to temp dir so no stray config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "vendors.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, "tesseract", cfg.OCR.Provider)
	assert.Equal(t, "tesseract", cfg.OCR.TesseractPath)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, "mistral-ocr-latest", cfg.OCR.MistralModel)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.OCR.AnthropicModel)
	assert.InDelta(t, 2.0, cfg.OCR.RequestsPerSecond, 0.001)
	assert.Equal(t, 3, cfg.OCR.MaxAttempts)
	assert.Equal(t, 5, cfg.OCR.BreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.OCR.BreakerCooldown)
	assert.Empty(t, cfg.Extract.LogoTable)
	assert.InDelta(t, 0.5, cfg.Scoring.LowConfidenceThreshold, 0.001)
	assert.Equal(t, 1, cfg.Reconcile.MinSlack)
	assert.InDelta(t, 0.3, cfg.Reconcile.SlackRatio, 0.001)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentFiles)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 20, cfg.Server.MaxUploadMB)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.NoError(t, cfg.Validate("parse"))
	assert.NoError(t, cfg.Validate("commit"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/vendors
scoring:
  low_confidence_threshold: 0.75
reconcile:
  min_slack: 2
  slack_ratio: 0.1
log:
  level: debug
  format: console
batch:
  max_concurrent_files: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/vendors", cfg.Store.DatabaseURL)
	assert.InDelta(t, 0.75, cfg.Scoring.LowConfidenceThreshold, 0.001)
	assert.Equal(t, 2, cfg.Reconcile.MinSlack)
	assert.InDelta(t, 0.1, cfg.Reconcile.SlackRatio, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentFiles)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("INTAKE_STORE_DRIVER", "postgres")
	t.Setenv("INTAKE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("INTAKE_SERVER_PORT", "3000")
	t.Setenv("INTAKE_OCR_PROVIDER", "mistral")
	t.Setenv("INTAKE_OCR_MISTRAL_API_KEY", "mk-test")
	t.Setenv("INTAKE_RECONCILE_SLACK_RATIO", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "mistral", cfg.OCR.Provider)
	assert.Equal(t, "mk-test", cfg.OCR.MistralKey)
	assert.InDelta(t, 0.5, cfg.Reconcile.SlackRatio, 0.001)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "vendors.db"
	cfg.OCR.Provider = "tesseract"
	cfg.Scoring.LowConfidenceThreshold = 0.5
	cfg.Reconcile.MinSlack = 1
	cfg.Reconcile.SlackRatio = 0.3
	cfg.Batch.MaxConcurrentFiles = 4
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateParse_NoStoreNeeded(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	assert.NoError(t, cfg.Validate("parse"))
}

func TestValidateCommit_MissingDatabaseURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("commit")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateCommit_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("commit")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mysql" is not supported`)
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateThresholds(t *testing.T) {
	cfg := validDefaults()

	cfg.Scoring.LowConfidenceThreshold = 1.5
	err := cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "low_confidence_threshold")

	cfg.Scoring.LowConfidenceThreshold = 0.5
	cfg.Reconcile.MinSlack = -1
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_slack")

	cfg.Reconcile.MinSlack = 1
	cfg.Reconcile.SlackRatio = -0.2
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "slack_ratio")

	cfg.Reconcile.SlackRatio = 0.3
	cfg.Batch.MaxConcurrentFiles = 0
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_files must be between 1 and 32")

	cfg.Batch.MaxConcurrentFiles = 32
	assert.NoError(t, cfg.Validate("parse"))
}

func TestValidateOCRProvider(t *testing.T) {
	cfg := validDefaults()

	cfg.OCR.Provider = "mistral"
	err := cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ocr.mistral_api_key is required")

	cfg.OCR.MistralKey = "mk"
	assert.NoError(t, cfg.Validate("parse"))

	cfg.OCR.Provider = "anthropic"
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ocr.anthropic_api_key is required")

	cfg.OCR.Provider = "carrier-pigeon"
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}
