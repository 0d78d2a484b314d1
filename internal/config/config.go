package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Reconcile ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// OCRConfig configures image-to-text recognition.
type OCRConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	TesseractPath     string  `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	Language          string  `yaml:"language" mapstructure:"language"`
	MistralKey        string  `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel      string  `yaml:"mistral_model" mapstructure:"mistral_model"`
	AnthropicKey      string  `yaml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	AnthropicModel    string  `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxAttempts       int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	// BreakerThreshold consecutive transient failures stop calls to a hosted
	// provider for BreakerCooldown.
	BreakerThreshold int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// ExtractConfig configures field extraction.
type ExtractConfig struct {
	// LogoTable is an optional YAML file mapping company names to logo URLs.
	LogoTable string `yaml:"logo_table" mapstructure:"logo_table"`
}

// ScoringConfig configures confidence scoring.
type ScoringConfig struct {
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold" mapstructure:"low_confidence_threshold"`
}

// ReconcileConfig configures the expected-count check.
type ReconcileConfig struct {
	MinSlack   int     `yaml:"min_slack" mapstructure:"min_slack"`
	SlackRatio float64 `yaml:"slack_ratio" mapstructure:"slack_ratio"`
}

// BatchConfig configures multi-file imports.
type BatchConfig struct {
	MaxConcurrentFiles int `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and INTAKE_*
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "vendors.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.mistral_api_key", "")
	v.SetDefault("ocr.mistral_model", "mistral-ocr-latest")
	v.SetDefault("ocr.anthropic_api_key", "")
	v.SetDefault("ocr.anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("ocr.requests_per_second", 2.0)
	v.SetDefault("ocr.max_attempts", 3)
	v.SetDefault("ocr.breaker_threshold", 5)
	v.SetDefault("ocr.breaker_cooldown", "30s")
	v.SetDefault("extract.logo_table", "")
	v.SetDefault("scoring.low_confidence_threshold", 0.5)
	v.SetDefault("reconcile.min_slack", 1)
	v.SetDefault("reconcile.slack_ratio", 0.3)
	v.SetDefault("batch.max_concurrent_files", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by the given mode: "parse",
// "commit" or "serve". Threshold ranges are checked for every mode.
func (c *Config) Validate(mode string) error {
	var errs []string

	if t := c.Scoring.LowConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, "scoring.low_confidence_threshold must be between 0 and 1")
	}
	if c.Reconcile.MinSlack < 0 {
		errs = append(errs, "reconcile.min_slack must be >= 0")
	}
	if r := c.Reconcile.SlackRatio; r < 0 || r > 1 {
		errs = append(errs, "reconcile.slack_ratio must be between 0 and 1")
	}
	if n := c.Batch.MaxConcurrentFiles; n < 1 || n > 32 {
		errs = append(errs, "batch.max_concurrent_files must be between 1 and 32")
	}

	switch c.OCR.Provider {
	case "tesseract", "":
	case "mistral":
		if c.OCR.MistralKey == "" {
			errs = append(errs, "ocr.mistral_api_key is required for the mistral provider")
		}
	case "anthropic":
		if c.OCR.AnthropicKey == "" {
			errs = append(errs, "ocr.anthropic_api_key is required for the anthropic provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("ocr.provider %q is not supported", c.OCR.Provider))
	}

	switch mode {
	case "parse":
	case "commit", "serve":
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
