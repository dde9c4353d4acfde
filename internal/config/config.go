package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	OCR     OCRConfig     `yaml:"ocr" mapstructure:"ocr"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider          string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath     string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey        string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel      string `yaml:"mistral_ocr_model" mapstructure:"mistral_ocr_model"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// ExtractConfig configures the extraction engine.
type ExtractConfig struct {
	TemplatesPath      string `yaml:"templates_path" mapstructure:"templates_path"`
	DefaultFiscalStart string `yaml:"default_fiscal_start" mapstructure:"default_fiscal_start"`
	DefaultFiscalEnd   string `yaml:"default_fiscal_end" mapstructure:"default_fiscal_end"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentFiles int `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STEALTHOCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "stealthocr.db")
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_ocr_model", "pixtral-large-latest")
	v.SetDefault("ocr.requests_per_minute", 30)
	v.SetDefault("extract.default_fiscal_start", "2025")
	v.SetDefault("extract.default_fiscal_end", "2025")
	v.SetDefault("batch.max_concurrent_files", 4)
	v.SetDefault("server.port", 8080)
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

// Validate checks the fields a command mode needs before it runs. Collected
// problems are reported together so a misconfigured run fails once, not
// field by field.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkCommon := func() {
		if c.Batch.MaxConcurrentFiles < 1 || c.Batch.MaxConcurrentFiles > 32 {
			problems = append(problems, "batch.max_concurrent_files must be between 1 and 32")
		}
		if c.OCR.Provider == "mistral" && c.OCR.MistralKey == "" {
			problems = append(problems, "ocr.mistral_api_key is required for the mistral provider")
		}
		if c.OCR.RequestsPerMinute < 1 {
			problems = append(problems, "ocr.requests_per_minute must be > 0")
		}
	}

	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "extract", "batch":
		checkCommon()
	case "serve":
		checkCommon()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "store", "runs":
		checkStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
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
