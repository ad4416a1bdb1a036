package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Warehouse  WarehouseConfig
	S3         S3Config
	Extraction ExtractionConfig
	Secrets    SecretsConfig
	Metrics    MetricsConfig
	Logging    LoggingConfig
}

type WarehouseConfig struct {
	Name     string
	Database string
	Schema   string
	Table    string
	Role     string
}

type S3Config struct {
	Region   string
	Endpoint string
}

type ExtractionConfig struct {
	BaseURL    string
	TimeoutSec int
}

type SecretsConfig struct {
	Path string
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/doc-pipeline")

	viper.SetEnvPrefix("DOC_PIPELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("warehouse.name", "PREFECT_WH")
	viper.SetDefault("warehouse.database", "ai")
	viper.SetDefault("warehouse.schema", "AGENTIC_DOC_EXTRACTION")
	viper.SetDefault("warehouse.table", "DOCS")

	viper.SetDefault("s3.region", "us-east-1")

	viper.SetDefault("extraction.baseURL", "https://api.va.landing.ai/v1/tools/agentic-document-analysis")
	viper.SetDefault("extraction.timeoutSec", 300)

	viper.SetDefault("secrets.path", "./secrets.yaml")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.addr", ":9090")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
