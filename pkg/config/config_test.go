package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "PREFECT_WH", cfg.Warehouse.Name)
	assert.Equal(t, "ai", cfg.Warehouse.Database)
	assert.Equal(t, "AGENTIC_DOC_EXTRACTION", cfg.Warehouse.Schema)
	assert.Equal(t, "DOCS", cfg.Warehouse.Table)

	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, 300, cfg.Extraction.TimeoutSec)
	assert.NotEmpty(t, cfg.Extraction.BaseURL)

	assert.Equal(t, "./secrets.yaml", cfg.Secrets.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DOC_PIPELINE_WAREHOUSE_NAME", "LOADER_WH")
	t.Setenv("DOC_PIPELINE_S3_REGION", "eu-west-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "LOADER_WH", cfg.Warehouse.Name)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
}
