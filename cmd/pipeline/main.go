package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/internal/extraction"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/metrics"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/pipeline"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/secrets"
	s3store "github.com/mitch-zink/landing-ai-document-pipeline/internal/storage/s3"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/warehouse"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/warehouse/snowflake"
	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/config"
	appLogger "github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting document ingestion pipeline")

	metrics.Init()
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				appLogger.Warn("Metrics listener stopped", zap.Error(err))
			}
		}()
	}

	store, err := secrets.NewStore(cfg.Secrets.Path)
	if err != nil {
		appLogger.Fatal("Failed to open secret store", zap.Error(err))
	}

	apiKey, err := store.Get(secrets.LandingAIAPIKey)
	if err != nil {
		appLogger.Fatal("Extraction API key is required", zap.Error(err))
	}

	accessKeyID, err := store.Get(secrets.AWSAccessKeyID)
	if err != nil {
		appLogger.Fatal("AWS access key is required", zap.Error(err))
	}

	secretAccessKey, err := store.Get(secrets.AWSSecretAccessKey)
	if err != nil {
		appLogger.Fatal("AWS secret key is required", zap.Error(err))
	}

	warehouseCreds, err := snowflake.CredentialsFromStore(store)
	if err != nil {
		appLogger.Fatal("Warehouse credentials are required", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	objectStore, err := s3store.NewClient(ctx, accessKeyID, secretAccessKey, cfg.S3.Region, cfg.S3.Endpoint)
	if err != nil {
		appLogger.Fatal("Failed to create S3 client", zap.Error(err))
	}

	extractor := extraction.NewClient(apiKey, cfg.Extraction.BaseURL, time.Duration(cfg.Extraction.TimeoutSec)*time.Second)

	connector := snowflake.NewConnector(warehouseCreds, cfg.Warehouse.Name, cfg.Warehouse.Role)
	table := warehouse.NewTableName(cfg.Warehouse.Database, cfg.Warehouse.Schema, cfg.Warehouse.Table)
	provisioner := warehouse.NewProvisioner(connector, cfg.Warehouse.Name, table)
	loader := warehouse.NewLoader(connector, table)

	driver := pipeline.NewDriver(store, objectStore, extractor, loader, provisioner)

	if err := driver.Run(ctx); err != nil {
		appLogger.Error("Pipeline run failed", zap.Error(err))
		appLogger.Sync()
		os.Exit(1)
	}

	appLogger.Info("Pipeline run completed")
}
