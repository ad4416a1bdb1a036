// Package pipeline drives one ingestion pass: list the source bucket,
// then per file download, extract, and load, strictly in listing order.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/internal/extraction"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/metrics"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/secrets"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/warehouse"
	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

type SecretSource interface {
	Get(name string) (string, error)
}

type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	List(ctx context.Context, bucket string) ([]string, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

type Extractor interface {
	Parse(ctx context.Context, fileKey string, content []byte) (*extraction.Result, error)
}

type Loader interface {
	Load(ctx context.Context, filePath string, result *extraction.Result) error
}

type Provisioner interface {
	EnsureInfrastructure(ctx context.Context) ([]warehouse.Outcome, error)
}

type Driver struct {
	secrets     SecretSource
	store       ObjectStore
	extractor   Extractor
	loader      Loader
	provisioner Provisioner
}

func NewDriver(secretSource SecretSource, store ObjectStore, extractor Extractor, loader Loader, provisioner Provisioner) *Driver {
	return &Driver{
		secrets:     secretSource,
		store:       store,
		extractor:   extractor,
		loader:      loader,
		provisioner: provisioner,
	}
}

// Run performs one pass over the bucket. Processing is sequential and
// a failure for one file aborts the remaining enumeration; per-file
// isolation and retries belong to the calling orchestrator.
func (d *Driver) Run(ctx context.Context) error {
	log := logger.GetLogger().With(zap.String("run_id", uuid.NewString()))

	bucket, err := d.secrets.Get(secrets.S3BucketName)
	if err != nil {
		return fmt.Errorf("s3 bucket name is required: %w", err)
	}

	log.Info("Processing bucket", zap.String("bucket", bucket))

	timer := prometheus.NewTimer(metrics.RunDuration)
	defer timer.ObserveDuration()

	if err := d.store.EnsureBucket(ctx, bucket); err != nil {
		return err
	}

	outcomes, err := d.provisioner.EnsureInfrastructure(ctx)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if !o.OK() {
			log.Warn("Provisioning step skipped", zap.String("step", o.Description), zap.Error(o.Err))
		}
	}

	keys, err := d.store.List(ctx, bucket)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		log.Info("No files found")
		return nil
	}

	log.Info("Processing files sequentially", zap.Int("count", len(keys)))

	for _, key := range keys {
		if err := d.processDocument(ctx, bucket, key); err != nil {
			return err
		}

		metrics.FilesProcessed.Inc()
		log.Info("Processed document", zap.String("file_key", key))
	}

	return nil
}

func (d *Driver) processDocument(ctx context.Context, bucket, key string) error {
	content, err := d.store.Download(ctx, bucket, key)
	if err != nil {
		return err
	}

	result, err := d.extractor.Parse(ctx, key, content)
	if err != nil {
		metrics.ExtractionFailures.Inc()
		return err
	}

	return d.loader.Load(ctx, key, result)
}
