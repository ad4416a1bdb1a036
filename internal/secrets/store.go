// Package secrets provides the run-time secret store for the pipeline.
// Secrets are resolved by name from a local file, with environment
// variables taking precedence so deployments can inject credentials
// without touching disk.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

// Names of the secrets the pipeline consumes.
const (
	LandingAIAPIKey     = "landing-ai-api-key"
	S3BucketName        = "s3-bucket-name"
	AWSAccessKeyID      = "aws-access-key-id"
	AWSSecretAccessKey  = "aws-secret-access-key"
	SnowflakeUser       = "snowflake-user"
	SnowflakeAccount    = "snowflake-account"
	SnowflakePrivateKey = "snowflake-private-key"
)

// ErrSecretNotFound marks a missing required secret. Absence of any
// required secret is a fatal precondition failure for the run.
var ErrSecretNotFound = errors.New("secret not found")

type Store struct {
	path string
	v    *viper.Viper
}

func NewStore(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read secrets file: %w", err)
			}
		}
		logger.Debug("Secrets file not present, relying on environment", zap.String("path", path))
	}

	return &Store{path: path, v: v}, nil
}

// Get resolves a secret by name. The environment variable form of the
// name (upper-cased, dashes to underscores) wins over the file entry.
func (s *Store) Get(name string) (string, error) {
	if value, ok := os.LookupEnv(envName(name)); ok && value != "" {
		return value, nil
	}

	value := s.v.GetString(name)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}

	return value, nil
}

// Set stages a secret value; Save persists the staged values. Used by
// the provisioning command only.
func (s *Store) Set(name, value string) {
	s.v.Set(name, value)
}

func (s *Store) Save() error {
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}

	logger.Info("Secrets file written", zap.String("path", s.path))
	return nil
}

func envName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
