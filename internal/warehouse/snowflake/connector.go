// Package snowflake builds scoped database/sql sessions against the
// warehouse using key-pair (JWT) authentication.
package snowflake

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/internal/secrets"
	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

type Credentials struct {
	User       string
	Account    string
	PrivateKey *rsa.PrivateKey
}

// CredentialsFromStore resolves the warehouse credentials once at
// process start. Any missing secret is a fatal precondition failure.
func CredentialsFromStore(store *secrets.Store) (Credentials, error) {
	user, err := store.Get(secrets.SnowflakeUser)
	if err != nil {
		return Credentials{}, err
	}

	account, err := store.Get(secrets.SnowflakeAccount)
	if err != nil {
		return Credentials{}, err
	}

	rawKey, err := store.Get(secrets.SnowflakePrivateKey)
	if err != nil {
		return Credentials{}, err
	}

	key, err := ParsePrivateKey([]byte(rawKey))
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{User: user, Account: account, PrivateKey: key}, nil
}

// ParsePrivateKey accepts a PKCS#8 RSA key as PEM, or the same
// base64-encoded (the form secret stores tend to hold it in).
func ParsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	der := raw
	if block, _ := pem.Decode(raw); block != nil {
		der = block.Bytes
	} else if decoded, err := base64.StdEncoding.DecodeString(string(raw)); err == nil {
		der = decoded
		if block, _ := pem.Decode(decoded); block != nil {
			der = block.Bytes
		}
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}

	return key, nil
}

// Connector opens one *sql.DB per scoped operation; callers close the
// handle when the operation completes.
type Connector struct {
	creds     Credentials
	warehouse string
	role      string
}

func NewConnector(creds Credentials, warehouseName, role string) *Connector {
	return &Connector{
		creds:     creds,
		warehouse: warehouseName,
		role:      role,
	}
}

func (c *Connector) Open(ctx context.Context, database, schema string) (*sql.DB, error) {
	cfg := &gosnowflake.Config{
		Account:       c.creds.Account,
		User:          c.creds.User,
		Authenticator: gosnowflake.AuthTypeJwt,
		PrivateKey:    c.creds.PrivateKey,
		Warehouse:     c.warehouse,
		Database:      database,
		Schema:        schema,
		Role:          c.role,
		Application:   "landing-ai-document-pipeline",
	}

	dsn, err := gosnowflake.DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build warehouse DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	logger.Info("Connected to warehouse",
		zap.String("database", database),
		zap.String("schema", schema),
		zap.String("warehouse", c.warehouse),
	)

	return db, nil
}
