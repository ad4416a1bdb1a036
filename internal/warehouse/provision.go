package warehouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/internal/metrics"
	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

// Provisioner idempotently ensures the warehouse, database, schema, and
// destination table exist. Every step is best-effort: a step the role
// lacks privileges for is logged and skipped, never fatal.
type Provisioner struct {
	opener    SessionOpener
	exec      *Executor
	warehouse string
	table     TableName
	log       *zap.Logger
}

func NewProvisioner(opener SessionOpener, warehouseName string, table TableName) *Provisioner {
	return &Provisioner{
		opener:    opener,
		exec:      NewExecutor(logger.GetLogger()),
		warehouse: warehouseName,
		table:     table,
		log:       logger.GetLogger(),
	}
}

// EnsureInfrastructure issues the DDL sequence and returns the outcome
// of every step in order. Only a session-open failure is an error.
func (p *Provisioner) EnsureInfrastructure(ctx context.Context) ([]Outcome, error) {
	db, err := p.opener.Open(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse session: %w", err)
	}
	defer db.Close()

	steps := []struct {
		stmt string
		desc string
	}{
		{fmt.Sprintf("CREATE WAREHOUSE IF NOT EXISTS %s WITH WAREHOUSE_SIZE = 'X-SMALL'", p.warehouse), "Create warehouse"},
		{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", p.table.Database), "Create database"},
		{fmt.Sprintf("USE DATABASE %s", p.table.Database), "Use database"},
		{fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", p.table.Schema), "Create schema"},
		{fmt.Sprintf("USE SCHEMA %s", p.table.Schema), "Use schema"},
	}

	var outcomes []Outcome
	for _, step := range steps {
		outcomes = append(outcomes, p.exec.Run(ctx, db, step.stmt, step.desc))
	}

	p.logContext(ctx, db)

	create := p.exec.Run(ctx, db, createTableStmt(p.table.Qualified()), "Create qualified table")
	outcomes = append(outcomes, create)
	if !create.OK() {
		outcomes = append(outcomes, p.exec.Run(ctx, db, createTableStmt(p.table.Local()), "Create simple table"))
	}

	for _, o := range outcomes {
		if !o.OK() {
			metrics.ProvisionWarnings.Inc()
		}
	}

	return outcomes, nil
}

// logContext reads back the session context for diagnostics. Strictly
// best-effort.
func (p *Provisioner) logContext(ctx context.Context, db Session) {
	rows, err := db.QueryContext(ctx, "SELECT CURRENT_DATABASE(), CURRENT_SCHEMA(), CURRENT_WAREHOUSE()")
	if err != nil {
		return
	}
	defer rows.Close()

	var database, schema, warehouse string
	if rows.Next() {
		if err := rows.Scan(&database, &schema, &warehouse); err != nil {
			return
		}
		p.log.Info("Session context",
			zap.String("database", database),
			zap.String("schema", schema),
			zap.String("warehouse", warehouse),
		)
	}
}

func createTableStmt(name string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ID NUMBER AUTOINCREMENT PRIMARY KEY, FILE_NAME VARCHAR(255),
		FILE_PATH VARCHAR(500) UNIQUE, PROCESS_DATE TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP(),
		EXTRACTED_CONTENT VARIANT)`, name)
}
