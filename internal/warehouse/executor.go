package warehouse

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

// Session is the slice of *sql.DB the executor needs. Statements run
// through QueryContext so result rows are available for logging even on
// DDL, matching the warehouse driver's status-row behavior.
type Session interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// SessionOpener hands out a scoped warehouse session. Callers own the
// returned handle and release it when the operation completes.
type SessionOpener interface {
	Open(ctx context.Context, database, schema string) (*sql.DB, error)
}

type Status int

const (
	StatusOK Status = iota
	StatusWarning
)

// Outcome is the explicit result of one best-effort statement. A failed
// statement produces a warning outcome instead of an error so callers
// can inspect step results deterministically and keep going.
type Outcome struct {
	Description string
	Status      Status
	Rows        int64
	Err         error
}

func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Executor runs single statements against an open session. It never
// fails the caller: provisioning steps are allowed to fail individually
// (e.g. insufficient privilege to create a warehouse) without aborting
// the run.
type Executor struct {
	log *zap.Logger
}

func NewExecutor(log *zap.Logger) *Executor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Executor{log: log}
}

func (e *Executor) Run(ctx context.Context, sess Session, stmt, desc string, args ...interface{}) Outcome {
	e.log.Info("Executing SQL", zap.String("statement", stmt), zap.String("description", desc))

	rows, err := sess.QueryContext(ctx, stmt, args...)
	if err != nil {
		return e.warn(desc, err)
	}
	defer rows.Close()

	result, err := drainRows(rows)
	if err != nil {
		return e.warn(desc, err)
	}

	e.log.Info("SQL step completed",
		zap.String("description", desc),
		zap.Strings("result", result),
		zap.Int("row_count", len(result)),
	)

	return Outcome{Description: desc, Status: StatusOK, Rows: int64(len(result))}
}

func (e *Executor) warn(desc string, err error) Outcome {
	e.log.Warn("Could not "+strings.ToLower(desc), zap.Error(err))
	return Outcome{Description: desc, Status: StatusWarning, Err: err}
}

// drainRows fetches every row, rendering each as a single string for
// the step log.
func drainRows(rows *sql.Rows) ([]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []string
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		scanArgs := make([]interface{}, len(cols))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = v.String
		}
		result = append(result, strings.Join(fields, " | "))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
