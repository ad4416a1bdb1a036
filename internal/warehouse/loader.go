package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/internal/extraction"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/metrics"
	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

// Loader persists extraction results, one row per unique file path.
// A path already present in the table is left untouched: the merge has
// no matched branch, so reprocessing is a silent no-op.
type Loader struct {
	opener SessionOpener
	exec   *Executor
	table  TableName
	log    *zap.Logger
}

func NewLoader(opener SessionOpener, table TableName) *Loader {
	return &Loader{
		opener: opener,
		exec:   NewExecutor(logger.GetLogger()),
		table:  table,
		log:    logger.GetLogger(),
	}
}

// envelope matches the stored EXTRACTED_CONTENT shape.
type envelope struct {
	Data *extraction.Result `json:"data"`
}

// Load upserts one document. The qualified table name is tried first;
// on failure the same merge runs once more against the local name, and
// an error from that second attempt propagates to the caller.
func (l *Loader) Load(ctx context.Context, filePath string, result *extraction.Result) error {
	db, err := l.opener.Open(ctx, l.table.Database, l.table.Schema)
	if err != nil {
		return fmt.Errorf("failed to open warehouse session: %w", err)
	}
	defer db.Close()

	l.exec.Run(ctx, db, fmt.Sprintf("USE DATABASE %s", l.table.Database), "Use database")
	l.exec.Run(ctx, db, fmt.Sprintf("USE SCHEMA %s", l.table.Schema), "Use schema")

	payload, err := json.Marshal(envelope{Data: result})
	if err != nil {
		return fmt.Errorf("failed to serialize extracted content: %w", err)
	}

	fileName := path.Base(filePath)

	if err := l.runMerge(ctx, db, l.table.Qualified(), fileName, filePath, payload); err != nil {
		l.log.Warn("Qualified merge failed, retrying with simple table name",
			zap.String("file_path", filePath),
			zap.Error(err),
		)
		metrics.LoadFallbacks.Inc()

		if err := l.runMerge(ctx, db, l.table.Local(), fileName, filePath, payload); err != nil {
			return err
		}

		l.log.Info("Document loaded with simple table name", zap.String("file_path", filePath))
		return nil
	}

	l.log.Info("Document loaded", zap.String("file_path", filePath))
	return nil
}

func (l *Loader) runMerge(ctx context.Context, db Session, tableName, fileName, filePath string, payload []byte) error {
	stmt := mergeStmt(tableName)
	l.log.Info("Executing merge",
		zap.String("statement", stmt),
		zap.String("file_name", fileName),
		zap.String("file_path", filePath),
	)

	rows, err := db.QueryContext(ctx, stmt, fileName, filePath, string(payload))
	if err != nil {
		return err
	}
	defer rows.Close()

	result, err := drainRows(rows)
	if err != nil {
		return err
	}

	l.log.Info("Merge completed",
		zap.Strings("result", result),
		zap.Int("row_count", len(result)),
	)

	return nil
}

func mergeStmt(tableName string) string {
	return fmt.Sprintf(`MERGE INTO %s AS target
		USING (SELECT ? AS file_name, ? AS file_path, ? AS extracted_content) AS source
		ON target.FILE_PATH = source.file_path
		WHEN NOT MATCHED THEN INSERT (FILE_NAME, FILE_PATH, EXTRACTED_CONTENT)
		VALUES (source.file_name, source.file_path, PARSE_JSON(source.extracted_content))`, tableName)
}
