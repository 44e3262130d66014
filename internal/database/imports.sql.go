package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertImportRun = `-- name: InsertImportRun :exec
INSERT INTO import_runs (
	import_id, file_name, policy, processed, succeeded, failed, skipped,
	skipped_variants, dropped_rows, aborted, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

type InsertImportRunParams struct {
	ImportID        uuid.UUID
	FileName        pgtype.Text
	Policy          string
	Processed       int32
	Succeeded       int32
	Failed          int32
	Skipped         int32
	SkippedVariants int32
	DroppedRows     int32
	Aborted         bool
	DurationMs      int32
}

func (q *Queries) InsertImportRun(ctx context.Context, arg InsertImportRunParams) error {
	_, err := q.db.Exec(ctx, insertImportRun,
		arg.ImportID,
		arg.FileName,
		arg.Policy,
		arg.Processed,
		arg.Succeeded,
		arg.Failed,
		arg.Skipped,
		arg.SkippedVariants,
		arg.DroppedRows,
		arg.Aborted,
		arg.DurationMs,
	)
	return err
}

const listImportRuns = `-- name: ListImportRuns :many
SELECT import_id, file_name, policy, processed, succeeded, failed, skipped,
	skipped_variants, dropped_rows, aborted, duration_ms, created_at
FROM import_runs
ORDER BY created_at DESC
LIMIT $1`

func (q *Queries) ListImportRuns(ctx context.Context, limit int32) ([]ImportRun, error) {
	rows, err := q.db.Query(ctx, listImportRuns, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[ImportRun])
}
