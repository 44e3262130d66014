// Package database holds the storefront schema and the typed queries run
// against it. Every query method accepts a DBTX, so the same code runs on a
// pool, a single connection or inside a transaction.
package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// New returns a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries runs the storefront's SQL statements.
type Queries struct {
	db DBTX
}

//go:embed schema.sql
var schemaSQL string

// Schema returns the bootstrap DDL.
func Schema() string {
	return schemaSQL
}

// ApplySchema creates any missing tables. It is safe to run repeatedly.
func ApplySchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
