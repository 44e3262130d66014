package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// stmt is one statement seen by the fake database.
type stmt struct {
	sql  string
	args []any
}

type stmtHook func(ctx context.Context, sql string, args []any) (pgconn.CommandTag, error)

// fakeDB is an in-memory stand-in for *pgxpool.Pool. Statements run inside
// a transaction become visible in committed only when the transaction commits.
type fakeDB struct {
	mu        sync.Mutex
	committed []stmt
	begins    int
	queries   int
	commits   int
	rollbacks int

	hook      stmtHook
	beginErr  error
	commitErr error

	// stored answers ExistingHandles and ExistingSKUs lookups.
	stored map[string][]string
}

func newFakeDB(hooks ...stmtHook) *fakeDB {
	return &fakeDB{hook: chainHooks(hooks...)}
}

func (f *fakeDB) run(ctx context.Context, sql string, args []any) (pgconn.CommandTag, error) {
	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}
	if f.hook != nil {
		return f.hook(ctx, sql, args)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.mu.Lock()
	f.begins++
	f.mu.Unlock()
	return &fakeTx{db: f}, nil
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	tag, err := f.run(ctx, sql, args)
	if err == nil && tag.RowsAffected() > 0 {
		f.mu.Lock()
		f.committed = append(f.committed, stmt{sql: sql, args: args})
		f.mu.Unlock()
	}
	return tag, err
}

// Query answers the handle and sku existence lookups from f.stored.
func (f *fakeDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var column string
	switch {
	case strings.Contains(sql, "SELECT handle FROM products"):
		column = "handle"
	case strings.Contains(sql, "SELECT sku FROM product_variants"):
		column = "sku"
	default:
		return nil, errors.New("fakeDB: Query not supported")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++

	want := args[0].([]string)
	var out []string
	for _, v := range want {
		for _, have := range f.stored[column] {
			if v == have {
				out = append(out, v)
				break
			}
		}
	}
	return &fakeRows{values: out, pos: -1}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	_, err := f.Exec(ctx, sql, args...)
	return fakeRow{err: err}
}

// count returns how many committed statements insert into table.
func (f *fakeDB) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, s := range f.committed {
		if insertsInto(s.sql, table) {
			n++
		}
	}
	return n
}

func (f *fakeDB) statements(table string) []stmt {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []stmt
	for _, s := range f.committed {
		if insertsInto(s.sql, table) {
			out = append(out, s)
		}
	}
	return out
}

func insertsInto(sql, table string) bool {
	return strings.Contains(sql, "INSERT INTO "+table+" ")
}

// fakeTx embeds pgx.Tx so it satisfies the interface; only the methods the
// writer uses are implemented.
type fakeTx struct {
	pgx.Tx
	db      *fakeDB
	pending []stmt
	closed  bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if t.closed {
		return pgconn.CommandTag{}, pgx.ErrTxClosed
	}
	tag, err := t.db.run(ctx, sql, args)
	// A conflict no-op (INSERT 0 0) leaves no row behind.
	if err == nil && tag.RowsAffected() > 0 {
		t.pending = append(t.pending, stmt{sql: sql, args: args})
	}
	return tag, err
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("fakeTx: Query not supported")
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	_, err := t.Exec(ctx, sql, args...)
	return fakeRow{err: err}
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.db.commitErr != nil {
		return t.db.commitErr
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.commits++
	t.db.committed = append(t.db.committed, t.pending...)
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.rollbacks++
	return nil
}

// fakeRows yields single string columns.
type fakeRows struct {
	pgx.Rows
	values []string
	pos    int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.values[r.pos]
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

// fakeRow leaves scan destinations at their zero values.
type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error { return r.err }

// ----------------------------------------------------------------------------
// Hooks
// ----------------------------------------------------------------------------

// chainHooks runs hooks in order; the first one returning a non-empty tag or
// an error decides the statement's outcome.
func chainHooks(hooks ...stmtHook) stmtHook {
	if len(hooks) == 0 {
		return nil
	}
	return func(ctx context.Context, sql string, args []any) (pgconn.CommandTag, error) {
		for _, h := range hooks {
			tag, err := h(ctx, sql, args)
			if err != nil || tag.String() != "" {
				return tag, err
			}
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
}

// failInsert fails every insert into table.
func failInsert(table string, err error) stmtHook {
	return func(_ context.Context, sql string, _ []any) (pgconn.CommandTag, error) {
		if insertsInto(sql, table) {
			return pgconn.CommandTag{}, err
		}
		return pgconn.CommandTag{}, nil
	}
}

// existingSKUs makes variant inserts for the given SKUs hit ON CONFLICT DO NOTHING.
func existingSKUs(skus ...string) stmtHook {
	set := make(map[string]bool, len(skus))
	for _, s := range skus {
		set[s] = true
	}
	return func(_ context.Context, sql string, args []any) (pgconn.CommandTag, error) {
		if insertsInto(sql, "product_variants") {
			if sku, ok := args[2].(pgtype.Text); ok && sku.Valid && set[sku.String] {
				return pgconn.NewCommandTag("INSERT 0 0"), nil
			}
		}
		return pgconn.CommandTag{}, nil
	}
}

// existingHandles makes product inserts for the given handles violate the unique constraint.
func existingHandles(handles ...string) stmtHook {
	set := make(map[string]bool, len(handles))
	for _, h := range handles {
		set[h] = true
	}
	return func(_ context.Context, sql string, args []any) (pgconn.CommandTag, error) {
		if insertsInto(sql, "products") {
			if h, ok := args[1].(string); ok && set[h] {
				return pgconn.CommandTag{}, &pgconn.PgError{
					Code:           "23505",
					Message:        `duplicate key value violates unique constraint "products_handle_key"`,
					ConstraintName: "products_handle_key",
				}
			}
		}
		return pgconn.CommandTag{}, nil
	}
}

// slowStatements makes every statement take d, or less if its context ends first.
func slowStatements(d time.Duration) stmtHook {
	return func(ctx context.Context, _ string, _ []any) (pgconn.CommandTag, error) {
		select {
		case <-time.After(d):
			return pgconn.CommandTag{}, nil
		case <-ctx.Done():
			return pgconn.CommandTag{}, ctx.Err()
		}
	}
}

// recordDeadlines reports, for every statement, whether its context carried a deadline.
func recordDeadlines(mu *sync.Mutex, seen *[]bool) stmtHook {
	return func(ctx context.Context, _ string, _ []any) (pgconn.CommandTag, error) {
		_, ok := ctx.Deadline()
		mu.Lock()
		*seen = append(*seen, ok)
		mu.Unlock()
		return pgconn.CommandTag{}, nil
	}
}

// blockUntilDone makes every statement wait for its context to end.
func blockUntilDone() stmtHook {
	return func(ctx context.Context, _ string, _ []any) (pgconn.CommandTag, error) {
		<-ctx.Done()
		return pgconn.CommandTag{}, ctx.Err()
	}
}
