package database

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_CreatesEveryTable(t *testing.T) {
	tables := []string{
		"users", "categories", "subcategories", "product_types",
		"products", "product_metafields", "product_variants", "product_images",
		"variant_prices", "shipping_details", "addresses", "orders", "order_items",
		"cart_items", "wishlist", "import_runs",
	}

	schema := Schema()
	for _, table := range tables {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
	assert.NotContains(t, strings.ToUpper(schema), "DROP TABLE")
}

type execRecorder struct {
	sql  []string
	err  error
	rows pgx.Rows
}

func (e *execRecorder) Exec(_ context.Context, sql string, _ ...interface{}) (pgconn.CommandTag, error) {
	e.sql = append(e.sql, sql)
	return pgconn.CommandTag{}, e.err
}

func (e *execRecorder) Query(_ context.Context, sql string, _ ...interface{}) (pgx.Rows, error) {
	e.sql = append(e.sql, sql)
	if e.rows == nil {
		return nil, errors.New("not implemented")
	}
	return e.rows, nil
}

func (e *execRecorder) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func TestApplySchema(t *testing.T) {
	rec := &execRecorder{}
	require.NoError(t, ApplySchema(context.Background(), rec))
	require.Len(t, rec.sql, 1)
	assert.Equal(t, Schema(), rec.sql[0])

	rec = &execRecorder{err: errors.New("permission denied")}
	err := ApplySchema(context.Background(), rec)
	assert.ErrorContains(t, err, "apply schema: permission denied")
}

// column is one named value of a fake result row.
type column struct {
	name  string
	value any
}

// staticRows serves fixed rows; Scan copies each value into its destination.
type staticRows struct {
	pgx.Rows
	fields []pgconn.FieldDescription
	rows   [][]any
	pos    int
}

func newStaticRows(rows ...[]column) *staticRows {
	r := &staticRows{}
	for i, row := range rows {
		values := make([]any, len(row))
		for j, c := range row {
			if i == 0 {
				r.fields = append(r.fields, pgconn.FieldDescription{Name: c.name})
			}
			values[j] = c.value
		}
		r.rows = append(r.rows, values)
	}
	return r
}

func (r *staticRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}

func (r *staticRows) Scan(dest ...any) error {
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.rows[r.pos-1][i]))
	}
	return nil
}

func (r *staticRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *staticRows) Err() error                                   { return nil }
func (r *staticRows) Close()                                       {}

func TestListProducts_IncludesCategoryName(t *testing.T) {
	id := uuid.New()
	rec := &execRecorder{rows: newStaticRows([]column{
		{"product_id", id},
		{"handle", "linen-shirt"},
		{"title", pgtype.Text{String: "Linen Shirt", Valid: true}},
		{"body_html", pgtype.Text{}},
		{"vendor", pgtype.Text{}},
		{"product_category", pgtype.Text{}},
		{"product_type", pgtype.Text{}},
		{"tags", []string{"linen", "summer"}},
		{"published", true},
		{"status", "active"},
		{"seo_title", pgtype.Text{}},
		{"seo_description", pgtype.Text{}},
		{"is_gift_card", false},
		{"category_id", pgtype.UUID{Bytes: uuid.New(), Valid: true}},
		{"subcategory_id", pgtype.UUID{}},
		{"product_type_id", pgtype.UUID{}},
		{"created_at", pgtype.Timestamptz{}},
		{"updated_at", pgtype.Timestamptz{}},
		{"category_name", pgtype.Text{String: "Shirts", Valid: true}},
	})}

	products, err := New(rec).ListProducts(context.Background(), ListProductsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, id, products[0].ProductID)
	assert.Equal(t, "linen-shirt", products[0].Handle)
	assert.Equal(t, []string{"linen", "summer"}, products[0].Tags)
	assert.Equal(t, "Shirts", products[0].CategoryName.String)

	require.Len(t, rec.sql, 1)
	assert.Contains(t, rec.sql[0], "LEFT JOIN categories c ON c.category_id = p.category_id")
}
