package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DB is the storage handle threaded through the service.
// Satisfied by *pgxpool.Pool.
type DB interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Record is one denormalized input row keyed by column header.
// A missing key means the column is absent; an empty value means the cell was blank.
type Record map[string]string

// Get returns the trimmed value of a column and whether the column was present.
func (r Record) Get(column string) (string, bool) {
	v, ok := r[column]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Value returns the trimmed value of a column, or "" when absent.
func (r Record) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// Group is the ordered set of rows that share one natural key.
type Group struct {
	Key  string
	Rows []Record
}

// Groups is the output of GroupRows.
type Groups struct {
	Items   []Group
	Dropped int // leading rows with no key to inherit
}

// Len returns the number of groups.
func (g Groups) Len() int { return len(g.Items) }

// Policy decides how a failed entity affects the rest of an import batch.
type Policy string

const (
	// PolicyIsolate writes each entity in its own transaction; failures are recorded and skipped.
	PolicyIsolate Policy = "isolate"
	// PolicyAbort writes the whole batch in one transaction; the first failure rolls back everything.
	PolicyAbort Policy = "abort"
)

// ParsePolicy parses a policy name. Empty input yields PolicyIsolate.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyIsolate:
		return PolicyIsolate, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("invalid failure policy %q: must be isolate or abort", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so a Policy can be read
// straight from configuration.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ProductPlan is one product expanded into the rows that must be written for it.
type ProductPlan struct {
	Key        string
	Rows       int
	Product    db.InsertProductParams
	Metafields map[string]string // nil means no metafields row
	Variants   []VariantPlan
}

// VariantPlan holds a variant and the rows that depend on it.
type VariantPlan struct {
	Variant  db.InsertVariantParams
	Image    *db.InsertProductImageParams
	Prices   [2]db.InsertVariantPriceParams
	Shipping *db.InsertShippingDetailParams
}

// OrderPlan is one order with its line items.
type OrderPlan struct {
	Order db.InsertOrderParams
	Items []db.InsertOrderItemParams
}

// ProductResult describes what was written for one product.
type ProductResult struct {
	ProductID   uuid.UUID   `json:"product_id"`
	Handle      string      `json:"handle"`
	VariantIDs  []uuid.UUID `json:"variant_ids"`
	Images      int         `json:"images"`
	Prices      int         `json:"prices"`
	Shipping    int         `json:"shipping"`
	SkippedSKUs []string    `json:"skipped_skus,omitempty"`
}

// OrderResult is a committed order with its items.
type OrderResult struct {
	Order db.Order       `json:"order"`
	Items []db.OrderItem `json:"items"`
}

// ProductDetail is a product with all of its child rows.
type ProductDetail struct {
	Product    db.Product          `json:"product"`
	Attributes map[string]string   `json:"attributes,omitempty"`
	Variants   []db.ProductVariant `json:"variants"`
	Images     []db.ProductImage   `json:"images"`
	Prices     []db.VariantPrice   `json:"prices"`
	Shipping   []db.ShippingDetail `json:"shipping"`

	SkippedSKUs []string `json:"skipped_skus,omitempty"`
}

// Failure records why one entity in a batch was not written.
type Failure struct {
	Key     string `json:"key"`
	Rows    int    `json:"rows"`
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportReport summarizes one import run.
type ImportReport struct {
	ImportID        uuid.UUID     `json:"import_id"`
	FileName        string        `json:"file_name,omitempty"`
	Policy          Policy        `json:"policy"`
	Processed       int           `json:"processed"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	Skipped         int           `json:"skipped"`
	SkippedVariants int           `json:"skipped_variants"`
	DroppedRows     int           `json:"dropped_rows"`
	Failures        []Failure     `json:"failures"`
	Aborted         bool          `json:"aborted"`
	Duration        time.Duration `json:"duration_ns"`
}

// ImportProgress is passed to a ProgressFunc after each entity.
type ImportProgress struct {
	Done  int
	Total int
	Key   string
	Err   error
}

// ProgressFunc observes an import as it runs.
type ProgressFunc func(ImportProgress)

// ImportOptions tune a single import run.
type ImportOptions struct {
	FileName  string
	Policy    Policy // zero value uses the service default
	KeyColumn string // zero value uses the service default
	Progress  ProgressFunc
}
