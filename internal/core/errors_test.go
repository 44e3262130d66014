package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		parentStep bool
		want       Kind
	}{
		{"unique on parent", &pgconn.PgError{Code: "23505"}, true, KindDuplicateParentKey},
		{"unique on child", &pgconn.PgError{Code: "23505"}, false, KindUnknown},
		{"foreign key", &pgconn.PgError{Code: "23503"}, false, KindForeignKeyViolation},
		{"not null", &pgconn.PgError{Code: "23502"}, false, KindValidation},
		{"check", &pgconn.PgError{Code: "23514"}, false, KindValidation},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, false, KindValidation},
		{"invalid text", &pgconn.PgError{Code: "22P02"}, false, KindValidation},
		{"serialization", &pgconn.PgError{Code: "40001"}, false, KindTransient},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, false, KindTransient},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, false, KindTransient},
		{"connection failure", &pgconn.PgError{Code: "08006"}, false, KindTransient},
		{"deadline", context.DeadlineExceeded, false, KindTransient},
		{"wrapped deadline", fmt.Errorf("insert: %w", context.DeadlineExceeded), false, KindTransient},
		{"no rows", pgx.ErrNoRows, false, KindNotFound},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false, KindUnknown},
		{"plain error", errors.New("boom"), false, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyKind(tt.err, tt.parentStep))
		})
	}
}

func TestWriteError_IsAndUnwrap(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", Message: "insert or update on table \"order_items\" violates foreign key constraint"}
	err := classify(pgErr, "order", "o-1", "insert item", false)

	assert.True(t, errors.Is(err, ErrForeignKeyViolation))
	assert.False(t, errors.Is(err, ErrDuplicateParentKey))
	assert.Equal(t, KindForeignKeyViolation, KindOf(err))

	var unwrapped *pgconn.PgError
	require.True(t, errors.As(err, &unwrapped))
	assert.Equal(t, "23503", unwrapped.Code)

	wrapped := fmt.Errorf("place order: %w", err)
	assert.True(t, errors.Is(wrapped, ErrForeignKeyViolation))
	assert.Equal(t, KindForeignKeyViolation, KindOf(wrapped))
}

func TestClassify_KeepsExistingClassification(t *testing.T) {
	inner := &WriteError{Kind: KindDuplicateParentKey, Op: "insert product", Entity: "product", Key: "shirt"}

	got := classify(fmt.Errorf("tx: %w", inner), "product", "shirt", "commit", false)

	assert.Same(t, inner, got)
}

func TestWriteError_Message(t *testing.T) {
	err := &WriteError{
		Kind:   KindDuplicateParentKey,
		Op:     "insert product",
		Entity: "product",
		Key:    "linen-shirt",
		Err:    errors.New("duplicate key value violates unique constraint \"products_handle_key\""),
	}

	assert.Equal(t,
		`product "linen-shirt": insert product: duplicate key value violates unique constraint "products_handle_key"`,
		err.Error())

	bare := &WriteError{Kind: KindNotFound, Entity: "order"}
	assert.Equal(t, "order: not found", bare.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "duplicate_parent_key", KindDuplicateParentKey.String())
	assert.Equal(t, "foreign_key_violation", KindForeignKeyViolation.String())
	assert.Equal(t, "transient", KindTransient.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
