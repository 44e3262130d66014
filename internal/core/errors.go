package core

// errors.go classifies write failures.
//
// Every error leaving the Writer or the single-entity operations is a
// *WriteError carrying a Kind. Callers branch on the kind with errors.Is
// against the sentinels below; the underlying driver error stays reachable
// through Unwrap for logging.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the failure category of a write.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDuplicateParentKey
	KindForeignKeyViolation
	KindTransient
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateParentKey:
		return "duplicate_parent_key"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A *WriteError matches the sentinel of its Kind.
var (
	ErrValidation          = errors.New("validation failure")
	ErrDuplicateParentKey  = errors.New("duplicate parent key")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrTransient           = errors.New("transient write failure")
	ErrNotFound            = errors.New("not found")
	ErrUnknownWrite        = errors.New("unknown write failure")
)

// ErrNothingToImport is returned when an import has no groupable rows.
var ErrNothingToImport = errors.New("nothing to import: no rows with a key")

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindDuplicateParentKey:
		return ErrDuplicateParentKey
	case KindForeignKeyViolation:
		return ErrForeignKeyViolation
	case KindTransient:
		return ErrTransient
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrUnknownWrite
	}
}

// WriteError is a classified failure for one entity.
type WriteError struct {
	Kind   Kind
	Op     string // step that failed, e.g. "insert variant"
	Entity string // "product", "order", ...
	Key    string // natural key or id of the entity
	Err    error
}

func (e *WriteError) Error() string {
	var b strings.Builder
	b.WriteString(e.Entity)
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(e.Kind.sentinel().Error())
	}
	return b.String()
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *WriteError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the Kind of err, or KindUnknown if err is not a *WriteError.
func KindOf(err error) Kind {
	var we *WriteError
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnknown
}

func validationError(entity, key, format string, args ...any) *WriteError {
	return &WriteError{
		Kind:   KindValidation,
		Entity: entity,
		Key:    key,
		Err:    fmt.Errorf(format, args...),
	}
}

// InvalidInput reports input rejected before any write, such as a request
// body that does not decode.
func InvalidInput(entity, format string, args ...any) error {
	return validationError(entity, "", format, args...)
}

func notFound(entity, key string) *WriteError {
	return &WriteError{Kind: KindNotFound, Entity: entity, Key: key, Err: ErrNotFound}
}

// classify wraps a storage error. parentStep marks the statement that inserts
// or updates the parent row, the only place a unique violation means a
// duplicate parent key.
func classify(err error, entity, key, op string, parentStep bool) *WriteError {
	var we *WriteError
	if errors.As(err, &we) {
		return we
	}
	return &WriteError{
		Kind:   classifyKind(err, parentStep),
		Op:     op,
		Entity: entity,
		Key:    key,
		Err:    err,
	}
}

func classifyKind(err error, parentStep bool) Kind {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return KindTransient
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			if parentStep {
				return KindDuplicateParentKey
			}
			return KindUnknown
		case pgErr.Code == "23503":
			return KindForeignKeyViolation
		case pgErr.Code == "23502", pgErr.Code == "23514", strings.HasPrefix(pgErr.Code, "22"):
			return KindValidation
		case pgErr.Code == "40001", pgErr.Code == "40P01", pgErr.Code == "57P01",
			strings.HasPrefix(pgErr.Code, "08"):
			return KindTransient
		}
		return KindUnknown
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindTransient
	}
	return KindUnknown
}
