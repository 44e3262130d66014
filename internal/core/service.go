package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Options configure a Service.
type Options struct {
	// Policy is the default batch failure policy for imports.
	Policy Policy
	// KeyColumn groups import rows into products.
	KeyColumn string
	// TxTimeout bounds every per-entity transaction the service opens.
	TxTimeout time.Duration
	// ImportTimeout bounds a whole import run, including the single
	// transaction of an abort-policy batch.
	ImportTimeout time.Duration
	// MaxConcurrentImports and MaxImportWait size the import limiter.
	MaxConcurrentImports int
	MaxImportWait        time.Duration
}

// DefaultKeyColumn is the column that groups rows into products.
const DefaultKeyColumn = ColHandle

// Service provides the storefront's write workflows and the reads that
// accompany them. It holds no global state: the database handle is passed
// in and shared by every operation.
type Service struct {
	db      DB
	writer  *Writer
	limiter *ImportLimiter
	opts    Options
}

// NewService creates a new Service instance.
func NewService(pool DB, opts Options) (*Service, error) {
	if pool == nil {
		return nil, fmt.Errorf("new service: database handle is required")
	}

	policy, err := ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}
	opts.Policy = policy

	opts.KeyColumn = strings.TrimSpace(opts.KeyColumn)
	if opts.KeyColumn == "" {
		opts.KeyColumn = DefaultKeyColumn
	}

	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultBatchTimeout
	}

	writer := NewWriter(pool, opts.TxTimeout)
	writer.SetBatchTimeout(opts.ImportTimeout)

	return &Service{
		db:      pool,
		writer:  writer,
		limiter: NewImportLimiter(opts.MaxConcurrentImports, opts.MaxImportWait),
		opts:    opts,
	}, nil
}

// Policy returns the default import failure policy.
func (s *Service) Policy() Policy {
	return s.opts.Policy
}

// ImportLimiterStatus returns the current import concurrency state.
func (s *Service) ImportLimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
