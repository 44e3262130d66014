package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/JonMunkholm/storefront/internal/logging"
	"github.com/google/uuid"
)

// ImportRows groups rows by the key column, normalizes each group and writes
// it according to the failure policy.
//
// Entity failures are reported in the ImportReport, not as an error. The
// returned error is non-nil only when the run could not start (no slot, no
// rows) or was cancelled; a cancelled run still returns the partial report.
func (s *Service) ImportRows(ctx context.Context, rows []Record, opts ImportOptions) (ImportReport, error) {
	policy := opts.Policy
	if policy == "" {
		policy = s.opts.Policy
	}
	keyColumn := opts.KeyColumn
	if keyColumn == "" {
		keyColumn = s.opts.KeyColumn
	}

	report := ImportReport{
		ImportID: uuid.New(),
		FileName: opts.FileName,
		Policy:   policy,
		Failures: []Failure{},
	}

	log := logging.WithFields(ctx,
		"import_id", report.ImportID,
		"file", opts.FileName,
		"policy", policy,
	)

	groups := GroupRows(rows, keyColumn)
	report.DroppedRows = groups.Dropped
	if groups.Len() == 0 {
		log.Warn("import has no keyed rows", "rows", len(rows), "key_column", keyColumn)
		return report, ErrNothingToImport
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return report, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	start := time.Now()
	log.Info("import started", "rows", len(rows), "products", groups.Len(), "dropped_rows", groups.Dropped)

	var runErr error
	switch policy {
	case PolicyAbort:
		runErr = s.importAbort(ctx, groups, &report, opts.Progress)
	default:
		runErr = s.importIsolate(ctx, groups, &report, opts.Progress)
	}

	report.Duration = time.Since(start)

	log.Info("import finished",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"skipped_variants", report.SkippedVariants,
		"aborted", report.Aborted,
		"duration_ms", report.Duration.Milliseconds(),
	)

	// History is best effort; the import itself already committed or rolled back.
	if err := s.recordImportRun(context.WithoutCancel(ctx), report); err != nil {
		log.Warn("failed to record import run", "error", err)
	}

	return report, runErr
}

func (s *Service) importIsolate(ctx context.Context, groups Groups, report *ImportReport, progress ProgressFunc) error {
	total := groups.Len()
	report.Processed = total

	for i, g := range groups.Items {
		if err := ctx.Err(); err != nil {
			report.Skipped = total - i
			return err
		}

		res, err := s.writeGroup(ctx, g)
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, newFailure(g, err))
			logging.FromContext(ctx).Warn("product import failed",
				"handle", g.Key,
				"kind", KindOf(err).String(),
				"error", err,
			)
		} else {
			report.Succeeded++
			report.SkippedVariants += len(res.SkippedSKUs)
		}

		if progress != nil {
			progress(ImportProgress{Done: i + 1, Total: total, Key: g.Key, Err: err})
		}
	}
	return nil
}

func (s *Service) writeGroup(ctx context.Context, g Group) (ProductResult, error) {
	plan, err := NormalizeProductGroup(g)
	if err != nil {
		return ProductResult{}, err
	}
	return s.writer.WriteProduct(ctx, plan)
}

func (s *Service) importAbort(ctx context.Context, groups Groups, report *ImportReport, progress ProgressFunc) error {
	total := groups.Len()
	report.Processed = total

	plans := make([]ProductPlan, 0, total)
	for _, g := range groups.Items {
		plan, err := NormalizeProductGroup(g)
		if err != nil {
			report.Aborted = true
			report.Failed = 1
			report.Skipped = total - 1
			report.Failures = append(report.Failures, newFailure(g, err))
			return nil
		}
		plans = append(plans, plan)
	}

	batch, err := s.writer.WriteBatch(ctx, plans, func(i int, _ ProductResult) {
		if progress != nil {
			progress(ImportProgress{Done: i + 1, Total: total, Key: plans[i].Key})
		}
	})
	if err != nil {
		report.Aborted = true
		if batch.FailedIndex >= 0 {
			report.Failed = 1
			report.Failures = append(report.Failures, newFailure(groups.Items[batch.FailedIndex], err))
		} else {
			report.Failures = append(report.Failures, Failure{
				Kind:    KindOf(err).String(),
				Code:    MapError(err).Code,
				Message: err.Error(),
			})
		}
		report.Skipped = total - report.Failed
		logging.FromContext(ctx).Warn("import aborted, batch rolled back", "error", err)

		if errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	report.Succeeded = len(batch.Results)
	for _, res := range batch.Results {
		report.SkippedVariants += len(res.SkippedSKUs)
	}
	return nil
}

func newFailure(g Group, err error) Failure {
	return Failure{
		Key:     g.Key,
		Rows:    len(g.Rows),
		Kind:    KindOf(err).String(),
		Code:    MapError(err).Code,
		Message: err.Error(),
	}
}

func (s *Service) recordImportRun(ctx context.Context, r ImportReport) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.New(s.db).InsertImportRun(ctx, db.InsertImportRunParams{
		ImportID:        r.ImportID,
		FileName:        ToPgText(r.FileName),
		Policy:          string(r.Policy),
		Processed:       int32(r.Processed),
		Succeeded:       int32(r.Succeeded),
		Failed:          int32(r.Failed),
		Skipped:         int32(r.Skipped),
		SkippedVariants: int32(r.SkippedVariants),
		DroppedRows:     int32(r.DroppedRows),
		Aborted:         r.Aborted,
		DurationMs:      int32(r.Duration.Milliseconds()),
	})
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

// ListImportRuns returns the most recent import runs, newest first.
func (s *Service) ListImportRuns(ctx context.Context, limit int) ([]db.ImportRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	runs, err := db.New(s.db).ListImportRuns(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}
