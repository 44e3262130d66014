package cli

import (
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storefront/internal/core"
	"github.com/JonMunkholm/storefront/internal/sheet"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Policy    string
	Sheet     string
	KeyColumn string
	DryRun    bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import products from a .csv or .xlsx file",
		Long: `Import products from a spreadsheet.

Rows are grouped by the key column (Handle by default). Rows with an empty
handle continue the product above them. With --policy isolate each product
is written in its own transaction and failures are reported; with
--policy abort the first failure rolls back the whole file.

Exits 1 when any product failed, 2 when the import could not run.

Example:
  storefront import products.xlsx
  storefront import --dry-run products.xlsx
  storefront import --policy abort --format json products.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "failure policy: isolate or abort (default from IMPORT_FAILURE_POLICY)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "worksheet to read from an .xlsx file")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what the import would do without writing")
	cmd.Flags().StringVar(&opts.KeyColumn, "key-column", "", "column that groups rows into products (default from IMPORT_KEY_COLUMN)")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	var policy core.Policy
	if opts.Policy != "" {
		p, err := core.ParsePolicy(opts.Policy)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --policy", err)
		}
		policy = p
	}

	cfg, err := loadConfig(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = cfg.Import.Sheet
	}
	rows, err := sheet.ReadFile(path, sheet.Options{Sheet: sheetName, MaxSize: int64(cfg.Import.MaxFileSize)})
	if err != nil {
		return WrapExitError(ExitCommandError, "read file", userError(err))
	}

	// Ctrl-C cancels the run; committed products stay and the partial
	// report is still recorded.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	service, err := newService(pool, cfg)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.DryRun {
		preview, err := service.PreviewImport(ctx, rows, opts.KeyColumn)
		if err != nil {
			return WrapExitError(ExitCommandError, "preview", userError(err))
		}
		return formatter.Preview(preview)
	}

	report, err := service.ImportRows(ctx, rows, core.ImportOptions{
		FileName:  filepath.Base(path),
		Policy:    policy,
		KeyColumn: opts.KeyColumn,
		Progress: func(p core.ImportProgress) {
			if p.Err != nil {
				slog.Debug("product failed", "done", p.Done, "total", p.Total, "key", p.Key, "error", p.Err)
				return
			}
			slog.Debug("product written", "done", p.Done, "total", p.Total, "key", p.Key)
		},
	})
	if err != nil {
		if report.Processed > 0 {
			_ = formatter.Report(report)
		}
		return WrapExitError(ExitCommandError, "import", userError(err))
	}

	if err := formatter.Report(report); err != nil {
		return err
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d products failed", report.Failed, report.Processed))
	}
	return nil
}
