package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/storefront/internal/core"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Import finished but some products failed
	ExitCommandError = 2 // Command error (bad file, config, database unreachable)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// userError prefixes err with its support message and code when the error
// maps to one. Errors that would only get the generic ERR000 text are
// returned as they are.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Report writes an import report.
func (f *OutputFormatter) Report(r core.ImportReport) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "import %s (%s)\n", r.ImportID, r.Policy)
	if r.FileName != "" {
		fmt.Fprintf(&b, "  file:              %s\n", r.FileName)
	}
	fmt.Fprintf(&b, "  products:          %d\n", r.Processed)
	fmt.Fprintf(&b, "  succeeded:         %d\n", r.Succeeded)
	fmt.Fprintf(&b, "  failed:            %d\n", r.Failed)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, "  skipped:           %d\n", r.Skipped)
	}
	if r.SkippedVariants > 0 {
		fmt.Fprintf(&b, "  skipped variants:  %d\n", r.SkippedVariants)
	}
	if r.DroppedRows > 0 {
		fmt.Fprintf(&b, "  dropped rows:      %d\n", r.DroppedRows)
	}
	if r.Aborted {
		b.WriteString("  batch rolled back\n")
	}
	for _, fl := range r.Failures {
		fmt.Fprintf(&b, "  - %s (%d rows) %s [%s]: %s\n", fl.Key, fl.Rows, fl.Kind, fl.Code, fl.Message)
	}
	fmt.Fprintf(&b, "  duration:          %s\n", r.Duration.Round(time.Millisecond))

	_, err := io.WriteString(f.Writer, b.String())
	return err
}

// Preview writes an import preview.
func (f *OutputFormatter) Preview(p *core.ImportPreview) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	sum := p.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "dry run: %d rows, %d products\n", sum.Rows, sum.Products)
	fmt.Fprintf(&b, "  new:               %d\n", sum.NewProducts)
	fmt.Fprintf(&b, "  already stored:    %d\n", sum.Existing)
	fmt.Fprintf(&b, "  invalid:           %d\n", sum.Invalid)
	fmt.Fprintf(&b, "  variants:          %d\n", sum.Variants)
	if sum.ExistingSKUs > 0 {
		fmt.Fprintf(&b, "  existing skus:     %d (%s)\n", sum.ExistingSKUs, strings.Join(p.ExistingSKUs, ", "))
	}
	for _, d := range p.DuplicateSamples {
		fmt.Fprintf(&b, "  - sku %s claimed by %s\n", d.SKU, strings.Join(d.Products, ", "))
	}
	for _, e := range p.ExistingSamples {
		fmt.Fprintf(&b, "  - %s exists\n", e.Handle)
	}
	for _, e := range p.InvalidSamples {
		fmt.Fprintf(&b, "  - %s invalid: %s\n", e.Key, e.Error)
	}

	_, err := io.WriteString(f.Writer, b.String())
	return err
}

// Message writes a one-line status message, or {"status":"ok","message":...} as JSON.
func (f *OutputFormatter) Message(msg string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(map[string]string{"status": "ok", "message": msg})
	}
	_, err := fmt.Fprintln(f.Writer, msg)
	return err
}
