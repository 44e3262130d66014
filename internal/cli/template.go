package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storefront/internal/sheet"
)

// TemplateOptions holds flags for the template command.
type TemplateOptions struct {
	*RootOptions
	Output string
}

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TemplateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "template",
		Short:         "Write an empty import workbook",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "products_template.xlsx", "output path, - for stdout")

	return cmd
}

func runTemplate(opts *TemplateOptions, cmd *cobra.Command) error {
	if opts.Output == "-" {
		return sheet.WriteTemplate(cmd.OutOrStdout())
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "create template", err)
	}
	if err := sheet.WriteTemplate(f); err != nil {
		f.Close()
		return WrapExitError(ExitCommandError, "write template", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "write template", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Message(fmt.Sprintf("wrote %s", opts.Output))
}
