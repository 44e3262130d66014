package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storefront/internal/database"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Print bool
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the database tables",
		Long: `Apply the bootstrap schema to DATABASE_URL.

Every statement is CREATE ... IF NOT EXISTS, so running it against an
existing database is safe. Use --print to write the SQL to stdout instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Print, "print", false, "print the schema instead of applying it")

	return cmd
}

func runSchema(opts *SchemaOptions, cmd *cobra.Command) error {
	if opts.Print {
		_, err := io.WriteString(cmd.OutOrStdout(), database.Schema())
		return err
	}

	cfg, err := loadConfig(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	pool, err := openPool(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.ApplySchema(cmd.Context(), pool); err != nil {
		return WrapExitError(ExitCommandError, "apply schema", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Message("schema applied")
}
