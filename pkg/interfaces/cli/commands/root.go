package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/gestionale/pkg/interfaces/cli/output"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configPath  string
	catalogPath string
	format      string
	outputFile  string
	verbose     bool
}

func (o *globalOptions) outputConfig() output.Config {
	return output.Config{Format: o.format, OutputFile: o.outputFile}
}

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "gestionale",
		Short: "Gestionale - raw material stock and production",
		Long: `Gestionale tracks raw material stock and answers how many finished
products can be made from it. Production runs consume stock atomically,
so concurrent runs never oversell a material.

Examples:
  gestionale producible SCIARPA --catalog ./catalog
  gestionale shortage GILET --units 10 --catalog catalog.yaml
  gestionale produce SCIARPA --units 3 --catalog catalog.yaml
  gestionale recipe set SCIARPA LANA=2.5 FODERA=0.5 --catalog catalog.yaml
  gestionale materials list --search lana --format csv
  gestionale summary --format xlsx --output summary.xlsx
  gestionale serve --config config.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !output.ValidFormat(opts.format) {
				return fmt.Errorf("invalid --format %q: expected one of %s",
					opts.format, strings.Join(output.Formats, ", "))
			}
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to config file (default ./config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "",
		"CSV directory or YAML file seeding materials, products and recipes")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", output.FormatText,
		"Output format: text, json, csv, xlsx")
	rootCmd.PersistentFlags().StringVarP(&opts.outputFile, "output", "o", "",
		"Write output to this file instead of stdout (required for xlsx)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(newProducibleCommand(opts))
	rootCmd.AddCommand(newCostCommand(opts))
	rootCmd.AddCommand(newShortageCommand(opts))
	rootCmd.AddCommand(newProjectCommand(opts))
	rootCmd.AddCommand(newProduceCommand(opts))
	rootCmd.AddCommand(newRecipeCommand(opts))
	rootCmd.AddCommand(newMaterialsCommand(opts))
	rootCmd.AddCommand(newProductsCommand(opts))
	rootCmd.AddCommand(newOrdersCommand(opts))
	rootCmd.AddCommand(newSummaryCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp builds the application for one command invocation, runs fn and
// renders the report it returns.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(app *App) (output.Report, error)) error {
	app, err := NewApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := fn(app)
	if err != nil {
		return err
	}
	return output.Generate(cmd.OutOrStdout(), report, opts.outputConfig())
}
