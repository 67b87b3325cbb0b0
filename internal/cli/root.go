// Package cli implements the cobra-based CLI commands for cdn-bundle.
//
// The root command performs a publish run: resolve the release version
// from the latest Git tag, then copy every package bundle into the CDN
// drop folder. The plan subcommand shows what a run would do.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/cdn-bundle/internal/bundle"
	"github.com/shinji-kodama/cdn-bundle/internal/config"
	"github.com/shinji-kodama/cdn-bundle/internal/console"
	"github.com/shinji-kodama/cdn-bundle/internal/gittag"
	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// rootFlags holds the persistent flag values shared by all commands.
type rootFlags struct {
	// debug enables verbose path/version logging.
	debug bool

	// configFile is an explicit config file path (optional).
	configFile string

	// output selects the report format: text, json or yaml.
	output string
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "cdn-bundle",
		Short: "Copy built package bundles into the versioned CDN drop folder",
		Long: `cdn-bundle copies each package's dist/<name>.js and dist/<name>.min.js
into <cdn>/<name>/<version>/, where the version is taken from the most
recent Git tag (the part after the last "@").

Once the files are in the drop folder, verify them and submit a PR to
deploy them to the CDN.

Examples:
  cdn-bundle
  cdn-bundle --debug
  cdn-bundle --output json
  cdn-bundle plan`,

		// The publish run takes no positional arguments; everything comes
		// from flags and configuration.
		Args: cobra.NoArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Execute formats errors itself.
		SilenceErrors: true,

		// Version is displayed when --version flag is used. It is the build
		// version of this binary, not the tag version being published.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// RunE returns an error to Execute, which maps it to an exit code.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, flags)
		},
	}

	// PersistentFlags are inherited by the plan subcommand, so both
	// commands read the same config and print the same way.
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Print computed paths and the resolved version")
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "",
		"Config file (default: ./cdn-bundle.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", string(model.OutputText),
		"Report format: text, json, yaml")

	// The plan command shares the flag struct so it sees the values
	// parsed on the root command line.
	rootCmd.AddCommand(NewPlanCommand(flags))

	return rootCmd
}

// Execute runs the root command and handles exit codes.
//
// Per-package copy failures do not reach here; they are part of the
// report. Only errors that prevent a run (bad flags, unreadable config)
// produce a non-zero exit code.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// The flag value is read back from the command because Execute has
		// no access to the rootFlags struct. An unparsable flag line leaves
		// it at the default, so errors fall back to text.
		jsonOutput := false
		if out, flagErr := rootCmd.PersistentFlags().GetString("output"); flagErr == nil {
			jsonOutput = out == string(model.OutputJSON)
		}

		// Check if the error is a CLIError with a specific exit code.
		// errors.As would also work here, but a type assertion is simpler
		// for this single-level check.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(os.Stderr, jsonOutput, cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		// Generic error (e.g., unknown flag from cobra) — exit with code 1.
		printError(os.Stderr, jsonOutput, err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message as JSON or text.
// Errors always go to w (stderr in Execute), even in JSON mode, because
// stdout is reserved for the report.
func printError(w io.Writer, jsonOutput bool, message string, underlying error) {
	if jsonOutput {
		// The JSON shape is {"error": {"message": ..., "detail": ...}}.
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	// Text format: "Error: <message>[: <cause>]".
	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// run bundles everything a command needs after startup: the immutable
// config, the chosen report format and the narration printer.
type run struct {
	// cfg is built once in prepare and never modified afterwards.
	cfg config.Config

	// format selects how the final report is rendered on out.
	format model.OutputFormat

	// printer carries the step-by-step narration. It writes to stdout in
	// text mode and to stderr otherwise.
	printer *console.Printer

	// out receives the report itself.
	out io.Writer
}

// prepare parses flags and loads configuration. It is shared by the root
// and plan commands.
func prepare(cmd *cobra.Command, flags *rootFlags) (*run, error) {
	// Step 1: Validate --output before touching the filesystem.
	format, err := model.ParseOutputFormat(flags.output)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid --output value", err)
	}

	// Step 2: Load defaults, the optional config file and the environment.
	cfg, usedFile, err := config.Load(config.LoadOptions{ConfigFile: flags.configFile})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to load configuration", err)
	}
	// Only an explicit --debug overrides the config file; an unset flag
	// must not switch off debug: true from cdn-bundle.yaml.
	if cmd.Flags().Changed("debug") {
		cfg = cfg.WithDebug(flags.debug)
	}

	// Step 3: Pick the narration stream. Keep stdout clean for
	// machine-readable reports.
	narration := cmd.OutOrStdout()
	if format != model.OutputText {
		narration = cmd.ErrOrStderr()
	}

	printer := console.New(narration, cfg.Debug)
	if usedFile != "" {
		printer.Debug("loaded config", "file", usedFile)
	}
	printer.Debug("paths", "root", cfg.RootDir, "source", cfg.SourceGlob(), "dest", cfg.DestDir())

	return &run{cfg: cfg, format: format, printer: printer, out: cmd.OutOrStdout()}, nil
}

// resolveVersion looks up the release version. A failed lookup is
// narrated and the configured default is used.
func (r *run) resolveVersion(ctx context.Context) gittag.Resolution {
	res := gittag.NewResolver().Resolve(ctx, r.cfg.RootDir, r.cfg.DefaultVersion)

	// A failed lookup is not fatal: res already carries the default
	// version, so the run continues after reporting why.
	if res.Err != nil {
		r.printer.Error(fmt.Errorf("error retrieving git tag version: %w", res.Err))
	}
	r.printer.Debug("Version", "version", res.Version, "tag", res.Tag, "source", res.Source)
	r.printer.Success("Git Tag version %s", res.Version)
	return res
}

// copier returns a Copier wired to the resolved source glob and drop folder.
func (r *run) copier() *bundle.Copier {
	return bundle.NewCopier(r.cfg.SourceGlob(), r.cfg.DestDir(), r.printer)
}

// runPublish resolves the version and copies all bundles.
func runPublish(cmd *cobra.Command, flags *rootFlags) error {
	r, err := prepare(cmd, flags)
	if err != nil {
		return err
	}

	// The version must be known before any copying starts; resolution
	// blocks until git exits.
	res := r.resolveVersion(cmd.Context())

	// Only a malformed glob pattern fails here. Per-package failures are
	// inside the report and do not change the exit code.
	report, err := r.copier().CopyAll(res.Version)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to discover packages", err)
	}
	report.VersionSource = res.Source

	return writeReport(r.out, r.format, report)
}
