// Package cli — plan.go implements the "cdn-bundle plan" command.
//
// plan resolves the version and discovers packages exactly like a publish
// run, then prints the source and destination of every file that would be
// copied. Nothing is written.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/cdn-bundle/internal/model"
)

// NewPlanCommand creates the "plan" cobra command.
func NewPlanCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show which bundles would be copied, without copying",
		Long: `Resolve the version and list every package bundle with the CDN drop
path it would be copied to. No directories are created and no files
are written.

Examples:
  cdn-bundle plan
  cdn-bundle plan --output yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, flags)
		},
	}
}

// runPlan is the main logic function for the plan command.
func runPlan(cmd *cobra.Command, flags *rootFlags) error {
	r, err := prepare(cmd, flags)
	if err != nil {
		return err
	}

	res := r.resolveVersion(cmd.Context())

	results, err := r.copier().Plan(res.Version)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to discover packages", err)
	}

	return writePlan(r.out, r.format, model.BatchReport{
		Version:       res.Version,
		VersionSource: res.Source,
		Results:       results,
	})
}
