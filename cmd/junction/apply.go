package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	applyFile   string
	applyDryRun bool
	applyForce  bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create the junctions listed in a manifest",
	Long: `Apply a link manifest (.yaml, .yml or .toml).

Each entry is inspected first. Missing links are created, links already
pointing at their target are left alone, and existing directories or
junctions pointing elsewhere are replaced only when overwrite is set for the
entry, in the config file, or with --force. Everything else is reported as a
conflict. A failing entry does not stop the run.`,
	Example: `  junction apply -f links.yaml
  junction apply -f links.toml --dry-run`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "manifest file (default: manifest from the config file)")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "show what would be done without making changes")
	applyCmd.Flags().BoolVar(&applyForce, "force", false, "overwrite entries that do not set overwrite themselves")

	_ = applyCmd.RegisterFlagCompletionFunc("file", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

func runApply(cmd *cobra.Command, _ []string) error {
	j, cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	path := applyFile
	if path == "" {
		path = cfg.Manifest
	}
	if path == "" {
		return errors.New("no manifest: pass -f or set manifest in the config file")
	}

	plan, err := j.Plan(cmd.Context(), path, applyForce || cfg.Overwrite)
	if err != nil {
		return err
	}
	j.PrintPlan(plan)

	report := j.Apply(cmd.Context(), plan, applyDryRun)
	j.PrintReport(report)

	if !report.OK() {
		return fmt.Errorf("apply incomplete: %s", report.Summary())
	}
	return nil
}
