package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createForce bool

var createCmd = &cobra.Command{
	Use:   "create <link> <target>",
	Short: "Create a junction",
	Long: `Create a directory junction at <link> that redirects to <target>.

<target> must be an existing directory; a relative target is resolved
against the working directory. When <link> is missing it is created as an
empty directory first. An existing directory at <link> is only converted
with --force (or overwrite = true in the config file).`,
	Example: `  junction create C:\work\vendor D:\shared\vendor
  junction create --force .\cache ..\cache`,
	Args: cobra.ExactArgs(2),
	RunE: runCreate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <link>",
	Short: "Delete a junction",
	Long: `Remove the junction at <link>. The target directory and its contents are
left untouched. A missing <link> is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)

	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "convert an existing directory or retarget an existing junction")
}

func runCreate(cmd *cobra.Command, args []string) error {
	j, cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	link, target := args[0], args[1]
	if err := j.Create(cmd.Context(), link, target, createForce || cfg.Overwrite); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created junction %s -> %s\n", link, target)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	j, _, err := setup(cmd)
	if err != nil {
		return err
	}

	if err := j.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
