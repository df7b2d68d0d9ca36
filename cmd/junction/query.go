package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var existsQuiet bool

var existsCmd = &cobra.Command{
	Use:   "exists <link>",
	Short: "Report whether a path is a junction",
	Long: `Print true when <link> is a junction and false otherwise.

With --quiet nothing is printed and the exit code carries the answer:
0 for a junction, 1 for anything else.`,
	Args: cobra.ExactArgs(1),
	RunE: runExists,
}

var targetCmd = &cobra.Command{
	Use:   "target <link>",
	Short: "Print the target of a junction",
	Long:  `Print the directory <link> points at. Exits 1 without output when <link> is not a junction.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTarget,
}

func init() {
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(targetCmd)

	existsCmd.Flags().BoolVarP(&existsQuiet, "quiet", "q", false, "print nothing; report through the exit code")
}

func runExists(cmd *cobra.Command, args []string) error {
	j, _, err := setup(cmd)
	if err != nil {
		return err
	}

	ok, err := j.Exists(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if existsQuiet {
		if !ok {
			return errSilentFailure
		}
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), ok)
	return nil
}

func runTarget(cmd *cobra.Command, args []string) error {
	j, _, err := setup(cmd)
	if err != nil {
		return err
	}

	target, ok, err := j.Target(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return errSilentFailure
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), target)
	return nil
}
