package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/junction/internal/domain/junction"
)

// Theme colors shared with the rest of the CLI output.
var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"}
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status <path>...",
	Short: "Show what is at each path",
	Long: `Inspect each path and show whether it is absent, a file, a plain
directory or a junction, with the target of every junction.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print JSON instead of a table")
}

func runStatus(cmd *cobra.Command, args []string) error {
	j, _, err := setup(cmd)
	if err != nil {
		return err
	}

	links, err := j.Status(cmd.Context(), args...)
	if err != nil {
		return err
	}

	if statusJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(links)
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderStatus(links))
	return nil
}

func stateStyle(s junction.State) lipgloss.Style {
	switch s {
	case junction.StateJunction:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case junction.StatePlainDirectory:
		return lipgloss.NewStyle().Foreground(colorWarning)
	case junction.StateFile:
		return lipgloss.NewStyle().Foreground(colorError)
	default:
		return mutedStyle
	}
}

// renderStatus lays links out as PATH, STATE and TARGET columns.
func renderStatus(links []junction.Link) string {
	pathWidth := len("PATH")
	for _, l := range links {
		if n := lipgloss.Width(l.Path); n > pathWidth {
			pathWidth = n
		}
	}
	pathCol := lipgloss.NewStyle().Width(pathWidth + 2)
	stateCol := lipgloss.NewStyle().Width(len("directory") + 2)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		pathCol.Render(headerStyle.Render("PATH")),
		stateCol.Render(headerStyle.Render("STATE")),
		headerStyle.Render("TARGET"),
	))
	b.WriteString("\n")

	for _, l := range links {
		target := mutedStyle.Render("-")
		if l.IsJunction() {
			target = l.Target
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			pathCol.Render(l.Path),
			stateCol.Render(stateStyle(l.State).Render(l.State.String())),
			target,
		))
		b.WriteString("\n")
	}

	return b.String()
}
