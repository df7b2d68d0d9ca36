package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/junction/internal/adapters/filesystem"
	"github.com/felixgeelhaar/junction/internal/adapters/logging"
	"github.com/felixgeelhaar/junction/internal/app"
	"github.com/felixgeelhaar/junction/internal/config"
	"github.com/felixgeelhaar/junction/internal/domain/junction"
	"github.com/felixgeelhaar/junction/internal/ports"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

// errSilentFailure makes the process exit 1 without printing anything.
var errSilentFailure = errors.New("silent failure")

// newApp builds the facade for a command. Tests replace it to run commands
// against in-memory adapters.
var newApp = func(out io.Writer, log ports.Logger) *app.Junction {
	return app.New(out, app.WithLogger(log))
}

var rootCmd = &cobra.Command{
	Use:   "junction",
	Short: "Manage NTFS directory junctions",
	Long: `Junction creates, inspects and removes NTFS directory junctions.

A junction is a directory whose mount-point reparse data redirects every
access to another local directory. Links can be managed one at a time or
declared in a manifest and applied together.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: junction.yaml, .toml or .ini in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default from config)")

	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml", "ini"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config, or the default config file in the working
// directory when the flag is unset.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader(filesystem.NewRealFileSystem())
	if cfgFile != "" {
		return loader.Load(cfgFile)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, _, err := loader.LoadDefault(wd)
	return cfg, err
}

// setup loads the config and builds the logger and facade for cmd.
func setup(cmd *cobra.Command) (*app.Junction, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	format := cfg.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	if format != "text" && format != "json" {
		return nil, nil, fmt.Errorf("invalid --log-format %q: use text or json", format)
	}

	log, err := logging.New(level, format, logging.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return nil, nil, err
	}
	return newApp(cmd.OutOrStdout(), log), cfg, nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var jerr *junction.Error
	if errors.As(err, &jerr) {
		msg := jerr.Message
		if msg == "" {
			msg = jerr.Error()
		}
		if jerr.Path != "" {
			msg += fmt.Sprintf(" (at %s)", jerr.Path)
		}
		if jerr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", jerr.Suggestion)
		}
		if verbose && jerr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", jerr.Underlying)
			if errno, ok := jerr.Errno(); ok {
				msg += fmt.Sprintf(" (OS error %d)", uint32(errno))
			}
		}
		return msg
	}

	var list *config.ErrorList
	if errors.As(err, &list) && list.Len() > 1 {
		return list.Error()
	}

	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
