// Package cli implements the cobra command tree for critsplit.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sjc5/critsplit/internal/config"
	ic "github.com/sjc5/critsplit/internal/critsplit"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

type loadedKey struct{}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "critsplit",
		Short: "Split a stylesheet into per-profile critical CSS bundles",
		Long: `critsplit reads one stylesheet and emits a critical variant of it for
every configured profile. In each variant, @import lines whose marker comment
does not name the profile (or "all") are dropped, for example:

  @import 'hero.css'; /* critical: home, about; */

Each variant is bundled as its own entry point and written, hashed, to the
dist directory along with a manifest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			if loaded.Quiet {
				loaded.Config.Logger = quietLogger{}
			} else {
				loaded.Config.Logger = ic.Log
			}

			cmd.SetContext(context.WithValue(cmd.Context(), loadedKey{}, loaded))
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: "+config.DefaultFileName+")")
	pf.BoolP(config.KeyQuiet, "q", false, "suppress non-essential output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newBuildCommand(),
		newFilterCommand(),
		newDevCommand(),
		newInitCommand(),
		newVersionCommand(),
	)

	return cmd
}

func loadedFrom(cmd *cobra.Command) *config.Loaded {
	if loaded, ok := cmd.Context().Value(loadedKey{}).(*config.Loaded); ok {
		return loaded
	}
	return &config.Loaded{Config: &ic.Config{Logger: quietLogger{}}}
}

// addSourceFlags registers the flags shared by build and dev.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP(config.KeySource, "s", "", "stylesheet to split")
	f.StringSliceP(config.KeyCriticals, "c", nil, "critical profile IDs (entries default to <id>.critical)")
	f.String(config.KeyEncoding, "utf8", "source text encoding")
	f.String(config.KeyDistDir, "dist", "output root")
	f.Bool(config.KeyNoBundle, false, "emit filtered text without bundling imports")
	f.Bool(config.KeyDeleteJSOutput, true, "drop script outputs of critical entries")
	f.String(config.KeyMarker, "", "custom marker regex; "+config.MarkerPlaceholder+" stands for the profile ID")
}
