package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	ic "github.com/sjc5/critsplit/internal/critsplit"
)

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build every critical variant of the source stylesheet",
		Example: `  critsplit build --source styles/main.css --criticals home,about
  critsplit build --config .critsplit.yaml --no-bundle`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadedFrom(cmd).Config

			result, err := cfg.Build(cmd.Context())
			if err != nil {
				return buildExitError(err)
			}

			return renderBuildResult(cmd.OutOrStdout(), result)
		},
	}

	addSourceFlags(cmd)

	return cmd
}

// buildExitError maps configuration problems to exit code 2 and everything
// else to 1.
func buildExitError(err error) error {
	switch {
	case errors.Is(err, ic.ErrNoSource),
		errors.Is(err, ic.ErrInvalidCritical),
		errors.Is(err, ic.ErrDuplicateEntry),
		errors.Is(err, ic.ErrDuplicateID),
		errors.Is(err, ic.ErrUnknownEncoding):
		return &ExitError{Code: 2, Err: err}
	}
	return &ExitError{Code: 1, Err: err}
}

func renderBuildResult(w io.Writer, result *ic.BuildResult) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
	table.Header("Profile", "Entry", "Output")

	for _, p := range result.Profiles {
		var outputs []string
		for _, a := range result.Artifacts {
			if a.Entry == p.Critical.Entry {
				outputs = append(outputs, result.Manifest.Entries[a.Name])
			}
		}
		if err := table.Append(p.Critical.ID, p.Critical.Entry, strings.Join(outputs, ", ")); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	for _, name := range result.Deleted {
		if _, err := fmt.Fprintf(w, "deleted script output %s\n", name); err != nil {
			return err
		}
	}

	return nil
}
