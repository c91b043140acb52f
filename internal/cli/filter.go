package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sjc5/critsplit/internal/config"
	ic "github.com/sjc5/critsplit/internal/critsplit"
)

func newFilterCommand() *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "filter <stylesheet>",
		Short: "Print the critical variant of a stylesheet for one profile",
		Long: `Print the stylesheet with every @import line that is not tagged for the
given profile removed. Nothing is bundled or written to disk.`,
		Example: `  critsplit filter styles/main.css --profile home
  critsplit filter styles/main.css -p home --marker 'critical\[[^\]]*\b{id}\b'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if profileID == "" {
				return &ExitError{Code: 2, Err: errors.New("--profile (-p) is required")}
			}

			cfg := loadedFrom(cmd).Config

			source, err := ic.ReadSource(args[0], cfg.Encoding)
			if err != nil {
				if errors.Is(err, ic.ErrUnknownEncoding) {
					return &ExitError{Code: 2, Err: err}
				}
				return &ExitError{Code: 1, Err: err}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ic.Filter(source, profileID, cfg.Pattern))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&profileID, "profile", "p", "", "critical profile ID")
	f.String(config.KeyEncoding, "utf8", "source text encoding")
	f.String(config.KeyMarker, "", "custom marker regex; "+config.MarkerPlaceholder+" stands for the profile ID")

	return cmd
}
