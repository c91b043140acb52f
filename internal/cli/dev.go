package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sjc5/critsplit/internal/config"
)

func newDevCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Build, then rebuild on every stylesheet change",
		Long: `Build once, then watch the source stylesheet's directory and rebuild every
critical variant on change. Unless --build-only is set, a sidecar refresh
server tells connected browsers to reload after each rebuild.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg := loadedFrom(cmd).Config
			if err := cfg.Validate(); err != nil {
				return buildExitError(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			defer func() {
				if r := recover(); r != nil {
					err = &ExitError{Code: 1, Err: fmt.Errorf("%v", r)}
				}
			}()

			cfg.MustStartDev(ctx)
			return nil
		},
	}

	addSourceFlags(cmd)

	f := cmd.Flags()
	f.StringSlice(config.KeyWatch, nil, "glob patterns that trigger a rebuild (default **/*.css)")
	f.StringSlice(config.KeyIgnoreDirs, nil, "glob patterns of directories to skip")
	f.StringSlice(config.KeyIgnoreFiles, nil, "glob patterns of files to skip")
	f.Bool(config.KeyBuildOnly, false, "do not start the browser refresh server")

	return cmd
}
