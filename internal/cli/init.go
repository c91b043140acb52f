package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sjc5/critsplit/internal/config"
	ic "github.com/sjc5/critsplit/internal/critsplit"
)

type starterConfig struct {
	Source         string   `yaml:"source"`
	Criticals      []any    `yaml:"criticals"`
	Encoding       string   `yaml:"encoding"`
	DistDir        string   `yaml:"dist-dir"`
	DeleteJSOutput bool     `yaml:"delete-js-output"`
	Watch          []string `yaml:"watch"`
}

func newStarterConfig(source string) starterConfig {
	return starterConfig{
		Source: source,
		Criticals: []any{
			"home",
			ic.Critical{ID: "article", Entry: "article-critical"},
		},
		Encoding:       "utf8",
		DistDir:        "dist",
		DeleteJSOutput: true,
		Watch:          []string{"**/*.css"},
	}
}

func newInitCommand() *cobra.Command {
	var (
		force  bool
		source string
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter " + config.DefaultFileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return &ExitError{Code: 2, Err: fmt.Errorf("%s already exists (use --force to overwrite)", path)}
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return &ExitError{Code: 1, Err: err}
			}

			out, err := yaml.Marshal(newStarterConfig(source))
			if err != nil {
				return &ExitError{Code: 1, Err: fmt.Errorf("marshalling starter config: %w", err)}
			}

			if err := os.WriteFile(path, out, 0644); err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&source, "stylesheet", "styles/main.css", "source stylesheet to reference")

	return cmd
}
