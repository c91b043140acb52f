// Package config loads critsplit settings for the CLI.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CRITSPLIT_ prefix)
//  3. Config file (.critsplit.yaml)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ic "github.com/sjc5/critsplit/internal/critsplit"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".critsplit.yaml"

// Config keys, shared by the file, env variables and flags.
const (
	KeySource         = "source"
	KeyCriticals      = "criticals"
	KeyEncoding       = "encoding"
	KeyDistDir        = "dist-dir"
	KeyNoBundle       = "no-bundle"
	KeyDeleteJSOutput = "delete-js-output"
	KeyMarker         = "marker"
	KeyExtraEntries   = "extra-entries"
	KeyWatch          = "watch"
	KeyIgnoreDirs     = "ignore-dirs"
	KeyIgnoreFiles    = "ignore-files"
	KeyBuildOnly      = "build-only"
	KeyQuiet          = "quiet"
)

// MarkerPlaceholder is replaced by the escaped profile ID in a marker template.
const MarkerPlaceholder = "{id}"

var ErrBadMarker = errors.New("invalid marker template")

// Loaded is the resolved CLI configuration.
type Loaded struct {
	Config *ic.Config

	Quiet bool

	// ConfigFile is the resolved path to the config file used, if any.
	ConfigFile string
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Loaded, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	criticals, err := ic.NormalizeCriticals(v.Get(KeyCriticals))
	if err != nil {
		return nil, err
	}

	cfg := &ic.Config{
		Source:       v.GetString(KeySource),
		Criticals:    criticals,
		Encoding:     v.GetString(KeyEncoding),
		DistDir:      v.GetString(KeyDistDir),
		NoBundle:     v.GetBool(KeyNoBundle),
		ExtraEntries: v.GetStringMapString(KeyExtraEntries),
		DevConfig: &ic.DevConfig{
			WatchPatterns: v.GetStringSlice(KeyWatch),
			IgnorePatterns: ic.IgnorePatterns{
				Dirs:  v.GetStringSlice(KeyIgnoreDirs),
				Files: v.GetStringSlice(KeyIgnoreFiles),
			},
			BuildOnly: v.GetBool(KeyBuildOnly),
		},
	}

	deleteJSOutput := v.GetBool(KeyDeleteJSOutput)
	cfg.DeleteJSOutput = &deleteJSOutput

	if marker := v.GetString(KeyMarker); marker != "" {
		pattern, err := MarkerFromTemplate(marker)
		if err != nil {
			return nil, err
		}
		cfg.Pattern = pattern
	}

	return &Loaded{
		Config:     cfg,
		Quiet:      v.GetBool(KeyQuiet),
		ConfigFile: v.ConfigFileUsed(),
	}, nil
}

// MarkerFromTemplate builds a marker strategy from a regular expression in
// which MarkerPlaceholder stands for the (escaped) profile ID, e.g.
// `critical\[[^\]]*\b{id}\b`.
func MarkerFromTemplate(tmpl string) (ic.MarkerPattern, error) {
	if !strings.Contains(tmpl, MarkerPlaceholder) {
		return nil, fmt.Errorf("%w: %q does not contain %s", ErrBadMarker, tmpl, MarkerPlaceholder)
	}
	if _, err := regexp.Compile(strings.ReplaceAll(tmpl, MarkerPlaceholder, "x")); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMarker, err)
	}

	return func(profileID string) ic.Matcher {
		re, err := regexp.Compile(strings.ReplaceAll(tmpl, MarkerPlaceholder, regexp.QuoteMeta(profileID)))
		if err != nil {
			return func(string) bool { return false }
		}
		return re.MatchString
	}, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyEncoding, "utf8")
	v.SetDefault(KeyDistDir, "dist")
	v.SetDefault(KeyDeleteJSOutput, true)
	v.SetDefault(KeyNoBundle, false)
	v.SetDefault(KeyQuiet, false)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("CRITSPLIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "critsplit"))
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}
