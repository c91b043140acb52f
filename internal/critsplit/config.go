package ic

import (
	"io/fs"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sjc5/kit/pkg/colorlog"
	"golang.org/x/sync/semaphore"
)

type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var Log Logger = &colorlog.Log{}

type Config struct {
	// Path to the stylesheet that will be split, relative to where you run
	// your build and dev commands from.
	Source string

	/*
		Criticals lists the critical-rendering profiles to emit. Each profile
		gets its own virtual copy of Source in which every @import line not
		tagged for that profile has been dropped. Use NormalizeCriticals if
		you are starting from loosely-shaped input (a string, a list of
		strings, a record, a list of records).
	*/
	Criticals []Critical

	// Marker strategy. If nil, DefaultMarkerPattern is used.
	Pattern MarkerPattern

	// If nil, defaults to true. Removes any script artifact the bundler
	// emits for a critical entry (critical entries are style-only).
	DeleteJSOutput *bool

	// Text encoding of Source. Defaults to "utf8".
	Encoding string

	// Output root. Defaults to "dist". Critsplit writes into DistDir/critsplit.
	DistDir string

	// Skips esbuild entirely and writes the filtered text of each profile
	// as-is. Relative @imports are then left for the browser to resolve.
	NoBundle bool

	// Additional entry points bundled in the same esbuild run, keyed by
	// entry name, e.g. {"main": "./styles/main.css"}.
	ExtraEntries map[string]string

	/*
		If not nil, the embedded file system will be used in production.
		If nil, the disk file system next to the executable will be used.
		Only relevant in prod (in dev mode, the real disk FS is always used).
		Assumes an embed directive of the form "//go:embed critsplit"
		placed inside your DistDir.
	*/
	DistFS fs.FS

	DevConfig *DevConfig

	Logger Logger

	dev     dev
	runtime runtimeState
}

type DevConfig struct {
	// Glob patterns (relative to the Source's directory) that trigger a
	// rebuild. Defaults to ["**/*.css"].
	WatchPatterns  []string
	IgnorePatterns IgnorePatterns
	OnChange       []OnChange

	// Skips the sidecar refresh server; only rebuilds on change.
	BuildOnly bool
}

type OnChangeFunc func(string) error

type OnChange struct {
	Strategy         string
	Func             OnChangeFunc
	ExcludedPatterns []string // Glob patterns
}

type IgnorePatterns struct {
	Dirs  []string // Glob patterns
	Files []string // Glob patterns
}

// Critical is one normalized profile: ID selects the tagged imports and
// Entry names the build entry point.
type Critical struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Entry string `json:"entry,omitempty" yaml:"entry,omitempty" mapstructure:"entry"`
}

type withMu[T any] struct {
	v  T
	mu sync.Mutex
}

type dev struct {
	initOnce            sync.Once
	watcher             *fsnotify.Watcher
	manager             *clientManager
	fileSemaphore       *semaphore.Weighted
	watchRoot           string
	watchPatterns       []string
	ignoredDirPatterns  []string
	ignoredFilePatterns []string
	lastBuild           withMu[*BuildResult]

	// held for a whole rebuild cycle; builds on one Config never overlap
	buildMu sync.Mutex
}

func (c *Config) log() Logger {
	if c.Logger == nil {
		return Log
	}
	return c.Logger
}

func (c *Config) getDeleteJSOutput() bool {
	return c.DeleteJSOutput == nil || *c.DeleteJSOutput
}
