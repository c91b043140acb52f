package ic

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Artifact is one output file produced for an entry point.
type Artifact struct {
	Entry    string
	Name     string // e.g. "home.critical.css"
	Contents []byte
}

type entryPoint struct {
	entry     string
	inputPath string
}

type bundleJob struct {
	entries []entryPoint
	virtual VirtualFiles
	ext     string
}

type bundler interface {
	bundle(job *bundleJob) ([]Artifact, error)
}

func (c *Config) getBundler() bundler {
	if c.NoBundle {
		return passthroughBundler{}
	}
	return &esbuildBundler{outDir: c.getCleanDirs().PublicOut}
}

type esbuildBundler struct {
	outDir string
}

func (b *esbuildBundler) bundle(job *bundleJob) ([]Artifact, error) {
	outDir, err := filepath.Abs(b.outDir)
	if err != nil {
		return nil, fmt.Errorf("error resolving out dir: %w", err)
	}

	entryPoints := make([]api.EntryPoint, 0, len(job.entries))
	for _, ep := range job.entries {
		entryPoints = append(entryPoints, api.EntryPoint{InputPath: ep.inputPath, OutputPath: ep.entry})
	}

	result := api.Build(api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		Bundle:              true,
		Write:               false,
		Outdir:              outDir,
		LogLevel:            api.LogLevelSilent,
		Loader:              map[string]api.Loader{".css": api.LoaderCSS},
		Plugins:             []api.Plugin{job.virtual.plugin()},
	})

	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return nil, fmt.Errorf("esbuild failed with %d error(s):\n%s", len(result.Errors), strings.Join(msgs, ""))
	}

	artifacts := make([]Artifact, 0, len(result.OutputFiles))
	for _, f := range result.OutputFiles {
		name, err := filepath.Rel(outDir, f.Path)
		if err != nil {
			return nil, fmt.Errorf("error resolving output %s: %w", f.Path, err)
		}
		name = filepath.ToSlash(name)
		artifacts = append(artifacts, Artifact{
			Entry:    strings.TrimSuffix(name, filepath.Ext(name)),
			Name:     name,
			Contents: f.Contents,
		})
	}
	sortArtifacts(artifacts)
	return artifacts, nil
}

type passthroughBundler struct{}

func (passthroughBundler) bundle(job *bundleJob) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(job.entries))
	for _, ep := range job.entries {
		var contents []byte
		if text, isVirtual := job.virtual[ep.inputPath]; isVirtual {
			contents = []byte(text)
		} else {
			var err error
			contents, err = os.ReadFile(ep.inputPath)
			if err != nil {
				return nil, fmt.Errorf("error reading entry %s: %w", ep.entry, err)
			}
		}
		ext := filepath.Ext(ep.inputPath)
		if ext == "" {
			ext = job.ext
		}
		artifacts = append(artifacts, Artifact{Entry: ep.entry, Name: ep.entry + ext, Contents: contents})
	}
	sortArtifacts(artifacts)
	return artifacts, nil
}

func sortArtifacts(artifacts []Artifact) {
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Name < artifacts[j].Name })
}
