package ic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"golang.org/x/sync/semaphore"
)

const maxConcurrentProfiles = 100

type buildTaskError struct {
	task string
	err  error
}

func (e buildTaskError) Error() string {
	return fmt.Sprintf("error during build task %s: %v", e.task, e.err)
}

func (e buildTaskError) Unwrap() error {
	return e.err
}

// ProfileResult is the filtered stylesheet for one critical profile.
type ProfileResult struct {
	Critical    Critical
	VirtualPath string
	Text        string
}

type BuildResult struct {
	Profiles  []ProfileResult // in Criticals order
	Artifacts []Artifact      // as written, after pruning and minification
	Deleted   []string        // script artifacts dropped for critical entries
	Manifest  *Manifest
}

// Validate fills in defaults and normalizes Criticals. It must succeed
// before any profile is filtered.
func (c *Config) Validate() error {
	if c.Logger == nil {
		c.Logger = Log
	}
	if c.Source == "" {
		return ErrNoSource
	}
	if c.Encoding == "" {
		c.Encoding = defaultEncoding
	}
	if _, err := lookupEncoding(c.Encoding); err != nil {
		return err
	}
	criticals, err := NormalizeCriticals(c.Criticals)
	if err != nil {
		return err
	}
	c.Criticals = criticals
	for name := range c.ExtraEntries {
		for _, critical := range criticals {
			if critical.Entry == name {
				return fmt.Errorf("%w %q (also an extra entry)", ErrDuplicateEntry, name)
			}
		}
	}
	return nil
}

// SetupDistDir creates the output directories a build writes into.
func (c *Config) SetupDistDir() error {
	dirs := c.getCleanDirs()

	if err := os.MkdirAll(dirs.Internal, 0755); err != nil {
		return fmt.Errorf("error making internal directory: %w", err)
	}

	// add a x file so that go:embed doesn't complain
	if err := os.WriteFile(filepath.Join(dirs.Critsplit, goEmbedFixerFile), []byte(""), 0644); err != nil {
		return fmt.Errorf("error making x file: %w", err)
	}

	if err := os.MkdirAll(dirs.PublicOut, 0755); err != nil {
		return fmt.Errorf("error making public directory: %w", err)
	}

	return nil
}

func (c *Config) Build(ctx context.Context) (*BuildResult, error) {
	setIsBuildTime(true)
	defer setIsBuildTime(false)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := time.Now()

	if err := c.SetupDistDir(); err != nil {
		return nil, buildTaskError{task: "SetupDistDir", err: err}
	}

	source, err := c.readSource()
	if err != nil {
		return nil, buildTaskError{task: "readSource", err: err}
	}

	profiles, err := c.filterProfiles(ctx, source)
	if err != nil {
		return nil, buildTaskError{task: "filterProfiles", err: err}
	}

	job := c.newBundleJob(profiles)
	artifacts, err := c.getBundler().bundle(job)
	if err != nil {
		return nil, buildTaskError{task: "bundle", err: err}
	}

	var deleted []string
	if c.getDeleteJSOutput() {
		artifacts, deleted = c.deleteJSOutput(artifacts)
		for _, name := range deleted {
			c.log().Infof("deleted script output %s", name)
		}
	}

	if !GetIsDev() {
		if artifacts, err = minifyArtifacts(artifacts); err != nil {
			return nil, buildTaskError{task: "minify", err: err}
		}
	}

	manifest, err := c.writeArtifacts(artifacts, profiles)
	if err != nil {
		return nil, buildTaskError{task: "writeArtifacts", err: err}
	}

	c.log().Infof("built %d critical variant(s) of %s in %v", len(profiles), c.Source, time.Since(a))

	return &BuildResult{
		Profiles:  profiles,
		Artifacts: artifacts,
		Deleted:   deleted,
		Manifest:  manifest,
	}, nil
}

// filterProfiles runs Filter once per critical. Results keep the order of
// c.Criticals regardless of completion order.
func (c *Config) filterProfiles(ctx context.Context, source string) ([]ProfileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sem := c.dev.fileSemaphore
	if sem == nil {
		sem = semaphore.NewWeighted(maxConcurrentProfiles)
	}

	results := make([]ProfileResult, len(c.Criticals))
	errs := make([]error, len(c.Criticals))

	var wg sync.WaitGroup
	for i, critical := range c.Criticals {
		wg.Add(1)
		go func(i int, critical Critical) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				errs[i] = fmt.Errorf("error acquiring semaphore for %s: %w", critical.ID, err)
				return
			}
			defer sem.Release(1)

			results[i] = ProfileResult{
				Critical:    critical,
				VirtualPath: VirtualSourcePath(c.Source, critical.ID),
				Text:        Filter(source, critical.ID, c.Pattern),
			}
		}(i, critical)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Config) newBundleJob(profiles []ProfileResult) *bundleJob {
	job := &bundleJob{
		virtual: VirtualFiles{},
		ext:     filepath.Ext(c.Source),
	}
	for _, p := range profiles {
		job.virtual[p.VirtualPath] = p.Text
		job.entries = append(job.entries, entryPoint{entry: p.Critical.Entry, inputPath: p.VirtualPath})
	}

	extraNames := make([]string, 0, len(c.ExtraEntries))
	for name := range c.ExtraEntries {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		job.entries = append(job.entries, entryPoint{entry: name, inputPath: c.ExtraEntries[name]})
	}

	return job
}

func minifyArtifacts(artifacts []Artifact) ([]Artifact, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)

	for i, a := range artifacts {
		if filepath.Ext(a.Name) != ".css" {
			continue
		}
		minified, err := m.Bytes("text/css", a.Contents)
		if err != nil {
			return nil, fmt.Errorf("error minifying %s: %w", a.Name, err)
		}
		artifacts[i].Contents = minified
	}
	return artifacts, nil
}

// writeArtifacts writes hashed outputs and the inline critical CSS files,
// removes outputs of the prior build that are no longer current, and saves
// the manifest.
func (c *Config) writeArtifacts(artifacts []Artifact, profiles []ProfileResult) (*Manifest, error) {
	dirs := c.getCleanDirs()

	prior, err := c.loadPriorManifest()
	if err != nil {
		c.log().Warningf("ignoring unreadable prior manifest: %v", err)
		prior = newManifest()
	}

	manifest := newManifest()
	cssByEntry := map[string][]byte{}

	for _, a := range artifacts {
		hashedName := getHashedFilenameFromBytes(a.Contents, a.Name)
		outPath := filepath.Join(dirs.PublicOut, filepath.FromSlash(hashedName))
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return nil, fmt.Errorf("error creating output directory: %w", err)
		}
		if err := os.WriteFile(outPath, a.Contents, 0644); err != nil {
			return nil, fmt.Errorf("error writing %s: %w", hashedName, err)
		}
		manifest.Entries[a.Name] = hashedName
		if filepath.Ext(a.Name) == ".css" {
			cssByEntry[a.Entry] = a.Contents
		}
	}

	for _, p := range profiles {
		contents, ok := cssByEntry[p.Critical.Entry]
		if !ok {
			contents = []byte(p.Text)
		}
		name := criticalTextFileName(p.Critical.ID)
		if err := os.WriteFile(filepath.Join(dirs.Internal, name), contents, 0644); err != nil {
			return nil, fmt.Errorf("error writing critical CSS for %s: %w", p.Critical.ID, err)
		}
		manifest.Criticals[p.Critical.ID] = name
	}

	c.removeStaleOutputs(prior, manifest)

	if err := c.saveManifest(manifest); err != nil {
		return nil, fmt.Errorf("error saving manifest: %w", err)
	}
	return manifest, nil
}

func (c *Config) removeStaleOutputs(prior, current *Manifest) {
	dirs := c.getCleanDirs()

	keep := map[string]bool{}
	for _, v := range current.Entries {
		keep[filepath.Join(dirs.PublicOut, filepath.FromSlash(v))] = true
	}
	for _, v := range current.Criticals {
		keep[filepath.Join(dirs.Internal, v)] = true
	}

	var stale []string
	for _, v := range prior.Entries {
		stale = append(stale, filepath.Join(dirs.PublicOut, filepath.FromSlash(v)))
	}
	for _, v := range prior.Criticals {
		stale = append(stale, filepath.Join(dirs.Internal, v))
	}

	for _, p := range stale {
		if keep[p] {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			c.log().Errorf("error removing stale output %s: %v", p, err)
		}
	}
}
