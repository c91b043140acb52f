package ic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/semaphore"
)

const debounceInterval = 30 * time.Millisecond

var (
	defaultWatchPatterns   = []string{"**/*.css"}
	naiveIgnoreDirPatterns = []string{"**/.git", "**/node_modules"}
)

func (c *Config) devInitOnce() {
	c.dev.initOnce.Do(func() {
		if c.DevConfig == nil {
			c.DevConfig = &DevConfig{}
		}

		c.dev.manager = newClientManager()
		c.dev.fileSemaphore = semaphore.NewWeighted(maxConcurrentProfiles)

		root := filepath.Dir(filepath.Clean(c.Source))
		c.dev.watchRoot = root

		patterns := c.DevConfig.WatchPatterns
		if len(patterns) == 0 {
			patterns = defaultWatchPatterns
		}
		for _, p := range patterns {
			c.dev.watchPatterns = append(c.dev.watchPatterns, filepath.Join(root, p))
		}

		for _, p := range naiveIgnoreDirPatterns {
			c.dev.ignoredDirPatterns = append(c.dev.ignoredDirPatterns, filepath.Join(root, p))
		}
		// never watch our own output
		c.dev.ignoredDirPatterns = append(c.dev.ignoredDirPatterns, c.getCleanDirs().Critsplit)
		for _, p := range c.DevConfig.IgnorePatterns.Dirs {
			c.dev.ignoredDirPatterns = append(c.dev.ignoredDirPatterns, filepath.Join(root, p))
		}
		for _, p := range c.DevConfig.IgnorePatterns.Files {
			c.dev.ignoredFilePatterns = append(c.dev.ignoredFilePatterns, filepath.Join(root, p))
		}
	})
}

// watch blocks until ctx is done, rebuilding on every relevant batch of
// file system events.
func (c *Config) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()
	c.dev.watcher = watcher

	if err := c.addDirs(c.dev.watchRoot); err != nil {
		return fmt.Errorf("error adding directories to watcher: %w", err)
	}

	c.log().Infof("watching %s for changes", c.dev.watchRoot)

	d := newDebouncer(debounceInterval, func(events []fsnotify.Event) {
		c.processBatchedEvents(ctx, events)
	})
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			d.addEvent(evt)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log().Errorf("watcher error: %v", err)
		}
	}
}

func (c *Config) addDirs(path string) error {
	return filepath.Walk(path, func(walkedPath string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if info.IsDir() {
			if c.getIsIgnored(walkedPath, c.dev.ignoredDirPatterns) {
				return filepath.SkipDir
			}
			if err := c.dev.watcher.Add(walkedPath); err != nil {
				return fmt.Errorf("error adding directory to watcher: %w", err)
			}
		}
		return nil
	})
}

// getIsRelevant reports whether a change to path should trigger a rebuild.
func (c *Config) getIsRelevant(path string) bool {
	if c.getIsIgnored(path, c.dev.ignoredFilePatterns) {
		return false
	}
	if filepath.Clean(path) == filepath.Clean(c.Source) {
		return true
	}
	for _, pattern := range c.dev.watchPatterns {
		if c.getIsMatch(pattern, path) {
			return true
		}
	}
	return false
}

func getIsSolelyChmod(evt fsnotify.Event) bool {
	return !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename)
}

// relevantChanges dedupes a batch by path and keeps the paths that should
// trigger a rebuild. New directories are added to the watcher on the way.
func (c *Config) relevantChanges(events []fsnotify.Event) []string {
	fileChanges := make(map[string]fsnotify.Event)
	for _, evt := range events {
		fileChanges[evt.Name] = evt
	}

	var relevant []string
	for name, evt := range fileChanges {
		fileInfo, _ := os.Stat(name) // no need to check error, removed files are still relevant
		if fileInfo != nil && fileInfo.IsDir() {
			if c.dev.watcher != nil && (evt.Has(fsnotify.Create) || evt.Has(fsnotify.Rename)) {
				if err := c.addDirs(name); err != nil {
					c.log().Errorf("error: failed to add directory to watcher: %v", err)
				}
			}
			continue
		}
		if getIsSolelyChmod(evt) {
			continue
		}
		if c.getIsRelevant(name) {
			relevant = append(relevant, name)
		}
	}
	sort.Strings(relevant)
	return relevant
}

func (c *Config) processBatchedEvents(ctx context.Context, events []fsnotify.Event) {
	c.dev.buildMu.Lock()
	defer c.dev.buildMu.Unlock()

	changed := c.relevantChanges(events)
	if len(changed) == 0 {
		return
	}

	sorted := sortOnChangeCallbacks(c.DevConfig.OnChange)
	for _, name := range changed {
		c.simpleRunOnChangeCallbacks(sorted.stratPre, name)
	}

	profiles := make([]string, 0, len(c.Criticals))
	for _, critical := range c.Criticals {
		profiles = append(profiles, critical.ID)
	}

	c.broadcast(refreshPayload{ChangeType: changeTypeRebuilding, Profiles: profiles})

	var waits []func()
	for _, name := range changed {
		waits = append(waits, c.runConcurrentOnChangeCallbacks(sorted.stratConcurrent, name))
	}

	c.log().Infof("rebuilding after change to %v", changed)
	result, err := c.Build(ctx)

	for _, wait := range waits {
		wait()
	}

	if err != nil {
		c.log().Errorf("error: failed to rebuild: %v", err)
		c.broadcast(refreshPayload{ChangeType: changeTypeError, Message: err.Error()})
		return
	}

	c.dev.lastBuild.mu.Lock()
	c.dev.lastBuild.v = result
	c.dev.lastBuild.mu.Unlock()

	for _, name := range changed {
		c.simpleRunOnChangeCallbacks(sorted.stratPost, name)
	}

	c.broadcast(refreshPayload{ChangeType: changeTypeReload, Profiles: profiles})
}

func (c *Config) broadcast(rp refreshPayload) {
	if c.DevConfig.BuildOnly || c.dev.manager == nil {
		return
	}
	c.dev.manager.send(rp)
}
