package ic

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sjc5/kit/pkg/executil"
	"github.com/sjc5/kit/pkg/safecache"
)

type UniversalFS interface {
	ReadFile(name string) ([]byte, error)
	Open(name string) (fs.File, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Sub(dir string) (UniversalFS, error)
}

type universalFS struct {
	FS fs.FS
}

func (u *universalFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(u.FS, name)
}

func (u *universalFS) Open(name string) (fs.File, error) {
	return u.FS.Open(name)
}

func (u *universalFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(u.FS, name)
}

func (u *universalFS) Sub(dir string) (UniversalFS, error) {
	subFS, err := fs.Sub(u.FS, dir)
	if err != nil {
		return nil, err
	}
	return newUniversalFS(subFS), nil
}

func newUniversalFS(fs fs.FS) UniversalFS {
	return &universalFS{FS: fs}
}

type runtimeState struct {
	initOnce sync.Once
	uniFS    *safecache.Cache[UniversalFS]
	publicFS *safecache.Cache[UniversalFS]
	manifest *safecache.Cache[*Manifest]
}

// In dev and at build time the disk is the source of truth, so those caches
// are bypassed.
func getShouldBypassCache() bool {
	return GetIsDev() || getIsBuildTime()
}

func (c *Config) runtimeInitOnce() {
	c.runtime.initOnce.Do(func() {
		c.runtime.uniFS = safecache.New(c.getInitialUniversalFS, getShouldBypassCache)
		c.runtime.publicFS = safecache.New(c.getInitialPublicFS, getShouldBypassCache)
		c.runtime.manifest = safecache.New(c.getInitialManifest, getShouldBypassCache)
	})
}

func (c *Config) getIsUsingEmbeddedFS() bool {
	return c.DistFS != nil
}

// GetUniversalFS returns the dist/critsplit directory as a file system, from
// disk in dev, and from DistFS or the executable's directory in prod.
func (c *Config) GetUniversalFS() (UniversalFS, error) {
	c.runtimeInitOnce()
	return c.runtime.uniFS.Get()
}

func (c *Config) getInitialUniversalFS() (UniversalFS, error) {
	// DEV
	// There is an expectation that you run the dev server from the root of
	// your project, where your go.mod file is.
	if getShouldBypassCache() {
		return newUniversalFS(os.DirFS(c.getCleanDirs().Critsplit)), nil
	}

	// PROD
	// Assuming the embed directive looks like this:
	// //go:embed critsplit
	// That means that the critsplit folder itself (not just its contents) is
	// embedded. So we have to drop down into the critsplit folder here.
	if c.getIsUsingEmbeddedFS() {
		c.log().Infof("using embedded file system (production)")
		FS, err := fs.Sub(c.DistFS, distCritsplitDir)
		if err != nil {
			return nil, err
		}
		return newUniversalFS(FS), nil
	}

	// PROD
	// Otherwise, assume the executable ships next to the critsplit directory.
	c.log().Infof("using disk file system (production)")
	execDir, err := executil.GetExecutableDir()
	if err != nil {
		return nil, fmt.Errorf("error getting executable dir: %w", err)
	}
	return newUniversalFS(os.DirFS(filepath.Join(execDir, distCritsplitDir))), nil
}

func (c *Config) GetPublicFS() (UniversalFS, error) {
	c.runtimeInitOnce()
	return c.runtime.publicFS.Get()
}

func (c *Config) getInitialPublicFS() (UniversalFS, error) {
	FS, err := c.GetUniversalFS()
	if err != nil {
		return nil, fmt.Errorf("error getting public FS: %w", err)
	}
	// __LOCATION_ASSUMPTION: Inside "dist/critsplit"
	subFS, err := FS.Sub(staticDir + "/" + publicDir)
	if err != nil {
		return nil, fmt.Errorf("error getting public FS: %w", err)
	}
	return subFS, nil
}

func (c *Config) getManifest() (*Manifest, error) {
	c.runtimeInitOnce()
	return c.runtime.manifest.Get()
}

func (c *Config) getInitialManifest() (*Manifest, error) {
	FS, err := c.GetUniversalFS()
	if err != nil {
		return nil, fmt.Errorf("error getting FS: %w", err)
	}
	return loadManifest(FS)
}
