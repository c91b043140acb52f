package ic

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sjc5/kit/pkg/fsutil"
)

// Manifest records where each build output landed.
type Manifest struct {
	// Output name (e.g. "home.critical.css") -> hashed file name under
	// static/public.
	Entries map[string]string `json:"entries"`
	// Profile ID -> file name of its inline critical CSS under internal.
	Criticals map[string]string `json:"criticals"`
}

func newManifest() *Manifest {
	return &Manifest{Entries: map[string]string{}, Criticals: map[string]string{}}
}

func (c *Config) saveManifest(m *Manifest) error {
	internal := c.getCleanDirs().Internal

	file, err := os.Create(filepath.Join(internal, manifestGobFile))
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(m); err != nil {
		return fmt.Errorf("error encoding manifest gob: %w", err)
	}

	asJSON, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling manifest to JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(internal, manifestJSONFile), asJSON, 0644)
}

func loadManifest(FS fs.FS) (*Manifest, error) {
	// __LOCATION_ASSUMPTION: Inside "dist/critsplit"
	file, err := FS.Open(filepath.ToSlash(filepath.Join(internalDir, manifestGobFile)))
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", manifestGobFile, err)
	}
	defer file.Close()

	m := newManifest()
	if err := fsutil.FromGobInto(file, m); err != nil {
		return nil, fmt.Errorf("error decoding gob: %w", err)
	}
	return m, nil
}

// loadPriorManifest returns an empty manifest if no build has run yet.
func (c *Config) loadPriorManifest() (*Manifest, error) {
	m, err := loadManifest(os.DirFS(c.getCleanDirs().Critsplit))
	if errors.Is(err, fs.ErrNotExist) {
		return newManifest(), nil
	}
	return m, err
}
