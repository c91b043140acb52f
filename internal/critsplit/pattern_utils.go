package ic

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

func (c *Config) getIsMatch(pattern string, path string) bool {
	combined := pattern + "\x00" + path

	if hit, isCached := cache.matchResults.Load(combined); isCached {
		return hit
	}

	normalizedPath := filepath.ToSlash(path)

	matches, err := doublestar.Match(filepath.ToSlash(pattern), normalizedPath)
	if err != nil {
		c.log().Errorf("error: failed to match file: %v", err)
		return false
	}

	actualValue, _ := cache.matchResults.LoadOrStore(combined, matches)
	return actualValue
}

func (c *Config) getIsIgnored(path string, ignoredPatterns []string) bool {
	for _, pattern := range ignoredPatterns {
		if c.getIsMatch(pattern, path) {
			return true
		}
	}
	return false
}
