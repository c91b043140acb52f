package ic

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	defaultDistDir      = "dist"
	distCritsplitDir    = "critsplit"
	internalDir         = "internal"
	staticDir           = "static"
	publicDir           = "public"
	manifestGobFile     = "critsplit_manifest.gob"
	manifestJSONFile    = "critsplit_manifest.json"
	criticalTextFileFmt = "critical_%s.css"
	goEmbedFixerFile    = "x"
)

type cleanDirs struct {
	Dist      string // e.g. "dist"
	Critsplit string // e.g. "dist/critsplit"
	Internal  string // e.g. "dist/critsplit/internal"
	PublicOut string // e.g. "dist/critsplit/static/public"
}

func (c *Config) getCleanDirs() cleanDirs {
	dist := c.DistDir
	if dist == "" {
		dist = defaultDistDir
	}
	dist = filepath.Clean(dist)
	critsplit := filepath.Join(dist, distCritsplitDir)
	return cleanDirs{
		Dist:      dist,
		Critsplit: critsplit,
		Internal:  filepath.Join(critsplit, internalDir),
		PublicOut: filepath.Join(critsplit, staticDir, publicDir),
	}
}

func getHashedFilenameFromBytes(content []byte, originalFileName string) string {
	hash := sha256.New()
	hash.Write(content)
	hashedSuffix := fmt.Sprintf("%x", hash.Sum(nil))[:12] // Short hash
	ext := filepath.Ext(originalFileName)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(originalFileName, ext), hashedSuffix, ext)
}

func criticalTextFileName(profileID string) string {
	return getHashedFilenameFromBytes([]byte(profileID), fmt.Sprintf(criticalTextFileFmt, sanitizeID(profileID)))
}

// Profile IDs are opaque and may contain path separators. The hash added by
// criticalTextFileName keeps sanitized names unique.
func sanitizeID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
