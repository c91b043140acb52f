package ic

import (
	"errors"
	"html"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
)

const CriticalCSSElementIDPrefix = "__critical-css-"

type criticalCSSStatus struct {
	codeStr    string
	noSuchFile bool
}

// GetCriticalCSS returns the built critical CSS for profileID, or "" if
// the profile was never built.
func (c *Config) GetCriticalCSS(profileID string) string {
	key := profileKey{c: c, id: profileID}

	// If cache hit and PROD, return hit
	if hit, isCached := cache.criticalCSS.Load(key); isCached && !GetIsDev() {
		return hit.codeStr
	}

	status := c.getInitialCriticalCSSStatus(profileID)
	cache.criticalCSS.Store(key, status)
	return status.codeStr
}

func (c *Config) getInitialCriticalCSSStatus(profileID string) *criticalCSSStatus {
	manifest, err := c.getManifest()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log().Errorf("error reading manifest: %v", err)
		}
		return &criticalCSSStatus{noSuchFile: true}
	}

	name, ok := manifest.Criticals[profileID]
	if !ok {
		return &criticalCSSStatus{noSuchFile: true}
	}

	FS, err := c.GetUniversalFS()
	if err != nil {
		c.log().Errorf("error getting FS: %v", err)
		return &criticalCSSStatus{noSuchFile: true}
	}

	// __LOCATION_ASSUMPTION: Inside "dist/critsplit"
	content, err := FS.ReadFile(internalDir + "/" + name)
	if err != nil {
		// if the error was something other than a non-existent file, log it
		if !errors.Is(err, fs.ErrNotExist) {
			c.log().Errorf("error reading critical CSS: %v", err)
		}
		return &criticalCSSStatus{noSuchFile: true}
	}

	return &criticalCSSStatus{codeStr: string(content)}
}

func (c *Config) GetCriticalCSSElementID(profileID string) string {
	return CriticalCSSElementIDPrefix + sanitizeID(profileID)
}

func (c *Config) GetCriticalCSSStyleElement(profileID string) template.HTML {
	key := profileKey{c: c, id: profileID}

	if hit, isCached := cache.criticalStyleEl.Load(key); isCached && !GetIsDev() {
		return hit
	}

	css := c.GetCriticalCSS(profileID)
	if status, _ := cache.criticalCSS.Load(key); status != nil && status.noSuchFile {
		cache.criticalStyleEl.Store(key, "")
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<style id="`)
	sb.WriteString(html.EscapeString(c.GetCriticalCSSElementID(profileID)))
	sb.WriteString(`">`)
	// "<\/" is the same in CSS but cannot close the element.
	sb.WriteString(strings.ReplaceAll(css, "</", `<\/`))
	sb.WriteString("</style>")
	el := template.HTML(sb.String())

	cache.criticalStyleEl.Store(key, el) // Cache the element
	return el
}

// GetEntryURL returns the public URL of a build output, e.g.
// GetEntryURL("home.critical.css") -> "/public/home.critical_1a2b3c4d5e6f.css".
func (c *Config) GetEntryURL(outputName string) string {
	key := profileKey{c: c, id: outputName}

	if hit, isCached := cache.entryURLs.Load(key); isCached && !GetIsDev() {
		return hit
	}

	manifest, err := c.getManifest()
	if err != nil {
		c.log().Errorf("error reading manifest: %v", err)
		return ""
	}

	hashed, ok := manifest.Entries[outputName]
	if !ok {
		c.log().Warningf("GetEntryURL: no output named %s", outputName)
		return ""
	}

	url := "/" + publicDir + "/" + filepath.ToSlash(hashed)
	cache.entryURLs.Store(key, url)
	return url
}

func (c *Config) GetServeStaticHandler(pathPrefix string, cacheImmutably bool) http.Handler {
	FS, err := c.GetPublicFS()
	if err != nil {
		c.log().Errorf("error getting public FS: %v", err)
		return http.NotFoundHandler()
	}
	handler := http.StripPrefix(pathPrefix, http.FileServer(http.FS(FS)))
	if cacheImmutably {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			handler.ServeHTTP(w, r)
		})
	}
	return handler
}
