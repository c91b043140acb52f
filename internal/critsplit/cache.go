package ic

import (
	"html/template"

	"github.com/sjc5/kit/pkg/typed"
)

type profileKey struct {
	c  *Config
	id string
}

var cache = struct {
	// CSS
	criticalCSS     typed.SyncMap[profileKey, *criticalCSSStatus]
	criticalStyleEl typed.SyncMap[profileKey, template.HTML]
	entryURLs       typed.SyncMap[profileKey, string]

	// Dev
	matchResults typed.SyncMap[string, bool]
}{
	// CSS
	criticalCSS:     typed.SyncMap[profileKey, *criticalCSSStatus]{},
	criticalStyleEl: typed.SyncMap[profileKey, template.HTML]{},
	entryURLs:       typed.SyncMap[profileKey, string]{},

	// Dev
	matchResults: typed.SyncMap[string, bool]{},
}
