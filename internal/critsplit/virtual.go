package ic

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

const (
	virtualNamespace  = "critsplit"
	virtualPluginName = "critsplit-virtual"
)

// VirtualFiles maps a virtual source path to its in-memory contents.
type VirtualFiles map[string]string

// VirtualSourcePath returns the path under which the filtered copy of src
// is registered for profileID, e.g. "styles/~home-critical.css".
func VirtualSourcePath(src, profileID string) string {
	return filepath.ToSlash(filepath.Dir(src)) + "/~" + profileID + "-critical" + filepath.Ext(src)
}

func (v VirtualFiles) paths() []string {
	paths := make([]string, 0, len(v))
	for p := range v {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (v VirtualFiles) filter() string {
	quoted := make([]string, 0, len(v))
	for _, p := range v.paths() {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	return "^(" + strings.Join(quoted, "|") + ")$"
}

// plugin serves the virtual files to esbuild. Each file resolves its own
// relative imports from the directory of the real source it was derived from.
func (v VirtualFiles) plugin() api.Plugin {
	return api.Plugin{
		Name: virtualPluginName,
		Setup: func(build api.PluginBuild) {
			if len(v) == 0 {
				return
			}

			build.OnResolve(api.OnResolveOptions{Filter: v.filter()},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: args.Path, Namespace: virtualNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: virtualNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					contents := v[args.Path]
					resolveDir, err := filepath.Abs(filepath.Dir(filepath.FromSlash(args.Path)))
					if err != nil {
						return api.OnLoadResult{}, err
					}
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: resolveDir,
						Loader:     api.LoaderCSS,
					}, nil
				})
		},
	}
}
