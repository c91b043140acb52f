package critsplit

import (
	"context"
	"html/template"
	"net/http"

	ic "github.com/sjc5/critsplit/internal/critsplit"
)

type Config = ic.Config
type DevConfig = ic.DevConfig
type Critical = ic.Critical
type Matcher = ic.Matcher
type MarkerPattern = ic.MarkerPattern
type BuildResult = ic.BuildResult
type Manifest = ic.Manifest
type Artifact = ic.Artifact
type OnChange = ic.OnChange
type OnChangeFunc = ic.OnChangeFunc
type IgnorePatterns = ic.IgnorePatterns
type UniversalFS = ic.UniversalFS

type CritSplit struct {
	Config *ic.Config
}

func (cs CritSplit) Build(ctx context.Context) (*BuildResult, error) {
	return cs.Config.Build(ctx)
}

func (cs CritSplit) MustStartDev(ctx context.Context, devConfig *ic.DevConfig) {
	cs.Config.DevConfig = devConfig
	cs.Config.MustStartDev(ctx)
}

func (cs CritSplit) GetCriticalCSS(profileID string) template.CSS {
	return template.CSS(cs.Config.GetCriticalCSS(profileID))
}
func (cs CritSplit) GetCriticalCSSStyleElement(profileID string) template.HTML {
	return cs.Config.GetCriticalCSSStyleElement(profileID)
}
func (cs CritSplit) GetCriticalCSSElementID(profileID string) string {
	return cs.Config.GetCriticalCSSElementID(profileID)
}
func (cs CritSplit) GetEntryURL(outputName string) string {
	return cs.Config.GetEntryURL(outputName)
}
func (cs CritSplit) GetPublicFS() (UniversalFS, error) {
	return cs.Config.GetPublicFS()
}
func (cs CritSplit) GetServeStaticHandler(pathPrefix string, cacheImmutably bool) http.Handler {
	return cs.Config.GetServeStaticHandler(pathPrefix, cacheImmutably)
}
func (cs CritSplit) GetRefreshScript() template.HTML {
	return template.HTML(ic.GetRefreshScript())
}

func New(config *ic.Config) *CritSplit {
	if config.Logger == nil {
		config.Logger = ic.Log
	}
	return &CritSplit{
		Config: config,
	}
}

/*
Filter drops every @import line of source that is not tagged for profileID
according to pattern (DefaultMarkerPattern if nil). Other lines are kept
verbatim and in order; the result is joined with "\n".
*/
var Filter = ic.Filter
var DefaultMarkerPattern = ic.DefaultMarkerPattern
var NormalizeCriticals = ic.NormalizeCriticals
var VirtualSourcePath = ic.VirtualSourcePath
var GetIsDev = ic.GetIsDev

var (
	ErrInvalidCritical = ic.ErrInvalidCritical
	ErrDuplicateEntry  = ic.ErrDuplicateEntry
	ErrDuplicateID     = ic.ErrDuplicateID
	ErrNoSource        = ic.ErrNoSource
	ErrUnknownEncoding = ic.ErrUnknownEncoding
)

const OnChangeStrategyPre = ic.OnChangeStrategyPre
const OnChangeStrategyPost = ic.OnChangeStrategyPost
const OnChangeStrategyConcurrent = ic.OnChangeStrategyConcurrent
