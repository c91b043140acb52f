package ic

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetCriticalCSSUnknownProfile(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)
	env.writeStyles(t)

	env.config.Criticals = []Critical{{ID: "home"}}
	if _, err := env.config.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := env.config.GetCriticalCSS("nope"); got != "" {
		t.Errorf("GetCriticalCSS(nope) = %q, want empty", got)
	}
	if got := env.config.GetCriticalCSSStyleElement("nope"); got != "" {
		t.Errorf("GetCriticalCSSStyleElement(nope) = %q, want empty", got)
	}
}

func TestGetCriticalCSSBeforeAnyBuild(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	if got := env.config.GetCriticalCSS("home"); got != "" {
		t.Errorf("GetCriticalCSS(home) = %q, want empty", got)
	}
}

func TestGetCriticalCSSStyleElement(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)
	env.writeStyles(t)
	setModeToDev()

	env.config.Criticals = []Critical{{ID: "home"}, {ID: `a"b`}}
	if _, err := env.config.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	el := env.config.GetCriticalCSSStyleElement("home")
	wantPrefix := template.HTML(`<style id="__critical-css-home">`)
	if !strings.HasPrefix(string(el), string(wantPrefix)) || !strings.HasSuffix(string(el), "</style>") {
		t.Errorf("GetCriticalCSSStyleElement(home) = %s", el)
	}
	if !strings.Contains(string(el), "hero.css") {
		t.Errorf("GetCriticalCSSStyleElement(home) = %s, missing critical CSS", el)
	}

	if got := env.config.GetCriticalCSSElementID(`a"b`); got != "__critical-css-a_b" {
		t.Errorf("GetCriticalCSSElementID() = %s", got)
	}
	if el := env.config.GetCriticalCSSStyleElement(`a"b`); strings.Contains(string(el), `a"b`) {
		t.Errorf("profile ID leaked unescaped into %s", el)
	}
}

func TestGetServeStaticHandler(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)
	env.writeStyles(t)

	env.config.Criticals = []Critical{{ID: "home"}}
	if _, err := env.config.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	url := env.config.GetEntryURL("home.critical.css")
	if !strings.HasPrefix(url, "/public/home.critical_") {
		t.Fatalf("GetEntryURL() = %s", url)
	}

	srv := httptest.NewServer(env.config.GetServeStaticHandler("/public/", true))
	defer srv.Close()

	resp, err := http.Get(srv.URL + url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Cache-Control = %q, want immutable", cc)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "hero.css") {
		t.Errorf("served body = %q", body)
	}

	if got := env.config.GetEntryURL("missing.css"); got != "" {
		t.Errorf("GetEntryURL(missing.css) = %s, want empty", got)
	}
}

func TestGetCriticalCSSStyleElementCannotBeClosedEarly(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)
	setModeToDev()

	env.createTestFile(t, "styles/main.css", ".a::after { content: \"</style><script>x()</script>\"; }\n")
	env.config.Criticals = []Critical{{ID: "home"}}
	if _, err := env.config.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	el := string(env.config.GetCriticalCSSStyleElement("home"))
	if n := strings.Count(el, "</"); n != 1 || !strings.HasSuffix(el, "</style>") {
		t.Errorf("GetCriticalCSSStyleElement() = %s, want a single closing tag at the end", el)
	}
	if !strings.Contains(el, `<\/style><script>x()<\/script>`) {
		t.Errorf("GetCriticalCSSStyleElement() = %s, want escaped closing sequences", el)
	}

	// the raw CSS is left untouched
	if css := env.config.GetCriticalCSS("home"); !strings.Contains(css, "</style>") {
		t.Errorf("GetCriticalCSS() = %q, want it unescaped", css)
	}
}
