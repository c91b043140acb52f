package ic

import (
	"strings"
	"testing"
)

const exampleSource = `body { color: red; }
@import 'a.css'; /* critical: home, about; */
@import 'b.css'; /* critical: all; */
@import 'c.css';`

func TestFilter(t *testing.T) {
	lines := strings.Split(exampleSource, "\n")

	tests := []struct {
		name    string
		profile string
		want    []string
	}{
		{"ListedProfile", "home", lines[:3]},
		{"SecondListedProfile", "about", lines[:3]},
		{"UnlistedProfile", "contact", []string{lines[0], lines[2]}},
		{"AllIsNotSpecialAsProfile", "all", []string{lines[0], lines[2]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(exampleSource, tt.profile, nil)
			want := strings.Join(tt.want, "\n")
			if got != want {
				t.Errorf("Filter(%q) =\n%s\nwant\n%s", tt.profile, got, want)
			}
		})
	}
}

func TestFilterEmptySource(t *testing.T) {
	if got := Filter("", "home", nil); got != "" {
		t.Errorf("Filter(\"\") = %q, want empty", got)
	}
}

func TestFilterNoImports(t *testing.T) {
	src := "a { b: c; }\n\n/* critical: home; */\n"
	if got := Filter(src, "home", nil); got != src {
		t.Errorf("Filter() = %q, want unchanged %q", got, src)
	}
}

func TestFilterNormalizesCRLF(t *testing.T) {
	src := "a {}\r\n@import 'x.css'; /* critical: home; */\r\n@import 'y.css';\r\nb {}"
	want := "a {}\n@import 'x.css'; /* critical: home; */\nb {}"
	if got := Filter(src, "home", nil); got != want {
		t.Errorf("Filter() = %q, want %q", got, want)
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	for _, profile := range []string{"home", "about", "contact"} {
		once := Filter(exampleSource, profile, nil)
		twice := Filter(once, profile, nil)
		if once != twice {
			t.Errorf("profile %s: second pass changed output:\n%s\nvs\n%s", profile, once, twice)
		}
	}
}

func TestFilterKeepsOrderAndNonImportLines(t *testing.T) {
	src := strings.Join([]string{
		"/* header */",
		"  @import 'one.css'; /* critical: home; */",
		".mid { x: y; }",
		"\t@import 'two.css'; /* critical: other; */",
		"@import 'three.css'; /* critical: all; */",
		"@media print { @import 'not-a-line-start.css'; }",
		".end {}",
	}, "\n")

	got := strings.Split(Filter(src, "home", nil), "\n")
	want := []string{
		"/* header */",
		"  @import 'one.css'; /* critical: home; */",
		".mid { x: y; }",
		"@import 'three.css'; /* critical: all; */",
		"@media print { @import 'not-a-line-start.css'; }",
		".end {}",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Filter() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestFilterNeverMatchingPattern(t *testing.T) {
	never := func(string) Matcher { return func(string) bool { return false } }
	for _, profile := range []string{"home", "contact", "all"} {
		got := Filter(exampleSource, profile, never)
		if got != "body { color: red; }" {
			t.Errorf("profile %s: Filter() = %q, want only the non-import line", profile, got)
		}
	}
}

func TestFilterCustomPattern(t *testing.T) {
	bracket := func(id string) Matcher {
		return func(line string) bool { return strings.Contains(line, "["+id+"]") }
	}
	src := "@import 'a.css'; /* [home] */\n@import 'b.css'; /* critical: home; */"
	if got := Filter(src, "home", bracket); got != "@import 'a.css'; /* [home] */" {
		t.Errorf("Filter() = %q", got)
	}
}

func TestDefaultMarkerPattern(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		line    string
		want    bool
	}{
		{"Single", "home", "@import 'a.css'; /* critical: home; */", true},
		{"Listed", "about", "@import 'a.css'; /* critical: home, about; */", true},
		{"CommaTerminated", "home", "@import 'a.css'; /* critical: home, about; */", true},
		{"EndOfLine", "home", "@import 'a.css'; // critical: home", true},
		{"All", "anything", "@import 'a.css'; /* critical: all; */", true},
		{"Missing", "contact", "@import 'a.css'; /* critical: home, about; */", false},
		{"PrefixOfLonger", "home", "@import 'a.css'; /* critical: homepage; */", false},
		{"SuffixOfLonger", "home", "@import 'a.css'; /* critical: myhome; */", false},
		{"NoSpaceAfterColon", "home", "@import 'a.css'; /* critical:home; */", false},
		{"NoMarker", "home", "@import 'a.css';", false},
		// matched anywhere in the line, not just inside a comment
		{"InsideString", "home", "@import 'critical: home;.css';", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultMarkerPattern(tt.profile)(tt.line); got != tt.want {
				t.Errorf("DefaultMarkerPattern(%q)(%q) = %v, want %v", tt.profile, tt.line, got, tt.want)
			}
		})
	}
}

func TestDefaultMarkerPatternEscapesProfileID(t *testing.T) {
	tests := []struct {
		profile string
		line    string
		want    bool
	}{
		{"a.b", "@import 'x.css'; /* critical: a.b; */", true},
		{"a.b", "@import 'x.css'; /* critical: axb; */", false},
		{"home|about", "@import 'x.css'; /* critical: about; */", false},
		{"home|about", "@import 'x.css'; /* critical: home|about; */", true},
		{"(unbalanced", "@import 'x.css'; /* critical: (unbalanced; */", true},
		{"[x", "@import 'x.css'; /* critical: x; */", false},
		{".*", "@import 'x.css'; /* critical: home; */", false},
		{`a\b`, `@import 'x.css'; /* critical: a\b; */`, true},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("DefaultMarkerPattern(%q) panicked: %v", tt.profile, r)
				}
			}()
			if got := DefaultMarkerPattern(tt.profile)(tt.line); got != tt.want {
				t.Errorf("DefaultMarkerPattern(%q)(%q) = %v, want %v", tt.profile, tt.line, got, tt.want)
			}
		})
	}
}

func TestFilterUnicodeLeadingWhitespace(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"BOM", "\ufeff"},
		{"NBSP", "\u00a0"},
		{"VerticalTab", "\v"},
		{"LineSeparator", "\u2028"},
		{"IdeographicSpace", "\u3000"},
		{"Mixed", " \ufeff\u00a0\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			untagged := tt.prefix + "@import 'untagged.css';\n.a {}"
			if got := Filter(untagged, "home", nil); got != ".a {}" {
				t.Errorf("Filter() = %q, want %q", got, ".a {}")
			}

			tagged := tt.prefix + "@import 'hero.css'; /* critical: home; */\n.a {}"
			if got := Filter(tagged, "home", nil); got != tagged {
				t.Errorf("Filter() = %q, want tagged line kept verbatim", got)
			}
		})
	}
}
