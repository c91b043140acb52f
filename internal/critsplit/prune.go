package ic

import "regexp"

// Matches ".js" and ".j" outputs, optionally followed by a query string.
var scriptArtifactRegex = regexp.MustCompile(`\.js?(\?[^.]*)?$`)

// deleteJSOutput drops script artifacts belonging to critical entries. The
// second return value lists the names that were dropped.
func (c *Config) deleteJSOutput(artifacts []Artifact) ([]Artifact, []string) {
	criticalEntries := make(map[string]struct{}, len(c.Criticals))
	for _, critical := range c.Criticals {
		criticalEntries[critical.Entry] = struct{}{}
	}

	kept := make([]Artifact, 0, len(artifacts))
	var deleted []string

	for _, a := range artifacts {
		if _, isCritical := criticalEntries[a.Entry]; isCritical && scriptArtifactRegex.MatchString(a.Name) {
			deleted = append(deleted, a.Name)
			continue
		}
		kept = append(kept, a)
	}

	return kept, deleted
}
