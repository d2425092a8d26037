package intent

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

var sectionHeadingRe = regexp.MustCompile(`^##\s+([A-Z]+-\d+)`)

// DependencyMap loads and caches intent_map.md, the Markdown document
// that records cross-intent dependencies.
type DependencyMap struct {
	mu    sync.Mutex
	cache map[string]depCacheEntry
}

type depCacheEntry struct {
	modTime time.Time
	deps    map[string][]string
}

// NewDependencyMap constructs an empty DependencyMap.
func NewDependencyMap() *DependencyMap {
	return &DependencyMap{cache: make(map[string]depCacheEntry)}
}

// DependenciesOf returns the dependency ids recorded for intentID in
// dir's .orchestration/intent_map.md. A missing file or unknown intent
// id yields no dependencies, not an error.
func (d *DependencyMap) DependenciesOf(dir, intentID string) []string {
	path := filepath.Join(dir, ".orchestration", "intent_map.md")
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.cache[path]
	if !ok || !entry.modTime.Equal(info.ModTime()) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		entry = depCacheEntry{modTime: info.ModTime(), deps: parseIntentMap(string(raw))}
		d.cache[path] = entry
	}

	return entry.deps[intentID]
}

// parseIntentMap implements the per-intent "Depends on:" block grammar.
func parseIntentMap(doc string) map[string][]string {
	out := make(map[string][]string)
	lines := strings.Split(doc, "\n")

	currentIntent := ""
	inDependsBlock := false

	for _, line := range lines {
		if m := sectionHeadingRe.FindStringSubmatch(line); m != nil {
			currentIntent = m[1]
			inDependsBlock = false
			continue
		}
		if currentIntent == "" {
			continue
		}
		if strings.Contains(line, "**Depends on:**") {
			inDependsBlock = true
			continue
		}
		if !inDependsBlock {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			inDependsBlock = false
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			dep := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
			dep = strings.Trim(dep, "`")
			if dep != "" {
				out[currentIntent] = append(out[currentIntent], dep)
			}
		}
	}

	return out
}
