// Package intent loads the declarative intent definitions the
// Handshake and Scope & Lock Gate consume: active_intents.yaml and
// intent_map.md. Both are cached by (path, mtime), invalidated
// strictly on mtime change.
package intent

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
)

// Intent is a named unit of work.
type Intent struct {
	ID                 string
	OwnedScope         []string
	Constraints        []string
	AcceptanceCriteria []string
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// Store loads and caches active_intents.yaml for a set of working
// directories. A zero-value Store is ready to use.
type Store struct {
	mu    sync.Mutex
	cache map[string]intentsCacheEntry
}

type intentsCacheEntry struct {
	modTime time.Time
	path    string
	intents map[string]Intent
}

// NewStore constructs an empty intent Store.
func NewStore() *Store {
	return &Store{cache: make(map[string]intentsCacheEntry)}
}

// Load returns the active intents declared under dir's
// .orchestration directory, keyed by intent id. It tries
// active_intents.yaml then active_intents.yml. A missing file is not
// an error: it returns an empty map, filesystem absence being treated
// as "no data", not a failure.
func (s *Store) Load(dir string) (map[string]Intent, error) {
	path, found := resolveIntentsPath(dir)
	if !found {
		return map[string]Intent{}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return map[string]Intent{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.cache[dir]; ok && entry.path == path && entry.modTime.Equal(info.ModTime()) {
		return entry.intents, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string]Intent{}, nil
	}

	intents, err := parseIntentsYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if s.cache == nil {
		s.cache = make(map[string]intentsCacheEntry)
	}
	s.cache[dir] = intentsCacheEntry{modTime: info.ModTime(), path: path, intents: intents}
	return intents, nil
}

func resolveIntentsPath(dir string) (string, bool) {
	for _, name := range []string{"active_intents.yaml", "active_intents.yml"} {
		p := filepath.Join(dir, ".orchestration", name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

type intentsDocument struct {
	ActiveIntents []map[string]any `yaml:"active_intents"`
}

// parseIntentsYAML decodes the document leniently: unknown keys are
// ignored, entries missing an id are rejected, and a non-array
// owned_scope degrades to an empty scope rather than an error.
func parseIntentsYAML(raw []byte) (map[string]Intent, error) {
	var doc intentsDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make(map[string]Intent, len(doc.ActiveIntents))
	for _, entry := range doc.ActiveIntents {
		id, _ := entry["id"].(string)
		id = strings.TrimSpace(id)
		if id == "" || !idPattern.MatchString(id) {
			continue
		}

		out[id] = Intent{
			ID:                 id,
			OwnedScope:         stringList(entry["owned_scope"]),
			Constraints:        stringList(entry["constraints"]),
			AcceptanceCriteria: stringList(entry["acceptance_criteria"]),
		}
	}
	return out, nil
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
