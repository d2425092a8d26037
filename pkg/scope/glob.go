package scope

import (
	"regexp"
	"strings"
)

// compileGlob translates one owned-scope glob into a regular
// expression anchored to the full relative path: POSIX separator, `**`
// matches zero or more path segments including across `/`, `*` matches
// any non-`/` run, every other regex metacharacter is escaped
// literally.
func compileGlob(glob string) (*regexp.Regexp, error) {
	glob = strings.ReplaceAll(glob, `\`, "/")

	var b strings.Builder
	b.WriteString("^")

	i := 0
	for i < len(glob) {
		c := glob[i]
		if c == '*' {
			if i+1 < len(glob) && glob[i+1] == '*' {
				j := i + 2
				for j < len(glob) && glob[j] == '*' {
					j++
				}
				if j < len(glob) && glob[j] == '/' {
					b.WriteString("(?:.*/)?")
					j++
				} else {
					b.WriteString(".*")
				}
				i = j
				continue
			}
			b.WriteString("[^/]*")
			i++
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(c)))
		i++
	}
	b.WriteString("$")

	return regexp.Compile(b.String())
}

// MatchesAny reports whether path matches any of the given owned-scope
// globs. Invalid globs (which should not occur for well-formed owned
// scope lists) are skipped rather than failing the whole check.
func MatchesAny(globs []string, path string) bool {
	path = strings.ReplaceAll(path, `\`, "/")
	for _, g := range globs {
		re, err := compileGlob(g)
		if err != nil {
			continue
		}
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
