package scope

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

// unifiedDiffPreview renders a short unified-style diff between two
// texts, limited to the given context-line count and a maximum total
// line count, for the STALE_FILE error's current_diff field.
func unifiedDiffPreview(current, proposed string, context, maxLines int) string {
	edits := udiff.Strings(current, proposed)
	diff, err := udiff.ToUnifiedDiff("current", "proposed", current, edits, context)
	if err != nil {
		return ""
	}

	var out []string
	for _, hunk := range diff.Hunks {
		for _, line := range hunk.Lines {
			prefix := " "
			switch line.Kind {
			case udiff.Insert:
				prefix = "+"
			case udiff.Delete:
				prefix = "-"
			}
			out = append(out, prefix+strings.TrimSuffix(line.Content, "\n"))
			if len(out) >= maxLines {
				return strings.Join(out, "\n")
			}
		}
	}

	return strings.Join(out, "\n")
}

func humanGlobSummary(intentID string, globs []string) string {
	return fmt.Sprintf("intent %s requests scope expansion to: %s", intentID, strings.Join(globs, ", "))
}
