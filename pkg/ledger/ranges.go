package ledger

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/content"
)

var hunkHeaderRe = regexp.MustCompile(`@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// resolveRanges implements the tool-specific modified-range rule.
func resolveRanges(normalizedTool string, payload classifier.Payload, fileContent []byte) []content.Range {
	lineCount := countLines(fileContent)

	switch normalizedTool {
	case "write_to_file":
		return []content.Range{{StartLine: 1, EndLine: lineCount}}

	case "apply_diff", "apply_patch":
		if diff, ok := payload.DiffText(); ok {
			if ranges := rangesFromHunks(diff); len(ranges) > 0 {
				return ranges
			}
		}
	}

	if newString, ok := payload.NewString(); ok && newString != "" {
		if rng, ok := lineSpanOf(fileContent, newString); ok {
			return []content.Range{rng}
		}
	}

	return []content.Range{{StartLine: 1, EndLine: lineCount}}
}

func rangesFromHunks(diff string) []content.Range {
	matches := hunkHeaderRe.FindAllStringSubmatch(diff, -1)
	ranges := make([]content.Range, 0, len(matches))
	for _, m := range matches {
		b, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		c := 1
		if m[4] != "" {
			c, _ = strconv.Atoi(m[4])
		}
		if c < 1 {
			c = 1
		}
		ranges = append(ranges, content.Range{StartLine: b, EndLine: b + c - 1})
	}
	return ranges
}

func lineSpanOf(data []byte, needle string) (content.Range, bool) {
	idx := strings.Index(string(data), needle)
	if idx < 0 {
		return content.Range{}, false
	}
	startLine := 1 + strings.Count(string(data[:idx]), "\n")
	endLine := startLine + strings.Count(needle, "\n")
	return content.Range{StartLine: startLine, EndLine: endLine}, true
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 1
	}
	n := strings.Count(string(data), "\n")
	if !strings.HasSuffix(string(data), "\n") {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}
