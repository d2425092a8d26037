// Package content implements the Content Hasher: a syntax-aware
// canonical hash of a file region, using tree-sitter to parse and
// locate the smallest AST subtree enclosing a byte range, then
// canonically re-render it before hashing.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Strategy tags which algorithm produced a Hash.
type Strategy string

const (
	StrategyASTCanonical    Strategy = "ast_canonical"
	StrategyNormalizedString Strategy = "normalized_string"
)

// Range is a 1-indexed, inclusive line range.
type Range struct {
	StartLine int
	EndLine   int
}

// Hash is the Content Hasher's output.
type Hash struct {
	Digest    string
	Strategy  Strategy
	Canonical string
}

// language is the one grammar this implementation chose to support.
// All content is parsed with the Go grammar; no file name or extension
// is consulted. Content that does not parse as Go without errors falls
// through to the normalized-string strategy, which is always correct,
// just coarser.
var language = golang.GetLanguage()

// Compute runs the four-step algorithm over file content, an optional
// modified range, and an optional inserted-content hint.
func Compute(content []byte, rng *Range, insertedContent string) Hash {
	root, ok := parse(content)
	if !ok {
		return fallback(content, insertedContent)
	}

	var target *sitter.Node
	if rng == nil {
		target = root
	} else {
		startByte, endByte, ok := lineRangeToByteOffsets(content, rng.StartLine, rng.EndLine)
		if ok {
			target = findEnclosingNode(root, startByte, endByte)
		}
	}

	if target == nil {
		if insertedContent != "" {
			normalizedInsert := normalize(insertedContent)
			normalizedFile := normalize(string(content))
			if normalizedInsert != "" && strings.Contains(normalizedFile, normalizedInsert) {
				return hashString(normalizedInsert, StrategyNormalizedString)
			}
		}
		return fallback(content, insertedContent)
	}

	canonical := normalize(renderCanonical(content, target))
	return hashString(canonical, StrategyASTCanonical)
}

func parse(content []byte) (*sitter.Node, bool) {
	parser := sitter.NewParser()
	parser.SetLanguage(language)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil || tree.RootNode() == nil {
		return nil, false
	}
	root := tree.RootNode()
	if root.HasError() {
		// A syntactically broken file still parses to a tree with error
		// nodes; treat that the same as a hard parse failure so the
		// fallback strategy takes over rather than hashing a partial tree.
		return nil, false
	}
	return root, true
}

func fallback(content []byte, insertedContent string) Hash {
	if insertedContent != "" {
		return hashString(normalize(insertedContent), StrategyNormalizedString)
	}
	return hashString(normalize(string(content)), StrategyNormalizedString)
}

// lineRangeToByteOffsets converts a 1-indexed inclusive line range
// into byte offsets spanning the start of startLine through the end
// of endLine (including its trailing newline, if present).
func lineRangeToByteOffsets(content []byte, startLine, endLine int) (startByte, endByte uint32, ok bool) {
	if startLine < 1 || endLine < startLine {
		return 0, 0, false
	}

	line := 1
	offset := 0
	var start, end = -1, -1

	for offset <= len(content) {
		if line == startLine && start == -1 {
			start = offset
		}
		if offset == len(content) {
			if line == endLine || (start != -1 && end == -1) {
				end = offset
			}
			break
		}

		nl := indexByte(content[offset:], '\n')
		if nl < 0 {
			if line >= startLine {
				if start == -1 {
					start = offset
				}
				end = len(content)
			}
			break
		}

		lineEnd := offset + nl + 1
		if line == endLine {
			end = lineEnd
		}
		if line > endLine && end != -1 {
			break
		}
		offset = lineEnd
		line++
	}

	if start == -1 || end == -1 || end < start {
		return 0, 0, false
	}
	return uint32(start), uint32(end), true
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// findEnclosingNode returns the smallest node whose byte span fully
// encloses [startByte, endByte), or nil if even the root does not
// (which cannot happen for in-range inputs, but callers must handle
// nil regardless).
func findEnclosingNode(root *sitter.Node, startByte, endByte uint32) *sitter.Node {
	if root == nil || root.StartByte() > startByte || root.EndByte() < endByte {
		return nil
	}

	current := root
	for {
		var next *sitter.Node
		childCount := int(current.ChildCount())
		for i := 0; i < childCount; i++ {
			child := current.Child(i)
			if child == nil {
				continue
			}
			if child.StartByte() <= startByte && child.EndByte() >= endByte {
				next = child
				break
			}
		}
		if next == nil {
			return current
		}
		current = next
	}
}

// renderCanonical renders a subtree's source text with comment nodes
// stripped and CRLF normalized to LF.
func renderCanonical(content []byte, node *sitter.Node) string {
	start, end := node.StartByte(), node.EndByte()
	if end > uint32(len(content)) {
		end = uint32(len(content))
	}
	if start > end {
		return ""
	}

	var comments []*sitter.Node
	collectComments(node, &comments)

	var b strings.Builder
	cursor := start
	for _, c := range comments {
		cs, ce := c.StartByte(), c.EndByte()
		if cs < cursor || cs >= end {
			continue
		}
		b.Write(content[cursor:cs])
		cursor = ce
	}
	if cursor < end {
		b.Write(content[cursor:end])
	}

	return strings.ReplaceAll(b.String(), "\r\n", "\n")
}

func collectComments(node *sitter.Node, out *[]*sitter.Node) {
	if node.Type() == "comment" {
		*out = append(*out, node)
		return
	}
	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		collectComments(child, out)
	}
}

// normalize trims trailing per-line whitespace, converts CRLF to LF,
// and trims the overall result.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func hashString(canonical string, strategy Strategy) Hash {
	sum := sha256.Sum256([]byte(canonical))
	return Hash{
		Digest:    "sha256:" + hex.EncodeToString(sum[:]),
		Strategy:  strategy,
		Canonical: canonical,
	}
}
