package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_CommentAndWhitespaceOnlyDiffsMatch(t *testing.T) {
	a := []byte("package p\n\nfunc add(a int, b int) int {\n\treturn a + b //x\n}\n")
	b := []byte("package p\n\nfunc add(a int, b int) int {\n\treturn a + b\n}\n")

	ha := Compute(a, &Range{StartLine: 3, EndLine: 4}, "")
	hb := Compute(b, &Range{StartLine: 3, EndLine: 4}, "")

	require.Equal(t, StrategyASTCanonical, ha.Strategy)
	require.Equal(t, StrategyASTCanonical, hb.Strategy)
	assert.Equal(t, ha.Digest, hb.Digest)
}

func TestCompute_SameInputIsDeterministic(t *testing.T) {
	content := []byte("package p\n\nfunc f() int {\n\treturn 1\n}\n")
	h1 := Compute(content, nil, "")
	h2 := Compute(content, nil, "")
	assert.Equal(t, h1.Digest, h2.Digest)
}

func TestCompute_EmptyVsWhitespaceContentDiffer(t *testing.T) {
	empty := Compute([]byte(""), nil, "")
	whitespace := Compute([]byte("   \n\t\n"), nil, "")
	assert.NotEqual(t, empty.Digest, whitespace.Digest)
}

func TestCompute_ParseFailureFallsBackToNormalizedString(t *testing.T) {
	broken := []byte("this is not valid go source {{{")
	h := Compute(broken, nil, "")
	assert.Equal(t, StrategyNormalizedString, h.Strategy)
	assert.NotEmpty(t, h.Digest)
}

func TestCompute_WholeFileWhenNoRange(t *testing.T) {
	content := []byte("package p\n\nfunc f() int {\n\treturn 1\n}\n")
	h := Compute(content, nil, "")
	assert.Equal(t, StrategyASTCanonical, h.Strategy)
}

func TestCompute_UnchangedRewriteReproducesDigest(t *testing.T) {
	content := []byte("package p\n\nfunc f() int {\n\treturn 1\n}\n")
	h1 := Compute(content, nil, "")

	path := filepath.Join(t.TempDir(), "f.go")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)

	h2 := Compute(rewritten, nil, "")
	assert.Equal(t, h1.Digest, h2.Digest)
}
