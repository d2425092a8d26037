package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heban-7/governed-ai-native-ide/pkg/capability"
	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/hooks"
	"github.com/Heban-7/governed-ai-native-ide/pkg/intent"
	"github.com/Heban-7/governed-ai-native-ide/pkg/session"
)

func newTestInvocation(t *testing.T, dir string, toolName string, payload classifier.Payload) (*hooks.InvocationContext, *session.Session) {
	t.Helper()
	sess := session.New(dir, nil)
	sess.SetActiveIntent("INT-001")
	classification := classifier.Classify(toolName, payload)
	ictx := &hooks.InvocationContext{
		ID:             "test-id",
		ToolName:       toolName,
		NormalizedTool: classification.NormalizedTool,
		Payload:        payload,
		Classification: classification,
		Session:        sess,
		Approval: capability.AskApprovalFunc(func(context.Context, string) (capability.ApprovalDecision, error) {
			return capability.ApprovalTimeout, nil
		}),
		PushResult:  capability.PushResultFunc(func(context.Context, string) {}),
		HandleError: capability.HandleErrorFunc(func(context.Context, string, error) {}),
	}
	return ictx, sess
}

func TestWriter_WritesOneLedgerLineForDestructiveCall(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))

	ictx, _ := newTestInvocation(t, dir, "write_to_file", classifier.Payload{
		"path":    "a.go",
		"content": "package a\n",
	})

	w := NewWriter(intent.NewDependencyMap(), 0)
	err := w.PostHook(context.Background(), ictx, &hooks.Outcome{Allowed: true, Classification: ictx.Classification})
	require.NoError(t, err)

	lines := readLedgerLines(t, dir)
	require.Len(t, lines, 1)

	var record TraceRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "a.go", record.Files[0].RelativePath)
	require.Len(t, record.Files[0].Conversations, 1)
	assert.Contains(t, record.Files[0].Conversations[0].Related, RelatedLink{Type: "specification", Value: "INT-001"})
	require.NotEmpty(t, record.Files[0].Conversations[0].Ranges)
	assert.Contains(t, record.Files[0].Conversations[0].Ranges[0].ContentHash, "sha256:")
}

func TestWriter_SkipsSafeRisk(t *testing.T) {
	dir := t.TempDir()
	ictx, _ := newTestInvocation(t, dir, "read_file", classifier.Payload{"path": "a.go"})

	w := NewWriter(intent.NewDependencyMap(), 0)
	err := w.PostHook(context.Background(), ictx, &hooks.Outcome{Allowed: true, Classification: ictx.Classification})
	require.NoError(t, err)

	assert.Empty(t, readLedgerLines(t, dir))
}

func TestWriter_SkipsDeniedOutcome(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))
	ictx, _ := newTestInvocation(t, dir, "write_to_file", classifier.Payload{"path": "a.go", "content": "x"})

	w := NewWriter(intent.NewDependencyMap(), 0)
	err := w.PostHook(context.Background(), ictx, &hooks.Outcome{Allowed: false, Classification: ictx.Classification})
	require.NoError(t, err)

	assert.Empty(t, readLedgerLines(t, dir))
}

func readLedgerLines(t *testing.T, dir string) []string {
	t.Helper()
	path := filepath.Join(dir, ".orchestration", "agent_trace.jsonl")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
