package ledger

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/content"
	"github.com/Heban-7/governed-ai-native-ide/pkg/hooks"
	"github.com/Heban-7/governed-ai-native-ide/pkg/intent"
	"github.com/Heban-7/governed-ai-native-ide/pkg/session"
)

// Writer is the Trace Ledger Writer post-hook. It is stateful only in
// the sense of holding a mutex around the append and the
// dependency-map cache; the ledger file itself is the real state.
type Writer struct {
	deps       *intent.DependencyMap
	gitTimeout time.Duration

	mu sync.Mutex
}

// NewWriter constructs a Writer. gitTimeout bounds the `git rev-parse
// HEAD` subprocess; zero selects a 5 second default.
func NewWriter(deps *intent.DependencyMap, gitTimeout time.Duration) *Writer {
	if gitTimeout <= 0 {
		gitTimeout = 5 * time.Second
	}
	return &Writer{deps: deps, gitTimeout: gitTimeout}
}

// PostHook satisfies hooks.PostHookFunc.
func (w *Writer) PostHook(ctx context.Context, ictx *hooks.InvocationContext, outcome *hooks.Outcome) error {
	if !w.shouldRecord(ictx, outcome) {
		return nil
	}

	record := w.buildRecord(ctx, ictx)
	if len(record.Files) == 0 {
		return nil
	}

	return w.append(ictx.Session.WorkingDir, record)
}

func (w *Writer) shouldRecord(ictx *hooks.InvocationContext, outcome *hooks.Outcome) bool {
	return outcome.Allowed &&
		outcome.Err == nil &&
		ictx.Classification.Risk == classifier.RiskDestructive &&
		len(ictx.Classification.AffectedFiles) > 0 &&
		ictx.Session != nil &&
		ictx.Session.WorkingDir != ""
}

func (w *Writer) buildRecord(ctx context.Context, ictx *hooks.InvocationContext) TraceRecord {
	sess := ictx.Session
	workingDir := sess.WorkingDir

	revision := w.resolveGitHead(ctx, workingDir)
	conversationURL := sess.ConversationURL()
	activeIntent := sess.ActiveIntent()
	if activeIntent == "" {
		activeIntent = "UNKNOWN"
	}

	related := w.relatedLinks(workingDir, activeIntent, ictx.Payload)

	var files []FileRecord
	for _, f := range ictx.Classification.AffectedFiles {
		abs := filepath.Join(workingDir, filepath.FromSlash(f))
		data, err := os.ReadFile(abs)
		if err != nil {
			continue
		}

		ranges := resolveRanges(ictx.NormalizedTool, ictx.Payload, data)
		insertedHint, _ := ictx.Payload.Content()

		var rangeRecords []RangeRecord
		for _, r := range ranges {
			rCopy := r
			h := content.Compute(data, &rCopy, insertedHint)
			rangeRecords = append(rangeRecords, RangeRecord{
				StartLine:   r.StartLine,
				EndLine:     r.EndLine,
				ContentHash: h.Digest,
			})
		}

		files = append(files, FileRecord{
			RelativePath: f,
			Conversations: []Conversation{
				{
					URL:         conversationURL,
					Contributor: contributorFrom(sess.Agent),
					Ranges:      rangeRecords,
					Related:     related,
					Meta: Meta{
						MutationClass:      string(ictx.Classification.MutationClass),
						MutationConfidence: string(ictx.Classification.MutationConfidence),
						MutationSignals:    ictx.Classification.Signals,
						HookInvocationID:   ictx.ID,
					},
				},
			},
		})
	}

	return TraceRecord{
		ID:        ictx.ID,
		Timestamp: nowRFC3339(),
		VCS:       VCSInfo{RevisionID: revision},
		Files:     files,
	}
}

func (w *Writer) resolveGitHead(ctx context.Context, workingDir string) string {
	cctx, cancel := context.WithTimeout(ctx, w.gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "git", "rev-parse", "HEAD")
	cmd.Dir = workingDir
	out, err := cmd.Output()
	if err != nil {
		return "UNKNOWN"
	}
	return trimNewline(string(out))
}

func (w *Writer) relatedLinks(workingDir, activeIntent string, payload classifier.Payload) []RelatedLink {
	seen := make(map[string]bool)
	var out []RelatedLink
	add := func(kind, value string) {
		value = trimNewline(value)
		if value == "" {
			return
		}
		key := kind + "\x00" + value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, RelatedLink{Type: kind, Value: value})
	}

	add("specification", activeIntent)

	if w.deps != nil {
		for _, dep := range w.deps.DependenciesOf(workingDir, activeIntent) {
			add("specification", dep)
		}
	}

	for _, v := range payloadStrings(payload, "related_specifications", "intent_ids") {
		add("specification", v)
	}
	for _, v := range payloadStrings(payload, "requirement_ids") {
		add("requirement", v)
	}
	for _, v := range payloadStrings(payload, "ticket_ids") {
		add("ticket", v)
	}
	for _, v := range payloadStrings(payload, "requirement_links", "related_links") {
		add("document", v)
	}

	return out
}

func (w *Writer) append(workingDir string, record TraceRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}

	dir := filepath.Join(workingDir, ".orchestration")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, "agent_trace.jsonl")

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

func contributorFrom(meta session.AgentMetadata) Contributor {
	return Contributor{
		EntityType:      "AI",
		ModelIdentifier: meta.ModelIdentifier,
		ModelVersion:    meta.ModelVersion,
		AgentRole:       meta.AgentRole,
		WorkerID:        meta.WorkerID,
		SupervisorID:    meta.SupervisorID,
	}
}
