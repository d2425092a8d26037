// Package scope implements the Scope & Lock Gate: a pre-hook that
// authorizes a mutating tool call against the active intent's owned
// scope globs, then optimistically locks against a client-observed
// content hash.
package scope

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Heban-7/governed-ai-native-ide/pkg/capability"
	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/content"
	"github.com/Heban-7/governed-ai-native-ide/pkg/hooks"
	"github.com/Heban-7/governed-ai-native-ide/pkg/intent"
)

// Gate is the Scope & Lock Gate pre-hook. One Gate is shared by every
// invocation an Engine processes; its approved-expansion set lives for
// the Gate's lifetime, not the process's.
type Gate struct {
	intents *intent.Store

	mu                 sync.Mutex
	approvedExpansions map[string][]string
}

// NewGate constructs a Gate backed by the given intent store.
func NewGate(intents *intent.Store) *Gate {
	return &Gate{
		intents:            intents,
		approvedExpansions: make(map[string][]string),
	}
}

// ClearApprovedExpansions resets the runtime-approved scope-expansion
// set, for test isolation.
func (g *Gate) ClearApprovedExpansions() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.approvedExpansions = make(map[string][]string)
}

func (g *Gate) approvedFor(intentID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.approvedExpansions[intentID]...)
}

func (g *Gate) appendApproved(intentID string, globs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.approvedExpansions[intentID] = append(g.approvedExpansions[intentID], globs...)
}

// PreHook satisfies hooks.PreHookFunc; register it as a CRITICAL
// pre-hook.
func (g *Gate) PreHook(ctx context.Context, ictx *hooks.InvocationContext) (hooks.Decision, error) {
	if !classifier.IsMutating(ictx.NormalizedTool) {
		return hooks.Allowed(), nil
	}

	sess := ictx.Session
	if sess == nil || sess.WorkingDir == "" || !sess.HasActiveIntent() || len(ictx.Classification.AffectedFiles) == 0 {
		return hooks.Allowed(), nil
	}

	intentID := sess.ActiveIntent()
	workingDir := sess.WorkingDir

	intents, err := g.intents.Load(workingDir)
	if err != nil {
		return hooks.Decision{}, err
	}

	declared := intents[intentID].OwnedScope
	effective := append(append([]string(nil), declared...), g.approvedFor(intentID)...)

	relFiles := make([]string, len(ictx.Classification.AffectedFiles))
	for i, f := range ictx.Classification.AffectedFiles {
		relFiles[i] = relativePosix(workingDir, f)
	}

	mismatched := mismatchedFiles(effective, relFiles)
	if len(mismatched) == 0 {
		return g.checkLock(ictx, workingDir)
	}

	globs, hasRequest := ictx.Payload.ScopeExpansionRequest()
	if hasRequest {
		decision, err := ictx.Approval.AskApproval(ctx, humanGlobSummary(intentID, globs))
		if err == nil && decision == capability.ApprovalApprove {
			g.appendApproved(intentID, globs)
			effective = append(effective, globs...)
			mismatched = mismatchedFiles(effective, relFiles)
			if len(mismatched) == 0 {
				return g.checkLock(ictx, workingDir)
			}
		}
	}

	return g.denyScopeViolation(ictx, declared, mismatched[0]), nil
}

func (g *Gate) denyScopeViolation(ictx *hooks.InvocationContext, declared []string, file string) hooks.Decision {
	toolErr := hooks.NewToolError(hooks.CodeScopeViolation, fmt.Sprintf("%s is outside the active intent's owned scope", file), map[string]any{
		"owned_scope": declared,
		"file_path":   file,
		"request_scope_expansion": map[string]any{
			"additional_globs": []string{},
		},
	})
	ictx.PushResult.PushResult(context.Background(), toolErr.JSON())
	return hooks.DenyReported(toolErr.Message)
}

func (g *Gate) checkLock(ictx *hooks.InvocationContext, workingDir string) (hooks.Decision, error) {
	observed, ok := ictx.Payload.ObservedContentHash()
	if !ok {
		return hooks.Allowed(), nil
	}

	for _, f := range ictx.Classification.AffectedFiles {
		rel := relativePosix(workingDir, f)
		abs := filepath.Join(workingDir, filepath.FromSlash(rel))

		data, err := os.ReadFile(abs)
		if err != nil {
			continue
		}

		current := content.Compute(data, nil, "")
		if current.Digest == observed {
			continue
		}

		meta := map[string]any{
			"observed_content_hash": observed,
			"current_content_hash":  current.Digest,
		}
		if proposed, hasContent := ictx.Payload.Content(); hasContent {
			meta["current_diff"] = unifiedDiffPreview(string(data), proposed, 2, 80)
		}

		toolErr := hooks.NewToolError(hooks.CodeStaleFile, fmt.Sprintf("%s has changed since it was last observed", rel), meta)
		ictx.PushResult.PushResult(context.Background(), toolErr.JSON())
		return hooks.DenyReported(toolErr.Message), nil
	}

	return hooks.Allowed(), nil
}

func mismatchedFiles(globs []string, relFiles []string) []string {
	var mismatched []string
	for _, f := range relFiles {
		if !MatchesAny(globs, f) {
			mismatched = append(mismatched, f)
		}
	}
	return mismatched
}

func relativePosix(workingDir, file string) string {
	normalized := strings.ReplaceAll(file, `\`, "/")
	if filepath.IsAbs(normalized) {
		if rel, err := filepath.Rel(workingDir, filepath.FromSlash(normalized)); err == nil {
			normalized = filepath.ToSlash(rel)
		}
	}
	return strings.TrimPrefix(normalized, "./")
}
