// Package handshake implements intent selection: the act of binding a
// session to an active intent, required before any mutating tool.
package handshake

import (
	"context"
	"fmt"
	"strings"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/hooks"
	"github.com/Heban-7/governed-ai-native-ide/pkg/intent"
	"github.com/Heban-7/governed-ai-native-ide/pkg/session"
)

// Handshake owns intent selection and the enforcement pre-hook that
// denies mutating tools when no intent is bound.
type Handshake struct {
	intents *intent.Store
}

// New constructs a Handshake backed by the given intent store.
func New(intents *intent.Store) *Handshake {
	return &Handshake{intents: intents}
}

// Select loads dir's active intents, binds intentID to sess, and
// returns the selected Intent. It is the entry point the agent
// adapter's intent-selection tool calls before any mutating work.
func (h *Handshake) Select(sess *session.Session, intentID string) (intent.Intent, error) {
	intents, err := h.intents.Load(sess.WorkingDir)
	if err != nil {
		return intent.Intent{}, err
	}
	selected, ok := intents[intentID]
	if !ok {
		return intent.Intent{}, fmt.Errorf("unknown intent %q", intentID)
	}
	sess.SetActiveIntent(selected.ID)
	return selected, nil
}

// PreHook satisfies hooks.PreHookFunc. Register it as a CRITICAL
// pre-hook ahead of the scope/lock gate, so a missing intent is
// reported with its own code rather than folded into SCOPE_VIOLATION.
func (h *Handshake) PreHook(ctx context.Context, ictx *hooks.InvocationContext) (hooks.Decision, error) {
	if ictx.Classification.Risk != classifier.RiskDestructive {
		return hooks.Allowed(), nil
	}
	if ictx.Session != nil && ictx.Session.HasActiveIntent() {
		return hooks.Allowed(), nil
	}

	toolErr := hooks.NewToolError(hooks.CodeNoActiveIntent, "no active intent is bound to this session", nil)
	ictx.PushResult.PushResult(ctx, toolErr.JSON())
	return hooks.DenyReported(toolErr.Message), nil
}

// RenderXML builds the `<intent_context>` handshake payload for the
// given intent.
func RenderXML(it intent.Intent) string {
	var b strings.Builder
	b.WriteString("<intent_context>\n")
	fmt.Fprintf(&b, "  <id>%s</id>\n", escapeXML(it.ID))

	b.WriteString("  <owned_scope>\n")
	for _, g := range it.OwnedScope {
		fmt.Fprintf(&b, "    <glob>%s</glob>\n", escapeXML(g))
	}
	b.WriteString("  </owned_scope>\n")

	b.WriteString("  <constraints>\n")
	for _, c := range it.Constraints {
		fmt.Fprintf(&b, "    <item>%s</item>\n", escapeXML(c))
	}
	b.WriteString("  </constraints>\n")

	b.WriteString("  <acceptance_criteria>\n")
	for _, c := range it.AcceptanceCriteria {
		fmt.Fprintf(&b, "    <item>%s</item>\n", escapeXML(c))
	}
	b.WriteString("  </acceptance_criteria>\n")

	b.WriteString("</intent_context>")
	return b.String()
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
