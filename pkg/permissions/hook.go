package permissions

import (
	"context"

	"github.com/Heban-7/governed-ai-native-ide/pkg/hooks"
)

// PreHook enforces the configured Allow/Deny overrides ahead of the
// handshake and scope gates: a Deny match blocks the call outright,
// regardless of intent or scope state. An Allow match or no match
// falls through to the rest of the chain unchanged — Allow here is not
// a bypass of the governance gates downstream, and the match is not
// recorded.
func (c *Checker) PreHook(ctx context.Context, ictx *hooks.InvocationContext) (hooks.Decision, error) {
	if c.IsEmpty() {
		return hooks.Allowed(), nil
	}

	if c.CheckWithArgs(ictx.ToolName, ictx.Payload) != Deny {
		return hooks.Allowed(), nil
	}

	toolErr := hooks.NewToolError(hooks.CodeToolDenied, "tool call denied by a configured permission pattern", map[string]any{
		"tool_name": ictx.ToolName,
	})
	ictx.PushResult.PushResult(ctx, toolErr.JSON())
	return hooks.DenyReported(toolErr.Message), nil
}
