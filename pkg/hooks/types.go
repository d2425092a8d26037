// Package hooks implements the Hook Engine: the middleware kernel that
// wraps every tool invocation in an ordered pre-check / execute /
// post-process chain with uniform failure semantics. Hook
// implementations live in sibling packages (scope, handshake,
// postprocess, ledger); this package only owns the chain itself.
package hooks

import (
	"context"

	"github.com/Heban-7/governed-ai-native-ide/pkg/capability"
	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/session"
)

// Decision is a pre-hook's vote on an invocation.
type Decision struct {
	Allow           bool
	Reason          string
	AlreadyReported bool
}

// Allowed is the zero-friction "no objection" decision.
func Allowed() Decision { return Decision{Allow: true} }

// Deny records a denial whose reason has not yet been pushed to the
// agent; the engine will push it.
func Deny(reason string) Decision { return Decision{Allow: false, Reason: reason} }

// DenyReported records a denial whose reason the hook already pushed
// itself (e.g. a structured tool_error object richer than a string).
func DenyReported(reason string) Decision {
	return Decision{Allow: false, Reason: reason, AlreadyReported: true}
}

// InvocationContext is the mutable context value threaded through one
// execute call: the invocation id, tool identity, payload, session,
// and the capability callbacks every hook shares.
type InvocationContext struct {
	ID             string
	ToolName       string
	NormalizedTool string
	Payload        classifier.Payload
	Classification classifier.Classification

	Session *session.Session

	Approval    capability.AskApproval
	PushResult  capability.PushResult
	HandleError capability.HandleError
}

// PreHookFunc votes on whether an invocation may proceed. A non-nil
// error represents a pre-hook throwing: the engine decides CRITICAL
// vs non-critical handling based on how the hook was registered,
// never on the error's content.
type PreHookFunc func(ctx context.Context, ictx *InvocationContext) (Decision, error)

// PostHookFunc observes the outcome of an invocation. Post-hooks never
// vote; a returned error is logged and surfaced as a hook_warning, but
// never revises the outcome.
type PostHookFunc func(ctx context.Context, ictx *InvocationContext, outcome *Outcome) error

// RunFunc is the tool runtime closure the engine invokes exactly once
// when every pre-hook allows.
type RunFunc func(ctx context.Context, ictx *InvocationContext) (any, error)

// Outcome is what Execute returns: the invocation id, the allow/deny
// verdict, the classifier's output, and the tool runtime's result or
// error.
type Outcome struct {
	InvocationID   string
	Allowed        bool
	DenyReason     string
	Classification classifier.Classification
	Result         any
	Err            error
}

// ExecuteOptions bundles everything Execute needs beyond the tool name
// and payload.
type ExecuteOptions struct {
	Session     *session.Session
	Approval    capability.AskApproval
	PushResult  capability.PushResult
	HandleError capability.HandleError
	Run         RunFunc
}
