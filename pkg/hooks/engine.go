package hooks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Heban-7/governed-ai-native-ide/pkg/capability"
	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
)

type preEntry struct {
	fn       PreHookFunc
	critical bool
}

// Engine is the Hook Engine kernel. Its registries are process-global
// in spirit but scoped to one Engine instance, so tests can build a
// fresh Engine per case instead of sharing global state.
type Engine struct {
	pre  *orderedmap.OrderedMap[string, preEntry]
	post *orderedmap.OrderedMap[string, PostHookFunc]
}

// New constructs an empty Engine.
func New() *Engine {
	return &Engine{
		pre:  orderedmap.New[string, preEntry](),
		post: orderedmap.New[string, PostHookFunc](),
	}
}

// RegisterPreHook adds or replaces a named pre-hook. Re-registering an
// existing name replaces its function and criticality in place,
// preserving the name's original chain position.
func (e *Engine) RegisterPreHook(name string, fn PreHookFunc, critical bool) {
	e.pre.Set(name, preEntry{fn: fn, critical: critical})
}

// RegisterPostHook adds or replaces a named post-hook, with the same
// replace-in-place semantics as RegisterPreHook.
func (e *Engine) RegisterPostHook(name string, fn PostHookFunc) {
	e.post.Set(name, fn)
}

// Execute runs one invocation through the full pre-check / execute /
// post-process chain.
func (e *Engine) Execute(ctx context.Context, toolName string, payload classifier.Payload, opts ExecuteOptions) (Outcome, error) {
	id := uuid.New().String()

	approval := opts.Approval
	if approval == nil {
		approval = capability.AskApprovalFunc(func(context.Context, string) (capability.ApprovalDecision, error) {
			return capability.ApprovalTimeout, nil
		})
	}
	pushResult := opts.PushResult
	if pushResult == nil {
		pushResult = capability.PushResultFunc(func(context.Context, string) {})
	}
	handleError := opts.HandleError
	if handleError == nil {
		handleError = capability.HandleErrorFunc(func(context.Context, string, error) {})
	}

	classification := classifier.Classify(toolName, payload)

	ictx := &InvocationContext{
		ID:             id,
		ToolName:       toolName,
		NormalizedTool: classification.NormalizedTool,
		Payload:        payload,
		Classification: classification,
		Session:        opts.Session,
		Approval:       approval,
		PushResult:     pushResult,
		HandleError:    handleError,
	}

	outcome := Outcome{
		InvocationID:   id,
		Allowed:        true,
		Classification: classification,
	}

	e.runPreHooks(ctx, ictx, pushResult, handleError, &outcome)

	var runErr error
	if outcome.Allowed && opts.Run != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					runErr = fmt.Errorf("tool runtime panicked: %v", r)
				}
			}()
			outcome.Result, runErr = opts.Run(ctx, ictx)
		}()
		outcome.Err = runErr
	}

	e.runPostHooks(ctx, ictx, pushResult, handleError, &outcome)

	if runErr != nil {
		return outcome, runErr
	}
	return outcome, nil
}

func (e *Engine) runPreHooks(ctx context.Context, ictx *InvocationContext, pushResult capability.PushResult, handleError capability.HandleError, outcome *Outcome) {
	for pair := e.pre.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key
		entry := pair.Value

		decision, hookErr := invokePreHook(ctx, entry.fn, ictx)
		if hookErr != nil {
			if entry.critical {
				toolErr := NewToolError(CodeHookInternalErr, fmt.Sprintf("critical hook %q failed: %v", name, hookErr), map[string]any{"hook": name})
				pushResult.PushResult(ctx, toolErr.JSON())
				outcome.Allowed = false
				outcome.DenyReason = toolErr.Message
				return
			}
			handleError.HandleError(ctx, name, hookErr)
			continue
		}

		if !decision.Allow {
			outcome.Allowed = false
			outcome.DenyReason = decision.Reason
			if decision.Reason != "" && !decision.AlreadyReported {
				pushResult.PushResult(ctx, decision.Reason)
			}
			return
		}
	}
}

func invokePreHook(ctx context.Context, fn PreHookFunc, ictx *InvocationContext) (decision Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pre-hook panicked: %v", r)
		}
	}()
	return fn(ctx, ictx)
}

func (e *Engine) runPostHooks(ctx context.Context, ictx *InvocationContext, pushResult capability.PushResult, handleError capability.HandleError, outcome *Outcome) {
	for pair := e.post.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key
		fn := pair.Value

		if err := invokePostHook(ctx, fn, ictx, outcome); err != nil {
			handleError.HandleError(ctx, name, err)
			warning := HookWarning{Type: "hook_warning", Code: CodeHookInternalErr, Hook: name, Message: err.Error()}
			pushResult.PushResult(ctx, warning.JSON())
		}
	}
}

func invokePostHook(ctx context.Context, fn PostHookFunc, ictx *InvocationContext, outcome *Outcome) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("post-hook panicked: %v", r)
		}
	}()
	return fn(ctx, ictx, outcome)
}

// ClearExpansionsCapable is implemented by pre-hooks that hold
// runtime-approved scope expansions, so tests can reset state between
// cases without rebuilding the whole Engine.
type ClearExpansionsCapable interface {
	ClearApprovedExpansions()
}
