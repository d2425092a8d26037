// Package governance is the composition root: it wires the Hook
// Engine together with the Handshake, Scope & Lock Gate, Trace Ledger
// Writer, and Post-process Orchestrator in the order the rest of the
// CORE's invariants assume.
package governance

import (
	"context"
	"time"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/config"
	"github.com/Heban-7/governed-ai-native-ide/pkg/handshake"
	"github.com/Heban-7/governed-ai-native-ide/pkg/hooks"
	"github.com/Heban-7/governed-ai-native-ide/pkg/intent"
	"github.com/Heban-7/governed-ai-native-ide/pkg/ledger"
	"github.com/Heban-7/governed-ai-native-ide/pkg/permissions"
	"github.com/Heban-7/governed-ai-native-ide/pkg/postprocess"
	"github.com/Heban-7/governed-ai-native-ide/pkg/scope"
)

// Pipeline owns one wired Engine plus the components registered on
// it, so callers can still reach into, say, Handshake.Select or
// Gate.ClearApprovedExpansions directly.
type Pipeline struct {
	Engine      *hooks.Engine
	Intents     *intent.Store
	Handshake   *handshake.Handshake
	Gate        *scope.Gate
	Ledger      *ledger.Writer
	PostProcess *postprocess.Orchestrator
	Overrides   *permissions.Checker
}

// New builds a Pipeline from a GovernanceConfig, registering its
// hooks in the fixed order: tool-override policy, then handshake
// enforcement, then scope/lock, as pre-hooks; trace ledger, then
// post-process, as post-hooks.
func New(cfg config.GovernanceConfig) *Pipeline {
	intents := intent.NewStore()
	deps := intent.NewDependencyMap()

	hs := handshake.New(intents)
	gate := scope.NewGate(intents)
	writer := ledger.NewWriter(deps, time.Duration(cfg.GitTimeoutSeconds)*time.Second)
	checker := permissions.NewChecker(cfg.ToolOverrides.Allow, cfg.ToolOverrides.Deny)

	var commands []postprocess.Command
	for _, c := range cfg.PostProcessCommands {
		commands = append(commands, postprocess.Command{Name: c.Name, Command: c.Command})
	}
	pp := postprocess.NewOrchestrator(commands, 0)

	engine := hooks.New()
	engine.RegisterPreHook("tool_override_policy", checker.PreHook, true)
	engine.RegisterPreHook("handshake_enforcement", hs.PreHook, true)
	engine.RegisterPreHook("scope_lock_gate", gate.PreHook, true)
	engine.RegisterPostHook("trace_ledger_writer", writer.PostHook)
	engine.RegisterPostHook("post_process_orchestrator", pp.PostHook)

	return &Pipeline{
		Engine:      engine,
		Intents:     intents,
		Handshake:   hs,
		Gate:        gate,
		Ledger:      writer,
		PostProcess: pp,
		Overrides:   checker,
	}
}

// Execute runs one invocation through the wired chain.
func (p *Pipeline) Execute(ctx context.Context, toolName string, payload classifier.Payload, opts hooks.ExecuteOptions) (hooks.Outcome, error) {
	return p.Engine.Execute(ctx, toolName, payload, opts)
}
