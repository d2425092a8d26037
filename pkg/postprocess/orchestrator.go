// Package postprocess implements the Post-process Orchestrator: a
// post-hook that runs a small ordered list of shell commands (format
// check, typecheck, test) scoped to the affected files after a
// successful DESTRUCTIVE invocation. Failures are reported but never
// escalated to a deny — the mutation already happened.
package postprocess

import (
	"context"
	"encoding/json"
	"runtime"
	"strings"
	"time"

	"os/exec"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/hooks"
)

// Command is one user-configured shell step. Command may reference
// the literal placeholder "{files}", substituted with the affected
// files, shell-quoted and space-joined.
type Command struct {
	Name    string
	Command string
}

// Orchestrator runs the configured Commands, in order, after a
// mutating call.
type Orchestrator struct {
	Commands []Command
	Timeout  time.Duration
}

// NewOrchestrator constructs an Orchestrator. A zero timeout selects a
// 30 second default per command.
func NewOrchestrator(commands []Command, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{Commands: commands, Timeout: timeout}
}

// PostHook satisfies hooks.PostHookFunc.
func (o *Orchestrator) PostHook(ctx context.Context, ictx *hooks.InvocationContext, outcome *hooks.Outcome) error {
	if !outcome.Allowed || outcome.Err != nil {
		return nil
	}
	if ictx.Classification.Risk != classifier.RiskDestructive || len(ictx.Classification.AffectedFiles) == 0 {
		return nil
	}
	if ictx.Session == nil || ictx.Session.WorkingDir == "" {
		return nil
	}
	if len(o.Commands) == 0 {
		return nil
	}

	filesArg := quoteAndJoin(ictx.Classification.AffectedFiles)

	for _, spec := range o.Commands {
		cmdLine := strings.ReplaceAll(spec.Command, "{files}", filesArg)
		o.runOne(ctx, ictx, spec.Name, cmdLine)
	}

	return nil
}

func (o *Orchestrator) runOne(ctx context.Context, ictx *hooks.InvocationContext, name, cmdLine string) {
	cctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	cmd := shellCommand(cctx, cmdLine)
	cmd.Dir = ictx.Session.WorkingDir

	out, err := cmd.CombinedOutput()
	if err == nil {
		return
	}

	warning := struct {
		Type    string `json:"type"`
		Step    string `json:"step"`
		Message string `json:"message"`
		Output  string `json:"output,omitempty"`
	}{
		Type:    "postprocess_warning",
		Step:    name,
		Message: err.Error(),
		Output:  truncate(string(out), 4000),
	}
	b, marshalErr := json.Marshal(warning)
	if marshalErr != nil {
		return
	}
	ictx.PushResult.PushResult(ctx, string(b))
}

// shellCommand selects the OS-appropriate shell invocation: cmd /C on
// Windows, sh -c elsewhere.
func shellCommand(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "sh", "-c", line)
}

func quoteAndJoin(files []string) string {
	quoted := make([]string, len(files))
	for i, f := range files {
		quoted[i] = "'" + strings.ReplaceAll(f, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
