// Package cli holds the small colored/TTY-aware printing helpers the
// governed-ide binary uses to render classifications, tool errors, and
// ledger records for a human operator.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/term"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
	"github.com/Heban-7/governed-ai-native-ide/pkg/ledger"
)

var (
	bold   = color.New(color.Bold).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
)

// Printer writes colored, TTY-aware output to one writer.
type Printer struct {
	out io.Writer
}

// NewPrinter constructs a Printer over out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// IsTTY reports whether stdout is an interactive terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// TerminalWidth returns the current terminal width, or a sane default
// when it cannot be determined (not a terminal, or an error querying
// size).
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 100
	}
	return width
}

// PrintClassification pretty-prints a Classification for the
// `governed-ide classify` debugging command.
func (p *Printer) PrintClassification(toolName string, c classifier.Classification) {
	p.Printf("%s %s\n", bold("tool:"), toolName)
	p.Printf("  normalized: %s\n", c.NormalizedTool)

	riskLabel := string(c.Risk)
	if c.Risk == classifier.RiskDestructive {
		riskLabel = red("%s", riskLabel)
	} else {
		riskLabel = green("%s", riskLabel)
	}
	p.Printf("  risk: %s\n", riskLabel)

	if c.MutationClass != "" {
		p.Printf("  mutation: %s (%s)\n", c.MutationClass, c.MutationConfidence)
	}
	if len(c.Signals) > 0 {
		p.Printf("  signals: %s\n", strings.Join(c.Signals, ", "))
	}
	if len(c.AffectedFiles) > 0 {
		p.Printf("  affected_files: %s\n", strings.Join(c.AffectedFiles, ", "))
	}
	if c.DiffPreview != "" {
		p.Printf("  diff_preview:\n%s\n", indent(c.DiffPreview, "    "))
	}
}

// PrintPayload pretty-prints a raw tool payload, preserving the key
// order it was submitted in.
func (p *Printer) PrintPayload(raw []byte) {
	om := orderedmap.New[string, any]()
	if err := json.Unmarshal(raw, om); err != nil {
		p.Printf("%s\n", string(raw))
		return
	}
	p.Printf("  payload: %s\n", orderedJSON(om))
}

// PrintToolError pretty-prints a tool_error/hook_warning JSON string
// pulled off the push-result channel.
func (p *Printer) PrintToolError(raw string) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		p.Printf("%s %s\n", red("unparsed:"), raw)
		return
	}

	code, _ := obj["code"].(string)
	message, _ := obj["message"].(string)
	label := yellow("%s", code)
	if code == "STALE_FILE" || code == "SCOPE_VIOLATION" || code == "NO_ACTIVE_INTENT" {
		label = red("%s", code)
	}
	p.Printf("%s %s: %s\n", red("✗"), label, message)
}

// PrintLedgerRecord pretty-prints one TraceRecord line (the
// `governed-ide ledger tail` command).
func (p *Printer) PrintLedgerRecord(r ledger.TraceRecord) {
	p.Printf("%s %s  %s\n", bold(r.Timestamp), green("%s", r.ID), r.VCS.RevisionID)
	for _, f := range r.Files {
		p.Printf("  %s\n", bold(f.RelativePath))
		for _, conv := range f.Conversations {
			for _, rng := range conv.Ranges {
				p.Printf("    [%d-%d] %s\n", rng.StartLine, rng.EndLine, rng.ContentHash)
			}
			p.Printf("    class=%s confidence=%s\n", conv.Meta.MutationClass, conv.Meta.MutationConfidence)
			for _, rel := range conv.Related {
				p.Printf("    related: %s=%s\n", rel.Type, rel.Value)
			}
		}
	}
}

// orderedJSON renders v preserving object key order when v is already
// an *orderedmap.OrderedMap.
func orderedJSON(v *orderedmap.OrderedMap[string, any]) string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	for pair := v.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		valueJSON, _ := json.Marshal(pair.Value)
		fmt.Fprintf(&b, "%q: %s", pair.Key, string(valueJSON))
	}
	b.WriteString("}")
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
