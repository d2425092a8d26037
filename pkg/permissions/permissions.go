// Package permissions provides an operator-level Allow/Ask/Deny
// override on top of the governance pipeline's own classification: a
// pre-hook consulted before the handshake and scope gates, so a
// configured Deny pattern blocks a tool call regardless of intent or
// scope, and a configured Allow pattern does not bypass the other
// gates. The pre-hook does not record Allow matches anywhere; they
// pass through exactly like calls no pattern matches.
package permissions

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Heban-7/governed-ai-native-ide/pkg/classifier"
)

// Decision represents the permission decision for a tool call
type Decision int

const (
	// Ask means the tool requires the rest of the governance chain to decide.
	Ask Decision = iota
	// Allow means the override list auto-clears the call for this gate.
	Allow
	// Deny means the override list blocks the call outright.
	Deny
)

// String returns a human-readable representation of the decision
func (d Decision) String() string {
	switch d {
	case Ask:
		return "ask"
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Checker evaluates a tool call against an operator's configured
// tool_overrides.allow/deny pattern lists.
type Checker struct {
	allow []overrideRule
	deny  []overrideRule
}

// NewChecker compiles a Checker from a pair of pattern lists
// (config.GovernanceConfig's ToolOverrides.Allow/Deny).
func NewChecker(allowPatterns, denyPatterns []string) *Checker {
	return &Checker{
		allow: compileRules(allowPatterns),
		deny:  compileRules(denyPatterns),
	}
}

func compileRules(patterns []string) []overrideRule {
	rules := make([]overrideRule, len(patterns))
	for i, p := range patterns {
		rules[i] = parseOverrideRule(p)
	}
	return rules
}

// Check evaluates the permission for a tool name with no argument
// payload; equivalent to CheckWithArgs(toolName, nil).
func (c *Checker) Check(toolName string) Decision {
	return c.CheckWithArgs(toolName, nil)
}

// CheckWithArgs evaluates toolName and its classifier payload against
// the configured override rules. Deny rules are checked first, then
// Allow; no match falls through as Ask, meaning "no override applies,
// let the rest of the chain decide".
//
// toolName is the tool name as submitted, before classifier
// normalization (a simple name like "shell" or a qualified one like
// "mcp:github:create_issue"). A rule
// can additionally condition on payload fields, e.g.
// "shell:cmd=rm*" or "shell:cmd=ls*:cwd=/home/*".
func (c *Checker) CheckWithArgs(toolName string, payload classifier.Payload) Decision {
	for _, rule := range c.deny {
		if rule.matches(toolName, payload) {
			return Deny
		}
	}

	for _, rule := range c.allow {
		if rule.matches(toolName, payload) {
			return Allow
		}
	}

	return Ask
}

// IsEmpty returns true if no override rules are configured
func (c *Checker) IsEmpty() bool {
	return len(c.allow) == 0 && len(c.deny) == 0
}

// AllowPatterns returns the configured allow patterns, in source form.
func (c *Checker) AllowPatterns() []string {
	return rulePatterns(c.allow)
}

// DenyPatterns returns the configured deny patterns, in source form.
func (c *Checker) DenyPatterns() []string {
	return rulePatterns(c.deny)
}

func rulePatterns(rules []overrideRule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.source
	}
	return out
}

// overrideRule is a single compiled tool_overrides entry: a glob over
// the tool name, plus zero or more "key=glob" conditions over payload
// fields that must all hold for the rule to match.
type overrideRule struct {
	source        string
	toolGlob      string
	argConditions map[string]string
}

// parseOverrideRule parses one tool_overrides pattern.
// Format: "toolname" or "toolname:key1=glob1:key2=glob2".
//
// The first ":key=value"-shaped segment marks the start of the
// argument conditions; everything before it is the tool name glob, so
// qualified names containing colons (like "mcp:github:create_issue")
// still parse correctly.
func parseOverrideRule(pattern string) overrideRule {
	argConditions := make(map[string]string)

	parts := strings.Split(pattern, ":")
	toolParts := []string{parts[0]}

	for _, part := range parts[1:] {
		if key, value, found := strings.Cut(part, "="); found && key != "" {
			argConditions[key] = value
		} else if len(argConditions) == 0 {
			toolParts = append(toolParts, part)
		}
	}

	return overrideRule{
		source:        pattern,
		toolGlob:      strings.Join(toolParts, ":"),
		argConditions: argConditions,
	}
}

// matches reports whether toolName and its payload satisfy the rule:
// the tool name glob must match, and every configured argument
// condition must find and match its payload field.
func (r overrideRule) matches(toolName string, payload classifier.Payload) bool {
	if !globMatch(r.toolGlob, toolName) {
		return false
	}

	if len(r.argConditions) == 0 {
		return true
	}

	if payload == nil {
		return false
	}

	for field, glob := range r.argConditions {
		value, ok := payload[field]
		if !ok {
			return false
		}
		if !globMatch(glob, payloadFieldString(value)) {
			return false
		}
	}

	return true
}

// payloadFieldString renders a classifier payload field as a string
// for glob matching against an override condition.
func payloadFieldString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case float64:
		// JSON numbers decode as float64; drop the trailing ".0".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case int, int64:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// globMatch reports whether value matches a case-insensitive glob
// pattern ("*", "?", "[...]", per filepath.Match semantics).
//
// filepath.Match's "*" stops at path separators, which is wrong for
// matching shell command strings; trailing-wildcard patterns like
// "sudo*" are special-cased to a plain prefix match so they match
// "sudo rm -rf /" as expected.
func globMatch(pattern, value string) bool {
	pattern = strings.ToLower(pattern)
	value = strings.ToLower(value)

	if strings.HasSuffix(pattern, "*") && !strings.HasSuffix(pattern, "\\*") {
		prefix := pattern[:len(pattern)-1]
		if !strings.ContainsAny(prefix, "*?[") {
			return strings.HasPrefix(value, prefix)
		}
	}

	matched, err := filepath.Match(pattern, value)
	return err == nil && matched
}
