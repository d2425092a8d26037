// Package config loads the process-level GovernanceConfig: an optional
// YAML file that falls back to sane defaults when absent.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/Heban-7/governed-ai-native-ide/pkg/paths"
)

// PostProcessCommand is one configured post-process step (see
// pkg/postprocess.Command; this is its on-disk shape).
type PostProcessCommand struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

// ToolOverrides is an operator-level Allow/Deny pattern list consulted
// ahead of the handshake and scope gates (see pkg/permissions).
type ToolOverrides struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// GovernanceConfig is the small ambient configuration object the
// pipeline reads at startup.
type GovernanceConfig struct {
	MaxLedgerRecordBytes         int                  `yaml:"max_ledger_record_bytes"`
	GitTimeoutSeconds            int                  `yaml:"git_timeout_seconds"`
	ScopeExpansionPromptsEnabled bool                 `yaml:"scope_expansion_prompts_enabled"`
	PostProcessCommands          []PostProcessCommand `yaml:"post_process_commands"`
	ToolOverrides                ToolOverrides        `yaml:"tool_overrides"`
}

// DefaultPath returns the on-disk location governed-ide reads
// GovernanceConfig from when no --config flag is given: the user's
// config directory, the same home it already keeps its other
// per-user state under.
func DefaultPath() string {
	return filepath.Join(paths.GetConfigDir(), "governance.yaml")
}

// Default returns the zero-value-safe defaults used when no config
// file exists.
func Default() GovernanceConfig {
	return GovernanceConfig{
		MaxLedgerRecordBytes:         1 << 20,
		GitTimeoutSeconds:            5,
		ScopeExpansionPromptsEnabled: true,
	}
}

// Load reads path, merging it over Default(). A missing file is not
// an error.
func Load(path string) (GovernanceConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save atomically writes cfg to path, creating parent directories as
// needed.
func Save(path string, cfg GovernanceConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
