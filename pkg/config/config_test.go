package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "governance.yaml")
	cfg := GovernanceConfig{
		MaxLedgerRecordBytes:         2048,
		GitTimeoutSeconds:            10,
		ScopeExpansionPromptsEnabled: false,
		PostProcessCommands: []PostProcessCommand{
			{Name: "format", Command: "gofmt -l {files}"},
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
