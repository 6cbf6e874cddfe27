package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fcupdater/pkg/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.Equal(t, constants.DefaultMasterHeaderScanRows, cfg.Limits.MasterHeaderScanRows)
	assert.Equal(t, constants.DefaultChangeLogStyleTemplateRow, cfg.Limits.ChangeLogStyleTemplateRow)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("FCUPDATER_CP949_STRICT", "true")
	t.Setenv("FCUPDATER_DURABILITY_STRICT", "1")
	t.Setenv("FCUPDATER_HISTORY_DB", "/tmp/runs.db")
	t.Setenv("FCUPDATER_MASTER_HEADER_SCAN_ROWS", "50000")
	t.Setenv("FCUPDATER_COMMAND_TIMEOUT_SECS", "30")
	t.Setenv("FCUPDATER_OUTPUT_FORMAT", "yaml")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.CP949Strict)
	assert.True(t, cfg.DurabilityStrict)
	assert.Equal(t, "/tmp/runs.db", cfg.HistoryDB)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, constants.MaxMasterHeaderScanRows, cfg.Limits.MasterHeaderScanRows, "clamped to the ceiling")
	assert.Equal(t, 30*time.Second, cfg.Limits.CommandTimeout)
}

func TestLoadConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "fcupdater.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
decoder_helper: iconv
archive_check: true
source_header_scan_rows: 40
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "iconv", cfg.DecoderHelper)
	assert.True(t, cfg.ArchiveCheck)
	assert.Equal(t, 40, cfg.Limits.SourceHeaderScanRows)
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name  string
		write bool
	}{
		{"missing explicit file", false},
		{"malformed file", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(viper.Reset)
			path := filepath.Join(t.TempDir(), "fcupdater.yaml")
			if tt.write {
				require.NoError(t, os.WriteFile(path, []byte("archive_check: [unterminated\n"), 0o600))
			}

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration error")
		})
	}
}

func TestUpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "yaml", LogLevel: "warn"}

	cfg.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "yaml", cfg.Format, "empty flags keep configured values")
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg.UpdateFromFlags(false, false, false, "json", "debug")
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
}
