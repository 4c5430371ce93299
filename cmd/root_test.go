// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/listdrain/internal/config"
	"github.com/xkilldash9x/listdrain/internal/engine"
	"github.com/xkilldash9x/listdrain/internal/termination"
)

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, Version+"\n", buf.String())
}

func TestRefreshConfigFromDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())

	cfg, err := refreshConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Run.Simulate, "simulate is the default mode")
	assert.Equal(t, 50, cfg.Limits.MaxActionsPerRun)
}

func TestRefreshConfigAppliesOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())
	viper.Set("limits.max_actions_per_run", 7)
	viper.Set("run.simulate", false)

	cfg, err := refreshConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Limits.MaxActionsPerRun)
	assert.False(t, cfg.Run.Simulate)
}

func TestRefreshConfigRejectsInvalidValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.SetDefaults(viper.GetViper())
	viper.Set("limits.daily_cap", 0)

	_, err := refreshConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily_cap")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printReport(cmd, &engine.Report{
		RunID:       "run-1",
		Reason:      termination.ReasonBlockDetected,
		BlockPhrase: "action blocked",
		Simulated:   true,
		Actioned:    []string{"alice"},
		Skipped:     []string{"brand_abc"},
		ActionCount: 1,
		Processed:   2,
		Elapsed:     90 * time.Second,
	})

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "simulate")
	assert.Contains(t, out, string(termination.ReasonBlockDetected))
	assert.Contains(t, out, `"action blocked"`)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "brand_abc")
}
