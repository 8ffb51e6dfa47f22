package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fezbot3000/Interestfree-tracker/config"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "planner.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 26, cfg.CycleCount)
	assert.False(t, cfg.SurfaceUnresolved)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, 55, cfg.InterestFreeDays)
}

func TestSetup_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PLANNER_PLANNER_CYCLE_COUNT", "12")
	t.Setenv("PLANNER_LOG_LEVEL", "DEBUG")

	v := viper.New()
	require.NoError(t, config.Setup(v, ""))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.CycleCount)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestSetup_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\nplanner:\n  surface_unresolved: true\n"), 0o600))

	v := viper.New()
	require.NoError(t, config.Setup(v, path))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.True(t, cfg.SurfaceUnresolved)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := map[string]func(v *viper.Viper){
		"port":          func(v *viper.Viper) { v.Set("server.port", 0) },
		"cycle count":   func(v *viper.Viper) { v.Set("planner.cycle_count", -1) },
		"cron spec":     func(v *viper.Viper) { v.Set("scheduler.spec", "every day") },
		"interest days": func(v *viper.Viper) { v.Set("interestfree.default_days", 0) },
	}
	for name, mutate := range tests {
		v := viper.New()
		config.SetDefaults(v)
		mutate(v)
		_, err := config.Load(v)
		assert.Error(t, err, name)
	}
}
