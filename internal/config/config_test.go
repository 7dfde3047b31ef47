package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.ZoomMin)
	assert.Equal(t, 64.0, cfg.ZoomMax)
	assert.Equal(t, 600*time.Millisecond, cfg.FitDuration)
	assert.Equal(t, 300*time.Millisecond, cfg.ZoomDuration)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, []float64{50, 200, 500, 1000, 2000}, cfg.MarkerThresholds)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCIMAP_ZOOM_MAX", "16")
	t.Setenv("SCIMAP_FIT_DURATION", "1s")
	t.Setenv("SCIMAP_LOG_LEVEL", "debug")
	t.Setenv("SCIMAP_MARKER_THRESHOLDS", "10,20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 16.0, cfg.ZoomMax)
	assert.Equal(t, time.Second, cfg.FitDuration)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []float64{10, 20}, cfg.MarkerThresholds)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ZoomMin:       0.5,
			ZoomMax:       64,
			FitDuration:   time.Second,
			ZoomDuration:  time.Second,
			FrameInterval: time.Millisecond,
		}
	}
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero zoom min", func(c *Config) { c.ZoomMin = 0 }},
		{"max below min", func(c *Config) { c.ZoomMax = 0.25 }},
		{"zero fit duration", func(c *Config) { c.FitDuration = 0 }},
		{"negative frame interval", func(c *Config) { c.FrameInterval = -time.Millisecond }},
		{"unsorted thresholds", func(c *Config) { c.MarkerThresholds = []float64{5, 1} }},
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("env", func(t *testing.T) {
		t.Setenv("SCIMAP_ZOOM_MIN", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
}
