package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const Prefix = "SCIMAP"

type Config struct {
	ZoomMin          float64       `envconfig:"ZOOM_MIN" default:"0.5"`
	ZoomMax          float64       `envconfig:"ZOOM_MAX" default:"64"`
	FitDuration      time.Duration `envconfig:"FIT_DURATION" default:"600ms"`
	ZoomDuration     time.Duration `envconfig:"ZOOM_DURATION" default:"300ms"`
	FrameInterval    time.Duration `envconfig:"FRAME_INTERVAL" default:"16ms"`
	LogFile          string        `envconfig:"LOG_FILE"`
	LogLevel         slog.Level    `envconfig:"LOG_LEVEL" default:"info"`
	MarkerThresholds []float64     `envconfig:"MARKER_THRESHOLDS" default:"50,200,500,1000,2000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if !(c.ZoomMin > 0) {
		errs = append(errs, fmt.Errorf("zoom min must be positive, got %v", c.ZoomMin))
	}
	if c.ZoomMax < c.ZoomMin {
		errs = append(errs, fmt.Errorf("zoom max %v below zoom min %v", c.ZoomMax, c.ZoomMin))
	}
	for name, d := range map[string]time.Duration{
		"fit duration":   c.FitDuration,
		"zoom duration":  c.ZoomDuration,
		"frame interval": c.FrameInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if !sort.Float64sAreSorted(c.MarkerThresholds) {
		errs = append(errs, fmt.Errorf("marker thresholds must ascend: %v", c.MarkerThresholds))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Usage prints the recognised environment variables.
func Usage() error {
	var cfg Config
	return envconfig.Usage(Prefix, &cfg)
}
