package types

import (
	"errors"
	"log/slog"
)

// Config holds the settings the editor reads at startup. It is populated from
// config.yaml by the CLI and can be built directly by tests.
type Config struct {
	DefaultsFile  string `json:"defaults_file" yaml:"defaults_file"`
	StateFile     string `json:"state_file" yaml:"state_file"`
	LogFile       string `json:"log_file" yaml:"log_file"`
	LogLevel      string `json:"log_level" yaml:"log_level"`
	SliderDefault int    `json:"slider_default" yaml:"slider_default"`
}

// Log levels accepted in Config.LogLevel.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config validation errors.
var (
	ErrLogLevelUnknown     = errors.New("unknown log level")
	ErrSliderDefaultBounds = errors.New("slider default out of range")
)

var knownLogLevels = map[string]slog.Level{
	LogLevelDebug: slog.LevelDebug,
	LogLevelInfo:  slog.LevelInfo,
	LogLevelWarn:  slog.LevelWarn,
	LogLevelError: slog.LevelError,
}

// Validate checks that the Config is well-formed. Empty values are valid and
// select defaults; it returns a sentinel error from this package on failure.
func (c Config) Validate() error {
	if c.LogLevel != "" {
		if _, ok := knownLogLevels[c.LogLevel]; !ok {
			return ErrLogLevelUnknown
		}
	}
	if c.SliderDefault != 0 && (c.SliderDefault < SliderMin || c.SliderDefault > SliderMax) {
		return ErrSliderDefaultBounds
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	if lvl, ok := knownLogLevels[c.LogLevel]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// Slider returns SliderDefault, or SliderNeutral when unset.
func (c Config) Slider() int {
	if c.SliderDefault == 0 {
		return SliderNeutral
	}
	return c.SliderDefault
}
