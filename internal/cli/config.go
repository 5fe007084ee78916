package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/typesmith/internal/paths"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDefaultsFile  = "defaults_file"
	cfgKeyStateFile     = "state_file"
	cfgKeyLogFile       = "log_file"
	cfgKeyLogLevel      = "log_level"
	cfgKeySliderDefault = "slider_default"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# typesmith configuration

# Document of the same shape as types.xml holding the standard values that
# bulk "standard" restores. Relative paths resolve against this directory.
# defaults_file: types.default.xml

# UI state database; relative paths resolve against the data directory.
state_file: state.db

# Log file or directory; empty disables file logging.
# log_file: logs

# debug, info, warn or error.
log_level: info

# Initial slider percentage when nothing was remembered (10-200).
slider_default: 100
`

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run. A missing file is not an error.
func loadConfig(configDir string) (types.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyStateFile, paths.StateFileName)
	v.SetDefault(cfgKeyLogLevel, types.LogLevelInfo)
	v.SetDefault(cfgKeySliderDefault, types.SliderNeutral)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		DefaultsFile:  v.GetString(cfgKeyDefaultsFile),
		StateFile:     v.GetString(cfgKeyStateFile),
		LogFile:       v.GetString(cfgKeyLogFile),
		LogLevel:      v.GetString(cfgKeyLogLevel),
		SliderDefault: v.GetInt(cfgKeySliderDefault),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", filepath.Join(configDir, paths.ConfigFileName), err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// effectiveConfig is what "typesmith config" prints.
type effectiveConfig struct {
	ConfigDir string       `yaml:"config_dir" json:"config_dir"`
	DataDir   string       `yaml:"data_dir" json:"data_dir"`
	Config    types.Config `yaml:",inline" json:"config"`
}

func marshalConfig(ec effectiveConfig) ([]byte, error) {
	data, err := yaml.Marshal(&ec)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
