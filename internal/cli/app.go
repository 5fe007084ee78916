package cli

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/typesmith/internal/document"
	"github.com/mesh-intelligence/typesmith/internal/editor"
	"github.com/mesh-intelligence/typesmith/internal/logger"
	"github.com/mesh-intelligence/typesmith/internal/paths"
	"github.com/mesh-intelligence/typesmith/internal/state"
	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// app is the runtime environment shared by the commands: resolved
// directories, configuration, logger and, for the shell, the state store and
// the defaults document.
type app struct {
	configDir string
	dataDir   string
	cfg       types.Config

	store    *state.Store
	defaults *document.Document
	closeLog func() error
}

// newApp resolves directories, loads the configuration and initialises
// logging.
func newApp() (*app, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}

	a := &app{configDir: configDir, dataDir: dataDir, cfg: cfg}
	logPath := paths.InDir(dataDir, cfg.LogFile, "")
	a.closeLog, err = logger.Init(logger.Options{
		Enabled: logPath != "" || flags.verbose,
		Path:    logPath,
		Level:   cfg.Level(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	logger.Debug("config loaded", "config_dir", configDir, "data_dir", dataDir)
	return a, nil
}

// openResources opens the state store and the defaults document the
// interactive editor needs. A broken defaults file is logged and skipped.
func (a *app) openResources() error {
	store, err := state.Open(paths.InDir(a.dataDir, a.cfg.StateFile, paths.StateFileName))
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	a.store = store

	if path := paths.InDir(a.configDir, a.cfg.DefaultsFile, ""); path != "" {
		doc, err := document.LoadFile(path)
		if err != nil {
			logger.Warn("defaults file not loaded", "path", path, "error", err)
		} else {
			a.defaults = doc
		}
	}
	return nil
}

func (a *app) newEditor() *editor.Editor {
	return editor.New(editor.Options{
		Defaults:      a.defaults,
		Store:         a.store,
		SliderDefault: a.cfg.Slider(),
		Logger:        logger.L,
	})
}

// close releases the store and the log file.
func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}
