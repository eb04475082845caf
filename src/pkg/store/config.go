package store

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/config"
)

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Driver  string `json:"driver,omitempty"`
	Path    string `json:"path,omitempty"`
	OwnerID string `json:"owner_id,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Driver:  DriverSQLite,
		Path:    "./data/sima.db",
		OwnerID: "default",
	}
}

// create config with default values before config gets initialized
var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "store", "not provided", "default store config")
		return
	}

	defaultConfig := DefaultValueConfig()
	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "store", "provided", "local store config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

// Open returns the store selected by Cfg.
func Open() (s Store, e *xerr.Error) {
	switch Cfg.Driver {
	case DriverMemory:
		tl.Log(tl.Notice, palette.Yellow, "Using %s store, records are %s", "in-memory", "not persisted")
		return NewMemoryStore(), nil
	case DriverSQLite:
		sqliteStore, err := OpenSQLite(Cfg.Path)
		if err != nil {
			e = xerr.NewError(err, "open sqlite store", Cfg.Path)
			return nil, e
		}
		tl.Log(tl.Info, palette.Green, "Opened %s store at '%s'", "sqlite", Cfg.Path)
		return sqliteStore, nil
	}

	e = xerr.NewError(fmt.Errorf("unknown driver '%s'", Cfg.Driver), "open store", Cfg.Driver)
	return nil, e
}
