package scheduler

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"sima-reports/src/pkg/config"
)

// Job is one report sent every month. Empty Site means every site.
type Job struct {
	Client     string   `json:"client"`
	Site       string   `json:"site,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
}

type Config struct {
	// Standard 5-field cron spec, evaluated in the report time zone.
	Spec string `json:"spec,omitempty"`
	Jobs []Job  `json:"jobs,omitempty"`
	// Used for jobs without their own recipients.
	Recipients []string `json:"recipients,omitempty"`
	Archive    bool     `json:"archive,omitempty"`
	RunOnStart bool     `json:"run_on_start,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Spec: "0 6 1 * *",
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
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "scheduler", "not provided", "default scheduler config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s (%s jobs)", "scheduler", "provided", "local scheduler config", fmt.Sprint(len(Cfg.Jobs)))
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
