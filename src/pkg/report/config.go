package report

import (
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"sima-reports/src/pkg/config"
)

type Config struct {
	Timezone          string `json:"timezone,omitempty"`
	OutputDir         string `json:"output_dir,omitempty"`
	PreviewTTLMinutes int    `json:"preview_ttl_minutes,omitempty"`
	// Routes the preview action links point at: <PreviewBasePath>/<id>/<format>.
	// Followed by a browser without credentials, so it is served outside /api.
	PreviewBasePath string `json:"preview_base_path,omitempty"`
	UncompressedPDF bool   `json:"uncompressed_pdf,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Timezone:          "America/Bogota",
		OutputDir:         "./out/reports",
		PreviewTTLMinutes: 30,
		PreviewBasePath:   "/previews",
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
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "report", "not provided", "default report config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "report", "provided", "local report config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

// Location loads Cfg.Timezone, falling back to the process time zone.
func Location() *time.Location {
	location, err := time.LoadLocation(Cfg.Timezone)
	if err != nil {
		tl.Log(tl.Warning, palette.Yellow, "Unknown time zone '%s', using %s", Cfg.Timezone, time.Local.String())
		return time.Local
	}
	return location
}

func PreviewTTL() time.Duration {
	return time.Duration(Cfg.PreviewTTLMinutes) * time.Minute
}

// ArchiveConfig is the "archive" section: where generated reports are uploaded.
type ArchiveConfig struct {
	Bucket string `json:"bucket,omitempty"`
	Region string `json:"region,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

func DefaultValueArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Region: "us-east-1",
		Prefix: "reports",
	}
}

var ArchiveCfg ArchiveConfig = DefaultValueArchiveConfig()

func InitializeArchiveConfig(localConfig *ArchiveConfig) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "archive", "not provided", "default archive config")
		return
	}

	defaultConfig := DefaultValueArchiveConfig()
	ArchiveCfg = *localConfig

	tl.ApplyDefaults(&ArchiveCfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", "archive", tl.PrettyForStderr(defVal),
		)
	})

	tl.LogJSON(tl.Verbose, palette.CyanDim, "archive configuration", ArchiveCfg)
}
