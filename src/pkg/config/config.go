package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"gopkg.in/yaml.v3"
)

/*
fileConfig holds the raw configuration file split into named sections.

Every package owns its own Config struct and decodes its section with Section.
*/
type fileConfig struct {
	Path     string
	Sections map[string]json.RawMessage
}

var (
	mu     sync.RWMutex
	loaded = fileConfig{Sections: map[string]json.RawMessage{}}
)

/*
InitializeConfig reads the configuration file at configPath.

Supported formats are JSON (.json) and YAML (.yaml, .yml). A missing file is
not an error: every package keeps its default values in that case.
*/
func InitializeConfig(configPath string) {
	sections, e := readSections(configPath)
	if e != nil {
		e.QuitIf("error")
	}

	mu.Lock()
	loaded = fileConfig{Path: configPath, Sections: sections}
	mu.Unlock()

	if len(sections) == 0 {
		tl.Log(tl.Info, palette.Purple, "Config file '%s' is %s, keeping %s", configPath, "not provided", "default values")
		return
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	tl.Log(tl.Info, palette.Green, "Loaded config '%s' with sections: %s", configPath, strings.Join(names, ", "))
}

/*
LoadSectionsFromBytes replaces the loaded configuration with the given document.
Used by tests and by programs that embed their configuration.
*/
func LoadSectionsFromBytes(data []byte, format string) (e *xerr.Error) {
	sections, e := decodeSections(data, format, "inline")
	if e != nil {
		return e
	}

	mu.Lock()
	loaded = fileConfig{Path: "inline", Sections: sections}
	mu.Unlock()
	return nil
}

func readSections(configPath string) (sections map[string]json.RawMessage, e *xerr.Error) {
	data, readErr := os.ReadFile(configPath)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return map[string]json.RawMessage{}, nil
		}
		e = xerr.NewError(readErr, "read config file", configPath)
		return nil, e
	}

	return decodeSections(data, strings.ToLower(filepath.Ext(configPath)), configPath)
}

func decodeSections(data []byte, format string, source string) (sections map[string]json.RawMessage, e *xerr.Error) {
	sections = map[string]json.RawMessage{}

	switch strings.TrimPrefix(format, ".") {
	case "yaml", "yml":
		var document map[string]any
		if err := yaml.Unmarshal(data, &document); err != nil {
			e = xerr.NewError(err, "parse YAML config", source)
			return nil, e
		}
		for name, value := range document {
			raw, err := json.Marshal(value)
			if err != nil {
				e = xerr.NewError(err, "convert YAML section to JSON", name)
				return nil, e
			}
			sections[name] = raw
		}
	default:
		if err := json.Unmarshal(data, &sections); err != nil {
			e = xerr.NewError(err, "parse JSON config", source)
			return nil, e
		}
	}

	return sections, nil
}

/*
Section decodes the named section into target, which should be a pointer to a
pointer (e.g. **report.Config) so an absent section leaves it nil.

Returns true when the section was present.
*/
func Section(name string, target any) bool {
	mu.RLock()
	raw, exists := loaded.Sections[name]
	mu.RUnlock()

	if !exists {
		return false
	}

	if err := json.Unmarshal(raw, target); err != nil {
		tl.Log(tl.Warning, palette.PurpleBright, "Unable to decode config section '%s': %s", name, err)
		return false
	}
	return true
}

/*
CheckIfEnvVarsPresent logs a warning for each env var that is not set.

Missing variables are not fatal: the provider that needs them fails later
with a descriptive error.
*/
func CheckIfEnvVarsPresent(envVarNames ...string) {
	for _, name := range envVarNames {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			tl.Log(tl.Warning, palette.YellowBold, "%s env var is %s", name, "not set")
		}
	}
}

// GetPackageName returns the name of the package that called it.
func GetPackageName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	return packageNameFromFunc(runtime.FuncForPC(pc).Name())
}

// "sima-reports/src/pkg/echo-middleware.InitializeConfig" -> "echo-middleware"
func packageNameFromFunc(funcName string) string {
	lastSlash := strings.LastIndex(funcName, "/")
	name := funcName[lastSlash+1:]
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[:dot]
	}
	if name == "" {
		return fmt.Sprintf("unknown(%s)", funcName)
	}
	return name
}
