package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSection struct {
	Address string `json:"address,omitempty"`
	Port    int    `json:"port,omitempty"`
}

func TestSectionFromJSON(t *testing.T) {
	e := LoadSectionsFromBytes([]byte(`{"server":{"address":"0.0.0.0","port":9000}}`), ".json")
	require.Nil(t, e)

	var section *sampleSection
	assert.True(t, Section("server", &section))
	require.NotNil(t, section)
	assert.Equal(t, "0.0.0.0", section.Address)
	assert.Equal(t, 9000, section.Port)

	var missing *sampleSection
	assert.False(t, Section("archive", &missing))
	assert.Nil(t, missing)
}

func TestSectionFromYAML(t *testing.T) {
	document := "server:\n  address: 127.0.0.1\n  port: 8401\n"
	e := LoadSectionsFromBytes([]byte(document), "yaml")
	require.Nil(t, e)

	var section *sampleSection
	assert.True(t, Section("server", &section))
	require.NotNil(t, section)
	assert.Equal(t, "127.0.0.1", section.Address)
	assert.Equal(t, 8401, section.Port)
}

func TestInitializeConfigMissingFileKeepsDefaults(t *testing.T) {
	InitializeConfig(filepath.Join(t.TempDir(), "absent.json"))

	var section *sampleSection
	assert.False(t, Section("server", &section))
}

func TestInitializeConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  port: 1\n"), 0o644))

	InitializeConfig(path)

	var section *sampleSection
	assert.True(t, Section("store", &section))
	assert.Equal(t, 1, section.Port)
}

func TestPackageNameFromFunc(t *testing.T) {
	assert.Equal(t, "echo-middleware", packageNameFromFunc("sima-reports/src/pkg/echo-middleware.InitializeConfig"))
	assert.Equal(t, "main", packageNameFromFunc("main.main"))
	assert.Equal(t, "config", GetPackageName())
}
