package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfig(t *testing.T) {
	sc := DefaultServerConfig()

	assert.Equal(t, "guardfs", sc.Name)
	assert.NotEmpty(t, sc.Version)
	assert.Equal(t, "moderate", sc.RateLimit)
	assert.False(t, sc.CreateDirs)
}

func TestGate(t *testing.T) {
	tests := []struct {
		name      string
		rateLimit string
		wantRPS   int
		wantErr   bool
	}{
		{name: "empty defaults to moderate", rateLimit: "", wantRPS: 100},
		{name: "moderate preset", rateLimit: "moderate", wantRPS: 100},
		{name: "permissive preset", rateLimit: "permissive", wantRPS: 1000},
		{name: "strict preset", rateLimit: "strict", wantRPS: 10},
		{name: "preset is case insensitive", rateLimit: "Strict", wantRPS: 10},
		{name: "numeric rate", rateLimit: "25", wantRPS: 25},
		{name: "unknown preset", rateLimit: "turbo", wantErr: true},
		{name: "zero rate", rateLimit: "0", wantErr: true},
		{name: "negative rate", rateLimit: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := ServerConfig{RateLimit: tt.rateLimit}
			gate, err := sc.Gate()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRPS, gate.Limit())
		})
	}
}

func TestSaveToAndLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := Restricted(dir)
	original.AccessPolicy.AllowedExtensions = []string{"txt", "md"}
	original.Server.RateLimit = "strict"
	original.Server.CreateDirs = true
	require.NoError(t, original.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, original.AccessPolicy.AllowedPaths, loaded.AccessPolicy.AllowedPaths)
	assert.Equal(t, original.AccessPolicy.AllowedExtensions, loaded.AccessPolicy.AllowedExtensions)
	assert.Equal(t, original.AccessPolicy.MaxFileSize, loaded.AccessPolicy.MaxFileSize)
	assert.Equal(t, "strict", loaded.Server.RateLimit)
	assert.True(t, loaded.Server.CreateDirs)

	// The config file should not be world readable.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access_policy: [not a map"), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestLoadFromFillsServerDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "access_policy:\n  read_only: true\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.True(t, cfg.AccessPolicy.ReadOnly)
	assert.Equal(t, "guardfs", cfg.Server.Name)
	assert.NotEmpty(t, cfg.Server.Version)
	assert.Equal(t, "moderate", cfg.Server.RateLimit)
}

func TestPresetConstructors(t *testing.T) {
	dir := t.TempDir()

	restricted := Restricted(dir)
	require.Len(t, restricted.AccessPolicy.AllowedPaths, 1)
	assert.Equal(t, dir, restricted.AccessPolicy.AllowedPaths[0])
	assert.False(t, restricted.AccessPolicy.ReadOnly)

	readOnly := ReadOnly(dir)
	assert.True(t, readOnly.AccessPolicy.ReadOnly)

	permissive := Permissive()
	assert.True(t, permissive.AccessPolicy.AllowSymlinks)
	assert.True(t, permissive.AccessPolicy.AllowHidden)

	def := Default()
	assert.Empty(t, def.AccessPolicy.AllowedPaths)
	assert.False(t, def.AccessPolicy.AllowSymlinks)
}

func TestSaveWritesToStandardLocation(t *testing.T) {
	// Registered before Setenv so it runs after the env var is restored,
	// leaving the xdg package's view of the environment as we found it.
	t.Cleanup(func() { xdg.Reload() })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	cfg := Default()
	cfg.Server.RateLimit = "strict"
	require.NoError(t, cfg.Save())

	path, err := ConfigPath()
	require.NoError(t, err)
	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "strict", loaded.Server.RateLimit)
}

func TestConfigPathUsesXDG(t *testing.T) {
	// ConfigPath derives from the xdg library's view of the environment at
	// package init, so only the suffix is stable across test environments.
	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("guardfs", "config.yaml"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}
