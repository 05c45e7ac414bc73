package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.MaxPlayers)
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval())
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	res, err := Load(path)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, Default(), res.Config)

	again, err := Load(path)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Empty(t, again.Warnings)
	assert.Equal(t, Default(), again.Config)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "max_players: 4\ncodec: msgpack\nmap_radius: 2000\n")

	res, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 4, res.Config.MaxPlayers)
	assert.Equal(t, "msgpack", res.Config.Codec)
	assert.Equal(t, 2000.0, res.Config.MapRadius)
	assert.Equal(t, Default().CharacterRadius, res.Config.CharacterRadius)
}

func TestLoadUnknownKeyWarns(t *testing.T) {
	path := writeFile(t, "max_players: 2\nmystery_knob: 7\n")

	res, err := Load(path)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "mystery_knob")
	assert.Equal(t, 2, res.Config.MaxPlayers)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	res, err := Load(writeFile(t, "\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), res.Config)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	_, err := Load(writeFile(t, "max_players: 7\ncodec: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_players")
	assert.Contains(t, err.Error(), "codec")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.MaxPlayers = 1
	cfg.RushMaxCount = 0
	cfg.Codec = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "map_radius: [1, 2\n"))
	assert.Error(t, err)
}

func TestValidateItemInterval(t *testing.T) {
	cfg := Default()
	cfg.ItemRegenMinSeconds = 10
	cfg.ItemRegenMaxSeconds = 1
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.ListenAddr = ":9999"
	require.NoError(t, Save(path, cfg))

	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, res.Config)
}
