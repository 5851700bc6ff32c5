package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1700, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.PingTimeout())
	assert.True(t, cfg.CORS)
	require.Len(t, cfg.Rooms, 1)
	assert.Equal(t, DefaultRoom(), cfg.Rooms[0])
	assert.Equal(t, 3*time.Second, cfg.Rooms[0].AdvanceDelay())
}

func TestLoadRoomsFromJSON(t *testing.T) {
	path := writeConfig(t, "sketchparty.json", `{
		"port": 1800,
		"pingTimeout": 5000,
		"cors": false,
		"games": [
			{"name": "Quick Draw", "minPlayers": 2, "maxPlayers": 4, "timeout": 30, "delay": 0.5, "wordlist": "quick.json"},
			{"id": "solo", "name": "Solo", "minPlayers": 2, "maxPlayers": 1}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1800, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.PingTimeout())
	assert.False(t, cfg.CORS)
	require.Len(t, cfg.Rooms, 2)

	quick := cfg.Rooms[0]
	assert.Equal(t, "quick-draw", quick.ID)
	assert.Equal(t, 4, quick.MaxPlayers)
	assert.Equal(t, 30, quick.Timeout)
	assert.Equal(t, 500*time.Millisecond, quick.AdvanceDelay())
	assert.Equal(t, "quick.json", quick.Wordlist)

	solo := cfg.Rooms[1]
	assert.Equal(t, "solo", solo.ID)
	assert.Equal(t, 1, solo.MaxPlayers)
	assert.Equal(t, 60, solo.Timeout)
	assert.Equal(t, "./words.json", solo.Wordlist)
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "sketchparty.yaml", "port: 1900\nlogLevel: debug\n")
	t.Setenv("PORT", "2100")
	t.Setenv("DATABASE_URL", "postgres://sketch@localhost/sketch")
	t.Setenv("CORS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://sketch@localhost/sketch", cfg.DatabaseURL)
	assert.False(t, cfg.CORS)
	assert.Len(t, cfg.Rooms, 1)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Rooms = nil
	assert.True(t, errors.Is(cfg.Validate(), ErrNoRooms))

	cfg = Default()
	cfg.Rooms = append(cfg.Rooms, DefaultRoom())
	assert.ErrorContains(t, cfg.Validate(), "duplicate room id")

	cfg = Default()
	cfg.Rooms[0].ID = "Main Room"
	assert.ErrorContains(t, cfg.Validate(), "room id")

	cfg = Default()
	cfg.Rooms[0].MaxPlayers = 0
	assert.ErrorContains(t, cfg.Validate(), "maxPlayers")

	cfg = Default()
	cfg.Rooms[0].Delay = -1
	assert.ErrorContains(t, cfg.Validate(), "delay")

	cfg = Default()
	cfg.Rooms[0].MinPlayers = 3
	cfg.Rooms[0].MaxPlayers = 1
	assert.NoError(t, cfg.Validate())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "quick-draw", Slug("Quick Draw!"))
	assert.Equal(t, "room-2", Slug("  Room #2 "))
}

func TestLoadDotEnvMissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := writeConfig(t, ".env", "SKETCH_TEST_A=fromfile\nSKETCH_TEST_B=fromfile\n")
	t.Setenv("SKETCH_TEST_A", "fromenv")
	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("SKETCH_TEST_B") })
	assert.Equal(t, "fromenv", os.Getenv("SKETCH_TEST_A"))
	assert.Equal(t, "fromfile", os.Getenv("SKETCH_TEST_B"))
}

func TestValidRoomID(t *testing.T) {
	assert.True(t, ValidRoomID("main"))
	assert.True(t, ValidRoomID("room-2"))
	assert.False(t, ValidRoomID(""))
	assert.False(t, ValidRoomID("Main"))
	assert.False(t, ValidRoomID("a/b"))
	assert.False(t, ValidRoomID(strings.Repeat("a", 65)))
}
