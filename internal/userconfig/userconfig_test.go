package userconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"claude", "gemini", "local"}, cfg.Providers)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.BuildTimeoutDuration())
	assert.Equal(t, 2*time.Minute, cfg.OracleTimeoutDuration())
}

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err, "missing file must yield defaults")
	assert.Equal(t, 3, cfg.MaxAttempts)
}

func TestLoadFromPathPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_attempts = 5\n"), 0644))

	cfg, err := loadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxAttempts)
	// Unset fields keep defaults.
	assert.Equal(t, "10m", cfg.BuildTimeout)
}

func TestLoadFromPathMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_attempts = [broken\n"), 0644))

	_, err := loadFromPath(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.MaxAttempts = 7
	cfg.Listen = "0.0.0.0:9000"
	require.NoError(t, cfg.saveToPath(path))

	loaded, err := loadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.MaxAttempts)
	assert.Equal(t, "0.0.0.0:9000", loaded.Listen)
}

func TestHomeHonorsEnv(t *testing.T) {
	t.Setenv("GRADLEMEND_HOME", "/custom/home")

	home, err := Home()
	require.NoError(t, err)
	assert.Equal(t, "/custom/home", home)
}

func TestWorkspaceDir(t *testing.T) {
	t.Setenv("GRADLEMEND_HOME", "/custom/home")

	cfg := DefaultConfig()
	dir, err := cfg.WorkspaceDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/custom/home", "projects"), dir)

	cfg.Workspace = "/srv/projects"
	dir, err = cfg.WorkspaceDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/projects", dir)
}

func TestGetSet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("max_attempts", "5"))
	got, ok := cfg.Get("max_attempts")
	require.True(t, ok)
	assert.Equal(t, "5", got)

	require.NoError(t, cfg.Set("providers", "local, claude"))
	got, _ = cfg.Get("providers")
	assert.Equal(t, "local,claude", got)

	require.NoError(t, cfg.Set("build_timeout", "30m"))
	assert.Equal(t, 30*time.Minute, cfg.BuildTimeoutDuration())
}

func TestSetRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key, value string
	}{
		{"max_attempts", "zero"},
		{"max_attempts", "0"},
		{"max_attempts", "-1"},
		{"build_timeout", "fast"},
		{"oracle_timeout", "soon"},
		{"providers", " , "},
		{"no_such_key", "x"},
	}
	for _, tt := range tests {
		assert.Error(t, cfg.Set(tt.key, tt.value), "Set(%q, %q)", tt.key, tt.value)
	}
}

func TestGetUnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	_, ok := cfg.Get("no_such_key")
	assert.False(t, ok)
}

func TestKeysCoverGetSet(t *testing.T) {
	cfg := DefaultConfig()
	for _, key := range Keys() {
		_, ok := cfg.Get(key)
		assert.True(t, ok, "Keys() lists %q but Get does not know it", key)
	}
}
