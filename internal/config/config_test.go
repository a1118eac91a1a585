package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, c.PreviewRows)
	assert.Equal(t, 20, c.HistogramBins)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "127.0.0.1:8080", c.ListenAddr)
	assert.Equal(t, int64(32<<20), c.MaxUploadBytes())
	assert.Equal(t, filepath.Join(home, ".attrition", "submissions"), c.SubmissionsDir)
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preview_rows: 5\nhistogram_bins: 10\n"), 0o644))
	t.Setenv("ATTRITION_HISTOGRAM_BINS", "7")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.PreviewRows, "file overrides default")
	assert.Equal(t, 7, c.HistogramBins, "env overrides file")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preview_rows: [\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("preview_rows", "12"))
	require.NoError(t, c.Set("log_format", "JSON"))
	require.NoError(t, Save(c, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, again.PreviewRows)
	assert.Equal(t, "json", again.LogFormat)
}

func TestSaveKeepsDefaultSubmissionsDirUnpinned(t *testing.T) {
	oldHome := t.TempDir()
	t.Setenv("HOME", oldHome)
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("preview_rows", "7"))
	require.NoError(t, Save(c, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "submissions_dir")
	assert.Contains(t, string(raw), "preview_rows: 7")

	newHome := t.TempDir()
	t.Setenv("HOME", newHome)
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(newHome, ".attrition", "submissions"), again.SubmissionsDir)

	custom := filepath.Join(t.TempDir(), "subs")
	require.NoError(t, again.Set("submissions_dir", custom))
	require.NoError(t, Save(again, path))
	again, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, custom, again.SubmissionsDir)
}

func TestSetValidation(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("preview_rows", "0"))
	assert.Error(t, c.Set("histogram_bins", "many"))
	assert.Error(t, c.Set("log_level", "trace"))
	assert.Error(t, c.Set("nope", "1"))

	require.NoError(t, c.Set("listen_addr", ":9090"))
	v, err := c.Get("listen_addr")
	require.NoError(t, err)
	assert.Equal(t, ":9090", v)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ATTRITION_LISTEN_ADDR=0.0.0.0:9999\n"), 0o644))
	t.Setenv("ATTRITION_LISTEN_ADDR", "")
	require.NoError(t, os.Unsetenv("ATTRITION_LISTEN_ADDR"))
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", c.ListenAddr)
}
