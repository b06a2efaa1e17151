package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "\t", cfg.Corpus.Delimiter)
	assert.Equal(t, 1, cfg.Corpus.IDColumn)
	assert.Equal(t, 4, cfg.Corpus.TextColumn)
	assert.Equal(t, 5, cfg.Corpus.MinFields)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
corpus:
  path: /data/tweets.tsv
  idColumn: 0
  textColumn: 2
  minFields: 3
redis:
  enabled: true
  addr: cache:6379
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/tweets.tsv", cfg.Corpus.Path)
	assert.Equal(t, 0, cfg.Corpus.IDColumn)
	assert.Equal(t, 2, cfg.Corpus.TextColumn)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PF_CORPUS_PATH", "/env/corpus.tsv")
	t.Setenv("PF_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/corpus.tsv", cfg.Corpus.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInconsistentColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
corpus:
  textColumn: 9
  minFields: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
