package tabgo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
log:
  level: debug
  format: json
memory_limit: 1048576
growth_threshold: 1024
archive:
  workers: 3
  io_limit: 2048
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, int64(1048576), cfg.MemoryLimit)
	assert.Equal(t, 1024, cfg.GrowthThreshold)
	assert.Equal(t, int64(3), cfg.Archive.Workers)

	rc := cfg.Controller()
	assert.Equal(t, int64(1048576), rc.MemoryLimit())

	reg := NewRegistry(cfg.Options()...)
	assert.Equal(t, 1024, reg.opts.growthThreshold)
	assert.Equal(t, int64(1048576), reg.Resources().MemoryLimit())
}

func TestParseConfigRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"negative memory": "memory_limit: -1",
		"bad level":       "log: {level: loud}",
		"bad format":      "log: {format: xml}",
		"negative io":     "archive: {io_limit: -5}",
		"not yaml":        "log: [",
	} {
		_, err := ParseConfig([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabgo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: console\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Logger())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
