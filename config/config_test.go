package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{Environ: environ()})
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SweepInterval)
	assert.Equal(t, "/api/report", cfg.Server.APIPrefix)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reportgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  host: 127.0.0.1
cache:
  ttl: 30m
  sweep_interval: 1m
log:
  level: warn
`), 0o644))

	cfg, err := Load(Options{
		File: path,
		Environ: environ(
			"REPORTGATE_SERVER_PORT=9100",
			"REPORTGATE_CACHE_SWEEP_INTERVAL=2m",
			"REPORTGATE_LOG_JSON=true",
			"OTHER_SERVER_PORT=1",
		),
		Overrides: map[string]any{"log.level": "debug"},
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "file")
	assert.Equal(t, 9100, cfg.Server.Port, "env over file")
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL, "file")
	assert.Equal(t, 2*time.Minute, cfg.Cache.SweepInterval, "env over file")
	assert.True(t, cfg.Log.JSON, "env")
	assert.Equal(t, "debug", cfg.Log.Level, "override over file")
	assert.Equal(t, int64(32<<20), cfg.Server.MaxBodyBytes, "default")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  []string
	}{
		{"port out of range", []string{"REPORTGATE_SERVER_PORT=70000"}},
		{"prefix without slash", []string{"REPORTGATE_SERVER_API_PREFIX=api"}},
		{"sweep not shorter than ttl", []string{"REPORTGATE_CACHE_TTL=1m", "REPORTGATE_CACHE_SWEEP_INTERVAL=1m"}},
		{"unknown log level", []string{"REPORTGATE_LOG_LEVEL=loud"}},
		{"bad remote url", []string{"REPORTGATE_RENDER_REMOTE_URL=not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(Options{Environ: environ(tt.env...)})
			assert.ErrorContains(t, err, "validation failed")
		})
	}
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(Options{Environ: environ("REPORTGATE_CACHE_TTL=soon")})
	assert.ErrorContains(t, err, "unmarshal")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "absent.yaml"), Environ: environ()})
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestTransformEnvKey(t *testing.T) {
	tests := map[string]string{
		"REPORTGATE_SERVER_PORT":           "server.port",
		"REPORTGATE_SERVER_MAX_BODY_BYTES": "server.max_body_bytes",
		"REPORTGATE_RENDER_REMOTE_URL":     "render.remote_url",
		"REPORTGATE_DEBUG":                 "",
		"REPORTGATE__X":                    "",
	}
	for in, want := range tests {
		got, _ := transformEnvKey(in, "v")
		assert.Equal(t, want, got, in)
	}
}
