package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("MYTHOS_ADDR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, "pollinations", cfg.Image.Provider)
	assert.Equal(t, 1500*time.Millisecond, cfg.Video.Delay)
	assert.Equal(t, 256, cfg.Store.Capacity)
	assert.Equal(t, "Haitian", cfg.Culture.Region)
}

func TestLoad_FileAndEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  addr: ":9000"
log:
  level: debug
image:
  timeout: 15s
video:
  delay: 0s
culture:
  region: Andean
store:
  capacity: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("MYTHOS_ADDR", ":7000")
	t.Setenv("MYTHOS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.Image.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Video.Delay)
	assert.Equal(t, "Andean", cfg.Culture.Region)
	assert.Equal(t, "Caribbean aesthetic, vibrant colors", cfg.Culture.Aesthetic)
	assert.Equal(t, 8, cfg.Store.Capacity)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown image provider", func(c *Config) { c.Image.Provider = "dalle" }, true},
		{"seedream without ark key", func(c *Config) { c.Image.Provider = "seedream" }, true},
		{"seedream with ark key", func(c *Config) { c.Image.Provider = "seedream"; c.ArkAPIKey = "k" }, false},
		{"seedance without ark key", func(c *Config) { c.Video.Provider = "seedance" }, true},
		{"unknown speech provider", func(c *Config) { c.Speech.Provider = "say" }, true},
		{"google speech", func(c *Config) { c.Speech.Provider = "google" }, false},
		{"ark chat without key", func(c *Config) { c.Chat.Provider = "ark" }, true},
		{"zero capacity", func(c *Config) { c.Store.Capacity = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInitLogging(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetLevel(logrus.InfoLevel)

	_, err := InitLogging(LogConfig{Level: "loud"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "app.log")
	closer, err := InitLogging(LogConfig{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithField("story", "s1").Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"story":"s1"`)
}
