package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/poscalc/fixer"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, fixer.DefaultURL, cfg.API.URL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "none", cfg.Journal.Type)
	assert.NoError(t, cfg.Validate())

	d, err := cfg.API.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing url", func(c *Config) { c.API.URL = "" }, "api.url is required"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "api.timeout"},
		{"negative timeout", func(c *Config) { c.API.Timeout = "-1s" }, "api.timeout"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "mongo" }, "journal.type must be"},
		{"csv without files", func(c *Config) { c.Journal.Type = "csv" }, "calculations_file and rates_file"},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite" }, "db_path required"},
		{"sqlite with path", func(c *Config) {
			c.Journal.Type = "sqlite"
			c.Journal.DBPath = "poscalc.db"
		}, ""},
		{"bad schedule", func(c *Config) { c.Watch.Schedule = "every now and then" }, "watch.schedule"},
		{"cron schedule", func(c *Config) { c.Watch.Schedule = "*/5 * * * *" }, ""},
		{"policy", func(c *Config) { c.Policy = PolicyConfig{MaxRiskPercent: 2, MinRR: 1.5, MaxMarginPercent: 20} }, ""},
		{"policy risk over 100", func(c *Config) { c.Policy.MaxRiskPercent = 150 }, "policy.max_risk_percent"},
		{"negative rr", func(c *Config) { c.Policy.MinRR = -1 }, "must not be negative"},
		{"empty schedule", func(c *Config) { c.Watch.Schedule = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "config"+tt.ext)

			original := Default()
			original.API.Key = "secret"
			original.Log.File = "poscalc.log"
			original.Journal = JournalConfig{Type: "csv", CalculationsFile: "c.csv", RatesFile: "r.csv"}

			require.NoError(t, original.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, original, loaded)
		})
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, fixer.DefaultURL, cfg.API.URL)
	assert.Equal(t, "@every 5m", cfg.Watch.Schedule)
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("{ not: [valid"), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("journal:\n  type: mongo\n"), 0o644))
	_, err = LoadFromFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvAPIKey+"=from-dotenv\n"), 0o644))

	t.Setenv(EnvAPIKey, "")
	require.NoError(t, os.Unsetenv(EnvAPIKey))
	t.Setenv(EnvAPIURL, "http://localhost:9999/")

	cfg := Default()
	cfg.API.Key = "from-file"
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, "from-dotenv", cfg.API.Key)
	assert.Equal(t, "http://localhost:9999/", cfg.API.URL)
}

func TestApplyEnv_ProcessEnvWins(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvAPIKey+"=from-dotenv\n"), 0o644))
	t.Setenv(EnvAPIKey, "from-process")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envFile))
	assert.Equal(t, "from-process", cfg.API.Key)
}

func TestApplyEnv_MissingFileIsFine(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIURL, "")

	cfg := Default()
	assert.NoError(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "nope.env")))
	assert.Equal(t, fixer.DefaultURL, cfg.API.URL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIURL, "")
	chdir(t, t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestPolicyRisk(t *testing.T) {
	p := PolicyConfig{MaxRiskPercent: 2, MinRR: 1.5, MaxMarginPercent: 20}.Risk()
	assert.Equal(t, 2.0, p.MaxRiskPct)
	assert.Equal(t, 1.5, p.MinRR)
	assert.Equal(t, 20.0, p.MaxMarginPct)
	assert.False(t, Default().Policy.Risk().Enabled())
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
