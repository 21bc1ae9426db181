package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/osvald0/linkedin-scraper/internal/secrets"
)

// setBaseEnv provides the minimum a run needs so individual tests only
// tweak what they are about.
func setBaseEnv(t *testing.T) {
	t.Setenv("KEYWORDS", "golang developer")
	t.Setenv("LOCATIONS", "uk")
	t.Setenv("LINKEDIN_EMAIL", "user@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "pw")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := load(nil)
	require.NoError(t, err)

	assert.Equal(t, "golang developer", cfg.Keywords)
	assert.Equal(t, []string{"uk"}, cfg.Locations)
	assert.Equal(t, []string{"101165590"}, cfg.GeoIDs)
	assert.Equal(t, "r86400", cfg.TPR, "default window is past_24h")
	assert.Equal(t, 24*time.Hour, cfg.Window.Span)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "jobs.db", cfg.DBPath)
	assert.Equal(t, "jobs.db", cfg.StorePath())
	assert.Equal(t, 3, cfg.PageLimit)
	assert.Equal(t, ".cookies/linkedin.json", cfg.CookiesFile)
	assert.Equal(t, 30*time.Second, cfg.NavTimeout)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout)
	assert.False(t, cfg.Headless)
	assert.Empty(t, cfg.Contains)
	assert.Empty(t, cfg.NonContains)
}

func TestLoadListsAndCleaning(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOCATIONS", "uk, Netherlands ,germany")
	t.Setenv("CONTAINS", "visa,,relocation , ")
	t.Setenv("NON_CONTAINS", "c#")
	t.Setenv("HEADLESS", "true")

	cfg, err := load(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"101165590", "102890719", "101282230"}, cfg.GeoIDs)
	assert.Equal(t, []string{"visa", "relocation"}, cfg.Contains)
	assert.Equal(t, []string{"c#"}, cfg.NonContains)
	assert.True(t, cfg.Headless)
}

func TestLoadDateFilters(t *testing.T) {
	tbl := []struct {
		name string
		tpr  string
		span time.Duration
	}{
		{"past_24h", "r86400", 24 * time.Hour},
		{"past_week", "r604800", 7 * 24 * time.Hour},
		{"past_month", "r2592000", 30 * 24 * time.Hour},
		{"any_time", "", 0},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("DATE_FILTER", tt.name)

			cfg, err := load(nil)
			require.NoError(t, err)
			assert.Equal(t, tt.tpr, cfg.TPR)
			assert.Equal(t, tt.span, cfg.Window.Span)
			assert.Equal(t, tt.name, cfg.Window.Name)
		})
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tbl := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown location", map[string]string{"LOCATIONS": "uk,atlantis"}, "unknown location"},
		{"unknown date filter", map[string]string{"DATE_FILTER": "past_year"}, "unknown DATE_FILTER"},
		{"missing keywords", map[string]string{"KEYWORDS": " "}, "KEYWORDS is required"},
		{"negative page limit", map[string]string{"PAGE_LIMIT": "-1"}, "PAGE_LIMIT"},
		{"missing email", map[string]string{"LINKEDIN_EMAIL": ""}, "LINKEDIN_EMAIL is required"},
		{"telegram token without chat", map[string]string{"TELEGRAM_BOT_TOKEN": "t0ken"}, "TELEGRAM_CHAT_ID"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
keywords: backend engineer
locations:
  - netherlands
contains: [visa]
non_contains: [c#, php]
date_filter: past_week
store: json
output_file: out/found.json
page_limit: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LINKEDIN_EMAIL", "user@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "pw")

	cfg, err := load(nil)
	require.NoError(t, err)

	assert.Equal(t, "backend engineer", cfg.Keywords)
	assert.Equal(t, []string{"102890719"}, cfg.GeoIDs)
	assert.Equal(t, []string{"visa"}, cfg.Contains)
	assert.Equal(t, []string{"c#", "php"}, cfg.NonContains)
	assert.Equal(t, "r604800", cfg.TPR)
	assert.Equal(t, "json", cfg.Store)
	assert.Equal(t, "out/found.json", cfg.StorePath())
	assert.Equal(t, 5, cfg.PageLimit)
}

func TestLoadEnvWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: from file\nlocations: [germany]\n"), 0o600))

	setBaseEnv(t)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := load(nil)
	require.NoError(t, err)
	assert.Equal(t, "golang developer", cfg.Keywords)
	assert.Equal(t, []string{"101165590"}, cfg.GeoIDs, "env locations shadow the file")
}

func TestLoadExplicitConfigFileMustExist(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadPasswordFromKeychain(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, secrets.SavePassword("user@example.com", "from-keychain"))

	setBaseEnv(t)
	t.Setenv("LINKEDIN_PASSWORD", "")

	cfg, err := load(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", cfg.Password)
}

func TestLoadNoPasswordAnywhere(t *testing.T) {
	keyring.MockInit()

	setBaseEnv(t)
	t.Setenv("LINKEDIN_EMAIL", "fresh@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "")

	_, err := load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keychain")
}
