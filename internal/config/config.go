// Package config resolves the run configuration from the environment, an
// optional .env file and an optional YAML overlay. The environment always
// wins; the YAML file only fills what the environment left empty.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/joho/godotenv"
	flags "github.com/umputun/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/osvald0/linkedin-scraper/internal/filter"
	"github.com/osvald0/linkedin-scraper/internal/secrets"
)

// locationIDs maps the short names accepted in LOCATIONS to the site's
// numeric geo region identifiers used in the search URL.
var locationIDs = map[string]string{
	"uk":          "101165590",
	"netherlands": "102890719",
	"germany":     "101282230",
	"uruguay":     "100867946",
}

// dateFilters maps DATE_FILTER names to the f_TPR search parameter and the
// client-side recency span. A zero span disables the date predicate.
var dateFilters = map[string]struct {
	param string
	span  time.Duration
}{
	"past_24h":   {"r86400", 24 * time.Hour},
	"past_week":  {"r604800", 7 * 24 * time.Hour},
	"past_month": {"r2592000", 30 * 24 * time.Hour},
	"any_time":   {"", 0},
}

// Options is the raw flag/env surface. Fields that can also come from the
// YAML overlay carry no go-flags default; defaults for those are applied
// after the merge.
type Options struct {
	Keywords    string   `long:"keywords" env:"KEYWORDS" description:"search phrase typed into the jobs search box"`
	Locations   []string `long:"locations" env:"LOCATIONS" env-delim:"," description:"location names to search, comma-separated"`
	DateFilter  string   `long:"date-filter" env:"DATE_FILTER" description:"posting recency: past_24h, past_week, past_month or any_time"`
	Contains    []string `long:"contains" env:"CONTAINS" env-delim:"," description:"keep postings whose description has at least one of these"`
	NonContains []string `long:"non-contains" env:"NON_CONTAINS" env-delim:"," description:"drop postings whose description has any of these"`

	Email        string `long:"email" env:"LINKEDIN_EMAIL" description:"account email"`
	Password     string `long:"password" env:"LINKEDIN_PASSWORD" description:"account password, falls back to the OS keychain"`
	SavePassword bool   `long:"save-password" env:"SAVE_PASSWORD" description:"store the password in the OS keychain for later runs"`

	Headless    bool   `long:"headless" env:"HEADLESS" description:"run the browser without a window"`
	PageLimit   int    `long:"page-limit" env:"PAGE_LIMIT" description:"max result pages per location"`
	CookiesFile string `long:"cookies-file" env:"COOKIES_FILE" description:"where the session cookies are kept between runs"`

	Store      string `long:"store" env:"STORE" choice:"sqlite" choice:"json" description:"persistence backend"`
	DBPath     string `long:"db-path" env:"DB_PATH" description:"sqlite database file"`
	OutputFile string `long:"output-file" env:"OUTPUT_FILE" description:"json store file"`

	NavTimeout time.Duration `long:"nav-timeout" env:"NAV_TIMEOUT" default:"30s" description:"per-navigation timeout"`
	RunTimeout time.Duration `long:"run-timeout" env:"RUN_TIMEOUT" default:"10m" description:"whole-run timeout"`

	TelegramToken  string `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"optional bot token for run reports"`
	TelegramChatID int64  `long:"telegram-chat" env:"TELEGRAM_CHAT_ID" description:"chat receiving run reports"`

	ConfigFile string `long:"config" env:"CONFIG_FILE" description:"yaml overlay, default configs/config.yaml if present"`
	Debug      bool   `long:"dbg" env:"DEBUG" description:"debug mode"`
}

// fileConfig is the YAML overlay shape. It mirrors the Options fields a
// user would reasonably keep in a file rather than in the environment.
type fileConfig struct {
	Keywords    string   `yaml:"keywords"`
	Locations   []string `yaml:"locations"`
	DateFilter  string   `yaml:"date_filter"`
	Contains    []string `yaml:"contains"`
	NonContains []string `yaml:"non_contains"`
	Store       string   `yaml:"store"`
	DBPath      string   `yaml:"db_path"`
	OutputFile  string   `yaml:"output_file"`
	CookiesFile string   `yaml:"cookies_file"`
	PageLimit   int      `yaml:"page_limit"`
}

// Config is the fully resolved configuration the rest of the program sees.
type Config struct {
	Keywords  string
	Locations []string // as configured, for logs
	GeoIDs    []string // resolved ids, same order as Locations

	TPR    string // f_TPR value for the search URL, empty for any_time
	Window filter.Window

	Contains    []string
	NonContains []string

	Email    string
	Password string

	Headless    bool
	PageLimit   int
	CookiesFile string

	Store      string
	DBPath     string
	OutputFile string

	NavTimeout time.Duration
	RunTimeout time.Duration

	TelegramToken  string
	TelegramChatID int64

	Debug bool
}

// Load reads .env, parses flags and environment, applies the YAML overlay
// and resolves everything into a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	var opts Options
	p := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := p.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := applyFile(&opts); err != nil {
		return nil, err
	}
	applyDefaults(&opts)

	return resolve(opts)
}

// applyFile fills empty Options fields from the YAML overlay. The file is
// optional unless the user pointed at it explicitly.
func applyFile(opts *Options) error {
	path, explicit := opts.ConfigFile, opts.ConfigFile != ""
	if !explicit {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		if explicit {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if opts.Keywords == "" {
		opts.Keywords = fc.Keywords
	}
	if len(opts.Locations) == 0 {
		opts.Locations = fc.Locations
	}
	if opts.DateFilter == "" {
		opts.DateFilter = fc.DateFilter
	}
	if len(opts.Contains) == 0 {
		opts.Contains = fc.Contains
	}
	if len(opts.NonContains) == 0 {
		opts.NonContains = fc.NonContains
	}
	if opts.Store == "" {
		opts.Store = fc.Store
	}
	if opts.DBPath == "" {
		opts.DBPath = fc.DBPath
	}
	if opts.OutputFile == "" {
		opts.OutputFile = fc.OutputFile
	}
	if opts.CookiesFile == "" {
		opts.CookiesFile = fc.CookiesFile
	}
	if opts.PageLimit == 0 {
		opts.PageLimit = fc.PageLimit
	}
	return nil
}

func applyDefaults(opts *Options) {
	if opts.DateFilter == "" {
		opts.DateFilter = "past_24h"
	}
	if opts.Store == "" {
		opts.Store = "sqlite"
	}
	if opts.DBPath == "" {
		opts.DBPath = "jobs.db"
	}
	if opts.OutputFile == "" {
		opts.OutputFile = "jobs.json"
	}
	if opts.CookiesFile == "" {
		opts.CookiesFile = ".cookies/linkedin.json"
	}
	if opts.PageLimit == 0 {
		opts.PageLimit = 3
	}
}

func resolve(opts Options) (*Config, error) {
	cfg := &Config{
		Keywords:       strings.TrimSpace(opts.Keywords),
		Contains:       cleanList(opts.Contains),
		NonContains:    cleanList(opts.NonContains),
		Email:          strings.TrimSpace(opts.Email),
		Headless:       opts.Headless,
		PageLimit:      opts.PageLimit,
		CookiesFile:    opts.CookiesFile,
		Store:          opts.Store,
		DBPath:         opts.DBPath,
		OutputFile:     opts.OutputFile,
		NavTimeout:     opts.NavTimeout,
		RunTimeout:     opts.RunTimeout,
		TelegramToken:  opts.TelegramToken,
		TelegramChatID: opts.TelegramChatID,
		Debug:          opts.Debug,
	}

	if cfg.Keywords == "" {
		return nil, fmt.Errorf("KEYWORDS is required")
	}

	cfg.Locations = cleanList(opts.Locations)
	if len(cfg.Locations) == 0 {
		return nil, fmt.Errorf("LOCATIONS is required, known names: %s", knownLocations())
	}
	for _, loc := range cfg.Locations {
		id, ok := locationIDs[strings.ToLower(loc)]
		if !ok {
			return nil, fmt.Errorf("unknown location %q, known names: %s", loc, knownLocations())
		}
		cfg.GeoIDs = append(cfg.GeoIDs, id)
	}

	df, ok := dateFilters[opts.DateFilter]
	if !ok {
		return nil, fmt.Errorf("unknown DATE_FILTER %q, expected past_24h, past_week, past_month or any_time", opts.DateFilter)
	}
	cfg.TPR = df.param
	cfg.Window = filter.Window{Name: opts.DateFilter, Span: df.span}

	if cfg.PageLimit < 1 {
		return nil, fmt.Errorf("PAGE_LIMIT must be at least 1, got %d", opts.PageLimit)
	}

	if cfg.Email == "" {
		return nil, fmt.Errorf("LINKEDIN_EMAIL is required")
	}
	cfg.Password = opts.Password
	if cfg.Password == "" {
		pw, err := secrets.Password(cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("LINKEDIN_PASSWORD not set and keychain lookup failed: %w", err)
		}
		cfg.Password = pw
	} else if opts.SavePassword {
		if err := secrets.SavePassword(cfg.Email, cfg.Password); err != nil {
			log.Printf("[WARN] can't save password to keychain: %v", err)
		} else {
			log.Printf("[INFO] password saved to keychain for %s", cfg.Email)
		}
	}

	if opts.TelegramToken != "" && opts.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return cfg, nil
}

// StorePath returns the file backing the selected store backend.
func (c *Config) StorePath() string {
	if c.Store == "json" {
		return c.OutputFile
	}
	return c.DBPath
}

// cleanList trims every element and drops the empty ones, so trailing
// commas and values like "golang,,remote" don't produce phantom entries.
func cleanList(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func knownLocations() string {
	names := make([]string, 0, len(locationIDs))
	for name := range locationIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
