// Package config loads the application configuration from defaults, an
// optional YAML file, .env files and ADDRCOMPARE_ environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/at-addrcompare/internal/dataset"
	"github.com/at-addrcompare/internal/errors"
	"github.com/at-addrcompare/internal/logging"
	"github.com/at-addrcompare/internal/normalize"
	"github.com/at-addrcompare/internal/overpass"
	"github.com/at-addrcompare/internal/web"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ADDRCOMPARE"

// Config holds the application configuration.
type Config struct {
	Overpass OverpassConfig `mapstructure:"overpass" yaml:"overpass"`
	Register RegisterConfig `mapstructure:"register" yaml:"register"`
	Rules    RulesConfig    `mapstructure:"rules" yaml:"rules"`
	Web      web.Config     `mapstructure:"web" yaml:"web"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// OverpassConfig contains the map data API settings.
type OverpassConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	// Timeout is the server side query timeout in seconds.
	Timeout int `mapstructure:"timeout" yaml:"timeout"`
	// RateLimit is in requests per second.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RegisterConfig contains the register source settings. A DSN selects the
// Postgres source; otherwise the register file given on the command line
// is read.
type RegisterConfig struct {
	Path      string        `mapstructure:"path" yaml:"path"`
	Delimiter string        `mapstructure:"delimiter" yaml:"delimiter"`
	Columns   ColumnsConfig `mapstructure:"columns" yaml:"columns"`
	DSN       string        `mapstructure:"dsn" yaml:"dsn"`
	Table     string        `mapstructure:"table" yaml:"table"`
}

// ColumnsConfig names the register columns. Address, when set, names a
// free-text column split into street and number for rows lacking them.
type ColumnsConfig struct {
	GKZ     string `mapstructure:"gkz" yaml:"gkz"`
	Street  string `mapstructure:"street" yaml:"street"`
	Number  string `mapstructure:"number" yaml:"number"`
	Address string `mapstructure:"address" yaml:"address"`
}

// RulesConfig contains the street name folding settings. An empty
// Abbreviations list means the built-in table.
type RulesConfig struct {
	Direction     string           `mapstructure:"direction" yaml:"direction"`
	Abbreviations []normalize.Rule `mapstructure:"abbreviations" yaml:"abbreviations"`
}

// LogConfig contains the logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cols := dataset.DefaultColumns()
	return &Config{
		Overpass: OverpassConfig{
			URL:       overpass.DefaultURL,
			Timeout:   25,
			RateLimit: 1,
		},
		Register: RegisterConfig{
			Delimiter: ";",
			Columns: ColumnsConfig{
				GKZ:    cols.GKZ,
				Street: cols.Street,
				Number: cols.Number,
			},
			Table: "adressen",
		},
		Rules: RulesConfig{Direction: normalize.FoldToShort.String()},
		Web:   web.DefaultConfig(),
		Log:   LogConfig{Level: "info", Format: "auto"},
	}
}

// Load reads the configuration. path names an optional YAML file; a missing
// explicit file is an error. Environment variables override the file, e.g.
// ADDRCOMPARE_OVERPASS_TIMEOUT for overpass.timeout.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Register.DSN == "" && os.Getenv("PGHOST") != "" {
		cfg.Register.DSN = dsnFromEnv()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("overpass.url", d.Overpass.URL)
	v.SetDefault("overpass.timeout", d.Overpass.Timeout)
	v.SetDefault("overpass.rate_limit", d.Overpass.RateLimit)

	v.SetDefault("register.path", d.Register.Path)
	v.SetDefault("register.delimiter", d.Register.Delimiter)
	v.SetDefault("register.columns.gkz", d.Register.Columns.GKZ)
	v.SetDefault("register.columns.street", d.Register.Columns.Street)
	v.SetDefault("register.columns.number", d.Register.Columns.Number)
	v.SetDefault("register.columns.address", d.Register.Columns.Address)
	v.SetDefault("register.dsn", d.Register.DSN)
	v.SetDefault("register.table", d.Register.Table)

	v.SetDefault("rules.direction", d.Rules.Direction)

	v.SetDefault("web.host", d.Web.Host)
	v.SetDefault("web.port", d.Web.Port)
	v.SetDefault("web.run_timeout", d.Web.RunTimeout)
	v.SetDefault("web.default_format", d.Web.DefaultFormat)
	v.SetDefault("web.auth.enabled", d.Web.Auth.Enabled)
	v.SetDefault("web.auth.api_key", d.Web.Auth.APIKey)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadEnvFiles loads .env then .env.local. Variables already set win.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// dsnFromEnv builds a lib/pq DSN from the libpq environment variables.
func dsnFromEnv() string {
	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		get("PGHOST", "localhost"),
		get("PGPORT", "5432"),
		get("PGUSER", "postgres"),
		get("PGPASSWORD", ""),
		get("PGDATABASE", "register"),
		get("PGSSLMODE", "disable"))
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Overpass.Timeout <= 0 {
		return errors.NewValidationError("overpass.timeout", fmt.Sprint(c.Overpass.Timeout), "must be positive")
	}
	if c.Overpass.RateLimit < 0 {
		return errors.NewValidationError("overpass.rate_limit", fmt.Sprint(c.Overpass.RateLimit), "must not be negative")
	}
	if utf8.RuneCountInString(c.Register.Delimiter) != 1 {
		return errors.NewValidationError("register.delimiter", c.Register.Delimiter, "must be a single character")
	}
	cols := c.Register.Columns
	if cols.GKZ == "" || cols.Street == "" || cols.Number == "" {
		return errors.NewValidationError("register.columns", "", "gkz, street and number columns are required")
	}
	if _, err := normalize.ParseDirection(c.Rules.Direction); err != nil {
		return err
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return errors.NewValidationError("web.port", fmt.Sprint(c.Web.Port), "out of range")
	}
	if c.Web.Auth.Enabled && c.Web.Auth.APIKey == "" {
		return errors.NewValidationError("web.auth.api_key", "", "required when auth is enabled")
	}
	return nil
}

// Canonicalizer builds the street name canonicalizer from the rules section.
func (c *Config) Canonicalizer() (*normalize.Canonicalizer, error) {
	direction, err := normalize.ParseDirection(c.Rules.Direction)
	if err != nil {
		return nil, err
	}
	rules := c.Rules.Abbreviations
	if len(rules) == 0 {
		rules = normalize.DefaultRules()
	}
	return normalize.NewCanonicalizer(rules, direction)
}

// Columns returns the register columns read by the dataset builder.
func (c *Config) Columns() dataset.Columns {
	return dataset.Columns{
		GKZ:    c.Register.Columns.GKZ,
		Street: c.Register.Columns.Street,
		Number: c.Register.Columns.Number,
	}
}

// DelimiterRune returns the register field delimiter.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Register.Delimiter)
	return r
}

// OverpassClient returns the Overpass client settings.
func (c *Config) OverpassClient() overpass.ClientConfig {
	limit := rate.Limit(c.Overpass.RateLimit)
	if c.Overpass.RateLimit == 0 {
		limit = rate.Inf
	}
	return overpass.ClientConfig{
		BaseURL:   c.Overpass.URL,
		Timeout:   time.Duration(c.Overpass.Timeout) * time.Second,
		RateLimit: limit,
	}
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
