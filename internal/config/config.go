package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
)

// Config holds all configuration for our application
type Config struct {
	Server      ServerConfig       `mapstructure:"server"`
	Logging     LoggingConfig      `mapstructure:"logging"`
	Clocks      []ClockConfig      `mapstructure:"clocks"`
	Collections []CollectionConfig `mapstructure:"collections"`
	Loader      LoaderConfig       `mapstructure:"loader"`
	Cache       CacheConfig        `mapstructure:"cache"`
	RateLimit   RateLimitConfig    `mapstructure:"rate_limit"`
	Journal     JournalConfig      `mapstructure:"journal"`
	Report      ReportConfig       `mapstructure:"report"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Host        string `mapstructure:"host"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ClockConfig struct {
	Country  string `mapstructure:"country"`
	Timezone string `mapstructure:"timezone"`
	Locale   string `mapstructure:"locale"`
	Visible  *bool  `mapstructure:"visible"`
}

type CollectionConfig struct {
	Name         string            `mapstructure:"name"`
	Endpoint     string            `mapstructure:"endpoint"`
	Query        map[string]string `mapstructure:"query"`
	APIKey       string            `mapstructure:"api_key"`
	APIKeyParam  string            `mapstructure:"api_key_param"`
	ItemsField   string            `mapstructure:"items_field"`
	TotalField   string            `mapstructure:"total_field"`
	DisplayField string            `mapstructure:"display_field"`
	Greeting     bool              `mapstructure:"greeting"`
}

type LoaderConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type JournalConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ReportConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// Load reads configuration from file and environment variables.
//
// ${VAR} references in the file are expanded first; CLOCKFEED_<SECTION>_<KEY>
// variables then override scalar settings (for example CLOCKFEED_SERVER_PORT).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
	}

	v := newViper()
	if raw != nil {
		if err := v.MergeConfigMap(raw); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	return decode(v)
}

// Default returns the configuration used when no file is given
func Default() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CLOCKFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Clocks) == 0 {
		config.Clocks = defaultClocks()
	}
	if len(config.Collections) == 0 {
		config.Collections = defaultCollections()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 50051)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.metrics_port", 9090)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("loader.timeout", 0)

	v.SetDefault("cache.size", 1000)

	v.SetDefault("rate_limit.rps", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("journal.driver", "")
	v.SetDefault("journal.dsn", "")

	v.SetDefault("report.schedule", "@every 1m")
}

func defaultClocks() []ClockConfig {
	return []ClockConfig{
		{Country: "Italy", Timezone: "Europe/Rome", Locale: "it-IT"},
		{Country: "USA", Timezone: "America/New_York", Locale: "it-IT"},
	}
}

func defaultCollections() []CollectionConfig {
	const base = "https://jsonplaceholder.typicode.com"
	limit := map[string]string{"_limit": "10"}
	return []CollectionConfig{
		{Name: "photos", Endpoint: base + "/photos", Query: limit, DisplayField: "title"},
		{Name: "albums", Endpoint: base + "/albums", Query: limit, DisplayField: "title"},
		{Name: "users", Endpoint: base + "/users", Query: limit, DisplayField: "name", Greeting: true},
	}
}

// Validate checks the settings that cannot be caught by decoding
func (c *Config) Validate() error {
	var errs []error

	countries := map[string]bool{}
	for i, cc := range c.Clocks {
		if cc.Country == "" {
			errs = append(errs, fmt.Errorf("clocks[%d]: missing country", i))
			continue
		}
		if countries[cc.Country] {
			errs = append(errs, fmt.Errorf("clocks[%d]: duplicate country %q", i, cc.Country))
		}
		countries[cc.Country] = true
	}

	names := map[string]bool{}
	for i, col := range c.Collections {
		if col.Name == "" {
			errs = append(errs, fmt.Errorf("collections[%d]: missing name", i))
			continue
		}
		if names[col.Name] {
			errs = append(errs, fmt.Errorf("collections[%d]: duplicate name %q", i, col.Name))
		}
		names[col.Name] = true
		if col.Endpoint == "" {
			errs = append(errs, fmt.Errorf("collections[%d]: missing endpoint", i))
		}
	}

	switch c.Journal.Driver {
	case "", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("journal: unsupported driver %q", c.Journal.Driver))
	}

	if c.Cache.Size <= 0 {
		errs = append(errs, fmt.Errorf("cache: size must be positive, got %d", c.Cache.Size))
	}

	return errors.Join(errs...)
}

// Clock returns the clock settings; clocks are visible unless disabled
func (cc ClockConfig) Clock() clock.Config {
	visible := true
	if cc.Visible != nil {
		visible = *cc.Visible
	}
	return clock.Config{
		Country:  cc.Country,
		Timezone: cc.Timezone,
		Locale:   cc.Locale,
		Visible:  visible,
	}
}

func (col CollectionConfig) Source() loader.Source {
	return loader.Source{
		Name:        col.Name,
		Endpoint:    col.Endpoint,
		Query:       col.Query,
		APIKey:      col.APIKey,
		APIKeyParam: col.APIKeyParam,
		ItemsField:  col.ItemsField,
		TotalField:  col.TotalField,
	}
}

// Collection returns the named collection settings
func (c *Config) Collection(name string) (CollectionConfig, bool) {
	for _, col := range c.Collections {
		if col.Name == name {
			return col, true
		}
	}
	return CollectionConfig{}, false
}
