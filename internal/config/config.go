// Package config loads runtime settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultFile = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Weather  WeatherConfig  `yaml:"weather"`
	Cache    CacheConfig    `yaml:"cache"`
	Forecast ForecastConfig `yaml:"forecast"`
	Database DatabaseConfig `yaml:"database"`
}

// HTTPConfig controls the API server.
type HTTPConfig struct {
	Port              string        `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	IdleTimeout       time.Duration `yaml:"idleTimeout"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
	AllowedOrigins    []string      `yaml:"allowedOrigins"`
	AdminToken        string        `yaml:"adminToken"`
}

// WeatherConfig holds the OpenWeatherMap account and outbound limits.
type WeatherConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Lang    string        `yaml:"lang"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
}

// CacheConfig controls weather response caching. An empty RedisURL selects
// the in-process store.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	RedisURL      string        `yaml:"redisUrl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// ForecastConfig tunes the multi-day aggregation.
type ForecastConfig struct {
	Days   int           `yaml:"days"`
	MaxGap time.Duration `yaml:"maxGap"`
}

// DatabaseConfig enables the Postgres catalog when URL is set.
type DatabaseConfig struct {
	URL           string `yaml:"url"`
	MigrationsDir string `yaml:"migrationsDir"`
}

// MaxForecastDays is the provider's free-tier horizon.
const MaxForecastDays = 5

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultFile); err == nil {
		if err := hydrateFromFile(cfg, defaultFile); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		"PORT":                 &cfg.HTTP.Port,
		"ADMIN_TOKEN":          &cfg.HTTP.AdminToken,
		"OPENWEATHER_API_KEY":  &cfg.Weather.APIKey,
		"OPENWEATHER_BASE_URL": &cfg.Weather.BaseURL,
		"OPENWEATHER_LANG":     &cfg.Weather.Lang,
		"REDIS_URL":            &cfg.Cache.RedisURL,
		"DATABASE_URL":         &cfg.Database.URL,
		"MIGRATIONS_DIR":       &cfg.Database.MigrationsDir,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"CACHE_TTL":            &cfg.Cache.TTL,
		"CACHE_SWEEP_INTERVAL": &cfg.Cache.SweepInterval,
		"MATCH_GAP":            &cfg.Forecast.MaxGap,
		"OPENWEATHER_TIMEOUT":  &cfg.Weather.Timeout,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", key, err)
			}
			*dst = parsed
		}
	}

	ints := map[string]*int{
		"FORECAST_DAYS":  &cfg.Forecast.Days,
		"PROVIDER_BURST": &cfg.Weather.Burst,
		"RATE_LIMIT_RPM": &cfg.HTTP.RequestsPerMinute,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", key, err)
			}
			*dst = parsed
		}
	}

	if v := os.Getenv("PROVIDER_RPS"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse PROVIDER_RPS: %w", err)
		}
		cfg.Weather.RPS = parsed
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.HTTP.AllowedOrigins = origins
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:              "8080",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestsPerMinute: 60,
			AllowedOrigins:    []string{"*"},
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5",
			Lang:    "en",
			Timeout: 10 * time.Second,
			RPS:     1,
			Burst:   5,
		},
		Cache: CacheConfig{
			TTL:           time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Forecast: ForecastConfig{
			Days:   3,
			MaxGap: 12 * time.Hour,
		},
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Weather.APIKey == "" {
		errs = append(errs, errors.New("weather.apiKey (OPENWEATHER_API_KEY) is required"))
	}
	if c.Weather.BaseURL == "" {
		errs = append(errs, errors.New("weather.baseUrl must not be empty"))
	}
	if c.Weather.RPS <= 0 || c.Weather.Burst < 1 {
		errs = append(errs, errors.New("weather.rps must be positive and weather.burst at least 1"))
	}
	if c.Weather.Timeout <= 0 {
		errs = append(errs, errors.New("weather.timeout must be positive"))
	}
	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("http.port must not be empty"))
	}
	if c.HTTP.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("http.requestsPerMinute must be positive"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}
	if c.Cache.SweepInterval < 0 {
		errs = append(errs, errors.New("cache.sweepInterval must not be negative"))
	}
	if c.Forecast.Days < 1 || c.Forecast.Days > MaxForecastDays {
		errs = append(errs, fmt.Errorf("forecast.days must be between 1 and %d", MaxForecastDays))
	}
	if c.Forecast.MaxGap <= 0 {
		errs = append(errs, errors.New("forecast.maxGap must be positive"))
	}
	return errors.Join(errs...)
}
