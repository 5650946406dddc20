// Package config loads service configuration from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds all service settings.
type Config struct {
	Port int

	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	MLServiceURL    string
	MLTimeout       time.Duration
	MLUploadTimeout time.Duration

	MonthlyHoursPerDay float64
	TotalHoursPerDay   float64
	FanoutLimit        int

	LogLevel string
	LogFile  string

	BcryptCost     int
	PasswordPepper string

	RateLimit RateLimitConfig
}

// RateLimitConfig holds the rate limiter settings.
type RateLimitConfig struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       []string
	Blacklist       []string
}

// envKeys maps config keys to their environment variables.
var envKeys = map[string]string{
	"server.port":                 "PORT",
	"store.driver":                "STORE_DRIVER",
	"store.database_url":          "DATABASE_URL",
	"store.mongo_uri":             "MONGO_URI",
	"store.mongo_database":        "MONGO_DATABASE",
	"ml.url":                      "ML_SERVICE_URL",
	"ml.timeout":                  "ML_TIMEOUT",
	"ml.upload_timeout":           "ML_UPLOAD_TIMEOUT",
	"hours.monthly_per_day":       "MONTHLY_HOURS_PER_DAY",
	"hours.total_per_day":         "TOTAL_HOURS_PER_DAY",
	"fanout.limit":                "FANOUT_LIMIT",
	"log.level":                   "LOG_LEVEL",
	"log.file":                    "LOG_FILE",
	"password.bcrypt_cost":        "BCRYPT_COST",
	"password.pepper":             "PASSWORD_PEPPER",
	"rate_limit.enabled":          "RATE_LIMIT_ENABLED",
	"rate_limit.default_limit":    "RATE_LIMIT_DEFAULT_LIMIT",
	"rate_limit.default_window":   "RATE_LIMIT_DEFAULT_WINDOW",
	"rate_limit.cleanup_interval": "RATE_LIMIT_CLEANUP_INTERVAL",
	"rate_limit.whitelist":        "RATE_LIMIT_WHITELIST",
	"rate_limit.blacklist":        "RATE_LIMIT_BLACKLIST",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.mongo_database", "intelliconsult")
	v.SetDefault("ml.url", "")
	v.SetDefault("ml.timeout", "60s")
	v.SetDefault("ml.upload_timeout", "2m")
	v.SetDefault("hours.monthly_per_day", 9)
	v.SetDefault("hours.total_per_day", 3)
	v.SetDefault("fanout.limit", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("password.bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("password.pepper", "")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", "1m")
	v.SetDefault("rate_limit.cleanup_interval", "5m")
	v.SetDefault("rate_limit.whitelist", "")
	v.SetDefault("rate_limit.blacklist", "")
}

// Load reads configuration from the environment. When configFile is not
// empty it is read first and environment variables override its values.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Port:               v.GetInt("server.port"),
		StoreDriver:        strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
		DatabaseURL:        v.GetString("store.database_url"),
		MongoURI:           v.GetString("store.mongo_uri"),
		MongoDatabase:      v.GetString("store.mongo_database"),
		MLServiceURL:       v.GetString("ml.url"),
		MLTimeout:          v.GetDuration("ml.timeout"),
		MLUploadTimeout:    v.GetDuration("ml.upload_timeout"),
		MonthlyHoursPerDay: v.GetFloat64("hours.monthly_per_day"),
		TotalHoursPerDay:   v.GetFloat64("hours.total_per_day"),
		FanoutLimit:        v.GetInt("fanout.limit"),
		LogLevel:           v.GetString("log.level"),
		LogFile:            v.GetString("log.file"),
		BcryptCost:         v.GetInt("password.bcrypt_cost"),
		PasswordPepper:     v.GetString("password.pepper"),
		RateLimit: RateLimitConfig{
			Enabled:         v.GetBool("rate_limit.enabled"),
			DefaultLimit:    v.GetInt("rate_limit.default_limit"),
			DefaultWindow:   v.GetDuration("rate_limit.default_window"),
			CleanupInterval: v.GetDuration("rate_limit.cleanup_interval"),
			Whitelist:       parseList(v.GetString("rate_limit.whitelist")),
			Blacklist:       parseList(v.GetString("rate_limit.blacklist")),
		},
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required for the mongo store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q (want postgres, mongo or memory)", c.StoreDriver))
	}

	if c.MonthlyHoursPerDay <= 0 {
		errs = append(errs, errors.New("MONTHLY_HOURS_PER_DAY must be positive"))
	}
	if c.TotalHoursPerDay <= 0 {
		errs = append(errs, errors.New("TOTAL_HOURS_PER_DAY must be positive"))
	}
	if c.FanoutLimit <= 0 {
		errs = append(errs, errors.New("FANOUT_LIMIT must be positive"))
	}
	if c.MLTimeout <= 0 || c.MLUploadTimeout <= 0 {
		errs = append(errs, errors.New("ML timeouts must be positive"))
	}
	if c.BcryptCost < MinBcryptCost || c.BcryptCost > MaxBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST out of range: %d (must be %d-%d)", c.BcryptCost, MinBcryptCost, MaxBcryptCost))
	}

	return errors.Join(errs...)
}

// parseList splits a comma-separated list, dropping blanks.
func parseList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
