package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	StoreDriverDuckDB   = "duckdb"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Store         StoreConfig
	AI            AIConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StoreConfig struct {
	Driver          string
	Path            string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("RETAILSIGHT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid RETAILSIGHT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "RETAILSIGHT_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "RETAILSIGHT_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "RETAILSIGHT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "RETAILSIGHT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "RETAILSIGHT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "RETAILSIGHT_STORE_DRIVER", &cfg.Store.Driver); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "RETAILSIGHT_STORE_PATH", &cfg.Store.Path); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "RETAILSIGHT_STORE_DSN", &cfg.Store.DSN); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "RETAILSIGHT_STORE_MAX_OPEN_CONNS", &cfg.Store.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "RETAILSIGHT_STORE_MAX_IDLE_CONNS", &cfg.Store.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "RETAILSIGHT_STORE_CONN_MAX_IDLE_TIME", &cfg.Store.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "RETAILSIGHT_STORE_CONN_MAX_LIFETIME", &cfg.Store.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "RETAILSIGHT_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "RETAILSIGHT_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "RETAILSIGHT_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "RETAILSIGHT_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "RETAILSIGHT_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "RETAILSIGHT_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "RETAILSIGHT_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	switch cfg.Store.Driver {
	case StoreDriverDuckDB:
		if cfg.Store.Path == "" {
			return Config{}, fmt.Errorf("store path is required for the duckdb driver")
		}
	case StoreDriverPostgres:
		if cfg.Store.DSN == "" {
			return Config{}, fmt.Errorf("store dsn is required for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("invalid RETAILSIGHT_STORE_DRIVER: %q", cfg.Store.Driver)
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "retailsight-api"},
		HTTP: HTTPConfig{
			Address:      ":5000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Store: StoreConfig{
			Driver:          StoreDriverDuckDB,
			Path:            "retailsight.db",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		AI: AIConfig{
			BaseURL:     "https://api.openai.com",
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			Timeout:     30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":15000"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
