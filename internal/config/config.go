package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatasetPath string
	ModelPath   string
	ModelSeed   int64

	// OpenWeatherMap configuration. The API key may come from the
	// OPENWEATHERMAP_API_KEY secret; live mode can also be toggled explicitly.
	WeatherAPIKey   string
	WeatherEnabled  bool
	WeatherBaseURL  string
	WeatherTimeout  time.Duration
	WeatherCacheTTL time.Duration

	HistoryDBPath string

	// Kafka recommendation-event publishing (optional).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeoutStr := sharedcfg.EnvOrDefault("WEATHER_TIMEOUT", "10s")
	weatherTimeout, err := time.ParseDuration(weatherTimeoutStr)
	if err != nil || weatherTimeout <= 0 {
		return nil, errors.New("invalid WEATHER_TIMEOUT")
	}

	cacheTTLStr := sharedcfg.EnvOrDefault("WEATHER_CACHE_TTL", "10m")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid WEATHER_CACHE_TTL")
	}

	seed, err := parseModelSeed()
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("OPENWEATHERMAP_API_KEY")
	weatherEnabled := apiKey != ""
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetPath: sharedcfg.EnvOrDefault("DATASET_PATH", "data/crop_data.csv"),
		ModelPath:   sharedcfg.EnvOrDefault("MODEL_PATH", "data/model.json"),
		ModelSeed:   seed,

		WeatherAPIKey:   apiKey,
		WeatherEnabled:  weatherEnabled,
		WeatherBaseURL:  sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		WeatherTimeout:  weatherTimeout,
		WeatherCacheTTL: cacheTTL,

		HistoryDBPath: sharedcfg.EnvOrDefault("HISTORY_DB_PATH", "data/advisor.db"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "crop-recommendations"),
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.WeatherEnabled && cfg.WeatherAPIKey == "" {
		return nil, errors.New("WEATHER_ENABLED is true but OPENWEATHERMAP_API_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parseModelSeed() (int64, error) {
	s := os.Getenv("MODEL_SEED")
	if s == "" {
		return 42, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid MODEL_SEED")
	}
	return n, nil
}
