package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the statistics service.
type Config struct {
	// Server configuration
	Port         int    `mapstructure:"PORT"`
	Host         string `mapstructure:"HOST"`
	Environment  string `mapstructure:"NODE_ENV"`
	ServiceName  string `mapstructure:"SERVICE_NAME"`
	ReadTimeout  int    `mapstructure:"READ_TIMEOUT"`
	WriteTimeout int    `mapstructure:"WRITE_TIMEOUT"`
	IdleTimeout  int    `mapstructure:"IDLE_TIMEOUT"`

	// CORS configuration
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Persistence / broker / cache configuration
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RedisURL      string `mapstructure:"REDIS_URL"`
	EventExchange string `mapstructure:"EVENT_EXCHANGE"`

	// JWT configuration (internal/staff-only endpoints)
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Logging configuration
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// OpenTelemetry configuration
	JaegerEndpoint string `mapstructure:"JAEGER_ENDPOINT"`

	// Platform and peer configuration
	YouTubeAPIKey      string `mapstructure:"YOUTUBE_API_KEY"`
	ClipServiceURL     string `mapstructure:"CLIP_SERVICE_URL"`
	CampaignServiceURL string `mapstructure:"CAMPAIGN_SERVICE_URL"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/statistics-service")

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; ignore error if desired
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate required configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("NODE_ENV", "development")
	viper.SetDefault("SERVICE_NAME", "statistics-service")
	viper.SetDefault("READ_TIMEOUT", 30)
	viper.SetDefault("WRITE_TIMEOUT", 30)
	viper.SetDefault("IDLE_TIMEOUT", 120)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	viper.SetDefault("EVENT_EXCHANGE", "clipdeck.events")
}

// validate checks that required configuration values are present
func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"RABBITMQ_URL": cfg.RabbitMQURL,
		"JWT_SECRET":   cfg.JWTSecret,
	}

	var missing []string
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if len(cfg.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	if !contains(validEnvs, cfg.Environment) {
		return fmt.Errorf("invalid environment: %s (must be one of: %s)",
			cfg.Environment, strings.Join(validEnvs, ", "))
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLogLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			cfg.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
