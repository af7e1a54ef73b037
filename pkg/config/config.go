package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Assist    AssistConfig    `mapstructure:"assist"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	Environment     string `mapstructure:"environment"`
	HealthCheckPath string `mapstructure:"health_check_path"`
}

// AssistConfig holds reminder and guidance engine configuration
type AssistConfig struct {
	// ReminderTickInterval is the reminder clock poll period
	ReminderTickInterval time.Duration `mapstructure:"reminder_tick_interval"`
	// PositionMinInterval throttles live position intake per session
	PositionMinInterval time.Duration `mapstructure:"position_min_interval"`
	// SpeechRate/Pitch/Volume are passed through to the TTS collaborator
	SpeechRate   float64 `mapstructure:"speech_rate"`
	SpeechPitch  float64 `mapstructure:"speech_pitch"`
	SpeechVolume float64 `mapstructure:"speech_volume"`
}

// ProvidersConfig holds external collaborator endpoints
type ProvidersConfig struct {
	Mapbox MapboxConfig `mapstructure:"mapbox"`
	Vision VisionConfig `mapstructure:"vision"`
}

// MapboxConfig holds directions and geocoding provider configuration
type MapboxConfig struct {
	AccessToken   string        `mapstructure:"access_token"`
	DirectionsURL string        `mapstructure:"directions_url"`
	GeocodingURL  string        `mapstructure:"geocoding_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// VisionConfig holds the image classification provider configuration
type VisionConfig struct {
	URL          string        `mapstructure:"url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinScore     float64       `mapstructure:"min_score"`
	MaxLabels    int           `mapstructure:"max_labels"`
	AnnounceTopN int           `mapstructure:"announce_top_n"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	Issuer        string        `mapstructure:"issuer"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
	Encoding    string `mapstructure:"encoding"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/seeing-helper")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file is optional; env vars and defaults are enough to run
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.health_check_path", "/health")

	// Assist defaults: 30s reminder poll, ~1 Hz position intake
	viper.SetDefault("assist.reminder_tick_interval", "30s")
	viper.SetDefault("assist.position_min_interval", "1s")
	viper.SetDefault("assist.speech_rate", 0.9)
	viper.SetDefault("assist.speech_pitch", 1.0)
	viper.SetDefault("assist.speech_volume", 1.0)

	// Provider defaults
	viper.SetDefault("providers.mapbox.access_token", "")
	viper.SetDefault("providers.mapbox.directions_url", "https://api.mapbox.com/directions/v5/mapbox/walking")
	viper.SetDefault("providers.mapbox.geocoding_url", "https://api.mapbox.com/geocoding/v5/mapbox.places")
	viper.SetDefault("providers.mapbox.timeout", "10s")
	viper.SetDefault("providers.vision.url", "http://localhost:9000/v1/classify")
	viper.SetDefault("providers.vision.api_key", "")
	viper.SetDefault("providers.vision.timeout", "15s")
	viper.SetDefault("providers.vision.min_score", 0.5)
	viper.SetDefault("providers.vision.max_labels", 5)
	viper.SetDefault("providers.vision.announce_top_n", 3)

	// Auth defaults
	viper.SetDefault("auth.jwt_secret", "dev-jwt-secret-change-in-production")
	viper.SetDefault("auth.jwt_expiration", "24h")
	viper.SetDefault("auth.issuer", "seeing-helper")

	// CORS defaults
	viper.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.environment", "development")
	viper.SetDefault("log.encoding", "console")
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if cfg.Assist.ReminderTickInterval < time.Second {
		return fmt.Errorf("reminder tick interval must be at least 1 second")
	}

	if cfg.Assist.PositionMinInterval <= 0 {
		return fmt.Errorf("position min interval must be positive")
	}

	if cfg.Providers.Vision.MinScore < 0 || cfg.Providers.Vision.MinScore > 1 {
		return fmt.Errorf("vision min score must be between 0 and 1")
	}

	if len(cfg.Auth.JWTSecret) < 8 {
		return fmt.Errorf("JWT secret must be at least 8 characters long")
	}

	if cfg.Auth.JWTExpiration < time.Minute {
		return fmt.Errorf("JWT expiration must be at least 1 minute")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	validEncodings := []string{"json", "console"}
	if !contains(validEncodings, cfg.Log.Encoding) {
		return fmt.Errorf("invalid log encoding: %s", cfg.Log.Encoding)
	}

	return nil
}

// GetServerAddr returns the server address in host:port format
func (s *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction returns true if the environment is production
func (s *ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// IsDevelopment returns true if the environment is development
func (s *ServerConfig) IsDevelopment() bool {
	return strings.EqualFold(s.Environment, "development")
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
