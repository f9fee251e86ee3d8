// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	// Server configuration
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Model       string `mapstructure:"model"`
	Redis       string `mapstructure:"redis"`

	// Model input/output dimensions
	InputSize  int `mapstructure:"input_size"`
	NumClasses int `mapstructure:"num_classes"`

	// Smoothing parameters
	SampleSize int     `mapstructure:"sample_size"`
	Scale      float64 `mapstructure:"scale"`
	Alpha      float64 `mapstructure:"alpha"`

	// OpenTelemetry configuration
	OTELEnabled  bool   `mapstructure:"otel_enabled"`
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	// Feature flags
	UseMockClassifier bool `mapstructure:"use_mock_classifier"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("metrics_port", 9100)
	v.SetDefault("model", "classifier.onnx")
	v.SetDefault("redis", "localhost:6379")
	v.SetDefault("input_size", 784)
	v.SetDefault("num_classes", 10)
	v.SetDefault("sample_size", 100)
	v.SetDefault("scale", 0.25)
	v.SetDefault("alpha", 0.001)
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("use_mock_classifier", false)
}

// Load loads configuration from environment variables and an optional
// config file. Priority (highest to lowest): env vars > config file >
// defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix("SMOOTHING_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also read OTEL standard env vars
	if otelEndpoint := viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"); otelEndpoint != "" {
		v.Set("otel_endpoint", otelEndpoint)
		v.Set("otel_enabled", true)
	}

	// Bind specific environment variables
	v.BindEnv("port", "SMOOTHING_SERVICE_PORT")
	v.BindEnv("metrics_port", "SMOOTHING_SERVICE_METRICS_PORT")
	v.BindEnv("model", "SMOOTHING_SERVICE_MODEL")
	v.BindEnv("redis", "SMOOTHING_SERVICE_REDIS")
	v.BindEnv("input_size", "SMOOTHING_SERVICE_INPUT_SIZE")
	v.BindEnv("num_classes", "SMOOTHING_SERVICE_NUM_CLASSES")
	v.BindEnv("sample_size", "SMOOTHING_SERVICE_SAMPLE_SIZE")
	v.BindEnv("scale", "SMOOTHING_SERVICE_SCALE")
	v.BindEnv("alpha", "SMOOTHING_SERVICE_ALPHA")
	v.BindEnv("otel_enabled", "SMOOTHING_SERVICE_OTEL_ENABLED")
	v.BindEnv("otel_endpoint", "SMOOTHING_SERVICE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("use_mock_classifier", "SMOOTHING_SERVICE_USE_MOCK")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/smoothing-service/")
	v.AddConfigPath("$HOME/.smoothing-service")

	// Read config file if present (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; ignore
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithConfigFile loads configuration from a specific config file
func LoadWithConfigFile(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix("SMOOTHING_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read specific config file
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration. Smoothing parameter invariants are
// enforced again by smoothing.New; checking them here rejects a bad
// deployment before any model is loaded.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	if c.Port == c.MetricsPort {
		return fmt.Errorf("port and metrics_port must be different")
	}
	if c.Model == "" && !c.UseMockClassifier {
		return fmt.Errorf("model path is required when not using the mock classifier")
	}
	if c.InputSize <= 0 {
		return fmt.Errorf("input_size must be positive, got %d", c.InputSize)
	}
	if c.NumClasses <= 0 {
		return fmt.Errorf("num_classes must be positive, got %d", c.NumClasses)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive, got %d", c.SampleSize)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %v", c.Alpha)
	}
	return nil
}
