package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string        `env:"DATABASE_URL"`
	HTTPPort    string        `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string        `env:"LOG_FILE"`
	LogMaxAge   time.Duration `env:"LOG_MAX_AGE" envDefault:"168h"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// API Keys for responder authentication
	APIKeys []string `env:"API_KEYS"`

	// Device session tokens
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	// MQTT Config; пустой адрес брокера отключает публикации
	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	MQTTClientID  string `env:"MQTT_CLIENT_ID" envDefault:"eldi-server"`
	MQTTUsername  string `env:"MQTT_USERNAME"`
	MQTTPassword  string `env:"MQTT_PASSWORD"`

	// Hold gesture
	HoldDuration     time.Duration `env:"HOLD_DURATION" envDefault:"3s"`
	HoldTickInterval time.Duration `env:"HOLD_TICK_INTERVAL" envDefault:"50ms"`
	HoldDebounce     time.Duration `env:"HOLD_DEBOUNCE" envDefault:"500ms"`

	LocationMaxAge  time.Duration `env:"LOCATION_MAX_AGE" envDefault:"30s"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	// Device rate limiting
	DeviceRateLimitRPS   float64 `env:"DEVICE_RATE_LIMIT_RPS" envDefault:"10"`
	DeviceRateLimitBurst int     `env:"DEVICE_RATE_LIMIT_BURST" envDefault:"20"`

	SnowflakeNode int64 `env:"SNOWFLAKE_NODE" envDefault:"1"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              os.Getenv("LOG_FILE"),
		LogMaxAge:            getEnvAsDuration("LOG_MAX_AGE", 168*time.Hour),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		WebhookURL:           os.Getenv("WEBHOOK_URL"),
		WebhookSecret:        os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:       getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:    getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:     getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTIssuer:            os.Getenv("JWT_ISSUER"),
		MQTTBrokerURL:        os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:         getEnv("MQTT_CLIENT_ID", "eldi-server"),
		MQTTUsername:         os.Getenv("MQTT_USERNAME"),
		MQTTPassword:         os.Getenv("MQTT_PASSWORD"),
		HoldDuration:         getEnvAsDuration("HOLD_DURATION", 3*time.Second),
		HoldTickInterval:     getEnvAsDuration("HOLD_TICK_INTERVAL", 50*time.Millisecond),
		HoldDebounce:         getEnvAsDuration("HOLD_DEBOUNCE", 500*time.Millisecond),
		LocationMaxAge:       getEnvAsDuration("LOCATION_MAX_AGE", 30*time.Second),
		ProfileCacheTTL:      getEnvAsDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		DeviceRateLimitRPS:   getEnvAsFloat("DEVICE_RATE_LIMIT_RPS", 10),
		DeviceRateLimitBurst: getEnvAsInt("DEVICE_RATE_LIMIT_BURST", 20),
		SnowflakeNode:        int64(getEnvAsInt("SNOWFLAKE_NODE", 1)),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.HoldDuration <= 0 || c.HoldTickInterval <= 0 {
		return fmt.Errorf("HOLD_DURATION and HOLD_TICK_INTERVAL must be positive")
	}
	if c.HoldTickInterval > c.HoldDuration {
		return fmt.Errorf("HOLD_TICK_INTERVAL must not exceed HOLD_DURATION")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
