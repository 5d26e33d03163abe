package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Geocoder GeocoderConfig
	Booking  BookingConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"SERVER_PORT"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" envconfig:"SERVER_TIMEOUT_SECONDS"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url" envconfig:"REDIS_URL"`
	MaxRetries   int    `mapstructure:"max_retries" envconfig:"REDIS_MAX_RETRIES"`
	PoolSize     int    `mapstructure:"pool_size" envconfig:"REDIS_POOL_SIZE"`
	MinIdleConns int    `mapstructure:"min_idle_conns" envconfig:"REDIS_MIN_IDLE_CONNS"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	RefreshSecret      string `mapstructure:"refresh_secret" envconfig:"JWT_REFRESH_SECRET"`
	ExpiryHours        int    `mapstructure:"expiry_hours" envconfig:"JWT_EXPIRY_HOURS"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours" envconfig:"JWT_REFRESH_EXPIRY_HOURS"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
	Enabled  bool   `mapstructure:"enabled" envconfig:"SMTP_ENABLED"`
}

type GeocoderConfig struct {
	BaseURL        string `mapstructure:"base_url" envconfig:"GEOCODER_BASE_URL"`
	UserAgent      string `mapstructure:"user_agent" envconfig:"GEOCODER_USER_AGENT"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" envconfig:"GEOCODER_TIMEOUT_SECONDS"`
	CacheTTLHours  int    `mapstructure:"cache_ttl_hours" envconfig:"GEOCODER_CACHE_TTL_HOURS"`
}

// BookingConfig tunes the slot generator and conflict checker.
type BookingConfig struct {
	BufferMinutes      int `mapstructure:"buffer_minutes" envconfig:"BOOKING_BUFFER_MINUTES"`
	WindowDays         int `mapstructure:"window_days" envconfig:"BOOKING_WINDOW_DAYS"`
	AdjacencyMinutes   int `mapstructure:"adjacency_minutes" envconfig:"BOOKING_ADJACENCY_MINUTES"`
	MinLeadTimeMinutes int `mapstructure:"min_lead_time_minutes" envconfig:"BOOKING_MIN_LEAD_TIME_MINUTES"`
}

type WorkerConfig struct {
	BatchSize       int `mapstructure:"batch_size" envconfig:"WORKER_BATCH_SIZE"`
	IntervalSeconds int `mapstructure:"interval_seconds" envconfig:"WORKER_INTERVAL_SECONDS"`
	MaxRetries      int `mapstructure:"max_retries" envconfig:"WORKER_MAX_RETRIES"`
}

func (b BookingConfig) Buffer() time.Duration {
	return time.Duration(b.BufferMinutes) * time.Minute
}

func (b BookingConfig) Adjacency() time.Duration {
	return time.Duration(b.AdjacencyMinutes) * time.Minute
}

func (b BookingConfig) MinLeadTime() time.Duration {
	return time.Duration(b.MinLeadTimeMinutes) * time.Minute
}

// LoadConfig reads config.yaml, then lets environment variables override any
// field. The file is optional so containerized deploys can run on env alone.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)

	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("jwt.refresh_expiry_hours", 168)

	viper.SetDefault("smtp.port", 587)

	viper.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	viper.SetDefault("geocoder.user_agent", "booking-api/1.0")
	viper.SetDefault("geocoder.timeout_seconds", 10)
	viper.SetDefault("geocoder.cache_ttl_hours", 24)

	viper.SetDefault("booking.buffer_minutes", 15)
	viper.SetDefault("booking.window_days", 14)
	viper.SetDefault("booking.adjacency_minutes", 60)
	viper.SetDefault("booking.min_lead_time_minutes", 60)

	viper.SetDefault("worker.batch_size", 50)
	viper.SetDefault("worker.interval_seconds", 5)
	viper.SetDefault("worker.max_retries", 3)
}
