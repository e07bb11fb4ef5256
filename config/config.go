package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSAllowedOrigin string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`

	// Scheduling policy.
	ClinicTimezone          string `mapstructure:"CLINIC_TIMEZONE"`
	CancellationNoticeHours int    `mapstructure:"CANCELLATION_NOTICE_HOURS"`
	MaxReschedules          int    `mapstructure:"MAX_RESCHEDULES"`
	DefaultSlotMinutes      int    `mapstructure:"DEFAULT_SLOT_MINUTES"`
	SlotCacheTTLSeconds     int    `mapstructure:"SLOT_CACHE_TTL_SECONDS"`
	BookingLockTTLSeconds   int    `mapstructure:"BOOKING_LOCK_TTL_SECONDS"`
	LockBackend             string `mapstructure:"LOCK_BACKEND"`

	// Appointment event delivery.
	Notifier                string `mapstructure:"NOTIFIER"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	KafkaBrokers            string `mapstructure:"KAFKA_BROKERS"`
	KafkaAppointmentTopic   string `mapstructure:"KAFKA_APPOINTMENT_TOPIC"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "hms")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_LOCK_DB", 1)
	v.SetDefault("CLINIC_TIMEZONE", "UTC")
	v.SetDefault("CANCELLATION_NOTICE_HOURS", 24)
	v.SetDefault("MAX_RESCHEDULES", 3)
	v.SetDefault("DEFAULT_SLOT_MINUTES", 30)
	v.SetDefault("SLOT_CACHE_TTL_SECONDS", 60)
	v.SetDefault("BOOKING_LOCK_TTL_SECONDS", 30)
	v.SetDefault("LOCK_BACKEND", "redis")
	v.SetDefault("NOTIFIER", "log")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_APPOINTMENT_TOPIC", "appointment-events")
}

// Load reads configuration from config.yaml (if present) and the environment.
func Load(v *viper.Viper) (Config, error) {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	AppConfig = cfg
}

// Validate rejects settings the scheduling core cannot run with.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.CancellationNoticeHours < 0 {
		return errors.New("CANCELLATION_NOTICE_HOURS must not be negative")
	}
	if c.MaxReschedules <= 0 {
		return errors.New("MAX_RESCHEDULES must be positive")
	}
	if c.DefaultSlotMinutes <= 0 {
		return errors.New("DEFAULT_SLOT_MINUTES must be positive")
	}
	if _, err := time.LoadLocation(c.ClinicTimezone); err != nil {
		return fmt.Errorf("CLINIC_TIMEZONE: %w", err)
	}
	if c.LockBackend == "redis" && c.BookingLockTTLSeconds < 3 {
		return errors.New("BOOKING_LOCK_TTL_SECONDS must be at least 3")
	}
	switch c.LockBackend {
	case "redis", "local":
	default:
		return fmt.Errorf("LOCK_BACKEND must be redis or local, got %q", c.LockBackend)
	}
	return nil
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) CancellationNotice() time.Duration {
	return time.Duration(c.CancellationNoticeHours) * time.Hour
}

func (c Config) SlotCacheTTL() time.Duration {
	return time.Duration(c.SlotCacheTTLSeconds) * time.Second
}

func (c Config) BookingLockTTL() time.Duration {
	return time.Duration(c.BookingLockTTLSeconds) * time.Second
}

// Notifiers returns the configured notifier backends, e.g. "log,kafka".
func (c Config) Notifiers() []string {
	var out []string
	for _, n := range strings.Split(c.Notifier, ",") {
		if n = strings.TrimSpace(strings.ToLower(n)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (c Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
