package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Registry  RegistryConfig
	Proxy     ProxyConfig
	Notifier  NotifierConfig
	NATS      NATSConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	Ingest    IngestConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	Timezone    string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type RegistryConfig struct {
	IDPrefix    string
	RecentLimit int
}

type ProxyConfig struct {
	ImageTimeout  time.Duration
	TunnelMarkers []string
}

type NotifierConfig struct {
	Enabled       bool
	Interval      time.Duration
	Settle        time.Duration
	MinConfidence float64
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MQTTConfig struct {
	Broker     string
	ClientID   string
	Username   string
	Password   string
	Topic      string
	QoS        int
	Workers    int
	BufferSize int
}

type IngestConfig struct {
	TokenSecret   string
	TokenTTLHours int
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DRONE_ID_PREFIX", "GK")
	v.SetDefault("RECENT_LIMIT", 10)
	v.SetDefault("PROXY_IMAGE_TIMEOUT", "5s")
	v.SetDefault("PROXY_TUNNEL_MARKERS", "ngrok")
	v.SetDefault("NOTIFIER_ENABLED", true)
	v.SetDefault("NOTIFIER_INTERVAL", "3s")
	v.SetDefault("NOTIFIER_SETTLE", "2s")
	v.SetDefault("NOTIFIER_MIN_CONFIDENCE", 0.75)
	v.SetDefault("NATS_SUBJECT_PREFIX", "fire.detection")
	v.SetDefault("MQTT_CLIENT_ID", "drone-fire-monitor")
	v.SetDefault("MQTT_TOPIC", "drones/+/events")
	v.SetDefault("MQTT_QOS", 1)
	v.SetDefault("MQTT_WORKERS", 4)
	v.SetDefault("MQTT_BUFFER_SIZE", 1000)
	v.SetDefault("INGEST_TOKEN_TTL_HOURS", 24*365)
	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 50)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 100)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Authorization,X-Request-ID")
	v.SetDefault("CORS_MAX_AGE", 43200)
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(homeDir)
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Host:        v.GetString("SERVER_HOST"),
			Environment: v.GetString("ENVIRONMENT"),
			Timezone:    v.GetString("TIMEZONE"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			SQLitePath: v.GetString("DB_SQLITE_PATH"),
		},
		Registry: RegistryConfig{
			IDPrefix:    v.GetString("DRONE_ID_PREFIX"),
			RecentLimit: v.GetInt("RECENT_LIMIT"),
		},
		Proxy: ProxyConfig{
			ImageTimeout:  v.GetDuration("PROXY_IMAGE_TIMEOUT"),
			TunnelMarkers: splitList(v.GetString("PROXY_TUNNEL_MARKERS")),
		},
		Notifier: NotifierConfig{
			Enabled:       v.GetBool("NOTIFIER_ENABLED"),
			Interval:      v.GetDuration("NOTIFIER_INTERVAL"),
			Settle:        v.GetDuration("NOTIFIER_SETTLE"),
			MinConfidence: v.GetFloat64("NOTIFIER_MIN_CONFIDENCE"),
		},
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MQTT: MQTTConfig{
			Broker:     v.GetString("MQTT_BROKER"),
			ClientID:   v.GetString("MQTT_CLIENT_ID"),
			Username:   v.GetString("MQTT_USERNAME"),
			Password:   v.GetString("MQTT_PASSWORD"),
			Topic:      v.GetString("MQTT_TOPIC"),
			QoS:        v.GetInt("MQTT_QOS"),
			Workers:    v.GetInt("MQTT_WORKERS"),
			BufferSize: v.GetInt("MQTT_BUFFER_SIZE"),
		},
		Ingest: IngestConfig{
			TokenSecret:   v.GetString("INGEST_TOKEN_SECRET"),
			TokenTTLHours: v.GetInt("INGEST_TOKEN_TTL_HOURS"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
			problems = append(problems, "DB_HOST, DB_NAME and DB_USER are required for the postgres driver")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			problems = append(problems, "DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if strings.TrimSpace(c.Registry.IDPrefix) == "" {
		problems = append(problems, "DRONE_ID_PREFIX must not be empty")
	}
	if c.Registry.RecentLimit <= 0 {
		problems = append(problems, "RECENT_LIMIT must be positive")
	}
	if c.Proxy.ImageTimeout <= 0 {
		problems = append(problems, "PROXY_IMAGE_TIMEOUT must be positive")
	}
	if c.Notifier.Enabled && c.Notifier.Interval <= 0 {
		problems = append(problems, "NOTIFIER_INTERVAL must be positive")
	}
	if c.Notifier.Settle < 0 {
		problems = append(problems, "NOTIFIER_SETTLE must not be negative")
	}
	if c.Notifier.MinConfidence < 0 || c.Notifier.MinConfidence > 1 {
		problems = append(problems, "NOTIFIER_MIN_CONFIDENCE must be within [0,1]")
	}
	if c.MQTT.Broker != "" {
		if c.MQTT.Topic == "" {
			problems = append(problems, "MQTT_TOPIC is required when MQTT_BROKER is set")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			problems = append(problems, "MQTT_QOS must be 0, 1 or 2")
		}
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves the time zone used for calendar-day history queries.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" || c.Server.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown TIMEZONE %q: %w", c.Server.Timezone, err)
	}
	return loc, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
