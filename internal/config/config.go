package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logger    LoggerConfig    `yaml:"logger"`
	JWT       JWTConfig       `yaml:"jwt"`
	Redis     RedisConfig     `yaml:"redis"`
	S3        S3Config        `yaml:"s3"`
	NotifyAPI NotifyAPIConfig `yaml:"notify_api"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"` // debug | release
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN builds the PostgreSQL connection string
func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// JWTConfig holds JWT validation configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// S3Config holds S3 (or MinIO) configuration for attachment storage
type S3Config struct {
	Bucket            string        `yaml:"bucket"`
	Region            string        `yaml:"region"`
	Endpoint          string        `yaml:"endpoint"` // set for local MinIO
	AccessKey         string        `yaml:"access_key"`
	SecretKey         string        `yaml:"secret_key"`
	PresignExpiry     time.Duration `yaml:"presign_expiry"`
	MaxFileSize       int64         `yaml:"max_file_size"`
	AllowedTypes      []string      `yaml:"allowed_types"`
	TempAttachmentTTL time.Duration `yaml:"temp_attachment_ttl"`
}

// NotifyAPIConfig holds the notification service client configuration
type NotifyAPIConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads configuration from the YAML file at path, then applies
// environment variable overrides. Missing file is not fatal when the
// environment provides everything.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Mode:            "debug",
			BasePath:        "/api/delivery",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "delivery",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Logger: LoggerConfig{Level: "info"},
		Redis:  RedisConfig{Addr: "localhost:6379", DB: 1},
		S3: S3Config{
			PresignExpiry:     15 * time.Minute,
			MaxFileSize:       25 << 20, // 25 MiB
			AllowedTypes:      []string{"image/jpeg", "image/png", "application/pdf"},
			TempAttachmentTTL: 24 * time.Hour,
		},
		NotifyAPI: NotifyAPIConfig{Timeout: 5 * time.Second},
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Server.BasePath, "SERVER_BASE_PATH")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSL_MODE")
	setString(&cfg.Logger.Level, "LOG_LEVEL")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.S3.Bucket, "S3_BUCKET")
	setString(&cfg.S3.Region, "S3_REGION")
	setString(&cfg.S3.Endpoint, "S3_ENDPOINT")
	setString(&cfg.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.S3.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.NotifyAPI.BaseURL, "NOTIFY_API_URL")
	setString(&cfg.NotifyAPI.APIKey, "NOTIFY_API_KEY")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
