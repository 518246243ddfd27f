package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from .env files or environment variables.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Media    MediaConfig    `mapstructure:"media"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// AppConfig 描述运行环境。
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsDevelopment 为 true 时错误详情会返回给客户端。
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), "development")
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns DATABASE_URL when set, otherwise a key/value connection string.
func (d DatabaseConfig) DSN() string {
	if url := strings.TrimSpace(d.URL); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// RedisConfig 包含 Redis 连接配置，Host 为空表示不启用。
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig 管理员凭据与令牌签名设置。
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
	AutoProvision bool          `mapstructure:"auto_provision"`
}

// MediaConfig selects and configures the upload relay.
type MediaConfig struct {
	Provider   string           `mapstructure:"provider"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
}

// CloudinaryConfig contains Cloudinary API credentials.
type CloudinaryConfig struct {
	CloudName  string `mapstructure:"cloud_name"`
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	APIBaseURL string `mapstructure:"api_base_url"`
}

// Configured reports whether all credentials are present.
func (c CloudinaryConfig) Configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	PublicBaseURL    string `mapstructure:"public_base_url"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// ClamdConfig 病毒扫描服务地址，为空时跳过扫描。
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// WorkerConfig 后台任务进程设置。
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MetricsPort int `mapstructure:"metrics_port"`
}

const (
	ProviderCloudinary = "cloudinary"
	ProviderMinIO      = "minio"
)

// Load reads configuration from the environment, loading .env first when present.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Media.Provider = strings.ToLower(strings.TrimSpace(cfg.Media.Provider))
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// ValidateAPI checks the settings only the HTTP server needs.
func (c *Config) ValidateAPI() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("jwt secret is required (JWT_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("api.port", 5000)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "vault_envelopes")
	v.SetDefault("database.user", "vault")
	v.SetDefault("database.password", "vault")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.auto_provision", true)
	v.SetDefault("media.provider", ProviderCloudinary)
	v.SetDefault("media.cloudinary.api_base_url", "https://api.cloudinary.com")
	v.SetDefault("media.minio.use_ssl", false)
	v.SetDefault("media.minio.bucket", "vault-envelopes")
	v.SetDefault("media.minio.auto_create_bucket", true)
	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.metrics_port", 9091)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string][]string{
		"app.env":                        {"APP_ENV", "NODE_ENV"},
		"api.port":                       {"PORT", "API_PORT"},
		"database.url":                   {"DATABASE_URL"},
		"database.host":                  {"DATABASE_HOST"},
		"database.port":                  {"DATABASE_PORT"},
		"database.name":                  {"POSTGRES_DB"},
		"database.user":                  {"POSTGRES_USER"},
		"database.password":              {"POSTGRES_PASSWORD"},
		"database.sslmode":               {"DATABASE_SSLMODE"},
		"redis.host":                     {"REDIS_HOST"},
		"redis.port":                     {"REDIS_PORT"},
		"redis.password":                 {"REDIS_PASSWORD"},
		"redis.db":                       {"REDIS_DB"},
		"auth.jwt_secret":                {"JWT_SECRET"},
		"auth.token_ttl":                 {"JWT_TTL"},
		"auth.admin_username":            {"ADMIN_USERNAME"},
		"auth.admin_password":            {"ADMIN_PASSWORD"},
		"auth.auto_provision":            {"ADMIN_AUTO_PROVISION"},
		"media.provider":                 {"MEDIA_PROVIDER"},
		"media.cloudinary.cloud_name":    {"CLOUDINARY_CLOUD_NAME"},
		"media.cloudinary.api_key":       {"CLOUDINARY_API_KEY"},
		"media.cloudinary.api_secret":    {"CLOUDINARY_API_SECRET"},
		"media.cloudinary.api_base_url":  {"CLOUDINARY_API_BASE_URL"},
		"media.minio.endpoint":           {"MINIO_ENDPOINT"},
		"media.minio.access_key_id":      {"MINIO_ACCESS_KEY_ID"},
		"media.minio.secret_access_key":  {"MINIO_SECRET_ACCESS_KEY"},
		"media.minio.use_ssl":            {"MINIO_USE_SSL"},
		"media.minio.bucket":             {"MINIO_BUCKET"},
		"media.minio.region":             {"MINIO_REGION"},
		"media.minio.public_base_url":    {"MINIO_PUBLIC_BASE_URL"},
		"media.minio.auto_create_bucket": {"MINIO_AUTO_CREATE_BUCKET"},
		"clamd.addr":                     {"CLAMD_ADDR"},
		"worker.concurrency":             {"WORKER_CONCURRENCY"},
		"worker.metrics_port":            {"WORKER_METRICS_PORT"},
	}

	for key, envs := range mappings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s to %v: %w", key, envs, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		if cfg.Database.Host == "" {
			return errors.New("database host is required")
		}
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
		if cfg.Database.SSLMode == "" {
			return errors.New("database sslmode is required")
		}
	}
	if cfg.Redis.Enabled() && cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}

	switch cfg.Media.Provider {
	case ProviderCloudinary:
	case ProviderMinIO:
		if cfg.Media.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.Media.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.Media.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.Media.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unknown media provider %q", cfg.Media.Provider)
	}
	return nil
}
