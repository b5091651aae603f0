package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Jobs    JobsConfig    `yaml:"jobs"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	LogLevel       string        `yaml:"log_level"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	CORSOrigins    string        `yaml:"cors_origins"`
}

// MongoConfig carries either a full URI or the username/password pair that
// is combined with Host and Options into an SRV connection string.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Options  string `yaml:"options"`
	Database string `yaml:"database"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Region  string `yaml:"s3_region"`
	Endpoint  string `yaml:"s3_endpoint"`
	AccessKey string `yaml:"s3_access_key"`
	SecretKey string `yaml:"s3_secret_key"`
}

type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	FeedCacheTTL time.Duration `yaml:"feed_cache_ttl"`
}

type JobsConfig struct {
	OrphanSweepSchedule string `yaml:"orphan_sweep_schedule"`
	OrphanSweepPurge    bool   `yaml:"orphan_sweep_purge"`
}

// S3Enabled reports whether images go to object storage instead of UploadDir.
func (s StorageConfig) S3Enabled() bool {
	return s.S3Bucket != ""
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Env:            "dev",
			LogLevel:       "info",
			RequestTimeout: 5 * time.Second,
			CORSOrigins:    "*",
		},
		Mongo: MongoConfig{
			Options:  "tls=true&authMechanism=SCRAM-SHA-256&retrywrites=false&maxIdleTimeMS=120000",
			Database: "linkedin",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			UploadDir: "./uploads",
			S3Region:  "us-east-1",
		},
		Redis: RedisConfig{
			FeedCacheTTL: 30 * time.Second,
		},
		Jobs: JobsConfig{
			OrphanSweepSchedule: "@every 1h",
		},
	}
}

// Load reads .env (if any), then the yaml file at path (if any), then
// applies environment overrides on top.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Env = getEnv("APP_ENV", cfg.Server.Env)
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Server.RequestTimeout = getDuration("REQUEST_TIMEOUT", cfg.Server.RequestTimeout)
	cfg.Server.CORSOrigins = getEnv("CORS_ORIGINS", cfg.Server.CORSOrigins)

	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Username = getEnv("MONGO_DB_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = getEnv("MONGO_DB_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.Host = getEnv("MONGO_HOST", cfg.Mongo.Host)
	cfg.Mongo.Options = getEnv("MONGO_OPTIONS", cfg.Mongo.Options)
	cfg.Mongo.Database = getEnv("MONGO_DB", cfg.Mongo.Database)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = getDuration("JWT_TTL", cfg.Auth.TokenTTL)

	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)
	cfg.Storage.S3Bucket = getEnv("S3_BUCKET", cfg.Storage.S3Bucket)
	cfg.Storage.S3Region = getEnv("S3_REGION", cfg.Storage.S3Region)
	cfg.Storage.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.SecretKey)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.FeedCacheTTL = getDuration("FEED_CACHE_TTL", cfg.Redis.FeedCacheTTL)

	cfg.Jobs.OrphanSweepSchedule = getEnv("ORPHAN_SWEEP_SCHEDULE", cfg.Jobs.OrphanSweepSchedule)
	cfg.Jobs.OrphanSweepPurge = getBool("ORPHAN_SWEEP_PURGE", cfg.Jobs.OrphanSweepPurge)
}
