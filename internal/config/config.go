package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"

	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string        `envconfig:"LISTEN_ADDR"`
	Port           string        `envconfig:"PORT" default:"8080"`
	GinMode        string        `envconfig:"GIN_MODE" default:"release"`
	DatabaseDriver string        `envconfig:"DATABASE_DRIVER" default:"sqlite"`
	DatabasePath   string        `envconfig:"DATABASE_PATH" default:"promodash.db"`
	DatabaseDSN    string        `envconfig:"DATABASE_DSN"`
	UploadBackend  string        `envconfig:"UPLOAD_BACKEND" default:"local"`
	UploadDir      string        `envconfig:"UPLOAD_DIR" default:"public/uploads"`
	UploadURLPath  string        `envconfig:"UPLOAD_URL_PATH" default:"/uploads"`
	S3Bucket       string        `envconfig:"S3_BUCKET"`
	S3Region       string        `envconfig:"S3_REGION" default:"us-east-1"`
	S3PublicURL    string        `envconfig:"S3_PUBLIC_BASE_URL"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	ListCacheTTL   time.Duration `envconfig:"LIST_CACHE_TTL" default:"30s"`
	SessionSecret  string        `envconfig:"SESSION_SECRET" default:"promodash-dev-secret"`
	PageSize       int           `envconfig:"PAGE_SIZE" default:"8"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string        `envconfig:"LOG_FORMAT" default:"json"`
}

// Load 从 .env 与环境变量读取应用配置，并为缺失项提供默认值。
func Load() (AppConfig, error) {
	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() error {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}

	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	switch c.DatabaseDriver {
	case "", DatabaseDriverSQLite:
		c.DatabaseDriver = DatabaseDriverSQLite
	case DatabaseDriverPostgres:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	c.UploadBackend = strings.ToLower(strings.TrimSpace(c.UploadBackend))
	switch c.UploadBackend {
	case "", UploadBackendLocal:
		c.UploadBackend = UploadBackendLocal
	case UploadBackendS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 upload backend")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_BACKEND %q", c.UploadBackend)
	}

	c.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(c.UploadURLPath), "/")
	if c.UploadURLPath == "/" {
		c.UploadURLPath = "/uploads"
	}

	if c.PageSize <= 0 {
		c.PageSize = 8
	}
	return nil
}
