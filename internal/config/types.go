package config

import (
	"github.com/quillspace/core/internal/pkg/mail"
	"github.com/quillspace/core/internal/pkg/storage"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int           `yaml:"port"`
	DSN            string        `yaml:"dsn"` // MySQL DSN
	RedisURL       string        `yaml:"redis_url"`
	Env            string        `yaml:"env"` // "development" | "production"
	JWTSecret      string        `yaml:"jwt_secret"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ClientURL      string        `yaml:"client_url"` // frontend base, used in reset links
	Storage        StorageConfig `yaml:"storage"`
	Mail           mail.Config   `yaml:"mail"`
}

// StorageConfig selects and configures the upload backend.
type StorageConfig struct {
	Driver           string            `yaml:"driver"` // "s3" | "local"
	S3               storage.S3Options `yaml:"s3"`
	StaticDir        string            `yaml:"static_dir"`
	BaseURL          string            `yaml:"base_url"`
	DefaultBannerURL string            `yaml:"default_banner_url"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env != "production"
}
