package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDSN        = "root:password@tcp(127.0.0.1:3306)/quillspace?charset=utf8mb4&parseTime=True&loc=Local"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultClientURL  = "http://localhost:3000"
	defaultBannerURL  = "https://placehold.co/1200x630?text=QuillSpace"
)

// Load reads a YAML config file and applies environment overrides. A missing
// file is not an error; defaults plus environment are enough to boot in dev.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		DSN:      defaultDSN,
		RedisURL: defaultRedisURL,
		Storage: StorageConfig{
			Driver:           "local",
			StaticDir:        "uploads",
			DefaultBannerURL: defaultBannerURL,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env overrides
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.ClientURL == "" {
		cfg.ClientURL = defaultClientURL
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.Storage.DefaultBannerURL == "" {
		cfg.Storage.DefaultBannerURL = defaultBannerURL
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("QS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("QS_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("QS_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("QS_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("QS_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("QS_CLIENT_URL"); v != "" {
		cfg.ClientURL = v
	}
	if v := os.Getenv("QS_ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		cfg.AllowedOrigins = origins
	}
}
