package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures service level configuration loaded from config.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	CORS       CORSConfig       `yaml:"cors"`
	Upload     UploadConfig     `yaml:"upload"`
	Storage    StorageConfig    `yaml:"storage"`
	CMS        CMSConfig        `yaml:"cms"`
	Site       SiteConfig       `yaml:"site"`
	Revalidate RevalidateConfig `yaml:"revalidate"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// RedisConfig defines the Redis connection backing the shared page cache.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CORSConfig defines CORS middleware settings.
type CORSConfig struct {
	AllowOrigin      string `yaml:"allow_origin"`
	AllowMethods     string `yaml:"allow_methods"`
	AllowHeaders     string `yaml:"allow_headers"`
	AllowCredentials bool   `yaml:"allow_credentials"`
}

// UploadConfig defines file upload constraints and the admin token guarding the upload API.
type UploadConfig struct {
	SizeLimit    int64          `yaml:"size_limit"`
	AllowedTypes []string       `yaml:"allowed_types"`
	Breakpoints  map[string]int `yaml:"breakpoints"`
	AdminToken   string         `yaml:"admin_token"`
}

// StorageConfig selects the object store used by the upload provider.
type StorageConfig struct {
	Type  string      `yaml:"type"`
	Local LocalConfig `yaml:"local"`
	OSS   OSSConfig   `yaml:"oss"`
}

// LocalConfig holds local storage configuration.
type LocalConfig struct {
	BasePath string `yaml:"base_path"`
	BaseURL  string `yaml:"base_url"`
}

// OSSConfig holds the Aliyun OSS (S3-compatible) provider options.
type OSSConfig struct {
	AccessKeyID     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	UploadPath      string `yaml:"upload_path"`
	BaseURL         string `yaml:"base_url"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	Secure          bool   `yaml:"secure"`
	Internal        bool   `yaml:"internal"`
	ACL             string `yaml:"acl"`
	SignedURLExpiry int    `yaml:"signed_url_expires"`
}

// CMSConfig points at the Strapi REST API.
type CMSConfig struct {
	URL       string `yaml:"url"`
	APIToken  string `yaml:"api_token"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// SiteConfig defines rendering options of the public site.
type SiteConfig struct {
	DefaultLocale   string `yaml:"default_locale"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	CacheSize       int    `yaml:"cache_size"`
}

// RevalidateConfig holds the shared secret of the revalidation webhook.
type RevalidateConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig defines the process logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MetricsConfig defines the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DatabaseConfig defines the database backend configuration.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig contains SQLite specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// MySQLConfig contains MySQL specific connection details.
type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// PostgresConfig contains PostgreSQL specific connection details.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

const (
	defaultSizeLimit       = 250 * 1024 * 1024
	defaultOSSTimeoutMs    = 60000
	defaultSignedURLExpiry = 1800
	defaultUploadPath      = "strapi"
	defaultLocale          = "zh-CN"
	defaultCacheTTLSeconds = 300
	defaultCacheSize       = 512
)

// Load reads a YAML configuration file from the provided path and overlays environment variables.
// It searches in the current working directory first, then next to the binary executable.
func Load(name string) (*Config, error) {
	cfg := defaultConfig()

	configPath := findConfigFile(name)
	if configPath == "" {
		log.Printf("Warning: config file %q not found, using defaults", name)
		if err := applyEnv(cfg, os.LookupEnv); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	log.Printf("Loading config from: %s", configPath)
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	parsed := defaultConfig()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(parsed); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := applyEnv(parsed, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(parsed)
	return parsed, nil
}

// DefaultBreakpoints mirrors the responsive image widths of the CMS upload plugin.
func DefaultBreakpoints() map[string]int {
	return map[string]int{
		"xlarge": 1920,
		"large":  1000,
		"medium": 750,
		"small":  500,
		"xsmall": 64,
	}
}

// DefaultCORS is the cross-origin policy of the JSON API.
func DefaultCORS() CORSConfig {
	return CORSConfig{
		AllowOrigin:  "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Authorization,Content-Type",
	}
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "data/lab_portal.db",
			},
		},
		CORS: DefaultCORS(),
		Upload: UploadConfig{
			SizeLimit: defaultSizeLimit,
			AllowedTypes: []string{
				"image/jpeg",
				"image/png",
				"image/gif",
				"image/webp",
				"image/svg+xml",
				"image/bmp",
				"image/tiff",
				"image/x-icon",
				"application/pdf",
				"application/zip",
				"application/msword",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"application/vnd.ms-powerpoint",
				"application/vnd.openxmlformats-officedocument.presentationml.presentation",
				"text/plain",
				"text/csv",
				"application/json",
				"video/mp4",
				"video/webm",
				"audio/mpeg",
			},
			Breakpoints: DefaultBreakpoints(),
		},
		Storage: StorageConfig{
			Type: "oss",
			Local: LocalConfig{
				BasePath: "data/uploads",
				BaseURL:  "/uploads",
			},
			OSS: OSSConfig{
				UploadPath:      defaultUploadPath,
				TimeoutMs:       defaultOSSTimeoutMs,
				Secure:          true,
				ACL:             "public-read",
				SignedURLExpiry: 3600,
			},
		},
		CMS: CMSConfig{
			URL:       "http://localhost:1337/api",
			TimeoutMs: 10000,
		},
		Site: SiteConfig{
			DefaultLocale:   defaultLocale,
			CacheTTLSeconds: defaultCacheTTLSeconds,
			CacheSize:       defaultCacheSize,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9090",
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "data/lab_portal.db"
	}
	if cfg.Upload.SizeLimit <= 0 {
		cfg.Upload.SizeLimit = defaultSizeLimit
	}
	if cfg.Upload.Breakpoints == nil {
		cfg.Upload.Breakpoints = DefaultBreakpoints()
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "oss"
	}
	if cfg.Storage.OSS.TimeoutMs <= 0 {
		cfg.Storage.OSS.TimeoutMs = defaultOSSTimeoutMs
	}
	if cfg.Storage.OSS.SignedURLExpiry <= 0 {
		cfg.Storage.OSS.SignedURLExpiry = defaultSignedURLExpiry
	}
	if cfg.Storage.OSS.ACL == "" {
		cfg.Storage.OSS.ACL = "public-read"
	}
	if cfg.Site.DefaultLocale == "" {
		cfg.Site.DefaultLocale = defaultLocale
	}
	if cfg.Site.CacheTTLSeconds <= 0 {
		cfg.Site.CacheTTLSeconds = defaultCacheTTLSeconds
	}
	if cfg.Site.CacheSize <= 0 {
		cfg.Site.CacheSize = defaultCacheSize
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// applyEnv overlays the deployment environment on top of the file configuration.
// Variable names follow the CMS deployment so the same .env file drives both.
func applyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	oss := &cfg.Storage.OSS
	str("STORAGE_TYPE", &cfg.Storage.Type)
	str("OSS_ACCESS_KEY_ID", &oss.AccessKeyID)
	str("OSS_ACCESS_KEY_SECRET", &oss.AccessKeySecret)
	str("OSS_REGION", &oss.Region)
	str("OSS_BUCKET", &oss.Bucket)
	str("OSS_ENDPOINT", &oss.Endpoint)
	// An empty upload path is meaningful: objects go to the bucket root.
	if v, ok := lookup("OSS_UPLOAD_PATH"); ok {
		oss.UploadPath = strings.TrimSpace(v)
	}
	str("OSS_BASE_URL", &oss.BaseURL)
	str("OSS_ACL", &oss.ACL)
	str("REVALIDATE_SECRET", &cfg.Revalidate.Secret)
	str("CMS_URL", &cfg.CMS.URL)
	str("CMS_API_TOKEN", &cfg.CMS.APIToken)
	str("DEFAULT_LOCALE", &cfg.Site.DefaultLocale)
	str("UPLOAD_ADMIN_TOKEN", &cfg.Upload.AdminToken)

	for _, fn := range []func() error{
		func() error { return integer("OSS_TIMEOUT", &oss.TimeoutMs) },
		func() error { return integer("OSS_SIGNED_URL_EXPIRES", &oss.SignedURLExpiry) },
		func() error { return boolean("OSS_SECURE", &oss.Secure) },
		func() error { return boolean("OSS_INTERNAL", &oss.Internal) },
		func() error { return boolean("REDIS_ENABLED", &cfg.Redis.Enabled) },
	} {
		if err := fn(); err != nil {
			return err
		}
	}
	str("REDIS_ADDRESS", &cfg.Redis.Address)

	if v, ok := lookup("UPLOAD_SIZE_LIMIT"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("env UPLOAD_SIZE_LIMIT: %w", err)
		}
		cfg.Upload.SizeLimit = n
	}
	return nil
}

// findConfigFile searches for a config file in the current directory first,
// then next to the binary executable. Returns the full path or empty string.
func findConfigFile(name string) string {
	// 1. Current working directory
	if _, err := os.Stat(name); err == nil {
		abs, _ := filepath.Abs(name)
		return abs
	}

	// 2. Next to the binary executable
	exe, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exe)
		candidate := filepath.Join(exeDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
