package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertDefaultConfig(t, cfg)
}

func TestLoadWithPartialConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
database:
  driver: ""
  sqlite: {}
storage:
  oss:
    bucket: lab-media
    signed_url_expires: 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected server address :9090, got %s", cfg.Server.Address)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected database driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Storage.OSS.Bucket != "lab-media" {
		t.Fatalf("expected bucket lab-media, got %s", cfg.Storage.OSS.Bucket)
	}
	if cfg.Storage.OSS.SignedURLExpiry != defaultSignedURLExpiry {
		t.Fatalf("expected signed url expiry %d, got %d", defaultSignedURLExpiry, cfg.Storage.OSS.SignedURLExpiry)
	}
	if !cfg.Storage.OSS.Secure {
		t.Fatalf("expected secure to keep its default")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("unknown_section: {}\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestApplyEnvOverlaysOSSSettings(t *testing.T) {
	env := map[string]string{
		"OSS_ACCESS_KEY_ID":      "id",
		"OSS_ACCESS_KEY_SECRET":  "secret",
		"OSS_REGION":             "oss-cn-hangzhou",
		"OSS_BUCKET":             "lab",
		"OSS_BASE_URL":           "https://cdn.example.com/",
		"OSS_TIMEOUT":            "15000",
		"OSS_SECURE":             "false",
		"OSS_INTERNAL":           "true",
		"OSS_SIGNED_URL_EXPIRES": "600",
		"UPLOAD_SIZE_LIMIT":      "1048576",
		"REVALIDATE_SECRET":      "s3cr3t",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := defaultConfig()
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}

	oss := cfg.Storage.OSS
	if oss.AccessKeyID != "id" || oss.AccessKeySecret != "secret" {
		t.Fatalf("credentials not applied: %+v", oss)
	}
	if oss.Region != "oss-cn-hangzhou" || oss.Bucket != "lab" {
		t.Fatalf("region/bucket not applied: %+v", oss)
	}
	if oss.TimeoutMs != 15000 {
		t.Fatalf("expected timeout 15000, got %d", oss.TimeoutMs)
	}
	if oss.Secure || !oss.Internal {
		t.Fatalf("expected secure=false internal=true, got %v %v", oss.Secure, oss.Internal)
	}
	if oss.SignedURLExpiry != 600 {
		t.Fatalf("expected signed url expiry 600, got %d", oss.SignedURLExpiry)
	}
	if oss.UploadPath != defaultUploadPath {
		t.Fatalf("expected default upload path, got %q", oss.UploadPath)
	}
	if cfg.Upload.SizeLimit != 1048576 {
		t.Fatalf("expected size limit 1048576, got %d", cfg.Upload.SizeLimit)
	}
	if cfg.Revalidate.Secret != "s3cr3t" {
		t.Fatalf("expected revalidate secret, got %q", cfg.Revalidate.Secret)
	}
}

func TestApplyEnvHonoursEmptyUploadPath(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "OSS_UPLOAD_PATH" {
			return "", true
		}
		return "", false
	}
	cfg := defaultConfig()
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Storage.OSS.UploadPath != "" {
		t.Fatalf("expected empty upload path, got %q", cfg.Storage.OSS.UploadPath)
	}

	cfg = defaultConfig()
	if err := applyEnv(cfg, func(string) (string, bool) { return "", false }); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Storage.OSS.UploadPath != defaultUploadPath {
		t.Fatalf("unset variable must keep the default, got %q", cfg.Storage.OSS.UploadPath)
	}
}

func TestApplyEnvRejectsMalformedNumbers(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "OSS_TIMEOUT" {
			return "soon", true
		}
		return "", false
	}
	if err := applyEnv(defaultConfig(), lookup); err == nil {
		t.Fatalf("expected error for malformed OSS_TIMEOUT")
	}
}

func assertDefaultConfig(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("config is nil")
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected default driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Upload.SizeLimit != defaultSizeLimit {
		t.Fatalf("expected default size limit %d, got %d", defaultSizeLimit, cfg.Upload.SizeLimit)
	}
	if cfg.Upload.Breakpoints["xlarge"] != 1920 {
		t.Fatalf("expected xlarge breakpoint 1920, got %d", cfg.Upload.Breakpoints["xlarge"])
	}
	if cfg.Site.DefaultLocale != "zh-CN" {
		t.Fatalf("expected default locale zh-CN, got %s", cfg.Site.DefaultLocale)
	}
}
