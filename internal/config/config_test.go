package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithEnvUpstream(t *testing.T) {
	t.Setenv("SCRIBE_UPSTREAM_URL", "https://api.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Addr != DefaultAddr {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Cookie.Name != DefaultCookieName {
		t.Fatalf("Cookie.Name = %q, want %q", cfg.Cookie.Name, DefaultCookieName)
	}
	if cfg.UpstreamURL != "https://api.example.com" {
		t.Fatalf("UpstreamURL = %q", cfg.UpstreamURL)
	}
	if cfg.RevokeOnLogout {
		t.Fatal("RevokeOnLogout = true, want false by default")
	}
}

func TestLoadFileValuesAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scribe.json")
	content := `{
		"addr": ":8080",
		"upstream_url": "https://api.file.example",
		"cookie": {"name": "sid", "insecure": true},
		"upload": {"bucket": "avatars", "public_base_url": "https://img.example.net"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SCRIBE_UPSTREAM_URL", "https://api.env.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.UpstreamURL != "https://api.env.example" {
		t.Fatalf("UpstreamURL = %q, env should win over file", cfg.UpstreamURL)
	}
	if cfg.Cookie.Name != "sid" || !cfg.Cookie.Insecure {
		t.Fatalf("Cookie = %+v", cfg.Cookie)
	}
	if cfg.Upload.Bucket != "avatars" {
		t.Fatalf("Upload.Bucket = %q", cfg.Upload.Bucket)
	}
	if cfg.Upload.Prefix != "pfp" {
		t.Fatalf("Upload.Prefix = %q, want default pfp", cfg.Upload.Prefix)
	}
}

func TestLoadRequiresUpstream(t *testing.T) {
	os.Unsetenv("SCRIBE_UPSTREAM_URL")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load without upstream_url error = nil, want error")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scribe.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load of malformed file error = nil, want error")
	}
}
