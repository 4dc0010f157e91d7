// Package config loads the scribe.json configuration with environment
// overrides for deploy-time settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "scribe.json"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":3000"

	// DefaultCookieName is the session cookie name.
	DefaultCookieName = "auth_token"

	// DefaultProxyPrefix is the local JSON proxy prefix.
	DefaultProxyPrefix = "/api/"
)

// Config is the complete scribe.json schema.
type Config struct {
	// Addr is the address the server listens on.
	Addr string `json:"addr,omitempty"`

	// UpstreamURL is the base URL of the Scribe API.
	UpstreamURL string `json:"upstream_url,omitempty"`

	// Cookie configures the session cookie.
	Cookie CookieConfig `json:"cookie,omitempty"`

	// Upload configures avatar storage.
	Upload UploadConfig `json:"upload,omitempty"`

	// TrustedProxies lists IPs and CIDR ranges whose forwarded
	// headers are honored when resolving client addresses.
	TrustedProxies []string `json:"trusted_proxies,omitempty"`

	// RevokeOnLogout also revokes the token upstream on logout,
	// best-effort. Off by default: logout is purely local.
	RevokeOnLogout bool `json:"revoke_on_logout,omitempty"`

	// MetricsNamespace is the Prometheus namespace (default "scribe").
	MetricsNamespace string `json:"metrics_namespace,omitempty"`
}

// CookieConfig configures the session cookie.
type CookieConfig struct {
	// Name of the cookie (default "auth_token").
	Name string `json:"name,omitempty"`

	// Insecure drops the Secure attribute for plain-HTTP development.
	Insecure bool `json:"insecure,omitempty"`
}

// UploadConfig configures avatar storage.
type UploadConfig struct {
	// Bucket is the S3 bucket for profile pictures.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the object key prefix (default "pfp").
	Prefix string `json:"prefix,omitempty"`

	// PublicBaseURL is the URL root the bucket is served from.
	PublicBaseURL string `json:"public_base_url,omitempty"`

	// MaxFileSize in bytes (default 10MB).
	MaxFileSize int64 `json:"max_file_size,omitempty"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Addr:             DefaultAddr,
		Cookie:           CookieConfig{Name: DefaultCookieName},
		Upload:           UploadConfig{Prefix: "pfp", MaxFileSize: 10 << 20},
		MetricsNamespace: "scribe",
	}
}

// Load reads path (or ConfigFileName when path is empty), applies
// environment overrides, and validates. A missing file is fine; env
// and defaults carry it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigFileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env + defaults
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCRIBE_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SCRIBE_UPSTREAM_URL"); v != "" {
		c.UpstreamURL = v
	}
	if v := os.Getenv("SCRIBE_COOKIE_NAME"); v != "" {
		c.Cookie.Name = v
	}
	if v := os.Getenv("SCRIBE_COOKIE_INSECURE"); v != "" {
		c.Cookie.Insecure, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SCRIBE_REVOKE_ON_LOGOUT"); v != "" {
		c.RevokeOnLogout, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SCRIBE_TRUSTED_PROXIES"); v != "" {
		c.TrustedProxies = strings.Split(v, ",")
	}
	if v := os.Getenv("SCRIBE_UPLOAD_BUCKET"); v != "" {
		c.Upload.Bucket = v
	}
	if v := os.Getenv("SCRIBE_UPLOAD_BASE_URL"); v != "" {
		c.Upload.PublicBaseURL = v
	}
}

func (c *Config) validate() error {
	if c.UpstreamURL == "" {
		return fmt.Errorf("config: upstream_url is required (or SCRIBE_UPSTREAM_URL)")
	}
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	return nil
}
