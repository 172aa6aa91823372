package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the endpoints and knobs the client needs. Values come from
// an optional YAML file; environment variables override the file.
type Config struct {
	// BackendURL is the rewards API base (auth, points, referrals, claims).
	BackendURL string `yaml:"backendUrl"`
	// AssetURL is the content host serving animation descriptors and the
	// lootbox catalog.
	AssetURL string `yaml:"assetUrl"`
	// HostURL is the websocket endpoint of the platform host bridge.
	HostURL string `yaml:"hostUrl"`
	// CachePath is the sqlite file backing the local cache. ":memory:"
	// gives a throwaway cache.
	CachePath string `yaml:"cachePath"`
	// UserAgent is reported on asset fetches and drives the one
	// platform-specific retry in the animation loader.
	UserAgent string `yaml:"userAgent"`

	RequestTimeout Duration `yaml:"requestTimeout"`
}

// Duration lets yaml carry values like "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func Default() Config {
	return Config{
		BackendURL:     "http://localhost:8080",
		AssetURL:       "http://localhost:8080",
		HostURL:        "ws://localhost:8080/bridge",
		CachePath:      "miniapp.db",
		UserAgent:      "miniapp-client/1.0",
		RequestTimeout: Duration(10 * time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads cfg from path (skipped when path is empty) and applies env
// overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Duration(10 * time.Second)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.BackendURL = getenv("APP_BACKEND_URL", c.BackendURL)
	c.AssetURL = getenv("APP_ASSET_URL", c.AssetURL)
	c.HostURL = getenv("APP_HOST_URL", c.HostURL)
	c.CachePath = getenv("APP_CACHE_PATH", c.CachePath)
}
