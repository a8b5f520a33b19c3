// Package config handles process configuration loading for the runtime
// host: hub sizing values, store backend selection, and the inspector
// surface's settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is the top-level process configuration for a streamkit host.
type Config struct {
	Hub       HubConfig       `json:"hub"`
	Store     StoreConfig     `json:"store"`
	Inspector InspectorConfig `json:"inspector"`
}

// HubConfig holds event-loop sizing, mailbox and shutdown values. The
// hub does not read them: its mailbox and event-queue capacities are the
// fixed hub.MessageLimit and hub.EventQueueDepth constants.
type HubConfig struct {
	MailboxCapacity int      `json:"mailbox_capacity,omitempty"`
	EventQueueDepth int      `json:"event_queue_depth,omitempty"`
	ShutdownTimeout Duration `json:"shutdown_timeout,omitempty"`
}

// StoreConfig selects and configures the stream persistence backend.
type StoreConfig struct {
	Driver string `json:"driver"` // "sqlite" or "postgres"
	DSN    string `json:"dsn"`
}

// InspectorConfig controls the optional HTTP+websocket inspector surface.
type InspectorConfig struct {
	Enabled            bool     `json:"enabled,omitempty"`
	ListenAddr         string   `json:"listen_addr,omitempty"`
	JWKSURL            string   `json:"jwks_url,omitempty"`
	JWTSecret          string   `json:"jwt_secret,omitempty"`
	BootstrapTokenHash string   `json:"bootstrap_token_hash,omitempty"` // bcrypt hash, for headless static-token auth
	RateLimitRPS       float64  `json:"rate_limit_rps,omitempty"`
	RateLimitBurst     int      `json:"rate_limit_burst,omitempty"`
	AllowedOrigins     []string `json:"allowed_origins,omitempty"`
}

// Duration is a JSON-friendly time.Duration, accepting strings like
// "30s" or a bare number of seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		dur, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = dur
	case float64:
		d.Duration = time.Duration(val) * time.Second
	default:
		return fmt.Errorf("invalid duration: %v", v)
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Default returns a Config with every field at its default value, for
// hosts started without an explicit config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a config file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Store.Driver != "" && c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		return fmt.Errorf("store.driver must be sqlite or postgres, got %q", c.Store.Driver)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Hub.MailboxCapacity == 0 {
		c.Hub.MailboxCapacity = 1024
	}
	if c.Hub.EventQueueDepth == 0 {
		c.Hub.EventQueueDepth = 4096
	}
	if c.Hub.ShutdownTimeout.Duration == 0 {
		c.Hub.ShutdownTimeout = Duration{5 * time.Second}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.DSN == "" {
		c.Store.DSN = "file:streamkit.db"
	}
	if c.Inspector.ListenAddr == "" {
		c.Inspector.ListenAddr = ":8787"
	}
	if c.Inspector.RateLimitRPS == 0 {
		c.Inspector.RateLimitRPS = 10
	}
	if c.Inspector.RateLimitBurst == 0 {
		c.Inspector.RateLimitBurst = 20
	}
}
