// Package config loads the parameters named in spec.md §6 using
// spf13/viper, grounded in fd1az-arbitrage-bot's layered
// env/flag/file configuration loader.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// IdlePolicy selects the engine loop's behavior when the inbound queue is
// observed empty (§4.3).
type IdlePolicy string

const (
	IdleSpin  IdlePolicy = "spin"
	IdleYield IdlePolicy = "yield"
	IdlePark  IdlePolicy = "park"
)

func (p IdlePolicy) valid() bool {
	switch p {
	case IdleSpin, IdleYield, IdlePark:
		return true
	default:
		return false
	}
}

// PriceTreeKind selects which orderbook.priceTree implementation backs
// the book's bid and ask sides.
type PriceTreeKind string

const (
	PriceTreeHashMapList PriceTreeKind = "hashmap"
	PriceTreeSharded     PriceTreeKind = "sharded"
)

func (k PriceTreeKind) valid() bool {
	switch k {
	case PriceTreeHashMapList, PriceTreeSharded:
		return true
	default:
		return false
	}
}

// Config is the fully resolved, validated runtime configuration.
type Config struct {
	QueueCapacity   int           `mapstructure:"queue_capacity"`
	IdlePolicy      IdlePolicy    `mapstructure:"idle_policy"`
	PriceTreeKind   PriceTreeKind `mapstructure:"price_tree_kind"`
	BindAddress     string        `mapstructure:"bind_address"`
	SnapshotEnabled bool          `mapstructure:"snapshot_enabled"`
	HTTPBindAddress string        `mapstructure:"http_bind_address"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
	LogLevel        string        `mapstructure:"log_level"`
}

// Load resolves configuration from (in increasing precedence) defaults,
// an optional config file, and environment variables prefixed
// LIMITBOOK_ (e.g. LIMITBOOK_QUEUE_CAPACITY). configPath may be empty to
// skip file loading.
func Load(configPath string) (Config, error) {
	v := viper.New()

	v.SetDefault("queue_capacity", 4096)
	v.SetDefault("idle_policy", string(IdleYield))
	v.SetDefault("price_tree_kind", string(PriceTreeHashMapList))
	v.SetDefault("bind_address", ":9000")
	v.SetDefault("snapshot_enabled", true)
	v.SetDefault("http_bind_address", ":8080")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("limitbook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the constraints of spec.md §6. A validation failure
// is process-fatal: the engine must not start with an ambiguous
// configuration (§7 error kind 4).
func (c Config) Validate() error {
	if c.QueueCapacity < 1 {
		return fmt.Errorf("config: queue_capacity must be >= 1, got %d", c.QueueCapacity)
	}
	if !c.IdlePolicy.valid() {
		return fmt.Errorf("config: idle_policy %q must be one of spin, yield, park", c.IdlePolicy)
	}
	if !c.PriceTreeKind.valid() {
		return fmt.Errorf("config: price_tree_kind %q must be one of hashmap, sharded", c.PriceTreeKind)
	}
	if c.BindAddress == "" {
		return fmt.Errorf("config: bind_address must not be empty")
	}
	if (c.SnapshotEnabled || c.MetricsEnabled) && c.HTTPBindAddress == "" {
		return fmt.Errorf("config: http_bind_address must not be empty when snapshot or metrics are enabled")
	}
	return nil
}
