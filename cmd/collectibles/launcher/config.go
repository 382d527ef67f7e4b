// This file maps the config file and CLI context to the Config struct.

package launcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/opera-collectibles/integration"
	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera/genesis"
)

// ErrNoGenesisSource is returned by init when neither a genesis file nor a
// fake network is configured.
var ErrNoGenesisSource = errors.New("no genesis: pass --genesis or --fakenet")

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node     NodeConfig     `mapstructure:"node"`
	Store    StoreConfig    `mapstructure:"store"`
	Genesis  GenesisConfig  `mapstructure:"genesis"`
	Registry RegistryConfig `mapstructure:"registry"`
}

type NodeConfig struct {
	DataDir string        `mapstructure:"datadir"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Verbosity int    `mapstructure:"verbosity"`
	Format    string `mapstructure:"format"`
	Color     bool   `mapstructure:"color"`
	SentryDSN string `mapstructure:"sentry"`
}

type StoreConfig struct {
	Preset  string `mapstructure:"preset"`
	CacheMB int    `mapstructure:"cache"`
	Handles int    `mapstructure:"handles"`
}

type GenesisConfig struct {
	Path        string `mapstructure:"path"`
	FakeNet     uint32 `mapstructure:"fakenet"`
	FakeBalance uint64 `mapstructure:"fakebalance"`
}

// RegistryConfig overrides the registry rules at genesis. Zero keeps the
// network's value.
type RegistryConfig struct {
	MaxOwned       uint32 `mapstructure:"maxowned"`
	ReservationFee uint64 `mapstructure:"fee"`
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: resolvePath(d.Node.DataDir),
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
			},
		},
		Store: StoreConfig{
			Preset:  d.Storage.Preset,
			CacheMB: d.Storage.CacheMB,
			Handles: d.Storage.Handles,
		},
		Genesis: GenesisConfig{
			FakeBalance: d.Genesis.FakeBalance,
		},
	}
}

// MakeAllConfigs merges defaults, the optional config file and environment,
// then CLI flag overrides into a single config struct.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if err := loadConfigFile(ctx.GlobalString("config"), &cfg); err != nil {
		return cfg, err
	}

	applyCLIOverrides(ctx, &cfg)
	return cfg, nil
}

// Preset resolves the store preset with the cache and handle overrides.
func (c Config) Preset() (integration.PresetConfig, error) {
	preset, err := integration.GetPresetByName(c.Store.Preset)
	if err != nil {
		return preset, err
	}
	integration.ApplyPreset(&preset, integration.PresetConfig{
		CacheMB: c.Store.CacheMB,
		Handles: c.Store.Handles,
	})
	return preset, nil
}

// MakeGenesis builds the genesis init applies: the genesis file if set,
// else a fake network. Registry overrides are applied on top.
func (c Config) MakeGenesis() (*genesis.Genesis, error) {
	var g *genesis.Genesis
	switch {
	case c.Genesis.Path != "":
		var err error
		if g, err = genesis.LoadFile(c.Genesis.Path); err != nil {
			return nil, fmt.Errorf("genesis %s: %w", c.Genesis.Path, err)
		}
	case c.Genesis.FakeNet > 0:
		g = genesis.FakeGenesis(c.Genesis.FakeNet, inter.Balance(c.Genesis.FakeBalance))
	default:
		return nil, ErrNoGenesisSource
	}

	if c.Registry.MaxOwned != 0 {
		g.Rules.Registry.MaxOwned = c.Registry.MaxOwned
	}
	if c.Registry.ReservationFee != 0 {
		g.Rules.Registry.ReservationFee = inter.Balance(c.Registry.ReservationFee)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

// loadConfigFile layers the config file (toml, yaml or json by extension)
// and COLLECTIBLES_* environment variables over cfg. An empty path reads
// the environment only.
func loadConfigFile(path string, cfg *Config) error {
	v := viper.New()

	// the current values are the defaults, so keys left out keep them
	v.SetDefault("node.datadir", cfg.Node.DataDir)
	v.SetDefault("node.logging.verbosity", cfg.Node.Logging.Verbosity)
	v.SetDefault("node.logging.format", cfg.Node.Logging.Format)
	v.SetDefault("node.logging.color", cfg.Node.Logging.Color)
	v.SetDefault("node.logging.sentry", cfg.Node.Logging.SentryDSN)
	v.SetDefault("store.preset", cfg.Store.Preset)
	v.SetDefault("store.cache", cfg.Store.CacheMB)
	v.SetDefault("store.handles", cfg.Store.Handles)
	v.SetDefault("genesis.path", cfg.Genesis.Path)
	v.SetDefault("genesis.fakenet", cfg.Genesis.FakeNet)
	v.SetDefault("genesis.fakebalance", cfg.Genesis.FakeBalance)
	v.SetDefault("registry.maxowned", cfg.Registry.MaxOwned)
	v.SetDefault("registry.fee", cfg.Registry.ReservationFee)

	// COLLECTIBLES_STORE_PRESET -> store.preset
	v.SetEnvPrefix("COLLECTIBLES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.GlobalString("datadir"))
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Node.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Node.Logging.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("log.sentry") {
		cfg.Node.Logging.SentryDSN = ctx.GlobalString("log.sentry")
	}

	if ctx.GlobalIsSet("db.preset") {
		cfg.Store.Preset = ctx.GlobalString("db.preset")
	}
	if ctx.GlobalIsSet("cache") {
		cfg.Store.CacheMB = ctx.GlobalInt("cache")
	}
	if ctx.GlobalIsSet("handles") {
		cfg.Store.Handles = ctx.GlobalInt("handles")
	}

	if ctx.GlobalIsSet("genesis") {
		cfg.Genesis.Path = resolvePath(ctx.GlobalString("genesis"))
	}
	if ctx.GlobalIsSet("fakenet") {
		cfg.Genesis.FakeNet = uint32(ctx.GlobalInt("fakenet"))
	}
	if ctx.GlobalIsSet("fakenet.balance") {
		cfg.Genesis.FakeBalance = ctx.GlobalUint64("fakenet.balance")
	}

	if ctx.GlobalIsSet("registry.maxowned") {
		cfg.Registry.MaxOwned = uint32(ctx.GlobalUint64("registry.maxowned"))
	}
	if ctx.GlobalIsSet("registry.fee") {
		cfg.Registry.ReservationFee = ctx.GlobalUint64("registry.fee")
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
