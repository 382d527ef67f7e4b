package launcher

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/opera-collectibles/chain"
	"github.com/rony4d/opera-collectibles/flags"
	"github.com/rony4d/opera-collectibles/integration"
	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera"
	"github.com/rony4d/opera-collectibles/opera/genesis"
)

// runConfigFromArgs runs MakeAllConfigs with a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args []string) Config {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true

	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Flags = append(app.Flags, flags.NodeFlags()...)
	app.Flags = append(app.Flags, flags.RegistryFlags()...)

	var got Config
	app.Action = func(c *cli.Context) error {
		var err error
		got, err = MakeAllConfigs(c)
		return err
	}

	require.NoError(t, app.Run(append([]string{"collectibles"}, args...)))
	return got
}

func TestMakeAllConfigs_defaults(t *testing.T) {
	cfg := runConfigFromArgs(t, nil)

	assert.Equal(t, filepath.Join(GuessHomeDir(), ".collectibles"), cfg.Node.DataDir)
	assert.Equal(t, "default", cfg.Store.Preset)
	assert.Equal(t, 4, cfg.Node.Logging.Verbosity)
	assert.Equal(t, "text", cfg.Node.Logging.Format)
	assert.Equal(t, uint64(1000), cfg.Genesis.FakeBalance)
	assert.Zero(t, cfg.Genesis.FakeNet)
	assert.Zero(t, cfg.Registry)
}

// TestMakeAllConfigs_flagOverrides verifies that every flag overrides the
// corresponding field of the aggregated Config.
func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "datadir",
			args: []string{"--datadir", dir},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, dir, cfg.Node.DataDir)
			},
		},
		{
			name: "logging",
			args: []string{"--log.format", "json", "--log.verbosity", "5", "--log.color", "--log.sentry", "https://key@sentry.example/1"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, LoggingConfig{
					Verbosity: 5,
					Format:    "json",
					Color:     true,
					SentryDSN: "https://key@sentry.example/1",
				}, cfg.Node.Logging)
			},
		},
		{
			name: "store",
			args: []string{"--db.preset", "full", "--cache", "64", "--handles", "32"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, StoreConfig{Preset: "full", CacheMB: 64, Handles: 32}, cfg.Store)
			},
		},
		{
			name: "genesis",
			args: []string{"--genesis", filepath.Join(dir, "genesis.yaml"), "--fakenet", "4", "--fakenet.balance", "77"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, filepath.Join(dir, "genesis.yaml"), cfg.Genesis.Path)
				assert.Equal(t, uint32(4), cfg.Genesis.FakeNet)
				assert.Equal(t, uint64(77), cfg.Genesis.FakeBalance)
			},
		},
		{
			name: "registry",
			args: []string{"--registry.maxowned", "10", "--registry.fee", "5"},
			want: func(t *testing.T, cfg Config) {
				assert.Equal(t, RegistryConfig{MaxOwned: 10, ReservationFee: 5}, cfg.Registry)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := runConfigFromArgs(t, test.args)
			test.want(t, cfg)
		})
	}
}

func TestMakeAllConfigs_configFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "node.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
node:
  datadir: `+dir+`
  logging:
    format: json
store:
  preset: memory
registry:
  maxowned: 7
  fee: 3
`), 0o600))

	cfg := runConfigFromArgs(t, []string{"--config", yamlPath})
	assert.Equal(t, dir, cfg.Node.DataDir)
	assert.Equal(t, "json", cfg.Node.Logging.Format)
	assert.Equal(t, 4, cfg.Node.Logging.Verbosity, "keys left out keep their defaults")
	assert.Equal(t, "memory", cfg.Store.Preset)
	assert.Equal(t, RegistryConfig{MaxOwned: 7, ReservationFee: 3}, cfg.Registry)

	// flags win over the file
	cfg = runConfigFromArgs(t, []string{"--config", yamlPath, "--registry.maxowned", "9"})
	assert.Equal(t, uint32(9), cfg.Registry.MaxOwned)
	assert.Equal(t, uint64(3), cfg.Registry.ReservationFee)

	tomlPath := filepath.Join(dir, "node.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[genesis]\nfakenet = 2\nfakebalance = 50\n"), 0o600))
	cfg = runConfigFromArgs(t, []string{"--config", tomlPath})
	assert.Equal(t, GenesisConfig{FakeNet: 2, FakeBalance: 50}, cfg.Genesis)
}

func TestMakeAllConfigs_env(t *testing.T) {
	t.Setenv("COLLECTIBLES_STORE_PRESET", "full")
	t.Setenv("COLLECTIBLES_GENESIS_FAKENET", "3")

	cfg := runConfigFromArgs(t, nil)
	assert.Equal(t, "full", cfg.Store.Preset)
	assert.Equal(t, uint32(3), cfg.Genesis.FakeNet)

	// flags still win
	cfg = runConfigFromArgs(t, []string{"--db.preset", "memory"})
	assert.Equal(t, "memory", cfg.Store.Preset)
}

func TestMakeAllConfigs_missingFile(t *testing.T) {
	app := cli.NewApp()
	app.Flags = flags.CommonFlags()
	app.Action = func(c *cli.Context) error {
		_, err := MakeAllConfigs(c)
		return err
	}
	err := app.Run([]string{"collectibles", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	require.Error(t, err)
}

func TestConfigPreset(t *testing.T) {
	cfg := defaultConfig()
	cfg.Store = StoreConfig{Preset: "full", Handles: 8}

	preset, err := cfg.Preset()
	require.NoError(t, err)
	assert.Equal(t, integration.LevelDB, preset.DB)
	assert.Equal(t, integration.FullPreset().CacheMB, preset.CacheMB)
	assert.Equal(t, 8, preset.Handles)

	cfg.Store.Preset = "archive"
	_, err = cfg.Preset()
	require.Error(t, err)
}

func TestConfigMakeGenesis(t *testing.T) {
	cfg := defaultConfig()

	_, err := cfg.MakeGenesis()
	require.ErrorIs(t, err, ErrNoGenesisSource)

	cfg.Genesis.FakeNet = 2
	cfg.Registry = RegistryConfig{MaxOwned: 5, ReservationFee: 10}
	g, err := cfg.MakeGenesis()
	require.NoError(t, err)
	require.Len(t, g.Accounts, 2)
	assert.Equal(t, inter.Balance(1000), g.Accounts[1].Balance)
	assert.Equal(t, opera.RegistryRules{MaxOwned: 5, ReservationFee: 10}, g.Rules.Registry)

	// a file takes precedence over the fake network
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: main\naccounts:\n  - {address: \""+genesis.FakeAccount(9).Hex()+"\", balance: 5000000}\n"), 0o600))
	cfg.Genesis.Path = path
	cfg.Registry = RegistryConfig{}
	g, err = cfg.MakeGenesis()
	require.NoError(t, err)
	assert.Equal(t, "main", g.Rules.Name)
	assert.Equal(t, genesis.FakeAccount(9), g.Accounts[0].Address)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(LoggingConfig{Verbosity: 5, Format: "json"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = newLogger(LoggingConfig{Verbosity: 9, Format: "text"}, io.Discard)
	require.Error(t, err)

	_, err = newLogger(LoggingConfig{Verbosity: 3, Format: "xml"}, io.Discard)
	require.Error(t, err)
}

var createdID = regexp.MustCompile(`id=(0x[0-9a-f]{64})`)

func TestCommands(t *testing.T) {
	dir := t.TempDir()

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		app := newApp()
		app.Writer = &out
		app.ErrWriter = io.Discard
		base := []string{"collectibles", "--datadir", dir, "--log.verbosity", "0", "--fakenet", "3"}
		err := app.Run(append(base, args...))
		return out.String(), err
	}

	out, err := run("init")
	require.NoError(t, err)
	assert.Contains(t, out, "fake")

	_, err = run("init")
	require.ErrorIs(t, err, chain.ErrAlreadyInitialized)

	out, err = run("create", "--from", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "block 2 #0 create()")
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = run("owned", "2")
	require.NoError(t, err)
	assert.Equal(t, id+"\n", out)

	out, err = run("set-price", "--from", "2", id, "40")
	require.NoError(t, err)
	assert.Contains(t, out, "PriceSet")

	_, err = run("buy", "--from", "3", id, "40")
	require.Error(t, err, "bid must exceed the price")

	_, err = run("buy", "--from", "3", id, "41")
	require.NoError(t, err)

	out, err = run("balance", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "free=1041 reserved=0")

	out, err = run("asset", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"price": null`)
	assert.Contains(t, out, strings.ToLower(genesis.FakeAccount(3).Hex()))

	out, err = run("verify")
	require.NoError(t, err)
	assert.Equal(t, "ok: 1 assets at block 5\n", out)
}
