package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before config files and flags override them.

type Defaults struct {
	Node    NodeDefaults
	Storage StorageDefaults
	Genesis GenesisDefaults
	Logging LoggingDefaults
}

// NodeDefaults captures top-level node settings.
type NodeDefaults struct {
	DataDir string //	Filesystem root where the node keeps its state (chaindata). Changing it lets you keep several registries side by side.
}

// StorageDefaults configures the state store.
type StorageDefaults struct {
	Preset  string //	Store preset name (memory, default, full); see integration.GetPresetByName.
	CacheMB int    //	Leveldb cache budget in megabytes; zero keeps the preset's value.
	Handles int    //	Leveldb open file limit; zero keeps the preset's value.
}

// GenesisDefaults shapes the genesis init applies when no file is given.
type GenesisDefaults struct {
	FakeBalance uint64 //	Initial balance of every fake account created by --fakenet.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=panic, 1=fatal, 2=error, 3=warn, 4=info, 5=debug, 6=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Force ANSI colors even when stderr is not a terminal.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.collectibles",
		},
		Storage: StorageDefaults{
			Preset: "default",
		},
		Genesis: GenesisDefaults{
			FakeBalance: 1000,
		},
		Logging: LoggingDefaults{
			Verbosity: 4,
			Format:    "text",
			Color:     false,
		},
	}
}
