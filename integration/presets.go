// Package integration assembles a collectibles node: the state store, the
// chain context, the balance ledger, the randomness source and the registry.
//
// Presets bundle the store settings (backend, cache size, file handles) into
// named profiles so operators can pick one with a single flag:
//
//	cfg := integration.MemoryPreset()  // throwaway state for tests and demos
//	cfg := integration.DefaultPreset() // leveldb with moderate caches
//	cfg := integration.FullPreset()    // leveldb sized for long-running nodes
package integration

import "fmt"

// Store backends a preset can select.
const (
	MemoryDB  = "memory"
	LevelDB   = "leveldb"
	chainData = "chaindata"
)

// PresetConfig captures the store parameters that vary across preset profiles.
type PresetConfig struct {
	Name    string // human-readable identifier (e.g., "memory", "full")
	DB      string // store backend: "memory" or "leveldb"
	CacheMB int    // leveldb block cache and write buffer budget
	Handles int    // open file handles leveldb may keep
}

// DefaultPreset returns a leveldb store with caches suitable for a laptop.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:    "default",
		DB:      LevelDB,
		CacheMB: 256, // registry state is small; this keeps every table hot
		Handles: 256,
	}
}

// MemoryPreset returns an in-memory store. Nothing survives the process.
//
// Use cases:
//   - Unit and scenario tests
//   - Dry runs of a scenario script before applying it to a real datadir
func MemoryPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "memory"
	cfg.DB = MemoryDB
	cfg.CacheMB = 0 // no leveldb, no cache
	cfg.Handles = 0
	return cfg
}

// FullPreset returns a leveldb store with large caches for nodes that keep
// running and serve many queries.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.CacheMB = 1024
	cfg.Handles = 1024
	return cfg
}

// GetPresetByName looks up a preset by its string identifier. Returns an
// error if the name is unrecognized.
//
// Example:
//
//	preset, err := integration.GetPresetByName("memory")
//	if err != nil {
//	    return err
//	}
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "memory":
		return MemoryPreset(), nil
	case "full":
		return FullPreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: memory, default, full)", name)
	}
}

// ApplyPreset merges preset into target. Only non-zero preset fields
// override, so a preset can be layered over config-file values.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.DB != "" {
		target.DB = preset.DB
	}
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
	if preset.Handles > 0 {
		target.Handles = preset.Handles
	}
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
