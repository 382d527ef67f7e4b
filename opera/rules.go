// Package opera defines the network rules of a collectibles registry deployment.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Registry rules: per-account ownership capacity and the per-asset deposit
//   - Economy rules: the existential deposit of the native currency
//   - Block rules: block period and the randomness lookback window
//
// The Rules type is the single configuration structure that every node of a
// deployment must agree on. It is fixed at genesis.
package opera

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rony4d/opera-collectibles/inter"
)

// Network identification constants
const (
	// MainNetworkID is the id of the production deployment (0xfa = 250)
	MainNetworkID uint64 = 0xfa

	// TestNetworkID is the id of the public test deployment (0xfa2 = 4002)
	TestNetworkID uint64 = 0xfa2

	// FakeNetworkID is the id of local and test networks (0xfa3 = 4003)
	FakeNetworkID uint64 = 0xfa3

	// DefaultRecentHashes is how many block hashes the randomness source mixes.
	DefaultRecentHashes = 81
)

var (
	ErrZeroMaxOwned     = errors.New("rules: registry max owned must be positive")
	ErrZeroRecentHashes = errors.New("rules: recent hashes window must be positive")
	ErrZeroBlockPeriod  = errors.New("rules: block period must be positive")
	ErrDepositBelowDust = errors.New("rules: reservation fee is below the existential deposit")
	ErrUnnamedNetwork   = errors.New("rules: network name is empty")
)

// RulesRLP is the RLP-serializable form of Rules.
type RulesRLP struct {
	Name      string // Network name ("main", "test", "fake")
	NetworkID uint64 // Numeric network id

	// Registry options: capacity and deposit
	Registry RegistryRules

	// Economy options: native currency parameters
	Economy EconomyRules

	// Blockchain options: block production parameters
	Blocks BlocksRules
}

// Rules describes the complete configuration of a registry network.
type Rules RulesRLP

// RegistryRules configures the asset registry.
type RegistryRules struct {
	// MaxOwned is the capacity of one account's ownership index.
	// Mints and transfers that would exceed it fail.
	MaxOwned uint32

	// ReservationFee is the deposit reserved from the owner for every owned asset.
	// It moves with the asset on transfer.
	ReservationFee inter.Balance
}

// EconomyRules contains the native currency parameters.
type EconomyRules struct {
	// ExistentialDeposit is the minimum total balance an account must keep.
	// Keep-alive transfers refuse to take a sender below it.
	ExistentialDeposit inter.Balance
}

// BlocksRules contains rules for block production.
type BlocksRules struct {
	// BlockPeriod is the time between consecutive blocks
	BlockPeriod inter.Timestamp

	// RecentHashes is the size of the window of block hashes kept for randomness
	RecentHashes uint32
}

// MainNetRules returns the configuration rules of the production network.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Registry:  DefaultRegistryRules(),
		Economy:   DefaultEconomyRules(),
		Blocks:    DefaultBlocksRules(),
	}
}

// TestNetRules returns the configuration rules of the test network.
// Testnet uses the same parameters as mainnet.
func TestNetRules() Rules {
	return Rules{
		Name:      "test",
		NetworkID: TestNetworkID,
		Registry:  DefaultRegistryRules(),
		Economy:   DefaultEconomyRules(),
		Blocks:    DefaultBlocksRules(),
	}
}

// FakeNetRules returns the configuration rules for fake/local networks.
// Fake networks use small numbers so limits are easy to hit in tests:
//   - 3 assets per account
//   - a 100 unit deposit
//   - no existential deposit
//   - 1 second blocks
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Registry:  FakeRegistryRules(),
		Economy:   EconomyRules{ExistentialDeposit: 0},
		Blocks: BlocksRules{
			BlockPeriod:  inter.Timestamp(1 * time.Second),
			RecentHashes: DefaultRecentHashes,
		},
	}
}

// DefaultRegistryRules returns the mainnet registry configuration.
func DefaultRegistryRules() RegistryRules {
	return RegistryRules{
		MaxOwned:       9999,
		ReservationFee: 1000000000, // 1e9 base units
	}
}

// FakeRegistryRules returns the registry configuration of fake networks.
func FakeRegistryRules() RegistryRules {
	return RegistryRules{
		MaxOwned:       3,
		ReservationFee: 100,
	}
}

// DefaultEconomyRules returns the mainnet economy configuration.
func DefaultEconomyRules() EconomyRules {
	return EconomyRules{
		ExistentialDeposit: 1000000, // 1e6 base units
	}
}

// DefaultBlocksRules returns the mainnet block configuration.
func DefaultBlocksRules() BlocksRules {
	return BlocksRules{
		BlockPeriod:  inter.Timestamp(6 * time.Second),
		RecentHashes: DefaultRecentHashes,
	}
}

// Validate checks the rules for values no network can run with.
func (r Rules) Validate() error {
	if r.Name == "" {
		return ErrUnnamedNetwork
	}
	if r.Registry.MaxOwned == 0 {
		return ErrZeroMaxOwned
	}
	if r.Blocks.RecentHashes == 0 {
		return ErrZeroRecentHashes
	}
	if r.Blocks.BlockPeriod == 0 {
		return ErrZeroBlockPeriod
	}
	// a non-zero deposit must not be dust
	if r.Registry.ReservationFee != 0 && r.Registry.ReservationFee < r.Economy.ExistentialDeposit {
		return fmt.Errorf("%w: fee %d < %d", ErrDepositBelowDust, r.Registry.ReservationFee, r.Economy.ExistentialDeposit)
	}
	return nil
}

// Copy creates a copy of Rules.
// Rules holds no pointers today, so a value copy is deep.
func (r Rules) Copy() Rules {
	cp := r
	return cp
}

// String returns a JSON representation of Rules for debugging and logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
