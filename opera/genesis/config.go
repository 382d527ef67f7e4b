// Package genesis defines the initial state of a registry network: the rules
// every node agrees on, the first block, and the initial account balances.
//
// Key concepts:
//   - Rules: the network rules (see package opera), fixed at genesis
//   - Block/Time: number and timestamp of the first block
//   - Accounts: initial free balances, the only way currency enters the ledger
//
// Usage:
//
//	g, err := genesis.LoadFile("genesis.yaml")
//	if err != nil { ... }
//	chain.MustApplyGenesis(db, g)
//
// Genesis files are YAML. Fake networks are generated programmatically with
// FakeGenesis.
package genesis

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gopkg.in/yaml.v3"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera"
)

// DefaultBlock is the default number of the first block.
const DefaultBlock idx.Block = 1

var (
	ErrDuplicateAccount = errors.New("genesis: duplicate account")
	ErrZeroBlock        = errors.New("genesis: first block must be positive")
)

// Account is an initial balance.
type Account struct {
	Address common.Address
	Balance inter.Balance
}

// Genesis is the complete definition of a network's initial state.
type Genesis struct {
	Rules    opera.Rules
	Block    idx.Block
	Time     inter.Timestamp
	Accounts []Account
}

// Validate checks the rules and the initial state.
func (g *Genesis) Validate() error {
	if err := g.Rules.Validate(); err != nil {
		return err
	}
	if g.Block == 0 {
		return ErrZeroBlock
	}
	seen := make(map[common.Address]struct{}, len(g.Accounts))
	for _, acc := range g.Accounts {
		if _, ok := seen[acc.Address]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, acc.Address.Hex())
		}
		seen[acc.Address] = struct{}{}
		if acc.Balance != 0 && acc.Balance < g.Rules.Economy.ExistentialDeposit {
			return fmt.Errorf("genesis: account %s balance %d is below the existential deposit %d",
				acc.Address.Hex(), acc.Balance, g.Rules.Economy.ExistentialDeposit)
		}
	}
	return nil
}

// FakeKey returns the n-th deterministic fake account key. The same n always
// yields the same key, so tests and fake networks share addresses.
func FakeKey(n uint32) *ecdsa.PrivateKey {
	seed := crypto.Keccak256([]byte("fakenet"), bigendian.Uint32ToBytes(n))
	key, err := crypto.ToECDSA(seed)
	if err != nil {
		panic(err)
	}
	return key
}

// FakeAccount returns the address of the n-th fake account.
func FakeAccount(n uint32) common.Address {
	return crypto.PubkeyToAddress(FakeKey(n).PublicKey)
}

// FakeGenesis returns the genesis of a fake network with accounts 1..n each
// holding balance.
func FakeGenesis(n uint32, balance inter.Balance) *Genesis {
	g := &Genesis{
		Rules: opera.FakeNetRules(),
		Block: DefaultBlock,
		Time:  FakeGenesisTime,
	}
	for i := uint32(1); i <= n; i++ {
		g.Accounts = append(g.Accounts, Account{Address: FakeAccount(i), Balance: balance})
	}
	return g
}

// FakeGenesisTime is the genesis timestamp of fake networks.
var FakeGenesisTime = inter.FromUnix(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).Unix())

// file is the YAML form of a genesis file.
type file struct {
	Network  string `yaml:"network"`
	Registry struct {
		MaxOwned       *uint32        `yaml:"maxOwned"`
		ReservationFee *inter.Balance `yaml:"reservationFee"`
	} `yaml:"registry"`
	ExistentialDeposit *inter.Balance `yaml:"existentialDeposit"`
	BlockPeriod        time.Duration  `yaml:"blockPeriod"`
	Block              idx.Block      `yaml:"block"`
	Time               time.Time      `yaml:"time"`
	Accounts           []struct {
		Address string        `yaml:"address"`
		Balance inter.Balance `yaml:"balance"`
	} `yaml:"accounts"`
}

// RulesByName returns the base rules of a named network.
func RulesByName(name string) (opera.Rules, error) {
	switch name {
	case "main":
		return opera.MainNetRules(), nil
	case "test":
		return opera.TestNetRules(), nil
	case "fake", "":
		return opera.FakeNetRules(), nil
	}
	return opera.Rules{}, fmt.Errorf("genesis: unknown network %q", name)
}

// Parse decodes a YAML genesis. Fields left out fall back to the named
// network's rules, block 1, and the fake genesis time.
func Parse(data []byte) (*Genesis, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	rules, err := RulesByName(f.Network)
	if err != nil {
		return nil, err
	}
	if f.Registry.MaxOwned != nil {
		rules.Registry.MaxOwned = *f.Registry.MaxOwned
	}
	if f.Registry.ReservationFee != nil {
		rules.Registry.ReservationFee = *f.Registry.ReservationFee
	}
	if f.ExistentialDeposit != nil {
		rules.Economy.ExistentialDeposit = *f.ExistentialDeposit
	}
	if f.BlockPeriod != 0 {
		rules.Blocks.BlockPeriod = inter.Timestamp(f.BlockPeriod)
	}

	g := &Genesis{
		Rules: rules,
		Block: f.Block,
		Time:  FakeGenesisTime,
	}
	if g.Block == 0 {
		g.Block = DefaultBlock
	}
	if !f.Time.IsZero() {
		g.Time = inter.Timestamp(f.Time.UnixNano())
	}
	for _, acc := range f.Accounts {
		if !common.IsHexAddress(acc.Address) {
			return nil, fmt.Errorf("genesis: invalid address %q", acc.Address)
		}
		g.Accounts = append(g.Accounts, Account{
			Address: common.HexToAddress(acc.Address),
			Balance: acc.Balance,
		})
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFile reads and parses a YAML genesis file.
func LoadFile(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
