package integration

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/opera-collectibles/chain"
	"github.com/rony4d/opera-collectibles/ledger"
	"github.com/rony4d/opera-collectibles/opera"
	"github.com/rony4d/opera-collectibles/opera/genesis"
	"github.com/rony4d/opera-collectibles/randomness"
	"github.com/rony4d/opera-collectibles/registry"
)

// ErrNoGenesis is returned when an empty store is opened without a genesis.
var ErrNoGenesis = errors.New("integration: store has no genesis, run init first")

// Node is an assembled collectibles runtime over one state store.
type Node struct {
	db    kvdb.Store
	rules opera.Rules
	log   logrus.FieldLogger

	Chain    *chain.Chain
	Registry *registry.Registry
}

// OpenStore opens the state store selected by preset. Leveldb stores live
// under <dataDir>/chaindata.
func OpenStore(dataDir string, preset PresetConfig) (kvdb.Store, error) {
	switch preset.DB {
	case MemoryDB:
		return memorydb.New(), nil
	case LevelDB, "":
		path := filepath.Join(dataDir, chainData)
		db, err := leveldb.New(path, preset.CacheMB, preset.Handles, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", preset.DB)
}

// Open opens the store under dataDir and assembles a node over it. The
// genesis is applied only when the store has none; otherwise the rules
// recorded at genesis are used and g is ignored.
func Open(dataDir string, preset PresetConfig, g *genesis.Genesis, logger logrus.FieldLogger) (*Node, error) {
	db, err := OpenStore(dataDir, preset)
	if err != nil {
		return nil, err
	}
	n, err := NewNode(db, g, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return n, nil
}

// NewMemNode assembles a node over a fresh in-memory store.
func NewMemNode(g *genesis.Genesis, logger logrus.FieldLogger) (*Node, error) {
	return NewNode(memorydb.New(), g, logger)
}

// NewNode assembles a node over db, applying g first if db is empty.
func NewNode(db kvdb.Store, g *genesis.Genesis, logger logrus.FieldLogger) (*Node, error) {
	rules, ok := chain.New(db, 0).Rules()

	var c *chain.Chain
	if ok {
		c = chain.New(db, rules.Blocks.RecentHashes)
	} else {
		if g == nil {
			return nil, ErrNoGenesis
		}
		var err error
		if c, err = chain.ApplyGenesis(db, g); err != nil {
			return nil, err
		}
		rules = g.Rules.Copy()
		logger.WithFields(logrus.Fields{
			"network":  rules.Name,
			"block":    g.Block,
			"accounts": len(g.Accounts),
		}).Info("Applied genesis")
	}

	ed := rules.Economy.ExistentialDeposit
	binder := func(db kvdb.Store) ledger.ReservableCurrency {
		return ledger.New(db, ed)
	}
	reg := registry.New(db, rules.Registry, binder, randomness.NewCollectiveFlip(c), c, logger)

	return &Node{
		db:       db,
		rules:    rules,
		log:      logger.WithField("module", "node"),
		Chain:    c,
		Registry: reg,
	}, nil
}

// Rules returns the rules recorded at genesis.
func (n *Node) Rules() opera.Rules {
	return n.rules
}

// Balances returns a read view of the committed balances.
func (n *Node) Balances() *ledger.Ledger {
	return ledger.New(n.db, n.rules.Economy.ExistentialDeposit)
}

// Close ends registry subscriptions and closes the store.
func (n *Node) Close() error {
	n.Registry.Close()
	return n.db.Close()
}
