package chain

import (
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera"
)

var (
	headKey   = []byte("h")
	recentKey = []byte("r")
	rulesKey  = []byte("rules")
)

// Chain tracks the current block and the recent hash window.
// Extrinsic indexes are not persisted, they only live within a block.
type Chain struct {
	db     kvdb.Store
	window uint32

	mu        sync.RWMutex
	head      *Header
	recent    []common.Hash
	extrinsic *uint32
}

// New opens the chain stored in db (under its own table). The chain is
// uninitialized until genesis is applied.
func New(db kvdb.Store, window uint32) *Chain {
	c := &Chain{
		db:     table.New(db, []byte("c")),
		window: window,
	}
	if head := c.loadHead(); head != nil {
		c.head = head
		c.recent = c.loadRecent()
	}
	return c
}

// Initialized reports whether a genesis has been applied.
func (c *Chain) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.head != nil
}

// Head returns the current block header.
func (c *Chain) Head() Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.head == nil {
		return Header{}
	}
	return *c.head
}

// BlockNumber returns the current block number, 0 before genesis.
func (c *Chain) BlockNumber() idx.Block {
	return c.Head().Number
}

// RecentHashes returns a copy of the recent hash window, oldest first.
func (c *Chain) RecentHashes() []common.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]common.Hash(nil), c.recent...)
}

// ExtrinsicIndex returns the index of the extrinsic being applied, if any.
func (c *Chain) ExtrinsicIndex() (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.extrinsic == nil {
		return 0, false
	}
	return *c.extrinsic, true
}

// SetExtrinsicIndex marks extrinsic i of the current block as being applied.
func (c *Chain) SetExtrinsicIndex(i uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extrinsic = &i
}

// ClearExtrinsicIndex marks that no extrinsic is being applied.
func (c *Chain) ClearExtrinsicIndex() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extrinsic = nil
}

// NextBlock starts a new block on top of the head. The head's hash enters
// the recent window, evicting the oldest hash once the window is full.
func (c *Chain) NextBlock(time inter.Timestamp) Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.head == nil {
		log.Crit("Chain is not initialized")
	}

	next := c.head.next(time)
	c.recent = append(c.recent, next.ParentHash)
	if over := len(c.recent) - int(c.window); over > 0 {
		c.recent = append(c.recent[:0:0], c.recent[over:]...)
	}
	c.head = &next
	c.extrinsic = nil

	c.storeHead(c.head)
	c.storeRecent(c.recent)
	return next
}

// RunToBlock advances block by block until the head reaches number n,
// spacing blocks by period.
func (c *Chain) RunToBlock(n idx.Block, period inter.Timestamp) {
	for head := c.Head(); head.Number < n; head = c.Head() {
		c.NextBlock(head.Time + period)
	}
}

// Rules returns the rules recorded at genesis.
func (c *Chain) Rules() (opera.Rules, bool) {
	b, err := c.db.Get(rulesKey)
	if err != nil {
		log.Crit("Failed to get key-value", "err", err)
	}
	if b == nil {
		return opera.Rules{}, false
	}
	var rules opera.RulesRLP
	if err := rlp.DecodeBytes(b, &rules); err != nil {
		log.Crit("Failed to decode rlp", "err", err, "size", len(b))
	}
	return opera.Rules(rules), true
}

func (c *Chain) storeRules(rules opera.Rules) {
	c.set(rulesKey, (*opera.RulesRLP)(&rules))
}

func (c *Chain) loadHead() *Header {
	var h Header
	if !c.get(headKey, &h) {
		return nil
	}
	return &h
}

func (c *Chain) storeHead(h *Header) {
	c.set(headKey, h)
}

func (c *Chain) loadRecent() []common.Hash {
	var hashes []common.Hash
	c.get(recentKey, &hashes)
	return hashes
}

func (c *Chain) storeRecent(hashes []common.Hash) {
	c.set(recentKey, hashes)
}

func (c *Chain) get(key []byte, to interface{}) bool {
	b, err := c.db.Get(key)
	if err != nil {
		log.Crit("Failed to get key-value", "err", err)
	}
	if b == nil {
		return false
	}
	if err := rlp.DecodeBytes(b, to); err != nil {
		log.Crit("Failed to decode rlp", "err", err, "size", len(b))
	}
	return true
}

func (c *Chain) set(key []byte, val interface{}) {
	b, err := rlp.EncodeToBytes(val)
	if err != nil {
		log.Crit("Failed to encode rlp", "err", err)
	}
	if err := c.db.Put(key, b); err != nil {
		log.Crit("Failed to put key-value", "err", err)
	}
}
