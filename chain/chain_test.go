package chain

import (
	"testing"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/ledger"
	"github.com/rony4d/opera-collectibles/opera/genesis"
)

const period = inter.Timestamp(time.Second)

func TestApplyGenesis(t *testing.T) {
	require := require.New(t)
	db := memorydb.New()
	g := genesis.FakeGenesis(2, 500)

	c, err := ApplyGenesis(db, g)
	require.NoError(err)
	require.True(c.Initialized())
	require.Equal(genesis.DefaultBlock, c.BlockNumber())
	require.Equal(g.Time, c.Head().Time)
	require.Empty(c.RecentHashes())

	rules, ok := c.Rules()
	require.True(ok)
	require.Equal(g.Rules, rules)

	balances := ledger.New(db, 0)
	require.Equal(inter.Balance(500), balances.FreeBalance(genesis.FakeAccount(1)))
	require.Equal(inter.Balance(500), balances.FreeBalance(genesis.FakeAccount(2)))

	_, err = ApplyGenesis(db, g)
	require.ErrorIs(err, ErrAlreadyInitialized)
	require.Equal(inter.Balance(500), balances.FreeBalance(genesis.FakeAccount(1)))
}

func TestApplyGenesisInvalid(t *testing.T) {
	db := memorydb.New()
	g := genesis.FakeGenesis(1, 500)
	g.Rules.Registry.MaxOwned = 0

	_, err := ApplyGenesis(db, g)
	require.Error(t, err)
	require.False(t, New(db, 81).Initialized())
}

func TestNextBlock(t *testing.T) {
	require := require.New(t)
	db := memorydb.New()
	c := MustApplyGenesis(db, genesis.FakeGenesis(1, 0))

	first := c.Head()
	c.SetExtrinsicIndex(3)

	second := c.NextBlock(first.Time + period)
	require.Equal(first.Number+1, second.Number)
	require.Equal(first.Hash(), second.ParentHash)
	require.Equal([]common.Hash{first.Hash()}, c.RecentHashes())

	_, ok := c.ExtrinsicIndex()
	require.False(ok, "extrinsic index must reset with a new block")

	// reopening the store sees the same head and window
	reopened := New(db, 81)
	require.Equal(second, reopened.Head())
	require.Equal(c.RecentHashes(), reopened.RecentHashes())
}

func TestRecentHashesWindow(t *testing.T) {
	db := memorydb.New()
	g := genesis.FakeGenesis(0, 0)
	g.Rules.Blocks.RecentHashes = 3
	c := MustApplyGenesis(db, g)

	var parents []common.Hash
	for i := 0; i < 5; i++ {
		head := c.Head()
		parents = append(parents, head.Hash())
		c.NextBlock(head.Time + period)
	}
	// the window holds the parents of blocks 4..6, oldest first
	require.Equal(t, parents[2:], c.RecentHashes())
	require.Equal(t, idx.Block(6), c.BlockNumber())

	reopened := New(db, 3)
	head := reopened.Head()
	reopened.NextBlock(head.Time + period)
	require.Equal(t, []common.Hash{parents[3], parents[4], head.Hash()}, reopened.RecentHashes())
}

func TestRecentHashesWindowLateGenesis(t *testing.T) {
	g := genesis.FakeGenesis(0, 0)
	g.Block = 10
	g.Rules.Blocks.RecentHashes = 2
	c := MustApplyGenesis(memorydb.New(), g)

	var parents []common.Hash
	for i := 0; i < 4; i++ {
		head := c.Head()
		parents = append(parents, head.Hash())
		c.NextBlock(head.Time + period)
	}
	require.Equal(t, parents[2:], c.RecentHashes())
	require.Equal(t, idx.Block(14), c.BlockNumber())
}

func TestRunToBlock(t *testing.T) {
	c := MustApplyGenesis(memorydb.New(), genesis.FakeGenesis(0, 0))
	start := c.Head().Time

	c.RunToBlock(5, period)
	require.Equal(t, idx.Block(5), c.BlockNumber())
	require.Equal(t, start+4*period, c.Head().Time)
	require.Len(t, c.RecentHashes(), 4)

	c.RunToBlock(3, period)
	require.Equal(t, idx.Block(5), c.BlockNumber(), "never runs backwards")
}

func TestExtrinsicIndex(t *testing.T) {
	c := MustApplyGenesis(memorydb.New(), genesis.FakeGenesis(0, 0))

	_, ok := c.ExtrinsicIndex()
	require.False(t, ok)

	c.SetExtrinsicIndex(2)
	i, ok := c.ExtrinsicIndex()
	require.True(t, ok)
	require.Equal(t, uint32(2), i)

	c.ClearExtrinsicIndex()
	_, ok = c.ExtrinsicIndex()
	require.False(t, ok)
}
