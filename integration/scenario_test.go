package integration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera/genesis"
	"github.com/rony4d/opera-collectibles/registry"
)

const marketScenario = `
blocks:
  - extrinsics:
      - {caller: 1, call: create, as: first}
      - {caller: 1, call: create, as: second}
  - after: 30s
    extrinsics:
      - {caller: 1, call: set-price, asset: $first, price: 150}
      - {caller: 2, call: buy, asset: $first, bid: 150}
      - {caller: 2, call: buy, asset: $first, bid: 151}
  - extrinsics:
      - {caller: 1, call: breed, parents: [$first, $second]}
      - {caller: 2, call: transfer, asset: $first, to: 3}
`

func TestScenarioRun(t *testing.T) {
	require := require.New(t)

	s, err := ParseScenario([]byte(marketScenario))
	require.NoError(err)
	require.Len(s.Blocks, 3)
	require.Equal(30*time.Second, s.Blocks[1].After)

	n, err := NewMemNode(genesis.FakeGenesis(3, 1000), quietLogger())
	require.NoError(err)
	defer n.Close()
	start := n.Chain.Head().Time

	results, err := s.Run(n)
	require.NoError(err)
	require.Len(results, 3)

	// block period, then the 30s override
	require.Equal(start+n.Rules().Blocks.BlockPeriod, results[0].Header.Time)
	require.Equal(results[0].Header.Time+inter.Timestamp(30*time.Second), results[1].Header.Time)

	market := results[1].Receipts
	require.NoError(market[0].Err)
	require.ErrorIs(market[1].Err, registry.ErrBidTooLow)
	require.NoError(market[2].Err)

	breed := results[2].Receipts
	// the first asset was sold in the previous block
	require.ErrorIs(breed[0].Err, registry.ErrNotOwner)
	require.NoError(breed[1].Err)

	first := results[0].Receipts[0].Events[0].(inter.Created).ID
	require.Equal(acc3, n.Registry.Asset(first).Owner)
	require.Equal(inter.Balance(1000-100+151), n.Balances().FreeBalance(acc1))
	require.Equal(inter.Balance(1000-151), n.Balances().FreeBalance(acc2))
	require.Equal(inter.Balance(100), n.Balances().ReservedBalance(acc3))
	require.NoError(n.Registry.CheckInvariants())
}

func TestScenarioUnboundName(t *testing.T) {
	require := require.New(t)

	// names bound in a block are visible from the next one
	s, err := ParseScenario([]byte(`
blocks:
  - extrinsics:
      - {caller: 1, call: create, as: a}
      - {caller: 1, call: set-price, asset: $a, price: 1}
`))
	require.NoError(err)

	n, err := NewMemNode(genesis.FakeGenesis(1, 1000), quietLogger())
	require.NoError(err)
	defer n.Close()

	results, err := s.Run(n)
	require.ErrorIs(err, ErrUnboundAsset)
	require.Empty(results)
}

func TestParseScenarioErrors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown call":  "blocks: [{extrinsics: [{caller: 1, call: burn}]}]",
		"bad caller":    "blocks: [{extrinsics: [{caller: alice, call: create}]}]",
		"unknown field": "blocks: [{extrinsics: [{caller: 1, call: create, owner: 2}]}]",
		"not yaml":      "blocks: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(src))
			require.Error(t, err)
		})
	}
}

func TestParseAccount(t *testing.T) {
	require := require.New(t)

	got, err := ParseAccount("2")
	require.NoError(err)
	require.Equal(acc2, got)

	got, err = ParseAccount(acc3.Hex())
	require.NoError(err)
	require.Equal(acc3, got)

	_, err = ParseAccount("0x12")
	require.ErrorIs(err, ErrBadAccount)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.yaml")
	require.NoError(t, os.WriteFile(path, []byte(marketScenario), 0o600))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, s.Blocks[0].Extrinsics, 2)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
