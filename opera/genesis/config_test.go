package genesis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera"
)

func TestFakeAccountsAreDeterministic(t *testing.T) {
	require.Equal(t, FakeAccount(1), FakeAccount(1))
	require.NotEqual(t, FakeAccount(1), FakeAccount(2))
	require.Equal(t, FakeKey(7).D, FakeKey(7).D)
}

func TestFakeGenesis(t *testing.T) {
	g := FakeGenesis(2, 500)
	require.NoError(t, g.Validate())
	require.Equal(t, DefaultBlock, g.Block)
	require.Equal(t, opera.FakeNetRules(), g.Rules)
	require.Equal(t, []Account{
		{Address: FakeAccount(1), Balance: 500},
		{Address: FakeAccount(2), Balance: 500},
	}, g.Accounts)
}

func TestParse(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		g, err := Parse([]byte(`
network: fake
registry:
  maxOwned: 5
  reservationFee: 10
existentialDeposit: 1
blockPeriod: 2s
block: 7
time: 2023-03-04T05:06:07Z
accounts:
  - address: "0x00000000000000000000000000000000000000a1"
    balance: 200
  - address: "0x00000000000000000000000000000000000000a2"
    balance: 500
`))
		require.NoError(t, err)
		require.Equal(t, uint32(5), g.Rules.Registry.MaxOwned)
		require.Equal(t, inter.Balance(10), g.Rules.Registry.ReservationFee)
		require.Equal(t, inter.Balance(1), g.Rules.Economy.ExistentialDeposit)
		require.Equal(t, inter.Timestamp(2*time.Second), g.Rules.Blocks.BlockPeriod)
		require.EqualValues(t, 7, g.Block)
		require.True(t, time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC).Equal(g.Time.Time()))
		require.Len(t, g.Accounts, 2)
		require.Equal(t, inter.Balance(500), g.Accounts[1].Balance)
	})

	t.Run("defaults", func(t *testing.T) {
		g, err := Parse([]byte(`network: main`))
		require.NoError(t, err)
		require.Equal(t, opera.MainNetRules(), g.Rules)
		require.Equal(t, DefaultBlock, g.Block)
		require.Equal(t, FakeGenesisTime, g.Time)
		require.Empty(t, g.Accounts)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			data string
			want error
		}{
			{"unknown network", `network: moon`, nil},
			{"bad address", "accounts:\n  - address: nope\n    balance: 1\n", nil},
			{"duplicate", "accounts:\n  - address: \"0x00000000000000000000000000000000000000a1\"\n  - address: \"0x00000000000000000000000000000000000000a1\"\n", ErrDuplicateAccount},
			{"zero max owned", "registry:\n  maxOwned: 0\n", opera.ErrZeroMaxOwned},
			{"malformed", "accounts: [", nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				g, err := Parse([]byte(tt.data))
				require.Error(t, err)
				require.Nil(t, g)
				if tt.want != nil {
					require.ErrorIs(t, err, tt.want)
				}
			})
		}
	})
}

func TestValidateDustBalance(t *testing.T) {
	g := FakeGenesis(1, 5)
	g.Rules.Economy.ExistentialDeposit = 10
	g.Rules.Registry.ReservationFee = 10
	require.Error(t, g.Validate())

	g.Accounts[0].Balance = 0
	require.NoError(t, g.Validate())
}
