package registry

import (
	"bytes"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera/genesis"
)

// dump copies every key-value of db.
func dump(db kvdb.Store) map[string][]byte {
	out := make(map[string][]byte)
	it := db.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		out[string(it.Key())] = common.CopyBytes(it.Value())
	}
	return out
}

func sameState(a, b map[string][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if !bytes.Equal(v, b[k]) {
			return false
		}
	}
	return true
}

func totalIssuance(env *testEnv, accounts []common.Address) inter.Balance {
	var sum inter.Balance
	for _, who := range accounts {
		sum += env.balances().TotalBalance(who)
	}
	return sum
}

// TestRandomCalls applies random call sequences and checks after every call
// that the registry invariants hold, funds are conserved and failed calls
// leave the state untouched.
func TestRandomCalls(t *testing.T) {
	accounts := []common.Address{alice, bob, carol}

	rapid.Check(t, func(rt *rapid.T) {
		g := genesis.FakeGenesis(0, 0)
		g.Accounts = []genesis.Account{
			{Address: alice, Balance: inter.Balance(rapid.IntRange(0, 600).Draw(rt, "alice"))},
			{Address: bob, Balance: inter.Balance(rapid.IntRange(0, 600).Draw(rt, "bob"))},
			{Address: carol, Balance: inter.Balance(rapid.IntRange(0, 600).Draw(rt, "carol"))},
		}
		env := newTestEnvWithGenesis(rt, g, nil)
		r := env.reg
		issuance := totalIssuance(env, accounts)

		var known []inter.AssetID
		pickAsset := func(label string) inter.AssetID {
			if len(known) == 0 || rapid.IntRange(0, 9).Draw(rt, label+"-unknown") == 0 {
				return inter.AssetID{0xde, 0xad}
			}
			return known[rapid.IntRange(0, len(known)-1).Draw(rt, label)]
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			env.runToBlock(idx.Block(i + 2))
			caller := rapid.SampledFrom(accounts).Draw(rt, "caller")

			var call Call
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				call = CreateCall{}
			case 1:
				var p *inter.Balance
				if rapid.Bool().Draw(rt, "listed") {
					p = price(inter.Balance(rapid.IntRange(0, 300).Draw(rt, "price")))
				}
				call = SetPriceCall{ID: pickAsset("asset"), Price: p}
			case 2:
				call = TransferCall{ID: pickAsset("asset"), To: rapid.SampledFrom(accounts).Draw(rt, "to")}
			case 3:
				call = BuyCall{ID: pickAsset("asset"), Bid: inter.Balance(rapid.IntRange(0, 400).Draw(rt, "bid"))}
			case 4:
				call = BreedCall{Parent1: pickAsset("parent1"), Parent2: pickAsset("parent2")}
			}

			before := dump(env.db)
			count := r.Count()
			events, err := r.Dispatch(caller, call)
			if err != nil {
				require.Empty(rt, events, call.String())
				require.True(rt, sameState(before, dump(env.db)), "%s failed with %v and changed state", call, err)
			} else {
				for _, e := range events {
					if created, ok := e.(inter.Created); ok {
						known = append(known, created.ID)
					}
				}
			}

			require.NoError(rt, r.CheckInvariants(), call.String())
			require.Equal(rt, issuance, totalIssuance(env, accounts), call.String())
			require.GreaterOrEqual(rt, r.Count(), count)
		}
	})
}
