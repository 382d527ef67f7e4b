// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package chain

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/flushable"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rony4d/opera-collectibles/ledger"
	"github.com/rony4d/opera-collectibles/opera/genesis"
)

// ErrAlreadyInitialized is returned when genesis is applied to a store that has one.
var ErrAlreadyInitialized = errors.New("chain: genesis already applied")

// ApplyGenesis initializes db with the genesis state.
//
// Process:
//  1. Credits the initial balances
//  2. Records the rules
//  3. Writes the first header
//
// Nothing is written unless every step succeeds.
func ApplyGenesis(db kvdb.Store, g *genesis.Genesis) (*Chain, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if New(db, g.Rules.Blocks.RecentHashes).Initialized() {
		return nil, ErrAlreadyInitialized
	}

	overlay := flushable.Wrap(db)
	balances := ledger.New(overlay, g.Rules.Economy.ExistentialDeposit)
	for _, acc := range g.Accounts {
		if err := balances.Deposit(acc.Address, acc.Balance); err != nil {
			overlay.DropNotFlushed()
			return nil, fmt.Errorf("genesis account %s: %w", acc.Address.Hex(), err)
		}
	}

	c := New(overlay, g.Rules.Blocks.RecentHashes)
	c.storeRules(g.Rules)
	c.storeHead(&Header{
		Number: g.Block,
		Time:   g.Time,
	})
	if err := overlay.Flush(); err != nil {
		return nil, err
	}
	return New(db, g.Rules.Blocks.RecentHashes), nil
}

// MustApplyGenesis is ApplyGenesis that logs a critical error on failure.
func MustApplyGenesis(db kvdb.Store, g *genesis.Genesis) *Chain {
	c, err := ApplyGenesis(db, g)
	if err != nil {
		log.Crit("ApplyGenesis", "err", err)
	}
	return c
}
