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

// Package chain is the execution context the registry runs in: the current
// block, the index of the extrinsic being applied, and the window of recent
// block hashes the randomness source draws from.
//
// Key concepts:
//   - Header: number, parent hash and time of a block
//   - Chain: the persisted head and recent hash window, advanced one block at a time
//   - Genesis: endows initial balances and writes the first header
//
// Usage:
//
//	c, err := chain.ApplyGenesis(db, genesis.FakeGenesis(2, 500))
//	c.NextBlock(c.Head().Time + period)
//	c.SetExtrinsicIndex(0)
//
// Blocks carry no transactions here; whoever drives the chain applies
// extrinsics between NextBlock calls.
package chain

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/opera-collectibles/inter"
)

// Header describes a block.
type Header struct {
	Number     idx.Block       // Block number (height in the chain)
	ParentHash common.Hash     // Hash of the parent block, zero for the first block
	Time       inter.Timestamp // Block timestamp
}

// Hash returns the Keccak256 hash of the RLP-encoded header.
func (h *Header) Hash() common.Hash {
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		panic("can't hash: " + err.Error())
	}
	return crypto.Keccak256Hash(enc)
}

// next returns the header of the child block.
func (h *Header) next(time inter.Timestamp) Header {
	return Header{
		Number:     h.Number + 1,
		ParentHash: h.Hash(),
		Time:       time,
	}
}
