// Package randomness provides the registry's source of pseudo-random material.
//
// CollectiveFlip derives randomness from the hashes of recent blocks. It is
// cheap and deterministic, and it is predictable: whoever produces a block
// can bias it. It must not guard anything of value.
package randomness

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Source produces random material for a subject.
type Source interface {
	// Random returns a hash derived from subject and the earliest block
	// number the material could have been known at.
	Random(subject []byte) (common.Hash, idx.Block)
}

// History exposes the recent block hashes the material is drawn from.
type History interface {
	BlockNumber() idx.Block
	RecentHashes() []common.Hash
}

// CollectiveFlip is a Source over a window of recent block hashes.
type CollectiveFlip struct {
	history History
}

// NewCollectiveFlip returns a Source reading block hashes from history.
func NewCollectiveFlip(history History) *CollectiveFlip {
	return &CollectiveFlip{history: history}
}

type mixInput struct {
	Index   uint32
	Subject []byte
	Hash    common.Hash
}

// Random implements Source. Every recent hash is tagged with its index and
// the subject, hashed, and the results are XOR-folded. With no history yet
// the material is the zero hash.
func (f *CollectiveFlip) Random(subject []byte) (common.Hash, idx.Block) {
	current := f.history.BlockNumber()
	hashes := f.history.RecentHashes()

	var seed common.Hash
	for i, h := range hashes {
		enc, err := rlp.EncodeToBytes(&mixInput{uint32(i), subject, h})
		if err != nil {
			panic("can't encode: " + err.Error())
		}
		mixed := crypto.Keccak256Hash(enc)
		for j := range seed {
			seed[j] ^= mixed[j]
		}
	}

	window := idx.Block(len(hashes))
	if current < window {
		return seed, 0
	}
	return seed, current - window
}

// Fixed is a Source returning the same material for every subject, for tests.
type Fixed struct {
	Hash  common.Hash
	Block idx.Block
}

// Random implements Source.
func (f Fixed) Random([]byte) (common.Hash, idx.Block) {
	return f.Hash, f.Block
}
