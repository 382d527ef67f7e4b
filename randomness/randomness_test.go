package randomness

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type testHistory struct {
	block  idx.Block
	hashes []common.Hash
}

func (h *testHistory) BlockNumber() idx.Block      { return h.block }
func (h *testHistory) RecentHashes() []common.Hash { return h.hashes }

func TestCollectiveFlipEmptyHistory(t *testing.T) {
	f := NewCollectiveFlip(&testHistory{block: 1})
	seed, at := f.Random([]byte("gen_dna"))
	require.Equal(t, common.Hash{}, seed)
	require.Equal(t, idx.Block(1), at)
}

func TestCollectiveFlip(t *testing.T) {
	h := &testHistory{
		block:  5,
		hashes: []common.Hash{{0x01}, {0x02}, {0x03}},
	}
	f := NewCollectiveFlip(h)

	dna, at := f.Random([]byte("gen_dna"))
	require.NotEqual(t, common.Hash{}, dna)
	require.Equal(t, idx.Block(2), at)

	again, _ := f.Random([]byte("gen_dna"))
	require.Equal(t, dna, again, "same subject and history must give the same material")

	gender, _ := f.Random([]byte("gen_gender"))
	require.NotEqual(t, dna, gender, "subjects must be separated")

	h.hashes = append(h.hashes, common.Hash{0x04})
	h.block = 2
	next, at := f.Random([]byte("gen_dna"))
	require.NotEqual(t, dna, next)
	require.Equal(t, idx.Block(0), at)
}

func TestCollectiveFlipOrderMatters(t *testing.T) {
	a := NewCollectiveFlip(&testHistory{block: 10, hashes: []common.Hash{{0x01}, {0x02}}})
	b := NewCollectiveFlip(&testHistory{block: 10, hashes: []common.Hash{{0x02}, {0x01}}})

	ra, _ := a.Random([]byte("x"))
	rb, _ := b.Random([]byte("x"))
	require.NotEqual(t, ra, rb)
}
