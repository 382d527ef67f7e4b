package registry

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"

	"github.com/rony4d/opera-collectibles/inter"
)

var (
	dnaSubject    = []byte("gen_dna")
	genderSubject = []byte("gen_gender")
)

type dnaPayload struct {
	Seed      common.Hash
	Extrinsic uint32
	Block     idx.Block
}

// genDna draws fresh dna: the random material for "gen_dna", the current
// extrinsic index (0 outside an extrinsic) and the block number, RLP encoded
// and hashed to 128 bits.
func (r *Registry) genDna() inter.Dna {
	seed, _ := r.random.Random(dnaSubject)
	extrinsic, _ := r.ctx.ExtrinsicIndex()
	enc, err := rlp.EncodeToBytes(&dnaPayload{
		Seed:      seed,
		Extrinsic: extrinsic,
		Block:     r.ctx.BlockNumber(),
	})
	if err != nil {
		panic("can't encode: " + err.Error())
	}

	h, err := blake2b.New(inter.DnaLength, nil)
	if err != nil {
		panic(err)
	}
	h.Write(enc)

	var dna inter.Dna
	copy(dna[:], h.Sum(nil))
	return dna
}

// genGender is Male when the lowest bit of the "gen_gender" material is 0.
func (r *Registry) genGender() inter.Gender {
	seed, _ := r.random.Random(genderSubject)
	if seed[0]&1 == 0 {
		return inter.Male
	}
	return inter.Female
}
