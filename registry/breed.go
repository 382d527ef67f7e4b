package registry

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/opera-collectibles/inter"
)

// BreedAsset mints a child of two assets owned by caller. Each dna bit of
// the child comes from one parent, chosen by a fresh random mask. The child
// gets its own gender and is subject to the same deposit and capacity rules
// as a created asset.
func (r *Registry) BreedAsset(caller common.Address, parent1, parent2 inter.AssetID) (inter.AssetID, error) {
	var id inter.AssetID
	_, err := r.transactional(func(tx *txn) (err error) {
		id, err = tx.breed(caller, parent1, parent2)
		return err
	})
	return id, err
}

func (tx *txn) breed(caller common.Address, parent1, parent2 inter.AssetID) (inter.AssetID, error) {
	p1, err := tx.ownedAsset(caller, parent1)
	if err != nil {
		return inter.AssetID{}, err
	}
	p2, err := tx.ownedAsset(caller, parent2)
	if err != nil {
		return inter.AssetID{}, err
	}

	dna := inter.BlendDna(tx.r.genDna(), p1.Dna, p2.Dna)
	id, err := tx.mint(caller, &dna, nil)
	if err != nil {
		return id, err
	}
	tx.emit(inter.Created{Owner: caller, ID: id})
	return id, nil
}
