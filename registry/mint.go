package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/opera-collectibles/inter"
)

// CreateAsset mints a new asset with fresh dna and gender to caller.
func (r *Registry) CreateAsset(caller common.Address) (inter.AssetID, error) {
	var id inter.AssetID
	_, err := r.transactional(func(tx *txn) (err error) {
		id, err = tx.create(caller)
		return err
	})
	return id, err
}

func (tx *txn) create(caller common.Address) (inter.AssetID, error) {
	id, err := tx.mint(caller, nil, nil)
	if err != nil {
		return id, err
	}
	tx.emit(inter.Created{Owner: caller, ID: id})
	return id, nil
}

// mint creates an asset owned by owner. Missing dna or gender is generated.
// Steps:
//  1. reserve the deposit
//  2. bump the count
//  3. refuse an id that already exists
//  4. push the id into the owner's entry
//  5. store the asset
func (tx *txn) mint(owner common.Address, dna *inter.Dna, gender *inter.Gender) (inter.AssetID, error) {
	r := tx.r
	asset := inter.Asset{Owner: owner}
	if dna != nil {
		asset.Dna = *dna
	} else {
		asset.Dna = r.genDna()
	}
	if gender != nil {
		asset.Gender = *gender
	} else {
		asset.Gender = r.genGender()
	}
	id := asset.ContentHash()

	if err := tx.currency.Reserve(owner, r.rules.ReservationFee); err != nil {
		return id, fmt.Errorf("%w: %w", ErrReserveBalanceFailed, err)
	}
	if err := tx.store.IncrementCount(); err != nil {
		return id, err
	}
	if tx.store.HasAsset(id) {
		return id, ErrAssetAlreadyExists
	}
	if !tx.store.TryPushOwned(owner, id) {
		return id, ErrExceedMaxOwned
	}
	tx.store.SetAsset(id, &asset)

	r.log.WithFields(logrus.Fields{
		"owner":  owner.Hex(),
		"id":     id.Hex(),
		"dna":    asset.Dna.Hex(),
		"gender": asset.Gender.String(),
	}).Debug("Asset minted")
	return id, nil
}
