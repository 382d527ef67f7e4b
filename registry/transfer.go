package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/opera-collectibles/inter"
)

// Transfer gives asset id from caller to another account.
// The deposit moves to the new owner and the price is cleared.
func (r *Registry) Transfer(caller common.Address, id inter.AssetID, to common.Address) error {
	_, err := r.transactional(func(tx *txn) error {
		return tx.transfer(caller, id, to)
	})
	return err
}

func (tx *txn) transfer(caller common.Address, id inter.AssetID, to common.Address) error {
	if _, err := tx.ownedAsset(caller, id); err != nil {
		return err
	}
	if caller == to {
		return ErrTransferToSelf
	}
	if err := tx.transferTo(id, to); err != nil {
		return err
	}
	tx.emit(inter.Transferred{From: caller, To: to, ID: id})
	return nil
}

// transferTo moves asset id and its deposit to a new owner in one nested scope.
// Unreserving the old owner's deposit is best effort.
func (tx *txn) transferTo(id inter.AssetID, to common.Address) error {
	return tx.nested(func(tx *txn) error {
		r := tx.r
		asset := tx.store.GetAsset(id)
		if asset == nil {
			return ErrAssetNotFound
		}
		from := asset.Owner

		fee := r.rules.ReservationFee
		if err := tx.currency.Reserve(to, fee); err != nil {
			return fmt.Errorf("%w: %w", ErrReserveBalanceFailed, err)
		}
		if remainder := tx.currency.Unreserve(from, fee); remainder != 0 {
			r.log.WithFields(logrus.Fields{
				"owner":     from.Hex(),
				"id":        id.Hex(),
				"remainder": remainder,
			}).Warn("Deposit only partially unreserved")
		}

		if !tx.store.RemoveOwned(from, id) {
			return ErrAssetNotFound
		}
		if !tx.store.TryPushOwned(to, id) {
			return ErrExceedMaxOwned
		}

		asset.Owner = to
		asset.Price = nil
		tx.store.SetAsset(id, asset)

		r.log.WithFields(logrus.Fields{
			"from": from.Hex(),
			"to":   to.Hex(),
			"id":   id.Hex(),
		}).Debug("Asset transferred")
		return nil
	})
}
