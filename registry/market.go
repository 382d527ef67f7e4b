package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/ledger"
)

// SetPrice lists asset id for sale at price, or delists it when price is nil.
func (r *Registry) SetPrice(caller common.Address, id inter.AssetID, price *inter.Balance) error {
	_, err := r.transactional(func(tx *txn) error {
		return tx.setPrice(caller, id, price)
	})
	return err
}

func (tx *txn) setPrice(caller common.Address, id inter.AssetID, price *inter.Balance) error {
	asset, err := tx.ownedAsset(caller, id)
	if err != nil {
		return err
	}
	asset.Price = nil
	if price != nil {
		p := *price
		asset.Price = &p
	}
	tx.store.SetAsset(id, asset)
	tx.emit(inter.PriceSet{Owner: caller, ID: id, Price: asset.Price})

	tx.r.log.WithFields(logrus.Fields{
		"owner": caller.Hex(),
		"id":    id.Hex(),
		"price": inter.PriceString(asset.Price),
	}).Debug("Asset price set")
	return nil
}

// BuyAsset buys asset id for bid. The bid must exceed the ask price; the
// whole bid is paid to the seller.
func (r *Registry) BuyAsset(buyer common.Address, id inter.AssetID, bid inter.Balance) error {
	_, err := r.transactional(func(tx *txn) error {
		return tx.buy(buyer, id, bid)
	})
	return err
}

func (tx *txn) buy(buyer common.Address, id inter.AssetID, bid inter.Balance) error {
	asset := tx.store.GetAsset(id)
	if asset == nil {
		return ErrAssetNotFound
	}
	seller := asset.Owner
	if seller == buyer {
		return ErrBuyerIsOwner
	}
	if !asset.ForSale() {
		return ErrNotForSale
	}
	if !(*asset.Price < bid) {
		return ErrBidTooLow
	}
	if tx.currency.FreeBalance(buyer) < bid {
		return ErrInsufficientBalance
	}

	if err := tx.currency.Transfer(buyer, seller, bid, ledger.KeepAlive); err != nil {
		return fmt.Errorf("registry: payment failed: %w", err)
	}
	if err := tx.transferTo(id, buyer); err != nil {
		return err
	}
	tx.emit(inter.Bought{Buyer: buyer, Seller: seller, ID: id, Price: bid})

	tx.r.log.WithFields(logrus.Fields{
		"buyer":  buyer.Hex(),
		"seller": seller.Hex(),
		"id":     id.Hex(),
		"bid":    bid,
	}).Debug("Asset bought")
	return nil
}
