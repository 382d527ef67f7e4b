package inter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Event is a notification produced by a committed registry operation.
type Event interface {
	// Name is the short event name ("Created", "PriceSet", ...).
	Name() string
	fmt.Stringer
}

// Created is emitted when an asset is minted, directly or by breeding.
type Created struct {
	Owner common.Address
	ID    AssetID
}

// PriceSet is emitted when an owner lists, relists or delists an asset.
type PriceSet struct {
	Owner common.Address
	ID    AssetID
	Price *Balance
}

// Transferred is emitted when an owner gives an asset away.
type Transferred struct {
	From common.Address
	To   common.Address
	ID   AssetID
}

// Bought is emitted when an asset is purchased. Price is the bid actually paid,
// which may exceed the ask.
type Bought struct {
	Buyer  common.Address
	Seller common.Address
	ID     AssetID
	Price  Balance
}

func (Created) Name() string     { return "Created" }
func (PriceSet) Name() string    { return "PriceSet" }
func (Transferred) Name() string { return "Transferred" }
func (Bought) Name() string      { return "Bought" }

func (e Created) String() string {
	return fmt.Sprintf("Created(owner=%s, id=%s)", e.Owner.Hex(), e.ID.Hex())
}

func (e PriceSet) String() string {
	return fmt.Sprintf("PriceSet(owner=%s, id=%s, price=%s)", e.Owner.Hex(), e.ID.Hex(), PriceString(e.Price))
}

func (e Transferred) String() string {
	return fmt.Sprintf("Transferred(from=%s, to=%s, id=%s)", e.From.Hex(), e.To.Hex(), e.ID.Hex())
}

func (e Bought) String() string {
	return fmt.Sprintf("Bought(buyer=%s, seller=%s, id=%s, price=%d)", e.Buyer.Hex(), e.Seller.Hex(), e.ID.Hex(), e.Price)
}
