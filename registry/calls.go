package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/opera-collectibles/inter"
)

// Call is one registry operation, applied on behalf of a caller.
type Call interface {
	// Name is the operation name used in logs and receipts.
	Name() string
	fmt.Stringer

	apply(tx *txn, caller common.Address) error
}

// CreateCall mints a new asset to the caller.
type CreateCall struct{}

// SetPriceCall lists or delists an asset.
type SetPriceCall struct {
	ID    inter.AssetID
	Price *inter.Balance
}

// TransferCall gives an asset away.
type TransferCall struct {
	ID inter.AssetID
	To common.Address
}

// BuyCall buys an asset for a bid.
type BuyCall struct {
	ID  inter.AssetID
	Bid inter.Balance
}

// BreedCall mints a child of two owned assets.
type BreedCall struct {
	Parent1 inter.AssetID
	Parent2 inter.AssetID
}

func (CreateCall) Name() string   { return "create" }
func (SetPriceCall) Name() string { return "set-price" }
func (TransferCall) Name() string { return "transfer" }
func (BuyCall) Name() string      { return "buy" }
func (BreedCall) Name() string    { return "breed" }

func (c CreateCall) String() string { return "create()" }

func (c SetPriceCall) String() string {
	return fmt.Sprintf("set-price(%s, %s)", c.ID, inter.PriceString(c.Price))
}

func (c TransferCall) String() string {
	return fmt.Sprintf("transfer(%s, %s)", c.ID, c.To.Hex())
}

func (c BuyCall) String() string {
	return fmt.Sprintf("buy(%s, %d)", c.ID, c.Bid)
}

func (c BreedCall) String() string {
	return fmt.Sprintf("breed(%s, %s)", c.Parent1, c.Parent2)
}

func (c CreateCall) apply(tx *txn, caller common.Address) error {
	_, err := tx.create(caller)
	return err
}

func (c SetPriceCall) apply(tx *txn, caller common.Address) error {
	return tx.setPrice(caller, c.ID, c.Price)
}

func (c TransferCall) apply(tx *txn, caller common.Address) error {
	return tx.transfer(caller, c.ID, c.To)
}

func (c BuyCall) apply(tx *txn, caller common.Address) error {
	return tx.buy(caller, c.ID, c.Bid)
}

func (c BreedCall) apply(tx *txn, caller common.Address) error {
	_, err := tx.breed(caller, c.Parent1, c.Parent2)
	return err
}

// Dispatch applies call on behalf of caller in one atomic scope and returns
// the events it emitted.
func (r *Registry) Dispatch(caller common.Address, call Call) ([]inter.Event, error) {
	events, err := r.transactional(func(tx *txn) error {
		return call.apply(tx, caller)
	})
	if err != nil {
		r.log.WithField("call", call.String()).WithError(err).Debug("Call failed")
	}
	return events, err
}
