package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/opera-collectibles/inter"
)

var (
	// capacity and overflow
	ErrCountOverflow  = errors.New("registry: asset count overflow")
	ErrExceedMaxOwned = errors.New("registry: account owns too many assets")

	// authorization
	ErrNotOwner = errors.New("registry: caller is not the asset owner")

	// conflict and state
	ErrAssetAlreadyExists = errors.New("registry: asset already exists")
	ErrAssetNotFound      = errors.New("registry: asset not found")

	// marketplace
	ErrBuyerIsOwner        = errors.New("registry: buyer already owns the asset")
	ErrTransferToSelf      = errors.New("registry: transfer to self")
	ErrNotForSale          = errors.New("registry: asset is not for sale")
	ErrBidTooLow           = errors.New("registry: bid does not exceed the ask price")
	ErrInsufficientBalance = errors.New("registry: insufficient free balance for the bid")

	// collaborators
	ErrReserveBalanceFailed = errors.New("registry: failed to reserve the deposit")

	ErrInvariant = errors.New("registry: invariant violated")
)

// OwnershipError reports a caller acting on an asset it does not own.
// It always matches ErrNotOwner, and also ErrAssetNotFound when the asset
// does not exist at all.
type OwnershipError struct {
	Caller  common.Address
	ID      inter.AssetID
	Missing bool
}

func (e *OwnershipError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: %s does not exist (caller %s)", ErrNotOwner, e.ID, e.Caller.Hex())
	}
	return fmt.Sprintf("%s: %s is not owned by %s", ErrNotOwner, e.ID, e.Caller.Hex())
}

// Is makes OwnershipError match the sentinels with errors.Is.
func (e *OwnershipError) Is(target error) bool {
	return target == ErrNotOwner || (e.Missing && target == ErrAssetNotFound)
}
