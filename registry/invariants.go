package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/ledger"
)

// CheckInvariants walks the committed state and returns the first violation of:
//   - every asset is in exactly one ownership entry, its owner's
//   - no entry exceeds the capacity
//   - the count equals the number of stored assets
//   - every account has exactly one deposit reserved per owned asset,
//     so accounts without assets reserve nothing
func (r *Registry) CheckInvariants() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.store(r.db)
	currency := r.currency(r.db)

	holder := make(map[inter.AssetID]common.Address)
	owners := make(map[common.Address]struct{})
	var violation error
	s.ForEachOwner(func(who common.Address, owned *BoundedIDs) bool {
		if uint32(owned.Len()) > r.rules.MaxOwned {
			violation = fmt.Errorf("%w: %s owns %d assets, max %d", ErrInvariant, who.Hex(), owned.Len(), r.rules.MaxOwned)
			return false
		}
		for _, id := range owned.IDs() {
			if prev, ok := holder[id]; ok {
				violation = fmt.Errorf("%w: %s indexed under %s and %s", ErrInvariant, id, prev.Hex(), who.Hex())
				return false
			}
			holder[id] = who
		}
		owners[who] = struct{}{}
		need := inter.Balance(owned.Len()) * r.rules.ReservationFee
		if reserved := currency.ReservedBalance(who); reserved != need {
			violation = fmt.Errorf("%w: %s has %d reserved for %d assets, want %d", ErrInvariant, who.Hex(), reserved, owned.Len(), need)
			return false
		}
		return true
	})
	if violation != nil {
		return violation
	}

	if accounts, ok := currency.(ledger.AccountIterator); ok {
		accounts.ForEachAccount(func(who common.Address) bool {
			if _, ok := owners[who]; ok {
				return true
			}
			if reserved := currency.ReservedBalance(who); reserved != 0 {
				violation = fmt.Errorf("%w: %s has %d reserved and owns no assets", ErrInvariant, who.Hex(), reserved)
				return false
			}
			return true
		})
		if violation != nil {
			return violation
		}
	}

	var stored uint64
	s.ForEachAsset(func(id inter.AssetID, asset *inter.Asset) bool {
		stored++
		who, ok := holder[id]
		if !ok {
			violation = fmt.Errorf("%w: %s is not indexed", ErrInvariant, id)
			return false
		}
		if who != asset.Owner {
			violation = fmt.Errorf("%w: %s owned by %s but indexed under %s", ErrInvariant, id, asset.Owner.Hex(), who.Hex())
			return false
		}
		delete(holder, id)
		return true
	})
	if violation != nil {
		return violation
	}
	for id := range holder {
		return fmt.Errorf("%w: %s is indexed but not stored", ErrInvariant, id)
	}

	if count := s.GetCount(); count != stored {
		return fmt.Errorf("%w: count %d, %d stored assets", ErrInvariant, count, stored)
	}
	return nil
}
