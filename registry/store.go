package registry

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/opera-collectibles/inter"
)

var countKey = []byte("count")

// Store is the persisted registry state: assets by id, the ownership index
// and the count of created assets.
type Store struct {
	table struct {
		Assets kvdb.Store `table:"ra"`
		Owned  kvdb.Store `table:"ro"`
		Meta   kvdb.Store `table:"rm"`
	}
	maxOwned uint32
}

// NewStore binds the registry tables to db.
func NewStore(db kvdb.Store, maxOwned uint32) *Store {
	s := &Store{maxOwned: maxOwned}
	table.MigrateTables(&s.table, db)
	return s
}

// GetAsset returns the stored asset, or nil.
func (s *Store) GetAsset(id inter.AssetID) *inter.Asset {
	asset, _ := s.rlp(s.table.Assets, id.Bytes(), &inter.Asset{}).(*inter.Asset)
	return asset
}

// HasAsset reports whether an asset with id exists.
func (s *Store) HasAsset(id inter.AssetID) bool {
	ok, err := s.table.Assets.Has(id.Bytes())
	if err != nil {
		log.Crit("Failed to get key-value", "err", err)
	}
	return ok
}

// SetAsset stores the asset under id.
func (s *Store) SetAsset(id inter.AssetID, asset *inter.Asset) {
	s.setRlp(s.table.Assets, id.Bytes(), asset)
}

// AssetsOwned returns the ownership entry of who, empty if it has none.
func (s *Store) AssetsOwned(who common.Address) *BoundedIDs {
	owned := NewBoundedIDs(s.maxOwned)
	if s.rlp(s.table.Owned, who.Bytes(), owned) == nil {
		return NewBoundedIDs(s.maxOwned)
	}
	return owned
}

// SetAssetsOwned stores the ownership entry of who. Empty entries are deleted.
func (s *Store) SetAssetsOwned(who common.Address, owned *BoundedIDs) {
	if owned.Len() == 0 {
		if err := s.table.Owned.Delete(who.Bytes()); err != nil {
			log.Crit("Failed to erase key-value", "err", err)
		}
		return
	}
	s.setRlp(s.table.Owned, who.Bytes(), owned)
}

// TryPushOwned appends id to who's entry. It returns false without writing
// when the entry is full.
func (s *Store) TryPushOwned(who common.Address, id inter.AssetID) bool {
	owned := s.AssetsOwned(who)
	if !owned.TryPush(id) {
		return false
	}
	s.SetAssetsOwned(who, owned)
	return true
}

// RemoveOwned swap-removes id from who's entry. It returns false without
// writing when id is not there.
func (s *Store) RemoveOwned(who common.Address, id inter.AssetID) bool {
	owned := s.AssetsOwned(who)
	if !owned.Remove(id) {
		return false
	}
	s.SetAssetsOwned(who, owned)
	return true
}

// GetCount returns the number of assets ever created.
func (s *Store) GetCount() uint64 {
	b, err := s.table.Meta.Get(countKey)
	if err != nil {
		log.Crit("Failed to get key-value", "err", err)
	}
	if b == nil {
		return 0
	}
	return bigendian.BytesToUint64(b)
}

// SetCount overwrites the asset count.
func (s *Store) SetCount(n uint64) {
	if err := s.table.Meta.Put(countKey, bigendian.Uint64ToBytes(n)); err != nil {
		log.Crit("Failed to put key-value", "err", err)
	}
}

// IncrementCount adds one to the asset count.
func (s *Store) IncrementCount() error {
	n := s.GetCount()
	if n+1 < n {
		return ErrCountOverflow
	}
	s.SetCount(n + 1)
	return nil
}

// ForEachAsset calls fn for every stored asset until fn returns false.
func (s *Store) ForEachAsset(fn func(id inter.AssetID, asset *inter.Asset) bool) {
	it := s.table.Assets.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		var asset inter.Asset
		if err := rlp.DecodeBytes(it.Value(), &asset); err != nil {
			log.Crit("Failed to decode rlp", "err", err, "size", len(it.Value()))
		}
		if !fn(inter.BytesToAssetID(it.Key()), &asset) {
			return
		}
	}
	if it.Error() != nil {
		log.Crit("Failed to iterate assets", "err", it.Error())
	}
}

// ForEachOwner calls fn for every non-empty ownership entry until fn returns false.
func (s *Store) ForEachOwner(fn func(who common.Address, owned *BoundedIDs) bool) {
	it := s.table.Owned.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		owned := NewBoundedIDs(s.maxOwned)
		if err := rlp.DecodeBytes(it.Value(), owned); err != nil {
			log.Crit("Failed to decode rlp", "err", err, "size", len(it.Value()))
		}
		if !fn(common.BytesToAddress(it.Key()), owned) {
			return
		}
	}
	if it.Error() != nil {
		log.Crit("Failed to iterate owners", "err", it.Error())
	}
}

func (s *Store) rlp(t kvdb.Store, key []byte, to interface{}) interface{} {
	buf, err := t.Get(key)
	if err != nil {
		log.Crit("Failed to get key-value", "err", err)
	}
	if buf == nil {
		return nil
	}
	if err := rlp.DecodeBytes(buf, to); err != nil {
		log.Crit("Failed to decode rlp", "err", err, "size", len(buf))
	}
	return to
}

func (s *Store) setRlp(t kvdb.Store, key []byte, val interface{}) {
	buf, err := rlp.EncodeToBytes(val)
	if err != nil {
		log.Crit("Failed to encode rlp", "err", err)
	}
	if err := t.Put(key, buf); err != nil {
		log.Crit("Failed to put key-value", "err", err)
	}
}
