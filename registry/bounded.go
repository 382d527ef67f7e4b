package registry

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/opera-collectibles/inter"
)

// BoundedIDs is an ordered list of asset ids that never grows past its bound.
// The bound is not encoded; it is supplied by the store when decoding.
type BoundedIDs struct {
	ids   []inter.AssetID
	bound uint32
}

// NewBoundedIDs returns an empty list with the given capacity.
func NewBoundedIDs(bound uint32) *BoundedIDs {
	return &BoundedIDs{bound: bound}
}

// Len returns the number of ids.
func (b *BoundedIDs) Len() int { return len(b.ids) }

// Bound returns the capacity.
func (b *BoundedIDs) Bound() uint32 { return b.bound }

// IDs returns a copy of the ids in order.
func (b *BoundedIDs) IDs() []inter.AssetID {
	return append([]inter.AssetID(nil), b.ids...)
}

// Contains reports whether id is in the list.
func (b *BoundedIDs) Contains(id inter.AssetID) bool {
	return b.indexOf(id) >= 0
}

// TryPush appends id. It returns false and leaves the list unchanged when
// the list is full.
func (b *BoundedIDs) TryPush(id inter.AssetID) bool {
	if uint32(len(b.ids)) >= b.bound {
		return false
	}
	b.ids = append(b.ids, id)
	return true
}

// Remove deletes id, moving the last element into its place. It returns
// false when id is absent.
func (b *BoundedIDs) Remove(id inter.AssetID) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	last := len(b.ids) - 1
	b.ids[i] = b.ids[last]
	b.ids = b.ids[:last]
	return true
}

func (b *BoundedIDs) indexOf(id inter.AssetID) int {
	for i, x := range b.ids {
		if x == id {
			return i
		}
	}
	return -1
}

// EncodeRLP implements rlp.Encoder.
func (b *BoundedIDs) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, b.ids)
}

// DecodeRLP implements rlp.Decoder. A stored list longer than the bound is
// kept as is; the bound only stops it from growing.
func (b *BoundedIDs) DecodeRLP(s *rlp.Stream) error {
	var ids []inter.AssetID
	if err := s.Decode(&ids); err != nil {
		return err
	}
	b.ids = ids
	return nil
}
