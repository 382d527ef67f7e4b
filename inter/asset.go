// Package inter defines the registry's core data structures: the collectible
// Asset record, its genetic payload (Dna), and the notifications emitted when
// registry state changes.
//
// Key concepts:
//   - Asset: the collectible record (dna, optional price, gender, owner)
//   - AssetID: content hash of the asset record as it looked at creation time
//   - Dna: fixed 16-byte genetic payload, the input to breeding
//
// Usage:
//
//	asset := inter.Asset{Dna: dna, Gender: inter.Female, Owner: owner}
//	id := asset.ContentHash()
//
// Assets are serialized with RLP. The price is encoded as a list with zero or
// one element so "not for sale" and "for sale at 0" never collide, which keeps
// the content hash canonical.
package inter

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// DnaLength is the size of the genetic payload in bytes.
const DnaLength = 16

// ErrMalformedAsset is returned when a stored asset record is not canonically encoded.
var ErrMalformedAsset = errors.New("malformed asset encoding")

// Balance is an amount of the ledger's native currency.
type Balance uint64

// Dna is the immutable genetic payload of an asset.
type Dna [DnaLength]byte

// Hex returns the 0x-prefixed hex form of the dna.
func (d Dna) Hex() string { return hexutil.Encode(d[:]) }

// String implements fmt.Stringer.
func (d Dna) String() string { return d.Hex() }

// BlendDna mixes two parents bit by bit: where the mask bit is 1 the child
// takes the bit of a, where it is 0 the bit of b.
func BlendDna(mask, a, b Dna) Dna {
	var child Dna
	for i := range child {
		child[i] = (mask[i] & a[i]) | (^mask[i] & b[i])
	}
	return child
}

// Gender of an asset. It is drawn at creation and never inherited.
type Gender uint8

const (
	Male Gender = iota
	Female
)

// String implements fmt.Stringer.
func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return fmt.Sprintf("gender(%d)", uint8(g))
	}
}

// AssetID identifies an asset. It is the Keccak256 hash of the RLP encoding of
// the asset as it was minted (price unset).
type AssetID common.Hash

// BytesToAssetID converts b to an AssetID, cropping from the left if b is longer than 32 bytes.
func BytesToAssetID(b []byte) AssetID { return AssetID(common.BytesToHash(b)) }

// HexToAssetID parses a hex string into an AssetID.
func HexToAssetID(s string) (AssetID, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return AssetID{}, err
	}
	if len(b) != common.HashLength {
		return AssetID{}, fmt.Errorf("asset id must be %d bytes, got %d", common.HashLength, len(b))
	}
	return BytesToAssetID(b), nil
}

// Bytes returns the raw id bytes.
func (id AssetID) Bytes() []byte { return id[:] }

// Hex returns the 0x-prefixed hex form of the id.
func (id AssetID) Hex() string { return common.Hash(id).Hex() }

// String implements fmt.Stringer.
func (id AssetID) String() string { return id.Hex() }

// Asset is the collectible record.
type Asset struct {
	// Dna is the genetic payload. Immutable after creation.
	Dna Dna

	// Price is the ask price. nil means the asset is not for sale.
	Price *Balance

	// Gender is drawn at creation and never changes.
	Gender Gender

	// Owner is the account currently holding the asset.
	Owner common.Address
}

// assetRLP is the canonical wire form of Asset.
type assetRLP struct {
	Dna    Dna
	Price  []Balance
	Gender Gender
	Owner  common.Address
}

// EncodeRLP implements rlp.Encoder.
func (a *Asset) EncodeRLP(w io.Writer) error {
	enc := assetRLP{
		Dna:    a.Dna,
		Gender: a.Gender,
		Owner:  a.Owner,
	}
	if a.Price != nil {
		enc.Price = []Balance{*a.Price}
	}
	return rlp.Encode(w, &enc)
}

// DecodeRLP implements rlp.Decoder.
func (a *Asset) DecodeRLP(s *rlp.Stream) error {
	var dec assetRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	if len(dec.Price) > 1 || dec.Gender > Female {
		return ErrMalformedAsset
	}
	a.Dna = dec.Dna
	a.Gender = dec.Gender
	a.Owner = dec.Owner
	a.Price = nil
	if len(dec.Price) == 1 {
		price := dec.Price[0]
		a.Price = &price
	}
	return nil
}

// ContentHash returns the Keccak256 hash of the RLP-encoded asset. Hashing a
// freshly minted record yields its AssetID.
func (a *Asset) ContentHash() AssetID {
	enc, err := rlp.EncodeToBytes(a)
	if err != nil {
		panic("can't hash: " + err.Error())
	}
	return AssetID(crypto.Keccak256Hash(enc))
}

// ForSale reports whether the asset has an ask price.
func (a *Asset) ForSale() bool { return a.Price != nil }

// PriceString renders an optional price for logs and CLI output.
func PriceString(p *Balance) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *p)
}
