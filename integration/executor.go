package integration

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/opera-collectibles/chain"
	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/registry"
)

// Extrinsic is a registry call signed by its caller.
type Extrinsic struct {
	Caller common.Address
	Call   registry.Call
}

// Receipt is the outcome of one extrinsic. A failed extrinsic has Err set
// and no events; its state changes were discarded.
type Receipt struct {
	Index  uint32
	Caller common.Address
	Call   registry.Call
	Err    error
	Events []inter.Event
}

// Failed reports whether the extrinsic was rejected.
func (r Receipt) Failed() bool {
	return r.Err != nil
}

// NextBlockTime returns the head time plus the block period.
func (n *Node) NextBlockTime() inter.Timestamp {
	return n.Chain.Head().Time + n.rules.Blocks.BlockPeriod
}

// ExecuteBlock opens a new block at time and applies xs in order, each in
// its own atomic scope. A failing extrinsic does not stop the block.
func (n *Node) ExecuteBlock(time inter.Timestamp, xs []Extrinsic) (chain.Header, []Receipt) {
	header := n.Chain.NextBlock(time)
	defer n.Chain.ClearExtrinsicIndex()

	receipts := make([]Receipt, 0, len(xs))
	failed := 0
	for i, x := range xs {
		n.Chain.SetExtrinsicIndex(uint32(i))
		events, err := n.Registry.Dispatch(x.Caller, x.Call)
		if err != nil {
			failed++
		}
		receipts = append(receipts, Receipt{
			Index:  uint32(i),
			Caller: x.Caller,
			Call:   x.Call,
			Err:    err,
			Events: events,
		})
	}

	n.log.WithFields(logrus.Fields{
		"number":     header.Number,
		"extrinsics": len(xs),
		"failed":     failed,
	}).Info("Block executed")
	return header, receipts
}

// ExecuteNext runs ExecuteBlock one block period after the head.
func (n *Node) ExecuteNext(xs ...Extrinsic) (chain.Header, []Receipt) {
	return n.ExecuteBlock(n.NextBlockTime(), xs)
}
