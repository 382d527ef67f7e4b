package integration

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/rony4d/opera-collectibles/chain"
	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera/genesis"
	"github.com/rony4d/opera-collectibles/registry"
)

var (
	ErrUnknownCall  = errors.New("scenario: unknown call")
	ErrUnboundAsset = errors.New("scenario: unbound asset name")
	ErrBadAccount   = errors.New("scenario: bad account")
)

// Scenario is a script of blocks of extrinsics.
//
//	blocks:
//	  - extrinsics:
//	      - {caller: 1, call: create, as: first}
//	  - after: 30s
//	    extrinsics:
//	      - {caller: 1, call: set-price, asset: $first, price: 150}
//	      - {caller: 2, call: buy, asset: $first, bid: 151}
//
// Callers are fake account indexes or hex addresses. Assets are hex ids or
// $names bound by an earlier block's create or breed with "as".
type Scenario struct {
	Blocks []ScenarioBlock `yaml:"blocks"`
}

// ScenarioBlock is one block. After overrides the block period.
type ScenarioBlock struct {
	After      time.Duration       `yaml:"after"`
	Extrinsics []ScenarioExtrinsic `yaml:"extrinsics"`
}

// ScenarioExtrinsic is the script form of one call.
type ScenarioExtrinsic struct {
	Caller  string         `yaml:"caller"`
	Call    string         `yaml:"call"`
	Asset   string         `yaml:"asset"`
	Parents []string       `yaml:"parents"`
	To      string         `yaml:"to"`
	Price   *inter.Balance `yaml:"price"`
	Bid     inter.Balance  `yaml:"bid"`
	As      string         `yaml:"as"`
}

// BlockResult is the outcome of one scenario block.
type BlockResult struct {
	Header   chain.Header
	Receipts []Receipt
}

// ParseScenario decodes a YAML scenario. Unknown keys are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	for i, b := range s.Blocks {
		for j, x := range b.Extrinsics {
			if _, err := ParseAccount(x.Caller); err != nil {
				return nil, fmt.Errorf("block %d extrinsic %d: %w", i, j, err)
			}
			switch x.Call {
			case "create", "set-price", "transfer", "buy", "breed":
			default:
				return nil, fmt.Errorf("block %d extrinsic %d: %w %q", i, j, ErrUnknownCall, x.Call)
			}
		}
	}
	return &s, nil
}

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseAccount reads a hex address or a fake account index.
func ParseAccount(s string) (common.Address, error) {
	if common.IsHexAddress(s) {
		return common.HexToAddress(s), nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w %q", ErrBadAccount, s)
	}
	return genesis.FakeAccount(uint32(n)), nil
}

// Run executes the scenario on n block by block. Names bound by "as" are
// visible from the next block on. Failed extrinsics are reported in the
// receipts, not as an error.
func (s *Scenario) Run(n *Node) ([]BlockResult, error) {
	names := make(map[string]inter.AssetID)
	results := make([]BlockResult, 0, len(s.Blocks))

	for i, b := range s.Blocks {
		xs := make([]Extrinsic, 0, len(b.Extrinsics))
		for j, x := range b.Extrinsics {
			ext, err := x.resolve(names)
			if err != nil {
				return results, fmt.Errorf("block %d extrinsic %d: %w", i, j, err)
			}
			xs = append(xs, ext)
		}

		at := n.NextBlockTime()
		if b.After != 0 {
			at = n.Chain.Head().Time + inter.Timestamp(b.After)
		}
		header, receipts := n.ExecuteBlock(at, xs)

		for j, r := range receipts {
			name := b.Extrinsics[j].As
			if name == "" || r.Failed() {
				continue
			}
			for _, e := range r.Events {
				if created, ok := e.(inter.Created); ok {
					names[name] = created.ID
				}
			}
		}
		results = append(results, BlockResult{Header: header, Receipts: receipts})
	}
	return results, nil
}

func (x ScenarioExtrinsic) resolve(names map[string]inter.AssetID) (Extrinsic, error) {
	caller, err := ParseAccount(x.Caller)
	if err != nil {
		return Extrinsic{}, err
	}
	asset := func(ref string) (inter.AssetID, error) {
		if name, ok := strings.CutPrefix(ref, "$"); ok {
			id, bound := names[name]
			if !bound {
				return inter.AssetID{}, fmt.Errorf("%w %q", ErrUnboundAsset, name)
			}
			return id, nil
		}
		return inter.HexToAssetID(ref)
	}

	var call registry.Call
	switch x.Call {
	case "create":
		call = registry.CreateCall{}
	case "set-price":
		id, err := asset(x.Asset)
		if err != nil {
			return Extrinsic{}, err
		}
		call = registry.SetPriceCall{ID: id, Price: x.Price}
	case "transfer":
		id, err := asset(x.Asset)
		if err != nil {
			return Extrinsic{}, err
		}
		to, err := ParseAccount(x.To)
		if err != nil {
			return Extrinsic{}, err
		}
		call = registry.TransferCall{ID: id, To: to}
	case "buy":
		id, err := asset(x.Asset)
		if err != nil {
			return Extrinsic{}, err
		}
		call = registry.BuyCall{ID: id, Bid: x.Bid}
	case "breed":
		if len(x.Parents) != 2 {
			return Extrinsic{}, fmt.Errorf("breed needs 2 parents, got %d", len(x.Parents))
		}
		p1, err := asset(x.Parents[0])
		if err != nil {
			return Extrinsic{}, err
		}
		p2, err := asset(x.Parents[1])
		if err != nil {
			return Extrinsic{}, err
		}
		call = registry.BreedCall{Parent1: p1, Parent2: p2}
	default:
		return Extrinsic{}, fmt.Errorf("%w %q", ErrUnknownCall, x.Call)
	}
	return Extrinsic{Caller: caller, Call: call}, nil
}
