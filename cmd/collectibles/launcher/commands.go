package launcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/opera-collectibles/chain"
	"github.com/rony4d/opera-collectibles/flags"
	"github.com/rony4d/opera-collectibles/integration"
	"github.com/rony4d/opera-collectibles/inter"
	"github.com/rony4d/opera-collectibles/opera/genesis"
	"github.com/rony4d/opera-collectibles/registry"
)

var errMemoryInit = errors.New("init needs a persistent store, memory nodes apply the genesis on every start")

func commands() []cli.Command {
	return []cli.Command{
		{
			Name:      "init",
			Usage:     "Apply the genesis to an empty datadir",
			ArgsUsage: " ",
			Action:    initCommand,
		},
		{
			Name:      "create",
			Usage:     "Mint a new asset to the caller",
			ArgsUsage: " ",
			Flags:     []cli.Flag{flags.FromFlag},
			Action: callCommand(0, func(args cli.Args) (registry.Call, error) {
				return registry.CreateCall{}, nil
			}),
		},
		{
			Name:      "set-price",
			Usage:     "List an asset for sale, or delist it when no price is given",
			ArgsUsage: "<id> [price]",
			Flags:     []cli.Flag{flags.FromFlag},
			Action: callCommand(1, func(args cli.Args) (registry.Call, error) {
				id, err := inter.HexToAssetID(args.Get(0))
				if err != nil {
					return nil, err
				}
				call := registry.SetPriceCall{ID: id}
				if len(args) > 1 {
					price, err := parseBalance(args.Get(1))
					if err != nil {
						return nil, err
					}
					call.Price = &price
				}
				return call, nil
			}),
		},
		{
			Name:      "transfer",
			Usage:     "Give an asset to another account",
			ArgsUsage: "<id> <to>",
			Flags:     []cli.Flag{flags.FromFlag},
			Action: callCommand(2, func(args cli.Args) (registry.Call, error) {
				id, err := inter.HexToAssetID(args.Get(0))
				if err != nil {
					return nil, err
				}
				to, err := integration.ParseAccount(args.Get(1))
				if err != nil {
					return nil, err
				}
				return registry.TransferCall{ID: id, To: to}, nil
			}),
		},
		{
			Name:      "buy",
			Usage:     "Buy a listed asset, the bid must exceed the price",
			ArgsUsage: "<id> <bid>",
			Flags:     []cli.Flag{flags.FromFlag},
			Action: callCommand(2, func(args cli.Args) (registry.Call, error) {
				id, err := inter.HexToAssetID(args.Get(0))
				if err != nil {
					return nil, err
				}
				bid, err := parseBalance(args.Get(1))
				if err != nil {
					return nil, err
				}
				return registry.BuyCall{ID: id, Bid: bid}, nil
			}),
		},
		{
			Name:      "breed",
			Usage:     "Mint a child of two owned assets",
			ArgsUsage: "<parent1> <parent2>",
			Flags:     []cli.Flag{flags.FromFlag},
			Action: callCommand(2, func(args cli.Args) (registry.Call, error) {
				p1, err := inter.HexToAssetID(args.Get(0))
				if err != nil {
					return nil, err
				}
				p2, err := inter.HexToAssetID(args.Get(1))
				if err != nil {
					return nil, err
				}
				return registry.BreedCall{Parent1: p1, Parent2: p2}, nil
			}),
		},
		{
			Name:      "run",
			Usage:     "Execute a YAML scenario, one block per entry",
			ArgsUsage: "<scenario.yaml>",
			Action:    runCommand,
		},
		{
			Name:      "asset",
			Usage:     "Print an asset as JSON",
			ArgsUsage: "<id>",
			Action:    assetCommand,
		},
		{
			Name:      "owned",
			Usage:     "List the assets an account owns",
			ArgsUsage: "<account>",
			Action:    ownedCommand,
		},
		{
			Name:      "balance",
			Usage:     "Print the free and reserved balance of an account",
			ArgsUsage: "<account>",
			Action:    balanceCommand,
		},
		{
			Name:      "verify",
			Usage:     "Check the registry invariants over the stored state",
			ArgsUsage: " ",
			Action:    verifyCommand,
		},
	}
}

func errWriter(ctx *cli.Context) io.Writer {
	if ctx.App.ErrWriter != nil {
		return ctx.App.ErrWriter
	}
	return os.Stderr
}

func makeLogger(ctx *cli.Context) (Config, *logrus.Logger, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := newLogger(cfg.Node.Logging, errWriter(ctx))
	return cfg, logger, err
}

// openNode assembles the node of the configured datadir. Memory nodes get
// the configured genesis each time they start.
func openNode(ctx *cli.Context) (*integration.Node, error) {
	cfg, logger, err := makeLogger(ctx)
	if err != nil {
		return nil, err
	}
	preset, err := cfg.Preset()
	if err != nil {
		return nil, err
	}

	var g *genesis.Genesis
	if preset.DB == integration.MemoryDB {
		if g, err = cfg.MakeGenesis(); err != nil {
			return nil, err
		}
	}
	return integration.Open(cfg.Node.DataDir, preset, g, logger)
}

func initCommand(ctx *cli.Context) error {
	cfg, logger, err := makeLogger(ctx)
	if err != nil {
		return err
	}
	preset, err := cfg.Preset()
	if err != nil {
		return err
	}
	if preset.DB == integration.MemoryDB {
		return errMemoryInit
	}
	g, err := cfg.MakeGenesis()
	if err != nil {
		return err
	}

	if err := ensureDir(cfg.Node.DataDir); err != nil {
		return err
	}
	db, err := integration.OpenStore(cfg.Node.DataDir, preset)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := chain.ApplyGenesis(db, g)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"datadir":  cfg.Node.DataDir,
		"network":  g.Rules.Name,
		"block":    c.BlockNumber(),
		"accounts": len(g.Accounts),
	}).Info("Genesis applied")
	fmt.Fprintln(ctx.App.Writer, g.Rules.String())
	return nil
}

// callCommand returns the action of a one-call command: it executes the
// call as the only extrinsic of the next block.
func callCommand(nargs int, build func(args cli.Args) (registry.Call, error)) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		if len(ctx.Args()) < nargs {
			return fmt.Errorf("%s: expected %d arguments, got %d", ctx.Command.Name, nargs, len(ctx.Args()))
		}
		caller, err := integration.ParseAccount(ctx.String(flags.FromFlag.Name))
		if err != nil {
			return err
		}
		call, err := build(ctx.Args())
		if err != nil {
			return err
		}

		n, err := openNode(ctx)
		if err != nil {
			return err
		}
		defer n.Close()

		header, receipts := n.ExecuteNext(integration.Extrinsic{Caller: caller, Call: call})
		printReceipt(ctx.App.Writer, header, receipts[0])
		return receipts[0].Err
	}
}

func runCommand(ctx *cli.Context) error {
	if len(ctx.Args()) != 1 {
		return errors.New("run: expected a scenario file")
	}
	s, err := integration.LoadScenario(ctx.Args().First())
	if err != nil {
		return err
	}

	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	results, err := s.Run(n)
	for _, res := range results {
		for _, r := range res.Receipts {
			printReceipt(ctx.App.Writer, res.Header, r)
		}
	}
	return err
}

func printReceipt(w io.Writer, header chain.Header, r integration.Receipt) {
	status := "ok"
	if r.Failed() {
		status = "failed: " + r.Err.Error()
	}
	fmt.Fprintf(w, "block %d #%d %s from %s: %s\n", header.Number, r.Index, r.Call, r.Caller.Hex(), status)
	for _, e := range r.Events {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func assetCommand(ctx *cli.Context) error {
	id, err := inter.HexToAssetID(ctx.Args().First())
	if err != nil {
		return err
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	asset := n.Registry.Asset(id)
	if asset == nil {
		return registry.ErrAssetNotFound
	}
	out, err := json.MarshalIndent(assetJSON(id, asset), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, string(out))
	return nil
}

// assetJSON is the JSON view of an asset. Binary fields are hex.
func assetJSON(id inter.AssetID, a *inter.Asset) map[string]interface{} {
	enc := map[string]interface{}{
		"id":     hexutil.Bytes(id.Bytes()),
		"dna":    hexutil.Bytes(a.Dna[:]),
		"gender": a.Gender.String(),
		"owner":  a.Owner,
		"price":  nil,
	}
	if a.Price != nil {
		enc["price"] = uint64(*a.Price)
	}
	return enc
}

func ownedCommand(ctx *cli.Context) error {
	who, err := integration.ParseAccount(ctx.Args().First())
	if err != nil {
		return err
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	for _, id := range n.Registry.AssetsOwned(who) {
		fmt.Fprintln(ctx.App.Writer, id.Hex())
	}
	return nil
}

func balanceCommand(ctx *cli.Context) error {
	who, err := integration.ParseAccount(ctx.Args().First())
	if err != nil {
		return err
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	b := n.Balances()
	fmt.Fprintf(ctx.App.Writer, "%s free=%d reserved=%d\n", who.Hex(), b.FreeBalance(who), b.ReservedBalance(who))
	return nil
}

func verifyCommand(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	if err := n.Registry.CheckInvariants(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "ok: %d assets at block %d\n", n.Registry.Count(), n.Chain.BlockNumber())
	return nil
}

func parseBalance(s string) (inter.Balance, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return inter.Balance(v), nil
}
