package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local node instance (store, genesis).

func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "db.preset",
			Usage: "Store preset (memory|default|full)",
			Value: "default",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the leveldb cache",
		},
		cli.IntFlag{
			Name:  "handles",
			Usage: "Number of open files leveldb may keep",
		},
		cli.StringFlag{
			Name:  "genesis",
			Usage: "YAML genesis file applied by init",
		},
		cli.IntFlag{
			Name:  "fakenet",
			Usage: "Initialize a fake network with N funded fake accounts",
		},
		cli.Uint64Flag{
			Name:  "fakenet.balance",
			Usage: "Initial balance of every fake account",
			Value: 1000,
		},
	}
}
