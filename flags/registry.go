package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// RegistryFlags override the registry rules written at genesis.

func RegistryFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "registry.maxowned",
			Usage: "Maximum number of assets per account (genesis only)",
		},
		cli.Uint64Flag{
			Name:  "registry.fee",
			Usage: "Deposit reserved per owned asset (genesis only)",
		},
	}
}

// FromFlag selects the account a call is made on behalf of: a hex address
// or the index of a fake account.
var FromFlag = cli.StringFlag{
	Name:  "from",
	Usage: "Caller account (hex address or fake account index)",
	Value: "1",
}
