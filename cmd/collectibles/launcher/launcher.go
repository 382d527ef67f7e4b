package launcher

import (
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/opera-collectibles/flags"
)

// Version is the launcher version, overridden at link time.
var Version = "0.1.0"

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp(Version, "collectible asset registry node")
	app.Flags = append(app.Flags, flags.CommonFlags()...)
	app.Flags = append(app.Flags, flags.NodeFlags()...)
	app.Flags = append(app.Flags, flags.RegistryFlags()...)
	app.Commands = commands()
	return app
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}
