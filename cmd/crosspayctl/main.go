// Command crosspayctl is the operator tool for a crosspay deployment. It
// mints bearer tokens and funds custody balances directly in the record
// store.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"crosspay/config"
	"crosspay/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

type metadata struct {
	cfg *config.Config
	log zerolog.Logger
	w   io.Writer
}

var version = "dev"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "crosspayctl"
	app.Usage = "operate a crosspay settlement engine"
	app.Version = version
	app.Writer = w
	app.ErrWriter = e
	app.Metadata = make(map[string]interface{})

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: " read configuration from `FILE` [default ./config.yaml]",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "token",
			Usage:     "mint a bearer token for an identity",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "identity, i",
					Value: "",
					Usage: "*identity `NAME` the token authenticates",
				},
			},
			Action: runToken,
		},
		{
			Name:      "credit",
			Usage:     "credit custody balance to an identity",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "identity, i",
					Value: "",
					Usage: "*identity `NAME` to credit",
				},
				cli.StringFlag{
					Name:  "asset, a",
					Value: "",
					Usage: "*asset `CODE`",
				},
				cli.Uint64Flag{
					Name:  "amount, n",
					Value: 0,
					Usage: "*base units `AMOUNT`",
				},
			},
			Action: runCredit,
		},
	}

	app.Before = func(c *cli.Context) error {
		cfg, err := config.Load(c.GlobalString("config"))
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.App.Metadata["config"] = &metadata{
			cfg: cfg,
			log: logger.NewWithWriter(cfg.Log.Level, e),
			w:   c.App.Writer,
		}
		return nil
	}

	return app
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
